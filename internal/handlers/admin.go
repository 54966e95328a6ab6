package handlers

import (
	// Стандартные библиотеки
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	// Внутренние пакеты
	"moviecatalog/internal/auth"
	"moviecatalog/internal/database"
	"moviecatalog/internal/models"
	"moviecatalog/internal/services"

	// Сторонние библиотеки
	"github.com/gin-gonic/gin"
)

const posterURLPrefix = "/uploads/posters/"

// ShowAdminDashboard - панель администратора: статистика и все фильмы со счетчиками.
func (h *Handler) ShowAdminDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	stats, err := h.store.GetAdminStats(ctx)
	if err != nil {
		log.Printf("Ошибка загрузки статистики для панели администратора: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Ошибка сервера", "Не удалось загрузить панель администратора.")
		return
	}
	movies, err := h.store.GetAllMoviesForAdmin(ctx)
	if err != nil {
		log.Printf("Ошибка загрузки фильмов для панели администратора: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Ошибка сервера", "Не удалось загрузить панель администратора.")
		return
	}
	h.render(c, http.StatusOK, "admin_dashboard.html", gin.H{
		"title":  "Панель администратора",
		"stats":  stats,
		"movies": movies,
	})
}

// AdminStats - GET /admin/api/stats.
func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.store.GetAdminStats(c.Request.Context())
	if err != nil {
		jsonServerError(c, "статистика", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AdminMovies - GET /admin/api/movies.
func (h *Handler) AdminMovies(c *gin.Context) {
	movies, err := h.store.GetAllMoviesForAdmin(c.Request.Context())
	if err != nil {
		jsonServerError(c, "фильмы для администратора", err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

// movieInput - поля формы фильма. nil - поле не передано.
type movieInput struct {
	Title       *string
	Description *string
	Genre       []string
	Year        *int
	Rating      *float64
	Duration    *int
	Director    *string
	Country     *string
	PosterURL   *string
	Status      *string
}

// readMovieInput читает multipart- или urlencoded-форму фильма.
// Пустые числовые поля считаются непереданными.
func readMovieInput(c *gin.Context) (movieInput, error) {
	var in movieInput
	text := func(name string) *string {
		if v, ok := c.GetPostForm(name); ok {
			v = strings.TrimSpace(v)
			return &v
		}
		return nil
	}
	in.Title = text("title")
	in.Description = text("description")
	in.Director = text("director")
	in.Country = text("country")
	in.PosterURL = text("poster_url")
	if in.Status = text("status"); in.Status != nil && *in.Status == "" {
		in.Status = nil
	}
	if g, ok := c.GetPostForm("genre"); ok {
		in.Genre = database.ParseGenre(g)
	}

	var err error
	if in.Year, err = optionalInt(c, "year"); err != nil {
		return in, err
	}
	if in.Duration, err = optionalInt(c, "duration"); err != nil {
		return in, err
	}
	if v := strings.TrimSpace(c.PostForm("rating")); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return in, errors.New("Рейтинг должен быть числом")
		}
		in.Rating = &r
	}
	return in, nil
}

func optionalInt(c *gin.Context, name string) (*int, error) {
	v := strings.TrimSpace(c.PostForm(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("Поле %s должно быть целым числом", name)
	}
	return &n, nil
}

// validate проверяет форму; title - итоговое название (для правки - текущее, если новое не передано).
func (in movieInput) validate(title string) string {
	form := auth.MovieForm{Title: title, Year: in.Year, Rating: in.Rating, Duration: in.Duration}
	if in.Status != nil {
		form.Status = *in.Status
	}
	return auth.FirstError(form)
}

func (in movieInput) toNew() models.NewMovie {
	nm := models.NewMovie{
		Description: emptyToNil(in.Description),
		Genre:       in.Genre,
		Year:        in.Year,
		Rating:      in.Rating,
		Duration:    in.Duration,
		Director:    emptyToNil(in.Director),
		Country:     emptyToNil(in.Country),
		PosterURL:   emptyToNil(in.PosterURL),
	}
	if in.Title != nil {
		nm.Title = *in.Title
	}
	if in.Status != nil {
		nm.Status = *in.Status
	}
	return nm
}

func (in movieInput) toPatch() models.MoviePatch {
	return models.MoviePatch{
		Title:       in.Title,
		Description: in.Description,
		Genre:       in.Genre,
		Year:        in.Year,
		Rating:      in.Rating,
		Duration:    in.Duration,
		Director:    in.Director,
		Country:     in.Country,
		PosterURL:   in.PosterURL,
		Status:      in.Status,
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// savePoster сохраняет загруженный постер, если он есть. Возвращает URL или "".
func (h *Handler) savePoster(c *gin.Context) (string, error) {
	fh, err := c.FormFile("poster")
	if err != nil {
		return "", nil // Постер не загружали
	}
	name, err := services.SaveImage(fh, h.cfg.PosterDir())
	if err != nil {
		return "", err
	}
	return posterURLPrefix + name, nil
}

// removePoster удаляет файл постера, если он был загружен через панель.
func (h *Handler) removePoster(url *string) {
	if url != nil && strings.HasPrefix(*url, posterURLPrefix) {
		services.RemoveFile(h.cfg.PosterDir(), strings.TrimPrefix(*url, posterURLPrefix))
	}
}

// saveVideo сохраняет загруженное видео под ID фильма, если оно есть.
func (h *Handler) saveVideo(c *gin.Context, movieID int64) (bool, error) {
	fh, err := c.FormFile("video")
	if err != nil {
		return false, nil // Видео не загружали
	}
	if _, err := services.SaveVideo(fh, h.cfg.VideoPath, movieID); err != nil {
		return false, err
	}
	return true, nil
}

// AdminAddMovie - POST /admin/api/movies (multipart: поля, poster, video).
func (h *Handler) AdminAddMovie(c *gin.Context) {
	in, err := readMovieInput(c)
	if err != nil {
		jsonError(c, http.StatusBadRequest, err.Error())
		return
	}
	title := ""
	if in.Title != nil {
		title = *in.Title
	}
	if msg := in.validate(title); msg != "" {
		jsonError(c, http.StatusBadRequest, msg)
		return
	}

	poster, err := h.savePoster(c)
	if err != nil {
		jsonError(c, http.StatusBadRequest, uploadErrorMessage(err))
		return
	}
	if poster != "" {
		in.PosterURL = &poster
	}

	id, err := h.store.AdminAddMovie(c.Request.Context(), in.toNew())
	if err != nil {
		if poster != "" {
			h.removePoster(&poster)
		}
		jsonServerError(c, "добавление фильма", err)
		return
	}

	hasVideo, err := h.saveVideo(c, id)
	if err != nil {
		log.Printf("Фильм %d добавлен, но видео не сохранено: %v", id, err)
		c.JSON(http.StatusOK, gin.H{"success": true, "movieId": id, "message": "Фильм добавлен, но видео не сохранено"})
		return
	}
	log.Printf("Администратор добавил фильм %d (%s), видео: %t", id, title, hasVideo)
	c.JSON(http.StatusOK, gin.H{"success": true, "movieId": id, "message": "Фильм добавлен"})
}

// AdminUpdateMovie - PUT /admin/api/movies/:id. Меняются только переданные поля.
func (h *Handler) AdminUpdateMovie(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Некорректный ID фильма")
		return
	}
	ctx := c.Request.Context()
	current, err := h.store.FindMovieByID(ctx, id)
	if err != nil {
		jsonServerError(c, "поиск фильма", err)
		return
	}
	if current == nil {
		jsonError(c, http.StatusNotFound, "Фильм не найден")
		return
	}

	in, err := readMovieInput(c)
	if err != nil {
		jsonError(c, http.StatusBadRequest, err.Error())
		return
	}
	title := current.Title
	if in.Title != nil {
		title = *in.Title
	}
	if msg := in.validate(title); msg != "" {
		jsonError(c, http.StatusBadRequest, msg)
		return
	}

	poster, err := h.savePoster(c)
	if err != nil {
		jsonError(c, http.StatusBadRequest, uploadErrorMessage(err))
		return
	}
	if poster != "" {
		in.PosterURL = &poster
	}

	if _, err := h.store.UpdateMovie(ctx, id, in.toPatch()); err != nil {
		if poster != "" {
			h.removePoster(&poster)
		}
		jsonServerError(c, "обновление фильма", err)
		return
	}
	// Старый постер удаляется только после успешного обновления.
	if poster != "" {
		h.removePoster(current.PosterURL)
	}

	if _, err := h.saveVideo(c, id); err != nil {
		log.Printf("Фильм %d обновлен, но видео не сохранено: %v", id, err)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Фильм обновлен, но видео не сохранено"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Фильм обновлен"})
}

type statusRequest struct {
	Status string `json:"status" form:"status" binding:"required,oneof=active inactive"`
}

// AdminUpdateMovieStatus - PUT /admin/api/movies/:id/status.
func (h *Handler) AdminUpdateMovieStatus(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Некорректный ID фильма")
		return
	}
	var req statusRequest
	if err := c.ShouldBind(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Недопустимое значение статуса")
		return
	}
	n, err := h.store.UpdateMovieStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		jsonServerError(c, "смена статуса", err)
		return
	}
	if n == 0 {
		jsonError(c, http.StatusNotFound, "Фильм не найден")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Статус фильма обновлен"})
}

// AdminDeleteMovie - DELETE /admin/api/movies/:id: фильм, его комментарии, избранное и файлы.
func (h *Handler) AdminDeleteMovie(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Некорректный ID фильма")
		return
	}
	ctx := c.Request.Context()
	// Фильм читается до удаления, чтобы знать путь к постеру.
	movie, err := h.store.FindMovieByID(ctx, id)
	if err != nil {
		jsonServerError(c, "поиск фильма", err)
		return
	}
	deleted, err := h.store.AdminDeleteMovie(ctx, id)
	if err != nil {
		jsonServerError(c, "удаление фильма", err)
		return
	}
	if !deleted {
		jsonError(c, http.StatusNotFound, "Фильм не найден")
		return
	}
	// Файлы удаляются после фиксации транзакции.
	if movie != nil {
		h.removePoster(movie.PosterURL)
	}
	services.RemoveVideo(h.cfg.VideoPath, id)
	log.Printf("Администратор удалил фильм %d", id)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Фильм удален"})
}

// AdminComments - GET /admin/api/comments?page=&limit=&movieId=.
func (h *Handler) AdminComments(c *gin.Context) {
	// Некорректные page и limit превращаются в 0 и нормализуются в слое данных.
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	ctx := c.Request.Context()

	var (
		result *models.CommentPage
		err    error
	)
	if raw := c.Query("movieId"); raw != "" {
		movieID, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil || movieID <= 0 {
			jsonError(c, http.StatusBadRequest, "Некорректный ID фильма")
			return
		}
		result, err = h.store.GetMovieCommentsForAdmin(ctx, movieID, page, limit)
	} else {
		result, err = h.store.GetAllCommentsForAdmin(ctx, page, limit)
	}
	if err != nil {
		jsonServerError(c, "комментарии для администратора", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AdminDeleteComment - DELETE /admin/api/comments/:id: любой комментарий вместе с ответами.
func (h *Handler) AdminDeleteComment(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Некорректный ID комментария")
		return
	}
	n, err := h.store.AdminDeleteComment(c.Request.Context(), id)
	if err != nil {
		jsonServerError(c, "удаление комментария", err)
		return
	}
	if n == 0 {
		jsonError(c, http.StatusNotFound, "Комментарий не найден")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Комментарий удален"})
}

// AdminUsers - GET /admin/api/users: обычные пользователи без хешей паролей.
func (h *Handler) AdminUsers(c *gin.Context) {
	users, err := h.store.GetAllUsers(c.Request.Context())
	if err != nil {
		jsonServerError(c, "список пользователей", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// AdminDeleteUser - DELETE /admin/api/users/:id. Администратора удалить нельзя.
func (h *Handler) AdminDeleteUser(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Некорректный ID пользователя")
		return
	}
	n, err := h.store.DeleteUser(c.Request.Context(), id)
	if err != nil {
		jsonServerError(c, "удаление пользователя", err)
		return
	}
	if n == 0 {
		jsonError(c, http.StatusNotFound, "Пользователь не найден или является администратором")
		return
	}
	log.Printf("Администратор удалил пользователя %d", id)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Пользователь удален"})
}
