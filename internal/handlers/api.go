package handlers

import (
	// Стандартные библиотеки
	"errors"
	"net/http"
	"strings"

	// Внутренние пакеты
	"moviecatalog/internal/database"
	"moviecatalog/internal/middleware"
	"moviecatalog/internal/models"

	// Сторонние библиотеки
	"github.com/gin-gonic/gin"
)

// favoriteRequest принимает и JSON, и form-urlencoded.
type favoriteRequest struct {
	MovieID int64 `json:"movieId" form:"movieId" binding:"required,gt=0"`
}

type commentRequest struct {
	MovieID  int64  `json:"movieId" form:"movieId" binding:"required,gt=0"`
	Content  string `json:"content" form:"content" binding:"required,max=2000"`
	ParentID *int64 `json:"parentId" form:"parentId" binding:"omitempty,gt=0"`
}

// APIMovies - GET /api/movies. Посетителям отдаются только фильмы в показе.
func (h *Handler) APIMovies(c *gin.Context) {
	movies, err := h.store.GetAllMovies(c.Request.Context())
	if err != nil {
		jsonServerError(c, "список фильмов", err)
		return
	}
	if !middleware.CurrentUser(c).IsAdmin() {
		movies = activeOnly(movies) // Администратор получает полный список
	}
	c.JSON(http.StatusOK, movies)
}

// APIMovie - GET /api/movies/:id.
func (h *Handler) APIMovie(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Некорректный ID фильма")
		return
	}
	movie, ok := h.visibleMovieJSON(c, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, movie)
}

// visibleMovieJSON - JSON-вариант loadVisibleMovie: на скрытый или несуществующий фильм отвечает 404.
func (h *Handler) visibleMovieJSON(c *gin.Context, id int64) (*models.Movie, bool) {
	movie, err := h.store.FindMovieByID(c.Request.Context(), id)
	if err != nil {
		jsonServerError(c, "фильм", err)
		return nil, false
	}
	if movie == nil || !canSee(c, movie) {
		jsonError(c, http.StatusNotFound, "Фильм не найден")
		return nil, false
	}
	return movie, true
}

// APISearch - GET /api/search?q=. Пустой запрос - пустой список.
func (h *Handler) APISearch(c *gin.Context) {
	// Принимаются оба имени параметра: q и keyword.
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		q = strings.TrimSpace(c.Query("keyword"))
	}
	if q == "" {
		c.JSON(http.StatusOK, []models.Movie{})
		return
	}
	movies, err := h.store.SearchMovies(c.Request.Context(), q)
	if err != nil {
		jsonServerError(c, "поиск", err)
		return
	}
	c.JSON(http.StatusOK, activeOnly(movies))
}

// APIGenres - GET /api/genres.
func (h *Handler) APIGenres(c *gin.Context) {
	genres, err := h.store.GetGenres(c.Request.Context())
	if err != nil {
		jsonServerError(c, "жанры", err)
		return
	}
	c.JSON(http.StatusOK, genres)
}

// APIYears - GET /api/years.
func (h *Handler) APIYears(c *gin.Context) {
	years, err := h.store.GetYears(c.Request.Context())
	if err != nil {
		jsonServerError(c, "годы", err)
		return
	}
	c.JSON(http.StatusOK, years)
}

// APIAddFavorite - POST /api/favorites. Повторное добавление - успех с другим сообщением.
func (h *Handler) APIAddFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBind(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Не указан ID фильма")
		return
	}
	// Скрытый фильм для обычного пользователя не существует.
	if _, ok := h.visibleMovieJSON(c, req.MovieID); !ok {
		return
	}

	res, err := h.store.AddFavorite(c.Request.Context(), currentUserID(c), req.MovieID)
	if err != nil {
		jsonServerError(c, "добавление в избранное", err)
		return
	}
	message := "Добавлено в избранное"
	if res.AlreadyExists {
		message = "Фильм уже в избранном"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "alreadyExists": res.AlreadyExists})
}

// APIRemoveFavorite - DELETE /api/favorites/:movieId.
func (h *Handler) APIRemoveFavorite(c *gin.Context) {
	movieID, err := paramID(c, "movieId")
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Некорректный ID фильма")
		return
	}
	if _, err := h.store.RemoveFavorite(c.Request.Context(), currentUserID(c), movieID); err != nil {
		jsonServerError(c, "удаление из избранного", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Удалено из избранного"})
}

// APICheckFavorite - GET /api/favorites/check/:movieId. Гостю всегда false.
func (h *Handler) APICheckFavorite(c *gin.Context) {
	movieID, err := paramID(c, "movieId")
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Некорректный ID фильма")
		return
	}
	u := middleware.CurrentUser(c)
	if u == nil {
		// Маршрут открыт для гостей.
		c.JSON(http.StatusOK, gin.H{"isFavorite": false})
		return
	}
	fav, err := h.store.IsFavorite(c.Request.Context(), u.ID, movieID)
	if err != nil {
		jsonServerError(c, "проверка избранного", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFavorite": fav})
}

// APIFavorites - GET /api/favorites. Снятые с показа фильмы видит только администратор.
func (h *Handler) APIFavorites(c *gin.Context) {
	favorites, err := h.store.GetUserFavorites(c.Request.Context(), currentUserID(c))
	if err != nil {
		jsonServerError(c, "список избранного", err)
		return
	}
	c.JSON(http.StatusOK, visibleFavorites(c, favorites))
}

// APIMovieComments - GET /api/movies/:id/comments: только верхний уровень с числом ответов.
func (h *Handler) APIMovieComments(c *gin.Context) {
	movieID, err := paramID(c, "id")
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Некорректный ID фильма")
		return
	}
	if _, ok := h.visibleMovieJSON(c, movieID); !ok {
		return
	}
	comments, err := h.store.GetMovieComments(c.Request.Context(), movieID)
	if err != nil {
		jsonServerError(c, "комментарии фильма", err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// APICommentReplies - GET /api/comments/:id/replies, старые первыми.
// Ответы к комментариям скрытого фильма отдаются только администратору.
func (h *Handler) APICommentReplies(c *gin.Context) {
	commentID, err := paramID(c, "id")
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Некорректный ID комментария")
		return
	}
	ctx := c.Request.Context()
	// Видимость проверяется по фильму, к которому относится комментарий.
	comment, err := h.store.FindCommentByID(ctx, commentID)
	if err != nil {
		jsonServerError(c, "поиск комментария", err)
		return
	}
	if comment == nil {
		jsonError(c, http.StatusNotFound, "Комментарий не найден")
		return
	}
	if _, ok := h.visibleMovieJSON(c, comment.MovieID); !ok {
		return
	}
	replies, err := h.store.GetCommentReplies(ctx, commentID)
	if err != nil {
		jsonServerError(c, "ответы на комментарий", err)
		return
	}
	c.JSON(http.StatusOK, replies)
}

// APIMyComments - GET /api/user/comments: комментарии текущего пользователя.
func (h *Handler) APIMyComments(c *gin.Context) {
	comments, err := h.store.GetUserComments(c.Request.Context(), currentUserID(c))
	if err != nil {
		jsonServerError(c, "комментарии пользователя", err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// APIAddComment - POST /api/comments: комментарий или ответ (parentId).
func (h *Handler) APIAddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBind(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Не хватает обязательных параметров")
		return
	}
	// Комментарий из одних пробелов считается пустым.
	content := strings.TrimSpace(req.Content)
	if content == "" {
		jsonError(c, http.StatusBadRequest, "Комментарий не может быть пустым")
		return
	}

	if _, ok := h.visibleMovieJSON(c, req.MovieID); !ok {
		return
	}

	id, err := h.store.AddComment(c.Request.Context(), currentUserID(c), req.MovieID, content, req.ParentID)
	if err != nil {
		// Родитель удален или относится к другому фильму.
		if errors.Is(err, database.ErrParentNotFound) {
			jsonError(c, http.StatusBadRequest, "Комментарий, на который вы отвечаете, не найден")
			return
		}
		jsonServerError(c, "добавление комментария", err)
		return
	}
	message := "Комментарий добавлен"
	if req.ParentID != nil {
		message = "Ответ добавлен"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "commentId": id})
}

// APIDeleteComment - DELETE /api/comments/:id: удалить можно только свой комментарий.
func (h *Handler) APIDeleteComment(c *gin.Context) {
	commentID, err := paramID(c, "id")
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Некорректный ID комментария")
		return
	}
	n, err := h.store.DeleteComment(c.Request.Context(), commentID, currentUserID(c))
	if err != nil {
		jsonServerError(c, "удаление комментария", err)
		return
	}
	if n == 0 {
		// Не различаем "нет такого" и "чужой".
		jsonError(c, http.StatusNotFound, "Комментарий не найден или принадлежит другому пользователю")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Комментарий удален"})
}
