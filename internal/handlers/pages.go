package handlers

import (
	// Стандартные библиотеки
	"log"
	"net/http"
	"strings"

	// Внутренние пакеты
	"moviecatalog/internal/middleware"
	"moviecatalog/internal/models"
	"moviecatalog/internal/services"

	// Сторонние библиотеки
	"github.com/gin-gonic/gin"
)

// ShowHome - главная страница: подборки считаются в памяти из полного списка на каждый запрос.
func (h *Handler) ShowHome(c *gin.Context) {
	all, err := h.store.GetAllMovies(c.Request.Context())
	if err != nil {
		log.Printf("Ошибка загрузки фильмов для главной страницы: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Ошибка сервера", "Не удалось загрузить главную страницу.")
		return
	}
	movies := activeOnly(all) // Главная всегда показывает только фильмы в показе
	top := topRated(movies, topCount)

	h.render(c, http.StatusOK, "index.html", gin.H{
		"title":          "Главная - Кинокаталог",
		"topMovies":      top,
		"latestMovies":   latest(movies, latestCount),
		"featuredMovies": head(top, featuredCount),
		"hotMovies":      head(top, hotCount),
	})
}

// ShowMovies - список фильмов с фильтрами. Параметр search переадресует на страницу поиска.
func (h *Handler) ShowMovies(c *gin.Context) {
	if q := strings.TrimSpace(c.Query("search")); q != "" {
		h.renderSearch(c, q)
		return
	}
	ctx := c.Request.Context()

	all, err := h.store.GetAllMovies(ctx)
	if err != nil {
		log.Printf("Ошибка загрузки списка фильмов: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Ошибка сервера", "Не удалось загрузить список фильмов.")
		return
	}
	all = activeOnly(all)

	// Жанр фильтруется в БД, остальные параметры - в памяти.
	filter := parseMovieFilter(c.Query("genre"), c.Query("year"), c.Query("region"), c.Query("ratingMin"), c.Query("sort"))
	movies := all
	if filter.Genre != "" {
		byGenre, err := h.store.FindMoviesByGenre(ctx, filter.Genre)
		if err != nil {
			log.Printf("Ошибка фильтрации по жанру %q: %v", filter.Genre, err)
			h.renderError(c, http.StatusInternalServerError, "Ошибка сервера", "Не удалось загрузить список фильмов.")
			return
		}
		movies = activeOnly(byGenre)
	}
	movies = filter.apply(movies)

	// Списки для выпадающих фильтров; ошибка здесь не мешает показать страницу.
	genres, err := h.store.GetGenres(ctx)
	if err != nil {
		log.Printf("Ошибка загрузки жанров: %v", err)
		genres = []string{}
	}
	years, err := h.store.GetYears(ctx)
	if err != nil {
		log.Printf("Ошибка загрузки годов: %v", err)
		years = []int{}
	}

	h.render(c, http.StatusOK, "movies.html", gin.H{
		"title":             "Фильмы - Кинокаталог",
		"movies":            movies,
		"genres":            genres,
		"years":             years,
		"regions":           regions(all),
		"hotMovies":         topRated(all, hotCount),
		"selectedGenre":     filter.Genre,
		"selectedYear":      c.Query("year"),
		"selectedRegion":    filter.Region,
		"selectedRatingMin": c.Query("ratingMin"),
		"selectedSort":      filter.Sort,
	})
}

// ShowSearch - страница результатов поиска. Пустой запрос дает пустой результат без обращения к БД.
func (h *Handler) ShowSearch(c *gin.Context) {
	h.renderSearch(c, strings.TrimSpace(c.Query("q")))
}

func (h *Handler) renderSearch(c *gin.Context, keyword string) {
	ctx := c.Request.Context()
	movies := []models.Movie{}
	if keyword != "" {
		found, err := h.store.SearchMovies(ctx, keyword)
		if err != nil {
			log.Printf("Ошибка поиска по запросу %q: %v", keyword, err)
			h.renderError(c, http.StatusInternalServerError, "Ошибка сервера", "Не удалось выполнить поиск.")
			return
		}
		movies = activeOnly(found)
	}

	var hot []models.Movie
	if all, err := h.store.GetAllMovies(ctx); err == nil {
		hot = topRated(activeOnly(all), hotCount)
	} else {
		log.Printf("Ошибка загрузки популярных фильмов: %v", err)
	}

	h.render(c, http.StatusOK, "search.html", gin.H{
		"title":         "Результаты поиска - " + keyword,
		"movies":        movies,
		"searchKeyword": keyword,
		"hotMovies":     hot,
	})
}

// loadVisibleMovie ищет фильм по :id и сам отвечает 404/500, если показать его нельзя.
func (h *Handler) loadVisibleMovie(c *gin.Context) (*models.Movie, bool) {
	id, err := paramID(c, "id")
	if err != nil {
		h.renderError(c, http.StatusNotFound, "404 - Фильм не найден", "К сожалению, такого фильма нет.")
		return nil, false
	}
	movie, err := h.store.FindMovieByID(c.Request.Context(), id)
	if err != nil {
		log.Printf("Ошибка загрузки фильма %d: %v", id, err)
		h.renderError(c, http.StatusInternalServerError, "Ошибка сервера", "Не удалось загрузить информацию о фильме.")
		return nil, false
	}
	if movie == nil || !canSee(c, movie) {
		h.renderError(c, http.StatusNotFound, "404 - Фильм не найден", "К сожалению, такого фильма нет.")
		return nil, false
	}
	return movie, true
}

// ShowMovieDetail - страница фильма: похожие фильмы по первому жанру, комментарии, избранное.
func (h *Handler) ShowMovieDetail(c *gin.Context) {
	movie, ok := h.loadVisibleMovie(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// Похожие фильмы - по первому жанру.
	relatedMovies := []models.Movie{}
	if len(movie.Genre) > 0 {
		sameGenre, err := h.store.FindMoviesByGenre(ctx, movie.Genre[0])
		if err != nil {
			log.Printf("Ошибка загрузки похожих фильмов для %d: %v", movie.ID, err)
		} else {
			relatedMovies = related(sameGenre, movie.ID, relatedCount)
		}
	}

	comments, err := h.store.GetMovieComments(ctx, movie.ID)
	if err != nil {
		log.Printf("Ошибка загрузки комментариев фильма %d: %v", movie.ID, err)
		comments = []models.CommentView{}
	}

	// Для гостя кнопка избранного всегда в исходном состоянии.
	isFavorite := false
	if u := middleware.CurrentUser(c); u != nil {
		if isFavorite, err = h.store.IsFavorite(ctx, u.ID, movie.ID); err != nil {
			log.Printf("Ошибка проверки избранного (user %d, movie %d): %v", u.ID, movie.ID, err)
		}
	}

	var hot []models.Movie
	if all, err := h.store.GetAllMovies(ctx); err == nil {
		hot = topRated(activeOnly(all), hotCount)
	}

	_, hasVideo := services.FindVideo(h.cfg.VideoPath, movie.ID)
	h.render(c, http.StatusOK, "movie_detail.html", gin.H{
		"title":         movie.Title + " - Кинокаталог",
		"movie":         movie,
		"relatedMovies": relatedMovies,
		"hotMovies":     hot,
		"comments":      comments,
		"isFavorite":    isFavorite,
		"hasVideo":      hasVideo,
	})
}

// ShowPlay - страница просмотра. Видео ищется как <id>.<mp4|webm|ogg|mkv> в директории видео.
func (h *Handler) ShowPlay(c *gin.Context) {
	movie, ok := h.loadVisibleMovie(c)
	if !ok {
		return
	}
	data := gin.H{
		"title": movie.Title + " - Просмотр",
		"movie": movie,
	}
	if name, found := services.FindVideo(h.cfg.VideoPath, movie.ID); found {
		data["videoURL"] = "/videos/" + name
		data["videoType"] = services.VideoContentType(name)
	} else {
		log.Printf("Видео для фильма %d не найдено в %s", movie.ID, h.cfg.VideoPath)
	}
	h.render(c, http.StatusOK, "play.html", data)
}
