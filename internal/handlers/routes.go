package handlers

import (
	// Внутренние пакеты
	"moviecatalog/internal/middleware"

	// Сторонние библиотеки
	"github.com/gin-gonic/gin"
)

// RegisterRoutes подключает все маршруты приложения. Сессии и шаблоны настраиваются заранее.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(middleware.LoadUser(h.store))

	// Загруженные файлы (постеры, аватары) и видео.
	router.Static("/uploads", h.cfg.UploadPath)
	router.Static("/videos", h.cfg.VideoPath)

	// Публичные страницы.
	router.GET("/", h.ShowHome)
	router.GET("/movies", h.ShowMovies)
	router.GET("/movies/:id", h.ShowMovieDetail)
	router.GET("/search", h.ShowSearch)
	router.GET("/play/:id", h.ShowPlay)

	router.GET("/login", h.ShowLoginPage)
	router.POST("/login", h.HandleLogin)
	router.GET("/register", h.ShowRegisterPage)
	router.POST("/register", h.HandleRegister)
	router.GET("/logout", h.HandleLogout)

	router.GET("/debug/db", h.DebugDB)

	// Личный кабинет.
	user := router.Group("/user", middleware.AuthRequired())
	{
		user.GET("/profile", h.ShowProfile)
		user.POST("/profile", h.HandleProfileUpdate)
	}

	// JSON API без кеширования.
	api := router.Group("/api", middleware.NoCache())
	{
		api.GET("/movies", h.APIMovies)
		api.GET("/movies/:id", h.APIMovie)
		api.GET("/movies/:id/comments", h.APIMovieComments)
		api.GET("/search", h.APISearch)
		api.GET("/genres", h.APIGenres)
		api.GET("/years", h.APIYears)
		api.GET("/favorites/check/:movieId", h.APICheckFavorite)
		api.GET("/comments/:id/replies", h.APICommentReplies)

		authed := api.Group("", middleware.AuthRequired())
		authed.GET("/favorites", h.APIFavorites)
		authed.POST("/favorites", h.APIAddFavorite)
		authed.DELETE("/favorites/:movieId", h.APIRemoveFavorite)
		authed.GET("/user/comments", h.APIMyComments)
		authed.POST("/comments", h.APIAddComment)
		authed.DELETE("/comments/:id", h.APIDeleteComment)
	}

	// Панель администратора.
	admin := router.Group("/admin", middleware.AdminRequired(h.store))
	{
		admin.GET("/dashboard", h.ShowAdminDashboard)

		adminAPI := admin.Group("/api", middleware.NoCache())
		adminAPI.GET("/stats", h.AdminStats)
		adminAPI.GET("/movies", h.AdminMovies)
		adminAPI.POST("/movies", h.AdminAddMovie)
		adminAPI.PUT("/movies/:id", h.AdminUpdateMovie)
		adminAPI.PUT("/movies/:id/status", h.AdminUpdateMovieStatus)
		adminAPI.DELETE("/movies/:id", h.AdminDeleteMovie)
		adminAPI.GET("/comments", h.AdminComments)
		adminAPI.DELETE("/comments/:id", h.AdminDeleteComment)
		adminAPI.GET("/users", h.AdminUsers)
		adminAPI.DELETE("/users/:id", h.AdminDeleteUser)
	}

	router.NoRoute(h.NotFound)
}
