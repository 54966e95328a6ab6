package handlers

import (
	// Стандартные библиотеки
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	// Внутренние пакеты
	"moviecatalog/internal/config"
	"moviecatalog/internal/database"
	"moviecatalog/internal/middleware"
	"moviecatalog/internal/models"

	// Сторонние библиотеки
	"github.com/gin-gonic/gin"
)

// Handler держит зависимости обработчиков: слой данных и конфигурацию.
type Handler struct {
	store *database.Store
	cfg   config.Config
}

// New создает обработчики поверх открытого Store.
func New(store *database.Store, cfg config.Config) *Handler {
	return &Handler{store: store, cfg: cfg}
}

// TemplateFuncs - функции, доступные в HTML-шаблонах. Регистрируются до LoadHTMLGlob.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"join": strings.Join,
		"add":  func(a, b int) int { return a + b },
		"sub":  func(a, b int) int { return a - b },
		"avatarURL": func(avatar *string) string {
			if avatar == nil || *avatar == "" {
				return "/static/img/default-avatar.svg"
			}
			return "/uploads/avatars/" + *avatar
		},
		"posterURL": func(poster *string) string {
			if poster == nil || *poster == "" {
				return "/static/img/no-poster.svg"
			}
			return *poster
		},
		"rating": func(r *float64) string {
			if r == nil {
				return "-"
			}
			return strconv.FormatFloat(*r, 'f', 1, 64)
		},
		"date": func(t time.Time) string {
			return t.Format("02.01.2006 15:04")
		},
	}
}

// render добавляет к данным шаблона текущего пользователя и отрисовывает страницу.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["user"]; !ok {
		data["user"] = middleware.CurrentUser(c)
	}
	c.HTML(status, name, data)
}

// renderError показывает страницу ошибки с общим сообщением.
func (h *Handler) renderError(c *gin.Context, status int, title, message string) {
	h.render(c, status, "error.html", gin.H{
		"title":   title,
		"message": message,
	})
}

// NotFound - страница для неизвестных маршрутов.
func (h *Handler) NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Не найдено"})
		return
	}
	h.renderError(c, http.StatusNotFound, "404 - Страница не найдена", "Запрошенная страница не существует.")
}

// paramID разбирает числовой параметр маршрута.
func paramID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("некорректный идентификатор %q", raw)
	}
	return id, nil
}

// jsonError отвечает {"success": false, "message": ...}.
func jsonError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// jsonServerError логирует ошибку и отвечает общим сообщением без подробностей драйвера.
func jsonServerError(c *gin.Context, what string, err error) {
	log.Printf("Ошибка API (%s %s) - %s: %v", c.Request.Method, c.Request.URL.Path, what, err)
	jsonError(c, http.StatusInternalServerError, "Ошибка сервера")
}

// currentUserID - ID вошедшего пользователя (проставляется AuthRequired/AdminRequired).
func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(middleware.ContextUserID)
}

// canSee - снятые с показа фильмы видит только администратор.
func canSee(c *gin.Context, m *models.Movie) bool {
	return m.Status == models.StatusActive || middleware.CurrentUser(c).IsAdmin()
}
