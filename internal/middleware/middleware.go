package middleware

import (
	// Стандартные библиотеки
	"context"
	"log"      // Для логирования
	"net/http" // Для кодов статуса HTTP
	"strings"

	// Сторонние библиотеки
	"github.com/gin-contrib/sessions" // Для работы с сессиями
	"github.com/gin-gonic/gin"        // Основной фреймворк

	"moviecatalog/internal/models"
)

// Ключи данных сессии и контекста Gin.
const (
	SessionUserID   = "userID"
	SessionUsername = "username"
	SessionRole     = "role"

	ContextUserID      = "userID"
	ContextCurrentUser = "currentUser"
)

// UserFinder - то, что нужно middleware от слоя данных.
type UserFinder interface {
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
}

// wantsJSON - запросы к /api и /admin/api получают JSON вместо редиректа.
func wantsJSON(c *gin.Context) bool {
	p := c.Request.URL.Path
	return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/admin/api/")
}

// sessionUserID достает userID из сессии. Сессия с некорректным типом очищается.
func sessionUserID(c *gin.Context) (int64, bool) {
	session := sessions.Default(c)
	raw := session.Get(SessionUserID)
	if raw == nil {
		return 0, false
	}
	userID, ok := raw.(int64)
	if !ok {
		log.Printf("ОШИБКА ТИПА ДАННЫХ СЕССИИ: Некорректный тип userID (%T) для IP %s. Сессия будет очищена.", raw, c.ClientIP())
		if err := ClearSession(session); err != nil {
			log.Printf("Ошибка сохранения сессии при очистке из-за некорректного типа userID: %v", err)
		}
		return 0, false
	}
	return userID, true
}

// AuthRequired пропускает только вошедших пользователей. Страницы перенаправляются на /login,
// API получает 401.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUserID(c)
		if !ok {
			log.Printf("Доступ запрещен (не аутентифицирован) к %s с IP %s", c.Request.URL.Path, c.ClientIP())
			if wantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Требуется вход в систему"})
				return
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		// userID доступен следующим обработчикам через c.GetInt64("userID").
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// AdminRequired пропускает только администратора. Роль берется из сессии,
// а если ее там нет (старая сессия) - из БД.
func AdminRequired(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUserID(c)
		if !ok {
			if wantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Требуется вход в систему"})
				return
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		session := sessions.Default(c)
		role, _ := session.Get(SessionRole).(string)
		if role == "" {
			u, err := users.FindUserByID(c.Request.Context(), userID)
			if err != nil {
				log.Printf("Ошибка проверки роли пользователя %d: %v", userID, err)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			if u != nil {
				role = u.Role
			}
		}

		if role != models.RoleAdmin {
			log.Printf("Доступ к %s запрещен: пользователь %d не администратор", c.Request.URL.Path, userID)
			if wantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Доступ запрещен"})
				return
			}
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// LoadUser кладет текущего пользователя (или nil) в контекст для шаблонов.
// Пользователь, удаленный из БД, разлогинивается.
func LoadUser(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUserID(c)
		if !ok {
			c.Next()
			return
		}
		u, err := users.FindUserByID(c.Request.Context(), userID)
		if err != nil {
			log.Printf("Ошибка загрузки пользователя %d: %v", userID, err)
			c.Next()
			return
		}
		if u == nil {
			if err := ClearSession(sessions.Default(c)); err != nil {
				log.Printf("Ошибка очистки сессии удаленного пользователя %d: %v", userID, err)
			}
			c.Next()
			return
		}
		c.Set(ContextCurrentUser, u)
		c.Next()
	}
}

// NoCache запрещает кеширование ответов (JSON API).
func NoCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Next()
	}
}

// CurrentUser возвращает пользователя, загруженного LoadUser, или nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextCurrentUser)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
