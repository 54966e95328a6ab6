package middleware

import (
	// Внутренние пакеты
	"moviecatalog/internal/models"

	// Сторонние библиотеки
	"github.com/gin-contrib/sessions" // Сессии на cookie
)

// SaveLogin записывает вошедшего пользователя в сессию.
func SaveLogin(session sessions.Session, u *models.User) error {
	session.Set(SessionUserID, u.ID)
	session.Set(SessionUsername, u.Username)
	session.Set(SessionRole, u.Role)
	return session.Save()
}

// ClearSession удаляет данные пользователя и просит браузер удалить cookie.
func ClearSession(session sessions.Session) error {
	session.Delete(SessionUserID)
	session.Delete(SessionUsername)
	session.Delete(SessionRole)
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}
