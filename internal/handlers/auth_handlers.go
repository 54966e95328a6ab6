package handlers

import (
	// Стандартные библиотеки
	"errors"
	"log"
	"net/http"
	"strings"

	// Внутренние пакеты
	"moviecatalog/internal/auth"
	"moviecatalog/internal/database"
	"moviecatalog/internal/middleware"
	"moviecatalog/internal/models"
	"moviecatalog/internal/services"

	// Сторонние библиотеки
	"github.com/gin-contrib/sessions" // Сессии на cookie
	"github.com/gin-gonic/gin"
)

// homeFor - куда отправить пользователя после входа.
func homeFor(u *models.User) string {
	if u.IsAdmin() {
		return "/admin/dashboard"
	}
	return "/user/profile"
}

// ShowLoginPage отображает страницу входа. Вошедший пользователь уходит в свой раздел.
func (h *Handler) ShowLoginPage(c *gin.Context) {
	if u := middleware.CurrentUser(c); u != nil {
		c.Redirect(http.StatusFound, homeFor(u))
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{"title": "Вход"})
}

// HandleLogin проверяет логин и пароль и сохраняет пользователя в сессии.
func (h *Handler) HandleLogin(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	renderLoginWithError := func(status int, message string) {
		h.render(c, status, "login.html", gin.H{
			"title":    "Вход",
			"error":    message,
			"username": username,
		})
	}

	if username == "" || password == "" {
		renderLoginWithError(http.StatusBadRequest, "Имя пользователя и пароль не могут быть пустыми")
		return
	}

	user, err := h.store.FindUserByUsername(c.Request.Context(), username)
	if err != nil {
		log.Printf("Ошибка получения пользователя %s из БД: %v", username, err)
		renderLoginWithError(http.StatusInternalServerError, "Сервис входа временно недоступен.")
		return
	}
	if user == nil || !h.store.VerifyPassword(password, user.PasswordHash) {
		log.Printf("Неудачная попытка входа для пользователя '%s'.", username)
		renderLoginWithError(http.StatusUnauthorized, "Неверное имя пользователя или пароль.")
		return
	}

	if err := middleware.SaveLogin(sessions.Default(c), user); err != nil {
		log.Printf("Ошибка сохранения сессии после входа пользователя %s (ID: %d): %v", username, user.ID, err)
		renderLoginWithError(http.StatusInternalServerError, "Не удалось сохранить данные сессии.")
		return
	}

	log.Printf("Пользователь %s (ID: %d) успешно вошел в систему.", user.Username, user.ID)
	c.Redirect(http.StatusFound, homeFor(user))
}

// ShowRegisterPage отображает страницу регистрации.
func (h *Handler) ShowRegisterPage(c *gin.Context) {
	if u := middleware.CurrentUser(c); u != nil {
		c.Redirect(http.StatusFound, homeFor(u))
		return
	}
	h.render(c, http.StatusOK, "register.html", gin.H{"title": "Регистрация", "form": auth.RegisterForm{}})
}

// HandleRegister создает пользователя (с необязательным аватаром) и сразу выполняет вход.
func (h *Handler) HandleRegister(c *gin.Context) {
	ctx := c.Request.Context()
	form := auth.RegisterForm{
		Username:        strings.TrimSpace(c.PostForm("username")),
		Nickname:        strings.TrimSpace(c.PostForm("nickname")),
		Email:           strings.TrimSpace(c.PostForm("email")),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirmPassword"),
	}

	renderRegisterWithError := func(status int, message string) {
		form.Password, form.ConfirmPassword = "", ""
		h.render(c, status, "register.html", gin.H{
			"title": "Регистрация",
			"error": message,
			"form":  form,
		})
	}

	if msg := auth.FirstError(form); msg != "" {
		renderRegisterWithError(http.StatusBadRequest, msg)
		return
	}

	existing, err := h.store.FindUserByUsername(ctx, form.Username)
	if err != nil {
		log.Printf("Ошибка проверки логина %s: %v", form.Username, err)
		renderRegisterWithError(http.StatusInternalServerError, "Системная ошибка, попробуйте позже.")
		return
	}
	if existing != nil {
		renderRegisterWithError(http.StatusConflict, "Этот логин уже занят")
		return
	}
	existing, err = h.store.FindUserByEmail(ctx, form.Email)
	if err != nil {
		log.Printf("Ошибка проверки email %s: %v", form.Email, err)
		renderRegisterWithError(http.StatusInternalServerError, "Системная ошибка, попробуйте позже.")
		return
	}
	if existing != nil {
		renderRegisterWithError(http.StatusConflict, "Этот email уже зарегистрирован")
		return
	}

	var avatar *string
	if fh, err := c.FormFile("avatar"); err == nil {
		name, err := services.SaveImage(fh, h.cfg.AvatarDir())
		if err != nil {
			log.Printf("Ошибка сохранения аватара при регистрации %s: %v", form.Username, err)
			renderRegisterWithError(http.StatusBadRequest, uploadErrorMessage(err))
			return
		}
		avatar = &name
	}

	id, err := h.store.CreateUser(ctx, models.NewUser{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		Nickname: form.Nickname,
		Avatar:   avatar,
	})
	if err != nil {
		if avatar != nil {
			services.RemoveFile(h.cfg.AvatarDir(), *avatar)
		}
		log.Printf("Ошибка создания пользователя %s: %v", form.Username, err)
		if errors.Is(err, database.ErrDuplicateKey) {
			renderRegisterWithError(http.StatusConflict, "Логин или email уже заняты")
			return
		}
		renderRegisterWithError(http.StatusInternalServerError, "Системная ошибка, попробуйте позже.")
		return
	}

	user := &models.User{ID: id, Username: form.Username, Role: models.RoleUser}
	if err := middleware.SaveLogin(sessions.Default(c), user); err != nil {
		log.Printf("Ошибка сохранения сессии после регистрации %s: %v", form.Username, err)
		c.Redirect(http.StatusFound, "/login")
		return
	}
	log.Printf("Пользователь %s (ID: %d) успешно зарегистрирован.", form.Username, id)
	c.Redirect(http.StatusFound, "/user/profile")
}

// HandleLogout очищает сессию и возвращает на страницу входа.
func (h *Handler) HandleLogout(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get(middleware.SessionUserID)
	if err := middleware.ClearSession(session); err != nil {
		log.Printf("Ошибка сохранения сессии после выхода пользователя (ID: %v): %v", userID, err)
	} else {
		log.Printf("Пользователь (ID: %v) успешно вышел из системы.", userID)
	}
	c.Redirect(http.StatusFound, "/login")
}

// uploadErrorMessage переводит ошибку сохранения изображения в сообщение для пользователя.
func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrFileTooLarge):
		return "Размер изображения не должен превышать 10 МБ"
	case errors.Is(err, services.ErrInvalidType):
		return "Разрешены только изображения JPEG, PNG и GIF"
	case errors.Is(err, services.ErrInvalidFormat):
		return "Не удалось распознать изображение или файл поврежден"
	case errors.Is(err, services.ErrEmptyFile):
		return "Файл пустой"
	}
	return "Не удалось сохранить изображение"
}
