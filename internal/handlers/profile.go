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
	"moviecatalog/internal/models"
	"moviecatalog/internal/services"

	// Сторонние библиотеки
	"github.com/gin-gonic/gin"
)

// profileData собирает данные страницы профиля: свежие данные пользователя, избранное и счетчики.
func (h *Handler) profileData(c *gin.Context, userID int64) (gin.H, error) {
	ctx := c.Request.Context()
	user, err := h.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("пользователь не найден")
	}
	favorites, err := h.store.GetUserFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	favoriteCount, err := h.store.GetUserFavoriteCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Скрытые фильмы не показываются и не учитываются в счетчике.
	visible := visibleFavorites(c, favorites)
	favoriteCount -= int64(len(favorites) - len(visible))
	favorites = visible
	commentCount, err := h.store.GetUserCommentCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	comments, err := h.store.GetUserComments(ctx, userID)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"title":          "Личный кабинет",
		"user":           user,
		"userData":       user,
		"favoriteMovies": favorites,
		"favoriteCount":  favoriteCount,
		"commentCount":   commentCount,
		"userComments":   comments,
	}, nil
}

// ShowProfile отображает личный кабинет.
func (h *Handler) ShowProfile(c *gin.Context) {
	userID := currentUserID(c)
	data, err := h.profileData(c, userID)
	if err != nil {
		log.Printf("Ошибка загрузки личного кабинета пользователя %d: %v", userID, err)
		h.renderError(c, http.StatusInternalServerError, "Ошибка сервера", "Не удалось загрузить данные пользователя.")
		return
	}
	h.render(c, http.StatusOK, "profile.html", data)
}

// HandleProfileUpdate обновляет email, никнейм, описание, аватар и пароль.
// В БД уходят только изменившиеся поля.
func (h *Handler) HandleProfileUpdate(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)

	renderProfile := func(status int, errMsg, success string) {
		data, err := h.profileData(c, userID)
		if err != nil {
			log.Printf("Ошибка загрузки личного кабинета пользователя %d: %v", userID, err)
			h.renderError(c, http.StatusInternalServerError, "Ошибка сервера", "Не удалось обновить данные пользователя.")
			return
		}
		data["error"] = errMsg
		data["success"] = success
		h.render(c, status, "profile.html", data)
	}

	current, err := h.store.FindUserByID(ctx, userID)
	if err != nil || current == nil {
		log.Printf("Ошибка загрузки пользователя %d для обновления профиля: %v", userID, err)
		h.renderError(c, http.StatusInternalServerError, "Ошибка сервера", "Не удалось обновить данные пользователя.")
		return
	}

	bio, bioSent := c.GetPostForm("bio")
	form := auth.ProfileForm{
		Email:    strings.TrimSpace(c.PostForm("email")),
		Nickname: strings.TrimSpace(c.PostForm("nickname")),
		Bio:      bio,
		Password: c.PostForm("password"),
	}
	if msg := auth.FirstError(form); msg != "" {
		renderProfile(http.StatusBadRequest, msg, "")
		return
	}

	var patch models.UserPatch
	if form.Email != "" && form.Email != current.Email {
		other, err := h.store.FindUserByEmail(ctx, form.Email)
		if err != nil {
			log.Printf("Ошибка проверки email %s: %v", form.Email, err)
			renderProfile(http.StatusInternalServerError, "Системная ошибка, попробуйте позже.", "")
			return
		}
		if other != nil && other.ID != userID {
			renderProfile(http.StatusConflict, "Этот email уже используется другим пользователем", "")
			return
		}
		patch.Email = &form.Email
	}
	if form.Nickname != "" && form.Nickname != current.Nickname {
		patch.Nickname = &form.Nickname
	}
	// Пустое описание - допустимое значение: так пользователь очищает профиль.
	if bioSent && bioChanged(current.Bio, form.Bio) {
		patch.Bio = &form.Bio
	}
	if form.Password != "" {
		patch.Password = &form.Password
	}

	var newAvatar string
	if fh, err := c.FormFile("avatar"); err == nil {
		newAvatar, err = services.SaveImage(fh, h.cfg.AvatarDir())
		if err != nil {
			log.Printf("Ошибка сохранения аватара пользователя %d: %v", userID, err)
			renderProfile(http.StatusBadRequest, uploadErrorMessage(err), "")
			return
		}
		patch.Avatar = &newAvatar
	}

	if patch.IsEmpty() {
		renderProfile(http.StatusOK, "", "Данные не изменились")
		return
	}

	if _, err := h.store.UpdateUser(ctx, userID, patch); err != nil {
		if newAvatar != "" {
			services.RemoveFile(h.cfg.AvatarDir(), newAvatar)
		}
		log.Printf("Ошибка обновления профиля пользователя %d: %v", userID, err)
		if errors.Is(err, database.ErrDuplicateKey) {
			renderProfile(http.StatusConflict, "Этот email уже используется другим пользователем", "")
			return
		}
		renderProfile(http.StatusInternalServerError, "Не удалось обновить профиль.", "")
		return
	}
	if newAvatar != "" && current.Avatar != nil {
		services.RemoveFile(h.cfg.AvatarDir(), *current.Avatar)
	}

	log.Printf("Профиль пользователя %d обновлен.", userID)
	renderProfile(http.StatusOK, "", "Профиль успешно обновлен")
}

func bioChanged(current *string, bio string) bool {
	if current == nil {
		return bio != ""
	}
	return *current != bio
}
