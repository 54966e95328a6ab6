package models

import (
	// Стандартные библиотеки
	"time" // Для временных меток created_at / updated_at
)

// Роли пользователей (столбец users.role).
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Статусы фильмов (столбец movies.status).
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User представляет пользователя в системе.
// Поля соответствуют столбцам таблицы 'users'.
// Необязательные поля (avatar, bio) моделируются указателями: nil означает NULL в БД.
type User struct {
	ID           int64     `json:"id"`         // Уникальный идентификатор пользователя (Primary Key)
	Username     string    `json:"username"`   // Логин (UNIQUE, 3-20 символов)
	Nickname     string    `json:"nickname"`   // Отображаемое имя (если NULL в БД - подставляется username)
	Email        string    `json:"email"`      // Email (UNIQUE)
	PasswordHash string    `json:"-"`          // bcrypt-хеш пароля (НЕ ДОЛЖЕН передаваться клиенту)
	Avatar       *string   `json:"avatar"`     // Имя файла аватара (может быть NULL)
	Bio          *string   `json:"bio"`        // Краткое описание профиля (может быть NULL)
	Role         string    `json:"role"`       // 'user' или 'admin'
	CreatedAt    time.Time `json:"created_at"` // Время регистрации
	UpdatedAt    time.Time `json:"updated_at"` // Время последнего изменения профиля
}

// IsAdmin сообщает, является ли пользователь администратором.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// NewUser - данные для регистрации. Password передается в открытом виде,
// хеширование выполняет слой доступа к данным.
type NewUser struct {
	Username string
	Email    string
	Password string
	Nickname string  // Пустая строка - используется Username
	Avatar   *string // Имя уже сохраненного файла аватара
}

// UserPatch описывает частичное обновление профиля.
// nil - поле не меняется; не-nil (в том числе пустая строка) - поле обновляется.
type UserPatch struct {
	Email    *string
	Password *string // Открытый пароль, будет заново захеширован
	Avatar   *string
	Bio      *string
	Nickname *string
}

// IsEmpty возвращает true, если патч не содержит ни одного поля.
func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.Password == nil && p.Avatar == nil && p.Bio == nil && p.Nickname == nil
}

// ImportedUser - запись из JSON-файла импорта. Пароль уже захеширован.
type ImportedUser struct {
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	CreatedAt *time.Time `json:"createdAt"`
}

// Movie представляет фильм каталога.
// Genre хранится в БД строкой через запятую, но наружу всегда отдается массивом тегов.
type Movie struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Genre       []string  `json:"genre"` // Нормализованный набор тегов (обрезаны пробелы, без пустых)
	Year        *int      `json:"year"`
	Rating      *float64  `json:"rating"` // Один знак после запятой
	PosterURL   *string   `json:"poster_url"`
	Director    *string   `json:"director"`
	Duration    *int      `json:"duration"` // Минуты
	Country     *string   `json:"country"`
	Status      string    `json:"status"` // 'active' или 'inactive'
	CreatedAt   time.Time `json:"created_at"`
}

// RatingValue возвращает рейтинг или 0, если он не задан.
func (m Movie) RatingValue() float64 {
	if m.Rating == nil {
		return 0
	}
	return *m.Rating
}

// YearValue возвращает год или 0, если он не задан.
func (m Movie) YearValue() int {
	if m.Year == nil {
		return 0
	}
	return *m.Year
}

// CountryValue возвращает страну или пустую строку.
func (m Movie) CountryValue() string {
	if m.Country == nil {
		return ""
	}
	return *m.Country
}

// NewMovie - полный набор полей для добавления фильма администратором.
type NewMovie struct {
	Title       string
	Description *string
	Genre       []string
	Year        *int
	Rating      *float64
	PosterURL   *string
	Director    *string
	Duration    *int
	Country     *string
	Status      string // Пустая строка - 'active'
}

// MoviePatch - частичное обновление фильма. nil - поле не меняется.
// Для Genre: nil - не менять, пустой срез - очистить.
type MoviePatch struct {
	Title       *string
	Description *string
	Genre       []string
	Year        *int
	Rating      *float64
	PosterURL   *string
	Director    *string
	Duration    *int
	Country     *string
	Status      *string
}

// FavoriteMovie - фильм из избранного пользователя вместе со временем добавления.
type FavoriteMovie struct {
	Movie
	FavoritedAt time.Time `json:"favorited_at"`
}

// FavoriteResult - итог добавления в избранное.
// Повторное добавление - не ошибка, а AlreadyExists=true.
type FavoriteResult struct {
	Added         bool `json:"added"`
	AlreadyExists bool `json:"already_exists"`
}

// Comment представляет комментарий. ParentID == nil - комментарий верхнего уровня.
type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	MovieID   int64     `json:"movie_id"`
	ParentID  *int64    `json:"parent_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentView - комментарий с данными автора для отображения.
// ReplyCount заполняется только для комментариев верхнего уровня,
// MovieTitle - только в административных выборках.
type CommentView struct {
	Comment
	Username   string  `json:"username"`
	Nickname   string  `json:"nickname"`
	Avatar     *string `json:"avatar"`
	ReplyCount int64   `json:"reply_count"`
	MovieTitle string  `json:"movie_title,omitempty"`
}

// UserComment - комментарий пользователя с информацией о фильме и родительском комментарии.
type UserComment struct {
	Comment
	MovieTitle         string   `json:"movie_title"`
	PosterURL          *string  `json:"poster_url"`
	Rating             *float64 `json:"rating"`
	ParentContent      *string  `json:"parent_content"`
	ParentUserNickname *string  `json:"parent_user_nickname"`
}

// CommentPage - страница комментариев для панели администратора.
type CommentPage struct {
	Comments   []CommentView `json:"comments"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"totalPages"`
}

// AdminMovie - фильм со счетчиками комментариев и избранного для панели администратора.
type AdminMovie struct {
	Movie
	CommentCount  int64 `json:"comment_count"`
	FavoriteCount int64 `json:"favorite_count"`
}

// AdminStats - сводная статистика для панели администратора.
type AdminStats struct {
	ActiveMovies   int64 `json:"activeMovies"`
	InactiveMovies int64 `json:"inactiveMovies"`
	TotalUsers     int64 `json:"totalUsers"` // Только role = 'user'
	TotalComments  int64 `json:"totalComments"`
}
