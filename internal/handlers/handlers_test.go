package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviecatalog/internal/config"
	"moviecatalog/internal/database"
	"moviecatalog/internal/models"
)

// testApp - маршрутизатор поверх настоящей SQLite-базы и настоящих шаблонов.
type testApp struct {
	router *gin.Engine
	store  *database.Store
	cfg    config.Config
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	dir := t.TempDir()

	store, err := database.Open(ctx, database.DriverSQLite, filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(ctx))

	cfg := config.Config{
		UploadPath:    filepath.Join(dir, "uploads"),
		VideoPath:     filepath.Join(dir, "videos"),
		SessionMaxAge: 3600,
	}
	for _, d := range cfg.DataDirs() {
		require.NoError(t, os.MkdirAll(d, 0o755))
	}

	router := gin.New()
	router.Use(sessions.Sessions("mysession", cookie.NewStore([]byte("test-secret"))))
	router.SetFuncMap(TemplateFuncs())
	router.LoadHTMLGlob("../../web/templates/*")
	New(store, cfg).RegisterRoutes(router)

	return &testApp{router: router, store: store, cfg: cfg}
}

func (a *testApp) do(t *testing.T, req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(t *testing.T, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return a.do(t, httptest.NewRequest(http.MethodGet, path, nil), cookies)
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req, cookies)
}

func (a *testApp) sendJSON(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = strings.NewReader(string(data))
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.do(t, req, cookies)
}

// login входит через форму и возвращает cookie сессии.
func (a *testApp) login(t *testing.T, username, password string) []*http.Cookie {
	t.Helper()
	w := a.postForm(t, "/login", url.Values{"username": {username}, "password": {password}}, nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func (a *testApp) user(t *testing.T, username string) int64 {
	t.Helper()
	id, err := a.store.CreateUser(context.Background(), models.NewUser{
		Username: username, Email: username + "@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	return id
}

func (a *testApp) admin(t *testing.T) []*http.Cookie {
	t.Helper()
	_, err := a.store.EnsureAdmin(context.Background(), "admin", "Администратор", "admin@movie.com", "111111")
	require.NoError(t, err)
	return a.login(t, "admin", "111111")
}

func (a *testApp) movie(t *testing.T, title, status string, genre ...string) int64 {
	t.Helper()
	year, rating := 2020, 7.5
	id, err := a.store.AdminAddMovie(context.Background(), models.NewMovie{
		Title: title, Year: &year, Rating: &rating, Genre: genre, Status: status,
	})
	require.NoError(t, err)
	return id
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func TestHomeShowsOnlyActiveMovies(t *testing.T) {
	app := newTestApp(t)
	app.movie(t, "Видимый фильм", models.StatusActive, "Драма")
	app.movie(t, "Снятый фильм", models.StatusInactive, "Драма")

	w := app.get(t, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Видимый фильм")
	assert.NotContains(t, w.Body.String(), "Снятый фильм")
	assert.Contains(t, w.Body.String(), `href="/login"`)
}

func TestMoviesPageFilters(t *testing.T) {
	app := newTestApp(t)
	app.movie(t, "Комедия года", models.StatusActive, "Комедия")
	app.movie(t, "Серьезная драма", models.StatusActive, "Драма")

	w := app.get(t, "/movies?genre="+url.QueryEscape("Комедия"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Комедия года")
	assert.NotContains(t, body, "Серьезная драма")

	// Параметр search отдает страницу поиска.
	w = app.get(t, "/movies?search="+url.QueryEscape("драма"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Результаты поиска")
}

func TestSearchPage(t *testing.T) {
	app := newTestApp(t)
	app.movie(t, "Matrix", models.StatusActive)

	w := app.get(t, "/search?q=matr", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Matrix")

	w = app.get(t, "/search?q=", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Найдено: 0")
}

func TestMovieDetailVisibility(t *testing.T) {
	app := newTestApp(t)
	active := app.movie(t, "Открытый", models.StatusActive)
	hidden := app.movie(t, "Скрытый", models.StatusInactive)

	w := app.get(t, "/movies/"+itoa(active), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Открытый")

	assert.Equal(t, http.StatusNotFound, app.get(t, "/movies/"+itoa(hidden), nil).Code)
	assert.Equal(t, http.StatusNotFound, app.get(t, "/movies/999", nil).Code)
	assert.Equal(t, http.StatusNotFound, app.get(t, "/movies/abc", nil).Code)

	admin := app.admin(t)
	assert.Equal(t, http.StatusOK, app.get(t, "/movies/"+itoa(hidden), admin).Code)
}

func TestPlayWithoutVideo(t *testing.T) {
	app := newTestApp(t)
	id := app.movie(t, "Без видео", models.StatusActive)

	w := app.get(t, "/play/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Видео для этого фильма пока недоступно")
}

func TestRegisterLoginLogout(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{
		"username":        {"new_user"},
		"nickname":        {"Новичок"},
		"email":           {"new@example.com"},
		"password":        {"secret123"},
		"confirmPassword": {"secret123"},
	}
	w := app.postForm(t, "/register", form, nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "/user/profile", w.Header().Get("Location"))

	u, err := app.store.FindUserByUsername(context.Background(), "new_user")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Новичок", u.Nickname)

	// Повторная регистрация с тем же логином.
	form.Set("email", "other@example.com")
	w = app.postForm(t, "/register", form, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Этот логин уже занят")

	cookies := app.login(t, "new_user", "secret123")
	w = app.get(t, "/user/profile", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Новичок")

	// Вошедший пользователь со страницы входа уходит в личный кабинет.
	w = app.get(t, "/login", cookies)
	assert.Equal(t, http.StatusFound, w.Code)

	w = app.get(t, "/logout", cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	var cleared bool
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "mysession" && ck.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)
	form := url.Values{
		"username":        {"ab"},
		"nickname":        {"x"},
		"email":           {"bad"},
		"password":        {"secret123"},
		"confirmPassword": {"secret123"},
	}
	w := app.postForm(t, "/register", form, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Логин должен содержать")

	form.Set("username", "valid_name")
	form.Set("email", "ok@example.com")
	form.Set("confirmPassword", "other123")
	w = app.postForm(t, "/register", form, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Пароли не совпадают")

	// 40 кириллических символов - 80 байт, больше предела bcrypt.
	long := strings.Repeat("я", 40)
	form.Set("password", long)
	form.Set("confirmPassword", long)
	w = app.postForm(t, "/register", form, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Пароль слишком длинный")
	assert.NotContains(t, w.Body.String(), "Системная ошибка")

	u, err := app.store.FindUserByUsername(context.Background(), "valid_name")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestLoginFailures(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "alice")

	w := app.postForm(t, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Неверное имя пользователя или пароль")

	w = app.postForm(t, "/login", url.Values{"username": {""}, "password": {""}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRedirectsAdminToDashboard(t *testing.T) {
	app := newTestApp(t)
	_, err := app.store.EnsureAdmin(context.Background(), "admin", "Администратор", "admin@movie.com", "111111")
	require.NoError(t, err)

	w := app.postForm(t, "/login", url.Values{"username": {"admin"}, "password": {"111111"}}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))
}

func TestProfileUpdate(t *testing.T) {
	app := newTestApp(t)
	id := app.user(t, "alice")
	app.user(t, "bob")
	cookies := app.login(t, "alice", "secret123")

	w := app.postForm(t, "/user/profile", url.Values{
		"nickname": {"Алиса"},
		"bio":      {"Люблю кино"},
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Профиль успешно обновлен")

	u, err := app.store.FindUserByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Алиса", u.Nickname)
	require.NotNil(t, u.Bio)
	assert.Equal(t, "Люблю кино", *u.Bio)

	w = app.postForm(t, "/user/profile", url.Values{"email": {"bob@example.com"}}, cookies)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Смена пароля.
	w = app.postForm(t, "/user/profile", url.Values{"password": {"newpass1"}}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	app.login(t, "alice", "newpass1")

	// Длинный кириллический пароль отклоняется проверкой формы, старый пароль остается.
	w = app.postForm(t, "/user/profile", url.Values{"password": {strings.Repeat("я", 40)}}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Пароль слишком длинный")
	app.login(t, "alice", "newpass1")
}

func TestProfileHidesInactiveFavorites(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	id := app.user(t, "alice")
	shown := app.movie(t, "Shown Favorite", models.StatusActive)
	hidden := app.movie(t, "Withdrawn Favorite", models.StatusInactive)
	for _, m := range []int64{shown, hidden} {
		_, err := app.store.AddFavorite(ctx, id, m)
		require.NoError(t, err)
	}

	w := app.get(t, "/user/profile", app.login(t, "alice", "secret123"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Shown Favorite")
	assert.NotContains(t, w.Body.String(), "Withdrawn Favorite")
	assert.Contains(t, w.Body.String(), "Избранное: 1 ")
}

func TestProfileRequiresLogin(t *testing.T) {
	app := newTestApp(t)
	w := app.get(t, "/user/profile", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestDeletedUserSessionIsCleared(t *testing.T) {
	app := newTestApp(t)
	id := app.user(t, "ghost")
	cookies := app.login(t, "ghost", "secret123")

	_, err := app.store.DeleteUser(context.Background(), id)
	require.NoError(t, err)

	w := app.get(t, "/", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/login"`)
}

func TestNotFound(t *testing.T) {
	app := newTestApp(t)

	w := app.get(t, "/no/such/page", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "404")

	w = app.get(t, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestDebugDB(t *testing.T) {
	app := newTestApp(t)
	w := app.get(t, "/debug/db", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["dbConnected"])
	assert.Equal(t, database.DriverSQLite, body["driver"])
}

func TestTemplateFuncs(t *testing.T) {
	funcs := TemplateFuncs()
	avatar := funcs["avatarURL"].(func(*string) string)
	poster := funcs["posterURL"].(func(*string) string)
	rating := funcs["rating"].(func(*float64) string)

	name := "a.png"
	assert.Equal(t, "/uploads/avatars/a.png", avatar(&name))
	assert.Equal(t, "/static/img/default-avatar.svg", avatar(nil))
	assert.Equal(t, "/static/img/no-poster.svg", poster(nil))

	r := 7.5
	assert.Equal(t, "7.5", rating(&r))
	assert.Equal(t, "-", rating(nil))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
