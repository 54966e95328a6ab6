package config

import (
	// Стандартные библиотеки
	"fmt"
	"log"
	"os"
	"path/filepath"

	// Сторонние библиотеки
	"github.com/joho/godotenv"             // Загрузка .env
	"github.com/kelseyhightower/envconfig" // Разбор переменных окружения в структуру
)

// Config - настройки приложения из переменных окружения (и необязательного файла .env).
type Config struct {
	ListenPort    string `envconfig:"LISTEN_PORT" default:"8080"`
	CookieSecret  string `envconfig:"COOKIE_SECRET" default:"fallback-secret-change-in-production"`
	DBDriver      string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN         string `envconfig:"DB_DSN" default:"data/movies.db"`
	UploadPath    string `envconfig:"UPLOAD_PATH" default:"web/static/uploads"`
	VideoPath     string `envconfig:"VIDEO_PATH" default:"web/static/videos"`
	TemplatesGlob string `envconfig:"TEMPLATES_GLOB" default:"web/templates/*"`
	StaticPath    string `envconfig:"STATIC_PATH" default:"./web/static"`
	SessionMaxAge int    `envconfig:"SESSION_MAX_AGE" default:"86400"`
	SecureCookie  bool   `envconfig:"SECURE_COOKIE" default:"false"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"111111"`
	GinMode       string `envconfig:"GIN_MODE" default:"release"`
}

// Load читает .env (если он есть) и заполняет Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Предупреждение: не удалось прочитать .env: %v", err)
	}
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return c, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	}
	if c.SessionMaxAge <= 0 {
		return c, fmt.Errorf("SESSION_MAX_AGE должен быть положительным, получено %d", c.SessionMaxAge)
	}
	if c.CookieSecret == "fallback-secret-change-in-production" {
		log.Println("ПРЕДУПРЕЖДЕНИЕ: COOKIE_SECRET не задан, используется значение по умолчанию.")
	}
	return c, nil
}

// IsSQLite сообщает, используется ли встроенная БД (тогда DSN - путь к файлу).
func (c Config) IsSQLite() bool {
	switch c.DBDriver {
	case "", "sqlite", "sqlite3":
		return true
	}
	return false
}

// PosterDir - директория постеров, раздается как /uploads/posters.
func (c Config) PosterDir() string {
	return filepath.Join(c.UploadPath, "posters")
}

// AvatarDir - директория аватаров, раздается как /uploads/avatars.
func (c Config) AvatarDir() string {
	return filepath.Join(c.UploadPath, "avatars")
}

// DataDirs возвращает директории, которые должны существовать до старта сервера.
func (c Config) DataDirs() []string {
	dirs := []string{c.PosterDir(), c.AvatarDir(), c.VideoPath}
	if c.IsSQLite() {
		if dir := filepath.Dir(c.DBDSN); dir != "." && dir != "/" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
