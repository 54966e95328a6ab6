package main

import (
	// Стандартные библиотеки
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	// Внутренние пакеты
	"moviecatalog/internal/config"
	"moviecatalog/internal/database"
	"moviecatalog/internal/handlers"
	"moviecatalog/internal/services"

	// Сторонние библиотеки
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const defaultCookieSecret = "fallback-secret-change-in-production"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить веб-сервер",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// checkOrCreateDir проверяет, что путь - директория, и создает ее при отсутствии.
func checkOrCreateDir(dirPath string) error {
	if dirPath == "" || dirPath == "/" || dirPath == "." {
		return fmt.Errorf("небезопасный путь для создания директории: %q", dirPath)
	}

	info, err := os.Stat(dirPath)
	if os.IsNotExist(err) {
		log.Printf("Папка %s не найдена, создаем...", dirPath)
		if err := os.MkdirAll(dirPath, 0755); err != nil {
			return fmt.Errorf("не удалось создать папку %s: %w", dirPath, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("ошибка при проверке папки %s: %w", dirPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("путь %s существует, но не является директорией", dirPath)
	}
	return nil
}

// openStore читает конфигурацию, открывает БД и применяет схему.
// Используется всеми подкомандами.
func openStore(ctx context.Context) (config.Config, *database.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	for _, dir := range cfg.DataDirs() {
		if err := checkOrCreateDir(dir); err != nil {
			return cfg, nil, err
		}
	}
	store, err := database.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return cfg, nil, fmt.Errorf("ошибка инициализации базы данных: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return cfg, nil, err
	}
	return cfg, store, nil
}

// newRouter собирает gin.Engine: сессии, шаблоны, статику и маршруты.
func newRouter(cfg config.Config, store *database.Store) (*gin.Engine, error) {
	router := gin.Default()

	// nil - не доверять заголовкам X-Forwarded-* ни от кого.
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("ошибка установки доверенных прокси: %w", err)
	}
	// Форма фильма может нести видео: в памяти держим до 32 МБ, остальное уходит во временные файлы.
	router.MaxMultipartMemory = 32 << 20

	secret := cfg.CookieSecret
	if secret == defaultCookieSecret {
		// Со случайным секретом сессии не переживут перезапуск, зато не подделываются.
		token, err := services.GenerateSecureToken(32)
		if err != nil {
			return nil, err
		}
		secret = token
		log.Println("ПРЕДУПРЕЖДЕНИЕ: для подписи сессий сгенерирован временный секрет.")
	}

	cookieStore := cookie.NewStore([]byte(secret))
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("mysession", cookieStore))

	// Функции шаблонов регистрируются до загрузки самих шаблонов.
	router.SetFuncMap(handlers.TemplateFuncs())
	router.LoadHTMLGlob(cfg.TemplatesGlob)
	router.Static("/static", cfg.StaticPath)

	handlers.New(store, cfg).RegisterRoutes(router)
	return router, nil
}

func runServe(ctx context.Context) error {
	cfg, store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	created, err := store.EnsureAdmin(ctx, "admin", "Администратор", "admin@movie.com", cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		log.Println("Создана учетная запись администратора 'admin'.")
	}

	gin.SetMode(cfg.GinMode)
	router, err := newRouter(cfg, store)
	if err != nil {
		return err
	}

	log.Printf("Сервер запускается на порту %s", cfg.ListenPort)
	if err := router.Run(":" + cfg.ListenPort); err != nil {
		return fmt.Errorf("ошибка запуска сервера: %w", err)
	}
	return nil
}
