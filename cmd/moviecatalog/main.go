package main

import (
	// Стандартные библиотеки
	"fmt"
	"log"
	"os"

	// Сторонние библиотеки
	"github.com/spf13/cobra"
)

// rootCmd без подкоманды запускает веб-сервер.
var rootCmd = &cobra.Command{
	Use:   "moviecatalog",
	Short: "Кинокаталог: веб-сервер и служебные команды",
	Long: `Кинокаталог - серверное веб-приложение с каталогом фильмов,
избранным, комментариями и панелью администратора.

Без подкоманды запускается веб-сервер (то же, что "serve").
Настройки читаются из переменных окружения и файла .env.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd, importUsersCmd)
}

// main - точка входа приложения.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
