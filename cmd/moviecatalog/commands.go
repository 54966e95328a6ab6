package main

import (
	// Стандартные библиотеки
	"encoding/json"
	"fmt"
	"log"
	"os"

	// Внутренние пакеты
	"moviecatalog/internal/auth"
	"moviecatalog/internal/models"

	// Сторонние библиотеки
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Создать таблицы и индексы, если их еще нет",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()
		log.Printf("Схема базы данных (%s) актуальна.", store.Driver())
		return nil
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Создать учетную запись администратора, если ее нет",
	Long: `Создает пользователя "admin" с ролью администратора.
Пароль берется из ADMIN_PASSWORD. Существующая учетная запись не изменяется.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
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
			fmt.Fprintln(cmd.OutOrStdout(), "Администратор создан: admin")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Администратор уже существует")
		}
		return nil
	},
}

var importUsersCmd = &cobra.Command{
	Use:   "import-users <file.json>",
	Short: "Импортировать пользователей с готовыми bcrypt-хешами",
	Long: `Читает JSON-массив вида [{"username": "...", "email": "...", "password": "<bcrypt>", "createdAt": "..."}]
и добавляет пользователей. Занятые логины и email пропускаются.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := readImportFile(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		_, store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		var imported, skipped int
		for _, u := range users {
			ok, err := store.ImportUser(ctx, u)
			if err != nil {
				return err
			}
			if ok {
				imported++
			} else {
				skipped++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Импортировано: %d, пропущено: %d\n", imported, skipped)
		return nil
	},
}

func readImportFile(path string) ([]models.ImportedUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}
	var users []models.ImportedUser
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("ошибка разбора файла %s: %w", path, err)
	}
	for i, u := range users {
		if u.Username == "" || u.Email == "" || u.Password == "" {
			return nil, fmt.Errorf("запись %d: username, email и password обязательны", i)
		}
		if !auth.IsValidUsername(u.Username) {
			return nil, fmt.Errorf("запись %d: некорректный логин %q", i, u.Username)
		}
		if !auth.IsValidEmail(u.Email) {
			return nil, fmt.Errorf("запись %d: некорректный email %q", i, u.Email)
		}
	}
	return users, nil
}
