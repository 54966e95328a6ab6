package database

import (
	// Стандартные библиотеки
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	// Внутренние пакеты
	"moviecatalog/internal/auth"
	"moviecatalog/internal/models"
)

// Migrate создает таблицы users, movies, favorites, comments и индексы,
// если они еще не существуют. Повторный вызов безопасен.
func (s *Store) Migrate(ctx context.Context) error {
	// Таблицы в порядке зависимостей внешних ключей.
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ошибка при создании таблицы: %w", err)
		}
	}
	// Индексы одинаковы для обоих диалектов.
	for _, stmt := range indexes {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ошибка при создании индекса: %w", err)
		}
	}
	log.Println("Таблицы и индексы успешно проверены/созданы.")
	return nil
}

// EnsureAdmin создает учетную запись администратора, если пользователя с таким логином еще нет.
// Возвращает true, если запись была создана.
func (s *Store) EnsureAdmin(ctx context.Context, username, nickname, email, password string) (bool, error) {
	// Сначала ищем существующую запись по логину.
	var id int64
	err := s.db.QueryRowContext(ctx, s.q("SELECT id FROM users WHERE username = ?"), username).Scan(&id)
	if err == nil {
		log.Printf("Учетная запись администратора %s уже существует (ID: %d)", username, id)
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("ошибка поиска администратора %s: %w", username, err)
	}

	// Записи нет - создаем администратора.
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	id, err = s.insertReturningID(ctx, s.db,
		"INSERT INTO users (username, nickname, email, password, role) VALUES (?, ?, ?, ?, ?)",
		username, nickname, email, hash, models.RoleAdmin)
	if err != nil {
		return false, wrapStoreErr("ошибка создания администратора", err)
	}
	log.Printf("Создана учетная запись администратора %s (ID: %d)", username, id)
	return true, nil
}
