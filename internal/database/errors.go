package database

import (
	// Стандартные библиотеки
	"errors"
	"fmt"
	"strings"

	// Сторонние библиотеки
	"github.com/jackc/pgx/v5/pgconn" // Коды ошибок PostgreSQL
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrDuplicateKey - нарушение ограничения уникальности (логин, email, пара избранного).
	// Исходная ошибка драйвера остается доступной через errors.As.
	ErrDuplicateKey = errors.New("нарушение уникальности")

	// ErrParentNotFound - родительский комментарий не существует или относится к другому фильму.
	ErrParentNotFound = errors.New("родительский комментарий не найден")
)

// pgUniqueViolation - SQLSTATE нарушения UNIQUE в PostgreSQL.
const pgUniqueViolation = "23505"

// isUniqueViolation распознает нарушение уникальности для обоих драйверов.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return true
		}
		// Без расширенных кодов приходит только базовый SQLITE_CONSTRAINT.
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// Запасной вариант на случай обертки, скрывающей тип.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// wrapStoreErr добавляет контекст к ошибке БД. Нарушение уникальности дополнительно
// помечается ErrDuplicateKey, остальные ошибки передаются как есть (через %w).
func wrapStoreErr(msg string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %w", msg, ErrDuplicateKey, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
