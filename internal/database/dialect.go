package database

import (
	// Стандартные библиотеки
	"database/sql/driver"
	"fmt"
	"strings"

	// Сторонние библиотеки
	"modernc.org/sqlite"
)

// Встроенная LOWER в SQLite понижает регистр только у ASCII. unicode_lower нужна
// для поиска и фильтра по жанру на кириллице.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("unicode_lower", 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case nil:
				return nil, nil
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
}

// dialect описывает различия между SQLite и PostgreSQL, которые видит слой доступа:
// DSN, размер пула, синтаксис плейсхолдеров и DDL.
type dialect struct {
	name           string
	driver         string
	maxOpenConns   int
	numberedParams bool
	lower          string // функция нижнего регистра, понимающая Unicode
	schema         []string
	dsn            func(string) string
}

// sqlitePragmas включают внешние ключи (без них не работает каскадное удаление),
// WAL и таймаут ожидания блокировки.
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

var sqliteDialect = &dialect{
	name:         "SQLite",
	driver:       DriverSQLite,
	maxOpenConns: 1,
	lower:        "unicode_lower",
	dsn: func(path string) string {
		if strings.Contains(path, "?") {
			return path + "&" + sqlitePragmas
		}
		return path + "?" + sqlitePragmas
	},
	schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			nickname TEXT,
			avatar TEXT,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
			bio TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS movies (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT,
			genre TEXT,
			year INTEGER,
			rating REAL,
			poster_url TEXT,
			director TEXT,
			duration INTEGER,
			country TEXT,
			status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS favorites (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			movie_id INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, movie_id),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			movie_id INTEGER NOT NULL,
			parent_id INTEGER NULL,
			content TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE,
			FOREIGN KEY (parent_id) REFERENCES comments(id) ON DELETE CASCADE
		)`,
	},
}

var postgresDialect = &dialect{
	name:           "PostgreSQL",
	driver:         DriverPostgres,
	maxOpenConns:   10,
	numberedParams: true,
	lower:          "LOWER",
	dsn:            func(dsn string) string { return dsn },
	schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(50) NOT NULL UNIQUE,
			nickname VARCHAR(50),
			avatar VARCHAR(255),
			email VARCHAR(100) NOT NULL UNIQUE,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(10) NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
			bio TEXT,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS movies (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(100) NOT NULL,
			description TEXT,
			genre VARCHAR(255),
			year INTEGER,
			rating NUMERIC(3,1),
			poster_url VARCHAR(255),
			director VARCHAR(100),
			duration INTEGER,
			country VARCHAR(100),
			status VARCHAR(10) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS favorites (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			movie_id BIGINT NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, movie_id)
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			movie_id BIGINT NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
			parent_id BIGINT NULL REFERENCES comments(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}

// Индексы одинаковы для обоих диалектов.
var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_users_role ON users (role)`,
	`CREATE INDEX IF NOT EXISTS idx_movies_year ON movies (year)`,
	`CREATE INDEX IF NOT EXISTS idx_movies_status ON movies (status)`,
	`CREATE INDEX IF NOT EXISTS idx_favorites_movie_id ON favorites (movie_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_movie_parent ON comments (movie_id, parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_parent_id ON comments (parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_user_id ON comments (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_created_at ON comments (created_at)`,
}

func dialectFor(driver string) (*dialect, error) {
	switch strings.ToLower(driver) {
	case "", DriverSQLite, "sqlite3":
		return sqliteDialect, nil
	case DriverPostgres, "postgres", "postgresql":
		return postgresDialect, nil
	default:
		return nil, fmt.Errorf("неподдерживаемый драйвер БД: %q (ожидается sqlite или pgx)", driver)
	}
}
