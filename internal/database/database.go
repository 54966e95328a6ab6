package database

import (
	// Стандартные библиотеки
	"context"      // Контекст запроса передается во все операции с БД
	"database/sql" // Пул соединений и транзакции
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	// Драйверы регистрируются пустым импортом: "sqlite" (modernc, без cgo) и "pgx" (PostgreSQL).
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Поддерживаемые драйверы.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// querier - общее подмножество *sql.DB, *sql.Conn и *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store - слой доступа к данным. Не хранит никакого состояния, кроме пула соединений:
// каждая операция берет соединение из пула и возвращает его до выхода.
// Экземпляр создается один раз при старте процесса и закрывается при остановке.
type Store struct {
	db      *sql.DB
	dialect *dialect
}

// Open открывает пул соединений для драйвера ("sqlite" или "pgx"), проверяет соединение
// и возвращает готовый Store. Таблицы не создаются - для этого есть Migrate.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driver, d.dsn(dsn))
	if err != nil {
		return nil, fmt.Errorf("ошибка при открытии %s: %w", dsn, err)
	}

	// Для SQLite одно соединение: параллельная запись в один файл все равно сериализуется,
	// а прагмы (foreign_keys) действуют на соединение.
	db.SetMaxOpenConns(d.maxOpenConns)
	db.SetMaxIdleConns(d.maxOpenConns)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка при проверке соединения (%s): %w", d.name, err)
	}

	log.Printf("Успешно подключились к базе данных (%s)", d.name)
	return &Store{db: db, dialect: d}, nil
}

// New оборачивает уже открытый *sql.DB. Используется в тестах и утилитах.
func New(db *sql.DB, driver string) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, dialect: d}, nil
}

// Close закрывает пул соединений.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping проверяет доступность БД.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Driver возвращает имя используемого драйвера.
func (s *Store) Driver() string {
	return s.dialect.driver
}

// q переводит запрос с плейсхолдерами "?" в синтаксис текущего диалекта.
func (s *Store) q(query string) string {
	if !s.dialect.numberedParams {
		return query
	}
	return rebind(query)
}

// withConn берет одно соединение из пула на время нескольких запросов (единица работы)
// и гарантированно возвращает его.
func (s *Store) withConn(ctx context.Context, fn func(conn querier) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("ошибка получения соединения: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

// withTx выполняет fn в транзакции. Любая ошибка fn откатывает все шаги.
func (s *Store) withTx(ctx context.Context, fn func(tx querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	// После успешного Commit откат ничего не делает.
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// insertReturningID выполняет INSERT ... RETURNING id (поддерживается и SQLite >= 3.35, и PostgreSQL).
func (s *Store) insertReturningID(ctx context.Context, qr querier, query string, args ...any) (int64, error) {
	var id int64
	if err := qr.QueryRowContext(ctx, s.q(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// rebind заменяет "?" на $1, $2, ... вне строковых литералов.
func rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			b.WriteByte(ch)
		case ch == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// affected возвращает количество затронутых строк.
func affected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ошибка получения rowsAffected: %w", err)
	}
	return n, nil
}
