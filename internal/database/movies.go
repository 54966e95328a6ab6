package database

import (
	// Стандартные библиотеки
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	// Внутренние пакеты
	"moviecatalog/internal/models"
)

const movieColumns = "m.id, m.title, m.description, m.genre, m.year, m.rating, m.poster_url, m.director, m.duration, m.country, m.status, m.created_at"

// moviesByYear - сортировка по году с NULL в конце, одинаково для SQLite и PostgreSQL.
const moviesByYear = " ORDER BY m.year IS NULL, m.year DESC, m.id ASC"

// movieDest - промежуточные NULL-совместимые поля строки movies.
type movieDest struct {
	description, genre, posterURL, director, country sql.NullString
	year, duration                                   sql.NullInt64
	rating                                           sql.NullFloat64
}

func (d *movieDest) targets(m *models.Movie) []any {
	return []any{&m.ID, &m.Title, &d.description, &d.genre, &d.year, &d.rating,
		&d.posterURL, &d.director, &d.duration, &d.country, &m.Status, &m.CreatedAt}
}

// normalize переносит значения в модель: genre - в массив тегов, числа - в int/float64.
func (d *movieDest) normalize(m *models.Movie) {
	m.Description = nullString(d.description)
	m.PosterURL = nullString(d.posterURL)
	m.Director = nullString(d.director)
	m.Country = nullString(d.country)
	m.Genre = ParseGenre(d.genre.String)
	m.Year = nullInt(d.year)
	m.Duration = nullInt(d.duration)
	if d.rating.Valid {
		r := roundRating(d.rating.Float64)
		m.Rating = &r
	}
}

// scanMovie читает одну строку movieColumns.
func scanMovie(row rowScanner) (*models.Movie, error) {
	m := &models.Movie{}
	var d movieDest
	if err := row.Scan(d.targets(m)...); err != nil {
		return nil, err
	}
	d.normalize(m)
	return m, nil
}

func (s *Store) queryMovies(ctx context.Context, what, query string, args ...any) ([]models.Movie, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения %s: %w", what, err)
	}
	defer rows.Close()

	movies := []models.Movie{} // Пустой результат - [], а не null
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования фильма: %w", err)
		}
		movies = append(movies, *m)
	}
	return movies, rows.Err()
}

// GetAllMovies возвращает все фильмы, новые (по году) первыми.
func (s *Store) GetAllMovies(ctx context.Context) ([]models.Movie, error) {
	return s.queryMovies(ctx, "списка фильмов", "SELECT "+movieColumns+" FROM movies m"+moviesByYear)
}

// FindMovieByID возвращает фильм или nil, nil, если его нет.
func (s *Store) FindMovieByID(ctx context.Context, id int64) (*models.Movie, error) {
	row := s.db.QueryRowContext(ctx, s.q("SELECT "+movieColumns+" FROM movies m WHERE m.id = ?"), id)
	m, err := scanMovie(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка поиска фильма %d: %w", id, err)
	}
	return m, nil
}

// FindMoviesByGenre возвращает фильмы, в наборе жанров которых есть tag.
// Порядок тегов, пробелы вокруг запятых и регистр в хранимой строке не важны.
func (s *Store) FindMoviesByGenre(ctx context.Context, tag string) ([]models.Movie, error) {
	pattern, ok := genreMatchPattern(strings.ToLower(tag))
	if !ok {
		return []models.Movie{}, nil // Пустой тег ничему не соответствует
	}
	// Строка жанров обрамляется запятыми и очищается от пробелов, чтобы искать ",тег,".
	return s.queryMovies(ctx, "фильмов по жанру",
		"SELECT "+movieColumns+" FROM movies m"+
			" WHERE "+s.dialect.lower+"(',' || REPLACE(COALESCE(m.genre, ''), ' ', '') || ',') LIKE ? ESCAPE '\\'"+
			moviesByYear, pattern)
}

// FindMoviesByYear возвращает фильмы указанного года, лучшие по рейтингу первыми.
func (s *Store) FindMoviesByYear(ctx context.Context, year int) ([]models.Movie, error) {
	return s.queryMovies(ctx, "фильмов по году",
		"SELECT "+movieColumns+" FROM movies m WHERE m.year = ? ORDER BY m.rating IS NULL, m.rating DESC, m.id ASC", year)
}

// SearchMovies ищет подстроку (без учета регистра) в названии или описании.
// Пустой запрос сюда попадать не должен - его отсекает обработчик; на всякий случай вернется пустой список.
func (s *Store) SearchMovies(ctx context.Context, keyword string) ([]models.Movie, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []models.Movie{}, nil
	}
	// % и _ в запросе пользователя ищутся буквально.
	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
	return s.queryMovies(ctx, "результатов поиска",
		"SELECT "+movieColumns+" FROM movies m"+
			" WHERE "+s.dialect.lower+"(m.title) LIKE ? ESCAPE '\\' OR "+s.dialect.lower+"(COALESCE(m.description, '')) LIKE ? ESCAPE '\\'"+
			moviesByYear, pattern, pattern)
}

// GetGenres возвращает отсортированный набор всех жанровых тегов каталога.
func (s *Store) GetGenres(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT genre FROM movies WHERE genre IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("ошибка получения жанров: %w", err)
	}
	defer rows.Close()

	// Каждая строка может содержать несколько тегов через запятую.
	var raws []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("ошибка сканирования жанра: %w", err)
		}
		raws = append(raws, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return uniqueSortedTags(raws), nil
}

// GetYears возвращает все годы выпуска по убыванию.
func (s *Store) GetYears(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT year FROM movies WHERE year IS NOT NULL ORDER BY year DESC")
	if err != nil {
		return nil, fmt.Errorf("ошибка получения годов: %w", err)
	}
	defer rows.Close()

	years := []int{}
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("ошибка сканирования года: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// AdminAddMovie добавляет фильм со всеми полями и возвращает его ID.
func (s *Store) AdminAddMovie(ctx context.Context, nm models.NewMovie) (int64, error) {
	status := nm.Status
	if status == "" {
		status = models.StatusActive // Новый фильм сразу в показе
	}
	// Пустой набор тегов хранится как NULL.
	var genre *string
	if g := JoinGenre(nm.Genre); g != "" {
		genre = &g
	}
	id, err := s.insertReturningID(ctx, s.db,
		`INSERT INTO movies (title, description, genre, year, rating, poster_url, director, duration, country, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nm.Title, nm.Description, genre, nm.Year, ratingArg(nm.Rating), nm.PosterURL,
		nm.Director, nm.Duration, nm.Country, status)
	if err != nil {
		return 0, wrapStoreErr("ошибка добавления фильма", err)
	}
	return id, nil
}

// UpdateMovie обновляет только переданные поля фильма. Пустой патч - 0 строк без обращения к БД.
func (s *Store) UpdateMovie(ctx context.Context, id int64, p models.MoviePatch) (int64, error) {
	// Собираем SET только из переданных полей.
	var fields []string
	var args []any
	set := func(column string, value any) {
		fields = append(fields, column+" = ?")
		args = append(args, value)
	}

	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Genre != nil {
		set("genre", JoinGenre(p.Genre))
	}
	if p.Year != nil {
		set("year", *p.Year)
	}
	if p.Rating != nil {
		set("rating", ratingArg(p.Rating))
	}
	if p.PosterURL != nil {
		set("poster_url", *p.PosterURL)
	}
	if p.Director != nil {
		set("director", *p.Director)
	}
	if p.Duration != nil {
		set("duration", *p.Duration)
	}
	if p.Country != nil {
		set("country", *p.Country)
	}
	if p.Status != nil {
		set("status", *p.Status)
	}
	if len(fields) == 0 {
		return 0, nil
	}
	args = append(args, id) // Последний плейсхолдер - WHERE id

	res, err := s.db.ExecContext(ctx, s.q("UPDATE movies SET "+strings.Join(fields, ", ")+" WHERE id = ?"), args...)
	if err != nil {
		return 0, fmt.Errorf("ошибка обновления фильма %d: %w", id, err)
	}
	return affected(res)
}

// UpdateMovieStatus переключает фильм между 'active' и 'inactive'.
func (s *Store) UpdateMovieStatus(ctx context.Context, id int64, status string) (int64, error) {
	return s.UpdateMovie(ctx, id, models.MoviePatch{Status: &status})
}

// AdminDeleteMovie удаляет комментарии, избранное и сам фильм в одной транзакции.
// Возвращает true, только если была удалена строка фильма; при любой ошибке все шаги откатываются.
func (s *Store) AdminDeleteMovie(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := s.withTx(ctx, func(tx querier) error {
		// Сначала зависимые строки, затем сам фильм.
		if _, err := tx.ExecContext(ctx, s.q("DELETE FROM comments WHERE movie_id = ?"), id); err != nil {
			return fmt.Errorf("ошибка удаления комментариев фильма %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, s.q("DELETE FROM favorites WHERE movie_id = ?"), id); err != nil {
			return fmt.Errorf("ошибка удаления избранного фильма %d: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, s.q("DELETE FROM movies WHERE id = ?"), id)
		if err != nil {
			return fmt.Errorf("ошибка удаления фильма %d: %w", id, err)
		}
		n, err := affected(res)
		if err != nil {
			return err
		}
		deleted = n > 0 // 0 строк - фильма не было, транзакция все равно фиксируется
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// roundRating оставляет один знак после запятой (DECIMAL(3,1)).
func roundRating(r float64) float64 {
	return math.Round(r*10) / 10
}

func ratingArg(r *float64) any {
	if r == nil {
		return nil
	}
	return roundRating(*r)
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
