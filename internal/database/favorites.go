package database

import (
	// Стандартные библиотеки
	"context"
	"database/sql"
	"fmt"

	// Внутренние пакеты
	"moviecatalog/internal/models"
)

// AddFavorite добавляет фильм в избранное. Повторное добавление (в том числе проигравший
// в гонке параллельный запрос) - не ошибка: возвращается AlreadyExists=true.
func (s *Store) AddFavorite(ctx context.Context, userID, movieID int64) (models.FavoriteResult, error) {
	// UNIQUE(user_id, movie_id) не дает записать фильм дважды.
	_, err := s.db.ExecContext(ctx, s.q("INSERT INTO favorites (user_id, movie_id) VALUES (?, ?)"), userID, movieID)
	if err != nil {
		// Нарушение уникальности - фильм уже в избранном.
		if isUniqueViolation(err) {
			return models.FavoriteResult{AlreadyExists: true}, nil
		}
		return models.FavoriteResult{}, fmt.Errorf("ошибка добавления в избранное (user %d, movie %d): %w", userID, movieID, err)
	}
	return models.FavoriteResult{Added: true}, nil
}

// RemoveFavorite убирает фильм из избранного. Отсутствие записи - 0 строк, не ошибка.
func (s *Store) RemoveFavorite(ctx context.Context, userID, movieID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.q("DELETE FROM favorites WHERE user_id = ? AND movie_id = ?"), userID, movieID)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления из избранного (user %d, movie %d): %w", userID, movieID, err)
	}
	return affected(res)
}

// IsFavorite сообщает, есть ли фильм в избранном пользователя.
func (s *Store) IsFavorite(ctx context.Context, userID, movieID int64) (bool, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, s.q("SELECT COUNT(*) FROM favorites WHERE user_id = ? AND movie_id = ?"),
		userID, movieID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки избранного: %w", err)
	}
	return n > 0, nil
}

// GetUserFavorites возвращает избранные фильмы пользователя, последние добавленные первыми.
func (s *Store) GetUserFavorites(ctx context.Context, userID int64) ([]models.FavoriteMovie, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		"SELECT "+movieColumns+", f.created_at FROM movies m"+
			" INNER JOIN favorites f ON m.id = f.movie_id"+
			" WHERE f.user_id = ? ORDER BY f.created_at DESC, f.id DESC"), userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения избранного пользователя %d: %w", userID, err)
	}
	defer rows.Close()

	favorites := []models.FavoriteMovie{} // Пустой срез, а не nil: в JSON уходит []
	for rows.Next() {
		var fm models.FavoriteMovie
		var d movieDest
		if err := rows.Scan(append(d.targets(&fm.Movie), &fm.FavoritedAt)...); err != nil {
			return nil, fmt.Errorf("ошибка сканирования избранного: %w", err)
		}
		d.normalize(&fm.Movie)
		favorites = append(favorites, fm)
	}
	return favorites, rows.Err()
}

// GetUserFavoriteCount возвращает количество избранных фильмов пользователя.
func (s *Store) GetUserFavoriteCount(ctx context.Context, userID int64) (int64, error) {
	return s.count(ctx, s.db, "SELECT COUNT(*) FROM favorites WHERE user_id = ?", userID)
}

// count выполняет запрос вида SELECT COUNT(*) ...
func (s *Store) count(ctx context.Context, qr querier, query string, args ...any) (int64, error) {
	// NullInt64 на случай агрегатов, которые возвращают NULL.
	var n sql.NullInt64
	if err := qr.QueryRowContext(ctx, s.q(query), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка подсчета: %w", err)
	}
	return n.Int64, nil
}
