package database

import (
	// Стандартные библиотеки
	"context"
	"fmt"
	"math"

	// Внутренние пакеты
	"moviecatalog/internal/models"
)

// Ограничения постраничного вывода в панели администратора.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage - наибольший номер страницы: (MaxPage-1)*MaxPageSize укладывается в int32.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// GetAdminStats возвращает счетчики одним запросом.
func (s *Store) GetAdminStats(ctx context.Context) (models.AdminStats, error) {
	var st models.AdminStats
	err := s.db.QueryRowContext(ctx, s.q(`SELECT
		(SELECT COUNT(*) FROM movies WHERE status = ?),
		(SELECT COUNT(*) FROM movies WHERE status = ?),
		(SELECT COUNT(*) FROM users WHERE role = ?),
		(SELECT COUNT(*) FROM comments)`),
		models.StatusActive, models.StatusInactive, models.RoleUser).
		Scan(&st.ActiveMovies, &st.InactiveMovies, &st.TotalUsers, &st.TotalComments)
	if err != nil {
		return st, fmt.Errorf("ошибка получения статистики: %w", err)
	}
	return st, nil
}

// GetAllMoviesForAdmin возвращает все фильмы (включая снятые с показа) со счетчиками.
func (s *Store) GetAllMoviesForAdmin(ctx context.Context) ([]models.AdminMovie, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+movieColumns+`,
		(SELECT COUNT(*) FROM comments WHERE movie_id = m.id),
		(SELECT COUNT(*) FROM favorites WHERE movie_id = m.id)
		FROM movies m ORDER BY m.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения фильмов для администратора: %w", err)
	}
	defer rows.Close()

	movies := []models.AdminMovie{}
	for rows.Next() {
		var am models.AdminMovie
		var d movieDest
		if err := rows.Scan(append(d.targets(&am.Movie), &am.CommentCount, &am.FavoriteCount)...); err != nil {
			return nil, fmt.Errorf("ошибка сканирования фильма: %w", err)
		}
		d.normalize(&am.Movie)
		movies = append(movies, am)
	}
	return movies, rows.Err()
}

// GetAllCommentsForAdmin возвращает страницу комментариев верхнего уровня по всем фильмам.
func (s *Store) GetAllCommentsForAdmin(ctx context.Context, page, limit int) (*models.CommentPage, error) {
	return s.commentPage(ctx, page, limit, nil)
}

// GetMovieCommentsForAdmin возвращает страницу комментариев верхнего уровня одного фильма.
func (s *Store) GetMovieCommentsForAdmin(ctx context.Context, movieID int64, page, limit int) (*models.CommentPage, error) {
	return s.commentPage(ctx, page, limit, &movieID)
}

// commentPage выполняет выборку страницы и отдельный подсчет total на одном соединении.
func (s *Store) commentPage(ctx context.Context, page, limit int, movieID *int64) (*models.CommentPage, error) {
	page, limit = normalizePage(page, limit)

	// В панели показываются только комментарии верхнего уровня.
	where := " WHERE c.parent_id IS NULL"
	var args []any
	if movieID != nil {
		where += " AND c.movie_id = ?"
		args = append(args, *movieID)
	}

	result := &models.CommentPage{Comments: []models.CommentView{}, Page: page, Limit: limit}
	err := s.withConn(ctx, func(conn querier) error {
		rows, err := conn.QueryContext(ctx, s.q(
			"SELECT "+commentViewColumns+", "+replyCountColumn+", m.title"+
				" FROM comments c"+
				" INNER JOIN users u ON c.user_id = u.id"+
				" INNER JOIN movies m ON c.movie_id = m.id"+
				where+
				" ORDER BY c.created_at DESC, c.id DESC LIMIT ? OFFSET ?"),
			append(args, limit, (page-1)*limit)...)
		if err != nil {
			return fmt.Errorf("ошибка получения комментариев для администратора: %w", err)
		}
		for rows.Next() {
			var replies int64
			var title string
			cv, err := scanCommentView(rows, &replies, &title)
			if err != nil {
				rows.Close()
				return fmt.Errorf("ошибка сканирования комментария: %w", err)
			}
			cv.ReplyCount = replies
			cv.MovieTitle = title
			result.Comments = append(result.Comments, cv)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		// Общее число для пагинации.
		total, err := s.count(ctx, conn, "SELECT COUNT(*) FROM comments c"+where, args...)
		if err != nil {
			return err
		}
		result.Total = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.TotalPages = totalPages(result.Total, limit)
	return result, nil
}

// normalizePage приводит номер страницы и размер к допустимым границам.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// totalPages - число страниц с округлением вверх.
func totalPages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
