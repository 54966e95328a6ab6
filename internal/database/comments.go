package database

import (
	// Стандартные библиотеки
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Внутренние пакеты
	"moviecatalog/internal/models"
)

// Выборка комментария с полями автора. Четвертый блок - число прямых ответов.
const commentViewColumns = `c.id, c.user_id, c.movie_id, c.parent_id, c.content, c.created_at, c.updated_at,
	u.username, COALESCE(u.nickname, u.username), u.avatar`

const replyCountColumn = `(SELECT COUNT(*) FROM comments r WHERE r.parent_id = c.id)`

func scanCommentView(row rowScanner, extra ...any) (models.CommentView, error) {
	var cv models.CommentView
	var parentID sql.NullInt64
	var avatar sql.NullString
	dest := []any{&cv.ID, &cv.UserID, &cv.MovieID, &parentID, &cv.Content, &cv.CreatedAt, &cv.UpdatedAt,
		&cv.Username, &cv.Nickname, &avatar}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return cv, err
	}
	cv.ParentID = nullInt64(parentID)
	cv.Avatar = nullString(avatar)
	return cv, nil
}

// AddComment сохраняет комментарий и возвращает его ID. Непустоту content проверяет вызывающий код.
//
// Дерево комментариев двухуровневое: ответ на ответ привязывается к корневому комментарию.
// Родитель обязан существовать и относиться к тому же фильму, иначе - ErrParentNotFound.
func (s *Store) AddComment(ctx context.Context, userID, movieID int64, content string, parentID *int64) (int64, error) {
	// Комментарий верхнего уровня вставляется без транзакции.
	if parentID == nil {
		id, err := s.insertReturningID(ctx, s.db,
			"INSERT INTO comments (user_id, movie_id, content) VALUES (?, ?, ?)", userID, movieID, content)
		if err != nil {
			return 0, fmt.Errorf("ошибка добавления комментария: %w", err)
		}
		return id, nil
	}

	// Ответ: проверка родителя и вставка в одной транзакции.
	var id int64
	err := s.withTx(ctx, func(tx querier) error {
		var parentMovie int64
		var grandParent sql.NullInt64
		err := tx.QueryRowContext(ctx, s.q("SELECT movie_id, parent_id FROM comments WHERE id = ?"), *parentID).
			Scan(&parentMovie, &grandParent)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && parentMovie != movieID) {
			return ErrParentNotFound
		}
		if err != nil {
			return fmt.Errorf("ошибка поиска родительского комментария %d: %w", *parentID, err)
		}

		// У родителя есть свой родитель - значит, это ответ; поднимаемся к корню.
		anchor := *parentID
		if grandParent.Valid {
			anchor = grandParent.Int64
		}
		id, err = s.insertReturningID(ctx, tx,
			"INSERT INTO comments (user_id, movie_id, content, parent_id) VALUES (?, ?, ?, ?)",
			userID, movieID, content, anchor)
		if err != nil {
			return fmt.Errorf("ошибка добавления ответа: %w", err)
		}
		return nil
	})
	return id, err
}

// FindCommentByID возвращает комментарий или nil, nil.
func (s *Store) FindCommentByID(ctx context.Context, id int64) (*models.Comment, error) {
	var c models.Comment
	var parentID sql.NullInt64
	err := s.db.QueryRowContext(ctx, s.q(
		"SELECT id, user_id, movie_id, parent_id, content, created_at, updated_at FROM comments WHERE id = ?"), id).
		Scan(&c.ID, &c.UserID, &c.MovieID, &parentID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка поиска комментария %d: %w", id, err)
	}
	c.ParentID = nullInt64(parentID)
	return &c, nil
}

// GetMovieComments возвращает только комментарии верхнего уровня (новые первыми)
// с числом ответов. Ответы загружаются отдельно через GetCommentReplies.
func (s *Store) GetMovieComments(ctx context.Context, movieID int64) ([]models.CommentView, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		"SELECT "+commentViewColumns+", "+replyCountColumn+
			" FROM comments c INNER JOIN users u ON c.user_id = u.id"+
			" WHERE c.movie_id = ? AND c.parent_id IS NULL"+
			" ORDER BY c.created_at DESC, c.id DESC"), movieID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения комментариев фильма %d: %w", movieID, err)
	}
	defer rows.Close()

	comments := []models.CommentView{}
	for rows.Next() {
		var replies int64 // Значение replyCountColumn
		cv, err := scanCommentView(rows, &replies)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования комментария: %w", err)
		}
		cv.ReplyCount = replies
		comments = append(comments, cv)
	}
	return comments, rows.Err()
}

// GetCommentReplies возвращает прямые ответы на комментарий, старые первыми.
func (s *Store) GetCommentReplies(ctx context.Context, commentID int64) ([]models.CommentView, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		"SELECT "+commentViewColumns+
			" FROM comments c INNER JOIN users u ON c.user_id = u.id"+
			" WHERE c.parent_id = ?"+
			" ORDER BY c.created_at ASC, c.id ASC"), commentID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения ответов на комментарий %d: %w", commentID, err)
	}
	defer rows.Close()

	replies := []models.CommentView{}
	for rows.Next() {
		cv, err := scanCommentView(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования ответа: %w", err)
		}
		replies = append(replies, cv)
	}
	return replies, rows.Err()
}

// GetUserComments возвращает все комментарии пользователя (включая ответы)
// с названием фильма и текстом родительского комментария.
func (s *Store) GetUserComments(ctx context.Context, userID int64) ([]models.UserComment, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT c.id, c.user_id, c.movie_id, c.parent_id, c.content, c.created_at, c.updated_at,
			m.title, m.poster_url, m.rating, pc.content, COALESCE(pu.nickname, pu.username)
		FROM comments c
		INNER JOIN movies m ON c.movie_id = m.id
		LEFT JOIN comments pc ON c.parent_id = pc.id
		LEFT JOIN users pu ON pc.user_id = pu.id
		WHERE c.user_id = ?
		ORDER BY c.created_at DESC, c.id DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения комментариев пользователя %d: %w", userID, err)
	}
	defer rows.Close()

	comments := []models.UserComment{}
	for rows.Next() {
		// Поля родителя заполнены только у ответов (LEFT JOIN).
		var uc models.UserComment
		var parentID sql.NullInt64
		var poster, parentContent, parentNick sql.NullString
		var rating sql.NullFloat64
		err := rows.Scan(&uc.ID, &uc.UserID, &uc.MovieID, &parentID, &uc.Content, &uc.CreatedAt, &uc.UpdatedAt,
			&uc.MovieTitle, &poster, &rating, &parentContent, &parentNick)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования комментария пользователя: %w", err)
		}
		uc.ParentID = nullInt64(parentID)
		uc.PosterURL = nullString(poster)
		uc.ParentContent = nullString(parentContent)
		uc.ParentUserNickname = nullString(parentNick)
		if rating.Valid {
			r := roundRating(rating.Float64)
			uc.Rating = &r
		}
		comments = append(comments, uc)
	}
	return comments, rows.Err()
}

// GetUserCommentCount возвращает число комментариев пользователя, включая ответы.
func (s *Store) GetUserCommentCount(ctx context.Context, userID int64) (int64, error) {
	return s.count(ctx, s.db, "SELECT COUNT(*) FROM comments WHERE user_id = ?", userID)
}

// DeleteComment удаляет комментарий, только если его автор - userID.
// Чужой или несуществующий комментарий - 0 строк, не ошибка. Ответы удаляются каскадно.
func (s *Store) DeleteComment(ctx context.Context, commentID, userID int64) (int64, error) {
	// Условие по user_id: чужой комментарий не удаляется.
	res, err := s.db.ExecContext(ctx, s.q("DELETE FROM comments WHERE id = ? AND user_id = ?"), commentID, userID)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления комментария %d: %w", commentID, err)
	}
	return affected(res)
}

// AdminDeleteComment удаляет любой комментарий без проверки автора.
func (s *Store) AdminDeleteComment(ctx context.Context, commentID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.q("DELETE FROM comments WHERE id = ?"), commentID)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления комментария %d администратором: %w", commentID, err)
	}
	return affected(res)
}

func nullInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
