package database

import (
	// Стандартные библиотеки
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// Внутренние пакеты
	"moviecatalog/internal/auth"
	"moviecatalog/internal/models"
)

// Колонки пользователя в порядке сканирования scanUser. Пустой никнейм заменяется логином.
const userColumns = "id, username, COALESCE(nickname, username), email, password, avatar, bio, role, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var avatar, bio sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Nickname, &u.Email, &u.PasswordHash,
		&avatar, &bio, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Avatar = nullString(avatar)
	u.Bio = nullString(bio)
	return u, nil
}

// CreateUser хеширует пароль и создает пользователя. Проверка уникальности логина и email -
// задача вызывающего кода; если ее нарушит сама БД, вернется ошибка с ErrDuplicateKey.
func (s *Store) CreateUser(ctx context.Context, nu models.NewUser) (int64, error) {
	// В базе хранится только bcrypt-хеш.
	hash, err := auth.HashPassword(nu.Password)
	if err != nil {
		return 0, err
	}
	// Без никнейма пользователь показывается под логином.
	nickname := nu.Nickname
	if nickname == "" {
		nickname = nu.Username
	}
	id, err := s.insertReturningID(ctx, s.db,
		"INSERT INTO users (username, email, password, nickname, avatar) VALUES (?, ?, ?, ?, ?)",
		nu.Username, nu.Email, hash, nickname, nu.Avatar)
	if err != nil {
		return 0, wrapStoreErr("ошибка при создании пользователя "+nu.Username, err)
	}
	return id, nil
}

// FindUserByUsername ищет пользователя по логину. nil, nil - пользователь не найден.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, "username", username)
}

// FindUserByEmail ищет пользователя по email. nil, nil - пользователь не найден.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "email", email)
}

// FindUserByID ищет пользователя по ID. nil, nil - пользователь не найден.
func (s *Store) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.findUser(ctx, "id", id)
}

func (s *Store) findUser(ctx context.Context, column string, value any) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, s.q("SELECT "+userColumns+" FROM users WHERE "+column+" = ?"), value)
	u, err := scanUser(row)
	if err != nil {
		// Отсутствие строки - не ошибка.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка поиска пользователя по %s: %w", column, err)
	}
	return u, nil
}

// VerifyPassword сравнивает открытый пароль с хешем. Никогда не возвращает ошибку.
func (s *Store) VerifyPassword(plain, hash string) bool {
	return auth.CheckPasswordHash(plain, hash)
}

// UpdateUser обновляет только переданные в патче поля и updated_at.
// Пустой патч не обращается к БД и возвращает 0 затронутых строк.
func (s *Store) UpdateUser(ctx context.Context, id int64, p models.UserPatch) (int64, error) {
	if p.IsEmpty() {
		return 0, nil
	}

	// Собираем SET только из переданных полей.
	var fields []string
	var args []any
	set := func(column string, value any) {
		fields = append(fields, column+" = ?")
		args = append(args, value)
	}

	if p.Email != nil {
		set("email", *p.Email)
	}
	if p.Password != nil {
		// Новый пароль хешируется так же, как при регистрации.
		hash, err := auth.HashPassword(*p.Password)
		if err != nil {
			return 0, err
		}
		set("password", hash)
	}
	if p.Avatar != nil {
		set("avatar", *p.Avatar)
	}
	if p.Bio != nil {
		set("bio", *p.Bio)
	}
	if p.Nickname != nil {
		set("nickname", *p.Nickname)
	}
	args = append(args, id) // Последний плейсхолдер - WHERE id

	query := "UPDATE users SET " + strings.Join(fields, ", ") + ", updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	res, err := s.db.ExecContext(ctx, s.q(query), args...)
	if err != nil {
		return 0, wrapStoreErr(fmt.Sprintf("ошибка обновления пользователя %d", id), err)
	}
	return affected(res)
}

// GetAllUsers возвращает обычных пользователей (без администраторов), новые первыми.
func (s *Store) GetAllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		"SELECT "+userColumns+" FROM users WHERE role = ? ORDER BY created_at DESC, id DESC"), models.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		// Хеш пароля в списки не попадает.
		u.PasswordHash = ""
		users = append(users, *u)
	}
	return users, rows.Err()
}

// DeleteUser удаляет обычного пользователя; избранное и комментарии удаляются каскадно.
// Администратора удалить нельзя - в этом случае вернется 0.
func (s *Store) DeleteUser(ctx context.Context, id int64) (int64, error) {
	// Условие по роли защищает учетные записи администраторов.
	res, err := s.db.ExecContext(ctx, s.q("DELETE FROM users WHERE id = ? AND role = ?"), id, models.RoleUser)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления пользователя %d: %w", id, err)
	}
	return affected(res)
}

// ImportUser добавляет пользователя с уже захешированным паролем.
// Если логин или email заняты, запись пропускается и возвращается false.
func (s *Store) ImportUser(ctx context.Context, iu models.ImportedUser) (bool, error) {
	imported := false
	err := s.withConn(ctx, func(conn querier) error {
		// Проверка и вставка идут на одном соединении.
		var exists int
		err := conn.QueryRowContext(ctx, s.q("SELECT COUNT(*) FROM users WHERE email = ? OR username = ?"),
			iu.Email, iu.Username).Scan(&exists)
		if err != nil {
			return fmt.Errorf("ошибка проверки пользователя %s: %w", iu.Username, err)
		}
		if exists > 0 {
			return nil // Уже есть - пропускаем
		}

		// Исходную дату регистрации сохраняем, если она есть в файле.
		if iu.CreatedAt != nil {
			_, err = s.insertReturningID(ctx, conn,
				"INSERT INTO users (username, email, password, nickname, created_at) VALUES (?, ?, ?, ?, ?)",
				iu.Username, iu.Email, iu.Password, iu.Username, iu.CreatedAt.UTC())
		} else {
			_, err = s.insertReturningID(ctx, conn,
				"INSERT INTO users (username, email, password, nickname) VALUES (?, ?, ?, ?)",
				iu.Username, iu.Email, iu.Password, iu.Username)
		}
		if err != nil {
			return wrapStoreErr("ошибка импорта пользователя "+iu.Username, err)
		}
		imported = true
		return nil
	})
	return imported, err
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
