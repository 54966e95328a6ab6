package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviecatalog/internal/models"
)

// newTestStore открывает чистую SQLite-базу во временной директории теста.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(ctx))
	return s
}

func mustUser(t *testing.T, s *Store, username, email string) int64 {
	t.Helper()
	id, err := s.CreateUser(context.Background(), models.NewUser{
		Username: username, Email: email, Password: "secret123",
	})
	require.NoError(t, err)
	return id
}

func mustMovie(t *testing.T, s *Store, title string, year int, rating float64, genre ...string) int64 {
	t.Helper()
	id, err := s.AdminAddMovie(context.Background(), models.NewMovie{
		Title: title, Year: &year, Rating: &rating, Genre: genre,
	})
	require.NoError(t, err)
	return id
}

func TestRebind(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"a = ? AND b = ?", "a = $1 AND b = $2"},
		{"x LIKE ? ESCAPE '\\' OR y = '?'", "x LIKE $1 ESCAPE '\\' OR y = '?'"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rebind(tt.in))
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
}

func TestDialectFor(t *testing.T) {
	d, err := dialectFor("")
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, d.driver)

	d, err = dialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, d.driver)
	assert.True(t, d.numberedParams)

	_, err = dialectFor("mysql")
	assert.Error(t, err)
}

func TestSQLiteDSNAddsPragmas(t *testing.T) {
	assert.Contains(t, sqliteDialect.dsn("data.db"), "data.db?_pragma=foreign_keys(1)")
	assert.Contains(t, sqliteDialect.dsn("data.db?mode=rwc"), "data.db?mode=rwc&_pragma=foreign_keys(1)")
}

// Сценарий целиком: пользователь, фильм, избранное, комментарий и ответ.
func TestCatalogScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	alice := mustUser(t, s, "alice", "a@x.com")
	bob := mustUser(t, s, "bob", "b@x.com")
	movie := mustMovie(t, s, "Test", 2020, 8.5, "Drama")

	res, err := s.AddFavorite(ctx, alice, movie)
	require.NoError(t, err)
	assert.True(t, res.Added)

	fav, err := s.IsFavorite(ctx, alice, movie)
	require.NoError(t, err)
	assert.True(t, fav)

	n, err := s.RemoveFavorite(ctx, alice, movie)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	fav, err = s.IsFavorite(ctx, alice, movie)
	require.NoError(t, err)
	assert.False(t, fav)

	commentID, err := s.AddComment(ctx, alice, movie, "Great film", nil)
	require.NoError(t, err)

	comments, err := s.GetMovieComments(ctx, movie)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Great film", comments[0].Content)
	assert.Equal(t, "alice", comments[0].Username)
	assert.EqualValues(t, 0, comments[0].ReplyCount)

	replyID, err := s.AddComment(ctx, bob, movie, "Agreed", &commentID)
	require.NoError(t, err)

	comments, err = s.GetMovieComments(ctx, movie)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.EqualValues(t, 1, comments[0].ReplyCount)

	replies, err := s.GetCommentReplies(ctx, commentID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, replyID, replies[0].ID)
	assert.Equal(t, "bob", replies[0].Username)
	require.NotNil(t, replies[0].ParentID)
	assert.Equal(t, commentID, *replies[0].ParentID)
}
