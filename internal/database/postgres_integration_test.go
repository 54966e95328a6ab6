//go:build integration

package database

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"moviecatalog/internal/models"
)

// newPostgresStore поднимает PostgreSQL в контейнере и возвращает мигрированный Store.
func newPostgresStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("movies"),
		postgres.WithUsername("movies"),
		postgres.WithPassword("movies"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("не удалось остановить контейнер: %v", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := Open(ctx, DriverPostgres, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestPostgresCatalog(t *testing.T) {
	ctx := context.Background()
	s := newPostgresStore(t)

	alice := mustUser(t, s, "alice", "a@x.com")
	_, err := s.CreateUser(ctx, models.NewUser{Username: "alice", Email: "z@x.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	movie := mustMovie(t, s, "Test", 2020, 8.46, "A", "B")
	m, err := s.FindMovieByID(ctx, movie)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.InDelta(t, 8.5, m.RatingValue(), 0.001)
	assert.Equal(t, []string{"A", "B"}, m.Genre)

	byGenre, err := s.FindMoviesByGenre(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, byGenre, 1)

	res, err := s.AddFavorite(ctx, alice, movie)
	require.NoError(t, err)
	assert.True(t, res.Added)
	res, err = s.AddFavorite(ctx, alice, movie)
	require.NoError(t, err)
	assert.True(t, res.AlreadyExists)

	root, err := s.AddComment(ctx, alice, movie, "root", nil)
	require.NoError(t, err)
	reply, err := s.AddComment(ctx, alice, movie, "reply", &root)
	require.NoError(t, err)
	nested, err := s.AddComment(ctx, alice, movie, "nested", &reply)
	require.NoError(t, err)
	c, err := s.FindCommentByID(ctx, nested)
	require.NoError(t, err)
	require.NotNil(t, c.ParentID)
	assert.Equal(t, root, *c.ParentID)

	page, err := s.GetAllCommentsForAdmin(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	assert.EqualValues(t, 2, page.Comments[0].ReplyCount)

	// Огромный номер страницы не должен давать отрицательный OFFSET.
	far, err := s.GetAllCommentsForAdmin(ctx, math.MaxInt, MaxPageSize)
	require.NoError(t, err)
	assert.Empty(t, far.Comments)

	deleted, err := s.AdminDeleteMovie(ctx, movie)
	require.NoError(t, err)
	assert.True(t, deleted)
	n, err := s.GetUserCommentCount(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, n)
}
