package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFavoriteTwiceKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice", "a@x.com")
	movie := mustMovie(t, s, "Test", 2020, 8.5)

	res, err := s.AddFavorite(ctx, alice, movie)
	require.NoError(t, err)
	assert.True(t, res.Added)
	assert.False(t, res.AlreadyExists)

	res, err = s.AddFavorite(ctx, alice, movie)
	require.NoError(t, err)
	assert.False(t, res.Added)
	assert.True(t, res.AlreadyExists)

	n, err := s.GetUserFavoriteCount(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAddFavoriteUnknownMovie(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice", "a@x.com")

	_, err := s.AddFavorite(ctx, alice, 404)
	assert.Error(t, err)
}

func TestRemoveFavoriteMissingIsNotError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice", "a@x.com")

	n, err := s.RemoveFavorite(ctx, alice, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetUserFavoritesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	alice := mustUser(t, s, "alice", "a@x.com")
	bob := mustUser(t, s, "bob", "b@x.com")
	first := mustMovie(t, s, "First", 2000, 7.0, "Drama", "War")
	second := mustMovie(t, s, "Second", 2010, 8.0)

	_, err := s.AddFavorite(ctx, alice, first)
	require.NoError(t, err)
	_, err = s.AddFavorite(ctx, alice, second)
	require.NoError(t, err)
	_, err = s.AddFavorite(ctx, bob, first)
	require.NoError(t, err)

	favs, err := s.GetUserFavorites(ctx, alice)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, "Second", favs[0].Title)
	assert.Equal(t, "First", favs[1].Title)
	assert.Equal(t, []string{"Drama", "War"}, favs[1].Genre)
	assert.False(t, favs[0].FavoritedAt.IsZero())

	none, err := s.GetUserFavorites(ctx, 999)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
