package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGenre(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"пустая строка", "", []string{}},
		{"один тег", "Drama", []string{"Drama"}},
		{"запятая с пробелом", "A, B", []string{"A", "B"}},
		{"лишние пробелы и пустые теги", " A ,, B ,", []string{"A", "B"}},
		{"порядок сохраняется", "Comedy,Action", []string{"Comedy", "Action"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseGenre(tt.raw))
		})
	}
}

func TestJoinGenreRoundTrip(t *testing.T) {
	assert.Equal(t, "A, B", JoinGenre([]string{"A", "B"}))
	assert.Equal(t, "A, B", JoinGenre([]string{" A", "", "B "}))
	assert.Equal(t, "", JoinGenre(nil))

	tags := []string{"Sci Fi", "Drama"}
	assert.Equal(t, tags, ParseGenre(JoinGenre(tags)))
}

func TestGenreMatchPattern(t *testing.T) {
	p, ok := genreMatchPattern("B")
	assert.True(t, ok)
	assert.Equal(t, "%,B,%", p)

	p, ok = genreMatchPattern(" Sci Fi ")
	assert.True(t, ok)
	assert.Equal(t, "%,SciFi,%", p)

	p, ok = genreMatchPattern("100%_x")
	assert.True(t, ok)
	assert.Equal(t, `%,100\%\_x,%`, p)

	_, ok = genreMatchPattern("   ")
	assert.False(t, ok)
	_, ok = genreMatchPattern("A,B")
	assert.False(t, ok)
}

func TestUniqueSortedTags(t *testing.T) {
	got := uniqueSortedTags([]string{"Drama, Comedy", "Comedy", "Action,Drama"})
	assert.Equal(t, []string{"Action", "Comedy", "Drama"}, got)
}
