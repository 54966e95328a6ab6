package handlers

import (
	// Стандартные библиотеки
	"sort"
	"strconv"
	"strings"

	// Внутренние пакеты
	"moviecatalog/internal/middleware"
	"moviecatalog/internal/models"

	// Сторонние библиотеки
	"github.com/gin-gonic/gin"
)

// Размеры подборок на главной странице и в боковой колонке.
const (
	topCount      = 6
	latestCount   = 10
	featuredCount = 3
	hotCount      = 5
	relatedCount  = 4
)

// movieFilter - параметры фильтрации списка фильмов из строки запроса.
type movieFilter struct {
	Genre     string
	Year      int
	Region    string
	RatingMin float64
	Sort      string // "rating", "year" или пусто
}

func parseMovieFilter(genre, year, region, ratingMin, sortBy string) movieFilter {
	f := movieFilter{
		Genre:  strings.TrimSpace(genre),
		Region: strings.TrimSpace(region),
		Sort:   sortBy,
	}
	if y, err := strconv.Atoi(year); err == nil {
		f.Year = y
	}
	if r, err := strconv.ParseFloat(ratingMin, 64); err == nil && r > 0 {
		f.RatingMin = r
	}
	return f
}

// apply фильтрует уже отобранные по жанру фильмы и сортирует их.
func (f movieFilter) apply(movies []models.Movie) []models.Movie {
	out := make([]models.Movie, 0, len(movies))
	for _, m := range movies {
		if f.Year != 0 && m.YearValue() != f.Year {
			continue
		}
		if f.Region != "" && m.CountryValue() != f.Region {
			continue
		}
		if f.RatingMin > 0 && m.RatingValue() < f.RatingMin {
			continue
		}
		out = append(out, m)
	}
	switch f.Sort {
	case "rating":
		sortByRating(out)
	case "year":
		sort.SliceStable(out, func(i, j int) bool { return out[i].YearValue() > out[j].YearValue() })
	}
	return out
}

// activeOnly оставляет фильмы, которые показываются посетителям.
func activeOnly(movies []models.Movie) []models.Movie {
	out := make([]models.Movie, 0, len(movies))
	for _, m := range movies {
		if m.Status == models.StatusActive {
			out = append(out, m)
		}
	}
	return out
}

// visibleFavorites убирает из избранного снятые с показа фильмы, если смотрит не администратор.
func visibleFavorites(c *gin.Context, favorites []models.FavoriteMovie) []models.FavoriteMovie {
	if middleware.CurrentUser(c).IsAdmin() {
		return favorites
	}
	out := make([]models.FavoriteMovie, 0, len(favorites))
	for _, f := range favorites {
		if f.Status == models.StatusActive {
			out = append(out, f)
		}
	}
	return out
}

func sortByRating(movies []models.Movie) {
	sort.SliceStable(movies, func(i, j int) bool { return movies[i].RatingValue() > movies[j].RatingValue() })
}

// topRated возвращает n лучших по рейтингу фильмов, не меняя исходный срез.
func topRated(movies []models.Movie, n int) []models.Movie {
	out := append([]models.Movie(nil), movies...)
	sortByRating(out)
	return head(out, n)
}

// latest возвращает n самых новых по году фильмов.
func latest(movies []models.Movie, n int) []models.Movie {
	out := append([]models.Movie(nil), movies...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].YearValue() > out[j].YearValue() })
	return head(out, n)
}

func head(movies []models.Movie, n int) []models.Movie {
	if len(movies) > n {
		return movies[:n]
	}
	return movies
}

// regions - уникальные страны в порядке первого появления.
func regions(movies []models.Movie) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, m := range movies {
		c := m.CountryValue()
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// related - до n фильмов с тем же первым жанром, кроме самого фильма.
func related(candidates []models.Movie, movieID int64, n int) []models.Movie {
	out := []models.Movie{}
	for _, m := range candidates {
		if m.ID == movieID || m.Status != models.StatusActive {
			continue
		}
		out = append(out, m)
		if len(out) == n {
			break
		}
	}
	return out
}
