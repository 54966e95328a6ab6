package database

import (
	// Стандартные библиотеки
	"sort"
	"strings"
)

// genreSeparator - разделитель тегов при записи в столбец movies.genre.
const genreSeparator = ", "

// ParseGenre превращает строку жанров из БД ("Драма, Комедия") в упорядоченный набор тегов:
// пробелы по краям обрезаются, пустые теги отбрасываются.
func ParseGenre(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// JoinGenre собирает теги в строку для хранения. Порядок сохраняется,
// пустые теги и пробелы по краям отбрасываются, так что ParseGenre(JoinGenre(t)) == нормализованный t.
func JoinGenre(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	return strings.Join(clean, genreSeparator)
}

// genreMatchPattern строит LIKE-шаблон для поиска тега в строке вида ",A,B," (без пробелов).
// Возвращает false, если тег пустой.
func genreMatchPattern(tag string) (string, bool) {
	tag = strings.Join(strings.Fields(tag), "")
	if tag == "" || strings.Contains(tag, ",") {
		return "", false
	}
	return "%," + escapeLike(tag) + ",%", true
}

// escapeLike экранирует спецсимволы LIKE; в запросах используется ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// uniqueSortedTags собирает уникальные теги из нескольких строк жанров.
func uniqueSortedTags(raws []string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, raw := range raws {
		for _, tag := range ParseGenre(raw) {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}
