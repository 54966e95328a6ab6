package services

import (
	// Стандартные библиотеки
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// MaxVideoSize - предел размера видеофайла фильма.
const MaxVideoSize = 2 << 30 // 2 ГБ

// VideoExtensions - поддерживаемые расширения в порядке поиска.
var VideoExtensions = []string{".mp4", ".webm", ".ogg", ".mkv"}

var ErrInvalidVideo = errors.New("недопустимый формат видео")

// VideoContentType возвращает MIME-тип для тега <source>.
func VideoContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".ogg":
		return "video/ogg"
	case ".mkv":
		return "video/x-matroska"
	default:
		return "application/octet-stream"
	}
}

func isVideoExt(ext string) bool {
	for _, e := range VideoExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// SaveVideo сохраняет видео фильма под именем <movieID>.<ext>, заменяя прежний файл.
// Файл сначала пишется во временный, затем переименовывается.
func SaveVideo(fileHeader *multipart.FileHeader, dir string, movieID int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !isVideoExt(ext) {
		return "", fmt.Errorf("%w: %s", ErrInvalidVideo, ext)
	}
	if fileHeader.Size == 0 {
		return "", ErrEmptyFile
	}
	if fileHeader.Size > MaxVideoSize {
		return "", ErrFileTooLarge
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("не удалось открыть видеофайл: %w", err)
	}
	defer src.Close()

	token, err := GenerateSecureToken(12)
	if err != nil {
		return "", err
	}
	tmpPath := filepath.Join(dir, ".upload-"+token)
	dst, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("не удалось создать файл %s: %w", tmpPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("не удалось записать видеофайл: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("не удалось записать видеофайл: %w", err)
	}

	// У фильма остается только одно видео.
	RemoveVideo(dir, movieID)

	name := strconv.FormatInt(movieID, 10) + ext
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("не удалось переименовать видеофайл: %w", err)
	}
	log.Printf("Видео фильма %d сохранено как %s", movieID, name)
	return name, nil
}

// FindVideo ищет файл <movieID>.<ext> в dir. Возвращает имя файла или "", false.
func FindVideo(dir string, movieID int64) (string, bool) {
	base := strconv.FormatInt(movieID, 10)
	for _, ext := range VideoExtensions {
		name := base + ext
		info, err := os.Stat(filepath.Join(dir, name))
		if err == nil && !info.IsDir() {
			return name, true
		}
	}
	return "", false
}

// RemoveVideo удаляет все видеофайлы фильма.
func RemoveVideo(dir string, movieID int64) {
	base := strconv.FormatInt(movieID, 10)
	for _, ext := range VideoExtensions {
		RemoveFile(dir, base+ext)
	}
}
