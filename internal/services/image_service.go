package services

import (
	// Стандартные библиотеки
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	// Сторонние библиотеки
	"github.com/google/uuid" // Уникальные имена загруженных файлов
)

// MaxImageSize - предел размера постера или аватара.
const MaxImageSize = 10 << 20 // 10 МБ

// AllowedImageTypes - разрешенные MIME-типы изображений (определяются по содержимому, а не по имени).
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

var (
	ErrEmptyFile     = errors.New("пустой файл")
	ErrFileTooLarge  = errors.New("файл слишком большой")
	ErrInvalidType   = errors.New("недопустимый тип файла")
	ErrInvalidFormat = errors.New("не удалось декодировать изображение")
)

// SaveImage проверяет загруженное изображение, перекодирует его (метаданные отбрасываются)
// и сохраняет в dir под случайным именем. Возвращает имя сохраненного файла.
func SaveImage(fileHeader *multipart.FileHeader, dir string) (string, error) {
	if fileHeader.Size == 0 {
		return "", ErrEmptyFile
	}
	if fileHeader.Size > MaxImageSize {
		return "", ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("не удалось открыть загруженный файл: %w", err)
	}
	defer file.Close()
	return saveImage(file, dir)
}

func saveImage(file io.ReadSeeker, dir string) (string, error) {
	// Реальный тип файла - по первым 512 байтам.
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("не удалось прочитать начало файла: %w", err)
	}
	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("не удалось вернуть указатель файла в начало: %w", err)
	}
	contentType := http.DetectContentType(buffer[:n])
	if !AllowedImageTypes[contentType] {
		return "", fmt.Errorf("%w: %s", ErrInvalidType, contentType)
	}

	img, format, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	// Расширение берем из формата, определенного декодером, а не из имени файла.
	storedFilename := uuid.NewString() + "." + format
	filePath := filepath.Join(dir, storedFilename)

	outFile, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("не удалось создать файл на сервере (%s): %w", filePath, err)
	}
	defer outFile.Close()

	switch format {
	case "jpeg":
		err = jpeg.Encode(outFile, img, &jpeg.Options{Quality: 90})
	case "png":
		err = png.Encode(outFile, img)
	case "gif":
		err = gif.Encode(outFile, img, nil)
	default:
		err = fmt.Errorf("%w: %s", ErrInvalidType, format)
	}
	if err != nil {
		outFile.Close()
		os.Remove(filePath)
		return "", fmt.Errorf("не удалось закодировать и сохранить изображение: %w", err)
	}

	log.Printf("Изображение сохранено как %s", filePath)
	return storedFilename, nil
}

// RemoveFile удаляет ранее сохраненный файл. Отсутствие файла не ошибка.
func RemoveFile(dir, name string) {
	if name == "" {
		return
	}
	fullPath := filepath.Join(dir, filepath.Base(name))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		log.Printf("ПРЕДУПРЕЖДЕНИЕ: не удалось удалить файл %s: %v", fullPath, err)
	}
}
