package services

import (
	// Стандартные библиотеки
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecureToken возвращает URL-safe строку из length случайных байт.
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("не удалось сгенерировать случайные байты: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
