package auth

import (
	// Стандартные библиотеки
	"errors"
	"fmt"

	// Сторонние библиотеки
	"golang.org/x/crypto/bcrypt" // Хеширование паролей
)

// PasswordCost - стоимость bcrypt для всех паролей сервиса.
// Значение 10 совпадает с bcrypt.DefaultCost и с уже существующими хешами в базе.
const PasswordCost = 10

// MinPasswordLength - минимальная длина пароля при регистрации и смене пароля.
const MinPasswordLength = 6

// HashPassword возвращает bcrypt-хеш пароля с солью.
// Пароли длиннее 72 байт bcrypt не принимает - такая ошибка возвращается вызывающему коду.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash сравнивает открытый пароль с хешем из БД.
// Никогда не паникует и не возвращает ошибку: некорректный хеш - это просто false.
func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		// Поврежденный или не-bcrypt хеш: считаем несовпадением.
		return false
	}
	return err == nil
}
