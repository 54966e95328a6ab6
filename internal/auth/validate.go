package auth

import (
	// Стандартные библиотеки
	"fmt"
	"regexp"
	"strconv"

	// Сторонние библиотеки
	"github.com/go-playground/validator/v10" // Декларативная проверка форм по тегам
)

// usernamePattern: 3-20 символов, латиница, цифры и подчеркивание.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// Правило для логина.
	mustRegister(val, "username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	// Встроенное max считает руны, а предел bcrypt - 72 байта (кириллица занимает по 2 байта).
	mustRegister(val, "maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return val
}

// mustRegister паникует при ошибке регистрации правила, как regexp.MustCompile.
func mustRegister(val *validator.Validate, tag string, fn validator.Func) {
	if err := val.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("auth: не удалось зарегистрировать правило %q: %v", tag, err))
	}
}

// RegisterForm - поля формы регистрации.
type RegisterForm struct {
	Username        string `validate:"required,username"`
	Nickname        string `validate:"required,min=1,max=20"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6,maxbytes=72"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

// ProfileForm - поля формы профиля. Пустые значения не проверяются.
type ProfileForm struct {
	Email    string `validate:"omitempty,email"`
	Nickname string `validate:"omitempty,max=20"`
	Bio      string `validate:"max=500"`
	Password string `validate:"omitempty,min=6,maxbytes=72"`
}

// MovieForm - числовые и перечисляемые поля формы фильма в панели администратора.
type MovieForm struct {
	Title    string   `validate:"required,max=100"`
	Year     *int     `validate:"omitempty,gte=1888,lte=2100"`
	Rating   *float64 `validate:"omitempty,gte=0,lte=10"`
	Duration *int     `validate:"omitempty,gte=1,lte=1000"`
	Status   string   `validate:"omitempty,oneof=active inactive"`
}

// IsValidUsername проверяет формат логина.
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// IsValidEmail проверяет формат email.
func IsValidEmail(email string) bool {
	return v.Var(email, "required,email") == nil
}

// FirstError возвращает сообщение о первой (в порядке полей структуры) ошибке или "".
func FirstError(s any) string {
	errs := validationErrors(s)
	if len(errs) == 0 {
		return ""
	}
	return messageFor(errs[0])
}

func validationErrors(s any) validator.ValidationErrors {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		return verrs
	}
	// InvalidValidationError - ошибка программиста (передан не struct).
	panic(fmt.Sprintf("auth: некорректный аргумент валидации: %v", err))
}

func messageFor(fe validator.FieldError) string {
	switch fe.Field() + "." + fe.Tag() {
	case "Username.required", "Nickname.required", "Email.required", "Password.required", "ConfirmPassword.required":
		return "Пожалуйста, заполните все обязательные поля"
	case "Username.username":
		return "Логин должен содержать 3-20 символов: буквы, цифры и подчеркивание"
	case "Nickname.min", "Nickname.max":
		return "Длина никнейма должна быть от 1 до 20 символов"
	case "Email.email":
		return "Введите корректный адрес электронной почты"
	case "Password.min":
		return fmt.Sprintf("Пароль должен содержать не менее %d символов", MinPasswordLength)
	case "Password.maxbytes":
		return "Пароль слишком длинный"
	case "ConfirmPassword.eqfield":
		return "Пароли не совпадают"
	case "Bio.max":
		return "Описание профиля не должно превышать 500 символов"
	case "Title.required":
		return "Название фильма обязательно"
	case "Title.max":
		return "Название фильма не должно превышать 100 символов"
	case "Year.gte", "Year.lte":
		return "Некорректный год выпуска"
	case "Rating.gte", "Rating.lte":
		return "Рейтинг должен быть от 0 до 10"
	case "Duration.gte", "Duration.lte":
		return "Некорректная продолжительность"
	case "Status.oneof":
		return "Недопустимое значение статуса"
	}
	return fmt.Sprintf("Поле %s заполнено некорректно", fe.Field())
}
