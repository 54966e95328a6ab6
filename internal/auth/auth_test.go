package auth

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)

	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.False(t, CheckPasswordHash("secret123", ""))
	assert.False(t, CheckPasswordHash("secret123", "not-a-hash"))

	// Одинаковые пароли дают разные хеши из-за соли.
	other, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestHashPasswordTooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73))
	assert.Error(t, err)
}

func TestIsValidUsername(t *testing.T) {
	for _, name := range []string{"abc", "user_01", "A_B_C_D_E_F_G_H_I_J_"} {
		assert.True(t, IsValidUsername(name), name)
	}
	for _, name := range []string{"ab", "имя", "user name", "a-b-c", strings.Repeat("a", 21)} {
		assert.False(t, IsValidUsername(name), name)
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("user@example.com"))
	assert.False(t, IsValidEmail("user@"))
	assert.False(t, IsValidEmail(""))
}

func TestRegisterFormErrors(t *testing.T) {
	valid := RegisterForm{
		Username: "alice", Nickname: "Алиса", Email: "a@example.com",
		Password: "secret123", ConfirmPassword: "secret123",
	}
	assert.Empty(t, FirstError(valid))

	tests := []struct {
		name   string
		modify func(f *RegisterForm)
		want   string
	}{
		{"empty username", func(f *RegisterForm) { f.Username = "" }, "Пожалуйста, заполните все обязательные поля"},
		{"bad username", func(f *RegisterForm) { f.Username = "a b" }, "Логин должен содержать 3-20 символов: буквы, цифры и подчеркивание"},
		{"long nickname", func(f *RegisterForm) { f.Nickname = strings.Repeat("н", 21) }, "Длина никнейма должна быть от 1 до 20 символов"},
		{"bad email", func(f *RegisterForm) { f.Email = "nope" }, "Введите корректный адрес электронной почты"},
		{"short password", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "123", "123" }, "Пароль должен содержать не менее 6 символов"},
		{"mismatch", func(f *RegisterForm) { f.ConfirmPassword = "secret124" }, "Пароли не совпадают"},
		{"cyrillic password over 72 bytes", func(f *RegisterForm) {
			f.Password = strings.Repeat("я", 40)
			f.ConfirmPassword = f.Password
		}, "Пароль слишком длинный"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.modify(&f)
			assert.Equal(t, tt.want, FirstError(f))
		})
	}
}

func TestPasswordLimitCountsBytes(t *testing.T) {
	// 36 кириллических символов - ровно 72 байта.
	ok := strings.Repeat("я", 36)
	assert.Empty(t, FirstError(ProfileForm{Password: ok}))
	_, err := HashPassword(ok)
	require.NoError(t, err)

	assert.Equal(t, "Пароль слишком длинный", FirstError(ProfileForm{Password: ok + "я"}))
	assert.Equal(t, "Пароль слишком длинный", FirstError(ProfileForm{Password: strings.Repeat("a", 73)}))
}

func TestProfileAndMovieForms(t *testing.T) {
	assert.Empty(t, FirstError(ProfileForm{}))
	assert.Equal(t, "Описание профиля не должно превышать 500 символов",
		FirstError(ProfileForm{Bio: strings.Repeat("б", 501)}))
	assert.Empty(t, FirstError(ProfileForm{Bio: strings.Repeat("б", 500)}))

	rating := 10.5
	assert.Equal(t, "Рейтинг должен быть от 0 до 10", FirstError(MovieForm{Title: "X", Rating: &rating}))
	assert.Equal(t, "Название фильма обязательно", FirstError(MovieForm{}))
	assert.Equal(t, "Недопустимое значение статуса", FirstError(MovieForm{Title: "X", Status: "gone"}))
	year := 2020
	assert.Empty(t, FirstError(MovieForm{Title: "X", Year: &year, Status: "active"}))
}

func TestMustRegisterPanicsOnBadTag(t *testing.T) {
	always := func(validator.FieldLevel) bool { return true }
	assert.Panics(t, func() { mustRegister(validator.New(), "", always) })
	assert.NotPanics(t, func() { mustRegister(validator.New(), "ok_tag", always) })
}
