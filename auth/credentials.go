package auth

import (
	"fmt"
	"strings"

	"invitation_server_go/models"

	"golang.org/x/crypto/bcrypt"
)

// CredentialProvider отдает учетные записи по имени пользователя.
// Таблица заполняется при старте и дальше только читается.
type CredentialProvider interface {
	Lookup(username string) (models.User, bool)
}

// StaticCredentials - неизменяемая таблица пользователей в памяти.
type StaticCredentials struct {
	users map[string]models.User
}

// NewStaticCredentials копирует users в новую таблицу.
func NewStaticCredentials(users ...models.User) (*StaticCredentials, error) {
	table := make(map[string]models.User, len(users))
	for _, user := range users {
		if strings.TrimSpace(user.Username) == "" {
			return nil, fmt.Errorf("credential without username")
		}
		if user.PasswordHash == "" {
			return nil, fmt.Errorf("credential %q has no password hash", user.Username)
		}
		if _, dup := table[user.Username]; dup {
			return nil, fmt.Errorf("duplicate credential %q", user.Username)
		}
		if user.Role == "" {
			user.Role = models.RoleUser
		}
		table[user.Username] = user
	}
	return &StaticCredentials{users: table}, nil
}

// Lookup возвращает пользователя username.
func (c *StaticCredentials) Lookup(username string) (models.User, bool) {
	user, ok := c.users[username]
	return user, ok
}

// HashPassword генерирует хеш bcrypt для пароля.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash сравнивает пароль с хешем.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
