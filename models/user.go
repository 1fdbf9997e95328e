package models

// Роли пользователей.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User представляет учетную запись, хранящуюся в памяти процесса.
type User struct {
	Username     string `json:"username" yaml:"username"`
	Email        string `json:"email" yaml:"email"`
	FullName     string `json:"full_name,omitempty" yaml:"full_name"`
	PasswordHash string `json:"-" yaml:"password_hash"`
	Role         string `json:"role" yaml:"role"`
}

// PublicInfo возвращает данные пользователя без хеша пароля.
func (u User) PublicInfo() UserPublicInfo {
	role := u.Role
	if role == "" {
		role = RoleUser
	}
	return UserPublicInfo{
		Username: u.Username,
		Email:    u.Email,
		Role:     role,
		FullName: u.FullName,
	}
}
