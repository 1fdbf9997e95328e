package models

// LoginRequest представляет данные для входа администратора.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserPublicInfo представляет публичные данные пользователя, возвращаемые API.
type UserPublicInfo struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"full_name,omitempty"`
}

// AuthResponse представляет ответ сервера после успешной аутентификации.
type AuthResponse struct {
	Success bool           `json:"success"`
	Token   string         `json:"token"`
	User    UserPublicInfo `json:"user"`
}

// VerifyResponse возвращается на GET /api/verify.
type VerifyResponse struct {
	Success bool           `json:"success"`
	User    UserPublicInfo `json:"user"`
}

// MessageResponse - общий ответ вида {"success": true, "message": "..."}.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
