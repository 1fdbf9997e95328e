package auth

import (
	"context"
	"fmt"

	"invitation_server_go/models"
)

// Gate объединяет проверку пароля, выдачу токенов и проверку ролей.
type Gate struct {
	credentials CredentialProvider
	tokens      *TokenService

	// dummyHash сравнивается с паролем, когда пользователь не найден,
	// чтобы время ответа не выдавало существование учетной записи.
	dummyHash string
}

// NewGate создает Gate.
func NewGate(credentials CredentialProvider, tokens *TokenService) *Gate {
	dummyHash, _ := HashPassword("invitation-server-dummy")
	return &Gate{credentials: credentials, tokens: tokens, dummyHash: dummyHash}
}

// Login проверяет пароль и выдает токен с username, email и role.
func (g *Gate) Login(ctx context.Context, username, password string) (string, models.User, error) {
	user, ok := g.credentials.Lookup(username)
	if !ok {
		CheckPasswordHash(password, g.dummyHash)
		return "", models.User{}, fmt.Errorf("unknown user %q: %w", username, ErrUnauthorized)
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return "", models.User{}, fmt.Errorf("wrong password for %q: %w", username, ErrUnauthorized)
	}

	role := user.Role
	if role == "" {
		role = models.RoleUser
	}
	token, _, err := g.tokens.GenerateToken(user.Username, user.Email, role)
	if err != nil {
		return "", models.User{}, err
	}
	return token, user, nil
}

// Verify проверяет токен и возвращает его claims.
func (g *Gate) Verify(token string) (*Claims, error) {
	return g.tokens.ValidateToken(token)
}

// RequireRole падает с ErrForbidden, если роль в claims не совпадает с role.
func RequireRole(claims *Claims, role string) error {
	if claims == nil {
		return ErrUnauthorized
	}
	if claims.Role != role {
		return fmt.Errorf("role %q required, got %q: %w", role, claims.Role, ErrForbidden)
	}
	return nil
}
