package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Issuer записывается в каждый выданный токен.
const Issuer = "invitation_server_go"

// DefaultTokenTTL - срок жизни токена, если в настройках не задан другой.
const DefaultTokenTTL = 24 * time.Hour

// Claims структура для JWT, включающая стандартные и пользовательские поля.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService выдает и проверяет токены HS256.
type TokenService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenService создает сервис токенов. Ключ загружается из настроек.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{key: []byte(secret), ttl: ttl, now: time.Now}
}

// SetClock подменяет источник времени (для тестов).
func (s *TokenService) SetClock(now func() time.Time) {
	s.now = now
}

// GenerateToken создает новый JWT для пользователя.
func (s *TokenService) GenerateToken(username, email, role string) (string, time.Time, error) {
	issuedAt := s.now()
	expirationTime := issuedAt.Add(s.ttl)

	claims := &Claims{
		Username: username,
		Email:    email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("could not sign token: %w", err)
	}

	return tokenString, expirationTime, nil
}

// ValidateToken проверяет JWT и возвращает claims, если токен валиден.
// Любая причина отказа оборачивается в ErrUnauthorized.
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	})

	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			if ve.Errors&jwt.ValidationErrorMalformed != 0 {
				return nil, fmt.Errorf("token is malformed: %w", ErrUnauthorized)
			} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
				// Token is either expired or not active yet
				return nil, fmt.Errorf("token is expired or not active yet: %w", ErrUnauthorized)
			}
		}
		return nil, fmt.Errorf("couldn't handle this token: %v: %w", err, ErrUnauthorized)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid: %w", ErrUnauthorized)
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("token has no username claim: %w", ErrUnauthorized)
	}

	return claims, nil
}
