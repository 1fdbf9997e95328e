package auth

import "errors"

// ErrUnauthorized - токен отсутствует, невалиден или просрочен, либо неверные логин/пароль.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden - токен валиден, но роли недостаточно.
var ErrForbidden = errors.New("forbidden")
