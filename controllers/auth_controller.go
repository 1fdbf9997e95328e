package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"invitation_server_go/auth"
	"invitation_server_go/middleware"
	"invitation_server_go/models"
)

// LoginHandler обрабатывает вход администратора.
// Ожидает POST-запрос с JSON-телом, содержащим username и password.
// Пример URL: POST /api/login
func (a *API) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	token, user, err := a.Gate.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			log.Printf("LoginHandler: неудачная попытка входа: %v", err)
			respondError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		log.Printf("Ошибка при генерации токена для пользователя %s: %v", req.Username, err)
		respondError(w, http.StatusInternalServerError, "Could not issue access token")
		return
	}

	respondJSON(w, http.StatusOK, models.AuthResponse{
		Success: true,
		Token:   token,
		User:    user.PublicInfo(),
	})
}

// LogoutHandler - выход на стороне клиента (токен просто удаляется).
// Отзыв токенов до истечения срока не поддерживается.
// POST /api/logout (требует авторизации)
func (a *API) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		log.Printf("LogoutHandler: пользователь %s вышел", claims.Username)
	}
	respondJSON(w, http.StatusOK, models.MessageResponse{Success: true, Message: "Logged out successfully"})
}

// VerifyHandler подтверждает валидность токена и возвращает данные из него.
// GET /api/verify (требует авторизации)
func (a *API) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	respondJSON(w, http.StatusOK, models.VerifyResponse{
		Success: true,
		User: models.UserPublicInfo{
			Username: claims.Username,
			Email:    claims.Email,
			Role:     claims.Role,
		},
	})
}
