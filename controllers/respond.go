package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"invitation_server_go/auth"
	"invitation_server_go/data"
)

// respondJSON пишет payload как JSON с кодом statusCode.
func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
			// Не отправляем http.Error здесь, так как заголовки уже отправлены
		}
	}
}

// respondError пишет ошибку в формате {"success": false, "error": "..."}.
func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// RespondError экспортируется для middleware, чтобы формат ошибок был один.
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	respondError(w, statusCode, message)
}

// statusForError сопоставляет ошибки хранилищ и авторизации с HTTP-кодами.
func statusForError(err error) int {
	switch {
	case errors.Is(err, data.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, data.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, data.ErrForbidden), errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondFailure логирует err и отвечает кодом из statusForError.
// notFound - сообщение для 404; для 500 наружу уходит только общий текст.
func respondFailure(w http.ResponseWriter, where string, err error, notFound string) {
	status := statusForError(err)
	switch status {
	case http.StatusNotFound:
		respondError(w, status, notFound)
	case http.StatusBadRequest:
		log.Printf("%s: неверный запрос: %v", where, err)
		respondError(w, status, "Invalid request: "+err.Error())
	case http.StatusForbidden:
		log.Printf("%s: доступ запрещен: %v", where, err)
		respondError(w, status, "Access denied")
	case http.StatusUnauthorized:
		respondError(w, status, "Not authenticated")
	default:
		log.Printf("%s: ошибка хранилища: %v", where, err)
		respondError(w, status, "Internal server error")
	}
}
