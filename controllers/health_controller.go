package controllers

import (
	"net/http"
	"time"
)

// HealthCheck godoc
// @Summary Проверка состояния сервера
// @Description Возвращает статус "healthy", имя и версию приложения
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Статус"
// @Router /health [get]
func (a *API) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"app":       a.AppName,
		"version":   a.AppVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
