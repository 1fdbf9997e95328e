package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"invitation_server_go/data"
	"invitation_server_go/middleware"
	"invitation_server_go/models"

	"github.com/gorilla/mux"
)

// maxConfigSize ограничивает тело POST /api/config.
const maxConfigSize = 1 << 20 // 1 MB

// PublicConfigHandler отдает текущую конфигурацию приглашения без авторизации.
// GET /config.json
func (a *API) PublicConfigHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := a.Configs.Get(r.Context(), data.DefaultSlot)
	if err != nil {
		respondFailure(w, "PublicConfigHandler", err, "Config file not found")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// GetConfigHandler возвращает текущую конфигурацию.
// GET /api/config (требует авторизации)
func (a *API) GetConfigHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := a.Configs.Get(r.Context(), data.DefaultSlot)
	if err != nil {
		respondFailure(w, "GetConfigHandler", err, "Config file not found")
		return
	}
	respondJSON(w, http.StatusOK, models.ConfigResponse{Success: true, Config: json.RawMessage(doc)})
}

// UpdateConfigHandler сохраняет новую конфигурацию, предварительно сделав бэкап.
// Ожидает POST-запрос с JSON-телом {"config": {...}}.
// POST /api/config (только admin)
func (a *API) UpdateConfigHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxConfigSize)
	defer r.Body.Close()

	var req models.ConfigUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "Config is too large")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(bytes.TrimSpace(req.Config)) == 0 || bytes.Equal(bytes.TrimSpace(req.Config), []byte("null")) {
		respondError(w, http.StatusBadRequest, "Field config is required")
		return
	}

	backupFile, err := a.Configs.Save(r.Context(), models.Document(req.Config), data.DefaultSlot)
	if err != nil {
		respondFailure(w, "UpdateConfigHandler", err, "Config file not found")
		return
	}

	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		log.Printf("UpdateConfigHandler: конфигурация обновлена пользователем %s (бэкап: %q)", claims.Username, backupFile)
	}
	respondJSON(w, http.StatusOK, models.ConfigUpdateResponse{
		Success:    true,
		Message:    "Config updated successfully",
		BackupFile: backupFile,
	})
}

// ListBackupsHandler возвращает список бэкапов, новые первыми.
// GET /api/config/backups (только admin)
func (a *API) ListBackupsHandler(w http.ResponseWriter, r *http.Request) {
	backups, err := a.Configs.ListBackups(r.Context())
	if err != nil {
		respondFailure(w, "ListBackupsHandler", err, "Backups not found")
		return
	}
	if backups == nil {
		backups = []models.BackupRecord{}
	}
	respondJSON(w, http.StatusOK, models.BackupListResponse{Success: true, Backups: backups})
}

// RestoreBackupHandler восстанавливает конфигурацию из бэкапа.
// POST /api/config/restore/{filename} (только admin)
func (a *API) RestoreBackupHandler(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	if err := a.Configs.Restore(r.Context(), filename); err != nil {
		if errors.Is(err, data.ErrInvalidArgument) {
			respondError(w, http.StatusBadRequest, "Invalid backup filename")
			return
		}
		respondFailure(w, "RestoreBackupHandler", err, "Backup file not found")
		return
	}

	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		log.Printf("RestoreBackupHandler: пользователь %s восстановил конфигурацию из %s", claims.Username, filename)
	}
	respondJSON(w, http.StatusOK, models.RestoreResponse{
		Success:      true,
		Message:      "Config restored successfully",
		RestoredFrom: filename,
	})
}
