package models

import "encoding/json"

// Document - JSON-объект конфигурации приглашения. Схема не фиксирована.
type Document = json.RawMessage

// BackupRecord описывает одну резервную копию конфигурации.
// Поля JSON совпадают с тем, что ожидает админ-панель.
type BackupRecord struct {
	Filename  string `json:"filename"`
	Timestamp int64  `json:"timestamp"` // epoch-ms
	Date      string `json:"date"`
}

// ConfigUpdateRequest - тело POST /api/config.
type ConfigUpdateRequest struct {
	Config json.RawMessage `json:"config"`
}

// ConfigResponse - ответ GET /api/config.
type ConfigResponse struct {
	Success bool            `json:"success"`
	Config  json.RawMessage `json:"config"`
}

// ConfigUpdateResponse - ответ POST /api/config.
type ConfigUpdateResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	BackupFile string `json:"backupFile"`
}

// BackupListResponse - ответ GET /api/config/backups.
type BackupListResponse struct {
	Success bool           `json:"success"`
	Backups []BackupRecord `json:"backups"`
}

// RestoreResponse - ответ POST /api/config/restore/{filename}.
type RestoreResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	RestoredFrom string `json:"restoredFrom"`
}
