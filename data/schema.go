package data

// Только таблицы конфигурации. Сущности пользователей, событий и покупок тем
// появятся вместе с мультитенантностью.
const configSchema = `
CREATE TABLE IF NOT EXISTS ConfigDocuments (
    Slot TEXT PRIMARY KEY,
    Content TEXT NOT NULL,
    UpdatedAt DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS ConfigBackups (
    Filename TEXT PRIMARY KEY,           -- config.backup.<epoch-ms>.json
    Timestamp INTEGER NOT NULL UNIQUE,   -- epoch-ms
    Slot TEXT NOT NULL,                  -- "default" или "pre-restore"
    Content TEXT NOT NULL,
    CreatedAt DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_configbackups_timestamp ON ConfigBackups(Timestamp DESC);
`

// GetConfigSchema возвращает схему хранилища конфигурации.
func GetConfigSchema() string {
	return configSchema
}
