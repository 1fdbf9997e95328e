package data

import (
	"strconv"
	"strings"
	"time"
)

// Имена бэкапов: config.backup.<epoch-ms>.json
const (
	BackupPrefix = "config.backup."
	BackupSuffix = ".json"

	// DefaultSlot - единственный слот конфигурации, используемый сейчас.
	DefaultSlot = "default"
	// PreRestoreSlot - метка снимка, который делается перед восстановлением.
	PreRestoreSlot = "pre-restore"
)

// backupFilenameMillis формирует имя бэкапа для метки ms (epoch-ms).
func backupFilenameMillis(ms int64) string {
	return BackupPrefix + strconv.FormatInt(ms, 10) + BackupSuffix
}

// ParseBackupFilename извлекает метку времени (epoch-ms) из имени бэкапа.
// ok == false для любого имени, которое хранилище само не могло создать.
func ParseBackupFilename(name string) (int64, bool) {
	if !strings.HasPrefix(name, BackupPrefix) || !strings.HasSuffix(name, BackupSuffix) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, BackupPrefix), BackupSuffix)
	if digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	ms, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}

// validateRestoreFilename проверяет, что имя создано самим хранилищем.
// Отсекает обход путей и восстановление произвольных файлов.
func validateRestoreFilename(name string) (int64, error) {
	if !strings.HasPrefix(name, BackupPrefix) {
		return 0, ErrInvalidArgument
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return 0, ErrInvalidArgument
	}
	ms, ok := ParseBackupFilename(name)
	if !ok {
		return 0, ErrInvalidArgument
	}
	return ms, nil
}

// backupDate форматирует метку времени как ISO-8601 в локальной зоне.
func backupDate(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02T15:04:05.000")
}

func normalizeSlot(slot string) string {
	if slot == "" {
		return DefaultSlot
	}
	return slot
}
