package data

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"invitation_server_go/models"
)

// ConfigStorage - хранилище конфигурации приглашения.
// Файловая реализация используется по умолчанию, SQL - при enable_database.
// Обе обязаны делать бэкап перед любой перезаписью.
type ConfigStorage interface {
	// Get возвращает текущий документ слота или ErrNotFound.
	Get(ctx context.Context, slot string) (models.Document, error)
	// Save делает бэкап текущего документа (если он есть) и записывает doc.
	// Возвращает имя бэкапа или "", если бэкапить было нечего.
	Save(ctx context.Context, doc models.Document, slot string) (string, error)
	// ListBackups возвращает все бэкапы, новые первыми.
	ListBackups(ctx context.Context) ([]models.BackupRecord, error)
	// Restore восстанавливает бэкап, предварительно сохранив текущий документ.
	Restore(ctx context.Context, filename string) error
}

const configFileMode = 0o644

// FileConfigStorage хранит конфигурацию в одном JSON-файле,
// бэкапы лежат рядом (или в BackupDir) как config.backup.<ms>.json.
type FileConfigStorage struct {
	configFile string
	backupDir  string
	now        func() time.Time

	// mu сериализует последовательность "бэкап, затем запись".
	mu sync.Mutex
}

// NewFileConfigStorage создает файловое хранилище. Пустой backupDir означает
// директорию, в которой лежит configFile.
func NewFileConfigStorage(configFile, backupDir string) *FileConfigStorage {
	if backupDir == "" {
		backupDir = filepath.Dir(configFile)
	}
	return &FileConfigStorage{
		configFile: configFile,
		backupDir:  backupDir,
		now:        time.Now,
	}
}

// SetClock подменяет источник времени (для тестов).
func (s *FileConfigStorage) SetClock(now func() time.Time) {
	s.now = now
}

// ConfigFile возвращает путь к текущему документу.
func (s *FileConfigStorage) ConfigFile() string {
	return s.configFile
}

// Get читает текущий документ. Слот пока один, параметр принимается ради интерфейса.
func (s *FileConfigStorage) Get(ctx context.Context, slot string) (models.Document, error) {
	raw, err := os.ReadFile(s.configFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, storageError("reading config", err)
	}
	return models.Document(raw), nil
}

// Save сохраняет doc, предварительно скопировав текущий документ в новый бэкап.
func (s *FileConfigStorage) Save(ctx context.Context, doc models.Document, slot string) (string, error) {
	formatted, err := normalizeDocument(doc)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backupName, err := s.snapshotLocked(normalizeSlot(slot))
	if err != nil {
		return "", err
	}
	if err := s.ensureDir(filepath.Dir(s.configFile)); err != nil {
		return "", err
	}
	if err := writeFileAtomic(s.configFile, formatted, configFileMode); err != nil {
		return "", storageError("writing config", err)
	}
	log.Printf("FileConfigStorage: конфигурация сохранена в %s (бэкап: %q)", s.configFile, backupName)
	return backupName, nil
}

// ListBackups перечисляет бэкапы в backupDir. Файлы с неразборчивым именем пропускаются.
func (s *FileConfigStorage) ListBackups(ctx context.Context) ([]models.BackupRecord, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.BackupRecord{}, nil
		}
		return nil, storageError("listing backups", err)
	}

	backups := make([]models.BackupRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ms, ok := ParseBackupFilename(entry.Name())
		if !ok {
			continue
		}
		backups = append(backups, models.BackupRecord{
			Filename:  entry.Name(),
			Timestamp: ms,
			Date:      backupDate(ms),
		})
	}
	sortBackups(backups)
	return backups, nil
}

// Restore восстанавливает документ из бэкапа filename.
// Текущий документ сначала сохраняется как бэкап с меткой pre-restore.
func (s *FileConfigStorage) Restore(ctx context.Context, filename string) error {
	if _, err := validateRestoreFilename(filename); err != nil {
		return err
	}
	backupPath := filepath.Join(s.backupDir, filename)

	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := os.ReadFile(backupPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return storageError("reading backup", err)
	}
	if !isJSONObject(content) {
		return storageError("reading backup", fmt.Errorf("backup %s is not a JSON object", filename))
	}

	snapshot, err := s.snapshotLocked(PreRestoreSlot)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.configFile, content, configFileMode); err != nil {
		return storageError("restoring config", err)
	}
	log.Printf("FileConfigStorage: конфигурация восстановлена из %s (снимок перед восстановлением: %q)", filename, snapshot)
	return nil
}

// snapshotLocked копирует текущий документ в новый бэкап. Если документа нет,
// возвращает "". Вызывается под s.mu.
func (s *FileConfigStorage) snapshotLocked(tag string) (string, error) {
	current, err := os.ReadFile(s.configFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", storageError("reading config for backup", err)
	}
	if err := s.ensureDir(s.backupDir); err != nil {
		return "", err
	}

	// Имя никогда не перезаписывает существующий бэкап: при совпадении
	// миллисекунды сдвигаем метку вперед.
	ms := s.now().UnixMilli()
	for {
		name := backupFilenameMillis(ms)
		err := writeFileExclusive(filepath.Join(s.backupDir, name), current, configFileMode)
		if err == nil {
			log.Printf("FileConfigStorage: создан бэкап %s (слот %s)", name, tag)
			return name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", storageError("writing backup", err)
		}
		ms++
	}
}

func (s *FileConfigStorage) ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return storageError("creating directory", err)
	}
	return nil
}

func isJSONObject(doc []byte) bool {
	trimmed := bytes.TrimSpace(doc)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}

// normalizeDocument проверяет, что doc - JSON-объект, и форматирует его с отступом в два пробела.
func normalizeDocument(doc models.Document) ([]byte, error) {
	if !isJSONObject(doc) {
		return nil, fmt.Errorf("config must be a JSON object: %w", ErrInvalidArgument)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(doc), "", "  "); err != nil {
		return nil, fmt.Errorf("config must be a JSON object: %w", ErrInvalidArgument)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func sortBackups(backups []models.BackupRecord) {
	sort.SliceStable(backups, func(i, j int) bool {
		return backups[i].Timestamp > backups[j].Timestamp
	})
}
