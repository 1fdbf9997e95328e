package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"invitation_server_go/models"

	"github.com/jmoiron/sqlx"
)

// configBackupRow - строка таблицы ConfigBackups.
type configBackupRow struct {
	Filename  string    `db:"Filename"`
	Timestamp int64     `db:"Timestamp"`
	Slot      string    `db:"Slot"`
	Content   string    `db:"Content"`
	CreatedAt time.Time `db:"CreatedAt"`
}

// SQLConfigStorage хранит конфигурацию и бэкапы в SQLite.
// Контракт тот же, что у FileConfigStorage; бэкап и перезапись выполняются в одной транзакции.
type SQLConfigStorage struct {
	db  *sqlx.DB
	now func() time.Time
	mu  sync.Mutex
}

// NewSQLConfigStorage создает хранилище поверх открытой базы (см. OpenDatabase).
func NewSQLConfigStorage(db *sqlx.DB) *SQLConfigStorage {
	return &SQLConfigStorage{db: db, now: time.Now}
}

// SetClock подменяет источник времени (для тестов).
func (s *SQLConfigStorage) SetClock(now func() time.Time) {
	s.now = now
}

// Get возвращает текущий документ слота.
func (s *SQLConfigStorage) Get(ctx context.Context, slot string) (models.Document, error) {
	var content string
	err := s.db.GetContext(ctx, &content, `SELECT Content FROM ConfigDocuments WHERE Slot = ?`, normalizeSlot(slot))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageError("reading config", err)
	}
	return models.Document(content), nil
}

// Save делает бэкап текущего документа слота и записывает doc.
func (s *SQLConfigStorage) Save(ctx context.Context, doc models.Document, slot string) (string, error) {
	formatted, err := normalizeDocument(doc)
	if err != nil {
		return "", err
	}
	slot = normalizeSlot(slot)

	s.mu.Lock()
	defer s.mu.Unlock()

	var backupName string
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		var snapshotErr error
		backupName, snapshotErr = s.snapshotTx(ctx, tx, slot, slot)
		if snapshotErr != nil {
			return snapshotErr
		}
		return s.writeCurrentTx(ctx, tx, slot, string(formatted))
	})
	if err != nil {
		return "", err
	}
	log.Printf("SQLConfigStorage: конфигурация слота %s сохранена (бэкап: %q)", slot, backupName)
	return backupName, nil
}

// ListBackups возвращает все бэкапы, новые первыми.
func (s *SQLConfigStorage) ListBackups(ctx context.Context) ([]models.BackupRecord, error) {
	var rows []configBackupRow
	err := s.db.SelectContext(ctx, &rows, `SELECT Filename, Timestamp, Slot FROM ConfigBackups ORDER BY Timestamp DESC`)
	if err != nil {
		return nil, storageError("listing backups", err)
	}
	backups := make([]models.BackupRecord, 0, len(rows))
	for _, row := range rows {
		ms, ok := ParseBackupFilename(row.Filename)
		if !ok {
			continue
		}
		backups = append(backups, models.BackupRecord{
			Filename:  row.Filename,
			Timestamp: ms,
			Date:      backupDate(ms),
		})
	}
	sortBackups(backups)
	return backups, nil
}

// Restore восстанавливает слот по умолчанию из бэкапа filename.
func (s *SQLConfigStorage) Restore(ctx context.Context, filename string) error {
	if _, err := validateRestoreFilename(filename); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var snapshot string
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var content string
		err := tx.GetContext(ctx, &content, `SELECT Content FROM ConfigBackups WHERE Filename = ?`, filename)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return storageError("reading backup", err)
		}
		if !isJSONObject([]byte(content)) {
			return storageError("reading backup", fmt.Errorf("backup %s is not a JSON object", filename))
		}
		snapshot, err = s.snapshotTx(ctx, tx, DefaultSlot, PreRestoreSlot)
		if err != nil {
			return err
		}
		return s.writeCurrentTx(ctx, tx, DefaultSlot, content)
	})
	if err != nil {
		return err
	}
	log.Printf("SQLConfigStorage: конфигурация восстановлена из %s (снимок перед восстановлением: %q)", filename, snapshot)
	return nil
}

// snapshotTx копирует текущий документ слота в ConfigBackups с меткой tag.
func (s *SQLConfigStorage) snapshotTx(ctx context.Context, tx *sqlx.Tx, slot, tag string) (string, error) {
	var current string
	err := tx.GetContext(ctx, &current, `SELECT Content FROM ConfigDocuments WHERE Slot = ?`, slot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", storageError("reading config for backup", err)
	}

	now := s.now()
	ms := now.UnixMilli()
	var latest sql.NullInt64
	if err := tx.GetContext(ctx, &latest, `SELECT MAX(Timestamp) FROM ConfigBackups`); err != nil {
		return "", storageError("reading latest backup", err)
	}
	// Метки уникальны: при совпадении миллисекунды сдвигаем вперед.
	for {
		var exists int
		if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM ConfigBackups WHERE Timestamp = ?`, ms); err != nil {
			return "", storageError("checking backup name", err)
		}
		if exists == 0 {
			break
		}
		ms++
	}

	row := configBackupRow{
		Filename:  backupFilenameMillis(ms),
		Timestamp: ms,
		Slot:      tag,
		Content:   current,
		CreatedAt: now,
	}
	_, err = tx.NamedExecContext(ctx, `INSERT INTO ConfigBackups (Filename, Timestamp, Slot, Content, CreatedAt)
	          VALUES (:Filename, :Timestamp, :Slot, :Content, :CreatedAt)`, row)
	if err != nil {
		return "", storageError("writing backup", err)
	}
	if latest.Valid && latest.Int64 > ms {
		log.Printf("SQLConfigStorage: внимание - бэкап %s старше последнего (%d), часы сдвинулись назад?", row.Filename, latest.Int64)
	}
	return row.Filename, nil
}

func (s *SQLConfigStorage) writeCurrentTx(ctx context.Context, tx *sqlx.Tx, slot, content string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO ConfigDocuments (Slot, Content, UpdatedAt) VALUES (?, ?, ?)
	          ON CONFLICT(Slot) DO UPDATE SET Content = excluded.Content, UpdatedAt = excluded.UpdatedAt`,
		slot, content, s.now())
	if err != nil {
		return storageError("writing config", err)
	}
	return nil
}

// inTx выполняет fn в транзакции; при ошибке транзакция откатывается.
func (s *SQLConfigStorage) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return storageError("beginning transaction", err)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing config transaction: %w", storageError("commit", err))
	}
	return nil
}
