package data

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Драйвер SQLite, импортируется для побочных эффектов (регистрации драйвера)
)

const sqliteURLPrefix = "sqlite:///"

// sqlitePath превращает DATABASE_URL вида sqlite:///./events.db в путь к файлу.
// Обычный путь возвращается как есть.
func sqlitePath(databaseURL string) (string, error) {
	if databaseURL == "" {
		return "", fmt.Errorf("database url is empty")
	}
	if strings.HasPrefix(databaseURL, sqliteURLPrefix) {
		return strings.TrimPrefix(databaseURL, sqliteURLPrefix), nil
	}
	if strings.Contains(databaseURL, "://") {
		return "", fmt.Errorf("unsupported database url %q: only sqlite is available", databaseURL)
	}
	return databaseURL, nil
}

// OpenDatabase открывает (и при необходимости создает) базу SQLite и применяет схему.
func OpenDatabase(databaseURL string) (*sqlx.DB, error) {
	path, err := sqlitePath(databaseURL)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	log.Printf("Using database file at: %s", path)

	db, err := sqlx.Connect("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// SQLite плохо переносит параллельных писателей.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(GetConfigSchema()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute config schema: %w", err)
	}
	log.Println("Config database schema applied successfully.")
	return db, nil
}
