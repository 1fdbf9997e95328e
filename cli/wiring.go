package cli

import (
	"fmt"
	"io"

	"invitation_server_go/auth"
	"invitation_server_go/config"
	"invitation_server_go/data"
	"invitation_server_go/models"
)

// openConfigStorage выбирает хранилище конфигурации по флагу enable_database.
// Возвращаемый closer закрывает базу, если она открывалась.
func openConfigStorage(settings config.Settings) (data.ConfigStorage, io.Closer, error) {
	if settings.Features.EnableDatabase {
		db, err := data.OpenDatabase(settings.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return data.NewSQLConfigStorage(db), db, nil
	}
	return data.NewFileConfigStorage(settings.Storage.ConfigFile, settings.Storage.BackupDir), nopCloser{}, nil
}

// newGate собирает AuthGate из учетной записи администратора в настройках.
func newGate(settings config.Settings) (*auth.Gate, error) {
	hash := settings.Admin.PasswordHash
	if hash == "" {
		var err error
		hash, err = auth.HashPassword(settings.Admin.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing admin password: %w", err)
		}
	}
	credentials, err := auth.NewStaticCredentials(models.User{
		Username:     settings.Admin.Username,
		Email:        settings.Admin.Email,
		FullName:     settings.Admin.FullName,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}
	tokens := auth.NewTokenService(settings.Security.SecretKey, settings.Security.TokenTTL)
	return auth.NewGate(credentials, tokens), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
