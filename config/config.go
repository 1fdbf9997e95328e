// Package config загружает настройки сервера приглашений.
//
// Порядок: значения по умолчанию, затем YAML-файл (флаг --config или
// переменная INVITATION_CONFIG), затем переменные окружения.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Информация о приложении.
const (
	AppName    = "Event Invitation Platform"
	AppVersion = "1.0.0"
)

// ConfigPathEnv - переменная окружения с путем к YAML-файлу настроек.
const ConfigPathEnv = "INVITATION_CONFIG"

// Settings - все настройки сервера.
type Settings struct {
	Debug bool `yaml:"debug"`

	Server   ServerSettings   `yaml:"server"`
	Security SecuritySettings `yaml:"security"`
	Storage  StorageSettings  `yaml:"storage"`
	Themes   ThemeSettings    `yaml:"themes"`
	Admin    AdminSettings    `yaml:"admin"`
	Features FeatureFlags     `yaml:"features"`

	// CORSOrigins - разрешенные источники для админ-панели.
	CORSOrigins []string `yaml:"cors_origins"`
}

// ServerSettings - адрес HTTP-сервера.
type ServerSettings struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr возвращает адрес для http.ListenAndServe.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecuritySettings - параметры токенов.
type SecuritySettings struct {
	SecretKey string        `yaml:"secret_key"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// StorageSettings - где лежит конфигурация приглашения и ее бэкапы.
type StorageSettings struct {
	ConfigFile string `yaml:"config_file"`
	// BackupDir пустой - бэкапы лежат рядом с ConfigFile.
	BackupDir   string `yaml:"backup_dir"`
	DatabaseURL string `yaml:"database_url"`
}

// ThemeSettings - корень тем и тема, которую отдает "/".
type ThemeSettings struct {
	Dir     string `yaml:"dir"`
	Default string `yaml:"default"`
}

// AdminSettings - единственная учетная запись администратора.
// PasswordHash (bcrypt) имеет приоритет над Password.
type AdminSettings struct {
	Username     string `yaml:"username"`
	Email        string `yaml:"email"`
	FullName     string `yaml:"full_name"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
}

// FeatureFlags - флаги поэтапного запуска. Реализовано только хранение в БД.
type FeatureFlags struct {
	EnableDatabase     bool `yaml:"enable_database"`
	EnableGoogleOAuth  bool `yaml:"enable_google_oauth"`
	EnablePayments     bool `yaml:"enable_payments"`
	EnableEmail        bool `yaml:"enable_email"`
	EnableCloudStorage bool `yaml:"enable_cloud_storage"`
}

// Default возвращает настройки по умолчанию.
func Default() Settings {
	return Settings{
		Debug: true,
		Server: ServerSettings{
			Host: "0.0.0.0",
			Port: 3000,
		},
		Security: SecuritySettings{
			SecretKey: "your-secret-key-change-in-production-asap",
			TokenTTL:  24 * time.Hour,
		},
		Storage: StorageSettings{
			ConfigFile:  "config.json",
			DatabaseURL: "sqlite:///./events.db",
		},
		Themes: ThemeSettings{
			Dir:     "themes",
			Default: "beach",
		},
		Admin: AdminSettings{
			Username: "admin",
			Email:    "admin@example.com",
			FullName: "Administrator",
			Password: "admin",
		},
		CORSOrigins: []string{
			"http://localhost:3000",
			"http://localhost:8000",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:8000",
		},
	}
}

// Load читает настройки. Пустой path - берется из INVITATION_CONFIG;
// если и там пусто, файл не читается.
func Load(path string) (Settings, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Settings, error) {
	settings := Default()

	if path == "" {
		path, _ = lookup(ConfigPathEnv)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return Settings{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := settings.applyEnvironment(lookup); err != nil {
		return Settings{}, err
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// applyEnvironment переопределяет настройки переменными окружения.
func (s *Settings) applyEnvironment(lookup func(string) (string, bool)) error {
	str := func(name string, target *string) {
		if v, ok := lookup(name); ok {
			*target = v
		}
	}
	var errs []error
	boolean := func(name string, target *bool) {
		if v, ok := lookup(name); ok {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*target = parsed
		}
	}

	boolean("DEBUG", &s.Debug)
	str("HOST", &s.Server.Host)
	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PORT: %w", err))
		} else {
			s.Server.Port = port
		}
	}
	str("SECRET_KEY", &s.Security.SecretKey)
	if v, ok := lookup("TOKEN_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("TOKEN_TTL: %w", err))
		} else {
			s.Security.TokenTTL = ttl
		}
	}
	str("CONFIG_FILE", &s.Storage.ConfigFile)
	str("BACKUP_DIR", &s.Storage.BackupDir)
	str("DATABASE_URL", &s.Storage.DatabaseURL)
	str("THEMES_DIR", &s.Themes.Dir)
	str("DEFAULT_THEME", &s.Themes.Default)
	str("ADMIN_USERNAME", &s.Admin.Username)
	str("ADMIN_EMAIL", &s.Admin.Email)
	str("ADMIN_PASSWORD", &s.Admin.Password)
	str("ADMIN_PASSWORD_HASH", &s.Admin.PasswordHash)
	boolean("ENABLE_DATABASE", &s.Features.EnableDatabase)
	boolean("ENABLE_GOOGLE_OAUTH", &s.Features.EnableGoogleOAuth)
	boolean("ENABLE_PAYMENTS", &s.Features.EnablePayments)
	boolean("ENABLE_EMAIL", &s.Features.EnableEmail)
	boolean("ENABLE_CLOUD_STORAGE", &s.Features.EnableCloudStorage)
	if v, ok := lookup("CORS_ORIGINS"); ok {
		s.CORSOrigins = splitList(v)
	}

	return errors.Join(errs...)
}

// Validate проверяет согласованность настроек.
func (s Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Security.SecretKey) == "" {
		errs = append(errs, errors.New("security.secret_key must not be empty"))
	}
	if s.Security.TokenTTL <= 0 {
		errs = append(errs, errors.New("security.token_ttl must be positive"))
	}
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", s.Server.Port))
	}
	if s.Storage.ConfigFile == "" {
		errs = append(errs, errors.New("storage.config_file must not be empty"))
	}
	if s.Features.EnableDatabase && s.Storage.DatabaseURL == "" {
		errs = append(errs, errors.New("storage.database_url is required when enable_database is set"))
	}
	if s.Themes.Dir == "" {
		errs = append(errs, errors.New("themes.dir must not be empty"))
	}
	if s.Admin.Username == "" {
		errs = append(errs, errors.New("admin.username must not be empty"))
	}
	if s.Admin.Password == "" && s.Admin.PasswordHash == "" {
		errs = append(errs, errors.New("admin.password or admin.password_hash is required"))
	}
	// Интеграции пока не реализованы.
	for name, enabled := range map[string]bool{
		"enable_google_oauth":  s.Features.EnableGoogleOAuth,
		"enable_payments":      s.Features.EnablePayments,
		"enable_email":         s.Features.EnableEmail,
		"enable_cloud_storage": s.Features.EnableCloudStorage,
	} {
		if enabled {
			errs = append(errs, fmt.Errorf("features.%s is not implemented yet", name))
		}
	}
	return errors.Join(errs...)
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if v := strings.TrimSpace(item); v != "" {
			items = append(items, v)
		}
	}
	return items
}
