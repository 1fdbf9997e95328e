package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func env(values map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := values[name]
		return v, ok
	}
}

func writeSettingsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	settings, err := load("", env(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if settings.Server.Addr() != "0.0.0.0:3000" {
		t.Fatalf("addr = %s", settings.Server.Addr())
	}
	if settings.Security.TokenTTL != 24*time.Hour {
		t.Fatalf("ttl = %s", settings.Security.TokenTTL)
	}
	if settings.Storage.ConfigFile != "config.json" || settings.Themes.Dir != "themes" || settings.Themes.Default != "beach" {
		t.Fatalf("storage/themes defaults = %+v %+v", settings.Storage, settings.Themes)
	}
	if settings.Features.EnableDatabase {
		t.Fatal("database enabled by default")
	}
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := writeSettingsFile(t, `
server:
  host: 127.0.0.1
  port: 8081
security:
  secret_key: from-file
  token_ttl: 2h
storage:
  config_file: /srv/invite/config.json
  backup_dir: /srv/invite/backups
themes:
  dir: /srv/invite/themes
  default: garden
cors_origins:
  - https://invite.example.com
`)
	settings, err := load(path, env(map[string]string{
		"PORT":            "9090",
		"SECRET_KEY":      "from-env",
		"ENABLE_DATABASE": "true",
		"CORS_ORIGINS":    "https://a.example, https://b.example ,",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if settings.Server.Host != "127.0.0.1" || settings.Server.Port != 9090 {
		t.Fatalf("server = %+v", settings.Server)
	}
	if settings.Security.SecretKey != "from-env" || settings.Security.TokenTTL != 2*time.Hour {
		t.Fatalf("security = %+v", settings.Security)
	}
	if settings.Storage.BackupDir != "/srv/invite/backups" || settings.Themes.Default != "garden" {
		t.Fatalf("storage = %+v themes = %+v", settings.Storage, settings.Themes)
	}
	if !settings.Features.EnableDatabase {
		t.Fatal("ENABLE_DATABASE ignored")
	}
	if len(settings.CORSOrigins) != 2 || settings.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors = %v", settings.CORSOrigins)
	}
}

func TestLoad_PathFromEnvironment(t *testing.T) {
	path := writeSettingsFile(t, "themes:\n  default: garden\n")
	settings, err := load("", env(map[string]string{ConfigPathEnv: path}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if settings.Themes.Default != "garden" {
		t.Fatalf("default theme = %s", settings.Themes.Default)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := load(filepath.Join(t.TempDir(), "missing.yaml"), env(nil)); err == nil {
		t.Fatal("missing file accepted")
	}
	if _, err := load(writeSettingsFile(t, "server: [oops"), env(nil)); err == nil {
		t.Fatal("broken yaml accepted")
	}
	if _, err := load("", env(map[string]string{"PORT": "abc"})); err == nil {
		t.Fatal("bad PORT accepted")
	}
	if _, err := load("", env(map[string]string{"DEBUG": "maybe"})); err == nil {
		t.Fatal("bad DEBUG accepted")
	}
}

func TestValidate(t *testing.T) {
	s := Default()
	s.Security.SecretKey = " "
	s.Server.Port = 70000
	s.Features.EnablePayments = true
	s.Admin.Password = ""
	err := s.Validate()
	if err == nil {
		t.Fatal("invalid settings accepted")
	}
	for _, want := range []string{"secret_key", "server.port", "enable_payments", "admin.password"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}

	ok := Default()
	ok.Admin.Password = ""
	ok.Admin.PasswordHash = "$2a$10$abcdefghijklmnopqrstuv"
	if err := ok.Validate(); err != nil {
		t.Fatalf("hash-only admin rejected: %v", err)
	}
}
