package controllers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"invitation_server_go/auth"
	"invitation_server_go/data"
	"invitation_server_go/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// newTestAPI собирает API с файловым хранилищем, темой beach
// и пользователями admin/admin (admin) и guest/guest (user).
func newTestAPI(t *testing.T) *API {
	t.Helper()
	base := t.TempDir()
	themes := filepath.Join(base, "themes")
	writeFile(t, filepath.Join(themes, "beach", "theme.json"), `{"name":"Beach","premium":false}`)
	writeFile(t, filepath.Join(themes, "beach", "index.html"), "<html>beach</html>")
	writeFile(t, filepath.Join(themes, "beach", "assets", "css", "style.css"), "body{}")
	writeFile(t, filepath.Join(themes, "drafts", "index.html"), "wip")
	writeFile(t, filepath.Join(themes, "README"), "not a theme")
	writeFile(t, filepath.Join(base, "server_secret"), "top secret")

	adminHash, err := auth.HashPassword("admin")
	if err != nil {
		t.Fatal(err)
	}
	guestHash, err := auth.HashPassword("guest")
	if err != nil {
		t.Fatal(err)
	}
	credentials, err := auth.NewStaticCredentials(
		models.User{Username: "admin", Email: "admin@example.com", PasswordHash: adminHash, Role: models.RoleAdmin},
		models.User{Username: "guest", PasswordHash: guestHash},
	)
	if err != nil {
		t.Fatal(err)
	}

	api := &API{
		Configs:      data.NewFileConfigStorage(filepath.Join(base, "config.json"), ""),
		Themes:       data.NewFileThemeStorage(themes),
		Gate:         auth.NewGate(credentials, auth.NewTokenService("test-secret", time.Hour)),
		DefaultTheme: "beach",
		AppName:      "Event Invitation Platform",
		AppVersion:   "test",
		CORSOrigins:  []string{"http://localhost:3000"},
		Logger:       log.New(io.Discard, "", 0),
	}
	return api
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(newTestAPI(t).Handler())
	t.Cleanup(server.Close)
	return server
}

func do(t *testing.T, server *httptest.Server, method, path, token, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	var payload map[string]interface{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, payload
}

func login(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()
	status, payload := do(t, server, http.MethodPost, "/api/login", "", `{"username":"`+username+`","password":"`+password+`"}`)
	if status != http.StatusOK {
		t.Fatalf("login %s: status %d, %v", username, status, payload)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in %v", username, payload)
	}
	return token
}

func getText(t *testing.T, server *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := server.Client().Get(server.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestAPI_LoginAndVerify(t *testing.T) {
	server := newTestServer(t)

	status, payload := do(t, server, http.MethodPost, "/api/login", "", `{"username":"admin","password":"wrong"}`)
	if status != http.StatusUnauthorized || payload["error"] != "Invalid username or password" {
		t.Fatalf("bad password: %d %v", status, payload)
	}
	if status, _ := do(t, server, http.MethodPost, "/api/login", "", `{"username":"","password":""}`); status != http.StatusBadRequest {
		t.Fatalf("empty credentials: %d", status)
	}
	if status, _ := do(t, server, http.MethodPost, "/api/login", "", `not json`); status != http.StatusBadRequest {
		t.Fatalf("broken body: %d", status)
	}

	token := login(t, server, "admin", "admin")
	status, payload = do(t, server, http.MethodGet, "/api/verify", token, "")
	if status != http.StatusOK {
		t.Fatalf("verify: %d %v", status, payload)
	}
	user, _ := payload["user"].(map[string]interface{})
	if user["username"] != "admin" || user["role"] != models.RoleAdmin {
		t.Fatalf("verify user = %v", user)
	}

	if status, _ := do(t, server, http.MethodPost, "/api/logout", token, ""); status != http.StatusOK {
		t.Fatalf("logout: %d", status)
	}
}

func TestAPI_RequiresToken(t *testing.T) {
	server := newTestServer(t)
	for _, path := range []string{"/api/config", "/api/config/backups", "/api/verify", "/api/themes"} {
		if status, _ := do(t, server, http.MethodGet, path, "", ""); status != http.StatusUnauthorized {
			t.Fatalf("GET %s without token: %d", path, status)
		}
		if status, _ := do(t, server, http.MethodGet, path, "garbage", ""); status != http.StatusUnauthorized {
			t.Fatalf("GET %s with garbage token: %d", path, status)
		}
	}
}

func TestAPI_AdminOnly(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server, "guest", "guest")

	if status, _ := do(t, server, http.MethodPost, "/api/config", token, `{"config":{"a":1}}`); status != http.StatusForbidden {
		t.Fatalf("guest save: %d", status)
	}
	if status, _ := do(t, server, http.MethodGet, "/api/config/backups", token, ""); status != http.StatusForbidden {
		t.Fatalf("guest list backups: %d", status)
	}
	if status, _ := do(t, server, http.MethodPost, "/api/config/restore/config.backup.1.json", token, ""); status != http.StatusForbidden {
		t.Fatalf("guest restore: %d", status)
	}
	// Чтение доступно любому вошедшему.
	if status, _ := do(t, server, http.MethodGet, "/api/config", token, ""); status != http.StatusNotFound {
		t.Fatalf("guest read of missing config: %d", status)
	}
}

func TestAPI_ConfigBackupRestore(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server, "admin", "admin")

	if status, _ := do(t, server, http.MethodGet, "/config.json", "", ""); status != http.StatusNotFound {
		t.Fatalf("public config before first save: %d", status)
	}

	status, payload := do(t, server, http.MethodPost, "/api/config", token, `{"config":{"a":1}}`)
	if status != http.StatusOK || payload["backupFile"] != "" {
		t.Fatalf("first save: %d %v", status, payload)
	}
	status, payload = do(t, server, http.MethodPost, "/api/config", token, `{"config":{"a":2}}`)
	backup, _ := payload["backupFile"].(string)
	if status != http.StatusOK || !strings.HasPrefix(backup, data.BackupPrefix) {
		t.Fatalf("second save: %d %v", status, payload)
	}

	status, payload = do(t, server, http.MethodGet, "/api/config", token, "")
	cfg, _ := payload["config"].(map[string]interface{})
	if status != http.StatusOK || cfg["a"] != float64(2) {
		t.Fatalf("get config: %d %v", status, payload)
	}

	status, payload = do(t, server, http.MethodGet, "/api/config/backups", token, "")
	backups, _ := payload["backups"].([]interface{})
	if status != http.StatusOK || len(backups) != 1 {
		t.Fatalf("backups: %d %v", status, payload)
	}
	if first, _ := backups[0].(map[string]interface{}); first["filename"] != backup {
		t.Fatalf("backup entry = %v, want %s", first, backup)
	}

	status, payload = do(t, server, http.MethodPost, "/api/config/restore/"+backup, token, "")
	if status != http.StatusOK || payload["restoredFrom"] != backup {
		t.Fatalf("restore: %d %v", status, payload)
	}

	status, payload = do(t, server, http.MethodGet, "/config.json", "", "")
	if status != http.StatusOK || payload["a"] != float64(1) {
		t.Fatalf("public config after restore: %d %v", status, payload)
	}

	// Восстановление само делает бэкап.
	_, payload = do(t, server, http.MethodGet, "/api/config/backups", token, "")
	if backups, _ := payload["backups"].([]interface{}); len(backups) != 2 {
		t.Fatalf("backups after restore = %v", payload["backups"])
	}
}

func TestAPI_ConfigValidation(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server, "admin", "admin")

	for name, body := range map[string]string{
		"missing config": `{}`,
		"null config":    `{"config":null}`,
		"array config":   `{"config":[1,2]}`,
		"not json":       `{"config":`,
	} {
		if status, _ := do(t, server, http.MethodPost, "/api/config", token, body); status != http.StatusBadRequest {
			t.Fatalf("%s: status %d, want 400", name, status)
		}
	}
}

func TestUpdateConfigHandler_TooLarge(t *testing.T) {
	api := newTestAPI(t)
	big := `{"config":{"blob":"` + strings.Repeat("x", maxConfigSize) + `"}}`
	rec := httptest.NewRecorder()
	api.UpdateConfigHandler(rec, httptest.NewRequest(http.MethodPost, "/api/config", strings.NewReader(big)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized config: %d %s", rec.Code, rec.Body.String())
	}
}

func TestAPI_RestoreRejectsBadNames(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server, "admin", "admin")

	for _, name := range []string{"config.json", "config.backup.abc.json", "secret.json", "config.backup..json"} {
		status, payload := do(t, server, http.MethodPost, "/api/config/restore/"+name, token, "")
		if status != http.StatusBadRequest || payload["error"] != "Invalid backup filename" {
			t.Fatalf("restore %s: %d %v", name, status, payload)
		}
	}
	status, payload := do(t, server, http.MethodPost, "/api/config/restore/config.backup.1700000000000.json", token, "")
	if status != http.StatusNotFound || payload["error"] != "Backup file not found" {
		t.Fatalf("restore missing: %d %v", status, payload)
	}
}

func TestAPI_Themes(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server, "guest", "guest")

	status, payload := do(t, server, http.MethodGet, "/api/themes", token, "")
	themes, _ := payload["themes"].([]interface{})
	if status != http.StatusOK || len(themes) != 1 {
		t.Fatalf("themes: %d %v", status, payload)
	}

	status, payload = do(t, server, http.MethodGet, "/api/themes/beach", token, "")
	theme, _ := payload["theme"].(map[string]interface{})
	if status != http.StatusOK || theme["id"] != "beach" || theme["name"] != "Beach" {
		t.Fatalf("beach: %d %v", status, payload)
	}

	for _, id := range []string{"drafts", "README"} {
		status, payload = do(t, server, http.MethodGet, "/api/themes/"+id, token, "")
		if status != http.StatusNotFound || payload["error"] != "Theme not found" {
			t.Fatalf("%s: %d %v", id, status, payload)
		}
	}
}

func TestAPI_StaticFiles(t *testing.T) {
	server := newTestServer(t)

	if status, body := getText(t, server, "/"); status != http.StatusOK || body != "<html>beach</html>" {
		t.Fatalf("index: %d %q", status, body)
	}
	if status, body := getText(t, server, "/themes/beach/assets/css/style.css"); status != http.StatusOK || body != "body{}" {
		t.Fatalf("theme asset: %d %q", status, body)
	}
	if status, body := getText(t, server, "/assets/css/style.css"); status != http.StatusOK || body != "body{}" {
		t.Fatalf("default assets: %d %q", status, body)
	}
	if status, _ := getText(t, server, "/themes/beach/missing.css"); status != http.StatusNotFound {
		t.Fatalf("missing asset: %d", status)
	}
	for _, path := range []string{
		"/themes/nope/index.html",
		"/themes/README/x",
		"/themes/beach/index.html/x",
		"/themes/beach/index.html%00.css",
		"/assets/css/style.css/x",
	} {
		if status, _ := getText(t, server, path); status != http.StatusNotFound {
			t.Fatalf("%s: %d, want 404", path, status)
		}
	}
	for _, path := range []string{
		"/themes/beach/..%2F..%2Fserver_secret",
		"/themes/beach/assets/..%2F..%2F..%2Fserver_secret",
		"/assets/..%2F..%2F..%2Fserver_secret",
	} {
		status, body := getText(t, server, path)
		if strings.Contains(body, "top secret") {
			t.Fatalf("%s leaked file outside theme (status %d)", path, status)
		}
	}
}

func TestAPI_RouterErrors(t *testing.T) {
	server := newTestServer(t)

	status, payload := do(t, server, http.MethodGet, "/no/such/route", "", "")
	if status != http.StatusNotFound || payload["error"] != "File not found" {
		t.Fatalf("unknown route: %d %v", status, payload)
	}
	status, payload = do(t, server, http.MethodDelete, "/health", "", "")
	if status != http.StatusMethodNotAllowed || payload["error"] != "Method not allowed" {
		t.Fatalf("wrong method: %d %v", status, payload)
	}
	status, payload = do(t, server, http.MethodGet, "/api/config", "", "")
	if status != http.StatusUnauthorized || payload["error"] != "Missing Authorization header" {
		t.Fatalf("no token: %d %v", status, payload)
	}
}

func TestAPI_HealthAndCORS(t *testing.T) {
	server := newTestServer(t)

	status, payload := do(t, server, http.MethodGet, "/health", "", "")
	if status != http.StatusOK || payload["status"] != "healthy" || payload["version"] != "test" {
		t.Fatalf("health: %d %v", status, payload)
	}

	req, _ := http.NewRequest(http.MethodOptions, server.URL+"/api/config", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || resp.Header.Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("preflight: %d %v", resp.StatusCode, resp.Header)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("request id header missing")
	}
}
