package controllers

import (
	"errors"
	"log"
	"net/http"
	"os"

	"invitation_server_go/data"
	"invitation_server_go/models"

	"github.com/gorilla/mux"
)

// ListThemesHandler возвращает манифесты всех тем.
// GET /api/themes (требует авторизации)
func (a *API) ListThemesHandler(w http.ResponseWriter, r *http.Request) {
	themes, err := a.Themes.ListThemes(r.Context())
	if err != nil {
		respondFailure(w, "ListThemesHandler", err, "Themes not found")
		return
	}
	if themes == nil {
		themes = []models.ThemeManifest{}
	}
	respondJSON(w, http.StatusOK, models.ThemeListResponse{Success: true, Themes: themes})
}

// GetThemeHandler возвращает манифест одной темы.
// GET /api/themes/{theme_id} (требует авторизации)
func (a *API) GetThemeHandler(w http.ResponseWriter, r *http.Request) {
	theme, err := a.Themes.GetTheme(r.Context(), mux.Vars(r)["theme_id"])
	if err != nil {
		respondFailure(w, "GetThemeHandler", err, "Theme not found")
		return
	}
	respondJSON(w, http.StatusOK, models.ThemeResponse{Success: true, Theme: theme})
}

// ThemeFileHandler отдает файлы темы (CSS, JS, картинки).
// Открытый маршрут: GET /themes/{theme_id}/{file_path}
func (a *API) ThemeFileHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	a.serveThemeFile(w, r, vars["theme_id"], vars["file_path"])
}

// IndexHandler отдает страницу приглашения из темы по умолчанию.
// GET /
func (a *API) IndexHandler(w http.ResponseWriter, r *http.Request) {
	a.serveThemeFile(w, r, a.DefaultTheme, "index.html")
}

// DefaultAssetsHandler отдает /assets/* из assets/ темы по умолчанию.
// Старые страницы ссылаются на /assets напрямую.
func (a *API) DefaultAssetsHandler(w http.ResponseWriter, r *http.Request) {
	a.serveThemeFile(w, r, a.DefaultTheme, "assets/"+mux.Vars(r)["file_path"])
}

// serveThemeFile отдает файл темы. Выход за пределы темы отвечается так же,
// как отсутствующий файл, чтобы не раскрывать структуру диска.
func (a *API) serveThemeFile(w http.ResponseWriter, r *http.Request, themeID, filePath string) {
	path, err := a.Themes.AssetPath(r.Context(), themeID, filePath)
	if err != nil {
		if errors.Is(err, data.ErrForbidden) {
			log.Printf("serveThemeFile: отклонен путь %q в теме %q: %v", filePath, themeID, err)
			respondError(w, http.StatusNotFound, "File not found in theme")
			return
		}
		respondFailure(w, "serveThemeFile", err, "File not found in theme")
		return
	}

	file, err := os.Open(path)
	if err != nil {
		log.Printf("serveThemeFile: ошибка открытия %s: %v", path, err)
		respondError(w, http.StatusNotFound, "File not found in theme")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		log.Printf("serveThemeFile: ошибка stat %s: %v", path, err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	// ServeContent сам выставит Content-Type по расширению и обработает Range/If-Modified-Since.
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}
