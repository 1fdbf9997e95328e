package controllers

import (
	"log"
	"net/http"

	"invitation_server_go/auth"
	"invitation_server_go/data"
	"invitation_server_go/middleware"
	"invitation_server_go/models"

	"github.com/gorilla/mux"
)

// API держит зависимости обработчиков.
type API struct {
	Configs data.ConfigStorage
	Themes  data.ThemeStorage
	Gate    *auth.Gate

	DefaultTheme string
	AppName      string
	AppVersion   string
	CORSOrigins  []string

	// Logger для журнала запросов; nil - стандартный логгер.
	Logger *log.Logger
}

// NewRouter регистрирует все маршруты.
func NewRouter(a *API) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "File not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	jwt := middleware.JWTMiddleware(a.Gate, RespondError)
	adminOnly := middleware.RequireRole(models.RoleAdmin, RespondError)

	// Открытые маршруты
	router.HandleFunc("/", a.IndexHandler).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/config.json", a.PublicConfigHandler).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/health", a.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/api/login", a.LoginHandler).Methods(http.MethodPost)

	// Файлы тем открыты: страница приглашения публичная.
	router.HandleFunc("/themes/{theme_id}/{file_path:.+}", a.ThemeFileHandler).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/assets/{file_path:.+}", a.DefaultAssetsHandler).Methods(http.MethodGet, http.MethodHead)

	// Маршруты /api, требующие токена
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(jwt)
	apiRouter.HandleFunc("/logout", a.LogoutHandler).Methods(http.MethodPost)
	apiRouter.HandleFunc("/verify", a.VerifyHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/config", a.GetConfigHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/themes", a.ListThemesHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/themes/{theme_id}", a.GetThemeHandler).Methods(http.MethodGet)

	// Управление конфигурацией - только admin
	apiRouter.Handle("/config", adminOnly(http.HandlerFunc(a.UpdateConfigHandler))).Methods(http.MethodPost)
	apiRouter.Handle("/config/backups", adminOnly(http.HandlerFunc(a.ListBackupsHandler))).Methods(http.MethodGet)
	apiRouter.Handle("/config/restore/{filename}", adminOnly(http.HandlerFunc(a.RestoreBackupHandler))).Methods(http.MethodPost)

	return router
}

// Handler возвращает маршрутизатор, обернутый CORS и журналом запросов.
// Обертки стоят снаружи mux, чтобы видеть и preflight, и 404.
func (a *API) Handler() http.Handler {
	logger := a.Logger
	if logger == nil {
		logger = log.Default()
	}
	var handler http.Handler = NewRouter(a)
	handler = middleware.CORSMiddleware(a.CORSOrigins)(handler)
	handler = middleware.LoggingMiddleware(logger)(handler)
	return handler
}
