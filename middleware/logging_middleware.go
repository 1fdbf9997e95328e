package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader - заголовок с идентификатором запроса.
const RequestIDHeader = "X-Request-ID"

// LoggingMiddleware пишет в лог метод, путь, статус, длительность и ID запроса.
// Входящий X-Request-ID сохраняется, иначе генерируется новый.
func LoggingMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set(RequestIDHeader, requestID)

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)
			logger.Printf("[%s] %s %s %d %s", requestID, r.Method, r.URL.Path, rw.statusCode, time.Since(start))
		})
	}
}

// responseWriter оборачивает http.ResponseWriter, чтобы запомнить статус.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader запоминает статус и пишет заголовок.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
