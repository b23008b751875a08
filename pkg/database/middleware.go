package database

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// WithDatabaseScope creates middleware that attaches a pool-backed database scope to the request.
// Pool-backed scopes let services fan reads out concurrently within one request.
func WithDatabaseScope(db *DB, logger *zap.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if db == nil || db.Pool == nil {
				logger.Error("Database scope requested but no pool is configured",
					zap.String("path", r.URL.Path))
				writeError(w, http.StatusInternalServerError, "database_error", "Database connection error")
				return
			}

			next(w, r.WithContext(db.WithScope(r.Context())))
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}
