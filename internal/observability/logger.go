package observability

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// SetupLogger builds the process-wide logger: human-readable debug output in
// development, JSON otherwise.
func SetupLogger(env string) *slog.Logger {
	switch env {
	case "development", "dev":
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
}

// NewRequestLogger logs one line per handled request.
func NewRequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"duration", time.Since(start),
			)
		})
	}
}
