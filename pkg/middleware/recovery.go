package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/logger"
)

// Recovery recovers from panics in handlers, logs the stack trace and
// responds with a 500.
func Recovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					l := logger.FromContext(r.Context())
					l.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error":{"code":"INTERNAL_ERROR","message":"an internal error occurred"}}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
