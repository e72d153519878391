package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/logger"
)

const correlationHeader = "X-Correlation-ID"

// RequestLogger attaches a request-scoped logger to the context. It reads the
// correlation ID from the X-Correlation-ID header, generating one if missing,
// echoes it on the response, and enriches the logger with context-derived
// fields so downstream code can use logger.FromContext.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			correlationID := r.Header.Get(correlationHeader)
			if correlationID == "" {
				correlationID = uuid.NewString()
			}

			ctx := logger.WithCorrelationID(r.Context(), correlationID)
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))

			w.Header().Set(correlationHeader, correlationID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
