package middleware

import (
	"log/slog"
	"net/http"

	"github.com/roomhaven/reviews-service/pkg/logger"
)

// RequestLogger builds a request-scoped logger enriched with correlation_id,
// user_id, trace_id, and span_id, and stores it in context via
// logger.NewContext. Downstream handlers retrieve it with logger.FromContext.
//
// Mount AFTER RequestLogging (which sets correlation_id).
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Identity arrives via the edge gateway's X-User-ID header.
			if userID := r.Header.Get("X-User-ID"); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
