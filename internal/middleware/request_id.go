package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const requestIDContextKey contextKey = "requestID"

// maxRequestIDLength bounds ids taken from callers so log lines stay sane.
const maxRequestIDLength = 128

// RequestID reuses an incoming X-Request-Id or X-Correlation-Id, otherwise
// mints a uuid. The id is echoed on the response and stored on the context
// for loggers and run records.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := readRequestIDHeader(r)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			r.Header.Set("X-Request-Id", requestID)
			w.Header().Set("X-Request-Id", requestID)
			ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

func readRequestIDHeader(r *http.Request) string {
	for _, key := range []string{"X-Request-Id", "X-Correlation-Id"} {
		value := strings.TrimSpace(r.Header.Get(key))
		if value != "" && len(value) <= maxRequestIDLength {
			return value
		}
	}
	return ""
}
