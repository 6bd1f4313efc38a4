package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/fitcoach/internal/auth"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestFields carries attributes set by inner middleware back out to the
// request log line.
type requestFields struct {
	userID string
}

type requestFieldsKey struct{}

func setLoggedUser(ctx context.Context, userID string) {
	if f, ok := ctx.Value(requestFieldsKey{}).(*requestFields); ok {
		f.userID = userID
	}
}

// RequestLogger logs each request at a level derived from its status code:
// 5xx as error, 4xx as warn, everything else as info.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			fields := &requestFields{}

			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestFieldsKey{}, fields)))

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote", RealIP(r)),
			}
			uid := fields.userID
			if uid == "" {
				uid = auth.UserID(r.Context())
			}
			if uid != "" {
				attrs = append(attrs, slog.String("user_id", uid))
			}

			level := slog.LevelInfo
			switch {
			case rec.status >= 500:
				level = slog.LevelError
			case rec.status >= 400:
				level = slog.LevelWarn
			}
			logger.LogAttrs(r.Context(), level, "request", attrs...)
		})
	}
}
