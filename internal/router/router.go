package router

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-messagely/internal/auth"
	"github.com/ovaphlow/pitchfork/service-messagely/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-messagely/internal/message"
	"github.com/ovaphlow/pitchfork/service-messagely/internal/user"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// RequestIDMiddleware tags every response with an X-Request-ID, reusing the
// caller's value when one is supplied.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(httpx.RequestIDHeader)
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			w.Header().Set(httpx.RequestIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
				"request_id", w.Header().Get(httpx.RequestIDHeader),
			)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer")
			// responses carry identities and private messages
			w.Header().Set("Cache-Control", "no-store")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			}
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
// Every route runs behind Authenticate; per-route guards are applied here.
func RegisterRoutes(logger *zap.SugaredLogger, guards *auth.Guards, users *user.Handler, messages *message.Handler) http.Handler {
	mux := http.NewServeMux()

	loggedIn := func(h http.HandlerFunc) http.Handler {
		return guards.RequireLoggedIn(h)
	}
	correctUser := func(h http.HandlerFunc) http.Handler {
		return guards.RequireLoggedIn(guards.RequireCorrectUser("username")(h))
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// auth
	mux.HandleFunc("POST /users", users.Register)
	mux.HandleFunc("POST /login", users.Login)

	// users
	mux.Handle("GET /users", loggedIn(users.List))
	mux.Handle("GET /users/{username}", correctUser(users.Get))
	mux.Handle("GET /users/{username}/to", correctUser(messages.ListTo))
	mux.Handle("GET /users/{username}/from", correctUser(messages.ListFrom))

	// messages
	mux.Handle("POST /messages", loggedIn(messages.Create))
	mux.Handle("GET /messages/{id}", loggedIn(messages.Get))
	mux.Handle("POST /messages/{id}/read", loggedIn(messages.MarkRead))

	handler := guards.Authenticate(mux)
	handler = SecurityHeadersMiddleware()(handler)
	handler = LoggingMiddleware(logger)(handler)
	return RequestIDMiddleware()(handler)
}
