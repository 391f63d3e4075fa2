package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	secure "github.com/srikrsna/security-headers"
)

type contextKey string

const sessionIDKey contextKey = "session_id"

const sessionCookieName = "session_id"

// sessionCookie guarantees every request carries a session id, minting a
// cookie on first contact, and places the id in the request context.
func (s *Server) sessionCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
			sessionID = cookie.Value
		} else {
			sessionID = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   86400, // 24 hours
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(sessionIDKey).(string)
	return id
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error().Interface("panic", err).Str("path", r.URL.Path).Msg("panic recovered")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func secureHeaders() func(http.Handler) http.Handler {
	sec := &secure.Secure{
		STSMaxAgeSeconds:     90 * 24 * 3600,
		STSIncludeSubdomains: true,
		ContentTypeNoSniff:   true,
		XSSFilterBlock:       true,
	}
	return sec.Middleware()
}
