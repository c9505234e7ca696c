package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/skilltree/internal/progress"
	"github.com/abhisek/skilltree/internal/store"
)

type ctxKey struct{}

// logUserKey carries a slot that authenticate fills so that observe, which
// wraps it, can log the resolved user.
type logUserKey struct{}

func withUser(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// userFrom returns the authenticated user ID, or progress.Anonymous.
func userFrom(ctx context.Context) int {
	if id, ok := ctx.Value(ctxKey{}).(int); ok {
		return id
	}
	return progress.Anonymous
}

// authenticate resolves a bearer token to a user. Requests without a token
// continue anonymously; an unknown token is rejected.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if h == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "malformed authorization header")
			return
		}
		u, err := s.users.ByToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			s.fail(w, r, err)
			return
		}
		if slot, ok := r.Context().Value(logUserKey{}).(*int); ok {
			*slot = u.ID
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u.ID)))
	})
}

// observe logs every request and records its metrics under the matched
// route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		user := progress.Anonymous
		r = r.WithContext(context.WithValue(r.Context(), logUserKey{}, &user))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		elapsed := time.Since(start)

		s.metrics.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		s.metrics.duration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", elapsed,
			"user", user,
		)
	})
}
