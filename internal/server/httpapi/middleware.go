package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/bakerykit/internal/common"
	"github.com/dmitrijs2005/bakerykit/internal/server/auth"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const claimsKey ctxKey = "claims"

func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// requireAuth rejects requests without a valid bearer access token and
// stores its claims in the request context.
func (s *HTTPServer) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.authenticate(r)
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *HTTPServer) authenticate(r *http.Request) (*auth.Claims, bool) {
	token, ok := bearerToken(r.Header.Get(common.AuthorizationHeaderName))
	if !ok {
		return nil, false
	}
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func bearerToken(value string) (string, bool) {
	if !strings.HasPrefix(value, common.BearerScheme) {
		return "", false
	}
	token := strings.TrimSpace(value[len(common.BearerScheme):])
	return token, token != ""
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}
