package httpapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/arcanecrypto/noded/internal/apierr"
)

// requireReadTier accepts either configured password: the primary or the
// read-only one.
func (s *Server) requireReadTier() gin.HandlerFunc {
	return s.requirePassword(func(given string) bool {
		return constantTimeEquals(given, s.config.PrimaryPassword) || constantTimeEquals(given, s.config.ReadOnlyPassword)
	})
}

// requireFullAccessTier accepts only the primary password.
func (s *Server) requireFullAccessTier() gin.HandlerFunc {
	return s.requirePassword(func(given string) bool {
		return constantTimeEquals(given, s.config.PrimaryPassword)
	})
}

func (s *Server) requirePassword(accepts func(string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		given, ok := extractPassword(c.Request)
		if !ok {
			apierr.Public(c, http.StatusUnauthorized, apierr.ErrMissingAuthHeader)
			return
		}
		if !accepts(given) {
			apierr.Public(c, http.StatusUnauthorized, apierr.ErrBadCredentials)
			return
		}
		c.Next()
	}
}

// extractPassword reads the password from either HTTP Basic auth or, for
// the websocket upgrade path, the Sec-WebSocket-Protocol header.
func extractPassword(r *http.Request) (string, bool) {
	if _, password, ok := r.BasicAuth(); ok {
		return password, true
	}
	if protocol := r.Header.Get("Sec-WebSocket-Protocol"); protocol != "" {
		return protocol, true
	}
	return "", false
}

func constantTimeEquals(a, b string) bool {
	if b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
