package middleware

import (
	"net/http"
	"strings"

	"github.com/ErlanBelekov/diary-service/internal/domain"
	applog "github.com/ErlanBelekov/diary-service/internal/log"
	"github.com/gin-gonic/gin"
)

const errUnauthorized = "Unauthorized"

// Context keys set by Auth.
const (
	UserIDKey = "userID"
	ClaimsKey = "claims"
)

// TokenVerifier is satisfied by *token.Service.
type TokenVerifier interface {
	Verify(raw string) (domain.Claims, error)
}

// TokenExtractor pulls a raw session token out of a request. It returns
// false when its channel carries nothing.
type TokenExtractor func(r *http.Request) (string, bool)

func FromCookie(name string) TokenExtractor {
	return func(r *http.Request) (string, bool) {
		ck, err := r.Cookie(name)
		if err != nil || ck.Value == "" {
			return "", false
		}
		return ck.Value, true
	}
}

func FromBearerHeader() TokenExtractor {
	return func(r *http.Request) (string, bool) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return "", false
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		return raw, raw != ""
	}
}

// DefaultExtractors puts the session cookie ahead of the Authorization header.
func DefaultExtractors(cookieName string) []TokenExtractor {
	return []TokenExtractor{FromCookie(cookieName), FromBearerHeader()}
}

// ExtractToken returns the value of the first extractor that yields one.
// Later extractors are not consulted, even if the winning token turns out
// to be invalid.
func ExtractToken(r *http.Request, extractors []TokenExtractor) (string, bool) {
	for _, extract := range extractors {
		if raw, ok := extract(r); ok {
			return raw, true
		}
	}
	return "", false
}

// ResolveIdentity extracts and verifies the session token. A missing token is
// domain.ErrUnauthorized; a bad or expired one is domain.ErrTokenInvalid.
func ResolveIdentity(r *http.Request, verifier TokenVerifier, extractors []TokenExtractor) (domain.Claims, error) {
	raw, ok := ExtractToken(r, extractors)
	if !ok {
		return domain.Claims{}, domain.ErrUnauthorized
	}
	return verifier.Verify(raw)
}

// Auth resolves the caller and sets "userID" (int64) and "claims" in the gin
// context. Every failure is a 401 with the same body.
func Auth(verifier TokenVerifier, extractors []TokenExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := ResolveIdentity(c.Request, verifier, extractors)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		c.Request = c.Request.WithContext(applog.WithUserID(c.Request.Context(), claims.UserID))
		c.Set(UserIDKey, claims.UserID)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
