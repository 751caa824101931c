package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"pushhub/internal/infrastructure/logger"
)

const identityKey = "auth.identity"

// Identity is the authenticated principal attached to the request context.
type Identity struct {
	UserID    string
	SessionID string
}

// Claims is the token payload accepted by the auth middleware.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
}

// AuthOptions configure token verification.
type AuthOptions struct {
	// Secret is the HMAC key tokens must be signed with.
	Secret string
	// Issuer is enforced when non-empty.
	Issuer string
}

// Auth verifies the request's bearer token and attaches the caller's
// Identity to the request context. The token is read from the
// Authorization header or, since EventSource cannot set headers, from the
// access_token query parameter.
func Auth(opts AuthOptions, log logger.Logger) gin.HandlerFunc {
	authLogger := log.WithField("middleware", "auth")

	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing access token",
			})
			return
		}

		identity, err := verifyToken(raw, opts)
		if err != nil {
			authLogger.Warnf("Rejected token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid access token",
			})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// IdentityFromContext returns the Identity stored by Auth.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}

	identity, ok := v.(Identity)
	return identity, ok
}

func tokenFromRequest(c *gin.Context) string {
	if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return token
	}
	return c.Query("access_token")
}

func verifyToken(raw string, opts AuthOptions) (Identity, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(opts.Secret), nil
	}, parserOpts...)
	if err != nil {
		return Identity{}, err
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return Identity{}, errors.New("token carries no user id")
	}

	return Identity{UserID: userID, SessionID: claims.SessionID}, nil
}
