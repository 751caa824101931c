package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"pushhub/internal/infrastructure/logger"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, secret string, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

func protectedRouter(opts AuthOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Auth(opts, logger.NewNopLogger()), func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no identity"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID, "session_id": identity.SessionID})
	})
	return r
}

func TestAuth_BearerHeader(t *testing.T) {
	r := protectedRouter(AuthOptions{Secret: testSecret})

	token := mintToken(t, testSecret, jwt.SigningMethodHS256, Claims{
		UserID:    "alice",
		SessionID: "sess-1",
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"user_id":"alice"`) {
		t.Errorf("Expected alice's identity, got %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"session_id":"sess-1"`) {
		t.Errorf("Expected session id, got %s", w.Body.String())
	}
}

func TestAuth_QueryParameter(t *testing.T) {
	r := protectedRouter(AuthOptions{Secret: testSecret})

	token := mintToken(t, testSecret, jwt.SigningMethodHS256, Claims{UserID: "alice"})

	req := httptest.NewRequest(http.MethodGet, "/protected?access_token="+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuth_SubjectFallback(t *testing.T) {
	r := protectedRouter(AuthOptions{Secret: testSecret})

	token := mintToken(t, testSecret, jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "bob"},
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"user_id":"bob"`) {
		t.Errorf("Expected subject as user id, got %s", w.Body.String())
	}
}

func TestAuth_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "missing token",
			token: "",
		},
		{
			name:  "garbage token",
			token: "not-a-jwt",
		},
		{
			name:  "wrong secret",
			token: mintToken(t, "other-secret", jwt.SigningMethodHS256, Claims{UserID: "alice"}),
		},
		{
			name:  "wrong signing method",
			token: mintToken(t, testSecret, jwt.SigningMethodHS512, Claims{UserID: "alice"}),
		},
		{
			name: "expired",
			token: mintToken(t, testSecret, jwt.SigningMethodHS256, Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				},
				UserID: "alice",
			}),
		},
		{
			name:  "no user id",
			token: mintToken(t, testSecret, jwt.SigningMethodHS256, Claims{}),
		},
	}

	r := protectedRouter(AuthOptions{Secret: testSecret})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestAuth_IssuerEnforcement(t *testing.T) {
	r := protectedRouter(AuthOptions{Secret: testSecret, Issuer: "pushhub"})

	good := mintToken(t, testSecret, jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "pushhub"},
		UserID:           "alice",
	})
	bad := mintToken(t, testSecret, jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
		UserID:           "alice",
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+good)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for matching issuer, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+bad)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for issuer mismatch, got %d", w.Code)
	}
}
