package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestIdentityFromToken(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()

	t.Run("subject claim", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{"sub": "student-7", "exp": future})
		userID, err := identityFromToken(tok)
		if err != nil {
			t.Fatalf("identityFromToken: %v", err)
		}
		if userID != "student-7" {
			t.Fatalf("userID = %q, want student-7", userID)
		}
	})

	t.Run("username fallback", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{"username": "ada", "exp": future})
		userID, err := identityFromToken(tok)
		if err != nil || userID != "ada" {
			t.Fatalf("userID = %q, err = %v", userID, err)
		}
	})

	t.Run("numeric id fallback", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{"id": 42, "exp": future})
		userID, err := identityFromToken(tok)
		if err != nil || userID != "42" {
			t.Fatalf("userID = %q, err = %v", userID, err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(-time.Minute).Unix()})
		if _, err := identityFromToken(tok); !errors.Is(err, jwt.ErrTokenExpired) {
			t.Fatalf("err = %v, want ErrTokenExpired", err)
		}
	})

	t.Run("no expiry accepted", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{"sub": "y"})
		if _, err := identityFromToken(tok); err != nil {
			t.Fatalf("token without exp rejected: %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := identityFromToken("not.a.token"); err == nil {
			t.Fatal("garbage token accepted")
		}
	})

	t.Run("no identity claim", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{"exp": future})
		if _, err := identityFromToken(tok); err == nil {
			t.Fatal("token without identity accepted")
		}
	})
}

func TestRequireToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", RequireToken(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})

	tok := signToken(t, jwt.MapClaims{"sub": "student-7", "exp": time.Now().Add(time.Hour).Unix()})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
	})

	t.Run("query fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected?token="+tok, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		stale := signToken(t, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(-time.Hour).Unix()})
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+stale)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})
}
