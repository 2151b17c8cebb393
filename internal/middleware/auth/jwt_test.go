package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/voicebank/payment-service/internal/middleware/auth"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID uuid.UUID, permissions []string, expiresIn time.Duration) string {
	t.Helper()
	claims := &auth.Claims{
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return token
}

func doRequest(m *auth.JWTMiddleware, authorization string) (*httptest.ResponseRecorder, uuid.UUID) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/initiate", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUserID uuid.UUID
	chain := m.Handle()(m.RequirePermission(auth.PermissionTransact)(func(c echo.Context) error {
		id, err := auth.UserID(c)
		if err != nil {
			return err
		}
		gotUserID = id
		return c.NoContent(http.StatusOK)
	}))
	_ = chain(c)
	return rec, gotUserID
}

func TestJWTMiddleware(t *testing.T) {
	logger := zap.NewNop()
	m := auth.NewJWTMiddleware(testSecret, logger)
	userID := uuid.New()

	t.Run("valid token with transact permission", func(t *testing.T) {
		token := signToken(t, userID, []string{"transact"}, time.Hour)
		rec, gotUserID := doRequest(m, "Bearer "+token)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, gotUserID)
	})

	t.Run("missing authorization header", func(t *testing.T) {
		rec, _ := doRequest(m, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		rec, _ := doRequest(m, "token-without-scheme")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, userID, []string{"transact"}, -time.Hour)
		rec, _ := doRequest(m, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := auth.NewJWTMiddleware("other-secret", logger)
		token := signToken(t, userID, []string{"transact"}, time.Hour)
		rec, _ := doRequest(other, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token without transact permission", func(t *testing.T) {
		token := signToken(t, userID, []string{"read"}, time.Hour)
		rec, _ := doRequest(m, "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
