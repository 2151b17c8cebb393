package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/voicebank/payment-service/pkg/errors"
)

// Context keys set by the middleware.
const (
	UserIDKey      = "user_id"
	PermissionsKey = "permissions"
)

// PermissionTransact is required for every payment operation.
const PermissionTransact = "transact"

// Claims is the token payload issued by the identity service.
type Claims struct {
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// JWTMiddleware authenticates requests with an HS256 bearer token and
// enforces the transact permission.
type JWTMiddleware struct {
	secret []byte
	logger *zap.Logger
}

// NewJWTMiddleware creates a JWT authentication middleware.
func NewJWTMiddleware(secret string, logger *zap.Logger) *JWTMiddleware {
	return &JWTMiddleware{
		secret: []byte(secret),
		logger: logger,
	}
}

// Handle extracts and verifies the bearer token, then stores the caller's
// identity and permissions on the request context.
func (m *JWTMiddleware) Handle() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := extractBearer(c)
			if err != nil {
				return apperrors.JSONResponse(c, err)
			}

			claims, err := m.parseClaims(token)
			if err != nil {
				m.logger.Info("authentication failed",
					zap.String("ip", c.RealIP()),
					zap.String("path", c.Request().URL.Path),
					zap.Error(err))
				return apperrors.JSONResponse(c,
					apperrors.NewAppError(apperrors.ErrUnauthenticated, "invalid token", nil))
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return apperrors.JSONResponse(c,
					apperrors.NewAppError(apperrors.ErrUnauthenticated, "invalid token subject", nil))
			}

			c.Set(UserIDKey, userID)
			c.Set(PermissionsKey, claims.Permissions)
			return next(c)
		}
	}
}

// RequirePermission rejects callers whose token lacks the permission.
func (m *JWTMiddleware) RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			permissions, _ := c.Get(PermissionsKey).([]string)
			for _, p := range permissions {
				if p == permission {
					return next(c)
				}
			}
			return apperrors.JSONResponse(c,
				apperrors.NewAppError(apperrors.ErrUnauthorized, "missing permission: "+permission, nil))
		}
	}
}

// UserID returns the authenticated user's id from the request context.
func UserID(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get(UserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, apperrors.NewAppError(apperrors.ErrUnauthenticated, "not authenticated", nil)
	}
	return id, nil
}

func (m *JWTMiddleware) parseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}

func extractBearer(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", apperrors.NewAppError(apperrors.ErrUnauthenticated, "missing authorization header", nil)
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", apperrors.NewAppError(apperrors.ErrUnauthenticated, "malformed authorization header", nil)
	}
	return parts[1], nil
}
