package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mateatletas/backend/internal/domain/shared"
	"github.com/mateatletas/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters"

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{Secret: testSecret, Issuer: "mateatletas"})
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.IssueAccessToken("student-1", shared.RoleStudent, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "student-1", claims.UserID)
	assert.Equal(t, shared.RoleStudent, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now(), claims.GetIssuedAtTime(), 5*time.Second)
}

func TestJWTService_ValidateAccessToken_Errors(t *testing.T) {
	svc := newTestJWTService()

	sign := func(t *testing.T, claims *Claims, secret string, method jwt.SigningMethod) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	valid := func() *Claims {
		now := time.Now()
		return &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "mateatletas",
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
			UserID: "u1",
			Role:   shared.RoleTutor,
		}
	}

	tests := []struct {
		name  string
		token func(t *testing.T) string
		err   error
	}{
		{
			name:  "garbage",
			token: func(*testing.T) string { return "not-a-jwt" },
			err:   ErrInvalidToken,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				return sign(t, valid(), "another-secret-key-also-32-characters-long", jwt.SigningMethodHS256)
			},
			err: ErrInvalidToken,
		},
		{
			name: "wrong algorithm",
			token: func(t *testing.T) string {
				return sign(t, valid(), testSecret, jwt.SigningMethodHS512)
			},
			err: ErrInvalidToken,
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				c := valid()
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
				return sign(t, c, testSecret, jwt.SigningMethodHS256)
			},
			err: ErrExpiredToken,
		},
		{
			name: "not yet valid",
			token: func(t *testing.T) string {
				c := valid()
				c.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))
				return sign(t, c, testSecret, jwt.SigningMethodHS256)
			},
			err: ErrTokenNotYetValid,
		},
		{
			name: "foreign issuer",
			token: func(t *testing.T) string {
				c := valid()
				c.Issuer = "someone-else"
				return sign(t, c, testSecret, jwt.SigningMethodHS256)
			},
			err: ErrInvalidToken,
		},
		{
			name: "missing user id",
			token: func(t *testing.T) string {
				c := valid()
				c.UserID = ""
				return sign(t, c, testSecret, jwt.SigningMethodHS256)
			},
			err: ErrMissingUserID,
		},
		{
			name: "unknown role",
			token: func(t *testing.T) string {
				c := valid()
				c.Role = "superuser"
				return sign(t, c, testSecret, jwt.SigningMethodHS256)
			},
			err: ErrUnknownRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateAccessToken(tt.token(t))
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestJWTService_NoIssuerConfigured(t *testing.T) {
	issuer := NewJWTService(config.JWTConfig{Secret: testSecret, Issuer: "login"})
	token, err := issuer.IssueAccessToken("admin-1", shared.RoleAdmin, time.Minute)
	require.NoError(t, err)

	lenient := NewJWTService(config.JWTConfig{Secret: testSecret})
	claims, err := lenient.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, shared.RoleAdmin, claims.Role)
}
