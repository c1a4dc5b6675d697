package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/krbank/backoffice/internal/models"
)

// Context keys set by AuthMiddleware.
const (
	ContextEmployeeID = "employeeId"
	ContextUsername   = "username"
	ContextRole       = "role"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	EmployeeID string      `json:"employeeId"`
	Username   string      `json:"username"`
	Role       models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *TokenManager) Issue(employee *models.Employee) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		EmployeeID: employee.ID,
		Username:   employee.Username,
		Role:       employee.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   employee.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func AuthMiddleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			RespondWithError(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			RespondWithError(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextEmployeeID, claims.EmployeeID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, string(claims.Role))
		c.Next()
	}
}

// RequireRole rejects authenticated callers whose role is not listed.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok || !slices.Contains(roles, role) {
			RespondWithError(c, http.StatusForbidden, "Insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}

func GetEmployeeID(c *gin.Context) (string, bool) {
	employeeID, exists := c.Get(ContextEmployeeID)
	if !exists {
		return "", false
	}
	id, ok := employeeID.(string)
	return id, ok
}

func GetRole(c *gin.Context) (models.Role, bool) {
	role, exists := c.Get(ContextRole)
	if !exists {
		return "", false
	}
	s, ok := role.(string)
	return models.Role(s), ok
}
