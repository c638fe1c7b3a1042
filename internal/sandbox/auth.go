package sandbox

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"quizctl/internal/domain"
)

const (
	ctxEmail = "user_email"
	ctxRole  = "user_role"
)

var errInvalidToken = errors.New("invalid token")

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func (t tokenIssuer) issue(user domain.User) (string, error) {
	now := t.now()
	c := claims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

func (t tokenIssuer) validate(raw string) (*claims, error) {
	token, err := jwt.ParseWithClaims(raw, &claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, errInvalidToken
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, errInvalidToken
	}
	return c, nil
}

// requireAuth validates the bearer token and puts its claims on the context.
func (t tokenIssuer) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			abort(c, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		cl, err := t.validate(raw)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		c.Set(ctxEmail, cl.Email)
		c.Set(ctxRole, cl.Role)
		c.Next()
	}
}

func requireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxRole) != string(role) {
			abort(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

func isAdmin(c *gin.Context) bool {
	return c.GetString(ctxRole) == string(domain.RoleAdmin)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
