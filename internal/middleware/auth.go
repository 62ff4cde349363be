package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"paidlinks-api/internal/apperrors"
	"paidlinks-api/internal/response"
)

const subjectKey = "auth_subject"

var errMissingToken = errors.New("missing bearer token")

// Claims are the JWT claims issued by the platform's account service.
// Subject is the account id, which is also the creator id.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseBearer(c, secret)
		if err != nil {
			response.FromError(c, apperrors.Wrap(apperrors.ErrUnauthorized, "missing or invalid token", err))
			return
		}

		c.Set(subjectKey, claims.Subject)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a token is sent. An invalid token
// is still rejected.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseBearer(c, secret)
		switch {
		case errors.Is(err, errMissingToken):
		case err != nil:
			response.FromError(c, apperrors.Wrap(apperrors.ErrUnauthorized, "invalid token", err))
			return
		default:
			c.Set(subjectKey, claims.Subject)
		}
		c.Next()
	}
}

// Subject returns the authenticated account id, if any
func Subject(c *gin.Context) (string, bool) {
	v, ok := c.Get(subjectKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func parseBearer(c *gin.Context, secret string) (*Claims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, errMissingToken
	}

	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return nil, errors.New("authorization header must be a bearer token")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// IssueToken signs an HS256 token for subject
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
