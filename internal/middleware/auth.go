package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/GavrielUnict/elearning-platform/internal/models"
	"github.com/GavrielUnict/elearning-platform/pkg/config"
	appErrors "github.com/GavrielUnict/elearning-platform/pkg/errors"
	"github.com/GavrielUnict/elearning-platform/pkg/response"
)

// ContextIdentityKey is the gin context key storing the resolved identity.
const ContextIdentityKey = "currentIdentity"

// Auth validates the bearer token issued by the external authorizer and
// resolves the caller's identity once per request. Requests whose group
// claim maps to no known role are rejected, never defaulted.
func Auth(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		identity, err := ResolveIdentity(parts[1], cfg)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// ResolveIdentity parses and validates a token, mapping its claims to a
// platform identity.
func ResolveIdentity(tokenString string, cfg config.AuthConfig) (models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(cfg.TokenSecret), nil
	})
	if err != nil || !token.Valid {
		return models.Identity{}, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Identity{}, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return models.Identity{}, appErrors.Clone(appErrors.ErrUnauthorized, "token carries no subject")
	}
	email, _ := claims["email"].(string)

	role, err := resolveRole(claims, cfg)
	if err != nil {
		return models.Identity{}, err
	}

	return models.Identity{ID: sub, Email: email, Role: role}, nil
}

func resolveRole(claims jwt.MapClaims, cfg config.AuthConfig) (models.Role, error) {
	for _, group := range groupClaims(claims) {
		switch group {
		case cfg.TeacherGroup:
			return models.RoleTeacher, nil
		case cfg.StudentGroup:
			return models.RoleStudent, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrForbidden, "no platform role assigned to this account")
}

func groupClaims(claims jwt.MapClaims) []string {
	raw, ok := claims["groups"]
	if !ok {
		raw = claims["cognito:groups"]
	}
	switch v := raw.(type) {
	case []interface{}:
		groups := make([]string, 0, len(v))
		for _, g := range v {
			if s, ok := g.(string); ok {
				groups = append(groups, s)
			}
		}
		return groups
	case []string:
		return v
	case string:
		return []string{v}
	default:
		return nil
	}
}
