package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/graduation-masterpiece/demo-repository/internal/http/response"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

const RoleAdmin = "admin"

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware guards administrative routes with HS256 bearer tokens.
type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
}

func NewAuthMiddleware(log *logger.Logger, secret string) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), secret: []byte(strings.TrimSpace(secret))}
}

// RequireAdmin rejects every request when no secret is configured.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(am.secret) == 0 {
			response.RespondAPIError(c, apierr.Forbidden("admin routes are disabled"))
			return
		}
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			response.RespondAPIError(c, apierr.Forbidden("missing bearer token"))
			return
		}
		claims, err := am.parse(raw)
		if err != nil {
			am.log.Warn("admin token rejected", "error", err, "client_ip", c.ClientIP())
			response.RespondAPIError(c, apierr.Forbidden("invalid token"))
			return
		}
		if claims.Role != RoleAdmin {
			response.RespondAPIError(c, apierr.Forbidden("admin role required"))
			return
		}
		c.Set("admin_subject", claims.Subject)
		c.Next()
	}
}

func (am *AuthMiddleware) parse(raw string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return am.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("token not valid")
	}
	return claims, nil
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
