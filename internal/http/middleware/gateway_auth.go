package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/installdesk-backend/internal/http/response"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

// GatewayAuth checks the chat gateway's bearer token: an HS256 JWT signed
// with the app password whose audience is the app id. It is a shared-secret
// check only; gateway key discovery is not performed.
type GatewayAuth struct {
	log    *logger.Logger
	appID  string
	secret []byte
}

func NewGatewayAuth(log *logger.Logger, appID, appPassword string) *GatewayAuth {
	return &GatewayAuth{
		log:    log.With("middleware", "GatewayAuth"),
		appID:  strings.TrimSpace(appID),
		secret: []byte(appPassword),
	}
}

func (g *GatewayAuth) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing bearer token"))
			c.Abort()
			return
		}
		if err := g.verify(raw); err != nil {
			g.log.Warn("Gateway token rejected", "error", err)
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("invalid gateway token"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (g *GatewayAuth) verify(raw string) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(time.Minute),
	}
	if g.appID != "" {
		opts = append(opts, jwt.WithAudience(g.appID))
	}
	_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return g.secret, nil
	}, opts...)
	return err
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
