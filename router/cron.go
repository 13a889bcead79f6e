package router

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"backoffice/controllers"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// CronAuthorizer exige o segredo do cron em "Authorization: Bearer" ou
// "X-Cron-Secret". Sem segredo configurado só passa com allowAnonymous.
func CronAuthorizer(secret string, allowAnonymous bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			if allowAnonymous {
				c.Next()
				return
			}
			log.Warn().Str("path", c.FullPath()).Msg("cron: secret not configured, rejecting")
			controllers.RespondError(c, "cron secret not configured", http.StatusUnauthorized)
			c.Abort()
			return
		}

		provided := strings.TrimSpace(c.GetHeader("X-Cron-Secret"))
		if provided == "" {
			h := strings.TrimSpace(c.GetHeader("Authorization"))
			if len(h) > len("bearer ") && strings.EqualFold(h[:len("bearer ")], "bearer ") {
				provided = strings.TrimSpace(h[len("bearer "):])
			}
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			controllers.RespondError(c, "unauthorized", http.StatusUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}
