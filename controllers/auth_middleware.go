package controllers

import (
	"errors"
	"net/http"

	"backoffice/models"

	"github.com/gin-gonic/gin"
)

const ctxUserKey = "auth_user"

// AuthRequired valida o Bearer token e carrega o usuário no contexto.
func (h *Handlers) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			RespondError(c, "ops! wait", http.StatusUnauthorized)
			c.Abort()
			return
		}
		claims, err := parseToken(h.Config.Security.JwtSecret, token, h.now)
		if errors.Is(err, errTokenExpired) {
			RespondError(c, "ops! token expired", http.StatusUnauthorized)
			c.Abort()
			return
		}
		if err != nil {
			RespondError(c, "ops! wat", http.StatusUnauthorized)
			c.Abort()
			return
		}

		store, ok := storeInstance(c)
		if !ok {
			c.Abort()
			return
		}
		user, err := store.UserByID(c.Request.Context(), claims.Subject)
		if err != nil || user == nil {
			RespondError(c, "user not found", http.StatusUnauthorized)
			c.Abort()
			return
		}

		c.Set(ctxUserKey, *user)
		c.Next()
	}
}

// GetUserLogged returns the user loaded by AuthRequired.
func GetUserLogged(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
