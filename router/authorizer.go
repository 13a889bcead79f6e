package router

import (
	"net/http"

	"backoffice/controllers"
	"backoffice/models"

	"github.com/gin-gonic/gin"
)

// Authorizer barra usuários pendentes ou bloqueados e usuários sem tenant.
func Authorizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := controllers.GetUserLogged(c)
		if !ok {
			controllers.RespondError(c, "unauthorized", http.StatusUnauthorized)
			c.Abort()
			return
		}

		switch {
		case user.Status == models.USER_STATUS_PENDING:
			controllers.RespondError(c, "necessário confirmar a conta", http.StatusForbidden)
		case user.Status == models.USER_STATUS_BLOCKED:
			controllers.RespondError(c, "sem acesso ao aplicativo", http.StatusForbidden)
		case user.TenantID == "":
			controllers.RespondError(c, "usuário sem empresa vinculada", http.StatusForbidden)
		default:
			c.Next()
			return
		}
		c.Abort()
	}
}

// RoleRequired libera só os papéis informados. Admin sempre passa.
func RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := controllers.GetUserLogged(c)
		if !ok {
			controllers.RespondError(c, "unauthorized", http.StatusUnauthorized)
			c.Abort()
			return
		}
		if user.IsAdmin() {
			c.Next()
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		controllers.RespondError(c, "permissão insuficiente", http.StatusForbidden)
		c.Abort()
	}
}
