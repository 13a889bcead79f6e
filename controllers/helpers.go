package controllers

import (
	"net/http"
	"strings"

	"backoffice/tools"

	"github.com/gin-gonic/gin"
)

func ParamID(c *gin.Context, name string) (string, bool) {
	v := strings.TrimSpace(c.Param(name))
	if v == "" {
		RespondError(c, name+" é obrigatório", http.StatusBadRequest)
		return "", false
	}
	if !tools.ValidateID(v) {
		RespondError(c, name+" inválido", http.StatusBadRequest)
		return "", false
	}
	return v, true
}

// bearerToken extrai o token de "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) < len("bearer ") || !strings.EqualFold(h[:len("bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[len("bearer "):])
}
