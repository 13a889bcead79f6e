package controllers

import (
	"net/http"
	"time"

	"backoffice/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		RespondError(c, "email e password são obrigatórios", http.StatusBadRequest)
		return
	}

	store, ok := storeInstance(c)
	if !ok {
		return
	}
	user, err := store.UserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if user == nil || !user.CheckPassword(req.Password) {
		RespondError(c, "usuário ou senha inválidos", http.StatusUnauthorized)
		return
	}

	if user.Status == models.USER_STATUS_PENDING {
		RespondError(c, "usuário pendente de ativação", http.StatusForbidden)
		return
	}
	if user.Status == models.USER_STATUS_BLOCKED {
		RespondError(c, "usuário bloqueado", http.StatusForbidden)
		return
	}

	ttl := time.Duration(h.Config.Security.TokenValidHours) * time.Hour
	signed, err := signToken(h.Config.Security.JwtSecret, *user, h.now(), ttl)
	if err != nil {
		RespondError(c, "erro ao assinar token", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", user.ID).Str("tenant_id", user.TenantID).Msg("auth: login")
	RespondSuccess(c, LoginResponse{Token: signed, User: *user})
}
