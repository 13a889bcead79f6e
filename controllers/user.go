package controllers

import (
	"net/http"

	"backoffice/models"
	"backoffice/tools"

	"github.com/gin-gonic/gin"
)

type createUserReq struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

var assignableRoles = map[string]bool{
	models.USER_ROLE_OPERATOR: true,
	models.USER_ROLE_AUXILIAR: true,
	models.USER_ROLE_MANAGER:  true,
	models.USER_ROLE_ADMIN:    true,
}

// POST /api/users (admin): cria um operador no tenant do admin.
func CreateUser(c *gin.Context) {
	admin, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if !tools.ValidateEmail(req.Email) {
		RespondError(c, "E-mail inválido!", http.StatusBadRequest)
		return
	}

	user, err := models.NewUser(admin.TenantID, req.Name, req.Email, req.Password)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Role != "" {
		if !assignableRoles[req.Role] {
			RespondError(c, "role inválido", http.StatusBadRequest)
			return
		}
		user.Role = req.Role
	}

	store, ok := storeInstance(c)
	if !ok {
		return
	}
	existing, err := store.UserByEmail(c.Request.Context(), user.Email)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if existing != nil {
		RespondError(c, "Usuário já existe", http.StatusBadRequest)
		return
	}

	if err := store.DB.Create(&user).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, user)
}
