package controllers

import (
	"net/http"
	"strings"

	"backoffice/models"

	"github.com/gin-gonic/gin"
)

type upsertInstanceReq struct {
	InstanceName  string  `json:"instance_name"`
	Provider      string  `json:"provider"`
	PhoneNumberID string  `json:"phone_number_id"`
	AccessToken   string  `json:"access_token"`
	ApiVersion    string  `json:"api_version"`
	Status        *string `json:"status"`
}

// GET /api/whatsapp-instances (admin)
func ListWhatsAppInstances(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	store, ok := storeInstance(c)
	if !ok {
		return
	}
	var list []models.WhatsAppInstance
	if err := store.DB.Where("tenant_id = ?", user.TenantID).Order("created_at asc, id asc").Find(&list).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"instances": list})
}

// POST /api/whatsapp-instances (admin)
func CreateWhatsAppInstance(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req upsertInstanceReq
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	inst, err := models.NewWhatsAppInstance(user.TenantID, req.InstanceName, strings.TrimSpace(req.Provider))
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if inst.Provider == models.PROVIDER_CLOUD {
		inst.PhoneNumberID = strings.TrimSpace(req.PhoneNumberID)
		inst.AccessToken = strings.TrimSpace(req.AccessToken)
		inst.ApiVersion = strings.TrimSpace(req.ApiVersion)
		if inst.ApiVersion == "" {
			inst.ApiVersion = "v24.0"
		}
		if inst.PhoneNumberID == "" {
			RespondError(c, "phone_number_id é obrigatório", http.StatusBadRequest)
			return
		}
		if inst.AccessToken == "" {
			RespondError(c, "access_token é obrigatório", http.StatusBadRequest)
			return
		}
		// Cloud API não tem sessão: conectada desde o cadastro.
		inst.IsConnected = true
	}

	store, ok := storeInstance(c)
	if !ok {
		return
	}
	if existing, err := store.InstanceByName(c.Request.Context(), inst.InstanceName); err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	} else if existing != nil {
		RespondError(c, "instance_name já cadastrado", http.StatusConflict)
		return
	}
	if err := store.DB.Create(inst).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"instance": inst})
}

// PUT /api/whatsapp-instances/:id (admin)
// Atualiza credenciais da Cloud API e o status (active/inactive).
func UpdateWhatsAppInstance(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req upsertInstanceReq
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	store, ok := storeInstance(c)
	if !ok {
		return
	}
	inst, err := store.GetInstance(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if inst == nil || inst.TenantID != user.TenantID {
		RespondError(c, "instância não encontrada", http.StatusNotFound)
		return
	}

	fields := map[string]any{}
	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if status != models.INSTANCE_STATUS_ACTIVE && status != models.INSTANCE_STATUS_INACTIVE {
			RespondError(c, "status inválido", http.StatusBadRequest)
			return
		}
		fields["status"] = status
	}
	if inst.Provider == models.PROVIDER_CLOUD {
		if v := strings.TrimSpace(req.PhoneNumberID); v != "" {
			fields["phone_number_id"] = v
		}
		if v := strings.TrimSpace(req.AccessToken); v != "" {
			fields["access_token"] = v
		}
		if v := strings.TrimSpace(req.ApiVersion); v != "" {
			fields["api_version"] = v
		}
	}
	if len(fields) == 0 {
		RespondError(c, "nada para atualizar", http.StatusBadRequest)
		return
	}

	if err := store.DB.Model(&models.WhatsAppInstance{}).Where("id = ?", inst.ID).Updates(fields).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, true)
}
