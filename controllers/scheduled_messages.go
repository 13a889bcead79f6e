package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"backoffice/models"

	"github.com/gin-gonic/gin"
)

type createScheduledMessageReq struct {
	LeadID              string    `json:"lead_id"`
	Message             string    `json:"message"`
	ScheduledAt         time.Time `json:"scheduled_at"`
	WhatsappInstanceID  string    `json:"whatsapp_instance_id"`
	FallbackInstanceIDs []string  `json:"fallback_instance_ids"`
	MaxAttempts         int       `json:"max_attempts"`
	MediaType           string    `json:"media_type"`
	MediaURL            string    `json:"media_url"`
	MediaFilename       string    `json:"media_filename"`
}

// POST /api/scheduled-messages
func (h *Handlers) CreateScheduledMessage(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req createScheduledMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	store, ok := storeInstance(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	lead, err := store.GetLead(ctx, req.LeadID)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if lead == nil || lead.TenantID != user.TenantID {
		RespondError(c, "lead não encontrado", http.StatusNotFound)
		return
	}

	msg, err := models.NewScheduledMessage(user.TenantID, lead.ID, req.Message, req.ScheduledAt)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var ids []string
	if id := strings.TrimSpace(req.WhatsappInstanceID); id != "" {
		ids = append(ids, id)
		msg.WhatsappInstanceID = &id
	}
	for _, id := range req.FallbackInstanceIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
			msg.FallbackInstanceIDs = append(msg.FallbackInstanceIDs, id)
		}
	}
	for _, id := range ids {
		inst, err := store.GetInstance(ctx, id)
		if err != nil {
			RespondError(c, err.Error(), http.StatusInternalServerError)
			return
		}
		if inst == nil || inst.TenantID != user.TenantID {
			RespondError(c, "instância "+id+" não encontrada", http.StatusBadRequest)
			return
		}
	}

	if req.MaxAttempts > 0 {
		msg.MaxAttempts = req.MaxAttempts
	}
	msg.MediaType = strings.TrimSpace(req.MediaType)
	msg.MediaURL = strings.TrimSpace(req.MediaURL)
	msg.MediaFilename = strings.TrimSpace(req.MediaFilename)

	if err := store.CreateScheduledMessage(ctx, msg); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": msg})
}

// GET /api/scheduled-messages/sent?page=1&page_size=20
func (h *Handlers) RecentDeliveries(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := h.Deliveries.Recent(c.Request.Context(), user.TenantID, page, pageSize)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"deliveries": items, "total": total, "page": page})
}
