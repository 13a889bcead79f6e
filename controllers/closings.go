package controllers

import (
	"context"
	"net/http"

	"backoffice/models"
	"backoffice/sales"

	"github.com/gin-gonic/gin"
)

type createClosingReq struct {
	SaleIDs []string `json:"sale_ids"`
}

// GET /api/pickup-closings/available-sales
func (h *Handlers) AvailablePickupSales(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	store, ok := storeInstance(c)
	if !ok {
		return
	}
	list, err := h.SalesService(store).AvailablePickupSales(c.Request.Context(), user.TenantID)
	if err != nil {
		respondSalesError(c, err)
		return
	}
	if list == nil {
		list = []models.Sale{}
	}
	RespondSuccess(c, gin.H{"sales": list})
}

// POST /api/pickup-closings
func (h *Handlers) CreatePickupClosing(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req createClosingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	store, ok := storeInstance(c)
	if !ok {
		return
	}
	closing, err := h.SalesService(store).CreatePickupClosing(c.Request.Context(), user.TenantID, user.ID, req.SaleIDs)
	if err != nil {
		respondSalesError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "closing": closing})
}

// POST /api/pickup-closings/:id/confirm-auxiliar
func (h *Handlers) ConfirmClosingAuxiliar(c *gin.Context) {
	h.confirmClosing(c, (*sales.Service).ConfirmAuxiliar)
}

// POST /api/pickup-closings/:id/confirm-final
func (h *Handlers) ConfirmClosingFinal(c *gin.Context) {
	h.confirmClosing(c, (*sales.Service).ConfirmFinal)
}

type confirmFunc func(s *sales.Service, ctx context.Context, closingID string, actor string) (*models.PickupClosing, error)

func (h *Handlers) confirmClosing(c *gin.Context, confirm confirmFunc) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	store, ok := storeInstance(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	svc := h.SalesService(store)

	existing, err := store.GetClosing(ctx, id)
	if err != nil {
		respondSalesError(c, err)
		return
	}
	if existing == nil || existing.TenantID != user.TenantID {
		respondSalesError(c, sales.ErrClosingNotFound)
		return
	}

	closing, err := confirm(svc, ctx, id, user.ID)
	if err != nil {
		respondSalesError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"success": true, "closing": closing})
}
