package controllers

import (
	"errors"
	"net/http"

	"backoffice/models"
	"backoffice/sales"

	"github.com/gin-gonic/gin"
)

type toggleCheckpointReq struct {
	Completed *bool   `json:"completed"`
	Notes     *string `json:"notes"`
}

// respondSalesError traduz os erros de sales para status HTTP.
func respondSalesError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sales.ErrSaleNotFound), errors.Is(err, sales.ErrClosingNotFound):
		RespondError(c, err.Error(), http.StatusNotFound)
	case errors.Is(err, sales.ErrTerminalSale), errors.Is(err, sales.ErrInvalidClosingTransition):
		RespondError(c, err.Error(), http.StatusConflict)
	case errors.Is(err, sales.ErrInvalidCheckpointType), errors.Is(err, sales.ErrEmptyClosing):
		RespondError(c, err.Error(), http.StatusBadRequest)
	default:
		RespondError(c, err.Error(), http.StatusInternalServerError)
	}
}

// loadTenantSale garante que a venda existe e é do tenant do usuário.
func loadTenantSale(c *gin.Context, svc *sales.Service, user models.User) (string, bool) {
	id, ok := ParamID(c, "id")
	if !ok {
		return "", false
	}
	sale, err := svc.Store.GetSale(c.Request.Context(), id)
	if err != nil {
		respondSalesError(c, err)
		return "", false
	}
	if sale == nil || sale.TenantID != user.TenantID {
		respondSalesError(c, sales.ErrSaleNotFound)
		return "", false
	}
	return id, true
}

// POST /api/sales/:id/checkpoints/:type
func (h *Handlers) ToggleCheckpoint(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req toggleCheckpointReq
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Completed == nil {
		RespondError(c, "completed é obrigatório", http.StatusBadRequest)
		return
	}

	store, ok := storeInstance(c)
	if !ok {
		return
	}
	svc := h.SalesService(store)
	saleID, ok := loadTenantSale(c, svc, user)
	if !ok {
		return
	}

	sale, err := svc.ToggleCheckpoint(c.Request.Context(), sales.ToggleInput{
		SaleID:         saleID,
		CheckpointType: c.Param("type"),
		Completed:      *req.Completed,
		Notes:          req.Notes,
		Actor:          user.ID,
	})
	if err != nil {
		respondSalesError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"success": true, "status": sale.Status})
}

// GET /api/sales/:id/checkpoints
func (h *Handlers) ListCheckpoints(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	store, ok := storeInstance(c)
	if !ok {
		return
	}
	svc := h.SalesService(store)
	saleID, ok := loadTenantSale(c, svc, user)
	if !ok {
		return
	}
	view, err := svc.ListCheckpoints(c.Request.Context(), saleID)
	if err != nil {
		respondSalesError(c, err)
		return
	}
	RespondSuccess(c, view)
}

// POST /api/sales/:id/reconcile
func (h *Handlers) ReconcileSale(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	store, ok := storeInstance(c)
	if !ok {
		return
	}
	svc := h.SalesService(store)
	saleID, ok := loadTenantSale(c, svc, user)
	if !ok {
		return
	}
	sale, err := svc.Reconcile(c.Request.Context(), saleID)
	if err != nil {
		respondSalesError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"success": true, "sale": sale})
}
