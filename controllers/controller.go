package controllers

import (
	"net/http"
	"time"

	"backoffice/cache"
	"backoffice/config"
	dbpkg "backoffice/db"
	"backoffice/sales"
	"backoffice/tools"
	"backoffice/workers"

	"github.com/gin-gonic/gin"
)

func RespondError(c *gin.Context, msg string, code int) {
	c.JSON(code, gin.H{"error": msg})
}

func RespondSuccess(c *gin.Context, payload any) {
	c.JSON(200, payload)
}

// Handlers carrega o que os handlers precisam além do banco, que continua
// vindo do contexto (db.SetDBtoContext).
type Handlers struct {
	Config     config.Configuration
	Transport  tools.Sender
	Deliveries *cache.DeliveryCache
	Now        func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *Handlers) MessageSweeper(store *dbpkg.Store) *workers.MessageSweeper {
	return &workers.MessageSweeper{
		Messages: store,
		Leads:    store,
		Engine: &workers.FallbackEngine{
			Instances: store,
			Messages:  store,
			Sender:    h.Transport,
		},
		Recorder:  h.Deliveries,
		BatchSize: h.Config.Sweeper.BatchSize,
		Now:       h.Now,
	}
}

func (h *Handlers) AutoCloseSweeper(store *dbpkg.Store) *workers.AutoCloseSweeper {
	return &workers.AutoCloseSweeper{
		Conversations: store,
		Configs:       store,
		Instances:     store,
		Sender:        h.Transport,
		OffsetHours:   h.Config.OffsetHours(),
		Now:           h.Now,
	}
}

func (h *Handlers) SalesService(store *dbpkg.Store) *sales.Service {
	return &sales.Service{Store: store, Now: h.Now}
}

func storeInstance(c *gin.Context) (*dbpkg.Store, bool) {
	store := dbpkg.StoreInstance(c)
	if store == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return nil, false
	}
	return store, true
}
