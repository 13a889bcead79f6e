package router

import (
	"net/http"

	"backoffice/config"
	"backoffice/controllers"
	"backoffice/middleware"
	"backoffice/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Initialize wires all routes and middlewares.
// Rotas públicas, cron (segredo), autenticadas (token) e validadas (Authorizer).
func Initialize(r *gin.Engine, cfg config.Configuration, h *controllers.Handlers) {
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Webhooks (token próprio)
	api.POST("/webhook/evolution", Logger(), h.EvolutionWebhook)
	api.GET("/webhook/cloud", Logger(), h.CloudWebhookVerify)
	api.POST("/webhook/cloud", Logger(), h.CloudWebhookUpdate)

	// Cron jobs
	jobs := api.Group("/jobs")
	jobs.Use(CronAuthorizer(cfg.Security.CronSecret, cfg.Security.AllowAnonymousCron))
	jobs.POST("/process-scheduled-messages", Logger(), h.ProcessScheduledMessages)
	jobs.POST("/auto-close-conversations", Logger(), h.AutoCloseConversations)

	// Public (no auth)
	api.POST("/login", Logger(), h.Login)

	// Authenticated routes (token required)
	auth := api.Group("")
	auth.Use(h.AuthRequired())

	// Validated routes (token + active user)
	validated := auth.Group("")
	validated.Use(Authorizer())

	validated.GET("/me", Logger(), controllers.Me)

	// Checkpoints
	validated.GET("/sales/:id/checkpoints", Logger(), h.ListCheckpoints)
	validated.POST("/sales/:id/checkpoints/:type", Logger(), h.ToggleCheckpoint)
	validated.POST("/sales/:id/reconcile", Logger(), h.ReconcileSale)

	// Fechamento de retirada
	validated.GET("/pickup-closings/available-sales", Logger(), h.AvailablePickupSales)
	validated.POST("/pickup-closings", Logger(), h.CreatePickupClosing)
	validated.POST("/pickup-closings/:id/confirm-auxiliar", Logger(), RoleRequired(models.USER_ROLE_AUXILIAR, models.USER_ROLE_MANAGER), h.ConfirmClosingAuxiliar)
	validated.POST("/pickup-closings/:id/confirm-final", Logger(), RoleRequired(models.USER_ROLE_MANAGER), h.ConfirmClosingFinal)

	// Mensagens agendadas
	validated.POST("/scheduled-messages", Logger(), h.CreateScheduledMessage)
	validated.GET("/scheduled-messages/sent", Logger(), h.RecentDeliveries)

	// Admin routes
	admin := validated.Group("")
	admin.Use(Adminizer())

	admin.POST("/users", Logger(), controllers.CreateUser)
	admin.GET("/whatsapp-instances", Logger(), controllers.ListWhatsAppInstances)
	admin.POST("/whatsapp-instances", Logger(), controllers.CreateWhatsAppInstance)
	admin.PUT("/whatsapp-instances/:id", Logger(), controllers.UpdateWhatsAppInstance)

	log.Info().Msg("router: routes initialized")
}
