package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// POST /api/jobs/process-scheduled-messages (cron)
func (h *Handlers) ProcessScheduledMessages(c *gin.Context) {
	store, ok := storeInstance(c)
	if !ok {
		return
	}
	summary, err := h.MessageSweeper(store).Run(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("jobs: scheduled messages sweep failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	RespondSuccess(c, gin.H{
		"success":     true,
		"processed":   summary.Processed,
		"sent":        summary.Sent,
		"failed":      summary.Failed,
		"rescheduled": summary.Rescheduled,
	})
}

// POST /api/jobs/auto-close-conversations (cron)
func (h *Handlers) AutoCloseConversations(c *gin.Context) {
	store, ok := storeInstance(c)
	if !ok {
		return
	}
	summary, err := h.AutoCloseSweeper(store).Run(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("jobs: auto-close sweep failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	RespondSuccess(c, gin.H{
		"success":          true,
		"closed":           summary.Closed,
		"surveysSent":      summary.SurveysSent,
		"ratingsProcessed": summary.RatingsProcessed,
		"timestamp":        summary.Timestamp,
	})
}
