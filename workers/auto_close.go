package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backoffice/metrics"
	"backoffice/models"
	"backoffice/tools"

	"github.com/rs/zerolog/log"
)

type AutoCloseSummary struct {
	Closed           int       `json:"closed"`
	SurveysSent      int       `json:"surveysSent"`
	RatingsProcessed int       `json:"ratingsProcessed"`
	Timestamp        time.Time `json:"timestamp"`
}

// AutoCloseSweeper encerra conversas ociosas por tenant e processa as
// respostas da pesquisa de satisfação.
type AutoCloseSweeper struct {
	Conversations ConversationStore
	Configs       AutoCloseConfigStore
	Instances     InstanceStore
	Sender        tools.Sender
	OffsetHours   int
	Now           func() time.Time
}

func (s *AutoCloseSweeper) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AutoCloseSweeper) Run(ctx context.Context) (AutoCloseSummary, error) {
	summary := AutoCloseSummary{Timestamp: s.now()}
	started := time.Now()
	defer func() {
		metrics.SweepDuration.WithLabelValues("auto_close").Observe(time.Since(started).Seconds())
	}()

	if err := tools.Ready(s.Sender); err != nil {
		return summary, fmt.Errorf("transporte indisponível: %w", err)
	}

	ratings, err := s.processSatisfactionReplies(ctx)
	if err != nil {
		return summary, fmt.Errorf("buscar conversas aguardando avaliação: %w", err)
	}
	summary.RatingsProcessed = ratings

	tenants, err := s.Configs.EnabledAutoCloseTenants(ctx)
	if err != nil {
		return summary, fmt.Errorf("buscar configurações de auto-close: %w", err)
	}

	for _, tenantID := range tenants {
		if ctx.Err() != nil {
			break
		}
		// Snapshot fresco a cada tenant.
		cfg, err := s.Configs.AutoCloseConfig(ctx, tenantID)
		if err != nil {
			log.Error().Err(err).Str("tenant_id", tenantID).Msg("auto-close: failed to load config")
			continue
		}
		if cfg == nil || !cfg.Enabled {
			continue
		}
		closed, surveys := s.closeTenant(ctx, *cfg)
		summary.Closed += closed
		summary.SurveysSent += surveys
	}

	log.Info().
		Int("closed", summary.Closed).
		Int("surveys_sent", summary.SurveysSent).
		Int("ratings_processed", summary.RatingsProcessed).
		Msg("auto-close: sweep done")
	return summary, nil
}

func (s *AutoCloseSweeper) closeTenant(ctx context.Context, cfg models.AutoCloseConfig) (closed int, surveys int) {
	now := s.now()
	if cfg.BusinessHoursOnly {
		open, err := cfg.WithinBusinessHours(now, s.OffsetHours)
		if err != nil {
			log.Error().Err(err).Str("tenant_id", cfg.TenantID).Msg("auto-close: invalid business hours")
			return 0, 0
		}
		if !open {
			log.Debug().Str("tenant_id", cfg.TenantID).Msg("auto-close: outside business hours, skipping")
			return 0, 0
		}
	}

	instances, err := s.Instances.ActiveInstances(ctx, cfg.TenantID)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", cfg.TenantID).Msg("auto-close: failed to load instances")
		return 0, 0
	}

	for _, inst := range instances {
		for _, conv := range s.idleConversations(ctx, cfg, inst, now) {
			ok, sent := s.closeConversation(ctx, cfg, inst, conv, now)
			if !ok {
				continue
			}
			closed++
			if sent {
				surveys++
			}
		}
	}
	return closed, surveys
}

// idleConversations aplica o corte do bot para with_bot e o corte de
// atendimento humano para pending/assigned. Limite <= 0 desliga o corte.
func (s *AutoCloseSweeper) idleConversations(ctx context.Context, cfg models.AutoCloseConfig, inst models.WhatsAppInstance, now time.Time) []models.Conversation {
	var out []models.Conversation
	groups := []struct {
		statuses []string
		minutes  int
	}{
		{[]string{models.CONVERSATION_STATUS_WITH_BOT}, cfg.BotIdleMinutes},
		{[]string{models.CONVERSATION_STATUS_PENDING, models.CONVERSATION_STATUS_ASSIGNED}, cfg.AssignedIdleMinutes},
	}
	for _, g := range groups {
		if g.minutes <= 0 {
			continue
		}
		cutoff := now.Add(-time.Duration(g.minutes) * time.Minute)
		convs, err := s.Conversations.IdleConversations(ctx, cfg.TenantID, inst.ID, g.statuses, cutoff)
		if err != nil {
			log.Error().Err(err).Str("instance_id", inst.ID).Strs("statuses", g.statuses).Msg("auto-close: failed to load conversations")
			continue
		}
		out = append(out, convs...)
	}
	return out
}

// closeConversation envia a mensagem de encerramento (best effort) e fecha.
// Devolve se o fechamento foi gravado e se a pesquisa foi enviada.
func (s *AutoCloseSweeper) closeConversation(ctx context.Context, cfg models.AutoCloseConfig, inst models.WhatsAppInstance, conv models.Conversation, now time.Time) (closed bool, surveySent bool) {
	withSurvey := cfg.SendsSurvey()
	var parts []string
	if msg := strings.TrimSpace(cfg.ClosingMessage); msg != "" {
		parts = append(parts, msg)
	}
	if withSurvey {
		parts = append(parts, strings.TrimSpace(cfg.SurveyMessage))
	}

	delivered := false
	if len(parts) > 0 {
		phone, err := tools.NormalizeWhatsAppTo(conv.Phone)
		if err != nil {
			log.Warn().Err(err).Str("conversation_id", conv.ID).Msg("auto-close: invalid phone, closing without message")
		} else if err := s.Sender.SendText(ctx, inst, phone, strings.Join(parts, "\n\n")); err != nil {
			log.Warn().Err(err).Str("conversation_id", conv.ID).Str("instance", inst.InstanceName).Msg("auto-close: closing message failed")
		} else {
			delivered = true
		}
	}

	fields := map[string]any{
		"status":                models.CONVERSATION_STATUS_CLOSED,
		"closed_at":             now,
		"awaiting_satisfaction": withSurvey,
		"satisfaction_sent_at":  nil,
	}
	if withSurvey {
		fields["satisfaction_sent_at"] = now
	}
	if err := s.Conversations.UpdateConversation(ctx, conv.ID, fields); err != nil {
		log.Error().Err(err).Str("conversation_id", conv.ID).Msg("auto-close: failed to close conversation")
		return false, false
	}

	rating := models.SatisfactionRating{
		ID:             models.NewID(),
		ConversationID: conv.ID,
		TenantID:       conv.TenantID,
	}
	if err := s.Conversations.CreateRating(ctx, &rating); err != nil {
		log.Error().Err(err).Str("conversation_id", conv.ID).Msg("auto-close: failed to create rating row")
	}

	metrics.ConversationsAutoClosed.Inc()
	surveySent = withSurvey && delivered
	if surveySent {
		metrics.SurveysSent.Inc()
	}
	log.Info().Str("conversation_id", conv.ID).Str("tenant_id", conv.TenantID).Bool("survey", surveySent).Msg("auto-close: conversation closed")
	return true, surveySent
}
