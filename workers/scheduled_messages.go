package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backoffice/metrics"
	"backoffice/models"
	"backoffice/tools"

	"github.com/rs/zerolog/log"
)

// RetryDelay é o intervalo fixo de reagendamento após falha transitória.
const RetryDelay = 5 * time.Minute

const DefaultBatchSize = 50

const reasonExceededAttempts = "exceeded max attempts"

type SweepSummary struct {
	Processed   int `json:"processed"`
	Sent        int `json:"sent"`
	Failed      int `json:"failed"`
	Rescheduled int `json:"rescheduled"`
}

// MessageSweeper processa as mensagens agendadas vencidas, uma por vez.
type MessageSweeper struct {
	Messages  MessageStore
	Leads     LeadStore
	Engine    *FallbackEngine
	Recorder  DeliveryRecorder
	BatchSize int
	Now       func() time.Time
}

func (s *MessageSweeper) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Run só devolve erro quando o transporte não está configurado ou o lote não
// pôde ser lido; nesses casos nenhuma mensagem é tocada. Falhas por mensagem
// viram contadores.
func (s *MessageSweeper) Run(ctx context.Context) (SweepSummary, error) {
	var summary SweepSummary
	started := time.Now()
	defer func() {
		metrics.SweepDuration.WithLabelValues("scheduled_messages").Observe(time.Since(started).Seconds())
	}()

	if err := tools.Ready(s.Engine.Sender); err != nil {
		return summary, fmt.Errorf("transporte indisponível: %w", err)
	}

	limit := s.BatchSize
	if limit <= 0 {
		limit = DefaultBatchSize
	}
	due, err := s.Messages.DueScheduledMessages(ctx, s.now(), limit)
	if err != nil {
		return summary, fmt.Errorf("buscar mensagens agendadas: %w", err)
	}

	for i := range due {
		if ctx.Err() != nil {
			log.Warn().Int("remaining", len(due)-i).Msg("scheduled messages: sweep cancelled")
			break
		}
		summary.Processed++
		switch s.process(ctx, &due[i]) {
		case models.SCHEDULED_STATUS_SENT:
			summary.Sent++
		case models.SCHEDULED_STATUS_FAILED:
			summary.Failed++
		case models.SCHEDULED_STATUS_PENDING:
			summary.Rescheduled++
		}
	}

	log.Info().
		Int("processed", summary.Processed).
		Int("sent", summary.Sent).
		Int("failed", summary.Failed).
		Int("rescheduled", summary.Rescheduled).
		Msg("scheduled messages: sweep done")
	return summary, nil
}

// process devolve o status em que a mensagem ficou, ou "" se nada foi gravado.
func (s *MessageSweeper) process(ctx context.Context, msg *models.ScheduledMessage) string {
	attempt := msg.AttemptCount + 1
	if err := s.Messages.UpdateScheduledMessage(ctx, msg.ID, map[string]any{"attempt_count": attempt}); err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("scheduled messages: failed to persist attempt")
		return ""
	}
	msg.AttemptCount = attempt

	if attempt > msg.Ceiling() {
		return s.fail(ctx, msg, reasonExceededAttempts)
	}

	phone, reason := s.resolvePhone(ctx, *msg)
	if reason != "" {
		return s.fail(ctx, msg, reason)
	}

	inst, err := s.Engine.Deliver(ctx, msg, phone)
	if err == nil {
		return s.markSent(ctx, msg, *inst)
	}

	var derr *DeliveryError
	permanent := errors.As(err, &derr) && derr.Permanent()
	if permanent || attempt >= msg.Ceiling() {
		return s.fail(ctx, msg, err.Error())
	}
	return s.reschedule(ctx, msg, err.Error())
}

func (s *MessageSweeper) resolvePhone(ctx context.Context, msg models.ScheduledMessage) (string, string) {
	lead, err := s.Leads.GetLead(ctx, msg.LeadID)
	if err != nil {
		return "", "falha ao carregar lead: " + err.Error()
	}
	if lead == nil {
		return "", "lead não encontrado"
	}
	phone, err := tools.NormalizeWhatsAppTo(lead.Phone)
	if errors.Is(err, tools.ErrEmptyPhone) {
		return "", "lead sem telefone"
	}
	if err != nil {
		return "", err.Error()
	}
	return phone, ""
}

func (s *MessageSweeper) markSent(ctx context.Context, msg *models.ScheduledMessage, inst models.WhatsAppInstance) string {
	now := s.now()
	if err := s.Messages.UpdateScheduledMessage(ctx, msg.ID, map[string]any{
		"status":               models.SCHEDULED_STATUS_SENT,
		"sent_at":              now,
		"whatsapp_instance_id": inst.ID,
		"failure_reason":       "",
	}); err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("scheduled messages: failed to mark sent")
	}
	msg.Status = models.SCHEDULED_STATUS_SENT
	msg.SentAt = &now
	metrics.ScheduledMessagesProcessed.WithLabelValues("sent").Inc()
	log.Info().Str("message_id", msg.ID).Str("instance", inst.InstanceName).Int("attempt", msg.AttemptCount).Msg("scheduled messages: sent")

	if s.Recorder != nil {
		if err := s.Recorder.RecordDelivery(ctx, *msg, inst.ID, now); err != nil {
			log.Warn().Err(err).Str("message_id", msg.ID).Msg("scheduled messages: failed to record delivery")
		}
	}
	return models.SCHEDULED_STATUS_SENT
}

func (s *MessageSweeper) fail(ctx context.Context, msg *models.ScheduledMessage, reason string) string {
	if err := s.Messages.UpdateScheduledMessage(ctx, msg.ID, map[string]any{
		"status":         models.SCHEDULED_STATUS_FAILED,
		"failure_reason": reason,
	}); err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("scheduled messages: failed to mark failed")
	}
	msg.Status = models.SCHEDULED_STATUS_FAILED
	msg.FailureReason = reason
	metrics.ScheduledMessagesProcessed.WithLabelValues("failed").Inc()
	log.Warn().Str("message_id", msg.ID).Int("attempt", msg.AttemptCount).Str("reason", reason).Msg("scheduled messages: failed")
	return models.SCHEDULED_STATUS_FAILED
}

func (s *MessageSweeper) reschedule(ctx context.Context, msg *models.ScheduledMessage, reason string) string {
	next := s.now().Add(RetryDelay)
	if err := s.Messages.UpdateScheduledMessage(ctx, msg.ID, map[string]any{
		"scheduled_at":   next,
		"failure_reason": reason,
	}); err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("scheduled messages: failed to reschedule")
	}
	msg.ScheduledAt = next
	msg.FailureReason = reason
	metrics.ScheduledMessagesProcessed.WithLabelValues("rescheduled").Inc()
	log.Info().Str("message_id", msg.ID).Int("attempt", msg.AttemptCount).Time("next", next).Str("reason", reason).Msg("scheduled messages: rescheduled")
	return models.SCHEDULED_STATUS_PENDING
}
