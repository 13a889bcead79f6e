package workers

import (
	"context"
	"fmt"

	"backoffice/metrics"
	"backoffice/models"
	"backoffice/tools"

	"github.com/rs/zerolog/log"
)

const reasonNoChannel = "no connected channel available"

// DeliveryError é a falha final de uma entrega, já classificada.
type DeliveryError struct {
	Kind   tools.FailureKind
	Reason string
}

func (e *DeliveryError) Error() string {
	return e.Reason
}

func (e *DeliveryError) Permanent() bool {
	return e.Kind == tools.FailurePermanent
}

// FallbackEngine tenta os canais de uma mensagem em ordem, um de cada vez.
type FallbackEngine struct {
	Instances InstanceStore
	Messages  MessageStore
	Sender    tools.Sender
}

// candidateInstanceIDs: primária primeiro, depois fallbacks sem repetir.
func candidateInstanceIDs(msg models.ScheduledMessage) []string {
	seen := map[string]bool{}
	var out []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	if msg.WhatsappInstanceID != nil {
		add(*msg.WhatsappInstanceID)
	}
	for _, id := range msg.FallbackInstanceIDs {
		add(id)
	}
	return out
}

func (e *FallbackEngine) candidates(ctx context.Context, msg models.ScheduledMessage) ([]string, error) {
	ids := candidateInstanceIDs(msg)
	if len(ids) > 0 {
		return ids, nil
	}
	connected, err := e.Instances.ConnectedInstances(ctx, msg.TenantID)
	if err != nil {
		return nil, err
	}
	for _, inst := range connected {
		ids = append(ids, inst.ID)
	}
	return ids, nil
}

// Deliver envia msg para phone. Em caso de sucesso grava o índice e a nova
// instância primária na mensagem e devolve a instância usada.
func (e *FallbackEngine) Deliver(ctx context.Context, msg *models.ScheduledMessage, phone string) (*models.WhatsAppInstance, error) {
	ids, err := e.candidates(ctx, *msg)
	if err != nil {
		return nil, &DeliveryError{Kind: tools.FailureTransient, Reason: "falha ao listar canais: " + err.Error()}
	}
	if len(ids) == 0 {
		return nil, &DeliveryError{Kind: tools.FailurePermanent, Reason: reasonNoChannel}
	}

	start := msg.CurrentInstanceIndex
	if start > len(ids)-1 {
		start = len(ids) - 1
	}
	if start < 0 {
		start = 0
	}

	lastReason := ""
	for i := start; i < len(ids); i++ {
		inst, err := e.Instances.GetInstance(ctx, ids[i])
		if err != nil {
			log.Warn().Err(err).Str("message_id", msg.ID).Str("instance_id", ids[i]).Msg("fallback: instance lookup failed")
			metrics.ChannelAttempts.WithLabelValues("skipped").Inc()
			continue
		}
		if inst == nil || !inst.Eligible() {
			log.Debug().Str("message_id", msg.ID).Str("instance_id", ids[i]).Msg("fallback: instance not eligible, skipping")
			metrics.ChannelAttempts.WithLabelValues("skipped").Inc()
			continue
		}

		sendErr := e.send(ctx, *inst, phone, *msg)
		if sendErr == nil {
			metrics.ChannelAttempts.WithLabelValues("success").Inc()
			instanceID := inst.ID
			if err := e.Messages.UpdateScheduledMessage(ctx, msg.ID, map[string]any{
				"current_instance_index": i,
				"whatsapp_instance_id":   instanceID,
			}); err != nil {
				log.Error().Err(err).Str("message_id", msg.ID).Msg("fallback: failed to persist channel progress")
			}
			msg.CurrentInstanceIndex = i
			msg.WhatsappInstanceID = &instanceID
			return inst, nil
		}

		if tools.IsPermanent(sendErr) {
			metrics.ChannelAttempts.WithLabelValues("permanent").Inc()
			return nil, &DeliveryError{Kind: tools.FailurePermanent, Reason: sendErr.Error()}
		}

		metrics.ChannelAttempts.WithLabelValues("transient").Inc()
		lastReason = sendErr.Error()
		log.Warn().Err(sendErr).Str("message_id", msg.ID).Str("instance", inst.InstanceName).Int("index", i).Msg("fallback: channel failed, trying next")
	}

	reason := fmt.Sprintf("all %d channels failed", len(ids))
	if lastReason != "" {
		reason += " (last: " + lastReason + ")"
	}
	return nil, &DeliveryError{Kind: tools.FailureTransient, Reason: reason}
}

func (e *FallbackEngine) send(ctx context.Context, inst models.WhatsAppInstance, phone string, msg models.ScheduledMessage) error {
	if msg.HasMedia() {
		return e.Sender.SendMedia(ctx, inst, phone, tools.Media{
			Type:     msg.MediaType,
			URL:      msg.MediaURL,
			Filename: msg.MediaFilename,
			Caption:  msg.Message,
		})
	}
	return e.Sender.SendText(ctx, inst, phone, msg.Message)
}
