package workers

import (
	"context"
	"strconv"
	"time"

	"backoffice/metrics"
	"backoffice/models"
	"backoffice/tools"

	"github.com/rs/zerolog/log"
)

// processSatisfactionReplies roda antes do auto-close, para todos os tenants.
// Conversas sem nota reconhecível continuam aguardando.
func (s *AutoCloseSweeper) processSatisfactionReplies(ctx context.Context) (int, error) {
	awaiting, err := s.Conversations.AwaitingSatisfaction(ctx)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, conv := range awaiting {
		var since time.Time
		if conv.SatisfactionSentAt != nil {
			since = *conv.SatisfactionSentAt
		}
		reply, err := s.Conversations.LatestInboundSince(ctx, conv.ID, since)
		if err != nil {
			log.Error().Err(err).Str("conversation_id", conv.ID).Msg("satisfaction: failed to load reply")
			continue
		}
		if reply == nil {
			continue
		}
		rating := tools.ExtractRating(reply.Body)
		if rating == nil {
			continue
		}

		if err := s.recordRating(ctx, conv, *rating, reply.Body); err != nil {
			log.Error().Err(err).Str("conversation_id", conv.ID).Msg("satisfaction: failed to save rating")
			continue
		}
		if err := s.Conversations.UpdateConversation(ctx, conv.ID, map[string]any{
			"awaiting_satisfaction": false,
			"status":                models.CONVERSATION_STATUS_CLOSED,
		}); err != nil {
			log.Error().Err(err).Str("conversation_id", conv.ID).Msg("satisfaction: failed to update conversation")
			continue
		}

		detractor := *rating <= models.DETRACTOR_MAX_RATING
		metrics.RatingsExtracted.WithLabelValues(strconv.FormatBool(detractor)).Inc()
		log.Info().Str("conversation_id", conv.ID).Int("rating", *rating).Bool("detractor", detractor).Msg("satisfaction: rating recorded")
		processed++
	}
	return processed, nil
}

// recordRating atualiza a linha pendente mais recente ou cria uma nova.
func (s *AutoCloseSweeper) recordRating(ctx context.Context, conv models.Conversation, rating int, raw string) error {
	now := s.now()
	pending, err := s.Conversations.PendingRating(ctx, conv.ID)
	if err != nil {
		return err
	}
	if pending != nil {
		pending.ApplyResponse(rating, raw, now)
		return s.Conversations.UpdateRating(ctx, pending)
	}
	row := models.SatisfactionRating{
		ID:             models.NewID(),
		ConversationID: conv.ID,
		TenantID:       conv.TenantID,
	}
	row.ApplyResponse(rating, raw, now)
	return s.Conversations.CreateRating(ctx, &row)
}
