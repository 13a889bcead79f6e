package workers

import (
	"context"
	"time"

	"backoffice/models"
)

// InstanceStore lê o registro de canais. GetInstance devolve nil, nil
// quando a instância não existe mais.
type InstanceStore interface {
	GetInstance(ctx context.Context, id string) (*models.WhatsAppInstance, error)
	// ConnectedInstances: conectadas e ativas, ordem created_at, id.
	ConnectedInstances(ctx context.Context, tenantID string) ([]models.WhatsAppInstance, error)
	ActiveInstances(ctx context.Context, tenantID string) ([]models.WhatsAppInstance, error)
}

type MessageStore interface {
	DueScheduledMessages(ctx context.Context, now time.Time, limit int) ([]models.ScheduledMessage, error)
	UpdateScheduledMessage(ctx context.Context, id string, fields map[string]any) error
}

type LeadStore interface {
	GetLead(ctx context.Context, id string) (*models.Lead, error)
}

type ConversationStore interface {
	AwaitingSatisfaction(ctx context.Context) ([]models.Conversation, error)
	// LatestInboundSince devolve nil, nil quando não há resposta.
	LatestInboundSince(ctx context.Context, conversationID string, since time.Time) (*models.ConversationMessage, error)
	IdleConversations(ctx context.Context, tenantID string, instanceID string, statuses []string, before time.Time) ([]models.Conversation, error)
	UpdateConversation(ctx context.Context, id string, fields map[string]any) error
	// PendingRating é a linha mais recente com rating nulo, ou nil.
	PendingRating(ctx context.Context, conversationID string) (*models.SatisfactionRating, error)
	CreateRating(ctx context.Context, rating *models.SatisfactionRating) error
	UpdateRating(ctx context.Context, rating *models.SatisfactionRating) error
}

type AutoCloseConfigStore interface {
	EnabledAutoCloseTenants(ctx context.Context) ([]string, error)
	AutoCloseConfig(ctx context.Context, tenantID string) (*models.AutoCloseConfig, error)
}

// DeliveryRecorder guarda entregas recentes fora do banco. Opcional.
type DeliveryRecorder interface {
	RecordDelivery(ctx context.Context, msg models.ScheduledMessage, instanceID string, at time.Time) error
}
