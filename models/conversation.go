package models

import "time"

/************************************************
/**** MARK: CONVERSATION STATUS ****/
/************************************************/
const CONVERSATION_STATUS_PENDING = "pending"
const CONVERSATION_STATUS_ASSIGNED = "assigned"
const CONVERSATION_STATUS_WITH_BOT = "with_bot"
const CONVERSATION_STATUS_CLOSED = "closed"

const MESSAGE_DIRECTION_INBOUND = "inbound"
const MESSAGE_DIRECTION_OUTBOUND = "outbound"

// OpenConversationStatuses are the statuses eligible for auto-close.
var OpenConversationStatuses = []string{
	CONVERSATION_STATUS_PENDING,
	CONVERSATION_STATUS_ASSIGNED,
	CONVERSATION_STATUS_WITH_BOT,
}

type Conversation struct {
	ID                   string     `gorm:"primary_key;type:varchar(36)" json:"id"`
	TenantID             string     `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	InstanceID           string     `gorm:"column:instance_id;not null;index" json:"instance_id"`
	Phone                string     `gorm:"not null;index" json:"phone"`
	Status               string     `gorm:"not null;default:'pending';index" json:"status"`
	LastMessageAt        *time.Time `gorm:"column:last_message_at" json:"last_message_at"`
	AwaitingSatisfaction bool       `gorm:"column:awaiting_satisfaction;not null" json:"awaiting_satisfaction"`
	SatisfactionSentAt   *time.Time `gorm:"column:satisfaction_sent_at" json:"satisfaction_sent_at"`
	ClosedAt             *time.Time `gorm:"column:closed_at" json:"closed_at"`
	CreatedAt            *time.Time `json:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at"`
}

// ConversationMessage é gravada pelo webhook de entrada.
type ConversationMessage struct {
	ID             string     `gorm:"primary_key;type:varchar(36)" json:"id"`
	ConversationID string     `gorm:"column:conversation_id;not null;index" json:"conversation_id"`
	ExternalID     string     `gorm:"column:external_id;default:''" json:"external_id"`
	Direction      string     `gorm:"not null" json:"direction"`
	Body           string     `gorm:"type:text" json:"body"`
	CreatedAt      *time.Time `gorm:"index" json:"created_at"`
}
