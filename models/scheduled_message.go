package models

import (
	"errors"
	"strings"
	"time"
)

/************************************************
/**** MARK: SCHEDULED MESSAGE STATUS ****/
/************************************************/
const SCHEDULED_STATUS_PENDING = "pending"
const SCHEDULED_STATUS_SENT = "sent"
const SCHEDULED_STATUS_FAILED = "failed_other"

const DEFAULT_MAX_ATTEMPTS = 3

// ScheduledMessage é uma mensagem de WhatsApp agendada para um lead.
// Só o sweeper altera attempt_count, current_instance_index, status e scheduled_at.
type ScheduledMessage struct {
	ID                   string     `gorm:"primary_key;type:varchar(36)" json:"id"`
	TenantID             string     `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	LeadID               string     `gorm:"column:lead_id;not null;index" json:"lead_id"`
	WhatsappInstanceID   *string    `gorm:"column:whatsapp_instance_id" json:"whatsapp_instance_id"`
	FallbackInstanceIDs  StringList `gorm:"column:fallback_instance_ids;type:text" json:"fallback_instance_ids"`
	AttemptCount         int        `gorm:"column:attempt_count;not null;default:0" json:"attempt_count"`
	CurrentInstanceIndex int        `gorm:"column:current_instance_index;not null;default:0" json:"current_instance_index"`
	MaxAttempts          int        `gorm:"column:max_attempts;not null;default:3" json:"max_attempts"`
	Message              string     `gorm:"type:text" json:"message"`
	ScheduledAt          time.Time  `gorm:"column:scheduled_at;not null;index" json:"scheduled_at"`
	Status               string     `gorm:"not null;default:'pending';index" json:"status"`
	FailureReason        string     `gorm:"column:failure_reason;type:text" json:"failure_reason"`
	SentAt               *time.Time `gorm:"column:sent_at" json:"sent_at"`
	MediaType            string     `gorm:"column:media_type" json:"media_type"`
	MediaURL             string     `gorm:"column:media_url;type:text" json:"media_url"`
	MediaFilename        string     `gorm:"column:media_filename" json:"media_filename"`
	CreatedAt            *time.Time `json:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at"`
	DeletedAt            *time.Time `gorm:"index" json:"deleted_at"`
}

func NewScheduledMessage(tenantID, leadID, message string, scheduledAt time.Time) (*ScheduledMessage, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, errors.New("tenant_id é obrigatório")
	}
	if strings.TrimSpace(leadID) == "" {
		return nil, errors.New("lead_id é obrigatório")
	}
	if strings.TrimSpace(message) == "" {
		return nil, errors.New("mensagem vazia")
	}
	if scheduledAt.IsZero() {
		return nil, errors.New("scheduled_at é obrigatório")
	}
	return &ScheduledMessage{
		ID:          NewID(),
		TenantID:    tenantID,
		LeadID:      leadID,
		Message:     message,
		ScheduledAt: scheduledAt.UTC(),
		Status:      SCHEDULED_STATUS_PENDING,
		MaxAttempts: DEFAULT_MAX_ATTEMPTS,
	}, nil
}

// HasMedia reports whether the message carries a media attachment.
func (m ScheduledMessage) HasMedia() bool {
	return strings.TrimSpace(m.MediaURL) != ""
}

// Ceiling returns max_attempts, falling back to the default for rows
// created without one.
func (m ScheduledMessage) Ceiling() int {
	if m.MaxAttempts <= 0 {
		return DEFAULT_MAX_ATTEMPTS
	}
	return m.MaxAttempts
}
