package models

import (
	"errors"
	"time"
)

/************************************************
/**** MARK: CHECKPOINT TYPES ****/
/************************************************/
const CHECKPOINT_PRINTED = "printed"
const CHECKPOINT_PENDING_EXPEDITION = "pending_expedition"
const CHECKPOINT_DISPATCHED = "dispatched"
const CHECKPOINT_DELIVERED = "delivered"
const CHECKPOINT_PAYMENT_CONFIRMED = "payment_confirmed"

const CHECKPOINT_ACTION_COMPLETED = "completed"
const CHECKPOINT_ACTION_UNCOMPLETED = "uncompleted"

// CheckpointOrder is the canonical fulfillment order.
var CheckpointOrder = []string{
	CHECKPOINT_PRINTED,
	CHECKPOINT_PENDING_EXPEDITION,
	CHECKPOINT_DISPATCHED,
	CHECKPOINT_DELIVERED,
	CHECKPOINT_PAYMENT_CONFIRMED,
}

func IsCheckpointType(t string) bool {
	for _, c := range CheckpointOrder {
		if c == t {
			return true
		}
	}
	return false
}

// SaleCheckpoint: no máximo uma linha por (sale_id, checkpoint_type).
// "Desmarcar" limpa completed_at, não apaga a linha.
type SaleCheckpoint struct {
	ID             string     `gorm:"primary_key;type:varchar(36)" json:"id"`
	SaleID         string     `gorm:"column:sale_id;not null;unique_index:idx_sale_checkpoint" json:"sale_id"`
	TenantID       string     `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	CheckpointType string     `gorm:"column:checkpoint_type;not null;unique_index:idx_sale_checkpoint" json:"checkpoint_type"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completed_at"`
	CompletedBy    *string    `gorm:"column:completed_by" json:"completed_by"`
	Notes          *string    `gorm:"type:text" json:"notes"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

func NewSaleCheckpoint(sale Sale, checkpointType string) (*SaleCheckpoint, error) {
	if !IsCheckpointType(checkpointType) {
		return nil, errors.New("checkpoint_type inválido")
	}
	return &SaleCheckpoint{
		ID:             NewID(),
		SaleID:         sale.ID,
		TenantID:       sale.TenantID,
		CheckpointType: checkpointType,
	}, nil
}

func (c SaleCheckpoint) Completed() bool {
	return c.CompletedAt != nil
}

// CheckpointHistory é append-only: nunca atualizado nem apagado.
type CheckpointHistory struct {
	ID             string     `gorm:"primary_key;type:varchar(36)" json:"id"`
	CheckpointID   string     `gorm:"column:checkpoint_id;not null;index" json:"checkpoint_id"`
	SaleID         string     `gorm:"column:sale_id;not null;index" json:"sale_id"`
	CheckpointType string     `gorm:"column:checkpoint_type;not null" json:"checkpoint_type"`
	Action         string     `gorm:"not null" json:"action"`
	Actor          string     `gorm:"not null" json:"actor"`
	Notes          *string    `gorm:"type:text" json:"notes"`
	CreatedAt      *time.Time `json:"created_at"`
}

func (CheckpointHistory) TableName() string {
	return "sale_checkpoint_history"
}
