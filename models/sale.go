package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

/************************************************
/**** MARK: SALE STATUS ****/
/************************************************/
const SALE_STATUS_DRAFT = "draft"
const SALE_STATUS_PENDING_EXPEDITION = "pending_expedition"
const SALE_STATUS_DISPATCHED = "dispatched"
const SALE_STATUS_DELIVERED = "delivered"
const SALE_STATUS_PAYMENT_CONFIRMED = "payment_confirmed"
const SALE_STATUS_CLOSED = "closed"
const SALE_STATUS_FINALIZED = "finalized"
const SALE_STATUS_CANCELLED = "cancelled"
const SALE_STATUS_RETURNED = "returned"

const DELIVERY_TYPE_PICKUP = "pickup"
const DELIVERY_TYPE_DELIVERY = "delivery"

// Sale guarda o status legado e os pares timestamp/ator espelhados dos checkpoints.
type Sale struct {
	ID            string          `gorm:"primary_key;type:varchar(36)" json:"id"`
	TenantID      string          `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Status        string          `gorm:"not null;default:'draft';index" json:"status"`
	DeliveryType  string          `gorm:"column:delivery_type;default:'delivery'" json:"delivery_type"`
	PaymentMethod string          `gorm:"column:payment_method;default:''" json:"payment_method"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`

	PrintedAt             *time.Time `gorm:"column:printed_at" json:"printed_at"`
	PrintedBy             *string    `gorm:"column:printed_by" json:"printed_by"`
	ExpeditionValidatedAt *time.Time `gorm:"column:expedition_validated_at" json:"expedition_validated_at"`
	ExpeditionValidatedBy *string    `gorm:"column:expedition_validated_by" json:"expedition_validated_by"`
	DispatchedAt          *time.Time `gorm:"column:dispatched_at" json:"dispatched_at"`
	DispatchedBy          *string    `gorm:"column:dispatched_by" json:"dispatched_by"`
	DeliveredAt           *time.Time `gorm:"column:delivered_at" json:"delivered_at"`
	DeliveredBy           *string    `gorm:"column:delivered_by" json:"delivered_by"`
	PaymentConfirmedAt    *time.Time `gorm:"column:payment_confirmed_at" json:"payment_confirmed_at"`
	PaymentConfirmedBy    *string    `gorm:"column:payment_confirmed_by" json:"payment_confirmed_by"`
	FinalizedAt           *time.Time `gorm:"column:finalized_at" json:"finalized_at"`
	FinalizedBy           *string    `gorm:"column:finalized_by" json:"finalized_by"`

	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func NewSale(tenantID, deliveryType, paymentMethod string, total decimal.Decimal) (*Sale, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, errors.New("tenant_id é obrigatório")
	}
	if deliveryType == "" {
		deliveryType = DELIVERY_TYPE_DELIVERY
	}
	if deliveryType != DELIVERY_TYPE_DELIVERY && deliveryType != DELIVERY_TYPE_PICKUP {
		return nil, errors.New("delivery_type inválido")
	}
	if total.IsNegative() {
		return nil, errors.New("total negativo")
	}
	return &Sale{
		ID:            NewID(),
		TenantID:      tenantID,
		Status:        SALE_STATUS_DRAFT,
		DeliveryType:  deliveryType,
		PaymentMethod: paymentMethod,
		Total:         total,
	}, nil
}

// IsTerminal: cancelled/returned nunca são sobrescritos por derivação.
func (s Sale) IsTerminal() bool {
	return s.Status == SALE_STATUS_CANCELLED || s.Status == SALE_STATUS_RETURNED
}

// LegacyCompletedAt returns the mirrored timestamp for a checkpoint type.
func (s Sale) LegacyCompletedAt(checkpointType string) *time.Time {
	switch checkpointType {
	case CHECKPOINT_PRINTED:
		return s.PrintedAt
	case CHECKPOINT_PENDING_EXPEDITION:
		return s.ExpeditionValidatedAt
	case CHECKPOINT_DISPATCHED:
		return s.DispatchedAt
	case CHECKPOINT_DELIVERED:
		return s.DeliveredAt
	case CHECKPOINT_PAYMENT_CONFIRMED:
		return s.PaymentConfirmedAt
	}
	return nil
}

// SetLegacy mirrors (at, by) into the legacy pair of a checkpoint type.
// Passing nils clears the pair.
func (s *Sale) SetLegacy(checkpointType string, at *time.Time, by *string) {
	switch checkpointType {
	case CHECKPOINT_PRINTED:
		s.PrintedAt, s.PrintedBy = at, by
	case CHECKPOINT_PENDING_EXPEDITION:
		s.ExpeditionValidatedAt, s.ExpeditionValidatedBy = at, by
	case CHECKPOINT_DISPATCHED:
		s.DispatchedAt, s.DispatchedBy = at, by
	case CHECKPOINT_DELIVERED:
		s.DeliveredAt, s.DeliveredBy = at, by
	case CHECKPOINT_PAYMENT_CONFIRMED:
		s.PaymentConfirmedAt, s.PaymentConfirmedBy = at, by
	}
}
