package models

import (
	"time"

	"github.com/shopspring/decimal"
)

/************************************************
/**** MARK: PICKUP CLOSING STATUS ****/
/************************************************/
const CLOSING_STATUS_PENDING = "pending"
const CLOSING_STATUS_CONFIRMED_AUXILIAR = "confirmed_auxiliar"
const CLOSING_STATUS_CONFIRMED_FINAL = "confirmed_final"

const PAYMENT_BUCKET_CARD = "card"
const PAYMENT_BUCKET_PIX = "pix"
const PAYMENT_BUCKET_CASH = "cash"
const PAYMENT_BUCKET_OTHER = "other"

// PickupClosing é o fechamento em lote das vendas de retirada.
// Os totais são calculados uma única vez na criação.
type PickupClosing struct {
	ID            string          `gorm:"primary_key;type:varchar(36)" json:"id"`
	TenantID      string          `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	ClosingNumber int             `gorm:"column:closing_number;not null" json:"closing_number"`
	TotalCard     decimal.Decimal `gorm:"column:total_card;type:decimal(12,2);not null" json:"total_card"`
	TotalPix      decimal.Decimal `gorm:"column:total_pix;type:decimal(12,2);not null" json:"total_pix"`
	TotalCash     decimal.Decimal `gorm:"column:total_cash;type:decimal(12,2);not null" json:"total_cash"`
	TotalOther    decimal.Decimal `gorm:"column:total_other;type:decimal(12,2);not null" json:"total_other"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2);not null" json:"total_amount"`
	SalesCount    int             `gorm:"column:sales_count;not null" json:"sales_count"`
	Status        string          `gorm:"not null;default:'pending';index" json:"status"`
	CreatedBy     string          `gorm:"column:created_by;not null" json:"created_by"`

	AuxiliarConfirmedBy *string    `gorm:"column:auxiliar_confirmed_by" json:"auxiliar_confirmed_by"`
	AuxiliarConfirmedAt *time.Time `gorm:"column:auxiliar_confirmed_at" json:"auxiliar_confirmed_at"`
	FinalConfirmedBy    *string    `gorm:"column:final_confirmed_by" json:"final_confirmed_by"`
	FinalConfirmedAt    *time.Time `gorm:"column:final_confirmed_at" json:"final_confirmed_at"`

	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// PickupClosingSale: sale_id único garante que uma venda entra em um só fechamento.
type PickupClosingSale struct {
	ID            string          `gorm:"primary_key;type:varchar(36)" json:"id"`
	ClosingID     string          `gorm:"column:closing_id;not null;index" json:"closing_id"`
	SaleID        string          `gorm:"column:sale_id;not null;unique_index" json:"sale_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentMethod string          `gorm:"column:payment_method" json:"payment_method"`
	CreatedAt     *time.Time      `json:"created_at"`
}
