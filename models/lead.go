package models

import "time"

// Lead é o destinatário de uma mensagem agendada. Mantido fora do core:
// aqui só lemos o telefone.
type Lead struct {
	ID        string     `gorm:"primary_key;type:varchar(36)" json:"id"`
	TenantID  string     `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Name      string     `gorm:"default:''" json:"name"`
	Phone     string     `gorm:"default:''" json:"phone"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
