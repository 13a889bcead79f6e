package models

import (
	"errors"
	"strings"
	"time"
)

const (
	INSTANCE_STATUS_ACTIVE   = "active"
	INSTANCE_STATUS_INACTIVE = "inactive"

	PROVIDER_EVOLUTION = "evolution"
	PROVIDER_CLOUD     = "cloud"
)

// WhatsAppInstance é um canal de saída (sessão WhatsApp) de um tenant.
// Conexão é gerida fora daqui; o core só lê IsConnected/Status.
type WhatsAppInstance struct {
	ID           string `gorm:"primary_key;type:varchar(36)" json:"id"`
	TenantID     string `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	InstanceName string `gorm:"column:instance_name;not null" json:"instance_name"`
	Provider     string `gorm:"column:provider;not null;default:'evolution'" json:"provider"`

	// Cloud API (Meta) only
	PhoneNumberID string `gorm:"column:phone_number_id" json:"phone_number_id"`
	AccessToken   string `gorm:"column:access_token" json:"-"`
	ApiVersion    string `gorm:"column:api_version" json:"api_version"`

	IsConnected bool       `gorm:"column:is_connected;not null" json:"is_connected"`
	Status      string     `gorm:"column:status;not null;default:'active'" json:"status"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

func (WhatsAppInstance) TableName() string {
	return "whatsapp_instances"
}

func NewWhatsAppInstance(tenantID, instanceName, provider string) (*WhatsAppInstance, error) {
	tenantID = strings.TrimSpace(tenantID)
	instanceName = strings.TrimSpace(instanceName)
	if tenantID == "" {
		return nil, errors.New("tenant_id é obrigatório")
	}
	if instanceName == "" {
		return nil, errors.New("instance_name é obrigatório")
	}
	if provider == "" {
		provider = PROVIDER_EVOLUTION
	}
	if provider != PROVIDER_EVOLUTION && provider != PROVIDER_CLOUD {
		return nil, errors.New("provider inválido")
	}
	return &WhatsAppInstance{
		ID:           NewID(),
		TenantID:     tenantID,
		InstanceName: instanceName,
		Provider:     provider,
		Status:       INSTANCE_STATUS_ACTIVE,
	}, nil
}

// Eligible reports whether the instance may be used as a delivery target.
func (i WhatsAppInstance) Eligible() bool {
	return i.IsConnected && i.Status == INSTANCE_STATUS_ACTIVE
}
