package db

import (
	"context"

	"backoffice/models"
)

func (s *Store) GetInstance(ctx context.Context, id string) (*models.WhatsAppInstance, error) {
	var inst models.WhatsAppInstance
	err := s.DB.Where("id = ?", id).First(&inst).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func (s *Store) ConnectedInstances(ctx context.Context, tenantID string) ([]models.WhatsAppInstance, error) {
	var out []models.WhatsAppInstance
	err := s.DB.
		Where("tenant_id = ? AND is_connected = ? AND status = ?", tenantID, true, models.INSTANCE_STATUS_ACTIVE).
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}

func (s *Store) ActiveInstances(ctx context.Context, tenantID string) ([]models.WhatsAppInstance, error) {
	var out []models.WhatsAppInstance
	err := s.DB.
		Where("tenant_id = ? AND status = ?", tenantID, models.INSTANCE_STATUS_ACTIVE).
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}

// InstanceByName resolve a instância citada nos webhooks da Evolution.
func (s *Store) InstanceByName(ctx context.Context, name string) (*models.WhatsAppInstance, error) {
	var inst models.WhatsAppInstance
	err := s.DB.Where("instance_name = ?", name).First(&inst).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func (s *Store) SetInstanceConnected(ctx context.Context, id string, connected bool) error {
	return s.DB.Model(&models.WhatsAppInstance{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_connected": connected}).Error
}
