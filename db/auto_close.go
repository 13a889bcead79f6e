package db

import (
	"context"

	"backoffice/models"
)

func (s *Store) EnabledAutoCloseTenants(ctx context.Context) ([]string, error) {
	var tenants []string
	err := s.DB.Model(&models.AutoCloseConfig{}).
		Where("enabled = ?", true).
		Order("tenant_id asc").
		Pluck("tenant_id", &tenants).Error
	return tenants, err
}

func (s *Store) AutoCloseConfig(ctx context.Context, tenantID string) (*models.AutoCloseConfig, error) {
	var cfg models.AutoCloseConfig
	err := s.DB.Where("tenant_id = ?", tenantID).First(&cfg).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
