package db

import (
	"context"
	"time"

	"backoffice/models"
)

// DueScheduledMessages: pendentes com scheduled_at vencido, mais antigas
// primeiro. Soft-deleted ficam de fora pelo próprio gorm.
func (s *Store) DueScheduledMessages(ctx context.Context, now time.Time, limit int) ([]models.ScheduledMessage, error) {
	var out []models.ScheduledMessage
	err := s.DB.
		Where("status = ? AND scheduled_at <= ?", models.SCHEDULED_STATUS_PENDING, now).
		Order("scheduled_at asc, id asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (s *Store) UpdateScheduledMessage(ctx context.Context, id string, fields map[string]any) error {
	return s.DB.Model(&models.ScheduledMessage{}).Where("id = ?", id).Updates(fields).Error
}

func (s *Store) CreateScheduledMessage(ctx context.Context, msg *models.ScheduledMessage) error {
	return s.DB.Create(msg).Error
}

func (s *Store) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	var lead models.Lead
	err := s.DB.Where("id = ?", id).First(&lead).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}
