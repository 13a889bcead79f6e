package db

import (
	"context"
	"time"

	"backoffice/models"
)

func (s *Store) AwaitingSatisfaction(ctx context.Context) ([]models.Conversation, error) {
	var out []models.Conversation
	err := s.DB.Where("awaiting_satisfaction = ?", true).Order("satisfaction_sent_at asc, id asc").Find(&out).Error
	return out, err
}

func (s *Store) LatestInboundSince(ctx context.Context, conversationID string, since time.Time) (*models.ConversationMessage, error) {
	var msg models.ConversationMessage
	err := s.DB.
		Where("conversation_id = ? AND direction = ? AND created_at > ?", conversationID, models.MESSAGE_DIRECTION_INBOUND, since).
		Order("created_at desc, id desc").
		First(&msg).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Store) IdleConversations(ctx context.Context, tenantID string, instanceID string, statuses []string, before time.Time) ([]models.Conversation, error) {
	var out []models.Conversation
	if len(statuses) == 0 {
		return out, nil
	}
	err := s.DB.
		Where("tenant_id = ? AND instance_id = ? AND status IN (?)", tenantID, instanceID, statuses).
		Where("awaiting_satisfaction = ? AND last_message_at IS NOT NULL AND last_message_at < ?", false, before).
		Order("last_message_at asc, id asc").
		Find(&out).Error
	return out, err
}

func (s *Store) UpdateConversation(ctx context.Context, id string, fields map[string]any) error {
	return s.DB.Model(&models.Conversation{}).Where("id = ?", id).Updates(fields).Error
}

func (s *Store) PendingRating(ctx context.Context, conversationID string) (*models.SatisfactionRating, error) {
	var r models.SatisfactionRating
	err := s.DB.
		Where("conversation_id = ? AND rating IS NULL", conversationID).
		Order("created_at desc, id desc").
		First(&r).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) CreateRating(ctx context.Context, rating *models.SatisfactionRating) error {
	return s.DB.Create(rating).Error
}

func (s *Store) UpdateRating(ctx context.Context, rating *models.SatisfactionRating) error {
	return s.DB.Save(rating).Error
}

// OpenConversation devolve a conversa aberta do telefone na instância ou
// cria uma nova em pending.
func (s *Store) OpenConversation(ctx context.Context, inst models.WhatsAppInstance, phone string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.DB.
		Where("instance_id = ? AND phone = ? AND status IN (?)", inst.ID, phone, models.OpenConversationStatuses).
		Order("created_at desc").
		First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !notFound(err) {
		return nil, err
	}

	// Conversa aguardando nota fica "closed" até a resposta chegar; reaproveita.
	err = s.DB.
		Where("instance_id = ? AND phone = ? AND awaiting_satisfaction = ?", inst.ID, phone, true).
		Order("created_at desc").
		First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !notFound(err) {
		return nil, err
	}

	conv = models.Conversation{
		ID:         models.NewID(),
		TenantID:   inst.TenantID,
		InstanceID: inst.ID,
		Phone:      phone,
		Status:     models.CONVERSATION_STATUS_PENDING,
	}
	if err := s.DB.Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// AppendConversationMessage grava a mensagem e avança last_message_at.
// Mensagens repetidas (mesmo external_id) são ignoradas.
func (s *Store) AppendConversationMessage(ctx context.Context, msg *models.ConversationMessage) (bool, error) {
	if msg.ExternalID != "" {
		var count int
		if err := s.DB.Model(&models.ConversationMessage{}).
			Where("conversation_id = ? AND external_id = ?", msg.ConversationID, msg.ExternalID).
			Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return false, nil
		}
	}

	tx := s.DB.Begin()
	if err := tx.Create(msg).Error; err != nil {
		tx.Rollback()
		return false, err
	}
	if err := tx.Model(&models.Conversation{}).
		Where("id = ?", msg.ConversationID).
		Updates(map[string]any{"last_message_at": msg.CreatedAt}).Error; err != nil {
		tx.Rollback()
		return false, err
	}
	return true, tx.Commit().Error
}
