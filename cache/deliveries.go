package cache

import (
	"context"
	"time"

	"backoffice/models"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	sentMessagesKeyPrefix = "sent_messages:"
	// MaxRecentDeliveries por tenant; o índice é só uma janela recente.
	MaxRecentDeliveries = 1000
)

// Delivery é um envio bem-sucedido de mensagem agendada.
type Delivery struct {
	MessageID  string    `json:"message_id"`
	LeadID     string    `json:"lead_id"`
	InstanceID string    `json:"instance_id"`
	SentAt     time.Time `json:"sent_at"`
}

// DeliveryCache guarda as entregas recentes por tenant num sorted set
// ordenado por horário de envio. Um DeliveryCache nil não faz nada.
type DeliveryCache struct {
	client *redis.Client
}

func NewDeliveryCache(client *redis.Client) *DeliveryCache {
	if client == nil {
		return nil
	}
	return &DeliveryCache{client: client}
}

func sentMessagesKey(tenantID string) string {
	return sentMessagesKeyPrefix + tenantID
}

func (d *DeliveryCache) RecordDelivery(ctx context.Context, msg models.ScheduledMessage, instanceID string, at time.Time) error {
	if d == nil {
		return nil
	}
	member, err := json.Marshal(Delivery{
		MessageID:  msg.ID,
		LeadID:     msg.LeadID,
		InstanceID: instanceID,
		SentAt:     at.UTC(),
	})
	if err != nil {
		return err
	}

	key := sentMessagesKey(msg.TenantID)
	pipe := d.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(at.Unix()), Member: string(member)})
	pipe.ZRemRangeByRank(ctx, key, 0, -MaxRecentDeliveries-1)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent devolve as entregas mais novas primeiro e o total guardado.
func (d *DeliveryCache) Recent(ctx context.Context, tenantID string, page int, pageSize int) ([]Delivery, int64, error) {
	if d == nil {
		return []Delivery{}, 0, nil
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	key := sentMessagesKey(tenantID)

	total, err := d.client.ZCard(ctx, key).Result()
	if err != nil {
		return nil, 0, err
	}

	start := int64((page - 1) * pageSize)
	stop := start + int64(pageSize) - 1
	members, err := d.client.ZRevRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, 0, err
	}

	out := make([]Delivery, 0, len(members))
	for _, m := range members {
		var item Delivery
		if err := json.Unmarshal([]byte(m), &item); err != nil {
			continue
		}
		out = append(out, item)
	}
	return out, total, nil
}
