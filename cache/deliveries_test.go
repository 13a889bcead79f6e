package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"backoffice/models"
)

func TestNilDeliveryCache(t *testing.T) {
	var d *DeliveryCache
	if NewDeliveryCache(nil) != nil {
		t.Fatal("expected nil cache without client")
	}
	if err := d.RecordDelivery(context.Background(), models.ScheduledMessage{ID: "m1"}, "i1", time.Now()); err != nil {
		t.Errorf("nil cache must ignore records, got %v", err)
	}
	items, total, err := d.Recent(context.Background(), "t1", 1, 10)
	if err != nil || total != 0 || len(items) != 0 {
		t.Errorf("nil cache must be empty, got %v %d %v", items, total, err)
	}
}

// Roda contra um redis real quando REDIS_ADDR estiver definido.
func TestDeliveryCache_Redis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := NewClient(ctx, addr, os.Getenv("REDIS_PASSWORD"), 15)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	tenant := "test-" + time.Now().Format("150405.000000")
	defer client.Del(ctx, sentMessagesKey(tenant))

	d := NewDeliveryCache(client)
	base := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"m1", "m2", "m3"} {
		msg := models.ScheduledMessage{ID: id, TenantID: tenant, LeadID: "lead-" + id}
		if err := d.RecordDelivery(ctx, msg, "i1", base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	items, total, err := d.Recent(ctx, tenant, 1, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if total != 3 || len(items) != 2 || items[0].MessageID != "m3" || items[1].MessageID != "m2" {
		t.Errorf("unexpected page %+v (total %d)", items, total)
	}
	if items[0].LeadID != "lead-m3" || items[0].InstanceID != "i1" {
		t.Errorf("unexpected delivery %+v", items[0])
	}
}
