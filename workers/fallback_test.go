package workers

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"backoffice/models"
)

func dueMessage(id string) *models.ScheduledMessage {
	return &models.ScheduledMessage{
		ID:          id,
		TenantID:    "t1",
		LeadID:      "lead-1",
		Message:     "olá",
		ScheduledAt: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
		Status:      models.SCHEDULED_STATUS_PENDING,
		MaxAttempts: 3,
	}
}

func TestCandidateInstanceIDs(t *testing.T) {
	msg := models.ScheduledMessage{
		WhatsappInstanceID:  strPtr("a"),
		FallbackInstanceIDs: models.StringList{"b", "a", "", "c", "b"},
	}
	got := candidateInstanceIDs(msg)
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("unexpected candidates %v", got)
	}

	if got := candidateInstanceIDs(models.ScheduledMessage{}); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

func TestDeliver_SkipsDisconnectedAndFallsBack(t *testing.T) {
	a := connected("a", "t1")
	a.IsConnected = false
	instances := newFakeInstances(a, connected("b", "t1"), connected("c", "t1"))
	sender := newFakeSender()
	sender.always["inst-b"] = errors.New("evolution sendText: status=500 Internal Server Error")

	msg := dueMessage("m1")
	msg.WhatsappInstanceID = strPtr("a")
	msg.FallbackInstanceIDs = models.StringList{"b", "c"}
	messages := newFakeMessages(msg)
	engine := &FallbackEngine{Instances: instances, Messages: messages, Sender: sender}

	used, err := engine.Deliver(context.Background(), msg, "5511987654321")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used.ID != "c" {
		t.Errorf("expected delivery through c, got %s", used.ID)
	}
	if got := sender.instancesCalled(); !reflect.DeepEqual(got, []string{"inst-b", "inst-c"}) {
		t.Errorf("unexpected send order %v", got)
	}
	stored := messages.byID["m1"]
	if stored.CurrentInstanceIndex != 2 {
		t.Errorf("expected index 2, got %d", stored.CurrentInstanceIndex)
	}
	if stored.WhatsappInstanceID == nil || *stored.WhatsappInstanceID != "c" {
		t.Errorf("expected primary c, got %v", stored.WhatsappInstanceID)
	}
}

func TestDeliver_PermanentFailureStopsFallback(t *testing.T) {
	instances := newFakeInstances(connected("a", "t1"), connected("b", "t1"), connected("c", "t1"))
	sender := newFakeSender()
	sender.always["inst-a"] = errors.New("timeout")
	sender.always["inst-b"] = errors.New("evolution sendText: status=400 Bad Request")

	msg := dueMessage("m1")
	msg.WhatsappInstanceID = strPtr("a")
	msg.FallbackInstanceIDs = models.StringList{"b", "c"}
	engine := &FallbackEngine{Instances: instances, Messages: newFakeMessages(msg), Sender: sender}

	_, err := engine.Deliver(context.Background(), msg, "5511987654321")
	var derr *DeliveryError
	if !errors.As(err, &derr) || !derr.Permanent() {
		t.Fatalf("expected permanent delivery error, got %v", err)
	}
	if !strings.Contains(derr.Reason, "Bad Request") {
		t.Errorf("reason should carry transport text, got %q", derr.Reason)
	}
	if got := sender.instancesCalled(); !reflect.DeepEqual(got, []string{"inst-a", "inst-b"}) {
		t.Errorf("c must not be attempted, calls %v", got)
	}
}

func TestDeliver_ResumesFromStoredIndex(t *testing.T) {
	instances := newFakeInstances(connected("a", "t1"), connected("b", "t1"))
	sender := newFakeSender()

	msg := dueMessage("m1")
	msg.FallbackInstanceIDs = models.StringList{"a", "b"}
	msg.CurrentInstanceIndex = 7
	engine := &FallbackEngine{Instances: instances, Messages: newFakeMessages(msg), Sender: sender}

	used, err := engine.Deliver(context.Background(), msg, "5511987654321")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used.ID != "b" || msg.CurrentInstanceIndex != 1 {
		t.Errorf("expected resume at last candidate, got %s index %d", used.ID, msg.CurrentInstanceIndex)
	}
}

func TestDeliver_NoChannelIsPermanent(t *testing.T) {
	offline := connected("x", "t1")
	offline.IsConnected = false
	engine := &FallbackEngine{Instances: newFakeInstances(offline), Messages: newFakeMessages(), Sender: newFakeSender()}

	_, err := engine.Deliver(context.Background(), dueMessage("m1"), "5511987654321")
	var derr *DeliveryError
	if !errors.As(err, &derr) || !derr.Permanent() || derr.Reason != reasonNoChannel {
		t.Fatalf("expected permanent no-channel error, got %v", err)
	}
}

func TestDeliver_AllChannelsFailedIsTransient(t *testing.T) {
	instances := newFakeInstances(connected("a", "t1"), connected("b", "t1"))
	sender := newFakeSender()
	sender.always["inst-a"] = errors.New("connection refused")
	sender.always["inst-b"] = errors.New("connection reset")

	msg := dueMessage("m1")
	msg.FallbackInstanceIDs = models.StringList{"a", "b", "gone"}
	engine := &FallbackEngine{Instances: instances, Messages: newFakeMessages(msg), Sender: sender}

	_, err := engine.Deliver(context.Background(), msg, "5511987654321")
	var derr *DeliveryError
	if !errors.As(err, &derr) || derr.Permanent() {
		t.Fatalf("expected transient error, got %v", err)
	}
	if !strings.HasPrefix(derr.Reason, "all 3 channels failed") {
		t.Errorf("unexpected reason %q", derr.Reason)
	}
}
