package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"backoffice/models"
	"backoffice/tools"
)

type sweepFixture struct {
	sweeper  *MessageSweeper
	messages *fakeMessages
	sender   *fakeSender
	recorder *fakeRecorder
	clock    time.Time
}

func newSweepFixture(msgs []*models.ScheduledMessage, instances ...models.WhatsAppInstance) *sweepFixture {
	f := &sweepFixture{
		messages: newFakeMessages(msgs...),
		sender:   newFakeSender(),
		recorder: &fakeRecorder{},
		clock:    time.Date(2026, 1, 10, 12, 30, 0, 0, time.UTC),
	}
	leads := fakeLeads{
		"lead-1":   {ID: "lead-1", TenantID: "t1", Phone: "(11) 98765-4321"},
		"no-phone": {ID: "no-phone", TenantID: "t1"},
		"short":    {ID: "short", TenantID: "t1", Phone: "1234"},
	}
	engine := &FallbackEngine{Instances: newFakeInstances(instances...), Messages: f.messages, Sender: f.sender}
	f.sweeper = &MessageSweeper{
		Messages: f.messages,
		Leads:    leads,
		Engine:   engine,
		Recorder: f.recorder,
		Now:      func() time.Time { return f.clock },
	}
	return f
}

func (f *sweepFixture) run(t *testing.T) SweepSummary {
	t.Helper()
	summary, err := f.sweeper.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected sweep error: %v", err)
	}
	return summary
}

func TestSweeper_SubstitutesConnectedInstances(t *testing.T) {
	msg := dueMessage("m1")
	f := newSweepFixture([]*models.ScheduledMessage{msg}, connected("x", "t1"), connected("y", "t1"), connected("z", "other"))

	summary := f.run(t)
	if summary.Processed != 1 || summary.Sent != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	stored := f.messages.byID["m1"]
	if stored.Status != models.SCHEDULED_STATUS_SENT || stored.SentAt == nil {
		t.Errorf("expected sent, got %s", stored.Status)
	}
	if stored.CurrentInstanceIndex != 0 {
		t.Errorf("expected index 0, got %d", stored.CurrentInstanceIndex)
	}
	if stored.WhatsappInstanceID == nil || *stored.WhatsappInstanceID != "x" {
		t.Errorf("expected primary x, got %v", stored.WhatsappInstanceID)
	}
	if len(f.sender.calls) != 1 || f.sender.calls[0].Phone != "5511987654321" {
		t.Errorf("unexpected calls %+v", f.sender.calls)
	}
	if len(f.recorder.recorded) != 1 || f.recorder.recorded[0] != "m1@x" {
		t.Errorf("delivery not recorded: %v", f.recorder.recorded)
	}
}

func TestSweeper_TransientFailuresHitCeiling(t *testing.T) {
	msg := dueMessage("m1")
	f := newSweepFixture([]*models.ScheduledMessage{msg}, connected("x", "t1"))
	f.sender.always["inst-x"] = errors.New("connection refused")

	for i := 1; i <= 2; i++ {
		summary := f.run(t)
		if summary.Rescheduled != 1 {
			t.Fatalf("run %d: expected reschedule, got %+v", i, summary)
		}
		stored := f.messages.byID["m1"]
		if stored.Status != models.SCHEDULED_STATUS_PENDING || stored.AttemptCount != i {
			t.Fatalf("run %d: unexpected state %s attempts=%d", i, stored.Status, stored.AttemptCount)
		}
		if !stored.ScheduledAt.Equal(f.clock.Add(RetryDelay)) {
			t.Fatalf("run %d: expected scheduled_at now+RetryDelay, got %v", i, stored.ScheduledAt)
		}
		if stored.FailureReason == "" {
			t.Fatalf("run %d: failure reason should be recorded", i)
		}

		// Not due yet.
		if s := f.run(t); s.Processed != 0 {
			t.Fatalf("run %d: message selected before its new scheduled_at", i)
		}
		f.clock = f.clock.Add(RetryDelay)
	}

	summary := f.run(t)
	if summary.Failed != 1 {
		t.Fatalf("expected failure on third attempt, got %+v", summary)
	}
	stored := f.messages.byID["m1"]
	if stored.Status != models.SCHEDULED_STATUS_FAILED || stored.AttemptCount != 3 {
		t.Errorf("expected failed_other after 3 attempts, got %s attempts=%d", stored.Status, stored.AttemptCount)
	}

	f.clock = f.clock.Add(time.Hour)
	if s := f.run(t); s.Processed != 0 {
		t.Errorf("terminal message must not be selected again")
	}
}

func TestSweeper_SucceedsOnThirdAttempt(t *testing.T) {
	msg := dueMessage("m1")
	f := newSweepFixture([]*models.ScheduledMessage{msg}, connected("x", "t1"))
	f.sender.queued["inst-x"] = []error{errors.New("timeout"), errors.New("timeout")}

	for i := 0; i < 3; i++ {
		f.run(t)
		f.clock = f.clock.Add(RetryDelay)
	}
	stored := f.messages.byID["m1"]
	if stored.Status != models.SCHEDULED_STATUS_SENT || stored.AttemptCount != 3 {
		t.Errorf("expected sent on third attempt, got %s attempts=%d", stored.Status, stored.AttemptCount)
	}

	if s := f.run(t); s.Processed != 0 {
		t.Errorf("sent message must not be selected again")
	}
}

func TestSweeper_ExceededAttemptsDoesNotSend(t *testing.T) {
	msg := dueMessage("m1")
	msg.AttemptCount = 3
	f := newSweepFixture([]*models.ScheduledMessage{msg}, connected("x", "t1"))

	summary := f.run(t)
	if summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	stored := f.messages.byID["m1"]
	if stored.FailureReason != reasonExceededAttempts || stored.AttemptCount != 4 {
		t.Errorf("unexpected state reason=%q attempts=%d", stored.FailureReason, stored.AttemptCount)
	}
	if len(f.sender.calls) != 0 {
		t.Errorf("no send expected, got %d", len(f.sender.calls))
	}
}

func TestSweeper_PhoneFailuresArePermanent(t *testing.T) {
	noPhone := dueMessage("m1")
	noPhone.LeadID = "no-phone"
	short := dueMessage("m2")
	short.LeadID = "short"
	missing := dueMessage("m3")
	missing.LeadID = "ghost"
	f := newSweepFixture([]*models.ScheduledMessage{noPhone, short, missing}, connected("x", "t1"))

	summary := f.run(t)
	if summary.Processed != 3 || summary.Failed != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	want := map[string]string{"m1": "lead sem telefone", "m3": "lead não encontrado"}
	for id, reason := range want {
		if got := f.messages.byID[id].FailureReason; got != reason {
			t.Errorf("%s: expected reason %q, got %q", id, reason, got)
		}
	}
	if f.messages.byID["m2"].Status != models.SCHEDULED_STATUS_FAILED {
		t.Errorf("short phone must fail")
	}
	if len(f.sender.calls) != 0 {
		t.Errorf("no send expected")
	}
}

func TestSweeper_PermanentTransportFailure(t *testing.T) {
	msg := dueMessage("m1")
	f := newSweepFixture([]*models.ScheduledMessage{msg}, connected("x", "t1"))
	f.sender.always["inst-x"] = errors.New(`status=400 Bad Request body={"exists":false}`)

	summary := f.run(t)
	if summary.Failed != 1 || f.messages.byID["m1"].AttemptCount != 1 {
		t.Fatalf("expected immediate failure, got %+v", summary)
	}
}

func TestSweeper_MediaUsesMediaSend(t *testing.T) {
	msg := dueMessage("m1")
	msg.MediaURL = "https://cdn/promo.png"
	msg.MediaType = "image"
	f := newSweepFixture([]*models.ScheduledMessage{msg}, connected("x", "t1"))

	f.run(t)
	if len(f.sender.calls) != 1 || f.sender.calls[0].Media == nil {
		t.Fatalf("expected one media send, got %+v", f.sender.calls)
	}
	if f.sender.calls[0].Media.Caption != "olá" || f.sender.calls[0].Media.Type != "image" {
		t.Errorf("unexpected media %+v", *f.sender.calls[0].Media)
	}
}

func TestSweeper_SkipsSoftDeletedAndRespectsBatch(t *testing.T) {
	deleted := dueMessage("m0")
	now := time.Now()
	deleted.DeletedAt = &now
	var msgs []*models.ScheduledMessage
	msgs = append(msgs, deleted)
	for _, id := range []string{"m1", "m2", "m3"} {
		msgs = append(msgs, dueMessage(id))
	}
	f := newSweepFixture(msgs, connected("x", "t1"))
	f.sweeper.BatchSize = 2

	summary := f.run(t)
	if summary.Processed != 2 {
		t.Errorf("expected batch of 2, got %d", summary.Processed)
	}
	if f.messages.byID["m0"].AttemptCount != 0 {
		t.Errorf("soft-deleted message must not be touched")
	}
}

func TestSweeper_FetchErrorSurfaces(t *testing.T) {
	f := newSweepFixture(nil)
	f.messages.failDue = errors.New("db down")
	if _, err := f.sweeper.Run(context.Background()); err == nil {
		t.Fatal("expected infrastructure error")
	}
}

func TestSweeper_UnconfiguredTransportTouchesNothing(t *testing.T) {
	msg := dueMessage("m1")
	f := newSweepFixture([]*models.ScheduledMessage{msg}, connected("x", "t1"))
	f.sweeper.Engine.Sender = tools.Transport{Evolution: tools.NewEvolutionClient(tools.EvolutionOptions{})}

	for i := 0; i < 3; i++ {
		summary, err := f.sweeper.Run(context.Background())
		if !errors.Is(err, tools.ErrEvolutionNotConfigured) {
			t.Fatalf("run %d: expected not configured error, got %v", i+1, err)
		}
		if summary.Processed != 0 {
			t.Fatalf("run %d: nothing should be processed, got %+v", i+1, summary)
		}
	}
	stored := f.messages.byID["m1"]
	if stored.AttemptCount != 0 || stored.Status != models.SCHEDULED_STATUS_PENDING || stored.FailureReason != "" {
		t.Errorf("message must stay untouched, got %+v", stored)
	}
}
