package workers

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"backoffice/models"
	"backoffice/tools"
)

type fakeInstances struct {
	byID  map[string]*models.WhatsAppInstance
	order []string
}

func newFakeInstances(instances ...models.WhatsAppInstance) *fakeInstances {
	f := &fakeInstances{byID: map[string]*models.WhatsAppInstance{}}
	for i := range instances {
		inst := instances[i]
		f.byID[inst.ID] = &inst
		f.order = append(f.order, inst.ID)
	}
	return f
}

func (f *fakeInstances) GetInstance(ctx context.Context, id string) (*models.WhatsAppInstance, error) {
	inst, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *inst
	return &cp, nil
}

func (f *fakeInstances) ConnectedInstances(ctx context.Context, tenantID string) ([]models.WhatsAppInstance, error) {
	var out []models.WhatsAppInstance
	for _, id := range f.order {
		inst := f.byID[id]
		if inst.TenantID == tenantID && inst.Eligible() {
			out = append(out, *inst)
		}
	}
	return out, nil
}

func (f *fakeInstances) ActiveInstances(ctx context.Context, tenantID string) ([]models.WhatsAppInstance, error) {
	var out []models.WhatsAppInstance
	for _, id := range f.order {
		inst := f.byID[id]
		if inst.TenantID == tenantID && inst.Status == models.INSTANCE_STATUS_ACTIVE {
			out = append(out, *inst)
		}
	}
	return out, nil
}

type fakeMessages struct {
	byID    map[string]*models.ScheduledMessage
	failDue error
}

func newFakeMessages(msgs ...*models.ScheduledMessage) *fakeMessages {
	f := &fakeMessages{byID: map[string]*models.ScheduledMessage{}}
	for _, m := range msgs {
		f.byID[m.ID] = m
	}
	return f
}

func (f *fakeMessages) DueScheduledMessages(ctx context.Context, now time.Time, limit int) ([]models.ScheduledMessage, error) {
	if f.failDue != nil {
		return nil, f.failDue
	}
	var out []models.ScheduledMessage
	for _, m := range f.byID {
		if m.Status == models.SCHEDULED_STATUS_PENDING && m.DeletedAt == nil && !m.ScheduledAt.After(now) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMessages) UpdateScheduledMessage(ctx context.Context, id string, fields map[string]any) error {
	m, ok := f.byID[id]
	if !ok {
		return errors.New("not found")
	}
	for k, v := range fields {
		switch k {
		case "attempt_count":
			m.AttemptCount = v.(int)
		case "current_instance_index":
			m.CurrentInstanceIndex = v.(int)
		case "whatsapp_instance_id":
			s := v.(string)
			m.WhatsappInstanceID = &s
		case "status":
			m.Status = v.(string)
		case "failure_reason":
			m.FailureReason = v.(string)
		case "sent_at":
			t := v.(time.Time)
			m.SentAt = &t
		case "scheduled_at":
			m.ScheduledAt = v.(time.Time)
		default:
			return errors.New("unexpected field " + k)
		}
	}
	return nil
}

type fakeLeads map[string]models.Lead

func (f fakeLeads) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	lead, ok := f[id]
	if !ok {
		return nil, nil
	}
	return &lead, nil
}

type sendCall struct {
	Instance string
	Phone    string
	Text     string
	Media    *tools.Media
}

// fakeSender pops queued errors per instance name, falling back to always.
type fakeSender struct {
	mu     sync.Mutex
	queued map[string][]error
	always map[string]error
	calls  []sendCall
}

func newFakeSender() *fakeSender {
	return &fakeSender{queued: map[string][]error{}, always: map[string]error{}}
}

func (f *fakeSender) result(instance string) error {
	if q := f.queued[instance]; len(q) > 0 {
		f.queued[instance] = q[1:]
		return q[0]
	}
	return f.always[instance]
}

func (f *fakeSender) SendText(ctx context.Context, instance models.WhatsAppInstance, phone string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sendCall{Instance: instance.InstanceName, Phone: phone, Text: text})
	return f.result(instance.InstanceName)
}

func (f *fakeSender) SendMedia(ctx context.Context, instance models.WhatsAppInstance, phone string, media tools.Media) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := media
	f.calls = append(f.calls, sendCall{Instance: instance.InstanceName, Phone: phone, Text: media.Caption, Media: &m})
	return f.result(instance.InstanceName)
}

func (f *fakeSender) instancesCalled() []string {
	var out []string
	for _, c := range f.calls {
		out = append(out, c.Instance)
	}
	return out
}

type fakeRecorder struct {
	recorded []string
}

func (f *fakeRecorder) RecordDelivery(ctx context.Context, msg models.ScheduledMessage, instanceID string, at time.Time) error {
	f.recorded = append(f.recorded, msg.ID+"@"+instanceID)
	return nil
}

type fakeConversations struct {
	convs      map[string]*models.Conversation
	messages   []models.ConversationMessage
	ratings    []*models.SatisfactionRating
	failUpdate error
}

func newFakeConversations(convs ...models.Conversation) *fakeConversations {
	f := &fakeConversations{convs: map[string]*models.Conversation{}}
	for i := range convs {
		c := convs[i]
		f.convs[c.ID] = &c
	}
	return f
}

func (f *fakeConversations) AwaitingSatisfaction(ctx context.Context) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, c := range f.convs {
		if c.AwaitingSatisfaction {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeConversations) LatestInboundSince(ctx context.Context, conversationID string, since time.Time) (*models.ConversationMessage, error) {
	var latest *models.ConversationMessage
	for i := range f.messages {
		m := f.messages[i]
		if m.ConversationID != conversationID || m.Direction != models.MESSAGE_DIRECTION_INBOUND || m.CreatedAt == nil || !m.CreatedAt.After(since) {
			continue
		}
		if latest == nil || m.CreatedAt.After(*latest.CreatedAt) {
			latest = &m
		}
	}
	return latest, nil
}

func (f *fakeConversations) IdleConversations(ctx context.Context, tenantID string, instanceID string, statuses []string, before time.Time) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, c := range f.convs {
		if c.TenantID != tenantID || c.InstanceID != instanceID || c.AwaitingSatisfaction {
			continue
		}
		if c.LastMessageAt == nil || !c.LastMessageAt.Before(before) {
			continue
		}
		for _, s := range statuses {
			if c.Status == s {
				out = append(out, *c)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeConversations) UpdateConversation(ctx context.Context, id string, fields map[string]any) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	c, ok := f.convs[id]
	if !ok {
		return errors.New("not found")
	}
	for k, v := range fields {
		switch k {
		case "status":
			c.Status = v.(string)
		case "awaiting_satisfaction":
			c.AwaitingSatisfaction = v.(bool)
		case "closed_at":
			t := v.(time.Time)
			c.ClosedAt = &t
		case "satisfaction_sent_at":
			if v == nil {
				c.SatisfactionSentAt = nil
			} else {
				t := v.(time.Time)
				c.SatisfactionSentAt = &t
			}
		default:
			return errors.New("unexpected field " + k)
		}
	}
	return nil
}

func (f *fakeConversations) PendingRating(ctx context.Context, conversationID string) (*models.SatisfactionRating, error) {
	for i := len(f.ratings) - 1; i >= 0; i-- {
		r := f.ratings[i]
		if r.ConversationID == conversationID && r.Rating == nil {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeConversations) CreateRating(ctx context.Context, rating *models.SatisfactionRating) error {
	cp := *rating
	f.ratings = append(f.ratings, &cp)
	return nil
}

func (f *fakeConversations) UpdateRating(ctx context.Context, rating *models.SatisfactionRating) error {
	for i, r := range f.ratings {
		if r.ID == rating.ID {
			cp := *rating
			f.ratings[i] = &cp
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeConversations) ratingsFor(conversationID string) []*models.SatisfactionRating {
	var out []*models.SatisfactionRating
	for _, r := range f.ratings {
		if r.ConversationID == conversationID {
			out = append(out, r)
		}
	}
	return out
}

type fakeConfigs map[string]models.AutoCloseConfig

func (f fakeConfigs) EnabledAutoCloseTenants(ctx context.Context) ([]string, error) {
	var out []string
	for tenant, cfg := range f {
		if cfg.Enabled {
			out = append(out, tenant)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f fakeConfigs) AutoCloseConfig(ctx context.Context, tenantID string) (*models.AutoCloseConfig, error) {
	cfg, ok := f[tenantID]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func connected(id, tenant string) models.WhatsAppInstance {
	return models.WhatsAppInstance{ID: id, TenantID: tenant, InstanceName: "inst-" + id, Provider: models.PROVIDER_EVOLUTION, IsConnected: true, Status: models.INSTANCE_STATUS_ACTIVE}
}

func strPtr(s string) *string { return &s }
