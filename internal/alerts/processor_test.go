package alerts

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/campwatch/campwatch-api/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuleRepo struct {
	rules []models.AlertRule
}

func (f *fakeRuleRepo) Create(ctx context.Context, rule models.AlertRule) (models.AlertRule, error) {
	return rule, nil
}
func (f *fakeRuleRepo) Get(ctx context.Context, id string) (models.AlertRule, error) {
	return models.AlertRule{}, nil
}
func (f *fakeRuleRepo) List(ctx context.Context) ([]models.AlertRule, error) { return f.rules, nil }
func (f *fakeRuleRepo) ListActive(ctx context.Context) ([]models.AlertRule, error) {
	var active []models.AlertRule
	for _, r := range f.rules {
		if r.IsActive {
			active = append(active, r)
		}
	}
	return active, nil
}
func (f *fakeRuleRepo) Update(ctx context.Context, rule models.AlertRule) (models.AlertRule, error) {
	return rule, nil
}
func (f *fakeRuleRepo) SetActive(ctx context.Context, id string, active bool) (models.AlertRule, error) {
	return models.AlertRule{}, nil
}

// fakeNotificationRepo mirrors the conditional-upsert claim over an in-memory
// map guarded by a mutex.
type fakeNotificationRepo struct {
	mu      sync.Mutex
	nextID  int
	records map[string]*models.NotificationRecord
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{records: make(map[string]*models.NotificationRecord)}
}

func (f *fakeNotificationRepo) Claim(ctx context.Context, params repository.ClaimParams) (models.NotificationRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := params.AlertRuleID + "|" + params.CompositeKey
	if existing, ok := f.records[key]; ok {
		if existing.Status == models.NotificationStatusPending {
			return models.NotificationRecord{}, false, nil
		}
		if existing.SentAt != nil && time.Since(*existing.SentAt) < params.Cooldown {
			return models.NotificationRecord{}, false, nil
		}
		existing.Status = models.NotificationStatusPending
		existing.RetryCount = 0
		return *existing, true, nil
	}

	f.nextID++
	record := &models.NotificationRecord{
		ID:             string(rune('a' + f.nextID)),
		AlertRuleID:    params.AlertRuleID,
		CompositeKey:   params.CompositeKey,
		Park:           params.Park,
		SiteID:         params.SiteID,
		CheckInDate:    params.CheckInDate,
		RecipientEmail: params.RecipientEmail,
		Status:         models.NotificationStatusPending,
	}
	f.records[key] = record
	return *record, true, nil
}

func (f *fakeNotificationRepo) MarkSent(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			now := time.Now()
			r.Status = models.NotificationStatusSent
			r.SentAt = &now
		}
	}
	return nil
}

func (f *fakeNotificationRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			r.Status = models.NotificationStatusFailed
			r.ErrorMessage = &errMsg
			r.RetryCount++
		}
	}
	return nil
}

func (f *fakeNotificationRepo) MarkSkipped(ctx context.Context, id string) error { return nil }

func (f *fakeNotificationRepo) ListRecent(ctx context.Context, limit int) ([]models.NotificationRecord, error) {
	return nil, nil
}

func (f *fakeNotificationRepo) ListByStatus(ctx context.Context, status models.NotificationStatus, limit int) ([]models.NotificationRecord, error) {
	return nil, nil
}

type fakeSender struct {
	mu       sync.Mutex
	sent     [][]models.AvailabilityRecord
	failures int
}

func (f *fakeSender) SendAlert(ctx context.Context, rule models.AlertRule, sites []models.AvailabilityRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, sites)
	return nil
}

func (f *fakeSender) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func testConfig() ProcessorConfig {
	return ProcessorConfig{
		Cooldown:          24 * time.Hour,
		MaxRetries:        2,
		InitialBackoff:    time.Millisecond,
		BackoffMultiplier: 2,
		MaxSitesPerEmail:  10,
	}
}

func newTestProcessor(rules *fakeRuleRepo, notifs *fakeNotificationRepo, sender *fakeSender, cfg ProcessorConfig) *Processor {
	p := NewProcessor(rules, notifs, sender, cfg, zerolog.Nop())
	p.now = func() time.Time { return friday.AddDate(0, 0, -7) }
	return p
}

func availableEvent(park models.Park, siteID string, checkIn time.Time) ChangeEvent {
	return ChangeEvent{Kind: ChangeCreated, Record: record(park, siteID, checkIn, models.StatusAvailable, price(40))}
}

func TestProcessSendsAndMarksSent(t *testing.T) {
	rules := &fakeRuleRepo{rules: []models.AlertRule{baseRule()}}
	notifs := newFakeNotificationRepo()
	sender := &fakeSender{}
	p := newTestProcessor(rules, notifs, sender, testConfig())

	ev := availableEvent(models.ParkCarlsbad, "A12", friday)
	stats, err := p.Process(context.Background(), []models.AvailabilityRecord{ev.Record}, []ChangeEvent{ev})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 1, stats.Claimed)
	assert.Equal(t, 1, stats.Sent)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, 1, sender.sendCount())

	rec := notifs.records["rule-1|"+ev.Record.CompositeKey()]
	require.NotNil(t, rec)
	assert.Equal(t, models.NotificationStatusSent, rec.Status)
	assert.NotNil(t, rec.SentAt)
}

func TestProcessCooldownSuppressesRepeat(t *testing.T) {
	rules := &fakeRuleRepo{rules: []models.AlertRule{baseRule()}}
	notifs := newFakeNotificationRepo()
	sender := &fakeSender{}
	p := newTestProcessor(rules, notifs, sender, testConfig())

	ev := availableEvent(models.ParkCarlsbad, "A12", friday)
	snapshot := []models.AvailabilityRecord{ev.Record}

	_, err := p.Process(context.Background(), snapshot, []ChangeEvent{ev})
	require.NoError(t, err)

	stats, err := p.Process(context.Background(), snapshot, []ChangeEvent{ev})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 0, stats.Claimed)
	assert.Equal(t, 1, sender.sendCount())
}

func TestProcessRetriesThenSucceeds(t *testing.T) {
	rules := &fakeRuleRepo{rules: []models.AlertRule{baseRule()}}
	notifs := newFakeNotificationRepo()
	sender := &fakeSender{failures: 2}
	p := newTestProcessor(rules, notifs, sender, testConfig())

	ev := availableEvent(models.ParkCarlsbad, "A12", friday)
	stats, err := p.Process(context.Background(), []models.AvailabilityRecord{ev.Record}, []ChangeEvent{ev})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Sent)
	assert.Equal(t, 1, sender.sendCount())
}

func TestProcessExhaustsRetriesAndMarksFailed(t *testing.T) {
	rules := &fakeRuleRepo{rules: []models.AlertRule{baseRule()}}
	notifs := newFakeNotificationRepo()
	sender := &fakeSender{failures: 10}
	p := newTestProcessor(rules, notifs, sender, testConfig())

	ev := availableEvent(models.ParkCarlsbad, "A12", friday)
	stats, err := p.Process(context.Background(), []models.AvailabilityRecord{ev.Record}, []ChangeEvent{ev})
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Sent)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, sender.sendCount())

	rec := notifs.records["rule-1|"+ev.Record.CompositeKey()]
	require.NotNil(t, rec)
	assert.Equal(t, models.NotificationStatusFailed, rec.Status)
	require.NotNil(t, rec.ErrorMessage)
}

func TestProcessCapsSitesPerEmail(t *testing.T) {
	rules := &fakeRuleRepo{rules: []models.AlertRule{baseRule()}}
	notifs := newFakeNotificationRepo()
	sender := &fakeSender{}
	cfg := testConfig()
	cfg.MaxSitesPerEmail = 3
	p := newTestProcessor(rules, notifs, sender, cfg)

	var snapshot []models.AvailabilityRecord
	var events []ChangeEvent
	for _, siteID := range []string{"A1", "A2", "A3", "A4", "A5"} {
		ev := availableEvent(models.ParkCarlsbad, siteID, friday)
		snapshot = append(snapshot, ev.Record)
		events = append(events, ev)
	}

	stats, err := p.Process(context.Background(), snapshot, events)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Sent)
	require.Equal(t, 1, sender.sendCount())
	assert.Len(t, sender.sent[0], 3)
}

func TestProcessNoAlertableEvents(t *testing.T) {
	rules := &fakeRuleRepo{rules: []models.AlertRule{baseRule()}}
	notifs := newFakeNotificationRepo()
	sender := &fakeSender{}
	p := newTestProcessor(rules, notifs, sender, testConfig())

	booked := ChangeEvent{Kind: ChangeCreated, Record: record(models.ParkCarlsbad, "A12", friday, models.StatusBooked, nil)}
	stats, err := p.Process(context.Background(), []models.AvailabilityRecord{booked.Record}, []ChangeEvent{booked})
	require.NoError(t, err)

	assert.Equal(t, 0, stats.RulesEvaluated)
	assert.Equal(t, 0, sender.sendCount())
}

func TestProcessConcurrentClaimersSendOnce(t *testing.T) {
	rules := &fakeRuleRepo{rules: []models.AlertRule{baseRule()}}
	notifs := newFakeNotificationRepo()
	sender := &fakeSender{}

	ev := availableEvent(models.ParkCarlsbad, "A12", friday)
	snapshot := []models.AvailabilityRecord{ev.Record}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := newTestProcessor(rules, notifs, sender, testConfig())
			_, err := p.Process(context.Background(), snapshot, []ChangeEvent{ev})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sender.sendCount())
}
