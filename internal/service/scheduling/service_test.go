package scheduling

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appointy/booking-api/internal/config"
	"github.com/appointy/booking-api/internal/model"
	"github.com/appointy/booking-api/internal/repository"
	apperrors "github.com/appointy/booking-api/pkg/errors"
	"github.com/appointy/booking-api/pkg/logger"
)

// memPolicyRepo serializes AllocateSlot and ResetCursor per policy the same
// way the Postgres repository does with row locks: the callback's cursor
// mutation and the appointment insert land together or not at all.
type memPolicyRepo struct {
	mu           sync.Mutex
	policies     map[uuid.UUID]*model.SchedulePolicy
	locks        map[uuid.UUID]*sync.Mutex
	appointments *memAppointmentRepo
}

func newMemPolicyRepo(appointments *memAppointmentRepo) *memPolicyRepo {
	return &memPolicyRepo{
		policies:     make(map[uuid.UUID]*model.SchedulePolicy),
		locks:        make(map[uuid.UUID]*sync.Mutex),
		appointments: appointments,
	}
}

func (r *memPolicyRepo) lockFor(id uuid.UUID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.locks[id]; !ok {
		r.locks[id] = &sync.Mutex{}
	}
	return r.locks[id]
}

func (r *memPolicyRepo) Create(_ context.Context, policy *model.SchedulePolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	policy.ID = uuid.New()
	policy.CreatedAt = time.Now()
	policy.UpdatedAt = policy.CreatedAt
	clone := *policy
	r.policies[policy.ID] = &clone
	return nil
}

func (r *memPolicyRepo) Get(_ context.Context, id uuid.UUID) (*model.SchedulePolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	policy, ok := r.policies[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *policy
	return &clone, nil
}

func (r *memPolicyRepo) GetByProvider(_ context.Context, providerEmail string) (*model.SchedulePolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, policy := range r.policies {
		if policy.ProviderEmail == providerEmail {
			clone := *policy
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memPolicyRepo) Configure(_ context.Context, policy *model.SchedulePolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.policies[policy.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *policy
	clone.UpdatedAt = time.Now()
	r.policies[policy.ID] = &clone
	return nil
}

func (r *memPolicyRepo) AllocateSlot(ctx context.Context, id uuid.UUID, alloc repository.AllocateFunc) (*model.SchedulePolicy, *model.Appointment, error) {
	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	stored, ok := r.policies[id]
	if !ok {
		r.mu.Unlock()
		return nil, nil, sql.ErrNoRows
	}
	working := *stored
	r.mu.Unlock()

	appointment, err := alloc(&working)
	if err != nil {
		return nil, nil, err
	}

	if err := r.appointments.Create(ctx, appointment); err != nil {
		return nil, nil, err
	}

	r.mu.Lock()
	working.UpdatedAt = time.Now()
	clone := working
	r.policies[id] = &clone
	r.mu.Unlock()

	return &working, appointment, nil
}

func (r *memPolicyRepo) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(r.policies))
	for id := range r.policies {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *memPolicyRepo) ResetCursor(_ context.Context, id uuid.UUID) error {
	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	policy, ok := r.policies[id]
	if !ok {
		return sql.ErrNoRows
	}
	if policy.OpeningTime == nil {
		policy.LastAppointmentTime = nil
	} else {
		opening := *policy.OpeningTime
		policy.LastAppointmentTime = &opening
	}
	policy.UpdatedAt = time.Now()
	return nil
}

type memAppointmentRepo struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*model.Appointment
	names map[string]string
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{
		byID:  make(map[uuid.UUID]*model.Appointment),
		names: make(map[string]string),
	}
}

func (r *memAppointmentRepo) Create(_ context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt
	clone := *appointment
	r.byID[appointment.ID] = &clone
	return nil
}

func (r *memAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *appointment
	return &clone, nil
}

func (r *memAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	appointment.Status = status
	appointment.UpdatedAt = time.Now()
	clone := *appointment
	return &clone, nil
}

func (r *memAppointmentRepo) ListForProvider(_ context.Context, providerEmail string) ([]*model.AppointmentWithName, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AppointmentWithName
	for _, a := range r.byID {
		if a.ProviderEmail == providerEmail {
			out = append(out, &model.AppointmentWithName{Appointment: *a, CounterpartName: r.names[a.RecipientEmail]})
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) ListForRecipient(_ context.Context, recipientEmail string) ([]*model.AppointmentWithName, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AppointmentWithName
	for _, a := range r.byID {
		if a.RecipientEmail == recipientEmail {
			out = append(out, &model.AppointmentWithName{Appointment: *a, CounterpartName: r.names[a.ProviderEmail]})
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) CompleteAllOn(_ context.Context, date time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.byID {
		if sameDay(a.Date, date) && a.Status != model.AppointmentStatusCompleted {
			a.Status = model.AppointmentStatusCompleted
			a.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

type captureBroker struct {
	mu       sync.Mutex
	messages []interface{}
}

func (b *captureBroker) Publish(_ context.Context, _ string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, message)
	return nil
}

func (b *captureBroker) Subscribe(context.Context, string) (<-chan []byte, error) { return nil, nil }
func (b *captureBroker) Close() error                                            { return nil }

func (b *captureBroker) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, cfg config.SchedulingConfig) (*Service, *memPolicyRepo, *memAppointmentRepo, *captureBroker) {
	t.Helper()
	appointments := newMemAppointmentRepo()
	policies := newMemPolicyRepo(appointments)
	broker := &captureBroker{}
	svc := NewService(policies, appointments, broker, logger.NewLogger(nil), cfg).
		WithClock(func() time.Time { return testNow })
	return svc, policies, appointments, broker
}

func defaultConfig() config.SchedulingConfig {
	return config.SchedulingConfig{StrictTransitions: true, EnforceClosingTime: true}
}

func configurePolicy(t *testing.T, svc *Service, id uuid.UUID, opening, closing string, duration int) *model.SchedulePolicy {
	t.Helper()
	policy, err := svc.ConfigurePolicy(context.Background(), id, &model.ConfigureScheduleRequest{
		OpeningTime:         opening,
		ClosingTime:         closing,
		AppointmentDuration: duration,
		Mode:                model.ScheduleModeAuto,
	})
	require.NoError(t, err)
	return policy
}

func TestCreatePolicy(t *testing.T) {
	svc, _, _, _ := newTestService(t, defaultConfig())
	ctx := context.Background()

	policy, err := svc.CreatePolicy(ctx, "doc@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleModeStatic, policy.Mode)
	assert.Nil(t, policy.OpeningTime)
	assert.Nil(t, policy.ClosingTime)
	assert.Nil(t, policy.AppointmentDuration)
	assert.Nil(t, policy.LastAppointmentTime)

	_, err = svc.CreatePolicy(ctx, "doc@example.com")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
}

func TestConfigurePolicyValidation(t *testing.T) {
	svc, policies, _, _ := newTestService(t, defaultConfig())
	ctx := context.Background()

	policy, err := svc.CreatePolicy(ctx, "doc@example.com")
	require.NoError(t, err)

	tests := []struct {
		name string
		req  model.ConfigureScheduleRequest
	}{
		{"missing opening", model.ConfigureScheduleRequest{ClosingTime: "17:00:00", AppointmentDuration: 30, Mode: model.ScheduleModeAuto}},
		{"missing duration", model.ConfigureScheduleRequest{OpeningTime: "09:00:00", ClosingTime: "17:00:00", Mode: model.ScheduleModeAuto}},
		{"missing mode", model.ConfigureScheduleRequest{OpeningTime: "09:00:00", ClosingTime: "17:00:00", AppointmentDuration: 30}},
		{"bad opening", model.ConfigureScheduleRequest{OpeningTime: "25:00:00", ClosingTime: "17:00:00", AppointmentDuration: 30, Mode: model.ScheduleModeAuto}},
		{"closing before opening", model.ConfigureScheduleRequest{OpeningTime: "17:00:00", ClosingTime: "09:00:00", AppointmentDuration: 30, Mode: model.ScheduleModeAuto}},
		{"bad mode", model.ConfigureScheduleRequest{OpeningTime: "09:00:00", ClosingTime: "17:00:00", AppointmentDuration: 30, Mode: "Manual"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ConfigurePolicy(ctx, policy.ID, &tt.req)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation), "got %v", err)
		})
	}

	// Rejected configurations must leave the policy untouched.
	stored, err := policies.Get(ctx, policy.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.OpeningTime)
	assert.Nil(t, stored.LastAppointmentTime)
	assert.Equal(t, model.ScheduleModeStatic, stored.Mode)
}

func TestConfigurePolicyRewindsCursor(t *testing.T) {
	svc, _, _, _ := newTestService(t, defaultConfig())
	ctx := context.Background()

	created, err := svc.CreatePolicy(ctx, "doc@example.com")
	require.NoError(t, err)

	policy := configurePolicy(t, svc, created.ID, "09:00:00", "17:00:00", 30)
	require.NotNil(t, policy.LastAppointmentTime)
	assert.Equal(t, "09:00:00", policy.LastAppointmentTime.String())

	// Consume a slot, then reconfigure: the cursor starts over.
	_, _, err = svc.AllocateAuto(ctx, created.ID, "pat@example.com")
	require.NoError(t, err)

	policy = configurePolicy(t, svc, created.ID, "10:00:00", "18:00:00", 45)
	assert.Equal(t, "10:00:00", policy.LastAppointmentTime.String())
	assert.Equal(t, 45, *policy.AppointmentDuration)
}

func TestAllocateAutoContiguousSlots(t *testing.T) {
	svc, _, _, _ := newTestService(t, defaultConfig())
	ctx := context.Background()

	created, err := svc.CreatePolicy(ctx, "doc@example.com")
	require.NoError(t, err)
	configurePolicy(t, svc, created.ID, "09:00:00", "17:00:00", 30)

	policy, first, err := svc.AllocateAuto(ctx, created.ID, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", first.StartTime.String())
	assert.Equal(t, "09:30:00", first.EndTime.String())
	assert.Equal(t, "09:30:00", policy.LastAppointmentTime.String())
	assert.Equal(t, model.AppointmentStatusReserved, first.Status)
	assert.Equal(t, "doc@example.com", first.ProviderEmail)
	assert.True(t, sameDay(first.Date, testNow))

	policy, second, err := svc.AllocateAuto(ctx, created.ID, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", second.StartTime.String())
	assert.Equal(t, "10:00:00", second.EndTime.String())
	assert.Equal(t, "10:00:00", policy.LastAppointmentTime.String())
}

func TestAllocateAutoRequiresConfiguration(t *testing.T) {
	svc, _, appointments, _ := newTestService(t, defaultConfig())
	ctx := context.Background()

	created, err := svc.CreatePolicy(ctx, "doc@example.com")
	require.NoError(t, err)

	_, _, err = svc.AllocateAuto(ctx, created.ID, "pat@example.com")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
	assert.Empty(t, appointments.byID)
}

func TestAllocateAutoUnknownPolicy(t *testing.T) {
	svc, _, _, _ := newTestService(t, defaultConfig())

	_, _, err := svc.AllocateAuto(context.Background(), uuid.New(), "pat@example.com")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestAllocateAutoStopsAtClosingTime(t *testing.T) {
	svc, policies, appointments, _ := newTestService(t, defaultConfig())
	ctx := context.Background()

	created, err := svc.CreatePolicy(ctx, "doc@example.com")
	require.NoError(t, err)
	configurePolicy(t, svc, created.ID, "09:00:00", "10:00:00", 30)

	for i := 0; i < 2; i++ {
		_, _, err := svc.AllocateAuto(ctx, created.ID, "pat@example.com")
		require.NoError(t, err)
	}

	_, _, err = svc.AllocateAuto(ctx, created.ID, "pat@example.com")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict), "got %v", err)

	// The rejected allocation left no trace.
	assert.Len(t, appointments.byID, 2)
	stored, err := policies.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "10:00:00", stored.LastAppointmentTime.String())
}

func TestAllocateAutoIgnoresClosingTimeWhenDisabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.EnforceClosingTime = false
	svc, _, _, _ := newTestService(t, cfg)
	ctx := context.Background()

	created, err := svc.CreatePolicy(ctx, "doc@example.com")
	require.NoError(t, err)
	configurePolicy(t, svc, created.ID, "09:00:00", "09:30:00", 30)

	_, _, err = svc.AllocateAuto(ctx, created.ID, "pat@example.com")
	require.NoError(t, err)
	_, past, err := svc.AllocateAuto(ctx, created.ID, "pat@example.com")
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", past.StartTime.String())
	assert.Equal(t, "10:00:00", past.EndTime.String())
}

func TestAllocateAutoConcurrent(t *testing.T) {
	svc, policies, _, _ := newTestService(t, defaultConfig())
	ctx := context.Background()

	created, err := svc.CreatePolicy(ctx, "doc@example.com")
	require.NoError(t, err)
	const n, duration = 60, 10
	configurePolicy(t, svc, created.ID, "08:00:00", "20:00:00", duration)

	results := make(chan *model.Appointment, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, appointment, err := svc.AllocateAuto(ctx, created.ID, "pat@example.com")
			if err != nil {
				errs <- err
				return
			}
			results <- appointment
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("allocation failed: %v", err)
	}

	var appointments []*model.Appointment
	for a := range results {
		appointments = append(appointments, a)
	}
	require.Len(t, appointments, n)

	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].StartTime.TotalSeconds() < appointments[j].StartTime.TotalSeconds()
	})

	// Pairwise distinct and non-overlapping: each slot ends exactly where
	// the next one starts.
	for i := 0; i < n; i++ {
		a := appointments[i]
		assert.Equal(t, duration*60, a.EndTime.TotalSeconds()-a.StartTime.TotalSeconds())
		if i > 0 {
			assert.Equal(t, appointments[i-1].EndTime.String(), a.StartTime.String())
		}
	}
	assert.Equal(t, "08:00:00", appointments[0].StartTime.String())

	stored, err := policies.Get(ctx, created.ID)
	require.NoError(t, err)
	opening := model.TimeOfDay{Hour: 8}
	assert.Equal(t, opening.AddMinutes(n*duration).String(), stored.LastAppointmentTime.String())
}

func TestAllocateStatic(t *testing.T) {
	svc, _, _, broker := newTestService(t, defaultConfig())
	ctx := context.Background()

	created, err := svc.CreatePolicy(ctx, "doc@example.com")
	require.NoError(t, err)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	appointment, err := svc.AllocateStatic(ctx, created.ID, "pat@example.com", date, "first visit")
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusWaiting, appointment.Status)
	assert.Nil(t, appointment.StartTime)
	assert.Nil(t, appointment.EndTime)
	assert.Equal(t, "doc@example.com", appointment.ProviderEmail)
	assert.Equal(t, "first visit", appointment.Note)
	assert.Equal(t, 1, broker.count())
}

func TestChangeStatus(t *testing.T) {
	svc, _, appointments, _ := newTestService(t, defaultConfig())
	ctx := context.Background()

	created, err := svc.CreatePolicy(ctx, "doc@example.com")
	require.NoError(t, err)
	appointment, err := svc.AllocateStatic(ctx, created.ID, "pat@example.com", testNow, "")
	require.NoError(t, err)

	// Waiting -> Reserved
	updated, err := svc.ChangeStatus(ctx, appointment.ID, model.AppointmentStatusReserved)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusReserved, updated.Status)

	// Same status again is a no-op, not an error.
	updated, err = svc.ChangeStatus(ctx, appointment.ID, model.AppointmentStatusReserved)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusReserved, updated.Status)

	// Reserved -> Completed, then out of the terminal state is rejected.
	_, err = svc.ChangeStatus(ctx, appointment.ID, model.AppointmentStatusCompleted)
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, appointment.ID, model.AppointmentStatusCancelled)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))

	stored, err := appointments.Get(ctx, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, stored.Status)
}

func TestChangeStatusRejectsUnknownStatusAndID(t *testing.T) {
	svc, _, _, _ := newTestService(t, defaultConfig())
	ctx := context.Background()

	_, err := svc.ChangeStatus(ctx, uuid.New(), "Pending")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))

	_, err = svc.ChangeStatus(ctx, uuid.New(), model.AppointmentStatusCancelled)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestChangeStatusUnrestrictedWhenStrictDisabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.StrictTransitions = false
	svc, _, _, _ := newTestService(t, cfg)
	ctx := context.Background()

	created, err := svc.CreatePolicy(ctx, "doc@example.com")
	require.NoError(t, err)
	appointment, err := svc.AllocateStatic(ctx, created.ID, "pat@example.com", testNow, "")
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, appointment.ID, model.AppointmentStatusCompleted)
	require.NoError(t, err)
	updated, err := svc.ChangeStatus(ctx, appointment.ID, model.AppointmentStatusWaiting)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusWaiting, updated.Status)
}

func TestListAppointmentsFor(t *testing.T) {
	svc, _, _, _ := newTestService(t, defaultConfig())
	ctx := context.Background()

	created, err := svc.CreatePolicy(ctx, "doc@example.com")
	require.NoError(t, err)
	_, err = svc.AllocateStatic(ctx, created.ID, "pat@example.com", testNow, "")
	require.NoError(t, err)
	_, err = svc.AllocateStatic(ctx, created.ID, "other@example.com", testNow, "")
	require.NoError(t, err)

	forProvider, err := svc.ListAppointmentsFor(ctx, "doc@example.com", model.UserRoleProvider)
	require.NoError(t, err)
	assert.Len(t, forProvider, 2)

	forRecipient, err := svc.ListAppointmentsFor(ctx, "pat@example.com", model.UserRoleRecipient)
	require.NoError(t, err)
	assert.Len(t, forRecipient, 1)

	empty, err := svc.ListAppointmentsFor(ctx, "nobody@example.com", model.UserRoleRecipient)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRunDayBoundaryReset(t *testing.T) {
	svc, policies, appointments, _ := newTestService(t, defaultConfig())
	ctx := context.Background()

	created, err := svc.CreatePolicy(ctx, "doc@example.com")
	require.NoError(t, err)
	configurePolicy(t, svc, created.ID, "09:00:00", "17:00:00", 30)

	// A second provider who never configured a schedule.
	unconfigured, err := svc.CreatePolicy(ctx, "other@example.com")
	require.NoError(t, err)

	_, reserved, err := svc.AllocateAuto(ctx, created.ID, "pat@example.com")
	require.NoError(t, err)
	waiting, err := svc.AllocateStatic(ctx, created.ID, "pat@example.com", testNow, "")
	require.NoError(t, err)

	// Yesterday's record must survive the sweep untouched.
	yesterday := &model.Appointment{
		ProviderEmail:  "doc@example.com",
		RecipientEmail: "pat@example.com",
		Date:           testNow.AddDate(0, 0, -1),
		Status:         model.AppointmentStatusReserved,
	}
	require.NoError(t, appointments.Create(ctx, yesterday))

	require.NoError(t, svc.RunDayBoundaryReset(ctx))

	for _, id := range []uuid.UUID{reserved.ID, waiting.ID} {
		stored, err := appointments.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusCompleted, stored.Status)
	}
	stale, err := appointments.Get(ctx, yesterday.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusReserved, stale.Status)

	stored, err := policies.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", stored.LastAppointmentTime.String())

	storedUnconfigured, err := policies.Get(ctx, unconfigured.ID)
	require.NoError(t, err)
	assert.Nil(t, storedUnconfigured.LastAppointmentTime)

	// Running the sweep again changes nothing.
	require.NoError(t, svc.RunDayBoundaryReset(ctx))
	stored, err = policies.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", stored.LastAppointmentTime.String())
}

func TestOperationsPublishEvents(t *testing.T) {
	svc, _, _, broker := newTestService(t, defaultConfig())
	ctx := context.Background()

	created, err := svc.CreatePolicy(ctx, "doc@example.com")
	require.NoError(t, err)
	configurePolicy(t, svc, created.ID, "09:00:00", "17:00:00", 30)

	_, appointment, err := svc.AllocateAuto(ctx, created.ID, "pat@example.com")
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, appointment.ID, model.AppointmentStatusCompleted)
	require.NoError(t, err)

	assert.Equal(t, 2, broker.count())
}
