package scheduling

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/appointy/booking-api/internal/config"
	"github.com/appointy/booking-api/internal/model"
	"github.com/appointy/booking-api/internal/repository"
	apperrors "github.com/appointy/booking-api/pkg/errors"
	"github.com/appointy/booking-api/pkg/logger"
	"github.com/appointy/booking-api/pkg/messaging"
)

const eventChannel = "appointments"

// Service is the slot allocation and lifecycle engine. Auto mode treats a
// provider's day as a contiguous ledger of fixed-size slots consumed in
// arrival order: the cursor only ever moves forward, cancellations do not
// reclaim their slot. That trades packing optimality for O(1) allocation and
// conflict-freedom under the repository's per-policy serialization.
type Service struct {
	policies     repository.SchedulePolicyRepository
	appointments repository.AppointmentRepository
	broker       messaging.Broker
	logger       *logger.Logger
	cfg          config.SchedulingConfig
	now          func() time.Time
}

func NewService(
	policies repository.SchedulePolicyRepository,
	appointments repository.AppointmentRepository,
	broker messaging.Broker,
	logger *logger.Logger,
	cfg config.SchedulingConfig,
) *Service {
	return &Service{
		policies:     policies,
		appointments: appointments,
		broker:       broker,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
	}
}

// WithClock overrides the service clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreatePolicy provisions the empty Static-mode policy a provider gets at
// registration. One policy per provider.
func (s *Service) CreatePolicy(ctx context.Context, providerEmail string) (*model.SchedulePolicy, error) {
	if existing, err := s.policies.GetByProvider(ctx, providerEmail); err == nil && existing != nil {
		return nil, apperrors.Conflict("schedule policy already exists for provider", nil)
	}

	policy := &model.SchedulePolicy{
		ProviderEmail: providerEmail,
		Mode:          model.ScheduleModeStatic,
	}
	if err := s.policies.Create(ctx, policy); err != nil {
		return nil, s.storeErr(err, "schedule policy")
	}
	return policy, nil
}

// PolicyForProvider resolves a provider's policy by its owning identity.
func (s *Service) PolicyForProvider(ctx context.Context, providerEmail string) (*model.SchedulePolicy, error) {
	policy, err := s.policies.GetByProvider(ctx, providerEmail)
	if err != nil {
		return nil, s.storeErr(err, "schedule policy")
	}
	return policy, nil
}

func (s *Service) GetPolicy(ctx context.Context, id uuid.UUID) (*model.SchedulePolicy, error) {
	policy, err := s.policies.Get(ctx, id)
	if err != nil {
		return nil, s.storeErr(err, "schedule policy")
	}
	return policy, nil
}

// ConfigurePolicy sets working hours, slot duration and mode. All four
// fields are mandatory. The cursor rewinds to the new opening time so the
// next Auto allocation starts the day from scratch.
func (s *Service) ConfigurePolicy(ctx context.Context, id uuid.UUID, req *model.ConfigureScheduleRequest) (*model.SchedulePolicy, error) {
	if req.OpeningTime == "" || req.ClosingTime == "" || req.AppointmentDuration <= 0 || req.Mode == "" {
		return nil, apperrors.Validation("opening_time, closing_time, appointment_duration and mode are required", nil)
	}
	if req.Mode != model.ScheduleModeAuto && req.Mode != model.ScheduleModeStatic {
		return nil, apperrors.Validation(fmt.Sprintf("invalid mode %q", req.Mode), nil)
	}

	opening, err := model.ParseTimeOfDay(req.OpeningTime)
	if err != nil {
		return nil, apperrors.Validation("invalid opening_time", err)
	}
	closing, err := model.ParseTimeOfDay(req.ClosingTime)
	if err != nil {
		return nil, apperrors.Validation("invalid closing_time", err)
	}
	if !closing.After(opening) {
		return nil, apperrors.Validation("closing_time must be after opening_time", nil)
	}

	policy, err := s.policies.Get(ctx, id)
	if err != nil {
		return nil, s.storeErr(err, "schedule policy")
	}

	duration := req.AppointmentDuration
	cursor := opening
	policy.OpeningTime = &opening
	policy.ClosingTime = &closing
	policy.AppointmentDuration = &duration
	policy.LastAppointmentTime = &cursor
	policy.Mode = req.Mode

	if err := s.policies.Configure(ctx, policy); err != nil {
		return nil, s.storeErr(err, "schedule policy")
	}
	return policy, nil
}

// AllocateAuto books the next slot on the policy's ledger: start is the
// cursor, end is start plus the configured duration, and the cursor moves to
// end. The repository runs the callback under the policy's row lock, so the
// record insert and cursor advance land atomically.
func (s *Service) AllocateAuto(ctx context.Context, policyID uuid.UUID, recipientEmail string) (*model.SchedulePolicy, *model.Appointment, error) {
	today := s.today()

	policy, appointment, err := s.policies.AllocateSlot(ctx, policyID, func(p *model.SchedulePolicy) (*model.Appointment, error) {
		if p.LastAppointmentTime == nil || p.AppointmentDuration == nil {
			return nil, apperrors.Validation("schedule policy is missing required settings", nil)
		}

		start := *p.LastAppointmentTime
		end := start.AddMinutes(*p.AppointmentDuration)

		if s.cfg.EnforceClosingTime && p.ClosingTime != nil {
			endSeconds := start.TotalSeconds() + *p.AppointmentDuration*60
			if endSeconds > p.ClosingTime.TotalSeconds() {
				return nil, apperrors.Conflict("no slots left before closing time", nil)
			}
		}

		p.LastAppointmentTime = &end

		return &model.Appointment{
			ProviderEmail:  p.ProviderEmail,
			RecipientEmail: recipientEmail,
			Date:           today,
			StartTime:      &start,
			EndTime:        &end,
			Status:         model.AppointmentStatusReserved,
		}, nil
	})
	if err != nil {
		return nil, nil, s.storeErr(err, "schedule policy")
	}

	s.publish(ctx, "appointment.reserved", appointment)
	return policy, appointment, nil
}

// AllocateStatic records a request for a whole day. No times, no cursor:
// the provider schedules it out of band.
func (s *Service) AllocateStatic(ctx context.Context, policyID uuid.UUID, recipientEmail string, date time.Time, note string) (*model.Appointment, error) {
	policy, err := s.policies.Get(ctx, policyID)
	if err != nil {
		return nil, s.storeErr(err, "schedule policy")
	}

	appointment := &model.Appointment{
		ProviderEmail:  policy.ProviderEmail,
		RecipientEmail: recipientEmail,
		Date:           date,
		Status:         model.AppointmentStatusWaiting,
		Note:           note,
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, s.storeErr(err, "appointment")
	}

	s.publish(ctx, "appointment.requested", appointment)
	return appointment, nil
}

// ChangeStatus moves an appointment through its state machine. With strict
// transitions enabled, writes out of a terminal state are rejected;
// otherwise the status is overwritten unconditionally, matching the legacy
// behavior. Same-status writes always succeed.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	if !model.ValidStatus(status) {
		return nil, apperrors.Validation(fmt.Sprintf("invalid status %q", status), nil)
	}

	if s.cfg.StrictTransitions {
		current, err := s.appointments.Get(ctx, id)
		if err != nil {
			return nil, s.storeErr(err, "appointment")
		}
		if !model.CanTransition(current.Status, status) {
			return nil, apperrors.Validation(
				fmt.Sprintf("illegal status transition %s -> %s", current.Status, status), nil)
		}
	}

	appointment, err := s.appointments.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, s.storeErr(err, "appointment")
	}

	s.publish(ctx, "appointment.status_changed", appointment)
	return appointment, nil
}

// ListAppointmentsFor returns the caller's appointments: everything a
// provider owns, or everything booked by a recipient, each row joined with
// the counterpart's display name.
func (s *Service) ListAppointmentsFor(ctx context.Context, identity string, role model.UserRole) ([]*model.AppointmentWithName, error) {
	var (
		appointments []*model.AppointmentWithName
		err          error
	)
	if role == model.UserRoleProvider {
		appointments, err = s.appointments.ListForProvider(ctx, identity)
	} else {
		appointments, err = s.appointments.ListForRecipient(ctx, identity)
	}
	if err != nil {
		return nil, s.storeErr(err, "appointments")
	}
	return appointments, nil
}

// RunDayBoundaryReset finalizes the day: every appointment dated today goes
// to Completed regardless of its prior status, then every policy's cursor
// rewinds to its opening time. Both steps are idempotent; a partial failure
// is safe to retry on the next tick. Cursor resets go policy by policy under
// the same lock discipline as allocations.
func (s *Service) RunDayBoundaryReset(ctx context.Context) error {
	today := s.today()

	completed, err := s.appointments.CompleteAllOn(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to finalize appointments: %w", err)
	}

	ids, err := s.policies.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list schedule policies: %w", err)
	}

	var failed int
	for _, id := range ids {
		if err := s.policies.ResetCursor(ctx, id); err != nil {
			failed++
			s.logger.WithFields(map[string]interface{}{"policy_id": id.String()}).
				Error(err, "failed to reset schedule cursor")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"appointments_completed": completed,
		"policies":               len(ids),
		"cursor_failures":        failed,
	}).Info("day-boundary reset complete")

	if failed > 0 {
		return fmt.Errorf("day-boundary reset: %d of %d cursor resets failed", failed, len(ids))
	}
	return nil
}

func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// publish is fire-and-forget: lifecycle events never fail the operation
// that produced them.
func (s *Service) publish(ctx context.Context, eventType string, payload interface{}) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, eventChannel, messaging.Message{Type: eventType, Payload: payload}); err != nil {
		s.logger.WithFields(map[string]interface{}{"event": eventType}).
			Warn(err, "failed to publish event")
	}
}

func (s *Service) storeErr(err error, resource string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, err)
	}
	return apperrors.Internal(err)
}
