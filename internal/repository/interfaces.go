package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/appointy/booking-api/internal/model"
)

// AllocateFunc computes the appointment for the next slot and advances the
// policy's cursor. Implementations of SchedulePolicyRepository invoke it with
// exclusive access to the policy row and persist both the returned
// appointment and the mutated cursor in the same transaction, or neither.
type AllocateFunc func(policy *model.SchedulePolicy) (*model.Appointment, error)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

type SchedulePolicyRepository interface {
	Create(ctx context.Context, policy *model.SchedulePolicy) error
	Get(ctx context.Context, id uuid.UUID) (*model.SchedulePolicy, error)
	GetByProvider(ctx context.Context, providerEmail string) (*model.SchedulePolicy, error)
	// Configure overwrites the availability fields, including the cursor.
	Configure(ctx context.Context, policy *model.SchedulePolicy) error
	// AllocateSlot runs alloc under the policy's row lock. This is the
	// serialization point that keeps concurrent Auto allocations from
	// consuming the same cursor value.
	AllocateSlot(ctx context.Context, id uuid.UUID, alloc AllocateFunc) (*model.SchedulePolicy, *model.Appointment, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	// ResetCursor rewinds last_appointment_time to opening_time under the
	// same row lock discipline as AllocateSlot.
	ResetCursor(ctx context.Context, id uuid.UUID) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error)
	ListForProvider(ctx context.Context, providerEmail string) ([]*model.AppointmentWithName, error)
	ListForRecipient(ctx context.Context, recipientEmail string) ([]*model.AppointmentWithName, error)
	// CompleteAllOn finalizes every appointment dated on the given day,
	// whatever its prior status, and reports how many rows it touched.
	CompleteAllOn(ctx context.Context, date time.Time) (int64, error)
}
