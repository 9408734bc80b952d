package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusWaiting   AppointmentStatus = "Waiting"
	AppointmentStatusReserved  AppointmentStatus = "Reserved"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
)

// ValidStatus reports whether s is one of the four appointment statuses.
func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case AppointmentStatusWaiting, AppointmentStatusReserved,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// statusTransitions is the legal state machine. A record moves Waiting to
// Reserved once scheduled and Reserved to Completed when done; either can be
// cancelled. Completed and Cancelled are terminal.
var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusWaiting:  {AppointmentStatusReserved, AppointmentStatusCancelled},
	AppointmentStatusReserved: {AppointmentStatusCompleted, AppointmentStatusCancelled},
}

// CanTransition reports whether from -> to is a legal status transition.
// Same-status writes are allowed so status changes stay idempotent.
func CanTransition(from, to AppointmentStatus) bool {
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Appointment is a booking between a provider and a recipient. StartTime and
// EndTime are nil for Static-mode requests until the provider schedules them;
// Auto-mode allocations populate both at creation. Records are never deleted
// by the engine, only moved through statuses.
type Appointment struct {
	ID             uuid.UUID         `db:"id" json:"id"`
	ProviderEmail  string            `db:"provider_email" json:"provider_email"`
	RecipientEmail string            `db:"recipient_email" json:"recipient_email"`
	Date           time.Time         `db:"date" json:"date"`
	StartTime      *TimeOfDay        `db:"start_time" json:"start_time,omitempty"`
	EndTime        *TimeOfDay        `db:"end_time" json:"end_time,omitempty"`
	Status         AppointmentStatus `db:"status" json:"status"`
	Note           string            `db:"note" json:"note,omitempty"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// AppointmentWithName joins the counterpart's display name for listings:
// providers see the recipient's name, recipients the provider's.
type AppointmentWithName struct {
	Appointment
	CounterpartName string `db:"counterpart_name" json:"name"`
}

type CreateStaticAppointmentRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
	Note string `json:"note" binding:"max=1000"`
}

type ChangeStatusRequest struct {
	ID     uuid.UUID         `json:"id" binding:"required"`
	Status AppointmentStatus `json:"status" binding:"required"`
}
