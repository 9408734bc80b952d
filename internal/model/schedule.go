package model

import (
	"time"

	"github.com/google/uuid"
)

type ScheduleMode string

const (
	// ScheduleModeAuto derives slots in fixed-size increments from the
	// policy's moving cursor.
	ScheduleModeAuto ScheduleMode = "Auto"
	// ScheduleModeStatic books whole days; concrete times are assigned
	// by the provider out of band.
	ScheduleModeStatic ScheduleMode = "Static"
)

// SchedulePolicy is a provider's configured availability. Time fields stay
// nil from registration until the provider configures working hours.
// LastAppointmentTime is the allocation cursor: the start of the next Auto
// slot, advanced on every allocation and rewound to OpeningTime by the
// day-boundary reset.
type SchedulePolicy struct {
	ID                  uuid.UUID    `db:"id" json:"id"`
	ProviderEmail       string       `db:"provider_email" json:"provider_email"`
	OpeningTime         *TimeOfDay   `db:"opening_time" json:"opening_time,omitempty"`
	ClosingTime         *TimeOfDay   `db:"closing_time" json:"closing_time,omitempty"`
	AppointmentDuration *int         `db:"appointment_duration" json:"appointment_duration,omitempty"`
	LastAppointmentTime *TimeOfDay   `db:"last_appointment_time" json:"last_appointment_time,omitempty"`
	Mode                ScheduleMode `db:"mode" json:"mode"`
	CreatedAt           time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time    `db:"updated_at" json:"updated_at"`
}

type ConfigureScheduleRequest struct {
	OpeningTime         string       `json:"opening_time" binding:"required,timeofday"`
	ClosingTime         string       `json:"closing_time" binding:"required,timeofday"`
	AppointmentDuration int          `json:"appointment_duration" binding:"required,gt=0"`
	Mode                ScheduleMode `json:"mode" binding:"required,oneof=Auto Static"`
}
