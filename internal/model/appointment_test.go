package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]AppointmentStatus{
		{AppointmentStatusWaiting, AppointmentStatusReserved},
		{AppointmentStatusWaiting, AppointmentStatusCancelled},
		{AppointmentStatusReserved, AppointmentStatusCompleted},
		{AppointmentStatusReserved, AppointmentStatusCancelled},
	}
	for _, pair := range allowed {
		assert.True(t, CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}

	denied := [][2]AppointmentStatus{
		{AppointmentStatusWaiting, AppointmentStatusCompleted},
		{AppointmentStatusCompleted, AppointmentStatusReserved},
		{AppointmentStatusCompleted, AppointmentStatusCancelled},
		{AppointmentStatusCancelled, AppointmentStatusWaiting},
		{AppointmentStatusCancelled, AppointmentStatusReserved},
	}
	for _, pair := range denied {
		assert.False(t, CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}
}

func TestCanTransitionSameStatusIsIdempotent(t *testing.T) {
	for _, s := range []AppointmentStatus{
		AppointmentStatusWaiting, AppointmentStatusReserved,
		AppointmentStatusCompleted, AppointmentStatusCancelled,
	} {
		assert.True(t, CanTransition(s, s), string(s))
	}
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(AppointmentStatusWaiting))
	assert.True(t, ValidStatus(AppointmentStatusCancelled))
	assert.False(t, ValidStatus("Pending"))
	assert.False(t, ValidStatus(""))
}
