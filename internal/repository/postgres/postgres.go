package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/appointy/booking-api/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

type schedulePolicyRepository struct {
	db *sqlx.DB
}

type appointmentRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func NewSchedulePolicyRepository(db *sqlx.DB) repository.SchedulePolicyRepository {
	return &schedulePolicyRepository{db: db}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}
