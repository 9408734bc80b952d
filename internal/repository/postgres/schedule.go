package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/appointy/booking-api/internal/model"
	"github.com/appointy/booking-api/internal/repository"
)

func (r *schedulePolicyRepository) Create(ctx context.Context, policy *model.SchedulePolicy) error {
	query := `
		INSERT INTO schedule_policies (
			id, provider_email, opening_time, closing_time,
			appointment_duration, last_appointment_time, mode,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	policy.ID = uuid.New()
	policy.CreatedAt = time.Now()
	policy.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		policy.ID,
		policy.ProviderEmail,
		policy.OpeningTime,
		policy.ClosingTime,
		policy.AppointmentDuration,
		policy.LastAppointmentTime,
		policy.Mode,
		policy.CreatedAt,
		policy.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create schedule policy: %w", err)
	}
	return nil
}

func (r *schedulePolicyRepository) Get(ctx context.Context, id uuid.UUID) (*model.SchedulePolicy, error) {
	query := `
		SELECT id, provider_email, opening_time, closing_time,
			   appointment_duration, last_appointment_time, mode,
			   created_at, updated_at
		FROM schedule_policies
		WHERE id = $1
	`
	var policy model.SchedulePolicy
	if err := r.db.GetContext(ctx, &policy, query, id); err != nil {
		return nil, fmt.Errorf("failed to get schedule policy: %w", err)
	}
	return &policy, nil
}

func (r *schedulePolicyRepository) GetByProvider(ctx context.Context, providerEmail string) (*model.SchedulePolicy, error) {
	query := `
		SELECT id, provider_email, opening_time, closing_time,
			   appointment_duration, last_appointment_time, mode,
			   created_at, updated_at
		FROM schedule_policies
		WHERE provider_email = $1
	`
	var policy model.SchedulePolicy
	if err := r.db.GetContext(ctx, &policy, query, providerEmail); err != nil {
		return nil, fmt.Errorf("failed to get schedule policy: %w", err)
	}
	return &policy, nil
}

func (r *schedulePolicyRepository) Configure(ctx context.Context, policy *model.SchedulePolicy) error {
	query := `
		UPDATE schedule_policies
		SET opening_time = $1, closing_time = $2, appointment_duration = $3,
			last_appointment_time = $4, mode = $5, updated_at = $6
		WHERE id = $7
	`
	policy.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		policy.OpeningTime,
		policy.ClosingTime,
		policy.AppointmentDuration,
		policy.LastAppointmentTime,
		policy.Mode,
		policy.UpdatedAt,
		policy.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule policy: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("schedule policy not found")
	}
	return nil
}

// AllocateSlot serializes the read-cursor / compute-slot / write-cursor
// sequence on the policy row: the SELECT ... FOR UPDATE blocks any concurrent
// allocation for the same policy until the transaction commits, so a cursor
// value is consumed at most once. The appointment insert and cursor advance
// land together or not at all.
func (r *schedulePolicyRepository) AllocateSlot(ctx context.Context, id uuid.UUID, alloc repository.AllocateFunc) (*model.SchedulePolicy, *model.Appointment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var policy model.SchedulePolicy
	query := `
		SELECT id, provider_email, opening_time, closing_time,
			   appointment_duration, last_appointment_time, mode,
			   created_at, updated_at
		FROM schedule_policies
		WHERE id = $1
		FOR UPDATE
	`
	if err := tx.GetContext(ctx, &policy, query, id); err != nil {
		return nil, nil, fmt.Errorf("failed to lock schedule policy: %w", err)
	}

	appointment, err := alloc(&policy)
	if err != nil {
		return nil, nil, err
	}

	insert := `
		INSERT INTO appointments (
			id, provider_email, recipient_email, date,
			start_time, end_time, status, note, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	if _, err := tx.ExecContext(ctx, insert,
		appointment.ID,
		appointment.ProviderEmail,
		appointment.RecipientEmail,
		appointment.Date,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Note,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	policy.UpdatedAt = time.Now()
	update := `
		UPDATE schedule_policies
		SET last_appointment_time = $1, updated_at = $2
		WHERE id = $3
	`
	if _, err := tx.ExecContext(ctx, update, policy.LastAppointmentTime, policy.UpdatedAt, policy.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to advance cursor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit allocation: %w", err)
	}
	return &policy, appointment, nil
}

func (r *schedulePolicyRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM schedule_policies`); err != nil {
		return nil, fmt.Errorf("failed to list schedule policies: %w", err)
	}
	return ids, nil
}

// ResetCursor takes the same row lock as AllocateSlot, so the sweep cannot
// interleave with an in-flight allocation on the same policy.
func (r *schedulePolicyRepository) ResetCursor(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var policy model.SchedulePolicy
	query := `
		SELECT id, opening_time, last_appointment_time
		FROM schedule_policies
		WHERE id = $1
		FOR UPDATE
	`
	if err := tx.GetContext(ctx, &policy, query, id); err != nil {
		return fmt.Errorf("failed to lock schedule policy: %w", err)
	}

	update := `
		UPDATE schedule_policies
		SET last_appointment_time = opening_time, updated_at = $1
		WHERE id = $2
	`
	if _, err := tx.ExecContext(ctx, update, time.Now(), id); err != nil {
		return fmt.Errorf("failed to reset cursor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cursor reset: %w", err)
	}
	return nil
}
