package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/appointy/booking-api/internal/model"
)

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, provider_email, recipient_email, date,
			start_time, end_time, status, note, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
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
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, provider_email, recipient_email, date,
			   start_time, end_time, status, note, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING id, provider_email, recipient_email, date,
				  start_time, end_time, status, note, created_at, updated_at
	`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, status, time.Now(), id); err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) ListForProvider(ctx context.Context, providerEmail string) ([]*model.AppointmentWithName, error) {
	query := `
		SELECT a.id, a.provider_email, a.recipient_email, a.date,
			   a.start_time, a.end_time, a.status, a.note,
			   a.created_at, a.updated_at, u.name AS counterpart_name
		FROM appointments a
		JOIN users u ON a.recipient_email = u.email
		WHERE a.provider_email = $1
		ORDER BY a.date, a.start_time
	`
	var appointments []*model.AppointmentWithName
	if err := r.db.SelectContext(ctx, &appointments, query, providerEmail); err != nil {
		return nil, fmt.Errorf("failed to list provider appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForRecipient(ctx context.Context, recipientEmail string) ([]*model.AppointmentWithName, error) {
	query := `
		SELECT a.id, a.provider_email, a.recipient_email, a.date,
			   a.start_time, a.end_time, a.status, a.note,
			   a.created_at, a.updated_at, u.name AS counterpart_name
		FROM appointments a
		JOIN users u ON a.provider_email = u.email
		WHERE a.recipient_email = $1
		ORDER BY a.date, a.start_time
	`
	var appointments []*model.AppointmentWithName
	if err := r.db.SelectContext(ctx, &appointments, query, recipientEmail); err != nil {
		return nil, fmt.Errorf("failed to list recipient appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) CompleteAllOn(ctx context.Context, date time.Time) (int64, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE date = $3
	`
	result, err := r.db.ExecContext(ctx, query, model.AppointmentStatusCompleted, time.Now(), date)
	if err != nil {
		return 0, fmt.Errorf("failed to complete appointments: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
