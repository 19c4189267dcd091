package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/barberhq/booking-api/internal/model"
	apperrors "github.com/barberhq/booking-api/pkg/errors"
)

// The schema carries a partial unique index on (shop_id, date, time_slot)
// restricted to active statuses:
//
//	CREATE UNIQUE INDEX appointments_active_slot_idx
//	    ON appointments (shop_id, date, time_slot)
//	    WHERE status IN ('pending', 'confirmed');
//
// That index, not the application-level pre-check, is the arbiter between
// concurrent bookings of the same slot. Supporting indexes exist on
// (shop_id, date) and on client_id.
const activeSlotConstraint = "appointments_active_slot_idx"

const appointmentColumns = `
	id, client_id, shop_id, date, time_slot, service, status,
	created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, client_id, shop_id, date, time_slot, service, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.ClientID,
		appointment.ShopID,
		appointment.Date,
		appointment.TimeSlot,
		appointment.Service,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == activeSlotConstraint {
			return apperrors.NewSlotTaken(appointment.DateKey(), appointment.TimeSlot)
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) List(ctx context.Context) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments ORDER BY date ASC, created_at ASC`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByShop(ctx context.Context, shopID string) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE shop_id = $1 ORDER BY date ASC, created_at ASC`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, shopID); err != nil {
		return nil, fmt.Errorf("failed to list appointments for shop: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByClient(ctx context.Context, clientID string) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE client_id = $1 ORDER BY date ASC, created_at ASC`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, clientID); err != nil {
		return nil, fmt.Errorf("failed to list appointments for client: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByShopAndDate(ctx context.Context, shopID string, date time.Time) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE shop_id = $1 AND date = $2::date ORDER BY created_at ASC`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, shopID, date); err != nil {
		return nil, fmt.Errorf("failed to list appointments for shop and date: %w", err)
	}
	return appointments, nil
}

// UpdateStatus applies any status to any appointment. Legal transition
// enforcement belongs to the caller.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + appointmentColumns

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, status, time.Now(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM appointments WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("appointment", sql.ErrNoRows)
	}

	return nil
}

// FindActiveBySlot returns the pending/confirmed appointment occupying the
// slot, or nil when the slot is free.
func (r *appointmentRepository) FindActiveBySlot(ctx context.Context, shopID string, date time.Time, timeSlot string) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE shop_id = $1
		AND date = $2::date
		AND time_slot = $3
		AND status IN ('pending', 'confirmed')
		LIMIT 1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, shopID, date, timeSlot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active appointment for slot: %w", err)
	}
	return &appointment, nil
}

// MarkCompletedBefore moves confirmed appointments with a past date to
// completed. Used by the worker sweep.
func (r *appointmentRepository) MarkCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE appointments
		SET status = 'completed', updated_at = $1
		WHERE status = 'confirmed'
		AND date < $2::date
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to mark appointments completed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
