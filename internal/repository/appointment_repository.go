package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shop-booking-api/internal/models"
	"github.com/noah-isme/shop-booking-api/pkg/database"
)

const appointmentColumns = "id, professional_id, service_id, client_id, start_at, duration_minutes, status, created_at, updated_at"

var (
	// ErrSlotTaken reports an overlap detected while holding the professional lock.
	ErrSlotTaken = errors.New("slot already taken")
	// ErrNotReschedulable reports an appointment whose status no longer allows moving it.
	ErrNotReschedulable = errors.New("appointment cannot be rescheduled")
)

// AppointmentRepository is the appointment ledger. Writes serialise per
// professional by locking the professional row for the transaction.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository constructs an AppointmentRepository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// List returns appointments starting inside [From, To) ordered by start.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	var conditions []string
	var args []interface{}

	if filter.ProfessionalID != "" {
		args = append(args, filter.ProfessionalID)
		conditions = append(conditions, fmt.Sprintf("professional_id = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conditions = append(conditions, fmt.Sprintf("start_at >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conditions = append(conditions, fmt.Sprintf("start_at < $%d", len(args)))
	}
	if !filter.IncludeCancelled {
		conditions = append(conditions, "status <> 'CANCELLED'")
	}

	query := fmt.Sprintf("SELECT %s FROM appointments", appointmentColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_at ASC"

	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, nil
}

// FindByID fetches an appointment by ID.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE id = $1", appointmentColumns)
	var appt models.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id); err != nil {
		return nil, err
	}
	return &appt, nil
}

// Create inserts appt after verifying, under the professional lock, that its
// interval overlaps no live appointment or block. day bounds the venue date
// used for general closures.
func (r *AppointmentRepository) Create(ctx context.Context, appt *models.Appointment, day models.DayRange) error {
	now := time.Now().UTC()
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if appt.Status == "" {
		appt.Status = models.AppointmentPending
	}
	appt.CreatedAt = now
	appt.UpdatedAt = now

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockProfessional(ctx, tx, appt.ProfessionalID); err != nil {
			return err
		}
		if err := ensureFree(ctx, tx, appt.ProfessionalID, appt.StartAt, appt.EndAt(), day, ""); err != nil {
			return err
		}
		const query = `INSERT INTO appointments (id, professional_id, service_id, client_id, start_at, duration_minutes, status, created_at, updated_at)
VALUES (:id, :professional_id, :service_id, :client_id, :start_at, :duration_minutes, :status, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, appt); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
}

// Reschedule moves an appointment to start, keeping its duration.
func (r *AppointmentRepository) Reschedule(ctx context.Context, id string, start time.Time, day models.DayRange) (*models.Appointment, error) {
	var updated models.Appointment
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := fmt.Sprintf("SELECT %s FROM appointments WHERE id = $1 FOR UPDATE", appointmentColumns)
		if err := tx.GetContext(ctx, &updated, query, id); err != nil {
			return err
		}
		if !updated.Status.Reschedulable() {
			return ErrNotReschedulable
		}
		if err := lockProfessional(ctx, tx, updated.ProfessionalID); err != nil {
			return err
		}
		end := start.Add(time.Duration(updated.DurationMinutes) * time.Minute)
		if err := ensureFree(ctx, tx, updated.ProfessionalID, start, end, day, id); err != nil {
			return err
		}
		updated.StartAt = start
		updated.UpdatedAt = time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `UPDATE appointments SET start_at = $2, updated_at = $3 WHERE id = $1`, id, updated.StartAt, updated.UpdatedAt); err != nil {
			return fmt.Errorf("reschedule appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func lockProfessional(ctx context.Context, tx *sqlx.Tx, professionalID string) error {
	var id string
	if err := tx.GetContext(ctx, &id, `SELECT id FROM professionals WHERE id = $1 FOR UPDATE`, professionalID); err != nil {
		return err
	}
	return nil
}

func ensureFree(ctx context.Context, tx *sqlx.Tx, professionalID string, start, end time.Time, day models.DayRange, excludeID string) error {
	query := `SELECT COUNT(*) FROM appointments WHERE professional_id = $1 AND status <> 'CANCELLED' AND start_at < $3 AND start_at + duration_minutes * INTERVAL '1 minute' > $2`
	args := []interface{}{professionalID, start, end}
	if excludeID != "" {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}
	var overlapping int
	if err := tx.GetContext(ctx, &overlapping, query, args...); err != nil {
		return fmt.Errorf("check appointment overlap: %w", err)
	}
	if overlapping > 0 {
		return ErrSlotTaken
	}

	const blockQuery = `SELECT COUNT(*) FROM blocks WHERE (is_general = FALSE AND professional_id = $1 AND start_at < $3 AND end_at > $2) OR (is_general = TRUE AND start_at < $5 AND (end_at > $4 OR start_at >= $4))`
	var blocked int
	if err := tx.GetContext(ctx, &blocked, blockQuery, professionalID, start, end, day.Start, day.End); err != nil {
		return fmt.Errorf("check block overlap: %w", err)
	}
	if blocked > 0 {
		return ErrSlotTaken
	}
	return nil
}
