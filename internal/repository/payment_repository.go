package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shop-booking-api/internal/models"
)

// PaymentPreferenceRepository stores checkout sessions created for appointments.
type PaymentPreferenceRepository struct {
	db *sqlx.DB
}

// NewPaymentPreferenceRepository constructs a PaymentPreferenceRepository.
func NewPaymentPreferenceRepository(db *sqlx.DB) *PaymentPreferenceRepository {
	return &PaymentPreferenceRepository{db: db}
}

// Create records a preference.
func (r *PaymentPreferenceRepository) Create(ctx context.Context, pref *models.PaymentPreference) error {
	if pref.ID == "" {
		pref.ID = uuid.NewString()
	}
	pref.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO payment_preferences (id, appointment_id, payment_option, amount, currency, provider_ref, redirect_url, created_at)
VALUES (:id, :appointment_id, :payment_option, :amount, :currency, :provider_ref, :redirect_url, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, pref); err != nil {
		return fmt.Errorf("create payment preference: %w", err)
	}
	return nil
}

// ListByAppointment returns the preferences of an appointment, newest first.
func (r *PaymentPreferenceRepository) ListByAppointment(ctx context.Context, appointmentID string) ([]models.PaymentPreference, error) {
	const query = `SELECT id, appointment_id, payment_option, amount, currency, provider_ref, redirect_url, created_at FROM payment_preferences WHERE appointment_id = $1 ORDER BY created_at DESC`
	var prefs []models.PaymentPreference
	if err := r.db.SelectContext(ctx, &prefs, query, appointmentID); err != nil {
		return nil, fmt.Errorf("list payment preferences: %w", err)
	}
	return prefs, nil
}
