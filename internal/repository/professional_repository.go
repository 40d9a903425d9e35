package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shop-booking-api/internal/models"
)

const professionalColumns = "id, name, weekly_template, deposit_amount, created_at, updated_at"

// ProfessionalRepository manages professionals and their weekly templates.
type ProfessionalRepository struct {
	db *sqlx.DB
}

// NewProfessionalRepository constructs a ProfessionalRepository.
func NewProfessionalRepository(db *sqlx.DB) *ProfessionalRepository {
	return &ProfessionalRepository{db: db}
}

// List returns every professional ordered by name.
func (r *ProfessionalRepository) List(ctx context.Context) ([]models.Professional, error) {
	query := fmt.Sprintf("SELECT %s FROM professionals ORDER BY name ASC", professionalColumns)
	var professionals []models.Professional
	if err := r.db.SelectContext(ctx, &professionals, query); err != nil {
		return nil, fmt.Errorf("list professionals: %w", err)
	}
	return professionals, nil
}

// FindByID fetches a professional by ID.
func (r *ProfessionalRepository) FindByID(ctx context.Context, id string) (*models.Professional, error) {
	query := fmt.Sprintf("SELECT %s FROM professionals WHERE id = $1", professionalColumns)
	var professional models.Professional
	if err := r.db.GetContext(ctx, &professional, query, id); err != nil {
		return nil, err
	}
	return &professional, nil
}

// UpdateTemplate stores the weekly template as JSONB. Missing professionals
// yield sql.ErrNoRows.
func (r *ProfessionalRepository) UpdateTemplate(ctx context.Context, id string, template models.WeeklyTemplate) error {
	const query = `UPDATE professionals SET weekly_template = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, template, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update weekly template: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update weekly template rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
