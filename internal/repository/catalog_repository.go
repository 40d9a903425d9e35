package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shop-booking-api/internal/models"
)

const serviceColumns = "id, name, price, duration_minutes, is_active, is_featured, created_at, updated_at"

// ServiceRepository reads the service catalog.
type ServiceRepository struct {
	db *sqlx.DB
}

// NewServiceRepository constructs a ServiceRepository.
func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// ListActive returns the services offered to clients, featured first.
func (r *ServiceRepository) ListActive(ctx context.Context) ([]models.Service, error) {
	query := fmt.Sprintf("SELECT %s FROM services WHERE is_active = TRUE ORDER BY is_featured DESC, name ASC", serviceColumns)
	var services []models.Service
	if err := r.db.SelectContext(ctx, &services, query); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// FindByID fetches a service by ID regardless of its active flag.
func (r *ServiceRepository) FindByID(ctx context.Context, id string) (*models.Service, error) {
	query := fmt.Sprintf("SELECT %s FROM services WHERE id = $1", serviceColumns)
	var svc models.Service
	if err := r.db.GetContext(ctx, &svc, query, id); err != nil {
		return nil, err
	}
	return &svc, nil
}
