package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shop-booking-api/internal/models"
)

const blockColumns = "id, professional_id, start_at, end_at, reason, is_general, created_at"

// BlockRepository persists general and particular blocks.
type BlockRepository struct {
	db *sqlx.DB
}

// NewBlockRepository constructs a BlockRepository.
func NewBlockRepository(db *sqlx.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

// List returns blocks intersecting [From, To). General blocks are always
// included; a professional filter narrows particular blocks only.
func (r *BlockRepository) List(ctx context.Context, filter models.BlockFilter) ([]models.Block, error) {
	var conditions []string
	var args []interface{}

	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conditions = append(conditions, fmt.Sprintf("start_at < $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conditions = append(conditions, fmt.Sprintf("(end_at > $%d OR start_at >= $%d)", len(args), len(args)))
	}
	if filter.ProfessionalID != "" {
		args = append(args, filter.ProfessionalID)
		conditions = append(conditions, fmt.Sprintf("(is_general = TRUE OR professional_id = $%d)", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM blocks", blockColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_at ASC"

	var blocks []models.Block
	if err := r.db.SelectContext(ctx, &blocks, query, args...); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}

// Create inserts a block, assigning its ID and creation time.
func (r *BlockRepository) Create(ctx context.Context, block *models.Block) error {
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	block.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO blocks (id, professional_id, start_at, end_at, reason, is_general, created_at)
VALUES (:id, :professional_id, :start_at, :end_at, :reason, :is_general, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("create block: %w", err)
	}
	return nil
}

// Delete removes a block and reports whether it existed.
func (r *BlockRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blocks WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete block: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete block rows: %w", err)
	}
	return affected > 0, nil
}
