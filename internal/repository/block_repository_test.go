package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shop-booking-api/internal/models"
)

func TestBlockRepositoryListFiltersByDayAndProfessional(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBlockRepository(db)

	from := time.Date(2030, 1, 7, 3, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	pro := "pro-1"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+blockColumns+" FROM blocks WHERE start_at < $1 AND (end_at > $2 OR start_at >= $2) AND (is_general = TRUE OR professional_id = $3) ORDER BY start_at ASC")).
		WithArgs(to, from, pro).
		WillReturnRows(sqlmock.NewRows([]string{"id", "professional_id", "start_at", "end_at", "reason", "is_general", "created_at"}).
			AddRow("b1", pro, from.Add(16*time.Hour), from.Add(16*time.Hour+30*time.Minute), "Lunch", false, from).
			AddRow("b2", nil, from, to, "Holiday", true, from))

	blocks, err := repo.List(context.Background(), models.BlockFilter{From: from, To: to, ProfessionalID: pro})
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	require.NotNil(t, blocks[0].ProfessionalID)
	assert.Equal(t, pro, *blocks[0].ProfessionalID)
	assert.Nil(t, blocks[1].ProfessionalID)
	assert.True(t, blocks[1].IsGeneral)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBlockRepository(db)

	pro := "pro-1"
	start := time.Date(2030, 1, 7, 16, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO blocks").
		WithArgs(anyString{}, &pro, start, start.Add(30*time.Minute), "Lunch", false, anyTime{}).
		WillReturnResult(sqlmock.NewResult(1, 1))

	block := &models.Block{ProfessionalID: &pro, StartAt: start, EndAt: start.Add(30 * time.Minute), Reason: "Lunch"}
	require.NoError(t, repo.Create(context.Background(), block))
	assert.NotEmpty(t, block.ID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM blocks WHERE id = $1")).
		WithArgs(block.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM blocks WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), block.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
