package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shop-booking-api/internal/models"
)

func TestDefaultGridCells(t *testing.T) {
	cells := DefaultGrid().Cells()

	require.Len(t, cells, 26)
	assert.Equal(t, "09:00", cells[0].String())
	assert.Equal(t, "21:30", cells[len(cells)-1].String())
}

func TestGridFloorAndAligned(t *testing.T) {
	g := DefaultGrid()

	assert.Equal(t, models.MustTimeOfDay("10:00"), g.Floor(models.MustTimeOfDay("10:15")))
	assert.Equal(t, models.MustTimeOfDay("08:30"), g.Floor(models.MustTimeOfDay("08:45")))
	assert.True(t, g.Aligned(models.MustTimeOfDay("21:30")))
	assert.False(t, g.Aligned(models.MustTimeOfDay("22:00")))
	assert.False(t, g.Aligned(models.MustTimeOfDay("09:10")))
}

func TestParseGrid(t *testing.T) {
	g, err := ParseGrid("08:00", "12:00", time.Hour)
	require.NoError(t, err)
	assert.Len(t, g.Cells(), 4)

	_, err = ParseGrid("8am", "12:00", time.Hour)
	assert.Error(t, err)

	_, err = ParseGrid("12:00", "08:00", time.Hour)
	assert.Error(t, err)

	_, err = ParseGrid("08:00", "12:00", 90*time.Second)
	assert.Error(t, err)
}
