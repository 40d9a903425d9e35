package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shop-booking-api/internal/models"
)

func TestDefaultTemplateShape(t *testing.T) {
	template := DefaultTemplate()
	require.NoError(t, template.Validate())
	require.Len(t, template, 7)

	weekday := template[0]
	assert.Equal(t, "Monday", weekday.Day)
	assert.True(t, weekday.IsOpen)
	assert.Equal(t, "09:00", weekday.Morning.From.String())
	assert.Equal(t, "13:00", weekday.Morning.To.String())
	assert.True(t, weekday.Afternoon.Active)
	assert.Equal(t, "22:00", weekday.Afternoon.To.String())

	saturday := template[5]
	assert.Equal(t, "14:00", saturday.Morning.To.String())
	assert.False(t, saturday.Afternoon.Active)
	assert.False(t, saturday.IsOpenAt(models.MustTimeOfDay("17:30")))

	assert.False(t, template[6].IsOpen)
	assert.Empty(t, template[6].OpenWindows())

	assert.Equal(t, template, DefaultTemplate())
}

func TestDayIndexIsMondayFirst(t *testing.T) {
	assert.Equal(t, 0, DayIndex(time.Monday))
	assert.Equal(t, 5, DayIndex(time.Saturday))
	assert.Equal(t, 6, DayIndex(time.Sunday))
}

func TestResolveTemplateFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultTemplate(), ResolveTemplate(nil))
	assert.Equal(t, DefaultTemplate(), ResolveTemplate(models.WeeklyTemplate{{Day: "Monday"}}))

	custom := continuousTemplate()
	assert.Equal(t, custom, ResolveTemplate(custom))
	assert.Equal(t, "Sunday", DayFor(custom, time.Date(2030, 1, 13, 0, 0, 0, 0, time.UTC)).Day)
}

func TestGridFloorAndCells(t *testing.T) {
	grid := DefaultGrid()
	require.NoError(t, grid.Validate())
	assert.Len(t, grid.Cells(), 26)
	assert.Equal(t, models.MustTimeOfDay("10:00"), grid.Floor(models.MustTimeOfDay("10:29")))
	assert.Equal(t, models.MustTimeOfDay("08:30"), grid.Floor(models.MustTimeOfDay("08:45")))
	assert.True(t, grid.Aligned(models.MustTimeOfDay("21:30")))
	assert.False(t, grid.Aligned(models.MustTimeOfDay("22:00")))
	assert.False(t, grid.Aligned(models.MustTimeOfDay("10:15")))

	assert.Error(t, Grid{Open: 600, Close: 540, Step: DefaultGranularity}.Validate())
	assert.Error(t, Grid{Open: 540, Close: 600, Step: 90 * time.Second}.Validate())
}
