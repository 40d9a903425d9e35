package availability

import (
	"fmt"
	"time"

	"github.com/noah-isme/shop-booking-api/internal/models"
)

// DefaultGranularity is the length of one grid cell.
const DefaultGranularity = 30 * time.Minute

// Grid is the venue-wide cell layout: cells of Step length from Open up to,
// but excluding, Close.
type Grid struct {
	Open  models.TimeOfDay
	Close models.TimeOfDay
	Step  time.Duration
}

// DefaultGrid is the shop's 09:00-22:00 layout in 30 minute cells.
func DefaultGrid() Grid {
	return Grid{
		Open:  models.MustTimeOfDay("09:00"),
		Close: models.MustTimeOfDay("22:00"),
		Step:  DefaultGranularity,
	}
}

// Validate checks the grid can be enumerated.
func (g Grid) Validate() error {
	if g.Step < time.Minute || g.Step%time.Minute != 0 {
		return fmt.Errorf("grid step %s must be a whole number of minutes", g.Step)
	}
	if g.Open < 0 || g.Close > models.MinutesPerDay || g.Open >= g.Close {
		return fmt.Errorf("grid window %s-%s is invalid", g.Open, g.Close)
	}
	return nil
}

func (g Grid) stepMinutes() int {
	return int(g.Step / time.Minute)
}

// Cells enumerates every cell start in chronological order.
func (g Grid) Cells() []models.TimeOfDay {
	step := g.stepMinutes()
	if step <= 0 || g.Open >= g.Close {
		return nil
	}
	cells := make([]models.TimeOfDay, 0, (int(g.Close-g.Open)+step-1)/step)
	for t := g.Open; t < g.Close; t += models.TimeOfDay(step) {
		cells = append(cells, t)
	}
	return cells
}

// Floor returns the start of the cell containing t. The result may lie
// outside [Open, Close).
func (g Grid) Floor(t models.TimeOfDay) models.TimeOfDay {
	step := models.TimeOfDay(g.stepMinutes())
	offset := t - g.Open
	if offset >= 0 {
		return g.Open + offset/step*step
	}
	return g.Open - ((-offset+step-1)/step)*step
}

// Aligned reports whether t is the start of a cell within the grid.
func (g Grid) Aligned(t models.TimeOfDay) bool {
	return t >= g.Open && t < g.Close && g.Floor(t) == t
}

// Contains reports whether the wall-clock span [from, to) fits inside the
// grid window.
func (g Grid) Contains(from, to models.TimeOfDay) bool {
	return from >= g.Open && to <= g.Close && from < to
}

// ParseGrid builds a grid from HH:MM bounds and validates it.
func ParseGrid(opens, closes string, step time.Duration) (Grid, error) {
	from, err := models.ParseTimeOfDay(opens)
	if err != nil {
		return Grid{}, fmt.Errorf("venue open: %w", err)
	}
	to, err := models.ParseTimeOfDay(closes)
	if err != nil {
		return Grid{}, fmt.Errorf("venue close: %w", err)
	}
	g := Grid{Open: from, Close: to, Step: step}
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}
