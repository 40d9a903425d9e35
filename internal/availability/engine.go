package availability

import (
	"iter"
	"time"

	"github.com/noah-isme/shop-booking-api/internal/models"
	"github.com/noah-isme/shop-booking-api/pkg/clock"
)

// PastSlotPolicy decides whether slots earlier than now are offered on the
// current date.
type PastSlotPolicy int

const (
	HidePastSlots PastSlotPolicy = iota
	ShowPastSlots
)

// DayInput carries the data the engine needs for one professional and date.
type DayInput struct {
	Date           time.Time
	Template       models.WeeklyTemplate
	ProfessionalID string
	Blocks         []models.Block
	Appointments   []models.Appointment
}

// Engine computes free start times on the venue grid.
type Engine struct {
	grid     Grid
	location *time.Location
	clock    clock.Clock
	policy   PastSlotPolicy
}

// NewEngine builds an Engine. Nil location means UTC and nil clock the system clock.
func NewEngine(grid Grid, location *time.Location, clk clock.Clock, policy PastSlotPolicy) *Engine {
	if location == nil {
		location = time.UTC
	}
	if clk == nil {
		clk = clock.System()
	}
	return &Engine{grid: grid, location: location, clock: clk, policy: policy}
}

// Grid returns the engine's grid.
func (e *Engine) Grid() Grid { return e.grid }

// Location returns the venue time zone.
func (e *Engine) Location() *time.Location { return e.location }

// Today returns midnight of the current venue date.
func (e *Engine) Today() time.Time {
	return clock.Today(e.clock, e.location)
}

// Date normalises t to midnight of its calendar date in the venue zone.
func (e *Engine) Date(t time.Time) time.Time {
	local := t.In(e.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, e.location)
}

// ParseDate reads a YYYY-MM-DD date in the venue zone.
func (e *Engine) ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, raw, e.location)
}

// IsPast reports whether date lies strictly before today.
func (e *Engine) IsPast(date time.Time) bool {
	return e.Date(date).Before(e.Today())
}

// Project returns the occupancy projection of the input's date.
func (e *Engine) Project(in DayInput) Projection {
	date := e.Date(in.Date)
	return Project(ProjectionInput{
		Grid:           e.grid,
		Date:           date,
		Day:            DayFor(in.Template, date),
		Blocks:         in.Blocks,
		Appointments:   in.Appointments,
		ProfessionalID: in.ProfessionalID,
	})
}

// Slots yields the free start times of the day in ascending order. The
// sequence is evaluated lazily from a snapshot of the input and can be
// ranged over more than once.
func (e *Engine) Slots(in DayInput) iter.Seq[time.Time] {
	date := e.Date(in.Date)
	day := DayFor(in.Template, date)
	if !day.IsOpen {
		return emptySlots
	}
	input := DayInput{
		Date:           date,
		Template:       in.Template,
		ProfessionalID: in.ProfessionalID,
		Blocks:         append([]models.Block(nil), in.Blocks...),
		Appointments:   append([]models.Appointment(nil), in.Appointments...),
	}
	return func(yield func(time.Time) bool) {
		projection := e.Project(input)
		if projection.FullDayClosed {
			return
		}
		var cutoff time.Time
		if e.policy == HidePastSlots && date.Equal(e.Today()) {
			cutoff = e.clock.Now()
		}
		for _, cell := range projection.free {
			start := cell.On(date)
			if !cutoff.IsZero() && start.Before(cutoff) {
				continue
			}
			if !yield(start) {
				return
			}
		}
	}
}

func emptySlots(func(time.Time) bool) {}
