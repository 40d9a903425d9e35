package availability

import (
	"sort"
	"time"

	"github.com/noah-isme/shop-booking-api/internal/models"
)

// OccupantKind distinguishes what holds a cell.
type OccupantKind string

const (
	OccupantAppointment OccupantKind = "APPOINTMENT"
	OccupantBlock       OccupantKind = "BLOCK"
)

// Occupant is the item anchored at a grid cell.
type Occupant struct {
	Kind        OccupantKind        `json:"kind"`
	Appointment *models.Appointment `json:"appointment,omitempty"`
	Block       *models.Block       `json:"block,omitempty"`
}

// ProjectionInput is a snapshot of everything affecting one day.
type ProjectionInput struct {
	Grid Grid
	// Date is any instant on the calendar date, in the venue location.
	Date         time.Time
	Day          models.DaySchedule
	Blocks       []models.Block
	Appointments []models.Appointment
	// ProfessionalID restricts items to one professional; empty projects
	// the all-professionals view.
	ProfessionalID string
}

// Projection is the occupancy of one day's grid. It is immutable once built.
type Projection struct {
	Date          time.Time
	Grid          Grid
	FullDayClosed bool

	cells         []models.TimeOfDay
	occupied      map[models.TimeOfDay]struct{}
	anchors       map[models.TimeOfDay]Occupant
	continuations map[models.TimeOfDay]models.TimeOfDay
	free          []models.TimeOfDay
}

type span struct {
	start, end models.TimeOfDay
	occupant   Occupant
}

// Project computes occupied, anchor, continuation and free cells for a day.
func Project(in ProjectionInput) Projection {
	y, m, d := in.Date.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, in.Date.Location())

	p := Projection{
		Date:          dayStart,
		Grid:          in.Grid,
		cells:         in.Grid.Cells(),
		occupied:      make(map[models.TimeOfDay]struct{}),
		anchors:       make(map[models.TimeOfDay]Occupant),
		continuations: make(map[models.TimeOfDay]models.TimeOfDay),
	}

	for i := range in.Blocks {
		block := in.Blocks[i]
		if block.ClosesDate(dayStart) {
			p.closeDay(Occupant{Kind: OccupantBlock, Block: &block})
			return p
		}
	}

	for _, s := range collectSpans(in, dayStart) {
		p.claim(s)
	}

	if !in.Day.IsOpen {
		return p
	}
	for _, cell := range p.cells {
		if _, taken := p.occupied[cell]; taken {
			continue
		}
		if in.Day.IsOpenAt(cell) {
			p.free = append(p.free, cell)
		}
	}
	return p
}

func (p *Projection) closeDay(occupant Occupant) {
	p.FullDayClosed = true
	for i, cell := range p.cells {
		p.occupied[cell] = struct{}{}
		if i == 0 {
			p.anchors[cell] = occupant
			continue
		}
		p.continuations[cell] = p.cells[0]
	}
}

func collectSpans(in ProjectionInput, dayStart time.Time) []span {
	var appointments, blocks []span
	for i := range in.Appointments {
		appt := in.Appointments[i]
		if !appt.Status.Occupies() {
			continue
		}
		if in.ProfessionalID != "" && appt.ProfessionalID != in.ProfessionalID {
			continue
		}
		minutes := appt.DurationMinutes
		if minutes <= 0 {
			minutes = int(in.Grid.Step / time.Minute)
		}
		end := appt.StartAt.Add(time.Duration(minutes) * time.Minute)
		if s, ok := clip(appt.StartAt, end, dayStart); ok {
			s.occupant = Occupant{Kind: OccupantAppointment, Appointment: &appt}
			appointments = append(appointments, s)
		}
	}
	for i := range in.Blocks {
		block := in.Blocks[i]
		if !block.BelongsTo(in.ProfessionalID) || !block.EndAt.After(block.StartAt) {
			continue
		}
		if s, ok := clip(block.StartAt, block.EndAt, dayStart); ok {
			s.occupant = Occupant{Kind: OccupantBlock, Block: &block}
			blocks = append(blocks, s)
		}
	}
	byStart := func(items []span) {
		sort.SliceStable(items, func(i, j int) bool { return items[i].start < items[j].start })
	}
	byStart(appointments)
	byStart(blocks)
	return append(appointments, blocks...)
}

// clip converts [start, end) to wall-clock minutes on dayStart's date.
func clip(start, end time.Time, dayStart time.Time) (span, bool) {
	loc := dayStart.Location()
	dayEnd := dayStart.AddDate(0, 0, 1)
	start = start.In(loc)
	end = end.In(loc)
	if !start.Before(dayEnd) || !end.After(dayStart) {
		return span{}, false
	}
	s := span{start: 0, end: models.MinutesPerDay}
	if !start.Before(dayStart) {
		s.start = models.Of(start)
	}
	if end.Before(dayEnd) {
		s.end = models.Of(end)
		if end.Second() > 0 || end.Nanosecond() > 0 {
			s.end++
		}
	}
	return s, s.end > s.start
}

// claim marks the cells covered by s. The first unclaimed cell becomes the
// anchor; later cells continue it. Cells already claimed by an earlier item
// stay with that item but remain occupied.
func (p *Projection) claim(s span) {
	anchor := p.Grid.Floor(s.start)
	if anchor >= p.Grid.Close || s.end <= p.Grid.Open {
		return
	}
	step := models.TimeOfDay(p.Grid.Step / time.Minute)
	var itemAnchor *models.TimeOfDay
	for cell := anchor; cell < s.end && cell < p.Grid.Close; cell += step {
		if cell < p.Grid.Open {
			continue
		}
		p.occupied[cell] = struct{}{}
		if p.claimed(cell) {
			continue
		}
		if itemAnchor == nil {
			c := cell
			itemAnchor = &c
			p.anchors[cell] = s.occupant
			continue
		}
		p.continuations[cell] = *itemAnchor
	}
}

func (p *Projection) claimed(cell models.TimeOfDay) bool {
	if _, ok := p.anchors[cell]; ok {
		return true
	}
	_, ok := p.continuations[cell]
	return ok
}

// Cells returns every grid cell of the day.
func (p Projection) Cells() []models.TimeOfDay {
	return append([]models.TimeOfDay(nil), p.cells...)
}

// IsOccupied reports whether cell is held by a block or appointment.
func (p Projection) IsOccupied(cell models.TimeOfDay) bool {
	_, ok := p.occupied[cell]
	return ok
}

// Occupied returns the occupied cells in chronological order.
func (p Projection) Occupied() []models.TimeOfDay {
	out := make([]models.TimeOfDay, 0, len(p.occupied))
	for _, cell := range p.cells {
		if _, ok := p.occupied[cell]; ok {
			out = append(out, cell)
		}
	}
	return out
}

// AnchorAt returns the item anchored at cell, if any.
func (p Projection) AnchorAt(cell models.TimeOfDay) (Occupant, bool) {
	o, ok := p.anchors[cell]
	return o, ok
}

// IsContinuation reports whether cell belongs to an item anchored earlier.
func (p Projection) IsContinuation(cell models.TimeOfDay) bool {
	_, ok := p.continuations[cell]
	return ok
}

// Free returns the bookable cells in chronological order.
func (p Projection) Free() []models.TimeOfDay {
	return append([]models.TimeOfDay(nil), p.free...)
}

// CellState describes a cell for rendering consumers.
type CellState string

const (
	CellFree         CellState = "FREE"
	CellClosed       CellState = "CLOSED"
	CellAnchor       CellState = "ANCHOR"
	CellContinuation CellState = "CONTINUATION"
)

// CellView is one row of the day layout.
type CellView struct {
	Time     models.TimeOfDay `json:"time"`
	State    CellState        `json:"state"`
	Span     int              `json:"span,omitempty"`
	Occupant *Occupant        `json:"occupant,omitempty"`
	AnchorAt *string          `json:"anchor_at,omitempty"`
}

// Layout renders the projection as an ordered list of cells. Anchors carry
// the number of contiguous cells their item spans, so a renderer can skip
// continuation rows without tracking state of its own.
func (p Projection) Layout() []CellView {
	freeSet := make(map[models.TimeOfDay]struct{}, len(p.free))
	for _, cell := range p.free {
		freeSet[cell] = struct{}{}
	}
	views := make([]CellView, 0, len(p.cells))
	for i, cell := range p.cells {
		view := CellView{Time: cell, State: CellClosed}
		if occupant, ok := p.anchors[cell]; ok {
			o := occupant
			view.State = CellAnchor
			view.Occupant = &o
			view.Span = 1
			for _, next := range p.cells[i+1:] {
				if p.continuations[next] != cell || !p.IsContinuation(next) {
					break
				}
				view.Span++
			}
		} else if anchor, ok := p.continuations[cell]; ok {
			label := anchor.String()
			view.State = CellContinuation
			view.AnchorAt = &label
		} else if _, ok := freeSet[cell]; ok {
			view.State = CellFree
		}
		views = append(views, view)
	}
	return views
}
