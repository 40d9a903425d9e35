package models

import "time"

// Block removes time from the bookable grid. General blocks close the whole
// shop for every calendar date they touch; particular blocks cover
// [StartAt, EndAt) for one professional.
type Block struct {
	ID             string    `db:"id" json:"id"`
	ProfessionalID *string   `db:"professional_id" json:"professional_id,omitempty"`
	StartAt        time.Time `db:"start_at" json:"start_at"`
	EndAt          time.Time `db:"end_at" json:"end_at"`
	Reason         string    `db:"reason" json:"reason"`
	IsGeneral      bool      `db:"is_general" json:"is_general"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Duration returns the span covered by the block.
func (b Block) Duration() time.Duration {
	return b.EndAt.Sub(b.StartAt)
}

// BelongsTo reports whether a particular block applies to professionalID.
// An empty professionalID matches every particular block.
func (b Block) BelongsTo(professionalID string) bool {
	if b.IsGeneral {
		return false
	}
	if professionalID == "" {
		return true
	}
	return b.ProfessionalID != nil && *b.ProfessionalID == professionalID
}

// ClosesDate reports whether a general block closes the calendar date of day.
// day must carry the venue location.
func (b Block) ClosesDate(day time.Time) bool {
	if !b.IsGeneral {
		return false
	}
	y, m, d := day.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	start := b.StartAt.In(day.Location())
	end := b.EndAt.In(day.Location())
	if !end.After(start) {
		end = start
	}
	if start.Equal(end) {
		return !start.Before(dayStart) && start.Before(dayEnd)
	}
	return start.Before(dayEnd) && end.After(dayStart)
}

// BlockFilter narrows block listings.
type BlockFilter struct {
	From           time.Time
	To             time.Time
	ProfessionalID string
}
