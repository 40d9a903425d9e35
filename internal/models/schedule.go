package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// DaysPerWeek is the fixed length of a weekly template.
const DaysPerWeek = 7

// TimeWindow is a half-open [From, To) range within a single day.
type TimeWindow struct {
	From TimeOfDay `json:"from"`
	To   TimeOfDay `json:"to"`
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t TimeOfDay) bool {
	return t >= w.From && t < w.To
}

// Validate checks the window is ordered and stays within one day.
func (w TimeWindow) Validate() error {
	if w.From < 0 || w.To > MinutesPerDay {
		return fmt.Errorf("window %s-%s exceeds the day", w.From, w.To)
	}
	if w.From >= w.To {
		return fmt.Errorf("window start %s must be before end %s", w.From, w.To)
	}
	return nil
}

// AfternoonWindow is the optional second shift of a day.
type AfternoonWindow struct {
	Active bool      `json:"active"`
	From   TimeOfDay `json:"from"`
	To     TimeOfDay `json:"to"`
}

// Window returns the afternoon bounds as a TimeWindow.
func (a AfternoonWindow) Window() TimeWindow {
	return TimeWindow{From: a.From, To: a.To}
}

// DaySchedule describes the working hours of one weekday.
type DaySchedule struct {
	Day       string          `json:"day"`
	IsOpen    bool            `json:"is_open"`
	Morning   TimeWindow      `json:"morning"`
	Afternoon AfternoonWindow `json:"afternoon"`
}

// OpenWindows returns the windows consumers must honour. Closed days and
// inactive afternoons contribute nothing.
func (d DaySchedule) OpenWindows() []TimeWindow {
	if !d.IsOpen {
		return nil
	}
	windows := []TimeWindow{d.Morning}
	if d.Afternoon.Active {
		windows = append(windows, d.Afternoon.Window())
	}
	return windows
}

// IsOpenAt reports whether t falls inside an open window of the day.
func (d DaySchedule) IsOpenAt(t TimeOfDay) bool {
	for _, w := range d.OpenWindows() {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

// Validate checks only the windows that are in effect.
func (d DaySchedule) Validate() error {
	if !d.IsOpen {
		return nil
	}
	if err := d.Morning.Validate(); err != nil {
		return fmt.Errorf("%s morning: %w", d.Day, err)
	}
	if d.Afternoon.Active {
		if err := d.Afternoon.Window().Validate(); err != nil {
			return fmt.Errorf("%s afternoon: %w", d.Day, err)
		}
	}
	return nil
}

// WeeklyTemplate is the Monday-first list of seven day schedules.
type WeeklyTemplate []DaySchedule

// Validate enforces the template shape.
func (w WeeklyTemplate) Validate() error {
	if len(w) != DaysPerWeek {
		return fmt.Errorf("weekly template must have %d days, got %d", DaysPerWeek, len(w))
	}
	for _, day := range w {
		if err := day.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Value stores the template as a JSON array.
func (w WeeklyTemplate) Value() (driver.Value, error) {
	if w == nil {
		return nil, nil
	}
	return json.Marshal(w)
}

// Scan reads a JSON array column. NULL leaves the template nil.
func (w *WeeklyTemplate) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*w = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("weekly template: unsupported column type")
	}
	if len(raw) == 0 {
		*w = nil
		return nil
	}
	var parsed []DaySchedule
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("weekly template: %w", err)
	}
	*w = parsed
	return nil
}
