package booking

import (
	"time"

	"github.com/noah-isme/shop-booking-api/internal/models"
)

// SelectionView is the JSON shape of the client's choices.
type SelectionView struct {
	ServiceID      string               `json:"service_id,omitempty"`
	ProfessionalID string               `json:"professional_id,omitempty"`
	Date           string               `json:"date,omitempty"`
	Time           *models.TimeOfDay    `json:"time,omitempty"`
	PaymentOption  models.PaymentOption `json:"payment_option"`
}

// View is an immutable snapshot of a flow.
type View struct {
	ID             string               `json:"id"`
	State          State                `json:"state"`
	RescheduleOf   string               `json:"reschedule_of,omitempty"`
	Selection      SelectionView        `json:"selection"`
	Service        *models.Service      `json:"service,omitempty"`
	Professional   *models.Professional `json:"professional,omitempty"`
	AvailableSlots []models.TimeOfDay   `json:"available_slots"`
	SlotsError     string               `json:"slots_error,omitempty"`
	CatalogError   string               `json:"catalog_error,omitempty"`
	Pricing        Pricing              `json:"pricing"`
	InFlight       bool                 `json:"in_flight"`
	Result         *Result              `json:"result,omitempty"`
}

// Snapshot returns the current state of the flow.
func (f *Flow) Snapshot() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

// State returns the current step.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Pricing returns the price breakdown for the current selection.
func (f *Flow) Pricing() Pricing {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ComputePricing(f.serviceInfo, f.professionalInfo, f.selection.PaymentOption)
}

func (f *Flow) viewLocked() View {
	v := View{
		ID:           f.id,
		State:        f.state,
		RescheduleOf: f.rescheduleOf,
		Selection: SelectionView{
			ServiceID:      f.selection.ServiceID,
			ProfessionalID: f.selection.ProfessionalID,
			PaymentOption:  f.selection.PaymentOption,
		},
		SlotsError:     f.slotsError,
		CatalogError:   f.catalogError,
		Pricing:        ComputePricing(f.serviceInfo, f.professionalInfo, f.selection.PaymentOption),
		InFlight:       f.inFlight,
		AvailableSlots: make([]models.TimeOfDay, 0, len(f.availableSlots)),
	}
	if !f.selection.Date.IsZero() {
		v.Selection.Date = f.selection.Date.Format(time.DateOnly)
	}
	if f.selection.Time != nil {
		t := *f.selection.Time
		v.Selection.Time = &t
	}
	if f.serviceInfo != nil {
		svc := *f.serviceInfo
		v.Service = &svc
	}
	if f.professionalInfo != nil {
		pro := *f.professionalInfo
		v.Professional = &pro
	}
	for _, slot := range f.availableSlots {
		v.AvailableSlots = append(v.AvailableSlots, models.Of(slot.In(f.location)))
	}
	if f.result != nil {
		r := *f.result
		v.Result = &r
	}
	return v
}
