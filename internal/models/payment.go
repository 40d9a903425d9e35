package models

import "time"

// PaymentOption is the client's choice of how to pay for an appointment.
type PaymentOption string

const (
	PaymentTotal   PaymentOption = "TOTAL"
	PaymentDeposit PaymentOption = "DEPOSIT"
	PaymentLocal   PaymentOption = "LOCAL"
)

// Valid reports whether the option is one of the known values.
func (o PaymentOption) Valid() bool {
	switch o {
	case PaymentTotal, PaymentDeposit, PaymentLocal:
		return true
	}
	return false
}

// PaymentPreference records a checkout created for an appointment.
type PaymentPreference struct {
	ID            string        `db:"id" json:"id"`
	AppointmentID string        `db:"appointment_id" json:"appointment_id"`
	Option        PaymentOption `db:"payment_option" json:"payment_option"`
	Amount        int64         `db:"amount" json:"amount"`
	Currency      string        `db:"currency" json:"currency"`
	ProviderRef   string        `db:"provider_ref" json:"provider_ref"`
	RedirectURL   string        `db:"redirect_url" json:"redirect_url"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}
