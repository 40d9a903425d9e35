package models

import "time"

// Service is a bookable offering of the shop.
type Service struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Price           int64     `db:"price" json:"price"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	IsFeatured      bool      `db:"is_featured" json:"is_featured"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Professional provides services following a weekly template.
// A nil WeeklyTemplate means none is stored and the default applies.
type Professional struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	WeeklyTemplate WeeklyTemplate `db:"weekly_template" json:"weekly_template"`
	DepositAmount  int64          `db:"deposit_amount" json:"deposit_amount"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// RequiresDeposit reports whether clients must prepay a deposit.
func (p Professional) RequiresDeposit() bool {
	return p.DepositAmount > 0
}
