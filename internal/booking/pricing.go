package booking

import "github.com/noah-isme/shop-booking-api/internal/models"

// Pricing splits the service price into what is charged online now and what
// is collected at the venue.
type Pricing struct {
	Option             models.PaymentOption `json:"payment_option"`
	Total              int64                `json:"total"`
	Deposit            int64                `json:"deposit"`
	RequiresPrepayment bool                 `json:"requires_prepayment"`
	PayNow             int64                `json:"pay_now"`
	BalanceDue         int64                `json:"balance_due"`
}

// ComputePricing derives the price breakdown. Unresolved service or
// professional count as zero. PayNow+BalanceDue always equals Total; a
// deposit larger than the price is capped at the price.
func ComputePricing(svc *models.Service, pro *models.Professional, option models.PaymentOption) Pricing {
	p := Pricing{Option: option}
	if svc != nil {
		p.Total = svc.Price
	}
	if pro != nil {
		p.Deposit = pro.DepositAmount
	}
	p.RequiresPrepayment = p.Deposit > 0

	switch option {
	case models.PaymentTotal:
		p.PayNow = p.Total
	case models.PaymentDeposit:
		p.PayNow = min(p.Deposit, p.Total)
	default:
		p.PayNow = 0
	}
	p.BalanceDue = p.Total - p.PayNow
	return p
}

// ApplyPaymentPolicy returns the option to use once pro is known: deposit-less
// professionals force LOCAL, and a LOCAL carried over to a professional who
// takes deposits becomes TOTAL.
func ApplyPaymentPolicy(current models.PaymentOption, pro *models.Professional) models.PaymentOption {
	if pro == nil {
		return current
	}
	if !pro.RequiresDeposit() {
		return models.PaymentLocal
	}
	if current == models.PaymentLocal || !current.Valid() {
		return models.PaymentTotal
	}
	return current
}

// OptionAllowed reports whether option may be chosen for pro.
func OptionAllowed(option models.PaymentOption, pro *models.Professional) bool {
	if !option.Valid() {
		return false
	}
	if pro == nil {
		return true
	}
	if pro.RequiresDeposit() {
		return option != models.PaymentLocal
	}
	return option == models.PaymentLocal
}
