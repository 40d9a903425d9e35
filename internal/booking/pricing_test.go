package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/shop-booking-api/internal/models"
)

func TestComputePricingWithoutDeposit(t *testing.T) {
	svc := &models.Service{ID: "svc-1", Price: 1500}
	pro := &models.Professional{ID: "pro-1"}

	p := ComputePricing(svc, pro, models.PaymentLocal)

	assert.False(t, p.RequiresPrepayment)
	assert.Equal(t, int64(0), p.PayNow)
	assert.Equal(t, int64(1500), p.BalanceDue)
}

func TestComputePricingDeposit(t *testing.T) {
	svc := &models.Service{ID: "svc-1", Price: 2000}
	pro := &models.Professional{ID: "pro-1", DepositAmount: 500}

	p := ComputePricing(svc, pro, models.PaymentDeposit)

	assert.True(t, p.RequiresPrepayment)
	assert.Equal(t, int64(500), p.PayNow)
	assert.Equal(t, int64(1500), p.BalanceDue)
}

func TestComputePricingCapsDepositAtPrice(t *testing.T) {
	svc := &models.Service{ID: "svc-1", Price: 300}
	pro := &models.Professional{ID: "pro-1", DepositAmount: 500}

	p := ComputePricing(svc, pro, models.PaymentDeposit)

	assert.Equal(t, int64(300), p.PayNow)
	assert.Equal(t, int64(0), p.BalanceDue)
}

func TestComputePricingUnresolvedIsZero(t *testing.T) {
	p := ComputePricing(nil, nil, models.PaymentTotal)

	assert.Equal(t, Pricing{Option: models.PaymentTotal}, p)
}

func TestComputePricingPartsAddUpToTotal(t *testing.T) {
	options := []models.PaymentOption{models.PaymentTotal, models.PaymentDeposit, models.PaymentLocal}
	for _, price := range []int64{0, 1, 499, 500, 501, 2000, 99999} {
		for _, deposit := range []int64{0, 1, 500, 2000, 100000} {
			for _, option := range options {
				p := ComputePricing(&models.Service{Price: price}, &models.Professional{DepositAmount: deposit}, option)
				assert.Equal(t, p.Total, p.PayNow+p.BalanceDue, "price=%d deposit=%d option=%s", price, deposit, option)
				assert.GreaterOrEqual(t, p.PayNow, int64(0))
				assert.GreaterOrEqual(t, p.BalanceDue, int64(0))
			}
		}
	}
}

func TestApplyPaymentPolicy(t *testing.T) {
	withDeposit := &models.Professional{DepositAmount: 500}
	withoutDeposit := &models.Professional{}

	assert.Equal(t, models.PaymentTotal, ApplyPaymentPolicy(models.PaymentTotal, nil))
	assert.Equal(t, models.PaymentLocal, ApplyPaymentPolicy(models.PaymentTotal, withoutDeposit))
	assert.Equal(t, models.PaymentLocal, ApplyPaymentPolicy(models.PaymentDeposit, withoutDeposit))
	assert.Equal(t, models.PaymentTotal, ApplyPaymentPolicy(models.PaymentLocal, withDeposit))
	assert.Equal(t, models.PaymentDeposit, ApplyPaymentPolicy(models.PaymentDeposit, withDeposit))
	assert.Equal(t, models.PaymentTotal, ApplyPaymentPolicy("", withDeposit))
}

func TestOptionAllowed(t *testing.T) {
	withDeposit := &models.Professional{DepositAmount: 500}
	withoutDeposit := &models.Professional{}

	assert.True(t, OptionAllowed(models.PaymentLocal, nil))
	assert.False(t, OptionAllowed("CASH", nil))
	assert.True(t, OptionAllowed(models.PaymentLocal, withoutDeposit))
	assert.False(t, OptionAllowed(models.PaymentTotal, withoutDeposit))
	assert.False(t, OptionAllowed(models.PaymentLocal, withDeposit))
	assert.True(t, OptionAllowed(models.PaymentDeposit, withDeposit))
}
