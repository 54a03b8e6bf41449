package pricing

import (
	"time"

	"wheelhouse/models"
)

const (
	// TaxRate is applied to the post-discount subtotal.
	TaxRate = 0.16
	// PromoCode grants PromoRate of the base on top of any vehicle discount.
	PromoCode = "PAKISTAN10"
	PromoRate = 0.10
)

// ComputePrice prices a booking from the vehicle's current rate. Discounts add up and are not capped.
func ComputePrice(vehicle *models.Vehicle, promoCode string, now time.Time) models.PriceDetails {
	var base float64
	if vehicle.DynamicPricing != nil {
		base = vehicle.DynamicPricing.BaseRate
	}

	var discount float64
	if d := vehicle.Discount; d != nil && d.ValidUntil.After(now) {
		discount = base * d.Percent / 100
	}
	if promoCode == PromoCode {
		discount += base * PromoRate
	}

	total := base - discount
	tax := total * TaxRate
	total += tax

	return models.PriceDetails{
		Base:     base,
		Discount: discount,
		Tax:      tax,
		Total:    total,
	}
}
