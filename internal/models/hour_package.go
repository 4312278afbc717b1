package models

import "time"

// HourPackage is a purchasable bundle of consultation hours. Rows referenced
// by a purchase are treated as immutable: edits only affect future purchases.
type HourPackage struct {
	ID                int        `json:"id"`
	Name              string     `json:"name"`
	Hours             int64      `json:"hours"` // hundredths
	PriceCents        int64      `json:"price_cents"`
	DiscountPercentBP *int64     `json:"discount_percent_bp,omitempty"`
	Active            bool       `json:"active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// EffectivePriceCents applies the package discount, if any.
func (p HourPackage) EffectivePriceCents() int64 {
	if p.DiscountPercentBP == nil || *p.DiscountPercentBP <= 0 {
		return p.PriceCents
	}
	return p.PriceCents - ApplyBasisPoints(p.PriceCents, *p.DiscountPercentBP)
}
