package domain

import (
	pkgvalidator "github.com/tuanpn1312/react-shop/pkg/validator"
)

// Product is the canonical product snapshot captured at add-time. Prices are
// in cents and reflect the price when the line was added, not the live
// catalog price. Heterogeneous backend payloads are normalized into this
// shape at the catalog boundary; cart code never branches on field variants.
type Product struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice" validate:"gte=0"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// Validate checks the snapshot invariants: an ID is required and the price
// must not be negative.
func (p Product) Validate() error {
	return pkgvalidator.Validate(p)
}
