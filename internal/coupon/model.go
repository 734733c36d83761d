package coupon

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("coupon not found")

type Type string

const (
	TypeUserSpecific Type = "USER_SPECIFIC"
	TypeTimeSpecific Type = "TIME_SPECIFIC"
)

type Coupon struct {
	ID       int64   `json:"id"`
	Type     Type    `json:"type"`
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`

	// USER_SPECIFIC
	UserID   *UserID `json:"userId,omitempty"`
	Redeemed *int    `json:"redeemed,omitempty"`

	// TIME_SPECIFIC
	ValidFrom      *time.Time `json:"validFrom,omitempty"`
	ValidTo        *time.Time `json:"validTo,omitempty"`
	MaxRedemptions *int       `json:"maxRedemptions,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Redemption is one consumed entitlement of a TIME_SPECIFIC coupon.
type Redemption struct {
	ID         int64     `json:"id"`
	CouponID   int64     `json:"couponId"`
	UserID     string    `json:"userId"`
	RedeemedAt time.Time `json:"redeemedAt"`
}
