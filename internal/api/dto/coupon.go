package dto

import (
	"time"

	"couponsystem/internal/coupon"
)

// CreateCouponRequest is either a *UserCouponRequest or a *TimeCouponRequest,
// chosen by the "type" field of the body.
type CreateCouponRequest interface {
	CouponType() coupon.Type
}

type UserCouponRequest struct {
	Type     string         `json:"type"`
	UserID   *coupon.UserID `json:"userId" validate:"required"`
	Discount *float64       `json:"discount" validate:"required,gt=0"`
	Code     string         `json:"code" validate:"required"`
}

func (r *UserCouponRequest) CouponType() coupon.Type {
	return coupon.TypeUserSpecific
}

type TimeCouponRequest struct {
	Type           string   `json:"type"`
	Discount       *float64 `json:"discount" validate:"required,gt=0"`
	ValidFrom      string   `json:"validFrom" validate:"required,datestring"`
	ValidTo        string   `json:"validTo" validate:"required,datestring"`
	Code           string   `json:"code" validate:"required"`
	MaxRedemptions *int     `json:"maxRedemptions" validate:"required,gt=0"`

	// Parsed window, set once validation passes.
	From time.Time `json:"-"`
	To   time.Time `json:"-"`
}

func (r *TimeCouponRequest) CouponType() coupon.Type {
	return coupon.TypeTimeSpecific
}

// Code is a pointer so a missing key and an empty string report differently.
type ValidateCouponRequest struct {
	Code   *string        `json:"code" validate:"required,min=1"`
	UserID *coupon.UserID `json:"userId"`
}

type RedeemCouponRequest struct {
	Code   *string        `json:"code" validate:"required,min=1"`
	UserID *coupon.UserID `json:"userId" validate:"required"`
}
