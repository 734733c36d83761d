package service

import (
	"time"

	"couponsystem/internal/coupon"
)

const (
	RoutingKeyCouponCreated  = "coupon.created"
	RoutingKeyCouponRedeemed = "coupon.redeemed"
)

type CouponCreatedEvent struct {
	CouponID   int64       `json:"couponId"`
	Type       coupon.Type `json:"type"`
	Code       string      `json:"code"`
	Discount   float64     `json:"discount"`
	OccurredAt time.Time   `json:"occurredAt"`
}

type CouponRedeemedEvent struct {
	CouponID   int64       `json:"couponId"`
	Type       coupon.Type `json:"type"`
	Code       string      `json:"code"`
	UserID     string      `json:"userId"`
	OccurredAt time.Time   `json:"occurredAt"`
}
