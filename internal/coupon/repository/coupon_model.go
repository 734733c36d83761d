package repository

import (
	"database/sql"
	"time"

	"couponsystem/internal/coupon"
)

const couponColumns = `id, type, code, discount, user_id, redeemed, valid_from, valid_to, max_redemptions, created_at`

// CouponDB mirrors a row of the coupons table. Type-specific columns are NULL
// for the other coupon kind.
type CouponDB struct {
	ID             int64          `db:"id"`
	Type           string         `db:"type"`
	Code           string         `db:"code"`
	Discount       float64        `db:"discount"`
	UserID         sql.NullString `db:"user_id"`
	Redeemed       int            `db:"redeemed"`
	ValidFrom      sql.NullTime   `db:"valid_from"`
	ValidTo        sql.NullTime   `db:"valid_to"`
	MaxRedemptions sql.NullInt64  `db:"max_redemptions"`
	CreatedAt      time.Time      `db:"created_at"`
}

func (row *CouponDB) toDomain() *coupon.Coupon {
	c := &coupon.Coupon{
		ID:        row.ID,
		Type:      coupon.Type(row.Type),
		Code:      row.Code,
		Discount:  row.Discount,
		CreatedAt: row.CreatedAt.UTC(),
	}

	switch c.Type {
	case coupon.TypeUserSpecific:
		if row.UserID.Valid {
			id := coupon.NewUserID(row.UserID.String)
			c.UserID = &id
		}
		redeemed := row.Redeemed
		c.Redeemed = &redeemed
	case coupon.TypeTimeSpecific:
		if row.ValidFrom.Valid {
			from := row.ValidFrom.Time.UTC()
			c.ValidFrom = &from
		}
		if row.ValidTo.Valid {
			to := row.ValidTo.Time.UTC()
			c.ValidTo = &to
		}
		if row.MaxRedemptions.Valid {
			limit := int(row.MaxRedemptions.Int64)
			c.MaxRedemptions = &limit
		}
	}

	return c
}

func nullString(id *coupon.UserID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
