package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"couponsystem/internal/coupon"
)

// SQLCouponRepository works against Postgres and MySQL. Queries are written
// with '?' placeholders and rebound for the active driver.
type SQLCouponRepository struct {
	db sqlx.ExtContext
}

func NewSQLCouponRepository(db *sqlx.DB) *SQLCouponRepository {
	return &SQLCouponRepository{db: db}
}

// WithTx returns a repository whose statements run inside tx.
func (r *SQLCouponRepository) WithTx(tx *sqlx.Tx) *SQLCouponRepository {
	return &SQLCouponRepository{db: tx}
}

func (r *SQLCouponRepository) GetAll(ctx context.Context) ([]*coupon.Coupon, error) {
	var rows []CouponDB
	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY id`
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("select coupons: %w", err)
	}

	coupons := make([]*coupon.Coupon, 0, len(rows))
	for i := range rows {
		coupons = append(coupons, rows[i].toDomain())
	}
	return coupons, nil
}

func (r *SQLCouponRepository) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	return r.getByCode(ctx, code, "")
}

// GetByCodeForUpdate locks the coupon row until the surrounding transaction ends.
func (r *SQLCouponRepository) GetByCodeForUpdate(ctx context.Context, code string) (*coupon.Coupon, error) {
	return r.getByCode(ctx, code, " FOR UPDATE")
}

func (r *SQLCouponRepository) getByCode(ctx context.Context, code, suffix string) (*coupon.Coupon, error) {
	var row CouponDB
	query := r.db.Rebind(`SELECT ` + couponColumns + ` FROM coupons WHERE code = ? ORDER BY id LIMIT 1` + suffix)
	if err := sqlx.GetContext(ctx, r.db, &row, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("select coupon by code: %w", err)
	}
	return row.toDomain(), nil
}

func (r *SQLCouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	redeemed := 0
	if c.Redeemed != nil {
		redeemed = *c.Redeemed
	}

	id, err := r.insert(ctx, `
		INSERT INTO coupons (type, code, discount, user_id, redeemed, valid_from, valid_to, max_redemptions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(c.Type), c.Code, c.Discount, nullString(c.UserID), redeemed,
		nullTime(c.ValidFrom), nullTime(c.ValidTo), nullInt(c.MaxRedemptions), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}

	c.ID = id
	return nil
}

func (r *SQLCouponRepository) CountUserRedemptions(ctx context.Context, couponID int64, userID string) (int, error) {
	var n int
	query := r.db.Rebind(`SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = ? AND user_id = ?`)
	if err := sqlx.GetContext(ctx, r.db, &n, query, couponID, userID); err != nil {
		return 0, fmt.Errorf("count user redemptions: %w", err)
	}
	return n, nil
}

func (r *SQLCouponRepository) CountRedemptions(ctx context.Context, couponID int64) (int, error) {
	var n int
	query := r.db.Rebind(`SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = ?`)
	if err := sqlx.GetContext(ctx, r.db, &n, query, couponID); err != nil {
		return 0, fmt.Errorf("count redemptions: %w", err)
	}
	return n, nil
}

// IncrementRedeemed consumes a USER_SPECIFIC coupon. It reports false when the
// coupon was already redeemed by a concurrent request.
func (r *SQLCouponRepository) IncrementRedeemed(ctx context.Context, couponID int64) (bool, error) {
	query := r.db.Rebind(`UPDATE coupons SET redeemed = redeemed + 1 WHERE id = ? AND redeemed < 1`)
	res, err := r.db.ExecContext(ctx, query, couponID)
	if err != nil {
		return false, fmt.Errorf("increment redeemed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("increment redeemed: %w", err)
	}
	return n == 1, nil
}

func (r *SQLCouponRepository) RecordRedemption(ctx context.Context, red *coupon.Redemption) error {
	id, err := r.insert(ctx,
		`INSERT INTO coupon_redemptions (coupon_id, user_id, redeemed_at) VALUES (?, ?, ?)`,
		red.CouponID, red.UserID, red.RedeemedAt,
	)
	if err != nil {
		return fmt.Errorf("insert redemption: %w", err)
	}
	red.ID = id
	return nil
}

// insert runs an INSERT and returns the generated id. Postgres needs RETURNING,
// MySQL reports it through LastInsertId.
func (r *SQLCouponRepository) insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if r.db.DriverName() == "postgres" {
		var id int64
		err := r.db.QueryRowxContext(ctx, r.db.Rebind(query+` RETURNING id`), args...).Scan(&id)
		return id, err
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
