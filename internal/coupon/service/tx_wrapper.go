package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"couponsystem/internal/coupon/repository"
)

// TxRunner runs fn with a repository bound to one database transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type TxRunner func(ctx context.Context, fn func(repo CouponRepository) error) error

func NewSQLTxRunner(db *sqlx.DB) TxRunner {
	base := repository.NewSQLCouponRepository(db)

	return func(ctx context.Context, fn func(repo CouponRepository) error) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if err := fn(base.WithTx(tx)); err != nil {
			_ = tx.Rollback()
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	}
}
