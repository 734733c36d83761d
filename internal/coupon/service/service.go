package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"couponsystem/internal/coupon"
	"couponsystem/internal/metrics"
)

type CouponRepository interface {
	GetAll(ctx context.Context) ([]*coupon.Coupon, error)
	GetByCode(ctx context.Context, code string) (*coupon.Coupon, error)
	GetByCodeForUpdate(ctx context.Context, code string) (*coupon.Coupon, error)
	Create(ctx context.Context, c *coupon.Coupon) error
	CountUserRedemptions(ctx context.Context, couponID int64, userID string) (int, error)
	CountRedemptions(ctx context.Context, couponID int64) (int, error)
	IncrementRedeemed(ctx context.Context, couponID int64) (bool, error)
	RecordRedemption(ctx context.Context, red *coupon.Redemption) error
}

type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// CapScope selects which redemptions count against a TIME_SPECIFIC coupon's
// maxRedemptions.
type CapScope string

const (
	CapScopeUser   CapScope = "user"
	CapScopeCoupon CapScope = "coupon"
)

type Service struct {
	Repo      CouponRepository
	RunInTx   TxRunner
	Publisher EventPublisher
	Exchange  string
	CapScope  CapScope
	Log       zerolog.Logger
	Now       func() time.Time
}

func NewService(repo CouponRepository, runInTx TxRunner, publisher EventPublisher, log zerolog.Logger) *Service {
	return &Service{
		Repo:      repo,
		RunInTx:   runInTx,
		Publisher: publisher,
		Exchange:  "coupons",
		CapScope:  CapScopeUser,
		Log:       log,
		Now:       time.Now,
	}
}

func (s *Service) ListCoupons(ctx context.Context) ([]*coupon.Coupon, error) {
	coupons, err := s.Repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return coupons, nil
}

func (s *Service) CreateUserCoupon(ctx context.Context, userID coupon.UserID, discount float64, code string) (*coupon.Coupon, error) {
	redeemed := 0
	c := &coupon.Coupon{
		Type:     coupon.TypeUserSpecific,
		Code:     code,
		Discount: discount,
		UserID:   &userID,
		Redeemed: &redeemed,
	}
	return c, s.create(ctx, c)
}

func (s *Service) CreateTimeCoupon(ctx context.Context, discount float64, validFrom, validTo time.Time, maxRedemptions int, code string) (*coupon.Coupon, error) {
	from, to := validFrom.UTC(), validTo.UTC()
	c := &coupon.Coupon{
		Type:           coupon.TypeTimeSpecific,
		Code:           code,
		Discount:       discount,
		ValidFrom:      &from,
		ValidTo:        &to,
		MaxRedemptions: &maxRedemptions,
	}
	return c, s.create(ctx, c)
}

func (s *Service) create(ctx context.Context, c *coupon.Coupon) error {
	c.CreatedAt = s.Now().UTC().Truncate(time.Microsecond)
	if err := s.Repo.Create(ctx, c); err != nil {
		return fmt.Errorf("create %s coupon: %w", c.Type, err)
	}

	metrics.CouponsCreatedTotal.WithLabelValues(string(c.Type)).Inc()
	s.publish(ctx, RoutingKeyCouponCreated, CouponCreatedEvent{
		CouponID:   c.ID,
		Type:       c.Type,
		Code:       c.Code,
		Discount:   c.Discount,
		OccurredAt: c.CreatedAt,
	})
	return nil
}

// ValidateCoupon decides whether code can be redeemed by userID right now. It
// only reads; nothing is consumed.
func (s *Service) ValidateCoupon(ctx context.Context, code string, userID *coupon.UserID) (coupon.ValidationResult, error) {
	c, err := s.Repo.GetByCode(ctx, code)
	if errors.Is(err, coupon.ErrNotFound) {
		return s.observe("validate", coupon.Invalid(coupon.ReasonNotFound)), nil
	}
	if err != nil {
		return coupon.ValidationResult{}, fmt.Errorf("validate coupon: %w", err)
	}

	res, err := s.decide(ctx, s.Repo, c, userID)
	if err != nil {
		return coupon.ValidationResult{}, fmt.Errorf("validate coupon: %w", err)
	}
	return s.observe("validate", res), nil
}

// RedeemCoupon validates and consumes the coupon in one transaction, holding
// the coupon row lock so concurrent redemptions serialize.
func (s *Service) RedeemCoupon(ctx context.Context, code string, userID coupon.UserID) (coupon.ValidationResult, error) {
	var (
		result   coupon.ValidationResult
		redeemed *coupon.Coupon
	)

	err := s.RunInTx(ctx, func(repo CouponRepository) error {
		c, err := repo.GetByCodeForUpdate(ctx, code)
		if errors.Is(err, coupon.ErrNotFound) {
			result = coupon.Invalid(coupon.ReasonNotFound)
			return nil
		}
		if err != nil {
			return err
		}

		res, err := s.decide(ctx, repo, c, &userID)
		if err != nil {
			return err
		}
		if !res.Valid {
			result = res
			return nil
		}

		switch c.Type {
		case coupon.TypeUserSpecific:
			ok, err := repo.IncrementRedeemed(ctx, c.ID)
			if err != nil {
				return err
			}
			if !ok {
				result = coupon.Invalid(coupon.ReasonAlreadyRedeemed)
				return nil
			}
		case coupon.TypeTimeSpecific:
			red := &coupon.Redemption{CouponID: c.ID, UserID: userID.String(), RedeemedAt: s.Now().UTC()}
			if err := repo.RecordRedemption(ctx, red); err != nil {
				return err
			}
		}

		result = coupon.ValidationResult{Valid: true, Redeemed: true, Message: "Coupon redeemed"}
		redeemed = c
		return nil
	})
	if err != nil {
		return coupon.ValidationResult{}, fmt.Errorf("redeem coupon: %w", err)
	}

	if redeemed != nil {
		s.publish(ctx, RoutingKeyCouponRedeemed, CouponRedeemedEvent{
			CouponID:   redeemed.ID,
			Type:       redeemed.Type,
			Code:       redeemed.Code,
			UserID:     userID.String(),
			OccurredAt: s.Now().UTC(),
		})
	}
	return s.observe("redeem", result), nil
}

func (s *Service) decide(ctx context.Context, repo CouponRepository, c *coupon.Coupon, userID *coupon.UserID) (coupon.ValidationResult, error) {
	switch c.Type {
	case coupon.TypeUserSpecific:
		if !c.UserID.Equal(userID) {
			return coupon.Invalid(coupon.ReasonWrongUser), nil
		}
		if c.Redeemed != nil && *c.Redeemed >= 1 {
			return coupon.Invalid(coupon.ReasonAlreadyRedeemed), nil
		}
		return coupon.Valid(), nil

	case coupon.TypeTimeSpecific:
		now := s.Now()
		if c.ValidFrom == nil || c.ValidTo == nil || now.Before(*c.ValidFrom) || now.After(*c.ValidTo) {
			return coupon.Invalid(coupon.ReasonOutOfWindow), nil
		}

		count, err := s.countRedemptions(ctx, repo, c.ID, userID)
		if err != nil {
			return coupon.ValidationResult{}, err
		}
		if c.MaxRedemptions != nil && count >= *c.MaxRedemptions {
			return coupon.Invalid(coupon.ReasonMaxRedemptions), nil
		}
		return coupon.Valid(), nil
	}

	return coupon.ValidationResult{Valid: false}, nil
}

func (s *Service) countRedemptions(ctx context.Context, repo CouponRepository, couponID int64, userID *coupon.UserID) (int, error) {
	if s.CapScope == CapScopeCoupon {
		return repo.CountRedemptions(ctx, couponID)
	}
	// No user means no rows can match.
	if userID == nil {
		return 0, nil
	}
	return repo.CountUserRedemptions(ctx, couponID, userID.String())
}

func (s *Service) observe(operation string, res coupon.ValidationResult) coupon.ValidationResult {
	metrics.CouponChecksTotal.WithLabelValues(operation, res.Label()).Inc()
	return res
}

func (s *Service) publish(ctx context.Context, routingKey string, event interface{}) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(ctx, s.Exchange, routingKey, event); err != nil {
		s.Log.Warn().Err(err).Str("routing_key", routingKey).Msg("failed to publish coupon event")
	}
}
