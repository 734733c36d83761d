package dto

import (
	"errors"
	"testing"
	"time"
)

func TestDecodeCreateCouponDispatch(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"missing type", `{"code":"A","discount":5}`, typeMessage},
		{"unknown type", `{"type":"gift","code":"A"}`, typeMessage},
		{"type not a string", `{"type":1,"code":"A"}`, typeMessage},
		{"not json", `{`, "Invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCreateCoupon([]byte(tt.body))
			var typeErr *TypeError
			if !errors.As(err, &typeErr) {
				t.Fatalf("expected TypeError, got %v", err)
			}
			if typeErr.Message != tt.wantErr {
				t.Fatalf("expected %q, got %q", tt.wantErr, typeErr.Message)
			}
		})
	}
}

func TestDecodeCreateCouponUser(t *testing.T) {
	req, err := DecodeCreateCoupon([]byte(`{"type":"user","userId":42,"discount":10,"code":"U42"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, ok := req.(*UserCouponRequest)
	if !ok {
		t.Fatalf("expected *UserCouponRequest, got %T", req)
	}
	if u.UserID.String() != "42" || !u.UserID.IsNumeric() {
		t.Fatalf("unexpected userId: %+v", u.UserID)
	}
	if *u.Discount != 10 || u.Code != "U42" {
		t.Fatalf("unexpected request: %+v", u)
	}
}

func TestDecodeCreateCouponTime(t *testing.T) {
	body := `{"type":"time","discount":15,"validFrom":"2024-01-01","validTo":"2024-12-31T23:59:59Z","code":"NY","maxRedemptions":3}`
	req, err := DecodeCreateCoupon([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr, ok := req.(*TimeCouponRequest)
	if !ok {
		t.Fatalf("expected *TimeCouponRequest, got %T", req)
	}
	if !tr.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected From: %v", tr.From)
	}
	if !tr.To.Equal(time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("unexpected To: %v", tr.To)
	}
	if *tr.MaxRedemptions != 3 {
		t.Fatalf("unexpected maxRedemptions: %d", *tr.MaxRedemptions)
	}
}

func TestDecodeCreateCouponFieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
		msg   string
	}{
		{"user missing userId", `{"type":"user","discount":10,"code":"A"}`, "userId", "userId must be a string or number"},
		{"user bool userId", `{"type":"user","userId":true,"discount":10,"code":"A"}`, "userId", "userId must be a string or number"},
		{"user zero discount", `{"type":"user","userId":"u","discount":0,"code":"A"}`, "discount", "discount must be greater than 0"},
		{"user missing discount", `{"type":"user","userId":"u","code":"A"}`, "discount", "Required"},
		{"user discount string", `{"type":"user","userId":"u","discount":"10","code":"A"}`, "discount", "Expected number, received string"},
		{"user missing code", `{"type":"user","userId":"u","discount":10}`, "code", "Required"},
		{"user code number", `{"type":"user","userId":"u","discount":10,"code":7}`, "code", "Expected string, received number"},
		{"time bad validFrom", `{"type":"time","discount":1,"validFrom":"soon","validTo":"2024-12-31","code":"T","maxRedemptions":1}`, "validFrom", "validFrom must be a valid date string"},
		{"time bad validTo", `{"type":"time","discount":1,"validFrom":"2024-01-01","validTo":"later","code":"T","maxRedemptions":1}`, "validTo", "validTo must be a valid date string"},
		{"time zero cap", `{"type":"time","discount":1,"validFrom":"2024-01-01","validTo":"2024-12-31","code":"T","maxRedemptions":0}`, "maxRedemptions", "maxRedemptions must be positive"},
		{"time fractional cap", `{"type":"time","discount":1,"validFrom":"2024-01-01","validTo":"2024-12-31","code":"T","maxRedemptions":1.5}`, "maxRedemptions", "Expected integer, received float"},
		{"time missing cap", `{"type":"time","discount":1,"validFrom":"2024-01-01","validTo":"2024-12-31","code":"T"}`, "maxRedemptions", "Required"},
		{"time inverted window", `{"type":"time","discount":1,"validFrom":"2024-12-31","validTo":"2024-01-01","code":"T","maxRedemptions":1}`, "validTo", "validTo must not be before validFrom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCreateCoupon([]byte(tt.body))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			for _, fe := range verr.Errors {
				if fe.Field == tt.field && fe.Message == tt.msg {
					return
				}
			}
			t.Fatalf("expected %s=%q in %+v", tt.field, tt.msg, verr.Errors)
		})
	}
}

func TestDecodeValidateCoupon(t *testing.T) {
	req, err := DecodeValidateCoupon([]byte(`{"code":"A"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.UserID != nil {
		t.Fatalf("expected no userId, got %v", req.UserID)
	}
	if *req.Code != "A" {
		t.Fatalf("unexpected code: %q", *req.Code)
	}

	codeTests := []struct {
		body, msg string
	}{
		{`{"userId":"u"}`, "Required"},
		{`{"code":"","userId":"u"}`, "Code is required"},
	}
	var verr *ValidationError
	for _, tt := range codeTests {
		_, err = DecodeValidateCoupon([]byte(tt.body))
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected ValidationError, got %v", tt.body, err)
		}
		if len(verr.Errors) != 1 || verr.Errors[0].Field != "code" || verr.Errors[0].Message != tt.msg {
			t.Fatalf("%s: unexpected errors: %+v", tt.body, verr.Errors)
		}
	}

	_, err = DecodeValidateCoupon([]byte(`not json`))
	if !errors.As(err, &verr) || verr.Errors[0].Field != "body" {
		t.Fatalf("expected body error, got %v", err)
	}
}

func TestDecodeRedeemCouponRequiresUser(t *testing.T) {
	_, err := DecodeRedeemCoupon([]byte(`{"code":"A"}`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Errors[0].Field != "userId" {
		t.Fatalf("unexpected errors: %+v", verr.Errors)
	}

	req, err := DecodeRedeemCoupon([]byte(`{"code":"A","userId":"alice"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.UserID.String() != "alice" || *req.Code != "A" {
		t.Fatalf("unexpected userId: %v", req.UserID)
	}
}

func TestNewValidatorRegistersDateRule(t *testing.T) {
	v := newValidator()
	if err := v.Var("2024-01-01", "datestring"); err != nil {
		t.Fatalf("expected date to pass: %v", err)
	}
	if err := v.Var("soon", "datestring"); err == nil {
		t.Fatal("expected garbage date to fail")
	}
}
