package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"couponsystem/internal/coupon"
)

const typeMessage = "'type' must be either 'user' or 'time'"

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("datestring", func(fl validator.FieldLevel) bool {
		_, err := coupon.ParseDate(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(fmt.Sprintf("register datestring validation: %v", err))
	}

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(TimeCouponRequest)
		from, errFrom := coupon.ParseDate(req.ValidFrom)
		to, errTo := coupon.ParseDate(req.ValidTo)
		if errFrom == nil && errTo == nil && to.Before(from) {
			sl.ReportError(req.ValidTo, "validTo", "ValidTo", "window", "")
		}
	}, TimeCouponRequest{})

	return v
}

// FieldError names one failing constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// TypeError means the body could not be matched to any request shape.
type TypeError struct {
	Message string
}

func (e *TypeError) Error() string {
	return e.Message
}

// ValidationError lists field failures in the order they were found.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("%s: %s", e.Errors[0].Field, e.Errors[0].Message)
}

// DecodeCreateCoupon dispatches on "type" and returns the matching request.
func DecodeCreateCoupon(body []byte) (CreateCouponRequest, error) {
	var envelope struct {
		Type json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &TypeError{Message: "Invalid JSON body"}
	}

	var kind string
	if len(envelope.Type) > 0 {
		_ = json.Unmarshal(envelope.Type, &kind)
	}

	switch kind {
	case "user":
		var req UserCouponRequest
		if err := decodeAndValidate(body, &req); err != nil {
			return nil, err
		}
		return &req, nil
	case "time":
		var req TimeCouponRequest
		if err := decodeAndValidate(body, &req); err != nil {
			return nil, err
		}
		req.From, _ = coupon.ParseDate(req.ValidFrom)
		req.To, _ = coupon.ParseDate(req.ValidTo)
		return &req, nil
	default:
		return nil, &TypeError{Message: typeMessage}
	}
}

func DecodeValidateCoupon(body []byte) (*ValidateCouponRequest, error) {
	var req ValidateCouponRequest
	if err := decodeAndValidate(body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func DecodeRedeemCoupon(body []byte) (*RedeemCouponRequest, error) {
	var req RedeemCouponRequest
	if err := decodeAndValidate(body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func decodeAndValidate(body []byte, dst interface{}) error {
	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ValidationError{Errors: []FieldError{typeFieldError(typeErr)}}
		}
		return &ValidationError{Errors: []FieldError{{Field: "body", Message: "Invalid JSON body"}}}
	}

	if err := Validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		return &ValidationError{Errors: out}
	}
	return nil
}

// Keyed by struct namespace and tag.
var fieldMessages = map[string]string{
	"UserCouponRequest.UserID.required":      "userId must be a string or number",
	"TimeCouponRequest.MaxRedemptions.gt":    "maxRedemptions must be positive",
	"ValidateCouponRequest.Code.min":         "Code is required",
	"RedeemCouponRequest.Code.min":           "Code is required",
	"RedeemCouponRequest.UserID.required":    "userId must be a string or number",
	"TimeCouponRequest.ValidTo.window":       "validTo must not be before validFrom",
	"TimeCouponRequest.ValidFrom.datestring": "validFrom must be a valid date string",
	"TimeCouponRequest.ValidTo.datestring":   "validTo must be a valid date string",
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.StructNamespace()+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "Required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func typeFieldError(e *json.UnmarshalTypeError) FieldError {
	field := e.Field
	if field == "" {
		field = "body"
	}
	if field == "userId" {
		return FieldError{Field: field, Message: "userId must be a string or number"}
	}

	received := strings.SplitN(e.Value, " ", 2)[0]
	if received == "bool" {
		received = "boolean"
	}
	expected := "string"
	switch e.Type.Kind() {
	case reflect.Float32, reflect.Float64:
		expected = "number"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		expected = "integer"
		if received == "number" {
			received = "float"
		}
	}
	return FieldError{Field: field, Message: fmt.Sprintf("Expected %s, received %s", expected, received)}
}
