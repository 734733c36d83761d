package coupon

// Reason explains why a coupon cannot be redeemed.
type Reason string

const (
	ReasonNotFound        Reason = "NOT_FOUND"
	ReasonWrongUser       Reason = "WRONG_USER"
	ReasonAlreadyRedeemed Reason = "ALREADY_REDEEMED"
	ReasonOutOfWindow     Reason = "OUT_OF_WINDOW"
	ReasonMaxRedemptions  Reason = "MAX_REDEMPTIONS"
)

var reasonMessages = map[Reason]string{
	ReasonNotFound:        "Coupon does not exist",
	ReasonWrongUser:       "Coupon is not valid for this user",
	ReasonAlreadyRedeemed: "Coupon has already been redeemed",
	ReasonOutOfWindow:     "Coupon is expired or not yet valid",
	ReasonMaxRedemptions:  "Coupon has reached its maximum redemptions",
}

func (r Reason) Message() string {
	return reasonMessages[r]
}

// ValidationResult is the outcome of checking a coupon. A rejected coupon is a
// normal result, not an error.
type ValidationResult struct {
	Valid    bool   `json:"valid"`
	Reason   Reason `json:"reason,omitempty"`
	Message  string `json:"message,omitempty"`
	Redeemed bool   `json:"redeemed,omitempty"`
}

func Valid() ValidationResult {
	return ValidationResult{Valid: true, Message: "Coupon Valid"}
}

func Invalid(reason Reason) ValidationResult {
	return ValidationResult{Valid: false, Reason: reason, Message: reason.Message()}
}

// Label is used as the metrics label for the outcome.
func (r ValidationResult) Label() string {
	if r.Valid {
		return "valid"
	}
	if r.Reason == "" {
		return "unknown"
	}
	return string(r.Reason)
}
