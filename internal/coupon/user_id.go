package coupon

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// UserID identifies a user. Clients may send it as a JSON string or number; the
// textual form is what gets stored and compared, the kind is kept so responses
// can echo what was submitted.
type UserID struct {
	value   string
	numeric bool
}

func NewUserID(v string) UserID {
	return UserID{value: v}
}

func NewNumericUserID(v string) UserID {
	return UserID{value: v, numeric: true}
}

func (u UserID) String() string {
	return u.value
}

func (u UserID) IsNumeric() bool {
	return u.numeric
}

// Equal compares textual forms, so "42" and 42 name the same user.
func (u *UserID) Equal(other *UserID) bool {
	if u == nil || other == nil {
		return false
	}
	return u.value == other.value
}

func (u UserID) MarshalJSON() ([]byte, error) {
	if u.numeric {
		return []byte(u.value), nil
	}
	return json.Marshal(u.value)
}

func (u *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = UserID{value: s}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	n, ok := v.(json.Number)
	if !ok {
		return &json.UnmarshalTypeError{Value: jsonKind(v), Type: reflect.TypeOf(UserID{})}
	}
	*u = UserID{value: canonicalNumber(n.String()), numeric: true}
	return nil
}

// canonicalNumber writes a JSON number the way it would be printed as a
// number, so 42.0 and 42 (or 1e3 and 1000) give the same id. Plain integer
// literals are kept as written to stay exact beyond float64 precision.
func canonicalNumber(s string) string {
	if !strings.ContainsAny(s, ".eE") {
		if s == "-0" {
			return "0"
		}
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	case string:
		return "string"
	default:
		return "number"
	}
}
