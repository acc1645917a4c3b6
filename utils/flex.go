package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// FlexDecimal decodes a money amount sent either as a JSON number or as a
// numeric string. null, "" and an absent field all leave Valid false.
type FlexDecimal struct {
	Value decimal.Decimal
	Valid bool
}

// NewFlexDecimal is a convenience constructor used by callers building inputs in code
func NewFlexDecimal(v string) FlexDecimal {
	return FlexDecimal{Value: decimal.RequireFromString(v), Valid: true}
}

func (f *FlexDecimal) UnmarshalJSON(data []byte) error {
	raw, present, err := flexScalar(data)
	if err != nil {
		return err
	}
	if !present {
		*f = FlexDecimal{}
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid decimal value %q", raw)
	}
	*f = FlexDecimal{Value: d, Valid: true}
	return nil
}

func (f FlexDecimal) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(f.Value.String()), nil
}

// OrZero returns the value, or zero when absent
func (f FlexDecimal) OrZero() decimal.Decimal {
	if !f.Valid {
		return decimal.Zero
	}
	return f.Value
}

// Null converts to the nullable column type
func (f FlexDecimal) Null() decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: f.Value, Valid: f.Valid}
}

// FlexFloat is FlexDecimal for float columns
type FlexFloat struct {
	Value float64
	Valid bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	raw, present, err := flexScalar(data)
	if err != nil {
		return err
	}
	if !present {
		*f = FlexFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", raw)
	}
	*f = FlexFloat{Value: v, Valid: true}
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// OrZero returns the value, or zero when absent
func (f FlexFloat) OrZero() float64 {
	if !f.Valid {
		return 0
	}
	return f.Value
}

// flexScalar returns the textual number carried by a JSON number or string
func flexScalar(data []byte) (string, bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", false, nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return "", false, nil
		}
		return s, true, nil
	}
	return string(data), true, nil
}

// FlexJSON holds a JSON field that clients send either as structured JSON
// or as a JSON-encoded string. A string whose content parses as JSON is
// replaced by that content; any other string is kept as a JSON string.
type FlexJSON struct {
	Raw json.RawMessage
	Set bool
}

func (f *FlexJSON) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	f.Set = true
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		trimmed := strings.TrimSpace(s)
		if trimmed != "" && json.Valid([]byte(trimmed)) {
			f.Raw = json.RawMessage(trimmed)
			return nil
		}
	}
	f.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (f FlexJSON) MarshalJSON() ([]byte, error) {
	if !f.Set || len(f.Raw) == 0 {
		return []byte("null"), nil
	}
	return f.Raw, nil
}

// JSON converts to the column type. An unset field becomes nil.
func (f FlexJSON) JSON() datatypes.JSON {
	if !f.Set {
		return nil
	}
	if len(f.Raw) == 0 {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(f.Raw)
}
