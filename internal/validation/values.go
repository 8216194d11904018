package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// Values is a form record: field name to the raw value the user entered.
// Inputs arrive as strings from text boxes, as numbers from JSON bodies, or as
// governed-account references ({"pubkey": "..."} or a bare base58 string).
type Values map[string]interface{}

// Clone returns a shallow copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// With returns a copy of v with field set to value.
func (v Values) With(field string, value interface{}) Values {
	out := v.Clone()
	out[field] = value
	return out
}

// Merge returns a copy of v overlaid with every entry of other.
func (v Values) Merge(other Values) Values {
	out := v.Clone()
	for k, val := range other {
		out[k] = val
	}
	return out
}

// IsEmpty reports whether field is absent, nil, or a blank string.
func (v Values) IsEmpty(field string) bool {
	return isEmpty(v[field])
}

// String returns the trimmed string form of field.
func (v Values) String(field string) string {
	switch val := v[field].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// Decimal parses field as an exact decimal number.
func (v Values) Decimal(field string) (decimal.Decimal, error) {
	return toDecimal(v[field])
}

// Uint64 parses field as a non-negative integer.
func (v Values) Uint64(field string) (uint64, error) {
	d, err := toDecimal(v[field])
	if err != nil {
		return 0, err
	}
	return decimalToUint64(d)
}

// PublicKey parses field as a base58 public key.
func (v Values) PublicKey(field string) (solana.PublicKey, error) {
	return toPublicKey(v[field])
}

func isEmpty(value interface{}) bool {
	switch val := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case map[string]interface{}:
		return isEmpty(val["pubkey"])
	default:
		return false
	}
}

func toDecimal(value interface{}) (decimal.Decimal, error) {
	switch val := value.(type) {
	case decimal.Decimal:
		return val, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero, fmt.Errorf("must be a number")
		}
		return decimal.NewFromFloat(val), nil
	case float32:
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return decimal.Zero, fmt.Errorf("must be a number")
		}
		return decimal.NewFromFloat32(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int32:
		return decimal.NewFromInt32(val), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case uint32:
		return decimal.NewFromInt(int64(val)), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(val), 0), nil
	case json.Number:
		return decimal.NewFromString(val.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(val))
	default:
		return decimal.Zero, fmt.Errorf("must be a number")
	}
}

func decimalToUint64(d decimal.Decimal) (uint64, error) {
	if !d.IsInteger() {
		return 0, fmt.Errorf("must be a whole number")
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("must not be negative")
	}
	n := d.BigInt()
	if !n.IsUint64() {
		return 0, fmt.Errorf("is too large")
	}
	return n.Uint64(), nil
}

func toPublicKey(value interface{}) (solana.PublicKey, error) {
	switch val := value.(type) {
	case solana.PublicKey:
		return val, nil
	case string:
		return solana.PublicKeyFromBase58(strings.TrimSpace(val))
	case map[string]interface{}:
		return toPublicKey(val["pubkey"])
	default:
		return solana.PublicKey{}, fmt.Errorf("must be a public key")
	}
}

// NaturalAmount converts a UI amount into base units of a mint with decimals.
func NaturalAmount(amount decimal.Decimal, decimals uint8) (uint64, error) {
	natural := amount.Shift(int32(decimals))
	if !natural.IsInteger() {
		return 0, fmt.Errorf("has more than %d decimal places", decimals)
	}
	return decimalToUint64(natural)
}
