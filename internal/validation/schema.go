package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldType is the expected shape of a form field.
type FieldType string

const (
	TypeString    FieldType = "string"
	TypeNumber    FieldType = "number"
	TypeInteger   FieldType = "integer"
	TypePublicKey FieldType = "pubkey"
	// TypeAccount is a reference to a governed account picked from the asset list.
	TypeAccount   FieldType = "account"
)

// Rule defines the validation applied to one field.
type Rule struct {
	Field         string    `json:"field"`
	Label         string    `json:"label"`
	Type          FieldType `json:"type"`
	Required      bool      `json:"required"`
	MinLength     int       `json:"min_length,omitempty"` // bytes, not runes: names end up as PDA seeds
	MaxLength     int       `json:"max_length,omitempty"`
	Pattern       string    `json:"pattern,omitempty"`
	Min           *float64  `json:"min,omitempty"`
	Max           *float64  `json:"max,omitempty"`
	Positive      bool      `json:"positive,omitempty"`
	AllowedValues []string  `json:"allowed_values,omitempty"`

	// Custom runs after the type checks pass and sees the whole form.
	Custom func(value interface{}, values Values) error `json:"-"`
}

// Schema is the declarative validation schema of one form type.
type Schema struct {
	Name  string `json:"name"`
	Rules []Rule `json:"rules"`
}

// Rule returns the rule for field.
func (s Schema) Rule(field string) (Rule, bool) {
	for _, r := range s.Rules {
		if r.Field == field {
			return r, true
		}
	}
	return Rule{}, false
}

// IsValid validates values and reports whether no field failed.
func (s Schema) IsValid(values Values) (bool, FieldErrors) {
	errs := s.Validate(values)
	return len(errs) == 0, errs
}

// Validate checks every rule against values. The returned map is never nil.
func (s Schema) Validate(values Values) FieldErrors {
	errs := make(FieldErrors)

	for _, rule := range s.Rules {
		value, exists := values[rule.Field]
		label := rule.label()

		if !exists || isEmpty(value) {
			if rule.Required {
				errs.Add(rule.Field, KindRequired, fmt.Sprintf("%s is required", label))
			}
			continue
		}

		if kind, err := rule.check(value); err != nil {
			errs.Add(rule.Field, kind, fmt.Sprintf("%s %s", label, err.Error()))
			continue
		}

		if rule.Custom != nil {
			if err := rule.Custom(value, values); err != nil {
				errs.Add(rule.Field, KindInvalid, err.Error())
			}
		}
	}

	return errs
}

func (r Rule) label() string {
	if r.Label != "" {
		return r.Label
	}
	return r.Field
}

func (r Rule) check(value interface{}) (FailureKind, error) {
	switch r.Type {
	case TypeString:
		return r.checkString(value)
	case TypeNumber, TypeInteger:
		return r.checkNumber(value)
	case TypePublicKey, TypeAccount:
		if _, err := toPublicKey(value); err != nil {
			return KindFormat, fmt.Errorf("must be a valid public key")
		}
	}
	return "", nil
}

func (r Rule) checkString(value interface{}) (FailureKind, error) {
	str, ok := value.(string)
	if !ok {
		return KindType, fmt.Errorf("must be a string")
	}
	str = strings.TrimSpace(str)

	if r.MinLength > 0 && len(str) < r.MinLength {
		return KindLength, fmt.Errorf("must be at least %d bytes long", r.MinLength)
	}
	if r.MaxLength > 0 && len(str) > r.MaxLength {
		return KindLength, fmt.Errorf("must be at most %d bytes long", r.MaxLength)
	}

	if r.Pattern != "" {
		regex, err := regexp.Compile(r.Pattern)
		if err != nil {
			return KindInvalid, fmt.Errorf("has an invalid validation pattern")
		}
		if !regex.MatchString(str) {
			return KindFormat, fmt.Errorf("has an invalid format")
		}
	}

	if len(r.AllowedValues) > 0 {
		for _, v := range r.AllowedValues {
			if str == v {
				return "", nil
			}
		}
		return KindNotAllowed, fmt.Errorf("must be one of: %s", strings.Join(r.AllowedValues, ", "))
	}

	return "", nil
}

func (r Rule) checkNumber(value interface{}) (FailureKind, error) {
	num, err := toDecimal(value)
	if err != nil {
		return KindType, fmt.Errorf("must be a number")
	}

	if r.Type == TypeInteger {
		if _, err := decimalToUint64(num); err != nil {
			return KindType, err
		}
	}

	if r.Positive && !num.IsPositive() {
		return KindRange, fmt.Errorf("must be greater than 0")
	}
	if r.Min != nil && num.LessThan(decimal.NewFromFloat(*r.Min)) {
		return KindRange, fmt.Errorf("must be at least %v", *r.Min)
	}
	if r.Max != nil && num.GreaterThan(decimal.NewFromFloat(*r.Max)) {
		return KindRange, fmt.Errorf("must be at most %v", *r.Max)
	}

	return "", nil
}

// Float64Ptr is a helper for Rule.Min and Rule.Max literals.
func Float64Ptr(f float64) *float64 {
	return &f
}
