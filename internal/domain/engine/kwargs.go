package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dqcheck/dqcheck/internal/domain"
)

// kwargs wraps an expectation's keyword arguments with typed accessors.
// Every accessor error wraps domain.ErrInvalidKwargs.
type kwargs map[string]any

func (k kwargs) has(key string) bool {
	v, ok := k[key]
	return ok && v != nil
}

func (k kwargs) requireString(key string) (string, error) {
	v, ok := k[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %q is required", domain.ErrInvalidKwargs, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string (got %T)", domain.ErrInvalidKwargs, key, v)
	}
	return s, nil
}

func (k kwargs) column() (string, error) {
	return k.requireString("column")
}

func (k kwargs) optionalString(key, def string) (string, error) {
	if !k.has(key) {
		return def, nil
	}
	return k.requireString(key)
}

func (k kwargs) boolean(key string, def bool) (bool, error) {
	if !k.has(key) {
		return def, nil
	}
	switch v := k[key].(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%w: %q must be a boolean (got %q)", domain.ErrInvalidKwargs, key, v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: %q must be a boolean (got %T)", domain.ErrInvalidKwargs, key, v)
	}
}

// number returns nil, nil when the key is absent or null.
func (k kwargs) number(key string) (*decimal.Decimal, error) {
	if !k.has(key) {
		return nil, nil
	}
	d, ok := toDecimal(k[key])
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a number (got %v)", domain.ErrInvalidKwargs, key, k[key])
	}
	return &d, nil
}

func (k kwargs) requireNumber(key string) (decimal.Decimal, error) {
	d, err := k.number(key)
	if err != nil {
		return decimal.Zero, err
	}
	if d == nil {
		return decimal.Zero, fmt.Errorf("%w: %q is required", domain.ErrInvalidKwargs, key)
	}
	return *d, nil
}

func (k kwargs) integer(key string) (*int, error) {
	d, err := k.number(key)
	if err != nil || d == nil {
		return nil, err
	}
	if !d.IsInteger() {
		return nil, fmt.Errorf("%w: %q must be an integer (got %s)", domain.ErrInvalidKwargs, key, d.String())
	}
	n := int(d.IntPart())
	return &n, nil
}

// mostly returns the success threshold in [0,1]; 1 when unset.
func (k kwargs) mostly() (float64, error) {
	d, err := k.number("mostly")
	if err != nil {
		return 0, err
	}
	if d == nil {
		return 1, nil
	}
	f := d.InexactFloat64()
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("%w: \"mostly\" must be between 0 and 1 (got %v)", domain.ErrInvalidKwargs, f)
	}
	return f, nil
}

// list returns the raw elements of a list kwarg.
func (k kwargs) list(key string) ([]any, error) {
	v, ok := k[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: %q is required", domain.ErrInvalidKwargs, key)
	}
	switch l := v.(type) {
	case []any:
		return l, nil
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q must be a list (got %T)", domain.ErrInvalidKwargs, key, v)
	}
}

func (k kwargs) stringList(key string) ([]string, error) {
	raw, err := k.list(key)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(raw))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %q must contain only strings (item %d is %T)", domain.ErrInvalidKwargs, key, i, v)
		}
		out[i] = s
	}
	return out, nil
}

// bounds reads min_value/max_value and their strict flags. At least one
// bound must be present.
type bounds struct {
	min, max             decimal.Decimal
	minText, maxText     string
	hasMin, hasMax       bool
	strictMin, strictMax bool
	textual              bool
}

func (k kwargs) bounds() (bounds, error) {
	var b bounds
	var err error
	if b.strictMin, err = k.boolean("strict_min", false); err != nil {
		return b, err
	}
	if b.strictMax, err = k.boolean("strict_max", false); err != nil {
		return b, err
	}

	minRaw, maxRaw := k["min_value"], k["max_value"]
	b.hasMin, b.hasMax = minRaw != nil, maxRaw != nil
	if !b.hasMin && !b.hasMax {
		return b, fmt.Errorf("%w: min_value and max_value cannot both be null", domain.ErrInvalidKwargs)
	}

	// String bounds that are not numbers (ISO dates, codes) compare lexically.
	if isNonNumericString(minRaw) || isNonNumericString(maxRaw) {
		_, minIsText := minRaw.(string)
		_, maxIsText := maxRaw.(string)
		if b.hasMin && b.hasMax && (!minIsText || !maxIsText) {
			return b, fmt.Errorf("%w: min_value %v and max_value %v mix text and numbers", domain.ErrInvalidKwargs, minRaw, maxRaw)
		}
		b.textual = true
		if b.hasMin {
			b.minText = fmt.Sprint(minRaw)
		}
		if b.hasMax {
			b.maxText = fmt.Sprint(maxRaw)
		}
		if b.hasMin && b.hasMax && b.minText > b.maxText {
			return b, fmt.Errorf("%w: min_value %q is greater than max_value %q", domain.ErrInvalidKwargs, b.minText, b.maxText)
		}
		return b, nil
	}

	if b.hasMin {
		if b.min, err = k.requireNumber("min_value"); err != nil {
			return b, err
		}
	}
	if b.hasMax {
		if b.max, err = k.requireNumber("max_value"); err != nil {
			return b, err
		}
	}
	if b.hasMin && b.hasMax && b.min.GreaterThan(b.max) {
		return b, fmt.Errorf("%w: min_value %s is greater than max_value %s", domain.ErrInvalidKwargs, b.min, b.max)
	}
	return b, nil
}

func isNonNumericString(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := decimal.NewFromString(strings.TrimSpace(s))
	return err != nil
}

// containsNumber checks d against numeric bounds.
func (b bounds) containsNumber(d decimal.Decimal) bool {
	if b.textual {
		return false
	}
	if b.hasMin {
		if b.strictMin && !d.GreaterThan(b.min) {
			return false
		}
		if !b.strictMin && d.LessThan(b.min) {
			return false
		}
	}
	if b.hasMax {
		if b.strictMax && !d.LessThan(b.max) {
			return false
		}
		if !b.strictMax && d.GreaterThan(b.max) {
			return false
		}
	}
	return true
}

// containsText checks s lexically against textual bounds.
func (b bounds) containsText(s string) bool {
	if b.hasMin {
		c := strings.Compare(s, b.minText)
		if c < 0 || (b.strictMin && c == 0) {
			return false
		}
	}
	if b.hasMax {
		c := strings.Compare(s, b.maxText)
		if c > 0 || (b.strictMax && c == 0) {
			return false
		}
	}
	return true
}

// contains checks a raw cell value. Non-numeric values never satisfy
// numeric bounds.
func (b bounds) contains(raw string) bool {
	if b.textual {
		return b.containsText(raw)
	}
	d, ok := parseDecimal(raw)
	if !ok {
		return false
	}
	return b.containsNumber(d)
}

// containsInt is used for counts and lengths.
func (b bounds) containsInt(n int) bool {
	return b.containsNumber(decimal.NewFromInt(int64(n)))
}

// containsFloat is used for aggregate statistics computed in float64.
func (b bounds) containsFloat(f float64) bool {
	if b.textual || math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return b.containsNumber(decimal.NewFromFloat(f))
}
