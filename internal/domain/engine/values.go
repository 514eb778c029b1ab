package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dqcheck/dqcheck/internal/domain"
)

// Column dtypes, named after the pandas dtypes the suites are written against.
const (
	kindInt    = "int64"
	kindFloat  = "float64"
	kindBool   = "bool"
	kindObject = "object"
)

func parseDecimal(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parseBool(raw string) (bool, bool) {
	switch strings.TrimSpace(raw) {
	case "True", "true", "TRUE":
		return true, true
	case "False", "false", "FALSE":
		return false, true
	}
	return false, false
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(n), true
	case float32:
		return toDecimal(float64(n))
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		return parseDecimal(n.String())
	case string:
		return parseDecimal(n)
	}
	return decimal.Zero, false
}

// cellKey maps a raw cell onto a comparison key under the column's dtype.
// Only numeric columns compare numerically, so "1" and "1.0" match in an
// int64 or float64 column while "007" and "7" stay distinct in an object
// column.
func cellKey(kind, raw string) string {
	switch kind {
	case kindInt, kindFloat:
		if d, ok := parseDecimal(raw); ok {
			return "n:" + d.String()
		}
	case kindBool:
		if b, ok := parseBool(raw); ok {
			return "b:" + strconv.FormatBool(b)
		}
	}
	return "s:" + raw
}

// valueKey maps a suite value onto the key a matching cell of a kind column
// would have. Numeric strings match numeric columns and "true"/"false"
// match bool columns. Non-string values never match an object column.
func valueKey(kind string, v any) string {
	if v == nil {
		return "null"
	}
	switch kind {
	case kindInt, kindFloat:
		if d, ok := toDecimal(v); ok {
			return "n:" + d.String()
		}
	case kindBool:
		switch t := v.(type) {
		case bool:
			return "b:" + strconv.FormatBool(t)
		case string:
			if b, ok := parseBool(t); ok {
				return "b:" + strconv.FormatBool(b)
			}
		}
	}
	if s, ok := v.(string); ok {
		return "s:" + s
	}
	return fmt.Sprintf("v:%T:%v", v, v)
}

// keySet indexes values by valueKey for a column of kind.
func keySet(kind string, values []any) map[string]any {
	set := make(map[string]any, len(values))
	for _, v := range values {
		set[valueKey(kind, v)] = v
	}
	return set
}

// inferKind returns the dtype a dataframe library would assign to the
// non-missing cells. An all-missing column is float64.
func inferKind(cells []domain.Cell) string {
	isInt, isFloat, isBool := true, true, true
	seen := false
	for _, c := range cells {
		if c.Missing {
			continue
		}
		seen = true
		v := strings.TrimSpace(c.Value)
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := parseBool(v); !ok {
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			return kindObject
		}
	}
	switch {
	case !seen:
		return kindFloat
	case isBool:
		return kindBool
	case isInt:
		return kindInt
	case isFloat:
		return kindFloat
	}
	return kindObject
}

// typedValue converts a raw cell into the JSON value matching kind.
func typedValue(kind, raw string) any {
	v := strings.TrimSpace(raw)
	switch kind {
	case kindInt:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case kindFloat:
		if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	case kindBool:
		if b, ok := parseBool(v); ok {
			return b
		}
	}
	return raw
}

// typeAliases maps accepted type_ names onto dtypes.
var typeAliases = map[string]string{
	"int": kindInt, "int64": kindInt, "int32": kindInt, "integer": kindInt, "IntegerType": kindInt, "LongType": kindInt,
	"float": kindFloat, "float64": kindFloat, "float32": kindFloat, "double": kindFloat, "number": kindFloat,
	"DoubleType": kindFloat, "FloatType": kindFloat,
	"bool": kindBool, "boolean": kindBool, "BooleanType": kindBool,
	"str": kindObject, "string": kindObject, "object": kindObject, "StringType": kindObject,
}

func resolveTypeName(name string) (string, bool) {
	k, ok := typeAliases[name]
	if !ok {
		k, ok = typeAliases[strings.ToLower(name)]
	}
	return k, ok
}

// strftimeDirectives maps C strftime directives onto Go reference layouts.
// Numeric fields use the unpadded layouts, which parse one or two digits
// the way strptime does.
var strftimeDirectives = map[byte]string{
	'Y': "2006", 'y': "06", 'm': "1", 'd': "2", 'e': "_2",
	'H': "15", 'I': "3", 'M': "4", 'S': "5", 'p': "PM",
	'b': "Jan", 'h': "Jan", 'B': "January", 'a': "Mon", 'A': "Monday",
	'j': "002", 'f': "000000", 'z': "-0700", 'Z': "MST", '%': "%",
}

// strftimeToLayout converts a strftime format into a time.Parse layout.
func strftimeToLayout(format string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			b.WriteByte(format[i])
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("%w: dangling %% in strftime_format %q", domain.ErrInvalidKwargs, format)
		}
		i++
		layout, ok := strftimeDirectives[format[i]]
		if !ok {
			return "", fmt.Errorf("%w: unsupported directive %%%c in strftime_format %q", domain.ErrInvalidKwargs, format[i], format)
		}
		b.WriteString(layout)
	}
	return b.String(), nil
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round(float64(part)*100/float64(whole), 4)
}
