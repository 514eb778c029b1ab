package engine

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dqcheck/dqcheck/internal/domain"
)

func columnMapExpectations() []expectation {
	return []expectation{
		{"expect_column_values_to_not_be_null", KindColumnMap, "Values are not null", valuesNotNull},
		{"expect_column_values_to_be_null", KindColumnMap, "Values are null", valuesNull},
		{"expect_column_values_to_be_between", KindColumnMap, "Values lie within [min_value, max_value]", valuesBetween},
		{"expect_column_values_to_be_in_set", KindColumnMap, "Values belong to value_set", valuesInSet},
		{"expect_column_values_to_not_be_in_set", KindColumnMap, "Values do not belong to value_set", valuesNotInSet},
		{"expect_column_values_to_match_regex", KindColumnMap, "Values match regex", valuesMatchRegex},
		{"expect_column_values_to_not_match_regex", KindColumnMap, "Values do not match regex", valuesNotMatchRegex},
		{"expect_column_values_to_be_unique", KindColumnMap, "Values are unique", valuesUnique},
		{"expect_column_value_lengths_to_be_between", KindColumnMap, "Value lengths lie within [min_value, max_value]", lengthsBetween},
		{"expect_column_value_lengths_to_equal", KindColumnMap, "Value lengths equal value", lengthsEqual},
		{"expect_column_values_to_match_strftime_format", KindColumnMap, "Values parse with strftime_format", valuesMatchStrftime},
	}
}

// mapCheck walks the non-missing cells of the kwarg column and records every
// cell for which test returns false.
func mapCheck(ds *domain.Dataset, kw kwargs, test func(c domain.Cell) bool) (outcome, error) {
	col, err := kw.column()
	if err != nil {
		return outcome{}, err
	}
	mostly, err := kw.mostly()
	if err != nil {
		return outcome{}, err
	}
	cells, ok := ds.Column(col)
	if !ok {
		return outcome{}, fmt.Errorf("%w: %q", domain.ErrColumnNotFound, col)
	}

	kind := inferKind(cells)
	m := &mapResult{elementCount: len(cells)}
	for _, c := range cells {
		if c.Missing {
			m.missingCount++
			continue
		}
		if !test(c) {
			m.add(c.Row, typedValue(kind, c.Value))
		}
	}
	return outcome{success: m.meetsMostly(mostly), unexpected: m}, nil
}

func valuesNotNull(ds *domain.Dataset, kw kwargs) (outcome, error) {
	return nullCheck(ds, kw, true)
}

func valuesNull(ds *domain.Dataset, kw kwargs) (outcome, error) {
	return nullCheck(ds, kw, false)
}

func nullCheck(ds *domain.Dataset, kw kwargs, wantPresent bool) (outcome, error) {
	col, err := kw.column()
	if err != nil {
		return outcome{}, err
	}
	mostly, err := kw.mostly()
	if err != nil {
		return outcome{}, err
	}
	cells, ok := ds.Column(col)
	if !ok {
		return outcome{}, fmt.Errorf("%w: %q", domain.ErrColumnNotFound, col)
	}

	kind := inferKind(cells)
	m := &mapResult{elementCount: len(cells), nullCheck: true}
	for _, c := range cells {
		switch {
		case wantPresent && c.Missing:
			m.add(c.Row, nil)
		case !wantPresent && !c.Missing:
			m.add(c.Row, typedValue(kind, c.Value))
		}
	}
	return outcome{success: m.meetsMostly(mostly), unexpected: m}, nil
}

// columnKind infers the dtype of the kwargs column.
func columnKind(ds *domain.Dataset, kw kwargs) (string, error) {
	col, err := kw.column()
	if err != nil {
		return "", err
	}
	cells, ok := ds.Column(col)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrColumnNotFound, col)
	}
	return inferKind(cells), nil
}

func valuesBetween(ds *domain.Dataset, kw kwargs) (outcome, error) {
	b, err := kw.bounds()
	if err != nil {
		return outcome{}, err
	}
	return mapCheck(ds, kw, func(c domain.Cell) bool { return b.contains(c.Value) })
}

func valuesInSet(ds *domain.Dataset, kw kwargs) (outcome, error) {
	raw, err := kw.list("value_set")
	if err != nil {
		return outcome{}, err
	}
	kind, err := columnKind(ds, kw)
	if err != nil {
		return outcome{}, err
	}
	set := keySet(kind, raw)
	return mapCheck(ds, kw, func(c domain.Cell) bool {
		_, ok := set[cellKey(kind, c.Value)]
		return ok
	})
}

func valuesNotInSet(ds *domain.Dataset, kw kwargs) (outcome, error) {
	raw, err := kw.list("value_set")
	if err != nil {
		return outcome{}, err
	}
	kind, err := columnKind(ds, kw)
	if err != nil {
		return outcome{}, err
	}
	set := keySet(kind, raw)
	return mapCheck(ds, kw, func(c domain.Cell) bool {
		_, ok := set[cellKey(kind, c.Value)]
		return !ok
	})
}

func compileRegex(kw kwargs) (*regexp.Regexp, error) {
	pattern, err := kw.requireString("regex")
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: regex %q: %v", domain.ErrInvalidKwargs, pattern, err)
	}
	return re, nil
}

func valuesMatchRegex(ds *domain.Dataset, kw kwargs) (outcome, error) {
	re, err := compileRegex(kw)
	if err != nil {
		return outcome{}, err
	}
	return mapCheck(ds, kw, func(c domain.Cell) bool { return re.MatchString(c.Value) })
}

func valuesNotMatchRegex(ds *domain.Dataset, kw kwargs) (outcome, error) {
	re, err := compileRegex(kw)
	if err != nil {
		return outcome{}, err
	}
	return mapCheck(ds, kw, func(c domain.Cell) bool { return !re.MatchString(c.Value) })
}

// valuesUnique flags every occurrence of a duplicated value, not only the
// repeats.
func valuesUnique(ds *domain.Dataset, kw kwargs) (outcome, error) {
	col, err := kw.column()
	if err != nil {
		return outcome{}, err
	}
	cells, ok := ds.Column(col)
	if !ok {
		return outcome{}, fmt.Errorf("%w: %q", domain.ErrColumnNotFound, col)
	}
	kind := inferKind(cells)
	counts := make(map[string]int, len(cells))
	for _, c := range cells {
		if !c.Missing {
			counts[cellKey(kind, c.Value)]++
		}
	}
	return mapCheck(ds, kw, func(c domain.Cell) bool { return counts[cellKey(kind, c.Value)] == 1 })
}

func lengthsBetween(ds *domain.Dataset, kw kwargs) (outcome, error) {
	b, err := kw.bounds()
	if err != nil {
		return outcome{}, err
	}
	return mapCheck(ds, kw, func(c domain.Cell) bool { return b.containsInt(utf8.RuneCountInString(c.Value)) })
}

func lengthsEqual(ds *domain.Dataset, kw kwargs) (outcome, error) {
	want, err := kw.integer("value")
	if err != nil {
		return outcome{}, err
	}
	if want == nil {
		return outcome{}, fmt.Errorf("%w: \"value\" is required", domain.ErrInvalidKwargs)
	}
	return mapCheck(ds, kw, func(c domain.Cell) bool { return utf8.RuneCountInString(c.Value) == *want })
}

func valuesMatchStrftime(ds *domain.Dataset, kw kwargs) (outcome, error) {
	format, err := kw.requireString("strftime_format")
	if err != nil {
		return outcome{}, err
	}
	layout, err := strftimeToLayout(format)
	if err != nil {
		return outcome{}, err
	}
	return mapCheck(ds, kw, func(c domain.Cell) bool {
		_, perr := time.Parse(layout, strings.TrimSpace(c.Value))
		return perr == nil
	})
}
