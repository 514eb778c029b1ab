package engine

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dqcheck/dqcheck/internal/domain"
)

func aggregateExpectations() []expectation {
	return []expectation{
		{"expect_column_min_to_be_between", KindAggregate, "Column minimum lies within [min_value, max_value]", columnMinBetween},
		{"expect_column_max_to_be_between", KindAggregate, "Column maximum lies within [min_value, max_value]", columnMaxBetween},
		{"expect_column_mean_to_be_between", KindAggregate, "Column mean lies within [min_value, max_value]", columnMeanBetween},
		{"expect_column_median_to_be_between", KindAggregate, "Column median lies within [min_value, max_value]", columnMedianBetween},
		{"expect_column_sum_to_be_between", KindAggregate, "Column sum lies within [min_value, max_value]", columnSumBetween},
		{"expect_column_stdev_to_be_between", KindAggregate, "Sample standard deviation lies within [min_value, max_value]", columnStdevBetween},
		{"expect_column_unique_value_count_to_be_between", KindAggregate, "Number of distinct values lies within [min_value, max_value]", uniqueValueCountBetween},
		{"expect_column_proportion_of_unique_values_to_be_between", KindAggregate, "Share of distinct values lies within [min_value, max_value]", uniqueProportionBetween},
		{"expect_column_distinct_values_to_be_in_set", KindAggregate, "Every distinct value belongs to value_set", distinctInSet},
		{"expect_column_distinct_values_to_contain_set", KindAggregate, "Distinct values include every member of value_set", distinctContainSet},
		{"expect_column_distinct_values_to_equal_set", KindAggregate, "Distinct values equal value_set", distinctEqualSet},
		{"expect_column_values_to_be_of_type", KindAggregate, "Column dtype matches type_", valuesOfType},
		{"expect_column_values_to_be_in_type_list", KindAggregate, "Column dtype is one of type_list", valuesInTypeList},
	}
}

// presentCells returns the non-missing cells of the kwarg column.
func presentCells(ds *domain.Dataset, kw kwargs) (col string, cells []domain.Cell, kind string, err error) {
	col, err = kw.column()
	if err != nil {
		return "", nil, "", err
	}
	all, ok := ds.Column(col)
	if !ok {
		return "", nil, "", fmt.Errorf("%w: %q", domain.ErrColumnNotFound, col)
	}
	kind = inferKind(all)
	for _, c := range all {
		if !c.Missing {
			cells = append(cells, c)
		}
	}
	return col, cells, kind, nil
}

func numericColumn(ds *domain.Dataset, kw kwargs) ([]decimal.Decimal, string, error) {
	col, cells, kind, err := presentCells(ds, kw)
	if err != nil {
		return nil, "", err
	}
	if kind != kindInt && kind != kindFloat {
		return nil, "", fmt.Errorf("column %q is not numeric (dtype %s)", col, kind)
	}
	out := make([]decimal.Decimal, 0, len(cells))
	for _, c := range cells {
		d, ok := parseDecimal(c.Value)
		if !ok {
			return nil, "", fmt.Errorf("column %q: value %q is not numeric", col, c.Value)
		}
		out = append(out, d)
	}
	return out, kind, nil
}

// observedNumber renders d as an int64 for integer columns, float64 otherwise.
func observedNumber(d decimal.Decimal, kind string) any {
	if kind == kindInt && d.IsInteger() {
		return d.IntPart()
	}
	return d.InexactFloat64()
}

func extremeBetween(ds *domain.Dataset, kw kwargs, pick func(a, b decimal.Decimal) bool) (outcome, error) {
	b, err := kw.bounds()
	if err != nil {
		return outcome{}, err
	}
	values, kind, err := numericColumn(ds, kw)
	if err != nil {
		return outcome{}, err
	}
	if len(values) == 0 {
		return observed(false, nil), nil
	}
	best := values[0]
	for _, v := range values[1:] {
		if pick(v, best) {
			best = v
		}
	}
	return observed(b.containsNumber(best), observedNumber(best, kind)), nil
}

func columnMinBetween(ds *domain.Dataset, kw kwargs) (outcome, error) {
	return extremeBetween(ds, kw, decimal.Decimal.LessThan)
}

func columnMaxBetween(ds *domain.Dataset, kw kwargs) (outcome, error) {
	return extremeBetween(ds, kw, decimal.Decimal.GreaterThan)
}

func columnSumBetween(ds *domain.Dataset, kw kwargs) (outcome, error) {
	b, err := kw.bounds()
	if err != nil {
		return outcome{}, err
	}
	values, kind, err := numericColumn(ds, kw)
	if err != nil {
		return outcome{}, err
	}
	sum := decimal.Sum(decimal.Zero, values...)
	return observed(b.containsNumber(sum), observedNumber(sum, kind)), nil
}

func columnMeanBetween(ds *domain.Dataset, kw kwargs) (outcome, error) {
	b, err := kw.bounds()
	if err != nil {
		return outcome{}, err
	}
	values, _, err := numericColumn(ds, kw)
	if err != nil {
		return outcome{}, err
	}
	if len(values) == 0 {
		return observed(false, nil), nil
	}
	mean := decimal.Avg(values[0], values[1:]...)
	return observed(b.containsNumber(mean), mean.InexactFloat64()), nil
}

func columnMedianBetween(ds *domain.Dataset, kw kwargs) (outcome, error) {
	b, err := kw.bounds()
	if err != nil {
		return outcome{}, err
	}
	values, _, err := numericColumn(ds, kw)
	if err != nil {
		return outcome{}, err
	}
	if len(values) == 0 {
		return observed(false, nil), nil
	}
	sorted := slices.Clone(values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
	}
	return observed(b.containsNumber(median), median.InexactFloat64()), nil
}

func columnStdevBetween(ds *domain.Dataset, kw kwargs) (outcome, error) {
	b, err := kw.bounds()
	if err != nil {
		return outcome{}, err
	}
	values, _, err := numericColumn(ds, kw)
	if err != nil {
		return outcome{}, err
	}
	if len(values) < 2 {
		return observed(false, nil), nil
	}
	floats := make([]float64, len(values))
	var mean float64
	for i, v := range values {
		floats[i] = v.InexactFloat64()
		mean += floats[i]
	}
	mean /= float64(len(floats))
	var ss float64
	for _, f := range floats {
		ss += (f - mean) * (f - mean)
	}
	stdev := math.Sqrt(ss / float64(len(floats)-1))
	return observed(b.containsFloat(stdev), stdev), nil
}

// distinct returns the distinct present values in first-seen order, keyed by
// cellKey under kind.
func distinct(cells []domain.Cell, kind string) (keys []string, values map[string]any) {
	values = make(map[string]any)
	for _, c := range cells {
		k := cellKey(kind, c.Value)
		if _, ok := values[k]; ok {
			continue
		}
		values[k] = typedValue(kind, c.Value)
		keys = append(keys, k)
	}
	return keys, values
}

func uniqueValueCountBetween(ds *domain.Dataset, kw kwargs) (outcome, error) {
	b, err := kw.bounds()
	if err != nil {
		return outcome{}, err
	}
	_, cells, kind, err := presentCells(ds, kw)
	if err != nil {
		return outcome{}, err
	}
	keys, _ := distinct(cells, kind)
	return observed(b.containsInt(len(keys)), len(keys)), nil
}

func uniqueProportionBetween(ds *domain.Dataset, kw kwargs) (outcome, error) {
	b, err := kw.bounds()
	if err != nil {
		return outcome{}, err
	}
	_, cells, kind, err := presentCells(ds, kw)
	if err != nil {
		return outcome{}, err
	}
	if len(cells) == 0 {
		return observed(false, nil), nil
	}
	keys, _ := distinct(cells, kind)
	p := float64(len(keys)) / float64(len(cells))
	return observed(b.containsFloat(p), p), nil
}

// sortedDistinct renders the observed distinct values in a stable order.
func sortedDistinct(keys []string, values map[string]any) []any {
	sorted := slices.Clone(keys)
	sort.Strings(sorted)
	out := make([]any, len(sorted))
	for i, k := range sorted {
		out[i] = values[k]
	}
	return out
}

func distinctInSet(ds *domain.Dataset, kw kwargs) (outcome, error) {
	raw, err := kw.list("value_set")
	if err != nil {
		return outcome{}, err
	}
	_, cells, kind, err := presentCells(ds, kw)
	if err != nil {
		return outcome{}, err
	}
	set := keySet(kind, raw)
	keys, values := distinct(cells, kind)
	success := true
	for _, k := range keys {
		if _, ok := set[k]; !ok {
			success = false
			break
		}
	}
	return observed(success, sortedDistinct(keys, values)), nil
}

func distinctContainSet(ds *domain.Dataset, kw kwargs) (outcome, error) {
	raw, err := kw.list("value_set")
	if err != nil {
		return outcome{}, err
	}
	_, cells, kind, err := presentCells(ds, kw)
	if err != nil {
		return outcome{}, err
	}
	set := keySet(kind, raw)
	keys, values := distinct(cells, kind)
	success := true
	for k := range set {
		if _, ok := values[k]; !ok {
			success = false
			break
		}
	}
	return observed(success, sortedDistinct(keys, values)), nil
}

func distinctEqualSet(ds *domain.Dataset, kw kwargs) (outcome, error) {
	raw, err := kw.list("value_set")
	if err != nil {
		return outcome{}, err
	}
	_, cells, kind, err := presentCells(ds, kw)
	if err != nil {
		return outcome{}, err
	}
	set := keySet(kind, raw)
	keys, values := distinct(cells, kind)
	success := len(keys) == len(set)
	if success {
		for _, k := range keys {
			if _, ok := set[k]; !ok {
				success = false
				break
			}
		}
	}
	return observed(success, sortedDistinct(keys, values)), nil
}

func valuesOfType(ds *domain.Dataset, kw kwargs) (outcome, error) {
	name, err := kw.requireString("type_")
	if err != nil {
		return outcome{}, err
	}
	want, ok := resolveTypeName(name)
	if !ok {
		return outcome{}, fmt.Errorf("%w: unsupported type_ %q", domain.ErrInvalidKwargs, name)
	}
	_, _, kind, err := presentCells(ds, kw)
	if err != nil {
		return outcome{}, err
	}
	return observed(kind == want, kind), nil
}

func valuesInTypeList(ds *domain.Dataset, kw kwargs) (outcome, error) {
	names, err := kw.stringList("type_list")
	if err != nil {
		return outcome{}, err
	}
	_, _, kind, err := presentCells(ds, kw)
	if err != nil {
		return outcome{}, err
	}
	for _, n := range names {
		want, ok := resolveTypeName(n)
		if !ok {
			return outcome{}, fmt.Errorf("%w: unsupported type %q in type_list", domain.ErrInvalidKwargs, n)
		}
		if want == kind {
			return observed(true, kind), nil
		}
	}
	return observed(false, kind), nil
}
