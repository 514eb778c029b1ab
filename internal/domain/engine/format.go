package engine

import (
	"fmt"
	"sort"

	"github.com/dqcheck/dqcheck/internal/domain"
)

// partialLimit caps the partial_unexpected_* lists.
const partialLimit = 20

// outcome is what an evaluator returns before result formatting.
type outcome struct {
	success     bool
	observed    any
	hasObserved bool
	details     map[string]any
	unexpected  *mapResult
}

// mapResult holds per-row findings of a column map or multicolumn expectation.
type mapResult struct {
	elementCount int
	missingCount int
	// values are the JSON values of unexpected rows, indexes their row numbers.
	values  []any
	indexes []int
	// nullCheck expectations treat missing cells as their domain, so missing
	// counts are not reported separately.
	nullCheck bool
}

func (m *mapResult) add(row int, value any) {
	m.values = append(m.values, value)
	m.indexes = append(m.indexes, row)
}

func (m *mapResult) unexpectedCount() int { return len(m.values) }

func (m *mapResult) nonMissing() int {
	if m.nullCheck {
		return m.elementCount
	}
	return m.elementCount - m.missingCount
}

// meetsMostly reports whether the share of expected values reaches mostly.
// An empty domain always succeeds.
func (m *mapResult) meetsMostly(mostly float64) bool {
	n := m.nonMissing()
	if n == 0 {
		return true
	}
	ratio := float64(n-m.unexpectedCount()) / float64(n)
	return ratio >= mostly
}

func observed(success bool, value any) outcome {
	return outcome{success: success, observed: value, hasObserved: true}
}

func (o outcome) withDetails(d map[string]any) outcome {
	o.details = d
	return o
}

func (o outcome) format(rf domain.ResultFormat) map[string]any {
	res := map[string]any{}
	if rf == domain.ResultFormatBooleanOnly {
		return res
	}
	if o.hasObserved {
		res["observed_value"] = o.observed
	}
	if len(o.details) > 0 {
		res["details"] = o.details
	}
	if o.unexpected != nil {
		o.unexpected.format(rf, res)
	}
	return res
}

func (m *mapResult) format(rf domain.ResultFormat, res map[string]any) {
	unexpected := m.unexpectedCount()
	res["element_count"] = m.elementCount
	res["unexpected_count"] = unexpected

	if m.nullCheck {
		res["unexpected_percent"] = percent(unexpected, m.elementCount)
	} else {
		nonMissing := m.nonMissing()
		res["missing_count"] = m.missingCount
		res["missing_percent"] = percent(m.missingCount, m.elementCount)
		res["unexpected_percent"] = percent(unexpected, nonMissing)
		res["unexpected_percent_total"] = percent(unexpected, m.elementCount)
		res["unexpected_percent_nonmissing"] = percent(unexpected, nonMissing)
	}

	n := min(unexpected, partialLimit)
	res["partial_unexpected_list"] = nonNil(m.values[:n])

	if rf == domain.ResultFormatSummary || rf == domain.ResultFormatComplete {
		res["partial_unexpected_index_list"] = nonNilInts(m.indexes[:n])
		res["partial_unexpected_counts"] = valueCounts(m.values, partialLimit)
	}
	if rf == domain.ResultFormatComplete {
		res["unexpected_list"] = nonNil(m.values)
		res["unexpected_index_list"] = nonNilInts(m.indexes)
	}
}

// ValueCount is one entry of partial_unexpected_counts.
type ValueCount struct {
	Value any `json:"value"`
	Count int `json:"count"`
}

// valueCounts tallies values, most frequent first, ties in first-seen order.
func valueCounts(values []any, limit int) []ValueCount {
	idx := make(map[string]int)
	var counts []ValueCount
	for _, v := range values {
		key := fmt.Sprintf("%T:%v", v, v)
		if i, ok := idx[key]; ok {
			counts[i].Count++
			continue
		}
		idx[key] = len(counts)
		counts = append(counts, ValueCount{Value: v, Count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if len(counts) > limit {
		counts = counts[:limit]
	}
	if counts == nil {
		counts = []ValueCount{}
	}
	return counts
}

func nonNil(v []any) []any {
	if v == nil {
		return []any{}
	}
	return v
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
