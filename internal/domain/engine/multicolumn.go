package engine

import (
	"fmt"
	"strings"

	"github.com/dqcheck/dqcheck/internal/domain"
)

func multiColumnExpectations() []expectation {
	return []expectation{
		{"expect_compound_columns_to_be_unique", KindMultiColumn, "Combinations of column_list values are unique", compoundColumnsUnique},
		{"expect_column_pair_values_to_be_equal", KindMultiColumn, "column_A equals column_B row by row", columnPairEqual},
	}
}

func columnsOf(ds *domain.Dataset, names []string) ([][]domain.Cell, []string, error) {
	cols := make([][]domain.Cell, len(names))
	kinds := make([]string, len(names))
	for i, n := range names {
		cells, ok := ds.Column(n)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", domain.ErrColumnNotFound, n)
		}
		cols[i] = cells
		kinds[i] = inferKind(cells)
	}
	return cols, kinds, nil
}

// compoundColumnsUnique skips rows where every listed column is missing and
// flags every occurrence of a repeated combination.
func compoundColumnsUnique(ds *domain.Dataset, kw kwargs) (outcome, error) {
	names, err := kw.stringList("column_list")
	if err != nil {
		return outcome{}, err
	}
	if len(names) == 0 {
		return outcome{}, fmt.Errorf("%w: column_list must not be empty", domain.ErrInvalidKwargs)
	}
	mostly, err := kw.mostly()
	if err != nil {
		return outcome{}, err
	}
	cols, kinds, err := columnsOf(ds, names)
	if err != nil {
		return outcome{}, err
	}

	rows := ds.RowCount()
	keys := make([]string, rows)
	skip := make([]bool, rows)
	counts := make(map[string]int)
	for r := 0; r < rows; r++ {
		allMissing := true
		parts := make([]string, len(cols))
		for i, col := range cols {
			if !col[r].Missing {
				allMissing = false
				parts[i] = cellKey(kinds[i], col[r].Value)
			} else {
				parts[i] = "null"
			}
		}
		if allMissing {
			skip[r] = true
			continue
		}
		keys[r] = strings.Join(parts, "\x1f")
		counts[keys[r]]++
	}

	m := &mapResult{elementCount: rows}
	for r := 0; r < rows; r++ {
		if skip[r] {
			m.missingCount++
			continue
		}
		if counts[keys[r]] > 1 {
			m.add(r, rowValues(names, kinds, cols, r))
		}
	}
	return outcome{success: m.meetsMostly(mostly), unexpected: m}, nil
}

// columnPairEqual skips rows where both values are missing.
func columnPairEqual(ds *domain.Dataset, kw kwargs) (outcome, error) {
	a, err := kw.requireString("column_A")
	if err != nil {
		return outcome{}, err
	}
	b, err := kw.requireString("column_B")
	if err != nil {
		return outcome{}, err
	}
	mostly, err := kw.mostly()
	if err != nil {
		return outcome{}, err
	}
	cols, kinds, err := columnsOf(ds, []string{a, b})
	if err != nil {
		return outcome{}, err
	}

	m := &mapResult{elementCount: ds.RowCount()}
	for r := 0; r < ds.RowCount(); r++ {
		ca, cb := cols[0][r], cols[1][r]
		if ca.Missing && cb.Missing {
			m.missingCount++
			continue
		}
		if ca.Missing != cb.Missing || cellKey(kinds[0], ca.Value) != cellKey(kinds[1], cb.Value) {
			m.add(r, []any{cellValue(kinds[0], ca), cellValue(kinds[1], cb)})
		}
	}
	return outcome{success: m.meetsMostly(mostly), unexpected: m}, nil
}

func cellValue(kind string, c domain.Cell) any {
	if c.Missing {
		return nil
	}
	return typedValue(kind, c.Value)
}

func rowValues(names, kinds []string, cols [][]domain.Cell, r int) map[string]any {
	out := make(map[string]any, len(names))
	for i, n := range names {
		out[n] = cellValue(kinds[i], cols[i][r])
	}
	return out
}
