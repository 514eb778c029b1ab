package engine

import (
	"fmt"
	"slices"

	"github.com/dqcheck/dqcheck/internal/domain"
)

func tableExpectations() []expectation {
	return []expectation{
		{"expect_table_row_count_to_be_between", KindTable, "Row count lies within [min_value, max_value]", tableRowCountBetween},
		{"expect_table_row_count_to_equal", KindTable, "Row count equals value", tableRowCountEqual},
		{"expect_table_column_count_to_equal", KindTable, "Column count equals value", tableColumnCountEqual},
		{"expect_table_column_count_to_be_between", KindTable, "Column count lies within [min_value, max_value]", tableColumnCountBetween},
		{"expect_table_columns_to_match_ordered_list", KindTable, "Columns equal column_list, in order", tableColumnsMatchOrdered},
		{"expect_table_columns_to_match_set", KindTable, "Columns equal column_set (or include it when exact_match is false)", tableColumnsMatchSet},
		{"expect_column_to_exist", KindTable, "Column exists, optionally at column_index", columnToExist},
	}
}

func tableRowCountBetween(ds *domain.Dataset, kw kwargs) (outcome, error) {
	b, err := kw.bounds()
	if err != nil {
		return outcome{}, err
	}
	n := ds.RowCount()
	return observed(b.containsInt(n), n), nil
}

func tableRowCountEqual(ds *domain.Dataset, kw kwargs) (outcome, error) {
	want, err := kw.integer("value")
	if err != nil {
		return outcome{}, err
	}
	if want == nil {
		return outcome{}, fmt.Errorf("%w: \"value\" is required", domain.ErrInvalidKwargs)
	}
	n := ds.RowCount()
	return observed(n == *want, n), nil
}

func tableColumnCountEqual(ds *domain.Dataset, kw kwargs) (outcome, error) {
	want, err := kw.integer("value")
	if err != nil {
		return outcome{}, err
	}
	if want == nil {
		return outcome{}, fmt.Errorf("%w: \"value\" is required", domain.ErrInvalidKwargs)
	}
	n := len(ds.Columns)
	return observed(n == *want, n), nil
}

func tableColumnCountBetween(ds *domain.Dataset, kw kwargs) (outcome, error) {
	b, err := kw.bounds()
	if err != nil {
		return outcome{}, err
	}
	n := len(ds.Columns)
	return observed(b.containsInt(n), n), nil
}

func tableColumnsMatchOrdered(ds *domain.Dataset, kw kwargs) (outcome, error) {
	want, err := kw.stringList("column_list")
	if err != nil {
		return outcome{}, err
	}
	got := slices.Clone(ds.Columns)
	if slices.Equal(got, want) {
		return observed(true, got), nil
	}

	var mismatched []map[string]any
	for i := 0; i < max(len(got), len(want)); i++ {
		var g, w any
		if i < len(got) {
			g = got[i]
		}
		if i < len(want) {
			w = want[i]
		}
		if g != w {
			mismatched = append(mismatched, map[string]any{"Expected Column Position": i, "Expected": w, "Found": g})
		}
	}
	return observed(false, got).withDetails(map[string]any{"mismatched": mismatched}), nil
}

func tableColumnsMatchSet(ds *domain.Dataset, kw kwargs) (outcome, error) {
	want, err := kw.stringList("column_set")
	if err != nil {
		return outcome{}, err
	}
	exact, err := kw.boolean("exact_match", true)
	if err != nil {
		return outcome{}, err
	}

	got := slices.Clone(ds.Columns)
	var unexpected, missing []string
	for _, c := range got {
		if !slices.Contains(want, c) {
			unexpected = append(unexpected, c)
		}
	}
	for _, c := range want {
		if !slices.Contains(got, c) {
			missing = append(missing, c)
		}
	}

	success := len(missing) == 0 && (!exact || len(unexpected) == 0)
	o := observed(success, got)
	if !success {
		d := map[string]any{}
		if len(missing) > 0 {
			d["missing"] = missing
		}
		if len(unexpected) > 0 {
			d["unexpected"] = unexpected
		}
		o = o.withDetails(map[string]any{"mismatched": d})
	}
	return o, nil
}

func columnToExist(ds *domain.Dataset, kw kwargs) (outcome, error) {
	col, err := kw.column()
	if err != nil {
		return outcome{}, err
	}
	idx, err := kw.integer("column_index")
	if err != nil {
		return outcome{}, err
	}
	at := ds.ColumnIndex(col)
	if at < 0 {
		return outcome{success: false}, nil
	}
	if idx != nil && *idx != at {
		return outcome{success: false}.withDetails(map[string]any{"column_index": at}), nil
	}
	return outcome{success: true}, nil
}
