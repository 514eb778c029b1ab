package engine

import (
	"sort"

	"github.com/dqcheck/dqcheck/internal/domain"
)

// Kinds of expectation, used for grouping in listings.
const (
	KindTable       = "table"
	KindColumnMap   = "column_map"
	KindAggregate   = "column_aggregate"
	KindMultiColumn = "multicolumn"
)

type evaluator func(ds *domain.Dataset, kw kwargs) (outcome, error)

type expectation struct {
	name        string
	kind        string
	description string
	fn          evaluator
}

// TypeInfo describes a supported expectation type.
type TypeInfo struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

var registry = buildRegistry()

func buildRegistry() map[string]expectation {
	groups := [][]expectation{
		tableExpectations(),
		columnMapExpectations(),
		aggregateExpectations(),
		multiColumnExpectations(),
	}
	m := make(map[string]expectation)
	for _, g := range groups {
		for _, e := range g {
			m[e.name] = e
		}
	}
	return m
}

func lookup(name string) (expectation, bool) {
	e, ok := registry[name]
	return e, ok
}

// Supports reports whether name is a registered expectation type.
func Supports(name string) bool {
	_, ok := registry[name]
	return ok
}

// Types lists every supported expectation type, grouped by kind then name.
func Types() []TypeInfo {
	order := map[string]int{KindTable: 0, KindColumnMap: 1, KindAggregate: 2, KindMultiColumn: 3}
	out := make([]TypeInfo, 0, len(registry))
	for _, e := range registry {
		out = append(out, TypeInfo{Name: e.name, Kind: e.kind, Description: e.description})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return order[out[i].Kind] < order[out[j].Kind]
		}
		return out[i].Name < out[j].Name
	})
	return out
}
