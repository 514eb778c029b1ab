// Package engine evaluates expectation suites against in-memory datasets.
//
// A Context is ephemeral: datasets and suites registered on it live only as
// long as the Context value and nothing is written to disk.
package engine

import (
	"context"
	"fmt"

	"github.com/dqcheck/dqcheck/internal/domain"
)

// Options configure a Context.
type Options struct {
	ResultFormat domain.ResultFormat
	// CatchExceptions records evaluation errors on the failing expectation
	// instead of aborting the whole run.
	CatchExceptions bool
}

// DefaultOptions mirror the defaults of the CLI.
func DefaultOptions() Options {
	return Options{ResultFormat: domain.ResultFormatBasic, CatchExceptions: true}
}

// Context is an in-memory validation context.
type Context struct {
	opts     Options
	datasets map[string]*domain.Dataset
	suites   map[string]*domain.Suite
}

// NewContext creates an empty ephemeral context.
func NewContext(opts Options) *Context {
	if opts.ResultFormat == "" {
		opts.ResultFormat = domain.ResultFormatBasic
	}
	return &Context{
		opts:     opts,
		datasets: make(map[string]*domain.Dataset),
		suites:   make(map[string]*domain.Suite),
	}
}

// AddDataset registers ds under ds.Name.
func (c *Context) AddDataset(ds *domain.Dataset) error {
	if ds == nil || ds.Name == "" {
		return fmt.Errorf("dataset must have a name")
	}
	if _, exists := c.datasets[ds.Name]; exists {
		return fmt.Errorf("dataset %q already registered", ds.Name)
	}
	c.datasets[ds.Name] = ds
	return nil
}

// AddSuite registers s under s.Name.
func (c *Context) AddSuite(s *domain.Suite) error {
	if s == nil || s.Name == "" {
		return fmt.Errorf("suite must have a name")
	}
	if _, exists := c.suites[s.Name]; exists {
		return fmt.Errorf("suite %q already registered", s.Name)
	}
	c.suites[s.Name] = s
	return nil
}

// Validate runs the named suite against the named dataset. The returned
// result has no Meta; callers attach run metadata.
func (c *Context) Validate(ctx context.Context, datasetName, suiteName string) (*domain.ValidationResult, error) {
	ds, ok := c.datasets[datasetName]
	if !ok {
		return nil, fmt.Errorf("dataset %q is not registered", datasetName)
	}
	suite, ok := c.suites[suiteName]
	if !ok {
		return nil, fmt.Errorf("suite %q is not registered", suiteName)
	}

	results := make([]domain.ExpectationResult, 0, len(suite.Expectations))
	for i, exp := range suite.Expectations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		er, err := c.evaluate(ds, exp)
		if err != nil {
			if !c.opts.CatchExceptions {
				return nil, fmt.Errorf("expectation %d (%s): %w", i, exp.Type, err)
			}
			er = domain.ExpectationResult{
				Success:     false,
				Expectation: exp,
				Result:      map[string]any{},
				ExceptionInfo: domain.ExceptionInfo{
					RaisedException:  true,
					ExceptionMessage: err.Error(),
				},
			}
		}
		results = append(results, er)
	}

	stats := domain.ComputeStatistics(results)
	return &domain.ValidationResult{
		Success:    stats.UnsuccessfulExpectations == 0,
		Results:    results,
		Statistics: stats,
		SuiteName:  suite.Name,
	}, nil
}

func (c *Context) evaluate(ds *domain.Dataset, exp domain.ExpectationConfig) (er domain.ExpectationResult, err error) {
	e, ok := lookup(exp.Type)
	if !ok {
		return er, fmt.Errorf("%w: %q", domain.ErrUnknownExpectation, exp.Type)
	}

	rf := c.opts.ResultFormat
	kw := kwargs(exp.Kwargs)
	if override, ok := kw["result_format"].(string); ok {
		if parsed, perr := domain.ParseResultFormat(override); perr == nil {
			rf = parsed
		}
	}

	o, err := e.fn(ds, kw)
	if err != nil {
		return er, err
	}
	return domain.ExpectationResult{
		Success:     o.success,
		Expectation: exp,
		Result:      o.format(rf),
	}, nil
}
