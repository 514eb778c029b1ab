package domain

import "errors"

var (
	ErrDatasetNotFound    = errors.New("input data file not found")
	ErrInvalidDataset     = errors.New("invalid dataset")
	ErrSuiteNotFound      = errors.New("suite file not found")
	ErrInvalidSuite       = errors.New("invalid expectation suite")
	ErrUnknownExpectation = errors.New("unknown expectation type")
	ErrInvalidKwargs      = errors.New("invalid expectation arguments")
	ErrColumnNotFound     = errors.New("column not found")
)
