package aggregators

import "errors"

var (
	ErrInvalidCommissionRate = errors.New("Commission rate must be between 0 and 100")
	ErrAggregatorNotFound    = errors.New("Aggregator not found")
	ErrRegistrationRefused   = errors.New("Caller may not register this battery")
)
