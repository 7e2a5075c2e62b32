package settlement

import "errors"

var (
	ErrSessionNotFound     = errors.New("Market session not found")
	ErrBidNotFound         = errors.New("Bid not found")
	ErrNotSelected         = errors.New("Bid is not selected")
	ErrAlreadySettled      = errors.New("Bid already settled")
	ErrTooEarly            = errors.New("Results are not announced yet")
	ErrInsufficientPayment = errors.New("Payment does not cover the bid value")
	ErrAggregatorNotFound  = errors.New("Aggregator not found")
)
