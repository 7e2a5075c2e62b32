package market

import "errors"

var (
	ErrSessionNotFound   = errors.New("Market session not found")
	ErrInvalidSchedule   = errors.New("Market times must be strictly increasing")
	ErrInvalidReserve    = errors.New("Reserve direction must be positive or negative")
	ErrInvalidDemand     = errors.New("Required energy must be a positive number")
	ErrSessionHasBids    = errors.New("Market session already has bids")
	ErrMarketClosed      = errors.New("Market is not open for bids")
	ErrMarketStillOpen   = errors.New("Market is still open")
	ErrBidNotFound       = errors.New("Bid not found")
	ErrAlreadySelected   = errors.New("Bid already selected")
	ErrInvalidBid        = errors.New("Bid amount must be positive and price non-negative")
	ErrUnauthorizedOwner = errors.New("Battery owner is not registered under this aggregator")
)
