package batteries

import "errors"

var (
	ErrInvalidCapacity = errors.New("Capacity must be a positive number")
	ErrInvalidSoc      = errors.New("State of charge out of range")
	ErrBatteryNotFound = errors.New("Battery not found")
)
