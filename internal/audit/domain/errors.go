package domain

import "errors"

var (
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
