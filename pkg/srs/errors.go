package srs

import "errors"

// Sentinel errors for the srs package.
// Use errors.Is to check: errors.Is(err, srs.ErrInvalidWeights)
var (
	ErrInvalidState   = errors.New("srs: invalid state")
	ErrInvalidGrade   = errors.New("srs: invalid grade")
	ErrInvalidWeights = errors.New("srs: weights out of bounds")
	ErrInvalidConfig  = errors.New("srs: invalid config")
)
