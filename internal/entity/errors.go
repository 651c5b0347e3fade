package entity

import "errors"

// Domain errors for the review service and related aggregates.
var (
	ErrUnknownUser        = errors.New("unknown user")
	ErrUnknownCard        = errors.New("unknown card")
	ErrUnknownSession     = errors.New("unknown session")
	ErrUnknownWrongAnswer = errors.New("unknown wrong answer record")

	ErrInvalidSessionState = errors.New("invalid session state")
	ErrOutOfOrderAnswer    = errors.New("answer out of order")

	ErrInvalidReviewSettings = errors.New("invalid review settings")
	ErrInvalidUsername       = errors.New("invalid username")
	ErrInvalidArgument       = errors.New("invalid argument")
)
