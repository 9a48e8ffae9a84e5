package services

import "errors"

// Input errors
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

// Lifecycle errors
var (
	ErrInvalidState       = errors.New("invalid auction state")
	ErrAlreadyTerminal    = errors.New("auction already finished")
	ErrAlreadyPublished   = errors.New("results already published")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrActiveDeletion     = errors.New("cannot delete an active auction")
)

// Bidding errors
var (
	ErrNotActive      = errors.New("auction is not active")
	ErrNotInvited     = errors.New("supplier is not invited to this auction")
	ErrAuctionExpired = errors.New("auction has ended")
)
