package types

import "errors"

// Sentinel errors for the paper trading system.
var (
	// Validation errors
	ErrInvalidOrder = errors.New("invalid order request")

	// Quote errors
	ErrQuoteUnavailable = errors.New("quote unavailable")
	ErrNoQuote          = errors.New("no usable quote for contract")
	ErrContractNotFound = errors.New("contract not found in option chain")

	// Fill errors
	ErrLimitNotMet       = errors.New("limit price not met")
	ErrPositionViolation = errors.New("fill would result in a negative position")

	// Store errors
	ErrAccountNotFound = errors.New("account not found")
	ErrOrderNotFound   = errors.New("order not found")
)
