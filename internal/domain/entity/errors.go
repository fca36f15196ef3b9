package entity

import "errors"

var (
	// ErrUnsupportedChain short-circuits every read and write against a chain
	// id that has no pool deployment. Only a network switch clears it.
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrPriceFetch marks a failed price-service round trip. Valuation
	// degrades to zero prices rather than aborting.
	ErrPriceFetch = errors.New("price fetch failed")

	// ErrFlowNotFound is returned when a transaction flow id is unknown.
	ErrFlowNotFound = errors.New("transaction flow not found")
)
