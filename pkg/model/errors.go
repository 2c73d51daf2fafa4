package model

import "errors"

// Error taxonomy shared across the detector, fixer and outward surfaces.
// The content store's own "record absent" failure is store.ErrNotFound.
var (
	// ErrInsufficientBalance gates the paid API-backed checks; no request
	// is sent when the balance is below the floor.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrUnsupportedFix means the issue's check has no fix-type mapping.
	ErrUnsupportedFix = errors.New("unsupported fix")

	// ErrUnsupportedItemType means a dispatch saw an item type it has no
	// path for.
	ErrUnsupportedItemType = errors.New("unsupported item type")

	// ErrUnsupportedField means apply-fix saw a field it cannot map to a
	// store mutation.
	ErrUnsupportedField = errors.New("unsupported field")

	// ErrInvalidInput means a required issue or fix field is missing.
	ErrInvalidInput = errors.New("invalid input")
)
