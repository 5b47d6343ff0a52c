package domain

import (
	"errors"
	"fmt"
)

// Violation taxonomy shared by the validator, the committer and the resolver.
// The API layer maps these to HTTP statuses with errors.Is / errors.As; any
// other error is treated as an internal store failure.

var (
	ErrCatalogEmpty    = errors.New("no destinations available")
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyBatch      = errors.New("claim batch must not be empty")
)

// A claim referenced a destination or vehicle absent from the catalog.
type UnknownReferenceError struct {
	Kind string // "destination" or "vehicle"
	ID   string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown %s reference %q", e.Kind, e.ID)
}

// Two claims in the same session targeted the same destination.
type DuplicateDestinationError struct {
	DestinationID string
}

func (e *DuplicateDestinationError) Error() string {
	return fmt.Sprintf("destination %q claimed more than once", e.DestinationID)
}

// The vehicle cannot cover the round trip to the claimed destination.
type InsufficientRangeError struct {
	VehicleID     string
	DestinationID string
	Range         int
	Distance      int
}

func (e *InsufficientRangeError) Error() string {
	return fmt.Sprintf(
		"vehicle %q (range %d) cannot make the round trip to %q (distance %d)",
		e.VehicleID, e.Range, e.DestinationID, e.Distance,
	)
}

// Committed usage plus batch demand would exceed the vehicle's total stock.
type VehicleUnavailableError struct {
	VehicleID string
}

func (e *VehicleUnavailableError) Error() string {
	return fmt.Sprintf("vehicle %q is no longer available", e.VehicleID)
}
