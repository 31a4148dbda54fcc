package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest marks malformed trip input.
	ErrInvalidRequest = errors.New("invalid trip request")
	// ErrNoAccommodation is returned when the catalog has no lodging at all.
	ErrNoAccommodation = errors.New("no accommodation available in catalog")
	// ErrCatalogUnavailable is returned while the catalog store is failing.
	ErrCatalogUnavailable = errors.New("location catalog unavailable")
)

// InfeasibleTripError aborts generation when the budget cannot cover a day per person.
type InfeasibleTripError struct {
	PerPersonDaily float64
	Required       float64
	OwnTransport   bool
}

func (e *InfeasibleTripError) Error() string {
	mode := "paid transport"
	if e.OwnTransport {
		mode = "own transport"
	}
	return fmt.Sprintf(
		"budget too low: %.0f VND per person per day available, at least %.0f VND required with %s",
		e.PerPersonDaily, e.Required, mode,
	)
}
