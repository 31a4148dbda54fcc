package domain

import (
	"fmt"
	"strings"
	"time"
)

// TransportMode is how travelers move between locations.
type TransportMode string

const (
	TransportOwn       TransportMode = "own"       // self-owned or rented vehicle
	TransportMotorbike TransportMode = "motorbike" // ride-hailing bike
	TransportCar       TransportMode = "car"       // ride-hailing car
	TransportTaxi      TransportMode = "taxi"      // same fare class as car
)

// IsOwn reports whether travelers supply their own transport.
func (m TransportMode) IsOwn() bool {
	return m == TransportOwn
}

// IsCarClass reports whether the mode is priced as a car.
func (m TransportMode) IsCarClass() bool {
	return m == TransportCar || m == TransportTaxi
}

// Valid reports whether m is a known mode.
func (m TransportMode) Valid() bool {
	switch m {
	case TransportOwn, TransportMotorbike, TransportCar, TransportTaxi:
		return true
	}
	return false
}

// MaxTripDays caps the calendar days a single itinerary may span.
const MaxTripDays = 30

// TripRequest is the user input for generating an itinerary.
type TripRequest struct {
	Budget        float64           `json:"budget"`
	Travelers     int               `json:"travelers"`
	Arrival       time.Time         `json:"arrival"`
	Departure     time.Time         `json:"departure"`
	Transport     TransportMode     `json:"transport"`
	Accommodation AccommodationTier `json:"accommodation"`
	Preferences   []string          `json:"preferences,omitempty"`
}

// Validate checks request invariants. Errors wrap ErrInvalidRequest.
func (r *TripRequest) Validate() error {
	var errs []string
	if r.Budget <= 0 {
		errs = append(errs, "budget must be positive")
	}
	if r.Travelers < 1 {
		errs = append(errs, "travelers must be at least 1")
	}
	if r.Arrival.IsZero() || r.Departure.IsZero() {
		errs = append(errs, "arrival and departure are required")
	} else if !r.Departure.After(r.Arrival) {
		errs = append(errs, "departure must be after arrival")
	} else if n := r.NumDays(); n > MaxTripDays {
		errs = append(errs, fmt.Sprintf("trip spans %d days, at most %d allowed", n, MaxTripDays))
	}
	if !r.Transport.Valid() {
		errs = append(errs, fmt.Sprintf("unknown transport mode %q", r.Transport))
	}
	if !r.Accommodation.Valid() {
		errs = append(errs, fmt.Sprintf("unknown accommodation tier %q", r.Accommodation))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(errs, "; "))
	}
	return nil
}

// NumDays counts calendar days touched by the trip, arrival and departure included.
func (r *TripRequest) NumDays() int {
	a := time.Date(r.Arrival.Year(), r.Arrival.Month(), r.Arrival.Day(), 0, 0, 0, 0, r.Arrival.Location())
	dep := r.Departure.In(r.Arrival.Location())
	d := time.Date(dep.Year(), dep.Month(), dep.Day(), 0, 0, 0, 0, r.Arrival.Location())
	days := int(d.Sub(a).Hours()/24+0.5) + 1
	if days < 1 {
		days = 1
	}
	return days
}
