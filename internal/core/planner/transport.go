package planner

import (
	"fmt"
	"math"

	"github.com/samirrijal/tripplanner/internal/core/domain"
	"github.com/samirrijal/tripplanner/internal/pkg/geospatial"
)

const (
	walkThresholdKm     = 0.5
	walkSpeedKmh        = 5.0
	dispatchOverheadMin = 5
	minDispatchFee      = 12_000
	fuelPerKm           = 2_500
	flatFareKm          = 2.0
)

// Fare is a ride-hailing provider's price list: flat fare for the first 2 km, per-km after.
type Fare struct {
	Provider string
	Base     float64
	PerKm    float64
}

// Price returns the ride cost for distanceKm.
func (f Fare) Price(distanceKm float64) float64 {
	extra := math.Max(0, distanceKm-flatFareKm)
	return f.Base + extra*f.PerKm
}

var (
	bikeFares = [2]Fare{
		{Provider: "Grab Bike", Base: 12_000, PerKm: 4_300},
		{Provider: "Xanh SM Bike", Base: 13_000, PerKm: 4_000},
	}
	carFares = [2]Fare{
		{Provider: "Grab Car 4", Base: 29_000, PerKm: 10_000},
		{Provider: "Xanh SM Taxi", Base: 20_000, PerKm: 15_600},
	}
	largeCarFares = [2]Fare{
		{Provider: "Grab Car 7", Base: 34_000, PerKm: 13_000},
		{Provider: "Xanh SM Luxury 7", Base: 30_000, PerKm: 16_000},
	}

	speedKmh = map[domain.TransportMode]float64{
		domain.TransportOwn:       30,
		domain.TransportMotorbike: 30,
		domain.TransportCar:       25,
		domain.TransportTaxi:      25,
	}
)

// TransportQuote is the price and duration of one leg for the whole group.
type TransportQuote struct {
	Mode            domain.TransportMode `json:"mode"`
	Provider        string               `json:"provider,omitempty"`
	DistanceKm      float64              `json:"distance_km"`
	Cost            float64              `json:"cost"`
	DurationMinutes int                  `json:"duration_minutes"`
	Suggestion      string               `json:"suggestion"`
}

// Distance returns the great-circle distance in km, or 0 when either point is missing.
func Distance(a, b domain.GeoPoint) float64 {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	return geospatial.HaversineKm(a.Lat, a.Lon, b.Lat, b.Lon)
}

// QuoteTransport prices a leg of distanceKm for numPeople travelers.
// Ride-hailing modes compare two providers and keep the cheaper one.
func QuoteTransport(distanceKm float64, mode domain.TransportMode, numPeople int) TransportQuote {
	if numPeople < 1 {
		numPeople = 1
	}
	q := TransportQuote{Mode: mode, DistanceKm: round2(distanceKm)}

	if distanceKm < walkThresholdKm {
		q.DurationMinutes = travelMinutes(distanceKm, walkSpeedKmh)
		q.Suggestion = "Short distance, walking is fine"
		if !mode.IsOwn() {
			q.Cost = minDispatchFee
		}
		return q
	}

	speed, ok := speedKmh[mode]
	if !ok {
		speed = 25
	}
	q.DurationMinutes = travelMinutes(distanceKm, speed)

	if mode.IsOwn() {
		q.Cost = roundTo(distanceKm*fuelPerKm, 1000)
		q.Suggestion = fmt.Sprintf("Ride your own vehicle, about %.1f km", distanceKm)
		return q
	}

	fares := bikeFares
	vehicles := numPeople // one bike per passenger
	if mode.IsCarClass() {
		fares = carFares
		vehicles = ceilDiv(numPeople, 4)
		if numPeople > 4 {
			fares = largeCarFares
			vehicles = ceilDiv(numPeople, 7)
		}
	}

	best, other := fares[0], fares[1]
	if other.Price(distanceKm) < best.Price(distanceKm) {
		best, other = other, best
	}
	q.Provider = best.Provider
	q.Cost = roundTo(best.Price(distanceKm)*float64(vehicles), 1000)
	q.Suggestion = fmt.Sprintf("%s (%.0f VND) is cheaper than %s (%.0f VND)",
		best.Provider, roundTo(best.Price(distanceKm), 1000),
		other.Provider, roundTo(other.Price(distanceKm), 1000))
	return q
}

func travelMinutes(distanceKm, speedKmh float64) int {
	return int(math.Ceil(distanceKm/speedKmh*60)) + dispatchOverheadMin
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func roundTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
