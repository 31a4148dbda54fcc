package domain

import (
	"fmt"
	"math"
	"time"
)

// ItemType classifies an itinerary entry.
type ItemType string

const (
	ItemCheckIn       ItemType = "check-in"
	ItemFood          ItemType = "food"
	ItemActivity      ItemType = "activity"
	ItemTransport     ItemType = "transport"
	ItemRest          ItemType = "rest"
	ItemAccommodation ItemType = "accommodation"
	ItemCheckOut      ItemType = "check-out"
)

// IsLodging reports whether the item's cost is already covered by the accommodation cost.
func (t ItemType) IsLodging() bool {
	return t == ItemCheckIn || t == ItemAccommodation
}

// BudgetStatus compares the estimated total with the requested budget.
type BudgetStatus string

const (
	BudgetWithin BudgetStatus = "within"
	BudgetOver   BudgetStatus = "over"
	BudgetUnder  BudgetStatus = "under"
)

// Cost is the money attached to one item, for the whole group.
type Cost struct {
	Ticket    float64 `json:"ticket"`
	Food      float64 `json:"food"`
	Other     float64 `json:"other"`
	Transport float64 `json:"transport"`
}

// Total sums all cost components.
func (c Cost) Total() float64 {
	return c.Ticket + c.Food + c.Other + c.Transport
}

// TransportLeg describes travel between two locations.
type TransportLeg struct {
	Mode            TransportMode `json:"mode"`
	Provider        string        `json:"provider,omitempty"`
	DistanceKm      float64       `json:"distance_km"`
	DurationMinutes int           `json:"duration_minutes"`
	Cost            float64       `json:"cost"`
	From            string        `json:"from,omitempty"`
	To              string        `json:"to,omitempty"`
	Suggestion      string        `json:"suggestion,omitempty"`
}

// ItineraryItem is one scheduled entry of a day. Immutable once appended.
type ItineraryItem struct {
	Type            ItemType      `json:"type"`
	StartTime       string        `json:"start_time"` // "HH:MM"
	EndTime         string        `json:"end_time"`
	StartHour       float64       `json:"start_hour"`
	EndHour         float64       `json:"end_hour"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	Location        *Location     `json:"location,omitempty"`
	Cost            Cost          `json:"cost"`
	DurationMinutes int           `json:"duration_minutes"`
	Transport       *TransportLeg `json:"transport,omitempty"`
}

// Day is one calendar day of the trip.
type Day struct {
	DayNumber int             `json:"day_number"`
	Date      string          `json:"date"` // YYYY-MM-DD
	Items     []ItineraryItem `json:"items"`
}

// Cost sums the day's items, excluding lodging entries.
func (d *Day) Cost() float64 {
	var total float64
	for _, it := range d.Items {
		if it.Type.IsLodging() {
			continue
		}
		total += it.Cost.Total()
	}
	return total
}

// BudgetBreakdown splits the trip budget into spending categories.
type BudgetBreakdown struct {
	Stay       float64 `json:"stay"`
	Food       float64 `json:"food"`
	Transport  float64 `json:"transport"`
	Activities float64 `json:"activities"`
	Buffer     float64 `json:"buffer"`
	Total      float64 `json:"total"`
}

// Itinerary is the generated multi-day plan.
type Itinerary struct {
	ID                string          `json:"id"`
	Request           TripRequest     `json:"request"`
	TotalCost         float64         `json:"total_cost"`
	BudgetStatus      BudgetStatus    `json:"budget_status"`
	Breakdown         BudgetBreakdown `json:"breakdown"`
	Accommodation     *Location       `json:"accommodation,omitempty"`
	AccommodationCost float64         `json:"accommodation_cost"`
	Days              []Day           `json:"days"`
	CreatedAt         time.Time       `json:"created_at"`
}

// FormatClock renders fractional hours as "HH:MM". Hours past midnight wrap.
func FormatClock(hour float64) string {
	total := int(math.Round(hour * 60))
	if total < 0 {
		total = 0
	}
	h := (total / 60) % 24
	m := total % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}
