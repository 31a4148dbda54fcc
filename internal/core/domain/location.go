package domain

import (
	"strings"
	"time"
)

// Location categories (the coarse `type` field).
const (
	TypeAttraction = "attraction"
	TypeRestaurant = "restaurant"
	TypeBeach      = "beach"
	TypeHotel      = "hotel"
	TypeCafe       = "cafe"
	TypeMarket     = "market"
	TypeNightlife  = "nightlife"
)

// AccommodationTier is the lodging class requested by a traveler.
type AccommodationTier string

const (
	TierAuto       AccommodationTier = ""
	TierGuesthouse AccommodationTier = "guesthouse"
	TierHomestay   AccommodationTier = "homestay"
	TierHotel      AccommodationTier = "hotel"
	TierFree       AccommodationTier = "free" // own housing or staying with friends
)

// Valid reports whether t is a known tier.
func (t AccommodationTier) Valid() bool {
	switch t {
	case TierAuto, TierGuesthouse, TierHomestay, TierHotel, TierFree:
		return true
	}
	return false
}

// Location is a normalized catalog entry. Scheduling treats it as read-only.
type Location struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Type              string    `json:"type"`
	VisitType         string    `json:"visit_type"`
	Location          GeoPoint  `json:"location"`
	Ticket            float64   `json:"ticket"`
	AvgPrice          float64   `json:"avg_price"`
	SuggestedDuration int       `json:"suggested_duration,omitempty"` // minutes
	OpenTime          string    `json:"open_time,omitempty"`          // "HH:MM"
	CloseTime         string    `json:"close_time,omitempty"`         // "HH:MM"
	Tags              []string  `json:"tags,omitempty"`
	Area              string    `json:"area,omitempty"`
	Indoor            bool      `json:"indoor"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
}

// IsAccommodation reports whether the entry is lodging.
func (l *Location) IsAccommodation() bool {
	switch l.Type {
	case TypeHotel, "accommodation", "homestay", "guesthouse", "resort", "hostel":
		return true
	}
	return false
}

// NightlyPrice is the per-room price of an accommodation entry.
func (l *Location) NightlyPrice() float64 {
	if l.AvgPrice > 0 {
		return l.AvgPrice
	}
	return l.Ticket
}

// HasTag reports whether any tag, the type or the visit type equals tag (case-insensitive).
func (l *Location) HasTag(tag string) bool {
	tag = strings.ToLower(tag)
	if strings.ToLower(l.Type) == tag || strings.ToLower(l.VisitType) == tag {
		return true
	}
	for _, t := range l.Tags {
		if strings.ToLower(t) == tag {
			return true
		}
	}
	return false
}

// LocationFilter narrows a catalog fetch. Zero values mean "no constraint".
type LocationFilter struct {
	Types      []string `json:"types,omitempty"`
	VisitTypes []string `json:"visit_types,omitempty"`
	Indoor     *bool    `json:"indoor,omitempty"`
	Search     string   `json:"search,omitempty"`
}

// Match applies the filter in memory.
func (f LocationFilter) Match(l *Location) bool {
	if len(f.Types) > 0 && !containsFold(f.Types, l.Type) {
		return false
	}
	if len(f.VisitTypes) > 0 && !containsFold(f.VisitTypes, l.VisitType) {
		return false
	}
	if f.Indoor != nil && *f.Indoor != l.Indoor {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(l.Name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
