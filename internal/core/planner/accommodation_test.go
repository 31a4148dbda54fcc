package planner_test

import (
	"errors"
	"testing"

	"github.com/samirrijal/tripplanner/internal/core/domain"
	"github.com/samirrijal/tripplanner/internal/core/planner"
)

func TestTargetTier(t *testing.T) {
	p := defaultPlanner()
	tests := []struct {
		name      string
		requested domain.AccommodationTier
		perPerson float64
		people    int
		want      domain.AccommodationTier
	}{
		{"low budget", domain.TierAuto, 200_000, 2, domain.TierGuesthouse},
		{"mid budget couple", domain.TierAuto, 500_000, 2, domain.TierHotel},
		{"mid budget family", domain.TierAuto, 500_000, 5, domain.TierHomestay},
		{"high budget", domain.TierAuto, 1_500_000, 6, domain.TierHotel},
		{"explicit homestay", domain.TierHomestay, 100_000, 1, domain.TierHomestay},
		{"hotel downgraded", domain.TierHotel, 200_000, 1, domain.TierGuesthouse},
		{"hotel honoured", domain.TierHotel, 400_000, 1, domain.TierHotel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.TargetTier(tt.requested, tt.perPerson, tt.people); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSelectAccommodation_ClosestPriceInTier(t *testing.T) {
	p := defaultPlanner()
	lodging := planner.Lodging(danangCatalog())

	// 1,000,000 a day for two: hotel tier, target nightly price 250,000.
	c, err := p.SelectAccommodation(lodging, domain.TierAuto, 3_000_000, 3, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Tier != domain.TierHotel {
		t.Errorf("expected hotel tier, got %s", c.Tier)
	}
	if c.Location.ID != "ht-sala" {
		t.Errorf("expected Sala Hotel, got %s", c.Location.ID)
	}
	if c.Rooms != 1 || c.Nights != 2 {
		t.Errorf("expected 1 room for 2 nights, got %d/%d", c.Rooms, c.Nights)
	}
	if c.Cost != 1_200_000 {
		t.Errorf("expected 1200000, got %.0f", c.Cost)
	}
}

func TestSelectAccommodation_RoomsAndNights(t *testing.T) {
	p := defaultPlanner()
	lodging := planner.Lodging(danangCatalog())

	c, err := p.SelectAccommodation(lodging, domain.TierGuesthouse, 5_000_000, 4, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Location.ID != "gh-an-thuong" {
		t.Errorf("expected the guesthouse, got %s", c.Location.ID)
	}
	if c.Rooms != 3 || c.Nights != 3 {
		t.Errorf("expected 3 rooms for 3 nights, got %d/%d", c.Rooms, c.Nights)
	}
	if c.Cost != 250_000*3*3 {
		t.Errorf("expected %d, got %.0f", 250_000*3*3, c.Cost)
	}

	single, err := p.SelectAccommodation(lodging, domain.TierGuesthouse, 1_000_000, 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if single.Nights != 0 || single.Cost != 0 {
		t.Errorf("day trip should cost nothing, got %d nights %.0f", single.Nights, single.Cost)
	}
}

func TestSelectAccommodation_FallsBackToAnyLodging(t *testing.T) {
	p := defaultPlanner()
	only := []domain.Location{
		place("lux", "Luxury Resort", "hotel", "resort", 16.03, 108.25, 0, 3_000_000),
	}
	c, err := p.SelectAccommodation(only, domain.TierGuesthouse, 1_000_000, 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Location.ID != "lux" {
		t.Errorf("expected fallback to the only entry, got %s", c.Location.ID)
	}
}

func TestSelectAccommodation_EmptyCatalog(t *testing.T) {
	p := defaultPlanner()
	_, err := p.SelectAccommodation(nil, domain.TierHotel, 1_000_000, 2, 1)
	if !errors.Is(err, domain.ErrNoAccommodation) {
		t.Errorf("expected ErrNoAccommodation, got %v", err)
	}
}

func TestSelectAccommodation_PriceLevelWhenTypeIsGeneric(t *testing.T) {
	p := defaultPlanner()
	generic := []domain.Location{
		place("a", "Cheap Rooms", "accommodation", "", 16.05, 108.24, 0, 300_000),
		place("b", "Pricey Rooms", "accommodation", "", 16.05, 108.24, 0, 1_000_000),
	}
	c, err := p.SelectAccommodation(generic, domain.TierHotel, 20_000_000, 5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Location.ID != "b" {
		t.Errorf("expected price-level hotel match, got %s", c.Location.ID)
	}
}
