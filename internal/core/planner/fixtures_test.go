package planner_test

import (
	"testing"
	"time"

	"github.com/samirrijal/tripplanner/internal/core/domain"
	"github.com/samirrijal/tripplanner/internal/core/planner"
)

var ict = time.FixedZone("ICT", 7*3600)

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.March, day, hour, minute, 0, 0, ict)
}

func place(id, name, typ, visitType string, lat, lon, ticket, avg float64, tags ...string) domain.Location {
	return domain.Location{
		ID:        id,
		Name:      name,
		Type:      typ,
		VisitType: visitType,
		Location:  domain.GeoPoint{Lat: lat, Lon: lon},
		Ticket:    ticket,
		AvgPrice:  avg,
		Tags:      tags,
	}
}

// danangCatalog is a small but complete Da Nang catalog.
func danangCatalog() []domain.Location {
	return []domain.Location{
		place("gh-an-thuong", "An Thuong Guesthouse", "hotel", "guesthouse", 16.0490, 108.2460, 0, 250_000),
		place("hs-son-tra", "Son Tra Homestay", "homestay", "homestay", 16.0800, 108.2400, 0, 450_000),
		place("ht-sala", "Sala Hotel", "hotel", "hotel", 16.0680, 108.2450, 0, 600_000),
		place("ht-furama", "Furama Resort", "hotel", "resort", 16.0390, 108.2500, 0, 2_500_000),

		place("bf-mi-quang", "Mi Quang 1A", "restaurant", "street-food", 16.0700, 108.2170, 0, 40_000, "local-food"),
		place("bf-banh-mi", "Banh Mi Ba Lan", "restaurant", "restaurant-cheap", 16.0650, 108.2200, 0, 30_000),
		place("bf-bun-cha", "Bun Cha Ca 109", "restaurant", "street-food", 16.0630, 108.2190, 0, 35_000),
		place("rs-banh-xeo", "Ba Duong Banh Xeo", "restaurant", "restaurant-cheap", 16.0660, 108.2150, 0, 60_000),
		place("rs-madame-lan", "Madame Lan", "restaurant", "restaurant-mid", 16.0750, 108.2240, 0, 150_000),
		place("rs-be-man", "Be Man Seafood", "restaurant", "seafood", 16.0610, 108.2470, 0, 300_000, "seafood"),
		place("rs-hai-san", "Hai San Moc", "restaurant", "seafood", 16.0640, 108.2460, 0, 250_000),
		place("rs-com-ga", "Com Ga A Hai", "restaurant", "restaurant-cheap", 16.0720, 108.2190, 0, 45_000),

		place("at-cham", "Cham Museum", "attraction", "museum", 16.0606, 108.2233, 60_000, 0, "culture"),
		place("at-marble", "Marble Mountains", "attraction", "nature", 16.0036, 108.2630, 40_000, 0, "mountain"),
		place("at-linh-ung", "Linh Ung Pagoda", "attraction", "pagoda", 16.1003, 108.2778, 0, 0, "culture"),
		place("at-cathedral", "Da Nang Cathedral", "attraction", "historical", 16.0667, 108.2231, 0, 0),
		place("at-asia-park", "Asia Park", "attraction", "theme-park", 16.0390, 108.2270, 200_000, 0, "adventure"),
		place("at-ba-na", "Ba Na Hills", "attraction", "ba-na-hills", 15.9977, 107.9880, 900_000, 0),

		place("bc-my-khe", "My Khe Beach", "beach", "beach", 16.0544, 108.2480, 0, 0, "sea"),
		place("bc-non-nuoc", "Non Nuoc Beach", "beach", "beach", 16.0000, 108.2700, 0, 0),

		place("mk-han", "Han Market", "market", "market", 16.0685, 108.2241, 0, 50_000, "shopping"),
		place("mk-con", "Con Market", "market", "market", 16.0680, 108.2145, 0, 50_000),
		place("mk-helio", "Helio Night Market", "market", "night-market", 16.0360, 108.2240, 0, 80_000),

		place("cf-cong", "Cong Caphe", "cafe", "cafe", 16.0690, 108.2230, 0, 50_000),
		place("cf-43", "43 Factory Coffee", "cafe", "cafe", 16.0500, 108.2410, 0, 60_000),
		place("cf-nam-house", "Nam House Cafe", "cafe", "cafe", 16.0620, 108.2440, 0, 45_000),

		place("nt-dragon", "Dragon Bridge", "attraction", "night-attraction", 16.0611, 108.2278, 0, 0),
		place("nl-sky36", "Sky36 Bar", "nightlife", "bar-nightlife", 16.0770, 108.2230, 0, 200_000),
	}
}

func defaultPlanner(opts ...planner.Option) *planner.Planner {
	return planner.New(planner.DefaultConfig(), opts...)
}

func find(t *testing.T, catalog []domain.Location, id string) *domain.Location {
	t.Helper()
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i]
		}
	}
	t.Fatalf("location %s not in catalog", id)
	return nil
}
