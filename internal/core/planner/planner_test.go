package planner_test

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/samirrijal/tripplanner/internal/core/domain"
	"github.com/samirrijal/tripplanner/internal/core/planner"
)

const eps = 1e-9

// assertInvariants checks the properties every generated itinerary must hold.
func assertInvariants(t *testing.T, p *planner.Planner, it *domain.Itinerary) {
	t.Helper()
	v := p.Validator()
	rules := p.Rules()
	cfg := p.Config()

	accomID := ""
	if it.Accommodation != nil {
		accomID = it.Accommodation.ID
	}

	used := map[string]string{}
	var spent float64
	for _, day := range it.Days {
		spent += day.Cost()
		lastByCategory := map[string]float64{}

		for i, item := range day.Items {
			if i > 0 {
				prev := day.Items[i-1]
				if item.StartHour < prev.StartHour-eps || prev.EndHour > item.StartHour+eps {
					t.Errorf("day %d: %q (%s-%s) overlaps %q (%s)", day.DayNumber,
						prev.Title, prev.StartTime, prev.EndTime, item.Title, item.StartTime)
				}
			}
			if item.Type != domain.ItemFood && item.Type != domain.ItemActivity {
				continue
			}
			l := item.Location
			if l == nil {
				t.Errorf("day %d: %q has no location", day.DayNumber, item.Title)
				continue
			}
			if l.ID == accomID {
				t.Errorf("day %d: accommodation scheduled as a visit", day.DayNumber)
			}
			if prev, ok := used[l.ID]; ok {
				t.Errorf("day %d: %s reused (first at %s)", day.DayNumber, l.ID, prev)
			}
			used[l.ID] = day.Date + " " + item.StartTime

			if !v.CanVisitAt(l, item.StartHour) {
				t.Errorf("day %d: %s visited at %s outside its hours", day.DayNumber, l.ID, item.StartTime)
			}
			rule := rules.For(l)
			if item.DurationMinutes < rule.MinDuration {
				t.Errorf("day %d: %s stays %d min, minimum %d", day.DayNumber, l.ID, item.DurationMinutes, rule.MinDuration)
			}
			if last, ok := lastByCategory[rule.Category]; ok && item.StartHour-last < cfg.CooldownFor(rule.Category)-eps {
				t.Errorf("day %d: %s repeats category %s too soon", day.DayNumber, l.ID, rule.Category)
			}
			lastByCategory[rule.Category] = item.StartHour
		}
	}

	if diff := math.Abs(spent + it.AccommodationCost - it.TotalCost); diff > cfg.CurrencyStep/2 {
		t.Errorf("total %.0f does not match items %.0f + stay %.0f", it.TotalCost, spent, it.AccommodationCost)
	}
}

func TestPlan_FreeStayOwnTransport(t *testing.T) {
	p := defaultPlanner()
	req := domain.TripRequest{
		Budget:        3_000_000,
		Travelers:     2,
		Arrival:       at(10, 8, 0),
		Departure:     at(12, 18, 0),
		Transport:     domain.TransportOwn,
		Accommodation: domain.TierFree,
	}

	it, err := p.Plan(req, danangCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(it.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(it.Days))
	}
	if it.Days[0].Date != "2025-03-10" || it.Days[2].Date != "2025-03-12" {
		t.Errorf("unexpected dates %s..%s", it.Days[0].Date, it.Days[2].Date)
	}
	if got := it.Days[0].Items[0].StartTime; got != "08:00" {
		t.Errorf("expected day 1 to start at 08:00, got %s", got)
	}
	lastDay := it.Days[2].Items
	if lastDay[len(lastDay)-1].Type != domain.ItemCheckOut {
		t.Errorf("expected check-out last, got %s", lastDay[len(lastDay)-1].Type)
	}
	if it.Accommodation != nil || it.AccommodationCost != 0 {
		t.Error("expected no accommodation for a free stay")
	}
	if it.Breakdown.Stay != 0 {
		t.Errorf("expected zero stay share, got %.0f", it.Breakdown.Stay)
	}
	if it.ID != "" {
		t.Errorf("planner must not assign ids, got %s", it.ID)
	}
	assertInvariants(t, p, it)
}

func TestPlan_InfeasibleBudget(t *testing.T) {
	var phases int
	p := defaultPlanner(planner.WithObserver(planner.ObserverFunc(func(planner.Event) { phases++ })))
	req := domain.TripRequest{
		Budget:        200_000,
		Travelers:     1,
		Arrival:       at(10, 9, 0),
		Departure:     at(14, 18, 0),
		Transport:     domain.TransportTaxi,
		Accommodation: domain.TierHotel,
	}

	it, err := p.Plan(req, danangCatalog())
	if it != nil {
		t.Error("expected no itinerary")
	}
	var infeasible *domain.InfeasibleTripError
	if !errors.As(err, &infeasible) {
		t.Fatalf("expected InfeasibleTripError, got %v", err)
	}
	if infeasible.PerPersonDaily != 40_000 {
		t.Errorf("expected 40000 per person per day, got %.0f", infeasible.PerPersonDaily)
	}
	if !strings.Contains(err.Error(), "40000") {
		t.Errorf("expected message to cite the daily figure, got %q", err.Error())
	}
	if phases != 0 {
		t.Errorf("expected no day to be scheduled, got %d events", phases)
	}
}

func TestPlan_SingleDayNoPreferences(t *testing.T) {
	p := defaultPlanner()
	req := domain.TripRequest{
		Budget:        2_000_000,
		Travelers:     2,
		Arrival:       at(10, 8, 0),
		Departure:     at(10, 20, 0),
		Transport:     domain.TransportMotorbike,
		Accommodation: domain.TierGuesthouse,
	}

	it, err := p.Plan(req, danangCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(it.Days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(it.Days))
	}
	items := it.Days[0].Items
	if items[0].Type != domain.ItemCheckIn {
		t.Errorf("expected check-in first, got %s", items[0].Type)
	}
	if items[len(items)-1].Type != domain.ItemCheckOut {
		t.Errorf("expected check-out last, got %s", items[len(items)-1].Type)
	}
	if it.AccommodationCost != 0 {
		t.Errorf("day trip has no nights, got %.0f", it.AccommodationCost)
	}
	night := 0
	for _, item := range items {
		if item.Type == domain.ItemActivity && item.StartHour >= 18 {
			night++
		}
	}
	if night > 3 {
		t.Errorf("expected at most 3 evening activities, got %d", night)
	}
	assertInvariants(t, p, it)
}

func TestPlan_SingleRestaurantUsedOnce(t *testing.T) {
	p := defaultPlanner()
	catalog := []domain.Location{
		place("rs-only", "Only Restaurant", "restaurant", "restaurant-cheap", 16.0660, 108.2150, 0, 60_000),
		place("at-cham", "Cham Museum", "attraction", "museum", 16.0606, 108.2233, 60_000, 0),
		place("at-linh-ung", "Linh Ung Pagoda", "attraction", "pagoda", 16.1003, 108.2778, 0, 0),
		place("bc-my-khe", "My Khe Beach", "beach", "beach", 16.0544, 108.2480, 0, 0),
		place("cf-cong", "Cong Caphe", "cafe", "cafe", 16.0690, 108.2230, 0, 50_000),
	}
	req := domain.TripRequest{
		Budget:        2_000_000,
		Travelers:     1,
		Arrival:       at(10, 7, 0),
		Departure:     at(11, 21, 0),
		Transport:     domain.TransportMotorbike,
		Accommodation: domain.TierFree,
	}

	it, err := p.Plan(req, catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	meals := 0
	for _, day := range it.Days {
		meals += countType(day.Items, domain.ItemFood)
	}
	if meals != 1 {
		t.Errorf("expected the only restaurant exactly once, got %d meals", meals)
	}
	assertInvariants(t, p, it)
}

func TestPlan_WithHotelMultiDay(t *testing.T) {
	p := defaultPlanner()
	req := domain.TripRequest{
		Budget:        12_000_000,
		Travelers:     2,
		Arrival:       at(10, 10, 30),
		Departure:     at(13, 21, 0),
		Transport:     domain.TransportCar,
		Accommodation: domain.TierAuto,
		Preferences:   []string{"beach", "food", "culture"},
	}

	it, err := p.Plan(req, danangCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(it.Days) != 4 {
		t.Fatalf("expected 4 days, got %d", len(it.Days))
	}
	if it.Accommodation == nil {
		t.Fatal("expected an accommodation")
	}
	if it.AccommodationCost != it.Accommodation.NightlyPrice()*3 {
		t.Errorf("expected 3 nights for one room, got %.0f", it.AccommodationCost)
	}
	first := it.Days[0].Items[0]
	if first.Type != domain.ItemCheckIn || first.StartTime != "10:30" {
		t.Errorf("expected check-in at 10:30, got %s at %s", first.Type, first.StartTime)
	}
	for _, day := range it.Days[:3] {
		last := day.Items[len(day.Items)-1]
		if last.Type != domain.ItemAccommodation {
			t.Errorf("day %d: expected overnight item last, got %s", day.DayNumber, last.Type)
		}
	}
	if it.BudgetStatus == "" {
		t.Error("expected a budget status")
	}
	assertInvariants(t, p, it)
}

func TestPlan_Deterministic(t *testing.T) {
	p := defaultPlanner()
	req := domain.TripRequest{
		Budget:        6_000_000,
		Travelers:     3,
		Arrival:       at(10, 9, 0),
		Departure:     at(12, 19, 0),
		Transport:     domain.TransportMotorbike,
		Accommodation: domain.TierHomestay,
		Preferences:   []string{"nightlife", "shopping"},
	}

	a, err := p.Plan(req, danangCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := p.Plan(req, danangCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical itineraries for identical input")
	}
	assertInvariants(t, p, a)
}

func TestPlan_InvalidRequest(t *testing.T) {
	p := defaultPlanner()
	_, err := p.Plan(domain.TripRequest{
		Budget:    1_000_000,
		Travelers: 0,
		Arrival:   at(12, 8, 0),
		Departure: at(10, 8, 0),
		Transport: domain.TransportOwn,
	}, danangCatalog())
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestPlan_NoLodgingInCatalog(t *testing.T) {
	p := defaultPlanner()
	_, err := p.Plan(domain.TripRequest{
		Budget:        5_000_000,
		Travelers:     2,
		Arrival:       at(10, 8, 0),
		Departure:     at(12, 18, 0),
		Transport:     domain.TransportOwn,
		Accommodation: domain.TierHotel,
	}, []domain.Location{place("bc", "Beach", "beach", "beach", 16.05, 108.24, 0, 0)})
	if !errors.Is(err, domain.ErrNoAccommodation) {
		t.Fatalf("expected ErrNoAccommodation, got %v", err)
	}
}

func TestPreviewBudget(t *testing.T) {
	p := defaultPlanner()
	preview, err := p.PreviewBudget(domain.TripRequest{
		Budget:        3_000_000,
		Travelers:     2,
		Arrival:       at(10, 8, 0),
		Departure:     at(12, 18, 0),
		Transport:     domain.TransportTaxi,
		Accommodation: domain.TierAuto,
	}, danangCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if preview.NumDays != 3 {
		t.Errorf("expected 3 days, got %d", preview.NumDays)
	}
	if preview.Accommodation == nil || preview.Accommodation.Location.ID != "ht-sala" {
		t.Fatalf("expected Sala Hotel, got %+v", preview.Accommodation)
	}
	if preview.AccommodationCost != 1_200_000 {
		t.Errorf("expected 1200000, got %.0f", preview.AccommodationCost)
	}
	if preview.DailyBudget != 600_000 {
		t.Errorf("expected 600000 a day, got %.0f", preview.DailyBudget)
	}
	if !preview.Feasibility.Valid {
		t.Errorf("expected feasible, got %s", preview.Feasibility.Message)
	}
}

func TestBudgetStatus(t *testing.T) {
	const budget = 10_000_000
	tests := []struct {
		name  string
		total float64
		want  domain.BudgetStatus
	}{
		{"well under", 5_000_000, domain.BudgetUnder},
		{"just under 80%", 7_990_000, domain.BudgetUnder},
		{"at 80%", 8_000_000, domain.BudgetWithin},
		{"on budget", 10_000_000, domain.BudgetWithin},
		{"at 110%", 11_000_000, domain.BudgetWithin},
		{"just over 110%", 11_010_000, domain.BudgetOver},
		{"far over", 20_000_000, domain.BudgetOver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := planner.BudgetStatusOf(tt.total, budget); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPlan_CheckOutBeforeAirportBuffer(t *testing.T) {
	p := defaultPlanner()
	buffer := p.Config().AirportBufferHours

	for _, arrHour := range []int{7, 9, 12} {
		for depHour := 10; depHour <= 23; depHour++ {
			for _, extraDays := range []int{0, 2} {
				if extraDays == 0 && depHour <= arrHour {
					continue
				}
				req := domain.TripRequest{
					Budget:        30_000_000,
					Travelers:     2,
					Arrival:       at(10, arrHour, 0),
					Departure:     at(10+extraDays, depHour, 0),
					Transport:     domain.TransportMotorbike,
					Accommodation: domain.TierHotel,
				}
				it, err := p.Plan(req, danangCatalog())
				if err != nil {
					t.Fatalf("arr %d dep %d +%dd: unexpected error: %v", arrHour, depHour, extraDays, err)
				}
				assertInvariants(t, p, it)

				last := it.Days[len(it.Days)-1].Items
				co := last[len(last)-1]
				if co.Type != domain.ItemCheckOut {
					t.Fatalf("arr %d dep %d +%dd: expected check-out last, got %s", arrHour, depHour, extraDays, co.Type)
				}
				cutoff := float64(depHour) - buffer
				if co.StartHour <= cutoff+eps {
					continue
				}
				// Only a same-day arrival after the cutoff may push check-out past it.
				if len(last) < 2 {
					t.Fatalf("arr %d dep %d +%dd: check-out at %s with nothing before it", arrHour, depHour, extraDays, co.StartTime)
				}
				prev := last[len(last)-2]
				if extraDays != 0 || prev.Type != domain.ItemCheckIn || math.Abs(prev.EndHour-co.StartHour) > eps {
					t.Errorf("arr %d dep %d +%dd: check-out starts %s, after the %s cutoff",
						arrHour, depHour, extraDays, co.StartTime, domain.FormatClock(cutoff))
				}
			}
		}
	}
}
