package planner

import (
	"math"
	"strings"

	"github.com/samirrijal/tripplanner/internal/core/domain"
)

// price-level thresholds used when an entry's type says nothing about its tier
const (
	guesthousePriceCeiling = 400_000
	homestayPriceCeiling   = 800_000
)

// AccommodationChoice is the selected lodging and what it costs for the whole stay.
type AccommodationChoice struct {
	Location   *domain.Location         `json:"location"`
	Tier       domain.AccommodationTier `json:"tier"`
	Rooms      int                      `json:"rooms"`
	Nights     int                      `json:"nights"`
	NightlyFee float64                  `json:"nightly_fee"` // all rooms, one night
	Cost       float64                  `json:"cost"`
}

// TargetTier picks the lodging tier for a trip. An explicit request wins, except
// that "hotel" drops to "guesthouse" below the hotel floor.
func (p *Planner) TargetTier(requested domain.AccommodationTier, perPersonDaily float64, numPeople int) domain.AccommodationTier {
	if requested != domain.TierAuto {
		if requested == domain.TierHotel && perPersonDaily < p.cfg.HotelFloorPerPerson {
			return domain.TierGuesthouse
		}
		return requested
	}
	switch {
	case perPersonDaily < p.cfg.BudgetTierCeiling:
		return domain.TierGuesthouse
	case perPersonDaily < p.cfg.MidTierCeiling:
		if numPeople >= p.cfg.LargeGroupSize {
			return domain.TierHomestay
		}
		return domain.TierHotel
	default:
		return domain.TierHotel
	}
}

// tierOf classifies an accommodation entry by type or, failing that, by price.
func tierOf(loc *domain.Location) domain.AccommodationTier {
	kind := strings.ToLower(loc.VisitType)
	if kind == "" || kind == "accommodation" {
		kind = strings.ToLower(loc.Type)
	}
	switch kind {
	case "guesthouse", "hostel":
		return domain.TierGuesthouse
	case "homestay", "villa":
		return domain.TierHomestay
	case "hotel", "resort":
		return domain.TierHotel
	}
	switch price := loc.NightlyPrice(); {
	case price < guesthousePriceCeiling:
		return domain.TierGuesthouse
	case price < homestayPriceCeiling:
		return domain.TierHomestay
	default:
		return domain.TierHotel
	}
}

// SelectAccommodation picks the lodging closest in price to the expected
// lodging share of the daily budget. It only fails when candidates is empty.
func (p *Planner) SelectAccommodation(
	candidates []domain.Location,
	requested domain.AccommodationTier,
	totalBudget float64,
	numDays, numPeople int,
) (AccommodationChoice, error) {
	if len(candidates) == 0 {
		return AccommodationChoice{}, domain.ErrNoAccommodation
	}
	if numDays < 1 {
		numDays = 1
	}
	if numPeople < 1 {
		numPeople = 1
	}
	dailyBudget := totalBudget / float64(numDays)
	tier := p.TargetTier(requested, dailyBudget/float64(numPeople), numPeople)

	pool := make([]*domain.Location, 0, len(candidates))
	for i := range candidates {
		if tierOf(&candidates[i]) == tier {
			pool = append(pool, &candidates[i])
		}
	}
	if len(pool) == 0 {
		for i := range candidates {
			pool = append(pool, &candidates[i])
		}
	}

	target := dailyBudget * p.cfg.LodgingShare
	best := pool[0]
	bestGap := math.Abs(best.NightlyPrice() - target)
	for _, c := range pool[1:] {
		if gap := math.Abs(c.NightlyPrice() - target); gap < bestGap {
			best, bestGap = c, gap
		}
	}

	rooms := ceilDiv(numPeople, 2)
	nights := max(numDays-1, 0)
	fee := best.NightlyPrice() * float64(rooms)
	return AccommodationChoice{
		Location:   best,
		Tier:       tier,
		Rooms:      rooms,
		Nights:     nights,
		NightlyFee: fee,
		Cost:       fee * float64(nights),
	}, nil
}
