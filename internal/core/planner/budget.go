package planner

import "github.com/samirrijal/tripplanner/internal/core/domain"

// Band is a min–max percentage share of the trip budget.
type Band struct {
	Min float64 `mapstructure:"min" json:"min"`
	Max float64 `mapstructure:"max" json:"max"`
}

func (b Band) mid() float64 { return (b.Min + b.Max) / 2 }

// Bands configures the budget split. Stay bands are keyed by accommodation tier.
type Bands struct {
	Stay       map[domain.AccommodationTier]Band `mapstructure:"stay" json:"stay"`
	Food       Band                              `mapstructure:"food" json:"food"`
	Transport  Band                              `mapstructure:"transport" json:"transport"`
	Activities Band                              `mapstructure:"activities" json:"activities"`
	Buffer     Band                              `mapstructure:"buffer" json:"buffer"`
}

// DefaultBands returns the standard percentage bands.
func DefaultBands() Bands {
	return Bands{
		Stay: map[domain.AccommodationTier]Band{
			domain.TierGuesthouse: {15, 25},
			domain.TierHomestay:   {20, 30},
			domain.TierHotel:      {30, 40},
			domain.TierFree:       {0, 0},
		},
		Food:       Band{25, 35},
		Transport:  Band{10, 20},
		Activities: Band{15, 25},
		Buffer:     Band{5, 10},
	}
}

// stayBand resolves the tier band. An unspecified tier uses the homestay band.
func (b Bands) stayBand(tier domain.AccommodationTier) Band {
	if band, ok := b.Stay[tier]; ok {
		return band
	}
	return b.Stay[domain.TierHomestay]
}

// Allocate splits totalBudget by the band midpoints, normalized to 100%, and
// rounds each share to step.
func (b Bands) Allocate(totalBudget float64, tier domain.AccommodationTier, step float64) domain.BudgetBreakdown {
	stay := b.stayBand(tier).mid()
	food := b.Food.mid()
	transport := b.Transport.mid()
	activities := b.Activities.mid()
	buffer := b.Buffer.mid()

	sum := stay + food + transport + activities + buffer
	if sum <= 0 {
		return domain.BudgetBreakdown{Total: totalBudget}
	}
	share := func(mid float64) float64 {
		return roundTo(totalBudget*mid/sum, step)
	}
	return domain.BudgetBreakdown{
		Stay:       share(stay),
		Food:       share(food),
		Transport:  share(transport),
		Activities: share(activities),
		Buffer:     share(buffer),
		Total:      totalBudget,
	}
}
