// Package planner builds multi-day itineraries from a location catalog.
//
// Everything here is pure and deterministic: no I/O, no clocks, no randomness.
// Callers materialize the catalog first and hand it in as a slice.
package planner

// Config holds the tunable weights and thresholds of the planner. All money is VND.
type Config struct {
	// Scoring
	PreferenceBonus      float64 `mapstructure:"preference_bonus"`
	DistanceBonusMax     float64 `mapstructure:"distance_bonus_max"`
	DistancePenaltyPerKm float64 `mapstructure:"distance_penalty_per_km"`
	BudgetFitBonus       float64 `mapstructure:"budget_fit_bonus"`
	BudgetFitRatio       float64 `mapstructure:"budget_fit_ratio"`
	DiversityBonus       float64 `mapstructure:"diversity_bonus"`

	// Feasibility minimums, per person per day
	MinDailyOwnTransport  float64 `mapstructure:"min_daily_own_transport"`
	MinDailyPaidTransport float64 `mapstructure:"min_daily_paid_transport"`

	// Accommodation tiers, per person per day
	BudgetTierCeiling   float64 `mapstructure:"budget_tier_ceiling"`
	MidTierCeiling      float64 `mapstructure:"mid_tier_ceiling"`
	HotelFloorPerPerson float64 `mapstructure:"hotel_floor_per_person"`
	LargeGroupSize      int     `mapstructure:"large_group_size"`
	LodgingShare        float64 `mapstructure:"lodging_share"`

	// Scheduling
	CategoryCooldownHours float64 `mapstructure:"category_cooldown_hours"`
	FoodCooldownHours     float64 `mapstructure:"food_cooldown_hours"`
	AirportBufferHours    float64 `mapstructure:"airport_buffer_hours"`
	SiestaHours           float64 `mapstructure:"siesta_hours"`
	DayStartHour          float64 `mapstructure:"day_start_hour"`
	DayEndHour            float64 `mapstructure:"day_end_hour"`
	ReturnHour            float64 `mapstructure:"return_hour"`
	EveningLoopCap        int     `mapstructure:"evening_loop_cap"`

	CurrencyStep float64 `mapstructure:"currency_step"`
}

// DefaultConfig returns the product-tuned defaults.
func DefaultConfig() Config {
	return Config{
		PreferenceBonus:      30,
		DistanceBonusMax:     15,
		DistancePenaltyPerKm: 2,
		BudgetFitBonus:       10,
		BudgetFitRatio:       0.35,
		DiversityBonus:       5,

		MinDailyOwnTransport:  150_000,
		MinDailyPaidTransport: 250_000,

		BudgetTierCeiling:   300_000,
		MidTierCeiling:      700_000,
		HotelFloorPerPerson: 250_000,
		LargeGroupSize:      4,
		LodgingShare:        0.25,

		CategoryCooldownHours: 3,
		FoodCooldownHours:     2,
		AirportBufferHours:    2,
		SiestaHours:           2,
		DayStartHour:          6,
		DayEndHour:            23,
		ReturnHour:            22.5,
		EveningLoopCap:        3,

		CurrencyStep: 10_000,
	}
}

// CooldownFor returns the minimum gap in hours between two visits of category.
func (c Config) CooldownFor(category string) float64 {
	if category == CategoryFood {
		return c.FoodCooldownHours
	}
	return c.CategoryCooldownHours
}
