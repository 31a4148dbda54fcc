package planner

import (
	"math"
	"strconv"
	"strings"

	"github.com/samirrijal/tripplanner/internal/core/domain"
)

// Category buckets shared by visit rules.
const (
	CategoryAttraction      = "attraction"
	CategoryBeach           = "beach"
	CategoryFood            = "food"
	CategoryCafe            = "cafe"
	CategoryMarket          = "market"
	CategoryCulture         = "culture"
	CategoryNature          = "nature"
	CategoryThemePark       = "theme-park"
	CategoryNightlife       = "nightlife"
	CategoryNightAttraction = "night-attraction"
	CategoryNightMarket     = "night-market"
	CategoryRelax           = "relax"
	CategoryShopping        = "shopping"
	CategoryAccommodation   = "accommodation"
)

// Meal names a meal sub-window.
type Meal string

const (
	Breakfast Meal = "breakfast"
	Lunch     Meal = "lunch"
	Dinner    Meal = "dinner"
)

// nightlifeEarliestHour blocks special-condition types before this hour.
const nightlifeEarliestHour = 18.0

// TimeWindow is an hour range [Start, End). Start > End wraps past midnight;
// Start == End means open around the clock.
type TimeWindow struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Contains reports whether hour falls inside the window.
func (w TimeWindow) Contains(hour float64) bool {
	if w.Start == w.End {
		return true
	}
	h := math.Mod(hour, 24)
	if h < 0 {
		h += 24
	}
	if w.Start > w.End {
		return h >= w.Start || h < w.End
	}
	return h >= w.Start && h < w.End
}

// VisitRule holds scheduling constraints for one visit type.
type VisitRule struct {
	VisitType             string              `json:"visit_type"`
	Hours                 TimeWindow          `json:"hours"`
	BestTimes             []string            `json:"best_times"`
	MinDuration           int                 `json:"min_duration"`     // minutes
	DefaultDuration       int                 `json:"default_duration"` // minutes
	Category              string              `json:"category"`
	Meals                 map[Meal]TimeWindow `json:"meals,omitempty"`
	NeedsSpecialCondition bool                `json:"needs_special_condition"`
}

// RuleTable resolves visit types to rules, falling back to the generic attraction rule.
type RuleTable struct {
	rules    map[string]VisitRule
	fallback VisitRule
}

// NewRuleTable builds a table. An "attraction" rule must be present or a default one is used.
func NewRuleTable(rules []VisitRule) *RuleTable {
	t := &RuleTable{rules: make(map[string]VisitRule, len(rules))}
	for _, r := range rules {
		t.rules[r.VisitType] = r
	}
	fb, ok := t.rules[CategoryAttraction]
	if !ok {
		fb = attractionRule
		t.rules[CategoryAttraction] = fb
	}
	t.fallback = fb
	return t
}

// Rule returns the rule for visitType.
func (t *RuleTable) Rule(visitType string) VisitRule {
	if r, ok := t.rules[strings.ToLower(visitType)]; ok {
		return r
	}
	return t.fallback
}

// For resolves a location's rule: visit type first, then the coarse type.
func (t *RuleTable) For(loc *domain.Location) VisitRule {
	if r, ok := t.rules[strings.ToLower(loc.VisitType)]; ok {
		return r
	}
	if r, ok := t.rules[strings.ToLower(loc.Type)]; ok {
		return r
	}
	return t.fallback
}

func (t *RuleTable) OperatingHours(visitType string) TimeWindow {
	return t.Rule(visitType).Hours
}

func (t *RuleTable) MinDuration(visitType string) int {
	return t.Rule(visitType).MinDuration
}

func (t *RuleTable) BestTimeLabels(visitType string) []string {
	return t.Rule(visitType).BestTimes
}

func (t *RuleTable) IsSpecialConditionType(visitType string) bool {
	return t.Rule(visitType).NeedsSpecialCondition
}

func (t *RuleTable) MealWindows(visitType string) map[Meal]TimeWindow {
	return t.Rule(visitType).Meals
}

var attractionRule = VisitRule{
	VisitType: "attraction", Hours: TimeWindow{7, 18}, BestTimes: []string{"morning", "afternoon"},
	MinDuration: 60, DefaultDuration: 90, Category: CategoryAttraction,
}

var allMeals = map[Meal]TimeWindow{
	Breakfast: {6, 10},
	Lunch:     {10.5, 14},
	Dinner:    {17, 21.5},
}

var lunchDinner = map[Meal]TimeWindow{
	Lunch:  {10.5, 14},
	Dinner: {17, 21.5},
}

// DefaultRules is the rule set for the Da Nang catalog.
func DefaultRules() []VisitRule {
	lodging := func(vt string) VisitRule {
		return VisitRule{VisitType: vt, Hours: TimeWindow{0, 0}, Category: CategoryAccommodation}
	}
	return []VisitRule{
		attractionRule,
		{VisitType: "beach", Hours: TimeWindow{5, 19}, BestTimes: []string{"early-morning", "late-afternoon"},
			MinDuration: 60, DefaultDuration: 120, Category: CategoryBeach},
		{VisitType: "restaurant", Hours: TimeWindow{6, 22}, BestTimes: []string{"noon", "evening"},
			MinDuration: 45, DefaultDuration: 60, Category: CategoryFood, Meals: allMeals},
		{VisitType: "restaurant-cheap", Hours: TimeWindow{6, 22}, BestTimes: []string{"morning", "noon", "evening"},
			MinDuration: 30, DefaultDuration: 45, Category: CategoryFood, Meals: allMeals},
		{VisitType: "street-food", Hours: TimeWindow{6, 23}, BestTimes: []string{"morning", "evening"},
			MinDuration: 30, DefaultDuration: 45, Category: CategoryFood, Meals: allMeals},
		{VisitType: "restaurant-mid", Hours: TimeWindow{10, 22}, BestTimes: []string{"noon", "evening"},
			MinDuration: 45, DefaultDuration: 60, Category: CategoryFood, Meals: lunchDinner},
		{VisitType: "seafood", Hours: TimeWindow{10, 22}, BestTimes: []string{"evening"},
			MinDuration: 60, DefaultDuration: 75, Category: CategoryFood, Meals: lunchDinner},
		{VisitType: "restaurant-luxury", Hours: TimeWindow{11, 22}, BestTimes: []string{"evening"},
			MinDuration: 60, DefaultDuration: 90, Category: CategoryFood, Meals: lunchDinner},
		{VisitType: "cafe", Hours: TimeWindow{7, 22}, BestTimes: []string{"morning", "afternoon", "evening"},
			MinDuration: 30, DefaultDuration: 60, Category: CategoryCafe},
		{VisitType: "market", Hours: TimeWindow{6, 18}, BestTimes: []string{"morning"},
			MinDuration: 45, DefaultDuration: 60, Category: CategoryMarket},
		{VisitType: "night-market", Hours: TimeWindow{17, 23}, BestTimes: []string{"evening"},
			MinDuration: 60, DefaultDuration: 90, Category: CategoryNightMarket},
		{VisitType: "museum", Hours: TimeWindow{8, 17}, BestTimes: []string{"morning", "afternoon"},
			MinDuration: 60, DefaultDuration: 90, Category: CategoryCulture},
		{VisitType: "pagoda", Hours: TimeWindow{6, 18}, BestTimes: []string{"early-morning", "morning"},
			MinDuration: 45, DefaultDuration: 60, Category: CategoryCulture},
		{VisitType: "historical", Hours: TimeWindow{7, 17}, BestTimes: []string{"morning"},
			MinDuration: 60, DefaultDuration: 90, Category: CategoryCulture},
		{VisitType: "nature", Hours: TimeWindow{6, 17}, BestTimes: []string{"early-morning", "morning"},
			MinDuration: 90, DefaultDuration: 120, Category: CategoryNature},
		{VisitType: "ba-na-hills", Hours: TimeWindow{7, 17}, BestTimes: []string{"morning"},
			MinDuration: 300, DefaultDuration: 360, Category: CategoryThemePark},
		{VisitType: "theme-park", Hours: TimeWindow{9, 21}, BestTimes: []string{"afternoon", "evening"},
			MinDuration: 120, DefaultDuration: 180, Category: CategoryThemePark},
		{VisitType: "bar-nightlife", Hours: TimeWindow{18, 2}, BestTimes: []string{"night"},
			MinDuration: 60, DefaultDuration: 120, Category: CategoryNightlife, NeedsSpecialCondition: true},
		{VisitType: "club", Hours: TimeWindow{21, 3}, BestTimes: []string{"night"},
			MinDuration: 90, DefaultDuration: 120, Category: CategoryNightlife, NeedsSpecialCondition: true},
		{VisitType: "night-attraction", Hours: TimeWindow{18, 23}, BestTimes: []string{"evening"},
			MinDuration: 30, DefaultDuration: 45, Category: CategoryNightAttraction},
		{VisitType: "spa", Hours: TimeWindow{9, 22}, BestTimes: []string{"afternoon", "evening"},
			MinDuration: 60, DefaultDuration: 90, Category: CategoryRelax},
		{VisitType: "shopping-mall", Hours: TimeWindow{9, 22}, BestTimes: []string{"afternoon", "evening"},
			MinDuration: 60, DefaultDuration: 90, Category: CategoryShopping},
		lodging("hotel"), lodging("homestay"), lodging("guesthouse"),
		lodging("resort"), lodging("hostel"), lodging("accommodation"),
	}
}

// DefaultRuleTable returns a table over DefaultRules.
func DefaultRuleTable() *RuleTable {
	return NewRuleTable(DefaultRules())
}

// parseClock converts "HH:MM" (or "HH") into fractional hours.
func parseClock(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	hh, mm, _ := strings.Cut(s, ":")
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, false
	}
	m := 0
	if mm != "" {
		if m, err = strconv.Atoi(mm); err != nil || m < 0 || m > 59 {
			return 0, false
		}
	}
	return float64(h) + float64(m)/60, true
}
