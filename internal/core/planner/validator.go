package planner

import (
	"fmt"

	"github.com/samirrijal/tripplanner/internal/core/domain"
)

// CategoryHistory tracks which categories were visited today and when.
// It is reset at the start of every day.
type CategoryHistory struct {
	Visited   []string           `json:"visited"`
	LastVisit map[string]float64 `json:"last_visit"`
}

// NewCategoryHistory returns an empty history.
func NewCategoryHistory() *CategoryHistory {
	return &CategoryHistory{LastVisit: make(map[string]float64)}
}

// Record marks category as visited at hour.
func (h *CategoryHistory) Record(category string, hour float64) {
	if _, ok := h.LastVisit[category]; !ok {
		h.Visited = append(h.Visited, category)
	}
	h.LastVisit[category] = hour
}

// Has reports whether category was visited today.
func (h *CategoryHistory) Has(category string) bool {
	if h == nil {
		return false
	}
	_, ok := h.LastVisit[category]
	return ok
}

// UsedSet holds location IDs already placed in the itinerary. Trip-scoped.
type UsedSet map[string]struct{}

func (u UsedSet) Has(id string) bool {
	_, ok := u[id]
	return ok
}

func (u UsedSet) Add(id string) {
	u[id] = struct{}{}
}

// Feasibility is the result of the pre-flight budget check.
type Feasibility struct {
	Valid          bool    `json:"valid"`
	Message        string  `json:"message,omitempty"`
	PerPersonDaily float64 `json:"per_person_daily"`
	Required       float64 `json:"required"`
	OwnTransport   bool    `json:"own_transport"`
}

// Err converts a failed check into an *domain.InfeasibleTripError.
func (f Feasibility) Err() error {
	if f.Valid {
		return nil
	}
	return &domain.InfeasibleTripError{
		PerPersonDaily: f.PerPersonDaily,
		Required:       f.Required,
		OwnTransport:   f.OwnTransport,
	}
}

// Validator admits or rejects candidates for a slot.
type Validator struct {
	cfg   Config
	rules *RuleTable
}

// NewValidator creates a Validator.
func NewValidator(cfg Config, rules *RuleTable) *Validator {
	return &Validator{cfg: cfg, rules: rules}
}

// EffectiveHours prefers the location's own open/close times over the rule table.
func (v *Validator) EffectiveHours(loc *domain.Location) TimeWindow {
	open, okOpen := parseClock(loc.OpenTime)
	closing, okClose := parseClock(loc.CloseTime)
	if okOpen && okClose {
		return TimeWindow{Start: open, End: closing}
	}
	return v.rules.For(loc).Hours
}

// CanVisitAt reports whether loc may start a visit at hour.
func (v *Validator) CanVisitAt(loc *domain.Location, hour float64) bool {
	rule := v.rules.For(loc)
	if rule.NeedsSpecialCondition && hour < nightlifeEarliestHour {
		return false
	}
	if !v.EffectiveHours(loc).Contains(hour) {
		return false
	}
	if len(rule.Meals) > 0 {
		for _, w := range rule.Meals {
			if w.Contains(hour) {
				return true
			}
		}
		return false
	}
	return true
}

// HasEnoughTime reports whether availableMinutes covers the rule minimum for loc.
func (v *Validator) HasEnoughTime(availableMinutes int, loc *domain.Location) bool {
	return availableMinutes >= v.rules.For(loc).MinDuration
}

// CategoryCooldownOK rejects a category visited today less than its cooldown ago.
func (v *Validator) CategoryCooldownOK(category string, hour float64, history *CategoryHistory) bool {
	if !history.Has(category) {
		return true
	}
	return hour-history.LastVisit[category] >= v.cfg.CooldownFor(category)
}

// FilterCandidates drops used locations, then applies the hour, time and cooldown
// checks. Catalog order is preserved.
func (v *Validator) FilterCandidates(
	list []domain.Location,
	hour float64,
	availableMinutes int,
	history *CategoryHistory,
	used UsedSet,
) []*domain.Location {
	out := make([]*domain.Location, 0, len(list))
	for i := range list {
		loc := &list[i]
		if used.Has(loc.ID) {
			continue
		}
		if !v.CanVisitAt(loc, hour) || !v.HasEnoughTime(availableMinutes, loc) {
			continue
		}
		if !v.CategoryCooldownOK(v.rules.For(loc).Category, hour, history) {
			continue
		}
		out = append(out, loc)
	}
	return out
}

// ValidateBudgetFeasibility checks the per-person daily budget left after lodging
// against the minimum for the transport situation.
func (v *Validator) ValidateBudgetFeasibility(
	totalBudget float64,
	numPeople, numDays int,
	accommodationCost float64,
	ownTransport bool,
) Feasibility {
	if numPeople < 1 {
		numPeople = 1
	}
	if numDays < 1 {
		numDays = 1
	}
	required := v.cfg.MinDailyPaidTransport
	if ownTransport {
		required = v.cfg.MinDailyOwnTransport
	}
	perPersonDaily := (totalBudget - accommodationCost) / float64(numDays) / float64(numPeople)
	f := Feasibility{
		Valid:          perPersonDaily >= required,
		PerPersonDaily: roundTo(perPersonDaily, 1000),
		Required:       required,
		OwnTransport:   ownTransport,
	}
	if !f.Valid {
		f.Message = fmt.Sprintf(
			"Budget of %.0f VND leaves about %.0f VND per person per day; at least %.0f VND is needed",
			totalBudget, f.PerPersonDaily, required,
		)
	}
	return f
}
