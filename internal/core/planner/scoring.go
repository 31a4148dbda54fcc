package planner

import (
	"math"
	"sort"
	"strings"

	"github.com/samirrijal/tripplanner/internal/core/domain"
)

// preferenceTags maps a traveler preference to the tags, types and visit types it matches.
var preferenceTags = map[string][]string{
	"beach":     {"beach", "sea", "island"},
	"culture":   {"culture", "museum", "pagoda", "temple", "historical", "heritage"},
	"food":      {"food", "restaurant", "street-food", "seafood", "local-food"},
	"nature":    {"nature", "mountain", "park", "hiking", "waterfall"},
	"nightlife": {"nightlife", "bar", "bar-nightlife", "night-market", "night-attraction", "club"},
	"shopping":  {"shopping", "market", "mall", "shopping-mall", "souvenir"},
	"adventure": {"adventure", "theme-park", "ba-na-hills", "hiking", "water-sports"},
	"relax":     {"relax", "spa", "cafe", "beach", "massage"},
}

// MatchesPreference reports whether loc matches any of prefs. Unknown
// preferences match as a literal tag.
func MatchesPreference(loc *domain.Location, prefs []string) bool {
	for _, p := range prefs {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		tags, ok := preferenceTags[p]
		if !ok {
			tags = []string{p}
		}
		for _, t := range tags {
			if loc.HasTag(t) {
				return true
			}
		}
	}
	return false
}

// ScoreInput is the scheduler state a score depends on.
type ScoreInput struct {
	From        domain.GeoPoint
	Remaining   float64 // group budget left today
	Travelers   int
	Preferences []string
	History     *CategoryHistory
}

// Score is the additive desirability of loc given the current state.
func (p *Planner) Score(loc *domain.Location, in ScoreInput) float64 {
	var score float64
	if MatchesPreference(loc, in.Preferences) {
		score += p.cfg.PreferenceBonus
	}
	d := Distance(in.From, loc.Location)
	score += math.Max(0, p.cfg.DistanceBonusMax-p.cfg.DistancePenaltyPerKm*d)

	perPerson := in.Remaining / float64(max(in.Travelers, 1))
	if loc.Ticket <= p.cfg.BudgetFitRatio*perPerson {
		score += p.cfg.BudgetFitBonus
	}
	if !in.History.Has(p.rules.For(loc).Category) {
		score += p.cfg.DiversityBonus
	}
	return score
}

// Rank orders candidates by score, highest first. Ties keep catalog order.
func (p *Planner) Rank(candidates []*domain.Location, in ScoreInput) []*domain.Location {
	scores := make(map[*domain.Location]float64, len(candidates))
	for _, c := range candidates {
		scores[c] = p.Score(c, in)
	}
	ranked := append([]*domain.Location(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})
	return ranked
}
