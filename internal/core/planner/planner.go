package planner

import (
	"time"

	"github.com/samirrijal/tripplanner/internal/core/domain"
)

const (
	overBudgetRatio  = 1.10
	underBudgetRatio = 0.80
)

// Planner generates itineraries. It is safe for concurrent use; each Plan call
// owns its own state.
type Planner struct {
	cfg       Config
	rules     *RuleTable
	validator *Validator
	bands     Bands
	observer  Observer
}

// Option customizes a Planner.
type Option func(*Planner)

// WithRules replaces the default rule table.
func WithRules(rt *RuleTable) Option {
	return func(p *Planner) { p.rules = rt }
}

// WithBands replaces the default budget bands.
func WithBands(b Bands) Option {
	return func(p *Planner) { p.bands = b }
}

// WithObserver receives scheduling events.
func WithObserver(o Observer) Option {
	return func(p *Planner) { p.observer = o }
}

// New creates a Planner.
func New(cfg Config, opts ...Option) *Planner {
	p := &Planner{
		cfg:      cfg,
		rules:    DefaultRuleTable(),
		bands:    DefaultBands(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.observer == nil {
		p.observer = nopObserver{}
	}
	p.validator = NewValidator(cfg, p.rules)
	return p
}

func (p *Planner) Config() Config        { return p.cfg }
func (p *Planner) Rules() *RuleTable     { return p.rules }
func (p *Planner) Validator() *Validator { return p.validator }
func (p *Planner) Bands() Bands          { return p.bands }

// Plan builds an itinerary for req from catalog. The only errors are an
// invalid request, an infeasible budget and a catalog without lodging.
// The returned itinerary has no ID; callers assign one.
func (p *Planner) Plan(req domain.TripRequest, catalog []domain.Location) (*domain.Itinerary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	numDays := req.NumDays()
	own := req.Transport.IsOwn()

	// Fail before looking at lodging when even a free stay is unaffordable.
	if f := p.validator.ValidateBudgetFeasibility(req.Budget, req.Travelers, numDays, 0, own); !f.Valid {
		return nil, f.Err()
	}

	var choice *AccommodationChoice
	tier := req.Accommodation
	if tier != domain.TierFree {
		c, err := p.SelectAccommodation(Lodging(catalog), req.Accommodation, req.Budget, numDays, req.Travelers)
		if err != nil {
			return nil, err
		}
		choice, tier = &c, c.Tier
	}
	var accomCost float64
	if choice != nil {
		accomCost = choice.Cost
	}

	if f := p.validator.ValidateBudgetFeasibility(req.Budget, req.Travelers, numDays, accomCost, own); !f.Valid {
		return nil, f.Err()
	}

	it := &domain.Itinerary{
		Request:           req,
		Breakdown:         p.bands.Allocate(req.Budget, tier, p.cfg.CurrencyStep),
		AccommodationCost: accomCost,
		Days:              make([]domain.Day, 0, numDays),
	}
	if choice != nil {
		it.Accommodation = copyLocation(choice.Location)
	}

	dayBudget := (req.Budget - accomCost) / float64(numDays)
	ctx := NewScheduleContext()
	loc := req.Arrival.Location()
	dep := req.Departure.In(loc)
	firstDate := time.Date(req.Arrival.Year(), req.Arrival.Month(), req.Arrival.Day(), 0, 0, 0, 0, loc)

	total := accomCost
	for i := 0; i < numDays; i++ {
		in := DayInput{
			DayNumber:     i + 1,
			Date:          firstDate.AddDate(0, 0, i).Format("2006-01-02"),
			StartHour:     p.cfg.DayStartHour,
			EndHour:       p.cfg.DayEndHour,
			Catalog:       catalog,
			Transport:     req.Transport,
			Travelers:     req.Travelers,
			Budget:        dayBudget,
			Accommodation: choice,
			IsFirstDay:    i == 0,
			IsLastDay:     i == numDays-1,
			Preferences:   req.Preferences,
		}
		if in.IsFirstDay {
			in.StartHour = clockHour(req.Arrival)
		}
		if in.IsLastDay {
			in.EndHour = clockHour(dep)
		}
		day := p.NewDayScheduler(in, ctx).Run()
		total += day.Cost()
		it.Days = append(it.Days, day)
	}

	it.TotalCost = roundTo(total, p.cfg.CurrencyStep)
	it.BudgetStatus = budgetStatus(it.TotalCost, req.Budget)
	return it, nil
}

// PreviewBudget returns the budget split and feasibility without scheduling any day.
func (p *Planner) PreviewBudget(req domain.TripRequest, catalog []domain.Location) (BudgetPreview, error) {
	if err := req.Validate(); err != nil {
		return BudgetPreview{}, err
	}
	numDays := req.NumDays()
	preview := BudgetPreview{NumDays: numDays, Tier: req.Accommodation}
	if req.Accommodation != domain.TierFree {
		c, err := p.SelectAccommodation(Lodging(catalog), req.Accommodation, req.Budget, numDays, req.Travelers)
		if err != nil {
			return BudgetPreview{}, err
		}
		preview.Accommodation = &c
		preview.Tier = c.Tier
		preview.AccommodationCost = c.Cost
	}
	preview.Breakdown = p.bands.Allocate(req.Budget, preview.Tier, p.cfg.CurrencyStep)
	preview.Feasibility = p.validator.ValidateBudgetFeasibility(
		req.Budget, req.Travelers, numDays, preview.AccommodationCost, req.Transport.IsOwn())
	preview.DailyBudget = roundTo((req.Budget-preview.AccommodationCost)/float64(numDays), p.cfg.CurrencyStep)
	return preview, nil
}

// BudgetPreview is the pre-flight view of a trip's money.
type BudgetPreview struct {
	NumDays           int                      `json:"num_days"`
	Tier              domain.AccommodationTier `json:"tier"`
	Breakdown         domain.BudgetBreakdown   `json:"breakdown"`
	Accommodation     *AccommodationChoice     `json:"accommodation,omitempty"`
	AccommodationCost float64                  `json:"accommodation_cost"`
	DailyBudget       float64                  `json:"daily_budget"`
	Feasibility       Feasibility              `json:"feasibility"`
}

// Lodging returns the accommodation entries of catalog.
func Lodging(catalog []domain.Location) []domain.Location {
	var out []domain.Location
	for _, l := range catalog {
		if l.IsAccommodation() {
			out = append(out, l)
		}
	}
	return out
}

func clockHour(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60
}

func budgetStatus(total, budget float64) domain.BudgetStatus {
	switch {
	case total > budget*overBudgetRatio:
		return domain.BudgetOver
	case total < budget*underBudgetRatio:
		return domain.BudgetUnder
	default:
		return domain.BudgetWithin
	}
}
