package planner

import (
	"fmt"
	"math"

	"github.com/samirrijal/tripplanner/internal/core/domain"
)

// Phase is one stage of a day, run in order.
type Phase string

const (
	PhaseArrival   Phase = "arrival"
	PhaseMorning   Phase = "morning"
	PhaseNoon      Phase = "noon"
	PhaseAfternoon Phase = "afternoon"
	PhaseEvening   Phase = "evening"
	PhaseCloseout  Phase = "closeout"
)

// Phases lists every phase in execution order.
var Phases = []Phase{PhaseArrival, PhaseMorning, PhaseNoon, PhaseAfternoon, PhaseEvening, PhaseCloseout}

type phaseWindow struct {
	start      float64
	boundary   float64
	maxMinutes int
}

var phaseWindows = map[Phase]phaseWindow{
	PhaseMorning:   {start: 0, boundary: 11.5, maxMinutes: 180},
	PhaseNoon:      {start: 11.5, boundary: 14, maxMinutes: 90},
	PhaseAfternoon: {start: 14, boundary: 18, maxMinutes: 150},
	PhaseEvening:   {start: 18, boundary: 22.5, maxMinutes: 120},
}

const (
	checkInCutoffHour     = 14.0
	earlyCheckInHour      = 13.0
	breakfastCutoffHour   = 9.5
	eveningLoopUntilHour  = 22.0
	siestaLastDayMinHour  = 18.0
	eveningLastDayMinHour = 20.0
	checkInMinutes        = 30
	checkOutMinutes       = 30
	quickStopMinutes      = 60
	shortCafeMinutes      = 45
)

// slot is one opportunity to place a single activity.
type slot struct {
	name       string
	categories []string
	title      string // meal label, e.g. "Lunch"
	maxMinutes int
}

// DayInput is everything needed to schedule one day.
type DayInput struct {
	DayNumber     int
	Date          string
	StartHour     float64
	EndHour       float64 // departure hour on the last day
	Catalog       []domain.Location
	Transport     domain.TransportMode
	Travelers     int
	Budget        float64
	Accommodation *AccommodationChoice
	IsFirstDay    bool
	IsLastDay     bool
	Preferences   []string
}

// DayState is the mutable state of one day's generation.
type DayState struct {
	Clock     float64          `json:"clock"`
	Current   *domain.Location `json:"current,omitempty"`
	Remaining float64          `json:"remaining"`
	History   *CategoryHistory `json:"history"`
}

// ScheduleContext carries state across days. Used is never reset within a trip.
type ScheduleContext struct {
	Used UsedSet
}

// NewScheduleContext returns a context with an empty used set.
func NewScheduleContext() *ScheduleContext {
	return &ScheduleContext{Used: make(UsedSet)}
}

// DayScheduler fills one day phase by phase on a virtual clock.
type DayScheduler struct {
	p     *Planner
	in    DayInput
	ctx   *ScheduleContext
	state DayState
	end   float64
	items []domain.ItineraryItem
}

// NewDayScheduler prepares a scheduler for in. ctx is mutated as locations are committed.
func (p *Planner) NewDayScheduler(in DayInput, ctx *ScheduleContext) *DayScheduler {
	if in.Travelers < 1 {
		in.Travelers = 1
	}
	if ctx == nil {
		ctx = NewScheduleContext()
	}
	end := in.EndHour
	if in.IsLastDay {
		end -= p.cfg.AirportBufferHours
	}
	s := &DayScheduler{
		p:   p,
		in:  in,
		ctx: ctx,
		end: end,
		state: DayState{
			Clock:     in.StartHour,
			Remaining: in.Budget,
			History:   NewCategoryHistory(),
		},
	}
	if in.Accommodation != nil {
		s.state.Current = in.Accommodation.Location
	}
	return s
}

// State returns a snapshot of the scheduler state.
func (s *DayScheduler) State() DayState {
	return s.state
}

// EffectiveEnd is the hour by which the day's activities must finish: the day end,
// less the airport buffer on the last day.
func (s *DayScheduler) EffectiveEnd() float64 {
	return s.end
}

// Run executes every phase and returns the finished day.
func (s *DayScheduler) Run() domain.Day {
	for _, ph := range Phases {
		s.Advance(ph)
	}
	s.emit(Event{Kind: EventDayDone})
	return domain.Day{DayNumber: s.in.DayNumber, Date: s.in.Date, Items: s.items}
}

// Advance runs one phase and returns the items it appended. Phases whose
// window has already passed return nil.
func (s *DayScheduler) Advance(ph Phase) []domain.ItineraryItem {
	before := len(s.items)
	switch ph {
	case PhaseArrival:
		s.arrival()
	case PhaseCloseout:
		s.closeout()
	default:
		if !s.enterPhase(ph) {
			return nil
		}
		s.emit(Event{Kind: EventPhaseStart, Phase: ph})
		switch ph {
		case PhaseMorning:
			s.morning()
		case PhaseNoon:
			s.noon()
		case PhaseAfternoon:
			s.afternoon()
		case PhaseEvening:
			s.evening()
		}
		s.emit(Event{Kind: EventPhaseEnd, Phase: ph})
	}
	if len(s.items) == before {
		return nil
	}
	return s.items[before:]
}

func (s *DayScheduler) enterPhase(ph Phase) bool {
	w := phaseWindows[ph]
	if s.state.Clock >= w.boundary || s.state.Clock >= s.end || w.start >= s.end {
		return false
	}
	if ph == PhaseEvening && s.in.IsLastDay && s.in.EndHour < eveningLastDayMinHour {
		return false
	}
	if s.state.Clock < w.start {
		s.state.Clock = w.start
	}
	return true
}

func (s *DayScheduler) arrival() {
	acc := s.in.Accommodation
	if !s.in.IsFirstDay || acc == nil || s.state.Clock > checkInCutoffHour {
		return
	}
	title := "Check in at " + acc.Location.Name
	if s.state.Clock < earlyCheckInHour {
		title = "Drop luggage at " + acc.Location.Name
	}
	start := s.state.Clock
	s.state.Clock += checkInMinutes / 60.0
	s.items = append(s.items, domain.ItineraryItem{
		Type:            domain.ItemCheckIn,
		StartTime:       domain.FormatClock(start),
		EndTime:         domain.FormatClock(s.state.Clock),
		StartHour:       start,
		EndHour:         s.state.Clock,
		Title:           title,
		Description:     fmt.Sprintf("%d room(s) for %d night(s)", acc.Rooms, acc.Nights),
		Location:        copyLocation(acc.Location),
		Cost:            domain.Cost{Other: acc.Cost},
		DurationMinutes: checkInMinutes,
	})
}

func (s *DayScheduler) morning() {
	limit := phaseWindows[PhaseMorning].maxMinutes
	if s.state.Clock < breakfastCutoffHour {
		s.fill(slot{name: "breakfast", categories: []string{CategoryFood}, title: "Breakfast", maxMinutes: limit})
	}
	s.fill(slot{name: "morning-1", categories: []string{CategoryAttraction, CategoryCulture, CategoryNature}, maxMinutes: limit})
	s.fill(slot{name: "morning-2", categories: []string{CategoryMarket, CategoryCafe, CategoryShopping}, maxMinutes: limit})
}

func (s *DayScheduler) noon() {
	s.fill(slot{name: "lunch", categories: []string{CategoryFood}, title: "Lunch",
		maxMinutes: phaseWindows[PhaseNoon].maxMinutes})
	s.siesta()
}

func (s *DayScheduler) siesta() {
	if s.in.IsLastDay && s.in.EndHour < siestaLastDayMinHour {
		return
	}
	var home *domain.Location
	if s.in.Accommodation != nil {
		home = s.in.Accommodation.Location
	}
	leg := s.legTo(home)
	travel := 0.0
	if leg != nil {
		travel = float64(leg.DurationMinutes) / 60
	}
	if s.state.Clock+travel+s.p.cfg.SiestaHours >= s.end {
		return
	}
	if leg != nil {
		s.appendLeg(*leg, home)
	}
	title := "Siesta"
	if home != nil {
		title = "Siesta at " + home.Name
		s.state.Current = home
	}
	start := s.state.Clock
	s.state.Clock += s.p.cfg.SiestaHours
	s.items = append(s.items, domain.ItineraryItem{
		Type:            domain.ItemRest,
		StartTime:       domain.FormatClock(start),
		EndTime:         domain.FormatClock(s.state.Clock),
		StartHour:       start,
		EndHour:         s.state.Clock,
		Title:           title,
		Description:     "Rest through the midday heat",
		Location:        copyLocation(home),
		DurationMinutes: int(math.Round(s.p.cfg.SiestaHours * 60)),
	})
}

func (s *DayScheduler) afternoon() {
	limit := phaseWindows[PhaseAfternoon].maxMinutes
	s.fill(slot{name: "afternoon-1", categories: []string{CategoryBeach, CategoryCafe, CategoryMarket}, maxMinutes: limit})
	s.fill(slot{name: "afternoon-2", categories: []string{CategoryAttraction, CategoryCulture, CategoryThemePark}, maxMinutes: limit})
}

func (s *DayScheduler) evening() {
	limit := phaseWindows[PhaseEvening].maxMinutes
	s.fill(slot{name: "dinner", categories: []string{CategoryFood}, title: "Dinner", maxMinutes: limit})
	night := []string{CategoryNightlife, CategoryNightAttraction, CategoryNightMarket, CategoryCafe}
	for i := 0; i < s.p.cfg.EveningLoopCap && s.state.Clock < eveningLoopUntilHour; i++ {
		if !s.fill(slot{name: fmt.Sprintf("night-%d", i+1), categories: night, maxMinutes: limit}) {
			break
		}
	}
}

func (s *DayScheduler) closeout() {
	if s.in.IsLastDay {
		s.checkout()
		return
	}
	if s.state.Clock < s.p.cfg.ReturnHour {
		s.state.Clock = s.p.cfg.ReturnHour
	}
	acc := s.in.Accommodation
	if acc == nil {
		s.items = append(s.items, domain.ItineraryItem{
			Type:      domain.ItemAccommodation,
			StartTime: domain.FormatClock(s.state.Clock),
			EndTime:   domain.FormatClock(s.state.Clock),
			StartHour: s.state.Clock,
			EndHour:   s.state.Clock,
			Title:     "Return home",
		})
		return
	}
	if leg := s.legTo(acc.Location); leg != nil {
		s.appendLeg(*leg, acc.Location)
	}
	s.state.Current = acc.Location
	s.items = append(s.items, domain.ItineraryItem{
		Type:        domain.ItemAccommodation,
		StartTime:   domain.FormatClock(s.state.Clock),
		EndTime:     domain.FormatClock(s.state.Clock),
		StartHour:   s.state.Clock,
		EndHour:     s.state.Clock,
		Title:       "Overnight at " + acc.Location.Name,
		Description: fmt.Sprintf("%d room(s)", acc.Rooms),
		Location:    copyLocation(acc.Location),
		Cost:        domain.Cost{Other: acc.NightlyFee},
	})
}

func (s *DayScheduler) checkout() {
	slack := s.end - s.state.Clock
	switch {
	case slack >= 2:
		s.fill(slot{name: "quick-stop", categories: []string{CategoryCafe, CategoryMarket}, maxMinutes: quickStopMinutes})
	case slack >= 1:
		s.fill(slot{name: "last-cafe", categories: []string{CategoryCafe}, maxMinutes: shortCafeMinutes})
	}

	var home *domain.Location
	if s.in.Accommodation != nil {
		home = s.in.Accommodation.Location
		if leg := s.legTo(home); leg != nil {
			s.appendLeg(*leg, home)
		}
		s.state.Current = home
	}

	// Check-out never starts after the effective end unless an earlier item ran past it.
	start := math.Max(math.Min(s.state.Clock, s.end), s.lastItemEnd())
	end := math.Max(s.in.EndHour, start+checkOutMinutes/60.0)
	title := "Head to the airport"
	if home != nil {
		title = "Check out of " + home.Name
	}
	s.items = append(s.items, domain.ItineraryItem{
		Type:            domain.ItemCheckOut,
		StartTime:       domain.FormatClock(start),
		EndTime:         domain.FormatClock(end),
		StartHour:       start,
		EndHour:         end,
		Title:           title,
		Description:     "Departure at " + domain.FormatClock(s.in.EndHour),
		Location:        copyLocation(home),
		DurationMinutes: int(math.Round((end - start) * 60)),
	})
	s.state.Clock = end
}

func (s *DayScheduler) lastItemEnd() float64 {
	if len(s.items) == 0 {
		return s.in.StartHour
	}
	return s.items[len(s.items)-1].EndHour
}

// returnLeg is the trip from loc back to the accommodation on the last day.
func (s *DayScheduler) returnLeg(loc *domain.Location) *TransportQuote {
	if !s.in.IsLastDay || s.in.Accommodation == nil {
		return nil
	}
	return s.quote(loc, s.in.Accommodation.Location)
}

// fill tries ranked candidates for sl until one commits. A miss leaves the clock untouched.
func (s *DayScheduler) fill(sl slot) bool {
	avail := int((s.end - s.state.Clock) * 60)
	if avail <= 0 {
		s.emit(Event{Kind: EventSlotMissed, Slot: sl.name})
		return false
	}
	eligible := s.p.validator.FilterCandidates(s.in.Catalog, s.state.Clock, avail, s.state.History, s.ctx.Used)
	pool := eligible[:0]
	for _, loc := range eligible {
		if loc.IsAccommodation() {
			continue
		}
		if containsString(sl.categories, s.p.rules.For(loc).Category) {
			pool = append(pool, loc)
		}
	}
	ranked := s.p.Rank(pool, ScoreInput{
		From:        s.currentPoint(),
		Remaining:   s.state.Remaining,
		Travelers:   s.in.Travelers,
		Preferences: s.in.Preferences,
		History:     s.state.History,
	})
	for _, loc := range ranked {
		if s.commit(loc, sl) {
			s.emit(Event{Kind: EventSlotCommitted, Slot: sl.name, LocationID: loc.ID})
			return true
		}
	}
	s.emit(Event{Kind: EventSlotMissed, Slot: sl.name})
	return false
}

// commit places loc at the current clock, preceded by a transport leg when needed.
func (s *DayScheduler) commit(loc *domain.Location, sl slot) bool {
	rule := s.p.rules.For(loc)
	leg := s.legTo(loc)
	arrive := s.state.Clock
	var legCost float64
	if leg != nil {
		arrive += float64(leg.DurationMinutes) / 60
		legCost = leg.Cost
	}

	if !s.p.validator.CanVisitAt(loc, arrive) || !s.p.validator.CategoryCooldownOK(rule.Category, arrive, s.state.History) {
		return false
	}
	avail := int((s.end - arrive) * 60)
	if back := s.returnLeg(loc); back != nil {
		avail -= back.DurationMinutes
	}
	if avail < rule.MinDuration {
		return false
	}

	dur := loc.SuggestedDuration
	if dur <= 0 {
		dur = rule.DefaultDuration
	}
	if sl.maxMinutes > 0 && dur > sl.maxMinutes {
		dur = sl.maxMinutes
	}
	dur = min(dur, avail)
	dur = max(dur, rule.MinDuration)

	n := float64(s.in.Travelers)
	cost := domain.Cost{Ticket: loc.Ticket * n, Food: loc.AvgPrice * n}
	if cost.Total()+legCost > s.state.Remaining {
		return false
	}

	if leg != nil {
		s.appendLeg(*leg, loc)
	}
	kind, title := domain.ItemActivity, "Visit "+loc.Name
	if rule.Category == CategoryFood {
		kind = domain.ItemFood
		if sl.title != "" {
			title = sl.title + " at " + loc.Name
		} else {
			title = "Eat at " + loc.Name
		}
	}
	start := s.state.Clock
	s.state.Clock = start + float64(dur)/60
	s.items = append(s.items, domain.ItineraryItem{
		Type:            kind,
		StartTime:       domain.FormatClock(start),
		EndTime:         domain.FormatClock(s.state.Clock),
		StartHour:       start,
		EndHour:         s.state.Clock,
		Title:           title,
		Description:     loc.Area,
		Location:        copyLocation(loc),
		Cost:            cost,
		DurationMinutes: dur,
	})
	s.state.Current = loc
	s.state.Remaining -= cost.Total()
	s.state.History.Record(rule.Category, start)
	s.ctx.Used.Add(loc.ID)
	return true
}

// legTo quotes travel from the current location to dest. Nil when no leg is needed.
func (s *DayScheduler) legTo(dest *domain.Location) *TransportQuote {
	return s.quote(s.state.Current, dest)
}

func (s *DayScheduler) quote(cur, dest *domain.Location) *TransportQuote {
	if dest == nil || cur == nil || cur.ID == dest.ID {
		return nil
	}
	d := Distance(cur.Location, dest.Location)
	if d <= walkThresholdKm {
		return nil
	}
	q := QuoteTransport(d, s.in.Transport, s.in.Travelers)
	return &q
}

// appendLeg emits a transport item and charges it.
func (s *DayScheduler) appendLeg(q TransportQuote, dest *domain.Location) {
	from := ""
	if s.state.Current != nil {
		from = s.state.Current.Name
	}
	start := s.state.Clock
	s.state.Clock += float64(q.DurationMinutes) / 60
	s.state.Remaining -= q.Cost
	s.items = append(s.items, domain.ItineraryItem{
		Type:            domain.ItemTransport,
		StartTime:       domain.FormatClock(start),
		EndTime:         domain.FormatClock(s.state.Clock),
		StartHour:       start,
		EndHour:         s.state.Clock,
		Title:           "Travel to " + dest.Name,
		Description:     q.Suggestion,
		Cost:            domain.Cost{Transport: q.Cost},
		DurationMinutes: q.DurationMinutes,
		Transport: &domain.TransportLeg{
			Mode:            q.Mode,
			Provider:        q.Provider,
			DistanceKm:      q.DistanceKm,
			DurationMinutes: q.DurationMinutes,
			Cost:            q.Cost,
			From:            from,
			To:              dest.Name,
			Suggestion:      q.Suggestion,
		},
	})
}

func (s *DayScheduler) currentPoint() domain.GeoPoint {
	if s.state.Current == nil {
		return domain.GeoPoint{}
	}
	return s.state.Current.Location
}

func (s *DayScheduler) emit(e Event) {
	e.Day = s.in.DayNumber
	e.Clock = s.state.Clock
	e.Remaining = s.state.Remaining
	s.p.observer.Observe(e)
}

func copyLocation(loc *domain.Location) *domain.Location {
	if loc == nil {
		return nil
	}
	c := *loc
	return &c
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
