package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/tripplanner/internal/core/domain"
	"github.com/samirrijal/tripplanner/internal/core/planner"
	"github.com/samirrijal/tripplanner/internal/core/ports"
	"github.com/samirrijal/tripplanner/internal/pkg/metrics"
	"github.com/samirrijal/tripplanner/internal/pkg/telemetry"
)

// ItineraryService generates, stores and publishes itineraries.
type ItineraryService struct {
	catalog     ports.LocationCatalog
	itineraries ports.ItineraryRepository
	publisher   ports.EventPublisher
	cache       ports.CacheService
	planner     *planner.Planner
	ttl         int

	now   func() time.Time
	newID func() string
}

// NewItineraryService creates a new ItineraryService. publisher and cache may be nil.
func NewItineraryService(
	catalog ports.LocationCatalog,
	itineraries ports.ItineraryRepository,
	publisher ports.EventPublisher,
	cache ports.CacheService,
	p *planner.Planner,
	cacheTTL int,
) *ItineraryService {
	return &ItineraryService{
		catalog:     catalog,
		itineraries: itineraries,
		publisher:   publisher,
		cache:       cache,
		planner:     p,
		ttl:         cacheTTL,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Generate plans, persists and announces an itinerary.
func (s *ItineraryService) Generate(ctx context.Context, req domain.TripRequest) (*domain.Itinerary, error) {
	start := time.Now()
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanItineraryGenerate, trace.WithAttributes(
		attribute.Int(telemetry.AttrTravelers, req.Travelers),
		attribute.Float64(telemetry.AttrBudget, req.Budget),
		attribute.String(telemetry.AttrTransport, string(req.Transport)),
		attribute.String(telemetry.AttrTier, string(req.Accommodation)),
	))
	defer span.End()

	it, err := s.Plan(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.Save(ctx, it); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.Publish(ctx, it); err != nil {
		// The itinerary is stored; subscribers can catch up from Get.
		slog.WarnContext(ctx, "publish itinerary failed", "itinerary_id", it.ID, "error", err)
	}

	span.SetAttributes(
		attribute.String(telemetry.AttrItineraryID, it.ID),
		attribute.String(telemetry.AttrBudgetStatus, string(it.BudgetStatus)),
		attribute.Int(telemetry.AttrDays, len(it.Days)),
	)
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	return it, nil
}

// Plan loads the catalog and builds an itinerary with a fresh id. Nothing is stored.
func (s *ItineraryService) Plan(ctx context.Context, req domain.TripRequest) (*domain.Itinerary, error) {
	req.Preferences = normalizePreferences(req.Preferences)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	catalog, err := s.catalog.List(ctx, domain.LocationFilter{})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	it, err := s.planner.Plan(req, catalog)
	if err != nil {
		var infeasible *domain.InfeasibleTripError
		if errors.As(err, &infeasible) {
			metrics.InfeasibleTrips.WithLabelValues(string(req.Transport)).Inc()
		}
		return nil, err
	}

	it.ID = s.newID()
	it.CreatedAt = s.now().UTC()
	metrics.ItinerariesGenerated.WithLabelValues(string(it.BudgetStatus)).Inc()
	return it, nil
}

// Save persists it and primes the cache.
func (s *ItineraryService) Save(ctx context.Context, it *domain.Itinerary) error {
	if err := s.itineraries.Save(ctx, it); err != nil {
		return fmt.Errorf("save itinerary: %w", err)
	}
	s.cacheItinerary(ctx, it)
	return nil
}

// Publish announces a stored itinerary. A nil publisher is a no-op.
func (s *ItineraryService) Publish(ctx context.Context, it *domain.Itinerary) error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishItineraryGenerated(ctx, it); err != nil {
		return fmt.Errorf("publish itinerary: %w", err)
	}
	return nil
}

// Delete removes a stored itinerary and its cache entry.
func (s *ItineraryService) Delete(ctx context.Context, id string) error {
	if err := s.itineraries.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete itinerary: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, itineraryCacheKey(id))
	}
	return nil
}

// Get returns a stored itinerary.
func (s *ItineraryService) Get(ctx context.Context, id string) (*domain.Itinerary, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanItineraryGet,
		trace.WithAttributes(attribute.String(telemetry.AttrItineraryID, id)))
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("itinerary %q: %w", id, domain.ErrNotFound)
	}
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, itineraryCacheKey(id)); err == nil {
			var it domain.Itinerary
			if err := json.Unmarshal(data, &it); err == nil {
				metrics.CacheHits.WithLabelValues("itinerary").Inc()
				return &it, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("itinerary").Inc()
	}

	it, err := s.itineraries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheItinerary(ctx, it)
	return it, nil
}

// PreviewBudget returns the budget split, lodging and feasibility without scheduling.
func (s *ItineraryService) PreviewBudget(ctx context.Context, req domain.TripRequest) (planner.BudgetPreview, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanBudgetPreview)
	defer span.End()

	if err := req.Validate(); err != nil {
		return planner.BudgetPreview{}, err
	}
	var lodging []domain.Location
	if req.Accommodation != domain.TierFree {
		all, err := s.catalog.List(ctx, domain.LocationFilter{})
		if err != nil {
			return planner.BudgetPreview{}, fmt.Errorf("load catalog: %w", err)
		}
		lodging = planner.Lodging(all)
	}
	return s.planner.PreviewBudget(req, lodging)
}

// AllocateBudget splits total across categories for tier.
func (s *ItineraryService) AllocateBudget(total float64, tier domain.AccommodationTier) (domain.BudgetBreakdown, error) {
	if total <= 0 {
		return domain.BudgetBreakdown{}, fmt.Errorf("%w: budget must be positive", domain.ErrInvalidRequest)
	}
	if !tier.Valid() {
		return domain.BudgetBreakdown{}, fmt.Errorf("%w: unknown accommodation tier %q", domain.ErrInvalidRequest, tier)
	}
	return s.planner.Bands().Allocate(total, tier, s.planner.Config().CurrencyStep), nil
}

func (s *ItineraryService) cacheItinerary(ctx context.Context, it *domain.Itinerary) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	if data, err := json.Marshal(it); err == nil {
		_ = s.cache.Set(ctx, itineraryCacheKey(it.ID), data, s.ttl)
	}
}

func itineraryCacheKey(id string) string {
	return "itineraries:id:" + id
}

// normalizePreferences lowercases, trims and de-duplicates preference tags.
func normalizePreferences(prefs []string) []string {
	if len(prefs) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(prefs))
	out := make([]string, 0, len(prefs))
	for _, p := range prefs {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
