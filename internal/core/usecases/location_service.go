package usecases

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/tripplanner/internal/core/domain"
	"github.com/samirrijal/tripplanner/internal/core/planner"
	"github.com/samirrijal/tripplanner/internal/core/ports"
	"github.com/samirrijal/tripplanner/internal/pkg/metrics"
	"github.com/samirrijal/tripplanner/internal/pkg/telemetry"
)

const (
	catalogAllKey = "locations:list:all"
	// catalogGenKey holds the generation baked into filtered list keys. Ingest
	// rotates it so every filtered snapshot goes stale at once.
	catalogGenKey = "locations:list:gen"
)

// LocationOptions tunes the catalog read path.
type LocationOptions struct {
	CacheTTL        int // seconds
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// LocationService serves the location catalog: cached reads behind a circuit breaker.
type LocationService struct {
	locations ports.LocationRepository
	cache     ports.CacheService
	breaker   *gobreaker.CircuitBreaker
	ttl       int
}

// NewLocationService creates a new LocationService.
func NewLocationService(locations ports.LocationRepository, cache ports.CacheService, opts LocationOptions) *LocationService {
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	failures := opts.BreakerFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "location-catalog",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CatalogBreakerState.Set(float64(to))
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &LocationService{locations: locations, cache: cache, breaker: cb, ttl: opts.CacheTTL}
}

// List returns the catalog snapshot matching filter.
func (s *LocationService) List(ctx context.Context, filter domain.LocationFilter) ([]domain.Location, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanCatalogFetch)
	defer span.End()

	cacheKey := catalogAllKey
	if !unfiltered(filter) {
		cacheKey = listCacheKey(s.generation(ctx), filter)
	}
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var locs []domain.Location
			if err := json.Unmarshal(data, &locs); err == nil {
				metrics.CacheHits.WithLabelValues("locations").Inc()
				span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true), attribute.Int(telemetry.AttrCatalogSize, len(locs)))
				return locs, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("locations").Inc()
	}

	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.locations.List(ctx, filter)
	})
	if err != nil {
		return nil, breakerError("list locations", err)
	}
	locs, _ := res.([]domain.Location)
	span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, false), attribute.Int(telemetry.AttrCatalogSize, len(locs)))
	if cacheKey == catalogAllKey {
		metrics.CatalogSize.Set(float64(len(locs)))
	}

	if s.cache != nil && s.ttl > 0 {
		if data, err := json.Marshal(locs); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.ttl)
		}
	}

	return locs, nil
}

// GetByID returns a single location.
func (s *LocationService) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: location id is required", domain.ErrInvalidRequest)
	}
	cacheKey := "locations:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var loc domain.Location
			if err := json.Unmarshal(data, &loc); err == nil {
				return &loc, nil
			}
		}
	}

	// A missing row is a successful lookup as far as the breaker is concerned.
	res, err := s.breaker.Execute(func() (interface{}, error) {
		loc, err := s.locations.GetByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return (*domain.Location)(nil), nil
		}
		return loc, err
	})
	if err != nil {
		return nil, breakerError("get location", err)
	}
	loc, _ := res.(*domain.Location)
	if loc == nil {
		return nil, fmt.Errorf("location %s: %w", id, domain.ErrNotFound)
	}

	if s.cache != nil && s.ttl > 0 {
		if data, err := json.Marshal(loc); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.ttl)
		}
	}
	return loc, nil
}

// Ingest upserts normalized locations, drops the cached full snapshot and
// rotates the filtered-list generation.
func (s *LocationService) Ingest(ctx context.Context, locs []domain.Location) error {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanCatalogIngest,
		trace.WithAttributes(attribute.Int(telemetry.AttrCatalogSize, len(locs))))
	defer span.End()

	if len(locs) == 0 {
		return nil
	}
	if err := s.locations.UpsertBatch(ctx, locs); err != nil {
		span.RecordError(err)
		return fmt.Errorf("upsert locations: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, catalogGenKey, []byte(uuid.NewString()), 0); err != nil {
			slog.Warn("rotate catalog generation", "error", err)
		}
		_ = s.cache.Delete(ctx, catalogAllKey)
		for _, l := range locs {
			_ = s.cache.Delete(ctx, "locations:id:"+l.ID)
		}
	}
	return nil
}

// QuoteBetween prices a leg between two catalog locations.
func (s *LocationService) QuoteBetween(ctx context.Context, fromID, toID string, mode domain.TransportMode, people int) (planner.TransportQuote, error) {
	if !mode.Valid() {
		return planner.TransportQuote{}, fmt.Errorf("%w: unknown transport mode %q", domain.ErrInvalidRequest, mode)
	}
	from, err := s.GetByID(ctx, fromID)
	if err != nil {
		return planner.TransportQuote{}, err
	}
	to, err := s.GetByID(ctx, toID)
	if err != nil {
		return planner.TransportQuote{}, err
	}
	return planner.QuoteTransport(planner.Distance(from.Location, to.Location), mode, people), nil
}

func breakerError(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w", op, domain.ErrCatalogUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// generation returns the current filtered-list generation, "0" before the first ingest.
func (s *LocationService) generation(ctx context.Context) string {
	if s.cache == nil {
		return "0"
	}
	data, err := s.cache.Get(ctx, catalogGenKey)
	if err != nil || len(data) == 0 {
		return "0"
	}
	return string(data)
}

func unfiltered(f domain.LocationFilter) bool {
	return len(f.Types) == 0 && len(f.VisitTypes) == 0 && f.Indoor == nil && f.Search == ""
}

// listCacheKey is stable for equivalent filters within a generation.
func listCacheKey(gen string, f domain.LocationFilter) string {
	types := append([]string(nil), f.Types...)
	visitTypes := append([]string(nil), f.VisitTypes...)
	sort.Strings(types)
	sort.Strings(visitTypes)
	indoor := "any"
	if f.Indoor != nil {
		indoor = fmt.Sprint(*f.Indoor)
	}
	raw := strings.Join([]string{
		strings.ToLower(strings.Join(types, ",")),
		strings.ToLower(strings.Join(visitTypes, ",")),
		indoor,
		strings.ToLower(f.Search),
	}, "|")
	sum := sha1.Sum([]byte(raw))
	return "locations:list:" + gen + ":" + hex.EncodeToString(sum[:8])
}
