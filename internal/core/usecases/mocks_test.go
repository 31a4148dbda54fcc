package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/tripplanner/internal/core/domain"
)

// --- Mock LocationRepository ---

type mockLocationRepo struct {
	listFn        func(ctx context.Context, filter domain.LocationFilter) ([]domain.Location, error)
	getByIDFn     func(ctx context.Context, id string) (*domain.Location, error)
	upsertBatchFn func(ctx context.Context, locs []domain.Location) error
}

func (m *mockLocationRepo) Upsert(ctx context.Context, loc *domain.Location) error {
	return m.UpsertBatch(ctx, []domain.Location{*loc})
}

func (m *mockLocationRepo) UpsertBatch(ctx context.Context, locs []domain.Location) error {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, locs)
	}
	return nil
}

func (m *mockLocationRepo) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockLocationRepo) List(ctx context.Context, filter domain.LocationFilter) ([]domain.Location, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

// --- Mock ItineraryRepository ---

type mockItineraryRepo struct {
	saveFn    func(ctx context.Context, it *domain.Itinerary) error
	getByIDFn func(ctx context.Context, id string) (*domain.Itinerary, error)
	deleteFn  func(ctx context.Context, id string) error
}

func (m *mockItineraryRepo) Save(ctx context.Context, it *domain.Itinerary) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, it)
	}
	return nil
}

func (m *mockItineraryRepo) GetByID(ctx context.Context, id string) (*domain.Itinerary, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockItineraryRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	publishFn func(ctx context.Context, it *domain.Itinerary) error
}

func (m *mockPublisher) PublishItineraryGenerated(ctx context.Context, it *domain.Itinerary) error {
	if m.publishFn != nil {
		return m.publishFn(ctx, it)
	}
	return nil
}

// --- In-memory CacheService ---

var errCacheMiss = errors.New("cache miss")

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- Fixtures ---

func testCatalog() []domain.Location {
	mk := func(id, name, typ, visitType string, lat, lon, ticket, avg float64) domain.Location {
		return domain.Location{
			ID: id, Name: name, Type: typ, VisitType: visitType,
			Location: domain.GeoPoint{Lat: lat, Lon: lon},
			Ticket:   ticket, AvgPrice: avg,
		}
	}
	return []domain.Location{
		mk("ht-sala", "Sala Hotel", "hotel", "hotel", 16.0680, 108.2450, 0, 600_000),
		mk("gh-an-thuong", "An Thuong Guesthouse", "hotel", "guesthouse", 16.0490, 108.2460, 0, 250_000),
		mk("bf-mi-quang", "Mi Quang 1A", "restaurant", "street-food", 16.0700, 108.2170, 0, 40_000),
		mk("rs-banh-xeo", "Ba Duong Banh Xeo", "restaurant", "restaurant-cheap", 16.0660, 108.2150, 0, 60_000),
		mk("rs-be-man", "Be Man Seafood", "restaurant", "seafood", 16.0610, 108.2470, 0, 300_000),
		mk("at-cham", "Cham Museum", "attraction", "museum", 16.0606, 108.2233, 60_000, 0),
		mk("at-linh-ung", "Linh Ung Pagoda", "attraction", "pagoda", 16.1003, 108.2778, 0, 0),
		mk("bc-my-khe", "My Khe Beach", "beach", "beach", 16.0544, 108.2480, 0, 0),
		mk("mk-han", "Han Market", "market", "market", 16.0685, 108.2241, 0, 50_000),
		mk("cf-cong", "Cong Caphe", "cafe", "cafe", 16.0690, 108.2230, 0, 50_000),
		mk("nt-dragon", "Dragon Bridge", "attraction", "night-attraction", 16.0611, 108.2278, 0, 0),
	}
}
