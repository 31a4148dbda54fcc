package ports

import (
	"context"

	"github.com/samirrijal/tripplanner/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishItineraryGenerated(ctx context.Context, it *domain.Itinerary) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// LocationCatalog is the read side of the catalog used when planning.
type LocationCatalog interface {
	List(ctx context.Context, filter domain.LocationFilter) ([]domain.Location, error)
	GetByID(ctx context.Context, id string) (*domain.Location, error)
}
