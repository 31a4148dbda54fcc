package ports

import (
	"context"

	"github.com/samirrijal/tripplanner/internal/core/domain"
)

// LocationRepository persists the location catalog.
type LocationRepository interface {
	Upsert(ctx context.Context, loc *domain.Location) error
	UpsertBatch(ctx context.Context, locs []domain.Location) error
	GetByID(ctx context.Context, id string) (*domain.Location, error)
	// List returns every location matching filter, ordered by id.
	List(ctx context.Context, filter domain.LocationFilter) ([]domain.Location, error)
}

// ItineraryRepository persists generated itineraries.
type ItineraryRepository interface {
	Save(ctx context.Context, it *domain.Itinerary) error
	GetByID(ctx context.Context, id string) (*domain.Itinerary, error)
	Delete(ctx context.Context, id string) error
}
