package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/tripplanner/internal/adapters/postgres"
	"github.com/samirrijal/tripplanner/internal/adapters/valkey"
	"github.com/samirrijal/tripplanner/internal/core/domain"
	"github.com/samirrijal/tripplanner/internal/core/usecases"
)

// ItineraryWorkflows starts durable itinerary generation. The returned id is the
// itinerary id the workflow will store under.
type ItineraryWorkflows interface {
	StartGenerate(ctx context.Context, req domain.TripRequest) (itineraryID, workflowID string, err error)
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Locations   *usecases.LocationService
	Itineraries *usecases.ItineraryService
	Workflows   ItineraryWorkflows // nil disables async generation
	NATS        *nats.Conn
	DB          *postgres.DB
	Cache       *valkey.Cache
	OpenAPIPath string
}
