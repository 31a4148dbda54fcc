package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/tripplanner/internal/core/domain"
)

// Application error types that are never retried.
const (
	ErrTypeInvalidRequest  = "InvalidRequest"
	ErrTypeInfeasible      = "InfeasibleTrip"
	ErrTypeNoAccommodation = "NoAccommodation"
)

// Itineraries is the part of the itinerary service the activities drive.
type Itineraries interface {
	Plan(ctx context.Context, req domain.TripRequest) (*domain.Itinerary, error)
	Save(ctx context.Context, it *domain.Itinerary) error
	Publish(ctx context.Context, it *domain.Itinerary) error
	Delete(ctx context.Context, id string) error
}

// GenerateActivities holds the activity implementations for GenerateItineraryWorkflow.
type GenerateActivities struct {
	Itineraries Itineraries
	Logger      *slog.Logger
}

func (a *GenerateActivities) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// PlanItinerary builds the itinerary and stamps it with the pre-assigned id.
func (a *GenerateActivities) PlanItinerary(ctx context.Context, input GenerateInput) (*domain.Itinerary, error) {
	it, err := a.Itineraries.Plan(ctx, input.Request)
	if err != nil {
		return nil, classify(err)
	}
	if input.ItineraryID != "" {
		it.ID = input.ItineraryID
	}
	return it, nil
}

// SaveItinerary persists the planned itinerary.
func (a *GenerateActivities) SaveItinerary(ctx context.Context, it *domain.Itinerary) error {
	return a.Itineraries.Save(ctx, it)
}

// PublishItinerary announces the stored itinerary.
func (a *GenerateActivities) PublishItinerary(ctx context.Context, it *domain.Itinerary) error {
	return a.Itineraries.Publish(ctx, it)
}

// DeleteItinerary removes a stored itinerary (saga compensation).
func (a *GenerateActivities) DeleteItinerary(ctx context.Context, id string) error {
	if err := a.Itineraries.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete itinerary %s: %w", id, err)
	}
	a.logger().Info("itinerary deleted (saga compensation)", "itinerary_id", id)
	return nil
}

// classify turns planning failures that will not change on retry into
// non-retryable application errors.
func classify(err error) error {
	var infeasible *domain.InfeasibleTripError
	switch {
	case errors.As(err, &infeasible):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInfeasible, err, infeasible.PerPersonDaily, infeasible.Required)
	case errors.Is(err, domain.ErrInvalidRequest):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidRequest, err)
	case errors.Is(err, domain.ErrNoAccommodation):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNoAccommodation, err)
	}
	return err
}
