package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/tripplanner/internal/core/domain"
)

// Activity names registered by the worker.
const (
	ActivityPlan    = "PlanItinerary"
	ActivitySave    = "SaveItinerary"
	ActivityPublish = "PublishItinerary"
	ActivityDelete  = "DeleteItinerary"
)

// GenerateInput is the input of GenerateItineraryWorkflow.
type GenerateInput struct {
	ItineraryID string
	Request     domain.TripRequest
}

// GenerateResult is what the workflow returns on success.
type GenerateResult struct {
	ItineraryID  string
	TotalCost    float64
	BudgetStatus domain.BudgetStatus
	Days         int
}

// GenerateItineraryWorkflow plans, stores and announces an itinerary. If the
// announcement fails the stored itinerary is deleted again (saga compensation).
func GenerateItineraryWorkflow(ctx workflow.Context, input GenerateInput) (GenerateResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting itinerary generation", "itineraryID", input.ItineraryID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
			NonRetryableErrorTypes: []string{
				ErrTypeInvalidRequest, ErrTypeInfeasible, ErrTypeNoAccommodation,
			},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: plan against the current catalog
	var it domain.Itinerary
	if err := workflow.ExecuteActivity(ctx, ActivityPlan, input).Get(ctx, &it); err != nil {
		return GenerateResult{}, err
	}

	// Step 2: persist
	if err := workflow.ExecuteActivity(ctx, ActivitySave, &it).Get(ctx, nil); err != nil {
		return GenerateResult{}, err
	}

	// Step 3: announce
	if err := workflow.ExecuteActivity(ctx, ActivityPublish, &it).Get(ctx, nil); err != nil {
		logger.Warn("publish failed, compensating", "error", err)
		if derr := workflow.ExecuteActivity(ctx, ActivityDelete, it.ID).Get(ctx, nil); derr != nil {
			logger.Error("compensation failed", "itineraryID", it.ID, "error", derr)
		}
		return GenerateResult{}, err
	}

	logger.Info("Itinerary generated", "itineraryID", it.ID, "status", it.BudgetStatus)
	return GenerateResult{
		ItineraryID:  it.ID,
		TotalCost:    it.TotalCost,
		BudgetStatus: it.BudgetStatus,
		Days:         len(it.Days),
	}, nil
}
