package workflows

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/tripplanner/internal/core/domain"
)

// WorkflowIDPrefix prefixes the id of every generation run.
const WorkflowIDPrefix = "generate-itinerary-"

// Executor is the slice of client.Client used to start runs.
type Executor interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// Starter launches GenerateItineraryWorkflow runs on a task queue.
type Starter struct {
	client    Executor
	taskQueue string
	newID     func() string
}

// NewStarter creates a Starter. c is usually a client.Client.
func NewStarter(c Executor, taskQueue string) *Starter {
	return &Starter{client: c, taskQueue: taskQueue, newID: uuid.NewString}
}

// StartGenerate validates req, pre-assigns the itinerary id and starts a run.
// The itinerary becomes readable once the run has saved it.
func (s *Starter) StartGenerate(ctx context.Context, req domain.TripRequest) (string, string, error) {
	if err := req.Validate(); err != nil {
		return "", "", err
	}
	id := s.newID()
	opts := client.StartWorkflowOptions{
		ID:        WorkflowIDPrefix + id,
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, GenerateItineraryWorkflow, GenerateInput{ItineraryID: id, Request: req})
	if err != nil {
		return "", "", fmt.Errorf("start workflow: %w", err)
	}
	workflowID := opts.ID
	if run != nil {
		workflowID = run.GetID()
	}
	return id, workflowID, nil
}
