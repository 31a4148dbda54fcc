package workflows_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/tripplanner/internal/core/domain"
	"github.com/samirrijal/tripplanner/internal/workflows"
)

type fakeItineraries struct {
	mu      sync.Mutex
	calls   map[string]int
	deleted []string

	planFn    func(ctx context.Context, req domain.TripRequest) (*domain.Itinerary, error)
	saveFn    func(ctx context.Context, it *domain.Itinerary) error
	publishFn func(ctx context.Context, it *domain.Itinerary) error
}

func (f *fakeItineraries) record(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
	return f.calls[name]
}

func (f *fakeItineraries) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeItineraries) Plan(ctx context.Context, req domain.TripRequest) (*domain.Itinerary, error) {
	f.record("plan")
	if f.planFn != nil {
		return f.planFn(ctx, req)
	}
	return &domain.Itinerary{
		ID:           "planner-id",
		Request:      req,
		TotalCost:    2_400_000,
		BudgetStatus: domain.BudgetWithin,
		Days:         make([]domain.Day, 3),
	}, nil
}

func (f *fakeItineraries) Save(ctx context.Context, it *domain.Itinerary) error {
	f.record("save")
	if f.saveFn != nil {
		return f.saveFn(ctx, it)
	}
	return nil
}

func (f *fakeItineraries) Publish(ctx context.Context, it *domain.Itinerary) error {
	f.record("publish")
	if f.publishFn != nil {
		return f.publishFn(ctx, it)
	}
	return nil
}

func (f *fakeItineraries) Delete(ctx context.Context, id string) error {
	f.record("delete")
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	return nil
}

func tripRequest() domain.TripRequest {
	arrival := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return domain.TripRequest{
		Budget:    4_000_000,
		Travelers: 2,
		Arrival:   arrival,
		Departure: arrival.Add(58 * time.Hour),
		Transport: domain.TransportMotorbike,
	}
}

func runWorkflow(t *testing.T, fake *fakeItineraries, input workflows.GenerateInput) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(workflows.GenerateItineraryWorkflow)
	env.RegisterActivity(&workflows.GenerateActivities{Itineraries: fake})
	env.ExecuteWorkflow(workflows.GenerateItineraryWorkflow, input)
	if !env.IsWorkflowCompleted() {
		t.Fatal("expected workflow to complete")
	}
	return env
}

func TestGenerateItineraryWorkflow_Success(t *testing.T) {
	var savedID string
	fake := &fakeItineraries{
		saveFn: func(ctx context.Context, it *domain.Itinerary) error {
			savedID = it.ID
			return nil
		},
	}
	env := runWorkflow(t, fake, workflows.GenerateInput{ItineraryID: "pre-assigned", Request: tripRequest()})

	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res workflows.GenerateResult
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.ItineraryID != "pre-assigned" {
		t.Errorf("expected itinerary id pre-assigned, got %s", res.ItineraryID)
	}
	if savedID != "pre-assigned" {
		t.Errorf("expected saved id pre-assigned, got %s", savedID)
	}
	if res.Days != 3 || res.BudgetStatus != domain.BudgetWithin {
		t.Errorf("unexpected result: %+v", res)
	}
	if fake.count("publish") != 1 || fake.count("delete") != 0 {
		t.Errorf("expected 1 publish and no delete, got %v", fake.calls)
	}
}

func TestGenerateItineraryWorkflow_KeepsPlannerIDWithoutInputID(t *testing.T) {
	env := runWorkflow(t, &fakeItineraries{}, workflows.GenerateInput{Request: tripRequest()})
	var res workflows.GenerateResult
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ItineraryID != "planner-id" {
		t.Errorf("expected planner-id, got %s", res.ItineraryID)
	}
}

func TestGenerateItineraryWorkflow_InfeasibleIsNotRetried(t *testing.T) {
	fake := &fakeItineraries{
		planFn: func(ctx context.Context, req domain.TripRequest) (*domain.Itinerary, error) {
			return nil, &domain.InfeasibleTripError{PerPersonDaily: 50_000, Required: 210_000}
		},
	}
	env := runWorkflow(t, fake, workflows.GenerateInput{ItineraryID: "x", Request: tripRequest()})

	err := env.GetWorkflowError()
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected ApplicationError, got %T: %v", err, err)
	}
	if appErr.Type() != workflows.ErrTypeInfeasible {
		t.Errorf("expected type %s, got %s", workflows.ErrTypeInfeasible, appErr.Type())
	}
	if n := fake.count("plan"); n != 1 {
		t.Errorf("expected 1 plan attempt, got %d", n)
	}
	if fake.count("save") != 0 {
		t.Error("expected nothing saved")
	}
}

func TestGenerateItineraryWorkflow_RetriesTransientSave(t *testing.T) {
	fake := &fakeItineraries{}
	fake.saveFn = func(ctx context.Context, it *domain.Itinerary) error {
		if fake.count("save") == 1 {
			return errors.New("connection reset")
		}
		return nil
	}
	env := runWorkflow(t, fake, workflows.GenerateInput{ItineraryID: "retry", Request: tripRequest()})

	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := fake.count("save"); n != 2 {
		t.Errorf("expected 2 save attempts, got %d", n)
	}
}

func TestGenerateItineraryWorkflow_PublishFailureCompensates(t *testing.T) {
	fake := &fakeItineraries{
		publishFn: func(ctx context.Context, it *domain.Itinerary) error {
			return errors.New("nats: no responders")
		},
	}
	env := runWorkflow(t, fake, workflows.GenerateInput{ItineraryID: "saga", Request: tripRequest()})

	if env.GetWorkflowError() == nil {
		t.Fatal("expected error")
	}
	if n := fake.count("publish"); n != 3 {
		t.Errorf("expected 3 publish attempts, got %d", n)
	}
	if len(fake.deleted) != 1 || fake.deleted[0] != "saga" {
		t.Errorf("expected saga itinerary deleted, got %v", fake.deleted)
	}
}

type fakeExecutor struct {
	opts  client.StartWorkflowOptions
	args  []interface{}
	err   error
	calls int
}

func (f *fakeExecutor) ExecuteWorkflow(ctx context.Context, opts client.StartWorkflowOptions, wf interface{}, args ...interface{}) (client.WorkflowRun, error) {
	f.calls++
	f.opts = opts
	f.args = args
	return nil, f.err
}

func TestStarter_StartGenerate(t *testing.T) {
	exec := &fakeExecutor{}
	s := workflows.NewStarter(exec, "itineraries")

	id, wfID, err := s.StartGenerate(context.Background(), tripRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected an itinerary id")
	}
	if wfID != workflows.WorkflowIDPrefix+id {
		t.Errorf("expected workflow id %s, got %s", workflows.WorkflowIDPrefix+id, wfID)
	}
	if exec.opts.TaskQueue != "itineraries" {
		t.Errorf("expected task queue itineraries, got %s", exec.opts.TaskQueue)
	}
	input, ok := exec.args[0].(workflows.GenerateInput)
	if !ok {
		t.Fatalf("expected GenerateInput, got %T", exec.args[0])
	}
	if input.ItineraryID != id {
		t.Errorf("expected input id %s, got %s", id, input.ItineraryID)
	}
}

func TestStarter_StartGenerate_Errors(t *testing.T) {
	exec := &fakeExecutor{}
	s := workflows.NewStarter(exec, "itineraries")

	bad := tripRequest()
	bad.Travelers = 0
	if _, _, err := s.StartGenerate(context.Background(), bad); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
	if exec.calls != 0 {
		t.Errorf("expected no workflow start for invalid request, got %d", exec.calls)
	}

	exec.err = errors.New("temporal unavailable")
	if _, _, err := s.StartGenerate(context.Background(), tripRequest()); err == nil {
		t.Error("expected error when temporal is unavailable")
	}
}
