package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/tripplanner/internal/adapters/http"
)

// findOpenAPISpec walks up from the package directory to api/openapi.yaml.
func findOpenAPISpec(t *testing.T) string {
	t.Helper()
	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	t.Fatalf("could not find api/openapi.yaml")
	return ""
}

func TestLoadAPIDoc(t *testing.T) {
	doc, raw, err := handler.LoadAPIDoc(context.Background(), findOpenAPISpec(t))
	if err != nil {
		t.Fatalf("OpenAPI document invalid: %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("expected raw document bytes")
	}
	if doc.Info.Title != "Da Nang Trip Planner API" {
		t.Errorf("expected title 'Da Nang Trip Planner API', got %q", doc.Info.Title)
	}
	if doc.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", doc.Info.Version)
	}
	if len(doc.Servers) == 0 {
		t.Error("expected at least one server")
	}

	for _, schema := range []string{
		"Location", "TripRequest", "Itinerary", "Day", "ItineraryItem",
		"BudgetBreakdown", "BudgetPreview", "TransportQuote", "APIError", "Pagination",
	} {
		if doc.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}
}

func TestLoadAPIDoc_Missing(t *testing.T) {
	if _, _, err := handler.LoadAPIDoc(context.Background(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing document")
	}
}

var pathParam = regexp.MustCompile(`\{([^}]+)\}`)

// Every documented path must be served by the router with the documented methods.
func TestAPIDoc_MatchesRoutes(t *testing.T) {
	specPath := findOpenAPISpec(t)
	doc, _, err := handler.LoadAPIDoc(context.Background(), specPath)
	if err != nil {
		t.Fatal(err)
	}

	deps := makeDeps()
	deps.OpenAPIPath = specPath
	app := setupApp(deps)

	routed := map[string]bool{}
	for _, r := range app.GetRoutes(true) {
		routed[r.Method+" "+r.Path] = true
	}

	for path, item := range doc.Paths.Map() {
		fiberPath := pathParam.ReplaceAllString(path, ":$1")
		for method := range item.Operations() {
			if !routed[method+" "+fiberPath] {
				t.Errorf("documented %s %s is not routed", method, path)
			}
		}
	}
}

func TestDocsEndpoints(t *testing.T) {
	deps := makeDeps()
	deps.OpenAPIPath = findOpenAPISpec(t)
	app := setupApp(deps)

	resp, err := app.Test(httptest.NewRequest("GET", "/docs/openapi.json", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		OpenAPI string                     `json:"openapi"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.OpenAPI == "" || body.Paths["/v1/itineraries"] == nil {
		t.Errorf("unexpected document: openapi=%q paths=%d", body.OpenAPI, len(body.Paths))
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/docs/openapi.yaml", nil), -1)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200 for yaml, got %d", resp.StatusCode)
	}
	resp, _ = app.Test(httptest.NewRequest("GET", "/docs", nil), -1)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200 for ui, got %d", resp.StatusCode)
	}
}

func TestDocsEndpoints_MissingDocument(t *testing.T) {
	deps := makeDeps()
	deps.OpenAPIPath = filepath.Join(t.TempDir(), "missing.yaml")
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/docs/openapi.json", nil), -1)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}
