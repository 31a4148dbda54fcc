package telemetry

// InstrumentationName identifies spans created by this service.
const InstrumentationName = "github.com/samirrijal/tripplanner"

// Span names.
const (
	SpanCatalogFetch      = "catalog.fetch"
	SpanCatalogIngest     = "catalog.ingest"
	SpanItineraryGenerate = "itinerary.generate"
	SpanItineraryGet      = "itinerary.get"
	SpanBudgetPreview     = "budget.preview"
)

// Span attribute keys.
const (
	AttrTravelers    = "trip.travelers"
	AttrDays         = "trip.days"
	AttrBudget       = "trip.budget_vnd"
	AttrTransport    = "trip.transport"
	AttrTier         = "trip.accommodation_tier"
	AttrItineraryID  = "itinerary.id"
	AttrBudgetStatus = "itinerary.budget_status"
	AttrCatalogSize  = "catalog.size"
	AttrCacheHit     = "cache.hit"
)
