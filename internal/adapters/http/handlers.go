package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/tripplanner/internal/core/domain"
	"github.com/samirrijal/tripplanner/internal/core/planner"
)

// danang is the zone used for request times without an explicit offset.
var danang = loadZone("Asia/Ho_Chi_Minh", 7*3600)

func loadZone(name string, offset int) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.FixedZone("ICT", offset)
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseTripTime accepts RFC 3339 or a local Da Nang wall-clock time.
func parseTripTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, danang); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// tripRequestBody is the JSON body for itinerary generation and budget preview.
type tripRequestBody struct {
	Budget        float64  `json:"budget"`
	Travelers     int      `json:"travelers"`
	Arrival       string   `json:"arrival"`
	Departure     string   `json:"departure"`
	Transport     string   `json:"transport"`
	Accommodation string   `json:"accommodation"`
	Preferences   []string `json:"preferences"`
}

func (b tripRequestBody) toDomain() (domain.TripRequest, string) {
	arrival, ok := parseTripTime(b.Arrival)
	if !ok {
		return domain.TripRequest{}, "arrival must be an RFC 3339 or YYYY-MM-DDTHH:MM time"
	}
	departure, ok := parseTripTime(b.Departure)
	if !ok {
		return domain.TripRequest{}, "departure must be an RFC 3339 or YYYY-MM-DDTHH:MM time"
	}
	return domain.TripRequest{
		Budget:        b.Budget,
		Travelers:     b.Travelers,
		Arrival:       arrival,
		Departure:     departure,
		Transport:     domain.TransportMode(strings.ToLower(b.Transport)),
		Accommodation: domain.AccommodationTier(strings.ToLower(b.Accommodation)),
		Preferences:   b.Preferences,
	}, ""
}

// parseTripBody decodes the body; a non-empty message means a 400.
func parseTripBody(c *fiber.Ctx) (domain.TripRequest, string) {
	var body tripRequestBody
	if err := c.BodyParser(&body); err != nil {
		return domain.TripRequest{}, "invalid request body"
	}
	return body.toDomain()
}

// splitList turns "a,b, c" into ["a","b","c"].
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// locationFilterFromQuery reads type, visit_type, indoor and q.
func locationFilterFromQuery(c *fiber.Ctx) (domain.LocationFilter, bool) {
	f := domain.LocationFilter{
		Types:      splitList(c.Query("type")),
		VisitTypes: splitList(c.Query("visit_type")),
		Search:     c.Query("q"),
	}
	if raw := c.Query("indoor"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, false
		}
		f.Indoor = &v
	}
	return f, true
}

// ListLocationsHandler returns the filtered catalog, paginated.
func ListLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, ok := locationFilterFromQuery(c)
		if !ok {
			return errBadRequest(c, "indoor must be true or false")
		}
		if len(filter.Search) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}

		locs, err := deps.Locations.List(c.UserContext(), filter)
		if err != nil {
			return errFromDomain(c, err)
		}

		offset, limit := pageParams(c, 50, 200)
		start, end := pageBounds(offset, limit, len(locs))
		pg := Pagination{Offset: offset, Limit: limit, Total: len(locs)}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: locs[start:end], Pagination: pg})
	}
}

// GetLocationHandler returns a single catalog entry.
func GetLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loc, err := deps.Locations.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(loc)
	}
}

// CatalogStats holds row counts of the catalog tables.
type CatalogStats struct {
	Locations   int            `json:"locations"`
	ByType      map[string]int `json:"by_type"`
	Itineraries int            `json:"itineraries"`
	LastIngest  string         `json:"last_ingest,omitempty"`
}

// CatalogStatusHandler returns catalog row counts straight from the database.
func CatalogStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}
		ctx := c.UserContext()

		stats := CatalogStats{ByType: map[string]int{}}
		rows, err := deps.DB.Pool.Query(ctx, `SELECT type, count(*) FROM locations GROUP BY type`)
		if err != nil {
			return errInternal(c, err.Error())
		}
		defer rows.Close()
		for rows.Next() {
			var typ string
			var n int
			if err := rows.Scan(&typ, &n); err != nil {
				return errInternal(c, err.Error())
			}
			stats.ByType[typ] = n
			stats.Locations += n
		}
		if err := rows.Err(); err != nil {
			return errInternal(c, err.Error())
		}

		if err := deps.DB.Pool.QueryRow(ctx, `
			SELECT (SELECT count(*) FROM itineraries),
			       COALESCE((SELECT max(updated_at)::text FROM locations), '')
		`).Scan(&stats.Itineraries, &stats.LastIngest); err != nil {
			return errInternal(c, err.Error())
		}

		return c.JSON(stats)
	}
}

// CreateItineraryHandler generates an itinerary. With ?async=true and a workflow
// engine configured, generation runs durably and 202 is returned with the future id.
func CreateItineraryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, msg := parseTripBody(c)
		if msg != "" {
			return errBadRequest(c, msg)
		}

		if c.QueryBool("async", false) {
			if deps.Workflows == nil {
				return errBadRequest(c, "async generation is not enabled")
			}
			if err := req.Validate(); err != nil {
				return errFromDomain(c, err)
			}
			id, workflowID, err := deps.Workflows.StartGenerate(c.UserContext(), req)
			if err != nil {
				return errFromDomain(c, err)
			}
			c.Location("/v1/itineraries/" + id)
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
				"id":          id,
				"workflow_id": workflowID,
				"status":      "pending",
			})
		}

		it, err := deps.Itineraries.Generate(c.UserContext(), req)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/itineraries/" + it.ID)
		return c.Status(fiber.StatusCreated).JSON(it)
	}
}

// GetItineraryHandler returns a stored itinerary.
func GetItineraryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		it, err := deps.Itineraries.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(it)
	}
}

// DeleteItineraryHandler removes a stored itinerary.
func DeleteItineraryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Itineraries.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// AllocateBudgetHandler splits ?total= across categories for ?tier=.
func AllocateBudgetHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		total := c.QueryFloat("total", 0)
		if total <= 0 {
			return errBadRequest(c, "total must be a positive amount in VND")
		}
		tier := domain.AccommodationTier(strings.ToLower(c.Query("tier")))

		b, err := deps.Itineraries.AllocateBudget(total, tier)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(b)
	}
}

// PreviewBudgetHandler returns feasibility, lodging and the budget split for a trip.
func PreviewBudgetHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, msg := parseTripBody(c)
		if msg != "" {
			return errBadRequest(c, msg)
		}
		preview, err := deps.Itineraries.PreviewBudget(c.UserContext(), req)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(preview)
	}
}

// TransportQuoteHandler prices one leg, either between two catalog ids
// (?from=&to=) or for a raw ?distance_km=.
func TransportQuoteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode := domain.TransportMode(strings.ToLower(c.Query("mode", string(domain.TransportMotorbike))))
		if !mode.Valid() {
			return errBadRequest(c, "mode must be one of own, motorbike, car, taxi")
		}
		people := c.QueryInt("people", 1)
		if people < 1 || people > 50 {
			return errBadRequest(c, "people must be between 1 and 50")
		}

		from, to := c.Query("from"), c.Query("to")
		if from != "" || to != "" {
			if from == "" || to == "" {
				return errBadRequest(c, "from and to must be given together")
			}
			q, err := deps.Locations.QuoteBetween(c.UserContext(), from, to, mode, people)
			if err != nil {
				return errFromDomain(c, err)
			}
			return c.JSON(q)
		}

		km := c.QueryFloat("distance_km", -1)
		if km < 0 || km > 200 {
			return errBadRequest(c, "distance_km must be between 0 and 200, or give from and to")
		}
		return c.JSON(planner.QuoteTransport(km, mode, people))
	}
}
