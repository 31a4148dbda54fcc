// Package catalogfile reads location catalogs from loosely structured JSON and
// normalizes every entry into a domain.Location.
//
// Accepted document shapes are a bare array of entries or {"locations": [...]}.
// Within an entry, alternative spellings are tolerated (visitType/visit_type,
// avgPrice/avg_price/price, lng/lon) and scalar fields may be strings.
package catalogfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samirrijal/tripplanner/internal/core/domain"
	"github.com/samirrijal/tripplanner/internal/pkg/geospatial"
)

// rawEntry is one catalog entry as found in the wild.
type rawEntry struct {
	ID       flexString `json:"id"`
	AltID    flexString `json:"_id"`
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Category string     `json:"category"`

	VisitType    string `json:"visitType"`
	VisitTypeAlt string `json:"visit_type"`

	Location *rawPoint `json:"location"`
	Lat      flexFloat `json:"lat"`
	Lng      flexFloat `json:"lng"`
	Lon      flexFloat `json:"lon"`

	Ticket      flexFloat `json:"ticket"`
	TicketPrice flexFloat `json:"ticketPrice"`
	AvgPrice    flexFloat `json:"avgPrice"`
	AvgPriceAlt flexFloat `json:"avg_price"`
	Price       flexFloat `json:"price"`

	SuggestedDuration    flexFloat `json:"suggestedDuration"`
	SuggestedDurationAlt flexFloat `json:"suggested_duration"`

	OpenTime     string `json:"openTime"`
	OpenTimeAlt  string `json:"open_time"`
	CloseTime    string `json:"closeTime"`
	CloseTimeAlt string `json:"close_time"`

	Tags   flexStrings `json:"tags"`
	Area   string      `json:"area"`
	Indoor flexBool    `json:"indoor"`
}

type rawPoint struct {
	Lat flexFloat `json:"lat"`
	Lng flexFloat `json:"lng"`
	Lon flexFloat `json:"lon"`
}

// EntryError reports a rejected entry with its position in the source.
type EntryError struct {
	Index int // zero-based position in the array
	Line  int // line where the entry starts
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d (line %d): %v", e.Index, e.Line, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// ErrMissingField marks entries without an id or a name.
var ErrMissingField = errors.New("missing required field")

// ReadFile parses the catalog at path.
func ReadFile(path string) ([]domain.Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read parses a catalog document. Any invalid entry aborts the read with an *EntryError.
func Read(r io.Reader) ([]domain.Location, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	body, base, err := entriesArray(data)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('[') {
		return nil, errors.New("catalog must be a JSON array or an object with a locations array")
	}

	var (
		out  []domain.Location
		seen = map[string]int{}
	)
	for i := 0; dec.More(); i++ {
		start := base + int(dec.InputOffset())
		var raw rawEntry
		if err := dec.Decode(&raw); err != nil {
			return nil, &EntryError{Index: i, Line: lineAt(data, start), Err: err}
		}
		loc, err := normalize(raw)
		if err != nil {
			return nil, &EntryError{Index: i, Line: lineAt(data, start), Err: err}
		}
		if prev, dup := seen[loc.ID]; dup {
			return nil, &EntryError{Index: i, Line: lineAt(data, start),
				Err: fmt.Errorf("duplicate id %q (first at entry %d)", loc.ID, prev)}
		}
		seen[loc.ID] = i
		out = append(out, loc)
	}
	return out, nil
}

// entriesArray returns the bytes of the entries array and its offset within data.
func entriesArray(data []byte) ([]byte, int, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	lead := len(data) - len(trimmed)
	if len(trimmed) == 0 {
		return nil, 0, errors.New("empty catalog")
	}
	if trimmed[0] == '[' {
		return trimmed, lead, nil
	}

	var wrapper struct {
		Locations json.RawMessage `json:"locations"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, 0, fmt.Errorf("parse catalog: %w", err)
	}
	if len(wrapper.Locations) == 0 {
		return nil, 0, errors.New(`catalog object has no "locations" array`)
	}
	// The raw array is a copy; locate it again for line numbers.
	offset := bytes.Index(data, wrapper.Locations)
	if offset < 0 {
		offset = 0
	}
	return wrapper.Locations, offset, nil
}

func lineAt(data []byte, offset int) int {
	if offset > len(data) {
		offset = len(data)
	}
	// InputOffset points just before the value; skip separators to land on it.
	for offset < len(data) && strings.ContainsRune(" \t\r\n,", rune(data[offset])) {
		offset++
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}

// normalize converts one raw entry into a strict domain.Location.
func normalize(raw rawEntry) (domain.Location, error) {
	id := strings.TrimSpace(string(firstString(string(raw.ID), string(raw.AltID))))
	name := strings.TrimSpace(raw.Name)
	switch {
	case id == "":
		return domain.Location{}, fmt.Errorf("%w: id", ErrMissingField)
	case name == "":
		return domain.Location{}, fmt.Errorf("%w: name", ErrMissingField)
	}

	typ := strings.ToLower(strings.TrimSpace(firstString(raw.Type, raw.Category)))
	visitType := strings.ToLower(strings.TrimSpace(firstString(raw.VisitType, raw.VisitTypeAlt)))
	if typ == "" {
		typ = visitType
	}
	if visitType == "" {
		visitType = typ
	}
	if typ == "" {
		return domain.Location{}, fmt.Errorf("%w: type", ErrMissingField)
	}

	loc := domain.Location{
		ID:        id,
		Name:      name,
		Type:      typ,
		VisitType: visitType,
		Ticket:    firstFloat(raw.Ticket, raw.TicketPrice),
		AvgPrice:  firstFloat(raw.AvgPrice, raw.AvgPriceAlt, raw.Price),
		OpenTime:  strings.TrimSpace(firstString(raw.OpenTime, raw.OpenTimeAlt)),
		CloseTime: strings.TrimSpace(firstString(raw.CloseTime, raw.CloseTimeAlt)),
		Tags:      []string(raw.Tags),
		Area:      strings.TrimSpace(raw.Area),
		Indoor:    bool(raw.Indoor),
	}
	loc.SuggestedDuration = int(firstFloat(raw.SuggestedDuration, raw.SuggestedDurationAlt))

	if raw.Location != nil {
		loc.Location = domain.GeoPoint{Lat: raw.Location.Lat.Value, Lon: firstFloat(raw.Location.Lng, raw.Location.Lon)}
	} else {
		loc.Location = domain.GeoPoint{Lat: raw.Lat.Value, Lon: firstFloat(raw.Lng, raw.Lon)}
	}

	if loc.Ticket < 0 || loc.AvgPrice < 0 {
		return domain.Location{}, errors.New("prices must not be negative")
	}
	if !loc.Location.IsZero() && !geospatial.DaNang.Contains(loc.Location.Lat, loc.Location.Lon) {
		return domain.Location{}, fmt.Errorf("coordinates %.4f,%.4f outside the Da Nang area", loc.Location.Lat, loc.Location.Lon)
	}
	for _, clock := range []string{loc.OpenTime, loc.CloseTime} {
		if clock != "" && !validClock(clock) {
			return domain.Location{}, fmt.Errorf("invalid clock %q, want HH:MM", clock)
		}
	}
	return loc, nil
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstFloat(vals ...flexFloat) float64 {
	for _, v := range vals {
		if v.Set {
			return v.Value
		}
	}
	return 0
}

func validClock(s string) bool {
	var h, m int
	if n, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil || n != 2 {
		return false
	}
	return h >= 0 && h <= 24 && m >= 0 && m < 60
}
