package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/tripplanner/internal/core/domain"
)

// ItineraryRepo stores generated itineraries. Nested structures live in JSONB columns.
type ItineraryRepo struct {
	db *DB
}

// NewItineraryRepo creates a new ItineraryRepo.
func NewItineraryRepo(db *DB) *ItineraryRepo {
	return &ItineraryRepo{db: db}
}

// Save inserts or replaces an itinerary.
func (r *ItineraryRepo) Save(ctx context.Context, it *domain.Itinerary) error {
	request, err := json.Marshal(it.Request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	breakdown, err := json.Marshal(it.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	days, err := json.Marshal(it.Days)
	if err != nil {
		return fmt.Errorf("marshal days: %w", err)
	}
	var accommodation []byte
	if it.Accommodation != nil {
		if accommodation, err = json.Marshal(it.Accommodation); err != nil {
			return fmt.Errorf("marshal accommodation: %w", err)
		}
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO itineraries (id, request, total_cost, budget_status, breakdown,
		                         accommodation, accommodation_cost, days, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET request = EXCLUDED.request, total_cost = EXCLUDED.total_cost,
		    budget_status = EXCLUDED.budget_status, breakdown = EXCLUDED.breakdown,
		    accommodation = EXCLUDED.accommodation,
		    accommodation_cost = EXCLUDED.accommodation_cost, days = EXCLUDED.days
	`, it.ID, request, it.TotalCost, string(it.BudgetStatus), breakdown,
		accommodation, it.AccommodationCost, days, it.CreatedAt)
	return err
}

// GetByID returns an itinerary by UUID.
func (r *ItineraryRepo) GetByID(ctx context.Context, id string) (*domain.Itinerary, error) {
	var (
		it                                      domain.Itinerary
		status                                  string
		request, breakdown, accommodation, days []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, request, total_cost, budget_status, breakdown,
		       accommodation, accommodation_cost, days, created_at
		FROM itineraries WHERE id = $1
	`, id).Scan(
		&it.ID, &request, &it.TotalCost, &status, &breakdown,
		&accommodation, &it.AccommodationCost, &days, &it.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, "itinerary", id)
	}
	it.BudgetStatus = domain.BudgetStatus(status)

	if err := json.Unmarshal(request, &it.Request); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	if err := json.Unmarshal(breakdown, &it.Breakdown); err != nil {
		return nil, fmt.Errorf("decode breakdown: %w", err)
	}
	if err := json.Unmarshal(days, &it.Days); err != nil {
		return nil, fmt.Errorf("decode days: %w", err)
	}
	if len(accommodation) > 0 {
		it.Accommodation = &domain.Location{}
		if err := json.Unmarshal(accommodation, it.Accommodation); err != nil {
			return nil, fmt.Errorf("decode accommodation: %w", err)
		}
	}
	return &it, nil
}

// Delete removes an itinerary.
func (r *ItineraryRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM itineraries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("itinerary %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
