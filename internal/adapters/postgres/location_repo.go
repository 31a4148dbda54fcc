package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/tripplanner/internal/core/domain"
)

const upsertLocationSQL = `
	INSERT INTO locations (id, name, type, visit_type, location, ticket, avg_price,
	                       suggested_duration, open_time, close_time, tags, area, indoor)
	VALUES ($1, $2, $3, $4,
	        CASE WHEN $5::float8 = 0 OR $6::float8 = 0 THEN NULL
	             ELSE ST_SetSRID(ST_MakePoint($6, $5), 4326)::geography END,
	        $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name, type = EXCLUDED.type, visit_type = EXCLUDED.visit_type,
	    location = EXCLUDED.location, ticket = EXCLUDED.ticket, avg_price = EXCLUDED.avg_price,
	    suggested_duration = EXCLUDED.suggested_duration,
	    open_time = EXCLUDED.open_time, close_time = EXCLUDED.close_time,
	    tags = EXCLUDED.tags, area = EXCLUDED.area, indoor = EXCLUDED.indoor,
	    updated_at = now()
`

const selectLocationSQL = `
	SELECT id, name, type, visit_type,
	       COALESCE(ST_Y(location::geometry), 0) AS lat,
	       COALESCE(ST_X(location::geometry), 0) AS lon,
	       ticket, avg_price, suggested_duration,
	       COALESCE(open_time, ''), COALESCE(close_time, ''),
	       COALESCE(tags, '{}'), COALESCE(area, ''), indoor, created_at
	FROM locations
`

// LocationRepo implements ports.LocationRepository with pgx.
type LocationRepo struct {
	db *DB
}

// NewLocationRepo creates a new LocationRepo.
func NewLocationRepo(db *DB) *LocationRepo {
	return &LocationRepo{db: db}
}

func locationArgs(l *domain.Location) []any {
	return []any{
		l.ID, l.Name, l.Type, l.VisitType, l.Location.Lat, l.Location.Lon,
		l.Ticket, l.AvgPrice, l.SuggestedDuration,
		nullIfEmpty(l.OpenTime), nullIfEmpty(l.CloseTime),
		l.Tags, nullIfEmpty(l.Area), l.Indoor,
	}
}

// Upsert inserts or updates a single location.
func (r *LocationRepo) Upsert(ctx context.Context, l *domain.Location) error {
	_, err := r.db.Pool.Exec(ctx, upsertLocationSQL, locationArgs(l)...)
	return err
}

// UpsertBatch inserts many locations using pgx.Batch.
func (r *LocationRepo) UpsertBatch(ctx context.Context, locs []domain.Location) error {
	batch := &pgx.Batch{}
	for i := range locs {
		batch.Queue(upsertLocationSQL, locationArgs(&locs[i])...)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := range locs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec %s: %w", locs[i].ID, err)
		}
	}
	return nil
}

// GetByID returns a location by its catalog id.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	l, err := scanLocation(r.db.Pool.QueryRow(ctx, selectLocationSQL+` WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "location", id)
	}
	return l, nil
}

// List returns every location matching filter, ordered by id.
func (r *LocationRepo) List(ctx context.Context, filter domain.LocationFilter) ([]domain.Location, error) {
	where, args := buildLocationFilter(filter)
	rows, err := r.db.Pool.Query(ctx, selectLocationSQL+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locs []domain.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locs = append(locs, *l)
	}
	return locs, rows.Err()
}

// buildLocationFilter renders filter as a WHERE clause with positional args.
func buildLocationFilter(f domain.LocationFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if len(f.Types) > 0 {
		add("lower(type) = ANY($%d)", lowerAll(f.Types))
	}
	if len(f.VisitTypes) > 0 {
		add("lower(visit_type) = ANY($%d)", lowerAll(f.VisitTypes))
	}
	if f.Indoor != nil {
		add("indoor = $%d", *f.Indoor)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		add("name ILIKE '%%' || $%d || '%%'", s)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanLocation(row pgx.Row) (*domain.Location, error) {
	var l domain.Location
	if err := row.Scan(
		&l.ID, &l.Name, &l.Type, &l.VisitType,
		&l.Location.Lat, &l.Location.Lon,
		&l.Ticket, &l.AvgPrice, &l.SuggestedDuration,
		&l.OpenTime, &l.CloseTime,
		&l.Tags, &l.Area, &l.Indoor, &l.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
