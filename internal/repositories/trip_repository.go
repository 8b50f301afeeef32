package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	intconfig "github.com/mustafa2080/tourism-API/internal/config"
	intdb "github.com/mustafa2080/tourism-API/internal/db"
	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
)

type TripRepository struct {
	DB intdb.Querier
}

func (r TripRepository) db() intdb.Querier {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const tripColumns = `id, title, slug, description, itinerary, price, currency, duration_days,
	start_date, end_date, destinations, tags, seats_available, total_seats, status,
	created_by_id, created_at, updated_at`

func scanTrip(row rowScanner) (models.Trip, error) {
	var (
		t          models.Trip
		start, end sql.NullTime
		createdBy  sql.NullString
		status     string
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Slug, &t.Description, &t.Itinerary, &t.Price, &t.Currency, &t.DurationDays,
		&start, &end, pq.Array(&t.Destinations), pq.Array(&t.Tags), &t.SeatsAvailable, &t.TotalSeats, &status,
		&createdBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return t, err
	}
	t.Status = models.TripStatus(status)
	t.StartDate = nullTimePtr(start)
	t.EndDate = nullTimePtr(end)
	t.CreatedByID = createdBy.String
	if t.Destinations == nil {
		t.Destinations = []string{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

func (r TripRepository) Create(ctx context.Context, t *models.Trip) error {
	err := r.db().QueryRowContext(ctx, `
		INSERT INTO trips (id, title, slug, description, itinerary, price, currency, duration_days,
			start_date, end_date, destinations, tags, seats_available, total_seats, status, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at
	`,
		t.ID, t.Title, t.Slug, t.Description, t.Itinerary, t.Price, t.Currency, t.DurationDays,
		t.StartDate, t.EndDate, pq.Array(t.Destinations), pq.Array(t.Tags), t.SeatsAvailable, t.TotalSeats,
		string(t.Status), intdb.NullIfEmpty(t.CreatedByID),
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return intdb.MapError(err, "Trip")
	}
	return nil
}

func (r TripRepository) GetByID(ctx context.Context, id string) (models.Trip, error) {
	t, err := scanTrip(r.db().QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, id))
	if err != nil {
		return models.Trip{}, intdb.MapError(err, "Trip")
	}
	return t, nil
}

// GetByIDForUpdate locks the trip row until the surrounding transaction ends.
func (r TripRepository) GetByIDForUpdate(ctx context.Context, id string) (models.Trip, error) {
	t, err := scanTrip(r.db().QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return models.Trip{}, intdb.MapError(err, "Trip")
	}
	return t, nil
}

func (r TripRepository) GetBySlug(ctx context.Context, slug string) (models.Trip, error) {
	t, err := scanTrip(r.db().QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE slug = $1`, slug))
	if err != nil {
		return models.Trip{}, intdb.MapError(err, "Trip")
	}
	return t, nil
}

// SlugTaken reports whether slug belongs to a trip other than excludeID.
func (r TripRepository) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	var taken bool
	err := r.db().QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM trips WHERE slug = $1 AND ($2 = '' OR id::text <> $2))`,
		slug, excludeID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return taken, nil
}

type queryArgs struct {
	vals []any
}

func (a *queryArgs) add(v any) string {
	a.vals = append(a.vals, v)
	return "$" + strconv.Itoa(len(a.vals))
}

func tripWhere(f models.TripFilter, args *queryArgs) string {
	where := []string{"1=1"}
	switch {
	case f.Status != "":
		where = append(where, "status = "+args.add(string(f.Status)))
	case !f.IncludeUnpublished:
		where = append(where, "status = "+args.add(string(models.TripPublished)))
	}
	if q := strings.TrimSpace(f.Q); q != "" {
		p := args.add("%" + q + "%")
		where = append(where, "(title ILIKE "+p+" OR description ILIKE "+p+" OR itinerary ILIKE "+p+")")
	}
	if d := strings.TrimSpace(f.Destination); d != "" {
		where = append(where, args.add(d)+" = ANY(destinations)")
	}
	if f.StartDate != nil {
		where = append(where, "start_date >= "+args.add(*f.StartDate))
	}
	if f.EndDate != nil {
		where = append(where, "end_date <= "+args.add(*f.EndDate))
	}
	if f.PriceMin != nil {
		where = append(where, "price >= "+args.add(*f.PriceMin))
	}
	if f.PriceMax != nil {
		where = append(where, "price <= "+args.add(*f.PriceMax))
	}
	if f.DurationMin != nil {
		where = append(where, "duration_days >= "+args.add(*f.DurationMin))
	}
	if f.DurationMax != nil {
		where = append(where, "duration_days <= "+args.add(*f.DurationMax))
	}
	if len(f.Tags) > 0 {
		where = append(where, "tags && "+args.add(pq.Array(f.Tags)))
	}
	return strings.Join(where, " AND ")
}

func tripOrderBy(s models.TripSort) string {
	switch s {
	case models.SortPriceAsc:
		return "price ASC, created_at DESC"
	case models.SortPriceDesc:
		return "price DESC, created_at DESC"
	case models.SortDurationAsc:
		return "duration_days ASC, created_at DESC"
	case models.SortDurationDesc:
		return "duration_days DESC, created_at DESC"
	case models.SortOldest:
		return "created_at ASC"
	default:
		return "created_at DESC"
	}
}

func (r TripRepository) List(ctx context.Context, f models.TripFilter, page domain.PageParams) ([]models.Trip, int, error) {
	args := &queryArgs{}
	where := tripWhere(f, args)

	var total int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM trips WHERE `+where, args.vals...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM trips WHERE %s ORDER BY %s LIMIT %s OFFSET %s`,
		tripColumns, where, tripOrderBy(f.Sort), args.add(page.Limit), args.add(page.Offset()))

	rows, err := r.db().QueryContext(ctx, query, args.vals...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return out, total, fmt.Errorf("failed to scan trip: %w", err)
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (r TripRepository) Update(ctx context.Context, id string, u models.TripUpdate) error {
	args := &queryArgs{}
	sets := []string{}
	set := func(col string, v any) { sets = append(sets, col+" = "+args.add(v)) }

	if u.Title != nil {
		set("title", *u.Title)
	}
	if u.Slug != nil {
		set("slug", *u.Slug)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.Itinerary != nil {
		set("itinerary", *u.Itinerary)
	}
	if u.Price != nil {
		set("price", *u.Price)
	}
	if u.Currency != nil {
		set("currency", *u.Currency)
	}
	if u.DurationDays != nil {
		set("duration_days", *u.DurationDays)
	}
	if u.StartDate != nil {
		set("start_date", *u.StartDate)
	}
	if u.EndDate != nil {
		set("end_date", *u.EndDate)
	}
	if u.Destinations != nil {
		set("destinations", pq.Array(*u.Destinations))
	}
	if u.Tags != nil {
		set("tags", pq.Array(*u.Tags))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	res, err := r.db().ExecContext(ctx, `UPDATE trips SET `+strings.Join(sets, ", ")+` WHERE id = `+args.add(id), args.vals...)
	if err != nil {
		return intdb.MapError(err, "Trip")
	}
	return requireAffected(res, "Trip")
}

func (r TripRepository) SetStatus(ctx context.Context, id string, status models.TripStatus) error {
	res, err := r.db().ExecContext(ctx, `UPDATE trips SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update trip status: %w", err)
	}
	return requireAffected(res, "Trip")
}

// DecrementSeats takes n seats only if at least n remain. It reports false
// when the guard rejected the update.
func (r TripRepository) DecrementSeats(ctx context.Context, id string, n int) (bool, error) {
	res, err := r.db().ExecContext(ctx, `
		UPDATE trips
		SET seats_available = seats_available - $2, updated_at = NOW()
		WHERE id = $1 AND seats_available >= $2
	`, id, n)
	if err != nil {
		return false, intdb.MapError(err, "Trip")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r TripRepository) IncrementSeats(ctx context.Context, id string, n int) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE trips
		SET seats_available = seats_available + $2, updated_at = NOW()
		WHERE id = $1
	`, id, n)
	if err != nil {
		return fmt.Errorf("failed to restore seats: %w", err)
	}
	return requireAffected(res, "Trip")
}

// OverrideSeats writes seats_available directly. No upper bound is checked.
func (r TripRepository) OverrideSeats(ctx context.Context, id string, value int) (models.SeatOverride, error) {
	var out models.SeatOverride
	err := r.db().QueryRowContext(ctx, `
		UPDATE trips SET seats_available = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, title, seats_available, total_seats
	`, id, value).Scan(&out.ID, &out.Title, &out.SeatsAvailable, &out.TotalSeats)
	if err != nil {
		return out, intdb.MapError(err, "Trip")
	}
	return out, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
