package services

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	intconfig "github.com/mustafa2080/tourism-API/internal/config"
	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
	"github.com/mustafa2080/tourism-API/internal/repositories"
	"github.com/mustafa2080/tourism-API/internal/utils"
)

const (
	tripsLimit      = 20
	maxSlugAttempts = 100
	defaultCurrency = "USD"
)

type TripService struct {
	DB    *sql.DB
	Audit AuditLogger
	Now   func() time.Time
}

func (s TripService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s TripService) trips() repositories.TripRepository {
	return repositories.TripRepository{DB: s.db()}
}

// List returns published trips unless the filter says otherwise.
func (s TripService) List(ctx context.Context, f models.TripFilter, page domain.PageParams) ([]models.Trip, domain.Pagination, error) {
	page = page.Normalize(tripsLimit)
	items, total, err := s.trips().List(ctx, f, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return items, domain.NewPagination(page, total), nil
}

// Get resolves a trip by UUID or slug.
func (s TripService) Get(ctx context.Context, idOrSlug string) (models.Trip, error) {
	if _, err := uuid.Parse(idOrSlug); err == nil {
		return s.trips().GetByID(ctx, idOrSlug)
	}
	return s.trips().GetBySlug(ctx, strings.ToLower(strings.TrimSpace(idOrSlug)))
}

func (s TripService) Availability(ctx context.Context, idOrSlug string) (models.TripAvailability, error) {
	t, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return models.TripAvailability{}, err
	}
	active, err := repositories.BookingRepository{DB: s.db()}.CountActiveForTrip(ctx, t.ID)
	if err != nil {
		return models.TripAvailability{}, err
	}
	return models.TripAvailability{
		ID:                t.ID,
		Title:             t.Title,
		SeatsAvailable:    t.SeatsAvailable,
		TotalSeats:        t.TotalSeats,
		StartDate:         t.StartDate,
		EndDate:           t.EndDate,
		Status:            t.Status,
		ConfirmedBookings: active,
		AvailableSeats:    t.SeatsAvailable,
		IsAvailable:       t.Bookable(),
	}, nil
}

func (s TripService) Itinerary(ctx context.Context, idOrSlug string) (models.TripItinerary, error) {
	t, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return models.TripItinerary{}, err
	}
	return models.TripItinerary{ID: t.ID, Title: t.Title, Itinerary: t.Itinerary, DurationDays: t.DurationDays}, nil
}

// uniqueSlug appends -1, -2, ... to the slugified title until it is free.
func (s TripService) uniqueSlug(ctx context.Context, title, excludeID string) (string, error) {
	base := utils.Slugify(title)
	if base == "" {
		base = "trip"
	}
	slug := base
	for i := 1; i <= maxSlugAttempts; i++ {
		taken, err := s.trips().SlugTaken(ctx, slug, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(i)
	}
	return "", domain.ConflictError{Resource: "Trip", Msg: "Could not generate a unique slug"}
}

func (s TripService) Create(ctx context.Context, actor domain.RequestContext, in models.TripInput) (models.Trip, error) {
	slug, err := s.uniqueSlug(ctx, in.Title, "")
	if err != nil {
		return models.Trip{}, err
	}
	t := models.Trip{
		ID:             uuid.NewString(),
		Title:          utils.NormalizeSpace(in.Title),
		Slug:           slug,
		Description:    in.Description,
		Itinerary:      in.Itinerary,
		Price:          in.Price,
		Currency:       utils.SafeOr(strings.ToUpper(in.Currency), defaultCurrency),
		DurationDays:   in.DurationDays,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		Destinations:   nonNilStrings(in.Destinations),
		Tags:           nonNilStrings(in.Tags),
		SeatsAvailable: in.TotalSeats,
		TotalSeats:     in.TotalSeats,
		Status:         models.TripDraft,
		CreatedByID:    actor.UserID,
	}
	if err := s.trips().Create(ctx, &t); err != nil {
		return models.Trip{}, err
	}
	s.audit(ctx, actor, models.AuditTripCreated, t.ID, map[string]any{"title": t.Title, "slug": t.Slug})
	return t, nil
}

func (s TripService) Update(ctx context.Context, actor domain.RequestContext, id string, u models.TripUpdate) (models.Trip, error) {
	current, err := s.trips().GetByID(ctx, id)
	if err != nil {
		return models.Trip{}, err
	}
	if u.Title != nil && utils.NormalizeSpace(*u.Title) != current.Title {
		title := utils.NormalizeSpace(*u.Title)
		slug, err := s.uniqueSlug(ctx, title, current.ID)
		if err != nil {
			return models.Trip{}, err
		}
		u.Title = &title
		u.Slug = &slug
	}
	if u.Currency != nil {
		c := strings.ToUpper(*u.Currency)
		u.Currency = &c
	}
	if err := s.trips().Update(ctx, current.ID, u); err != nil {
		return models.Trip{}, err
	}
	t, err := s.trips().GetByID(ctx, current.ID)
	if err != nil {
		return models.Trip{}, err
	}
	s.audit(ctx, actor, models.AuditTripUpdated, t.ID, map[string]any{"title": t.Title})
	return t, nil
}

// Delete archives the trip; bookings keep referencing it.
func (s TripService) Delete(ctx context.Context, actor domain.RequestContext, id string) error {
	if err := s.trips().SetStatus(ctx, id, models.TripArchived); err != nil {
		return err
	}
	s.audit(ctx, actor, models.AuditTripDeleted, id, nil)
	return nil
}

func (s TripService) Publish(ctx context.Context, actor domain.RequestContext, id string) (models.Trip, error) {
	t, err := s.trips().GetByID(ctx, id)
	if err != nil {
		return t, err
	}
	if t.Status == models.TripPublished {
		return models.Trip{}, domain.ValidationError{Field: "status", Msg: "Trip is already published"}
	}
	if err := s.trips().SetStatus(ctx, t.ID, models.TripPublished); err != nil {
		return models.Trip{}, err
	}
	t.Status = models.TripPublished
	s.audit(ctx, actor, models.AuditTripPublished, t.ID, nil)
	return t, nil
}

func (s TripService) Unpublish(ctx context.Context, actor domain.RequestContext, id string) (models.Trip, error) {
	t, err := s.trips().GetByID(ctx, id)
	if err != nil {
		return t, err
	}
	if t.Status != models.TripPublished {
		return models.Trip{}, domain.ValidationError{Field: "status", Msg: "Trip is not published"}
	}
	if err := s.trips().SetStatus(ctx, t.ID, models.TripDraft); err != nil {
		return models.Trip{}, err
	}
	t.Status = models.TripDraft
	s.audit(ctx, actor, models.AuditTripUnpublished, t.ID, nil)
	return t, nil
}

// OverrideAvailability writes seats_available directly, without checking it
// against total_seats. Operators use it to correct drift.
func (s TripService) OverrideAvailability(ctx context.Context, actor domain.RequestContext, id string, seats int) (models.SeatOverride, error) {
	if seats < 0 {
		return models.SeatOverride{}, domain.ValidationError{Field: "seatsAvailable", Msg: "seatsAvailable must be a non-negative integer"}
	}
	out, err := s.trips().OverrideSeats(ctx, id, seats)
	if err != nil {
		return out, err
	}
	s.audit(ctx, actor, models.AuditTripUpdated, out.ID, map[string]any{
		"override":       true,
		"seatsAvailable": out.SeatsAvailable,
		"totalSeats":     out.TotalSeats,
	})
	return out, nil
}

func (s TripService) audit(ctx context.Context, actor domain.RequestContext, action models.AuditAction, tripID string, meta map[string]any) {
	if s.Audit == nil {
		return
	}
	s.Audit.LogAction(ctx, models.AuditEntry{
		ActorID:    actor.UserID,
		Action:     action,
		TargetType: models.TargetTrip,
		TargetID:   tripID,
		Metadata:   meta,
	})
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
