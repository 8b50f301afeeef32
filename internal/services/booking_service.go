package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	intconfig "github.com/mustafa2080/tourism-API/internal/config"
	intdb "github.com/mustafa2080/tourism-API/internal/db"
	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
	"github.com/mustafa2080/tourism-API/internal/repositories"
	"github.com/mustafa2080/tourism-API/internal/utils"
)

const (
	userBookingsLimit  = 10
	adminBookingsLimit = 20
)

type BookingService struct {
	DB       *sql.DB
	Audit    AuditLogger
	Notifier Notifier
	Now      func() time.Time
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s BookingService) bookings() repositories.BookingRepository {
	return repositories.BookingRepository{DB: s.db()}
}

// Create reserves seats on a published trip and stores a PENDING booking.
// The trip row is locked for the whole transaction; the seat decrement is
// additionally guarded so seats_available can never go negative.
func (s BookingService) Create(ctx context.Context, tripID string, actor domain.RequestContext, in models.BookingInput) (models.Booking, error) {
	count := models.PassengerCount(in.Passengers)
	passengers := in.Passengers
	if passengers == nil {
		passengers = []models.Passenger{}
	}

	var bookingID string
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		trips := repositories.TripRepository{DB: tx}
		bookings := repositories.BookingRepository{DB: tx}

		trip, err := trips.GetByIDForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if trip.Status != models.TripPublished {
			return domain.ValidationError{Field: "tripId", Msg: "This trip is not available for booking"}
		}
		if trip.SeatsAvailable < count {
			return domain.ValidationError{Field: "passengers", Msg: fmt.Sprintf("Only %d seats available", trip.SeatsAvailable)}
		}

		b := models.Booking{
			ID:            uuid.NewString(),
			TripID:        trip.ID,
			UserID:        actor.UserID,
			Passengers:    passengers,
			TotalPrice:    utils.LineTotal(trip.Price, count),
			Status:        models.BookingPending,
			PaymentStatus: models.PaymentPending,
			BookingDate:   in.BookingDate,
		}
		inserted := false
		for attempt := 0; attempt < maxReferenceAttempts && !inserted; attempt++ {
			if b.BookingReference, err = NewBookingReference(s.now()); err != nil {
				return domain.InternalError{Msg: "failed to generate booking reference", Err: err}
			}
			if inserted, err = bookings.Insert(ctx, &b); err != nil {
				return err
			}
		}
		if !inserted {
			return domain.ConflictError{Resource: "Booking", Msg: "Could not allocate a unique booking reference"}
		}

		ok, err := trips.DecrementSeats(ctx, trip.ID, count)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ValidationError{Field: "passengers", Msg: "Not enough seats available"}
		}
		bookingID = b.ID
		return nil
	})
	if err != nil {
		return models.Booking{}, err
	}

	booking, err := s.bookings().GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	s.audit(ctx, models.AuditEntry{
		ActorID:    actor.UserID,
		Action:     models.AuditBookingCreated,
		TargetType: models.TargetBooking,
		TargetID:   booking.ID,
		Metadata: map[string]any{
			"tripId":           booking.TripID,
			"bookingReference": booking.BookingReference,
			"passengerCount":   count,
			"totalPrice":       booking.TotalPrice,
		},
	})
	return booking, nil
}

func (s BookingService) ListForUser(ctx context.Context, userID string, status models.BookingStatus, page domain.PageParams) ([]models.Booking, domain.Pagination, error) {
	page = page.Normalize(userBookingsLimit)
	items, total, err := s.bookings().List(ctx, models.BookingFilter{UserID: userID, Status: status}, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return items, domain.NewPagination(page, total), nil
}

func (s BookingService) ListAdmin(ctx context.Context, f models.BookingFilter, page domain.PageParams) ([]models.Booking, domain.Pagination, error) {
	page = page.Normalize(adminBookingsLimit)
	items, total, err := s.bookings().List(ctx, f, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return items, domain.NewPagination(page, total), nil
}

func (s BookingService) Get(ctx context.Context, id string, actor domain.RequestContext) (models.Booking, error) {
	b, err := s.bookings().GetByID(ctx, id)
	if err != nil {
		return b, err
	}
	if err := requireBookingAccess(actor, b, BookingRead); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

// Update edits passengers and booking date of a PENDING booking. The number
// of passengers is fixed at creation; seats only move on create and cancel.
func (s BookingService) Update(ctx context.Context, id string, actor domain.RequestContext, patch models.BookingUpdate) (models.Booking, error) {
	b, err := s.bookings().GetByID(ctx, id)
	if err != nil {
		return b, err
	}
	if err := requireBookingAccess(actor, b, BookingUpdate); err != nil {
		return models.Booking{}, err
	}
	if b.Status != models.BookingPending {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "Can only update pending bookings"}
	}
	if patch.Passengers != nil && models.PassengerCount(*patch.Passengers) != b.PassengerCount() {
		return models.Booking{}, domain.ValidationError{Field: "passengers", Msg: "Passenger count cannot be changed"}
	}
	if patch.Empty() {
		return b, nil
	}
	if err := s.bookings().UpdateDetails(ctx, id, patch); err != nil {
		return models.Booking{}, err
	}
	return s.bookings().GetByID(ctx, id)
}

// Cancel moves a booking to CANCELLED and gives its seats back to the trip
// in the same transaction. Cancelling twice is an error.
func (s BookingService) Cancel(ctx context.Context, id string, actor domain.RequestContext, reason *string) (models.Booking, error) {
	var restored int
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		bookings := repositories.BookingRepository{DB: tx}
		trips := repositories.TripRepository{DB: tx}

		b, err := bookings.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := requireBookingAccess(actor, b, BookingCancel); err != nil {
			return err
		}
		if !b.Status.Cancellable() {
			return domain.ValidationError{Field: "status", Msg: "Booking is already cancelled"}
		}
		if err := bookings.MarkCancelled(ctx, b.ID, reason, s.now()); err != nil {
			return err
		}
		restored = b.PassengerCount()
		return trips.IncrementSeats(ctx, b.TripID, restored)
	})
	if err != nil {
		return models.Booking{}, err
	}

	booking, err := s.bookings().GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	meta := map[string]any{"seatsRestored": restored}
	if reason != nil {
		meta["reason"] = *reason
	}
	s.audit(ctx, models.AuditEntry{
		ActorID:    actor.UserID,
		Action:     models.AuditBookingCancelled,
		TargetType: models.TargetBooking,
		TargetID:   booking.ID,
		Metadata:   meta,
	})
	if s.Notifier != nil && booking.User != nil && booking.Trip != nil {
		dispatch(ctx, "booking_cancellation", booking.ID, func(ctx context.Context) (string, error) {
			return s.Notifier.SendBookingCancellation(ctx, booking, *booking.User, *booking.Trip)
		})
	}
	return booking, nil
}

// Confirm marks a PENDING booking CONFIRMED and PAID. Seats are untouched.
func (s BookingService) Confirm(ctx context.Context, id string, actor domain.RequestContext) (models.Booking, error) {
	b, err := s.bookings().GetByID(ctx, id)
	if err != nil {
		return b, err
	}
	if b.Status != models.BookingPending {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "Can only confirm pending bookings"}
	}
	ok, err := s.bookings().MarkConfirmed(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if !ok {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "Can only confirm pending bookings"}
	}

	booking, err := s.bookings().GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	s.audit(ctx, models.AuditEntry{
		ActorID:    actor.UserID,
		Action:     models.AuditBookingConfirmed,
		TargetType: models.TargetBooking,
		TargetID:   booking.ID,
		Metadata:   map[string]any{"bookingReference": booking.BookingReference},
	})
	if s.Notifier != nil && booking.User != nil && booking.Trip != nil {
		dispatch(ctx, "booking_confirmation", booking.ID, func(ctx context.Context) (string, error) {
			return s.Notifier.SendBookingConfirmation(ctx, booking, *booking.User, *booking.Trip)
		})
	}
	return booking, nil
}

// Delete removes the booking row. Seats are not restored.
func (s BookingService) Delete(ctx context.Context, id string, actor domain.RequestContext) error {
	if err := s.bookings().Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, models.AuditEntry{
		ActorID:    actor.UserID,
		Action:     models.AuditBookingDeleted,
		TargetType: models.TargetBooking,
		TargetID:   id,
	})
	return nil
}

func (s BookingService) audit(ctx context.Context, e models.AuditEntry) {
	if s.Audit != nil {
		s.Audit.LogAction(ctx, e)
	}
}
