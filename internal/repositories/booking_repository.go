package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	intconfig "github.com/mustafa2080/tourism-API/internal/config"
	intdb "github.com/mustafa2080/tourism-API/internal/db"
	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
)

type BookingRepository struct {
	DB intdb.Querier
}

func (r BookingRepository) db() intdb.Querier {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingColumns = `b.id, b.trip_id, b.user_id, b.passengers, b.total_price, b.booking_reference,
	b.status, b.payment_status, b.booking_date, b.cancelled_at, b.cancellation_reason,
	b.reminder_sent_at, b.created_at, b.updated_at`

const bookingSummaryColumns = `t.id, t.title, t.slug, t.price, t.currency, t.duration_days, t.start_date, t.end_date,
	u.id, u.name, u.email, u.phone`

const bookingJoins = `FROM bookings b
	JOIN trips t ON t.id = b.trip_id
	JOIN users u ON u.id = b.user_id`

type bookingRow struct {
	b             models.Booking
	passengers    []byte
	status        string
	paymentStatus string
	bookingDate   sql.NullTime
	cancelledAt   sql.NullTime
	reason        sql.NullString
	reminderSent  sql.NullTime
}

func (r *bookingRow) dest(extra ...any) []any {
	return append([]any{
		&r.b.ID, &r.b.TripID, &r.b.UserID, &r.passengers, &r.b.TotalPrice, &r.b.BookingReference,
		&r.status, &r.paymentStatus, &r.bookingDate, &r.cancelledAt, &r.reason,
		&r.reminderSent, &r.b.CreatedAt, &r.b.UpdatedAt,
	}, extra...)
}

func (r *bookingRow) finish() (models.Booking, error) {
	b := r.b
	b.Passengers = []models.Passenger{}
	if len(r.passengers) > 0 {
		if err := json.Unmarshal(r.passengers, &b.Passengers); err != nil {
			return b, fmt.Errorf("failed to decode passengers: %w", err)
		}
	}
	b.Status = models.BookingStatus(r.status)
	b.PaymentStatus = models.PaymentStatus(r.paymentStatus)
	b.BookingDate = nullTimePtr(r.bookingDate)
	b.CancelledAt = nullTimePtr(r.cancelledAt)
	b.ReminderSentAt = nullTimePtr(r.reminderSent)
	if r.reason.Valid {
		v := r.reason.String
		b.CancellationReason = &v
	}
	return b, nil
}

func scanBooking(row rowScanner) (models.Booking, error) {
	var br bookingRow
	if err := row.Scan(br.dest()...); err != nil {
		return models.Booking{}, err
	}
	return br.finish()
}

func scanBookingWithSummaries(row rowScanner) (models.Booking, error) {
	var (
		br         bookingRow
		trip       models.TripSummary
		user       models.UserSummary
		start, end sql.NullTime
	)
	err := row.Scan(br.dest(
		&trip.ID, &trip.Title, &trip.Slug, &trip.Price, &trip.Currency, &trip.DurationDays, &start, &end,
		&user.ID, &user.Name, &user.Email, &user.Phone,
	)...)
	if err != nil {
		return models.Booking{}, err
	}
	b, err := br.finish()
	if err != nil {
		return b, err
	}
	trip.StartDate = nullTimePtr(start)
	trip.EndDate = nullTimePtr(end)
	b.Trip = &trip
	b.User = &user
	return b, nil
}

// Insert stores b unless its booking_reference is already taken, in which
// case it reports false without aborting the surrounding transaction.
func (r BookingRepository) Insert(ctx context.Context, b *models.Booking) (bool, error) {
	passengers, err := json.Marshal(nonNilPassengers(b.Passengers))
	if err != nil {
		return false, fmt.Errorf("failed to encode passengers: %w", err)
	}
	err = r.db().QueryRowContext(ctx, `
		INSERT INTO bookings (id, trip_id, user_id, passengers, total_price, booking_reference,
			status, payment_status, booking_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (booking_reference) DO NOTHING
		RETURNING created_at, updated_at
	`, b.ID, b.TripID, b.UserID, passengers, b.TotalPrice, b.BookingReference,
		string(b.Status), string(b.PaymentStatus), b.BookingDate,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, intdb.MapError(err, "Booking")
	}
	return true, nil
}

// GetByID loads a booking with its trip and user summaries.
func (r BookingRepository) GetByID(ctx context.Context, id string) (models.Booking, error) {
	b, err := scanBookingWithSummaries(r.db().QueryRowContext(ctx,
		`SELECT `+bookingColumns+`, `+bookingSummaryColumns+` `+bookingJoins+` WHERE b.id = $1`, id))
	if err != nil {
		return models.Booking{}, intdb.MapError(err, "Booking")
	}
	return b, nil
}

// GetByIDForUpdate locks the booking row until the surrounding transaction ends.
func (r BookingRepository) GetByIDForUpdate(ctx context.Context, id string) (models.Booking, error) {
	b, err := scanBooking(r.db().QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1 FOR UPDATE`, id))
	if err != nil {
		return models.Booking{}, intdb.MapError(err, "Booking")
	}
	return b, nil
}

func (r BookingRepository) List(ctx context.Context, f models.BookingFilter, page domain.PageParams) ([]models.Booking, int, error) {
	args := &queryArgs{}
	where := []string{"1=1"}
	if f.UserID != "" {
		where = append(where, "b.user_id = "+args.add(f.UserID))
	}
	if f.TripID != "" {
		where = append(where, "b.trip_id = "+args.add(f.TripID))
	}
	if f.Status != "" {
		where = append(where, "b.status = "+args.add(string(f.Status)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings b WHERE `+cond, args.vals...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s, %s %s WHERE %s ORDER BY b.created_at DESC LIMIT %s OFFSET %s`,
		bookingColumns, bookingSummaryColumns, bookingJoins, cond, args.add(page.Limit), args.add(page.Offset()))
	rows, err := r.db().QueryContext(ctx, query, args.vals...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBookingWithSummaries(rows)
		if err != nil {
			return out, total, fmt.Errorf("failed to scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r BookingRepository) UpdateDetails(ctx context.Context, id string, u models.BookingUpdate) error {
	args := &queryArgs{}
	sets := []string{}
	if u.Passengers != nil {
		raw, err := json.Marshal(nonNilPassengers(*u.Passengers))
		if err != nil {
			return fmt.Errorf("failed to encode passengers: %w", err)
		}
		sets = append(sets, "passengers = "+args.add(raw))
	}
	if u.BookingDate != nil {
		sets = append(sets, "booking_date = "+args.add(*u.BookingDate))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")
	res, err := r.db().ExecContext(ctx, `UPDATE bookings SET `+strings.Join(sets, ", ")+` WHERE id = `+args.add(id), args.vals...)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return requireAffected(res, "Booking")
}

func (r BookingRepository) MarkCancelled(ctx context.Context, id string, reason *string, at time.Time) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE bookings
		SET status = $2, cancelled_at = $3, cancellation_reason = $4, updated_at = NOW()
		WHERE id = $1
	`, id, string(models.BookingCancelled), at, reason)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	return requireAffected(res, "Booking")
}

// MarkConfirmed moves a PENDING booking to CONFIRMED/PAID and reports false
// if the booking was no longer pending.
func (r BookingRepository) MarkConfirmed(ctx context.Context, id string) (bool, error) {
	res, err := r.db().ExecContext(ctx, `
		UPDATE bookings
		SET status = $2, payment_status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4
	`, id, string(models.BookingConfirmed), string(models.PaymentPaid), string(models.BookingPending))
	if err != nil {
		return false, fmt.Errorf("failed to confirm booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

func (r BookingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return intdb.MapError(err, "Booking")
	}
	return requireAffected(res, "Booking")
}

// CountActiveForTrip counts PENDING and CONFIRMED bookings of a trip.
func (r BookingRepository) CountActiveForTrip(ctx context.Context, tripID string) (int, error) {
	var n int
	err := r.db().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE trip_id = $1 AND status IN ($2, $3)`,
		tripID, string(models.BookingPending), string(models.BookingConfirmed),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return n, nil
}

// ListDueReminders returns confirmed, not yet reminded bookings whose trip starts in (from, until].
func (r BookingRepository) ListDueReminders(ctx context.Context, from, until time.Time, limit int) ([]models.Booking, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+bookingColumns+`, `+bookingSummaryColumns+` `+bookingJoins+`
		WHERE b.status = $1 AND b.reminder_sent_at IS NULL
		  AND t.start_date > $2 AND t.start_date <= $3
		ORDER BY t.start_date ASC
		LIMIT $4`, string(models.BookingConfirmed), from, until, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBookingWithSummaries(rows)
		if err != nil {
			return out, fmt.Errorf("failed to scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r BookingRepository) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	_, err := r.db().ExecContext(ctx, `UPDATE bookings SET reminder_sent_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to stamp reminder: %w", err)
	}
	return nil
}

func nonNilPassengers(p []models.Passenger) []models.Passenger {
	if p == nil {
		return []models.Passenger{}
	}
	return p
}
