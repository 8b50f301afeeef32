package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/mustafa2080/tourism-API/internal/domain/models"
)

const (
	testTripID    = "6f1c1a52-8d0e-4c39-9a43-1f3a7c1b0b11"
	testBookingID = "0b8d3c3e-6a3f-4d7a-8f12-5c9e2d7a4e21"
	testUserID    = "3a7e9f10-2b4c-4e5d-8f6a-7b8c9d0e1f23"
	otherUserID   = "9c1d2e3f-4a5b-4c6d-8e7f-8091a2b3c4d5"
)

var fixedNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var tripCols = []string{
	"id", "title", "slug", "description", "itinerary", "price", "currency", "duration_days",
	"start_date", "end_date", "destinations", "tags", "seats_available", "total_seats", "status",
	"created_by_id", "created_at", "updated_at",
}

func tripRow(status models.TripStatus, seats, total int) *sqlmock.Rows {
	start := fixedNow.Add(10 * 24 * time.Hour)
	return sqlmock.NewRows(tripCols).AddRow(
		testTripID, "Nile Cruise", "nile-cruise", "Five days on the Nile", "Day 1: Luxor", 450.0, "USD", 5,
		start, nil, "{luxor,aswan}", "{river}", seats, total, string(status),
		nil, fixedNow, fixedNow,
	)
}

var bookingCols = []string{
	"id", "trip_id", "user_id", "passengers", "total_price", "booking_reference",
	"status", "payment_status", "booking_date", "cancelled_at", "cancellation_reason",
	"reminder_sent_at", "created_at", "updated_at",
}

var bookingSummaryCols = []string{
	"t_id", "t_title", "t_slug", "t_price", "t_currency", "t_duration", "t_start", "t_end",
	"u_id", "u_name", "u_email", "u_phone",
}

type bookingFixture struct {
	ownerID    string
	passengers string
	total      float64
	status     models.BookingStatus
	payment    models.PaymentStatus
	reason     any
	cancelled  any
}

func pendingFixture() bookingFixture {
	return bookingFixture{
		ownerID:    testUserID,
		passengers: `[{"name":"Ann"},{"name":"Bob"}]`,
		total:      900,
		status:     models.BookingPending,
		payment:    models.PaymentPending,
	}
}

func (f bookingFixture) values() []driver.Value {
	return []driver.Value{
		testBookingID, testTripID, f.ownerID, f.passengers, f.total, "ST-MF3K2Q1-A1B2C3",
		string(f.status), string(f.payment), nil, f.cancelled, f.reason,
		nil, fixedNow, fixedNow,
	}
}

// lockedRow is the shape of BookingRepository.GetByIDForUpdate.
func (f bookingFixture) lockedRow() *sqlmock.Rows {
	return sqlmock.NewRows(bookingCols).AddRow(f.values()...)
}

// fullRow is the shape of BookingRepository.GetByID.
func (f bookingFixture) fullRow() *sqlmock.Rows {
	cols := append(append([]string{}, bookingCols...), bookingSummaryCols...)
	vals := append(f.values(),
		testTripID, "Nile Cruise", "nile-cruise", 450.0, "USD", 5, fixedNow.Add(10*24*time.Hour), nil,
		f.ownerID, "Ann", "ann@example.com", "",
	)
	return sqlmock.NewRows(cols).AddRow(vals...)
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (r *recordingAudit) LogAction(_ context.Context, e models.AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordingAudit) actions() []models.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AuditAction, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	last  models.Booking
	token string
}

func (n *recordingNotifier) record(kind string, b models.Booking) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, kind)
	n.last = b
	return "test-" + kind, nil
}

func (n *recordingNotifier) sent(kind string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, c := range n.calls {
		if c == kind {
			return true
		}
	}
	return false
}

func (n *recordingNotifier) SendBookingConfirmation(_ context.Context, b models.Booking, _ models.UserSummary, _ models.TripSummary) (string, error) {
	return n.record("confirmation", b)
}

func (n *recordingNotifier) SendBookingCancellation(_ context.Context, b models.Booking, _ models.UserSummary, _ models.TripSummary) (string, error) {
	return n.record("cancellation", b)
}

func (n *recordingNotifier) SendBookingReminder(_ context.Context, b models.Booking, _ models.UserSummary, _ models.TripSummary, _ int) (string, error) {
	return n.record("reminder", b)
}

func (n *recordingNotifier) SendPasswordResetEmail(_ context.Context, _ models.UserSummary, token string) (string, error) {
	n.mu.Lock()
	n.token = token
	n.mu.Unlock()
	return n.record("reset", models.Booking{})
}

func (n *recordingNotifier) SendWelcomeEmail(_ context.Context, _ models.UserSummary) (string, error) {
	return n.record("welcome", models.Booking{})
}
