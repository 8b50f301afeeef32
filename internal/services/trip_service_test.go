package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
)

const slugTakenSQL = `SELECT EXISTS \(SELECT 1 FROM trips WHERE slug = \$1`

func adminActor() domain.RequestContext {
	return domain.RequestContext{UserID: otherUserID, Role: domain.RoleAdmin}
}

func TestCreateTripPicksFreeSlug(t *testing.T) {
	db, mock := newMockDB(t)
	audit := &recordingAudit{}
	svc := TripService{DB: db, Audit: audit}

	mock.ExpectQuery(slugTakenSQL).WithArgs("nile-cruise", "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(slugTakenSQL).WithArgs("nile-cruise-1", "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO trips").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(fixedNow, fixedNow))

	trip, err := svc.Create(context.Background(), adminActor(), models.TripInput{
		Title: "  Nile   Cruise ", Price: 450, DurationDays: 5, TotalSeats: 12, Currency: "eur",
	})
	require.NoError(t, err)
	assert.Equal(t, "nile-cruise-1", trip.Slug)
	assert.Equal(t, "Nile Cruise", trip.Title)
	assert.Equal(t, "EUR", trip.Currency)
	assert.Equal(t, models.TripDraft, trip.Status)
	assert.Equal(t, 12, trip.SeatsAvailable)
	assert.Equal(t, 12, trip.TotalSeats)
	assert.Equal(t, []string{}, trip.Destinations)
	assert.Equal(t, []models.AuditAction{models.AuditTripCreated}, audit.actions())
}

func TestCreateTripDefaultsCurrency(t *testing.T) {
	db, mock := newMockDB(t)
	svc := TripService{DB: db}

	mock.ExpectQuery(slugTakenSQL).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO trips").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(fixedNow, fixedNow))

	trip, err := svc.Create(context.Background(), adminActor(), models.TripInput{Title: "Alps", Price: 100, DurationDays: 2, TotalSeats: 4})
	require.NoError(t, err)
	assert.Equal(t, "USD", trip.Currency)
}

func TestGetTripBySlugOrID(t *testing.T) {
	db, mock := newMockDB(t)
	svc := TripService{DB: db}

	mock.ExpectQuery(`FROM trips WHERE id = \$1`).WithArgs(testTripID).WillReturnRows(tripRow(models.TripPublished, 5, 10))
	trip, err := svc.Get(context.Background(), testTripID)
	require.NoError(t, err)
	assert.Equal(t, "nile-cruise", trip.Slug)

	mock.ExpectQuery(`FROM trips WHERE slug = \$1`).WithArgs("nile-cruise").WillReturnRows(tripRow(models.TripPublished, 5, 10))
	_, err = svc.Get(context.Background(), " Nile-Cruise ")
	require.NoError(t, err)

	mock.ExpectQuery(`FROM trips WHERE slug = \$1`).WillReturnRows(sqlmock.NewRows(tripCols))
	_, err = svc.Get(context.Background(), "nowhere")
	assert.True(t, domain.IsNotFound(err))
}

func TestPublishAndUnpublish(t *testing.T) {
	db, mock := newMockDB(t)
	audit := &recordingAudit{}
	svc := TripService{DB: db, Audit: audit}
	ctx := context.Background()

	mock.ExpectQuery(`FROM trips WHERE id = \$1`).WillReturnRows(tripRow(models.TripPublished, 5, 10))
	_, err := svc.Publish(ctx, adminActor(), testTripID)
	require.Error(t, err)
	assert.Equal(t, "Trip is already published", err.Error())

	mock.ExpectQuery(`FROM trips WHERE id = \$1`).WillReturnRows(tripRow(models.TripDraft, 5, 10))
	mock.ExpectExec(`UPDATE trips SET status = \$2`).WithArgs(testTripID, "PUBLISHED").WillReturnResult(sqlmock.NewResult(0, 1))
	trip, err := svc.Publish(ctx, adminActor(), testTripID)
	require.NoError(t, err)
	assert.Equal(t, models.TripPublished, trip.Status)

	mock.ExpectQuery(`FROM trips WHERE id = \$1`).WillReturnRows(tripRow(models.TripArchived, 5, 10))
	_, err = svc.Unpublish(ctx, adminActor(), testTripID)
	require.Error(t, err)
	assert.Equal(t, "Trip is not published", err.Error())

	assert.Equal(t, []models.AuditAction{models.AuditTripPublished}, audit.actions())
}

func TestDeleteTripArchives(t *testing.T) {
	db, mock := newMockDB(t)
	svc := TripService{DB: db}

	mock.ExpectExec(`UPDATE trips SET status = \$2`).WithArgs(testTripID, "ARCHIVED").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, svc.Delete(context.Background(), adminActor(), testTripID))

	mock.ExpectExec(`UPDATE trips SET status = \$2`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.True(t, domain.IsNotFound(svc.Delete(context.Background(), adminActor(), "missing")))
}

func TestOverrideAvailability(t *testing.T) {
	db, mock := newMockDB(t)
	audit := &recordingAudit{}
	svc := TripService{DB: db, Audit: audit}

	_, err := svc.OverrideAvailability(context.Background(), adminActor(), testTripID, -1)
	assert.True(t, domain.IsValidation(err))

	// Values above total_seats are accepted.
	mock.ExpectQuery(`UPDATE trips SET seats_available = \$2`).WithArgs(testTripID, 25).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "seats_available", "total_seats"}).AddRow(testTripID, "Nile Cruise", 25, 10))
	out, err := svc.OverrideAvailability(context.Background(), adminActor(), testTripID, 25)
	require.NoError(t, err)
	assert.Equal(t, models.SeatOverride{ID: testTripID, Title: "Nile Cruise", SeatsAvailable: 25, TotalSeats: 10}, out)
	assert.Equal(t, []models.AuditAction{models.AuditTripUpdated}, audit.actions())
}

func TestAvailability(t *testing.T) {
	db, mock := newMockDB(t)
	svc := TripService{DB: db, Now: func() time.Time { return fixedNow }}

	mock.ExpectQuery(`FROM trips WHERE id = \$1`).WillReturnRows(tripRow(models.TripPublished, 0, 10))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).WithArgs(testTripID, "PENDING", "CONFIRMED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	av, err := svc.Availability(context.Background(), testTripID)
	require.NoError(t, err)
	assert.Equal(t, 0, av.AvailableSeats)
	assert.Equal(t, 4, av.ConfirmedBookings)
	assert.False(t, av.IsAvailable)
}
