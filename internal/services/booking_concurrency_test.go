package services

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intdb "github.com/mustafa2080/tourism-API/internal/db"
	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
	"github.com/mustafa2080/tourism-API/internal/repositories"
)

// openIntegrationDB connects to TEST_DATABASE_URL and migrates it. Tests that
// need real row locks skip when it is unset.
func openIntegrationDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, intdb.EnsureSchema(ctx, db))
	return db
}

func seedTrip(t *testing.T, db *sql.DB, seats int) (models.User, models.Trip) {
	t.Helper()
	ctx := context.Background()

	u := models.User{
		ID:           uuid.NewString(),
		Name:         "Race Tester",
		Email:        "race-" + uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	require.NoError(t, repositories.UserRepository{DB: db}.Create(ctx, &u))

	trip := models.Trip{
		ID:             uuid.NewString(),
		Title:          "Last Seat",
		Slug:           "last-seat-" + uuid.NewString(),
		Price:          100,
		Currency:       "USD",
		DurationDays:   2,
		Destinations:   []string{},
		Tags:           []string{},
		SeatsAvailable: seats,
		TotalSeats:     10,
		Status:         models.TripPublished,
	}
	require.NoError(t, repositories.TripRepository{DB: db}.Create(ctx, &trip))

	t.Cleanup(func() {
		db.Exec(`DELETE FROM bookings WHERE trip_id = $1`, trip.ID)
		db.Exec(`DELETE FROM trips WHERE id = $1`, trip.ID)
		db.Exec(`DELETE FROM users WHERE id = $1`, u.ID)
	})
	return u, trip
}

func TestConcurrentBookingsForLastSeat(t *testing.T) {
	db := openIntegrationDB(t)
	user, trip := seedTrip(t, db, 1)
	svc := BookingService{DB: db}
	actor := domain.RequestContext{UserID: user.ID, Role: domain.RoleUser}

	const callers = 2
	errs := make([]error, callers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.Create(context.Background(), trip.ID, actor, models.BookingInput{})
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case domain.IsValidation(err):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	after, err := repositories.TripRepository{DB: db}.GetByID(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.SeatsAvailable)

	active, err := repositories.BookingRepository{DB: db}.CountActiveForTrip(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, active)
}
