package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
	"github.com/mustafa2080/tourism-API/internal/http/middleware"
	"github.com/mustafa2080/tourism-API/internal/services"
)

const (
	tripID     = "6f1c1a52-8d0e-4c39-9a43-1f3a7c1b0b11"
	bookingID  = "0b8d3c3e-6a3f-4d7a-8f12-5c9e2d7a4e21"
	userID     = "3a7e9f10-2b4c-4e5d-8f6a-7b8c9d0e1f23"
	strangerID = "9c1d2e3f-4a5b-4c6d-8e7f-8091a2b3c4d5"
)

var now = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

type staticAuth struct{ user models.User }

func (a staticAuth) Authenticate(context.Context, string) (models.User, error) {
	if a.user.ID == "" {
		return models.User{}, domain.UnauthorizedError{Msg: "Invalid token"}
	}
	return a.user, nil
}

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

// testEngine mounts one route behind the request id and auth middleware.
func testEngine(as models.User, method, path string, handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Authenticate(staticAuth{user: as}))
	r.Handle(method, path, handler)
	return r
}

func caller() models.User {
	return models.User{ID: userID, Role: domain.RoleUser, IsActive: true}
}

type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Message string       `json:"message"`
		Details []FieldError `json:"details"`
		Stack   string       `json:"stack"`
	} `json:"error"`
	Pagination *domain.Pagination `json:"pagination"`
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

var tripCols = []string{
	"id", "title", "slug", "description", "itinerary", "price", "currency", "duration_days",
	"start_date", "end_date", "destinations", "tags", "seats_available", "total_seats", "status",
	"created_by_id", "created_at", "updated_at",
}

func publishedTrip(seats int) *sqlmock.Rows {
	return sqlmock.NewRows(tripCols).AddRow(
		tripID, "Nile Cruise", "nile-cruise", "", "", 450.0, "USD", 5,
		now.Add(240*time.Hour), nil, "{}", "{}", seats, 10, "PUBLISHED",
		nil, now, now,
	)
}

func bookingOf(owner string) *sqlmock.Rows {
	cols := []string{
		"id", "trip_id", "user_id", "passengers", "total_price", "booking_reference",
		"status", "payment_status", "booking_date", "cancelled_at", "cancellation_reason",
		"reminder_sent_at", "created_at", "updated_at",
		"t_id", "t_title", "t_slug", "t_price", "t_currency", "t_duration", "t_start", "t_end",
		"u_id", "u_name", "u_email", "u_phone",
	}
	return sqlmock.NewRows(cols).AddRow(
		bookingID, tripID, owner, `[{"name":"Ann"}]`, 450.0, "ST-MF3K2Q1-A1B2C3",
		"PENDING", "PENDING", nil, nil, nil,
		nil, now, now,
		tripID, "Nile Cruise", "nile-cruise", 450.0, "USD", 5, now.Add(240*time.Hour), nil,
		owner, "Ann", "ann@example.com", "",
	)
}

func TestCreateBookingRejectsMalformedTripID(t *testing.T) {
	h := &Handler{}
	r := testEngine(caller(), http.MethodPost, "/trips/:tripId/bookings", h.CreateBooking)

	w, out := do(t, r, http.MethodPost, "/trips/nile/bookings", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, out.Success)
	assert.Equal(t, "Validation Error", out.Error.Message)
	require.Len(t, out.Error.Details, 1)
	assert.Equal(t, "tripId", out.Error.Details[0].Field)
}

func TestCreateBookingRejectsBlankPassengerName(t *testing.T) {
	h := &Handler{}
	r := testEngine(caller(), http.MethodPost, "/trips/:tripId/bookings", h.CreateBooking)

	w, out := do(t, r, http.MethodPost, "/trips/"+tripID+"/bookings", `{"passengers":[{"name":"Ann"},{"name":"   "}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, out.Error.Details, 1)
	assert.Equal(t, "passengers[1].name", out.Error.Details[0].Field)

	w, out = do(t, r, http.MethodPost, "/trips/"+tripID+"/bookings", `{"passengers":[{"name":"Ann","email":"nope"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, out.Error.Details, 1)
	assert.Equal(t, "passengers[0].email", out.Error.Details[0].Field)
}

func TestCreateBookingWithoutSeats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM trips WHERE id = \$1 FOR UPDATE`).WithArgs(tripID).WillReturnRows(publishedTrip(1))
	mock.ExpectRollback()

	h := &Handler{Bookings: services.BookingService{DB: db}}
	r := testEngine(caller(), http.MethodPost, "/trips/:tripId/bookings", h.CreateBooking)

	w, out := do(t, r, http.MethodPost, "/trips/"+tripID+"/bookings", `{"passengers":[{"name":"Ann"},{"name":"Bob"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Only 1 seats available", out.Error.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBookingOfAnotherUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE b.id = \$1`).WithArgs(bookingID).WillReturnRows(bookingOf(strangerID))

	h := &Handler{Bookings: services.BookingService{DB: db}}
	r := testEngine(caller(), http.MethodGet, "/bookings/:bookingId", h.GetBooking)

	w, out := do(t, r, http.MethodGet, "/bookings/"+bookingID, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You can only view your own bookings", out.Error.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBookingOwn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE b.id = \$1`).WithArgs(bookingID).WillReturnRows(bookingOf(userID))

	h := &Handler{Bookings: services.BookingService{DB: db}}
	r := testEngine(caller(), http.MethodGet, "/bookings/:bookingId", h.GetBooking)

	w, out := do(t, r, http.MethodGet, "/bookings/"+bookingID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, out.Success)

	var data struct {
		Booking models.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &data))
	assert.Equal(t, "ST-MF3K2Q1-A1B2C3", data.Booking.BookingReference)
	require.NotNil(t, data.Booking.Trip)
	assert.Equal(t, "Nile Cruise", data.Booking.Trip.Title)
}

func TestListMyBookingsQueryValidation(t *testing.T) {
	h := &Handler{}
	r := testEngine(caller(), http.MethodGet, "/bookings", h.ListMyBookings)

	w, out := do(t, r, http.MethodGet, "/bookings?limit=100", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "limit", out.Error.Details[0].Field)

	w, out = do(t, r, http.MethodGet, "/bookings?status=LOST", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "status", out.Error.Details[0].Field)
}

func TestListMyBookingsPaginated(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`ORDER BY b.created_at DESC`).WillReturnRows(bookingOf(userID))

	h := &Handler{Bookings: services.BookingService{DB: db}}
	r := testEngine(caller(), http.MethodGet, "/bookings", h.ListMyBookings)

	w, out := do(t, r, http.MethodGet, "/bookings?page=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, out.Pagination)
	assert.Equal(t, domain.Pagination{Page: 2, Limit: 10, TotalItems: 11, TotalPages: 2, HasNextPage: false, HasPrevPage: true}, *out.Pagination)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	h := &Handler{}
	r := gin.New()
	r.POST("/register", h.Register)

	w, out := do(t, r, http.MethodPost, "/register", `{"name":"Ann","email":"ann@example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, out.Error.Details, 1)
	assert.Equal(t, FieldError{Field: "password", Message: passwordRule}, out.Error.Details[0])
}

func TestMalformedJSONBody(t *testing.T) {
	h := &Handler{}
	r := gin.New()
	r.POST("/login", h.Login)

	w, out := do(t, r, http.MethodPost, "/login", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", out.Error.Message)
}

func TestErrorStackOnlyWhenExposed(t *testing.T) {
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) { RespondDomainError(c, errors.New("db exploded")) })

	w, out := do(t, r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", out.Error.Message)
	assert.Empty(t, out.Error.Stack)

	ExposeErrorStacks(true)
	defer ExposeErrorStacks(false)
	_, out = do(t, r, http.MethodGet, "/boom", "")
	assert.Equal(t, "db exploded", out.Error.Stack)
}

func TestNotFoundRoute(t *testing.T) {
	r := gin.New()
	r.NoRoute(NotFound)

	w, out := do(t, r, http.MethodDelete, "/api/v1/nowhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route DELETE /api/v1/nowhere not found", out.Error.Message)
}

func TestMockUploadAcceptsBody(t *testing.T) {
	h := &Handler{}
	r := gin.New()
	r.PUT("/uploads/mock/:uploadId", h.MockUpload)

	req := httptest.NewRequest(http.MethodPut, "/uploads/mock/"+bookingID, strings.NewReader("binary"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidPassword(t *testing.T) {
	assert.True(t, validPassword("Secret123"))
	assert.False(t, validPassword("secret123"))
	assert.False(t, validPassword("SECRET123"))
	assert.False(t, validPassword("Secretive"))
	assert.False(t, validPassword("Se1"))
}
