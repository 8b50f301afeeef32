package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mustafa2080/tourism-API/internal/domain/models"
	"github.com/mustafa2080/tourism-API/internal/http/middleware"
)

type passengerRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"omitempty,max=20"`
}

type createBookingRequest struct {
	Passengers  []passengerRequest `json:"passengers" binding:"omitempty,max=50,dive"`
	BookingDate *string            `json:"bookingDate"`
}

type updateBookingRequest struct {
	Passengers  *[]passengerRequest `json:"passengers" binding:"omitempty,max=50,dive"`
	BookingDate *string             `json:"bookingDate"`
}

type cancelBookingRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

func toPassengers(in []passengerRequest) ([]models.Passenger, error) {
	out := make([]models.Passenger, 0, len(in))
	for i, p := range in {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fieldError("passengers["+strconv.Itoa(i)+"].name", "name is required")
		}
		out = append(out, models.Passenger{
			Name:  name,
			Email: strings.ToLower(strings.TrimSpace(p.Email)),
			Phone: strings.TrimSpace(p.Phone),
		})
	}
	return out, nil
}

func bookingStatusQuery(c *gin.Context) (models.BookingStatus, error) {
	raw := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	if raw == "" {
		return "", nil
	}
	st := models.BookingStatus(raw)
	if !st.Valid() {
		return "", fieldError("status", "status must be one of: PENDING, CONFIRMED, CANCELLED, REFUNDED")
	}
	return st, nil
}

// POST /api/v1/trips/:tripId/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	tripID, ok := uuidParam(c, "tripId")
	if !ok {
		return
	}
	var req createBookingRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	passengers, err := toPassengers(req.Passengers)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	date, err := optionalDate("bookingDate", req.BookingDate)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	b, err := h.Bookings.Create(c.Request.Context(), tripID, middleware.Actor(c), models.BookingInput{Passengers: passengers, BookingDate: date})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Booking created successfully", gin.H{"booking": b})
}

// GET /api/v1/bookings
func (h *Handler) ListMyBookings(c *gin.Context) {
	status, err := bookingStatusQuery(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	page, err := pageParams(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	items, p, err := h.Bookings.ListForUser(c.Request.Context(), middleware.UserID(c), status, page)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondPage(c, "Bookings retrieved successfully", items, p)
}

// GET /api/v1/bookings/:bookingId
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := uuidParam(c, "bookingId")
	if !ok {
		return
	}
	b, err := h.Bookings.Get(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Booking retrieved successfully", gin.H{"booking": b})
}

// PUT /api/v1/bookings/:bookingId
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := uuidParam(c, "bookingId")
	if !ok {
		return
	}
	var req updateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	var patch models.BookingUpdate
	if req.Passengers != nil {
		passengers, err := toPassengers(*req.Passengers)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		patch.Passengers = &passengers
	}
	date, err := optionalDate("bookingDate", req.BookingDate)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	patch.BookingDate = date

	b, err := h.Bookings.Update(c.Request.Context(), id, middleware.Actor(c), patch)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Booking updated successfully", gin.H{"booking": b})
}

// PUT /api/v1/bookings/:bookingId/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := uuidParam(c, "bookingId")
	if !ok {
		return
	}
	var req cancelBookingRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if req.Reason != nil {
		r := strings.TrimSpace(*req.Reason)
		req.Reason = &r
		if r == "" {
			req.Reason = nil
		}
	}
	b, err := h.Bookings.Cancel(c.Request.Context(), id, middleware.Actor(c), req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Booking cancelled successfully", gin.H{"booking": b})
}

// POST /api/v1/bookings/:bookingId/confirm
func (h *Handler) ConfirmBooking(c *gin.Context) {
	id, ok := uuidParam(c, "bookingId")
	if !ok {
		return
	}
	b, err := h.Bookings.Confirm(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Booking confirmed successfully", gin.H{"booking": b})
}

// DELETE /api/v1/bookings/:bookingId
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := uuidParam(c, "bookingId")
	if !ok {
		return
	}
	if err := h.Bookings.Delete(c.Request.Context(), id, middleware.Actor(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Booking deleted successfully", nil)
}

// GET /api/v1/admin/bookings
func (h *Handler) ListAllBookings(c *gin.Context) {
	status, err := bookingStatusQuery(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	tripID, err := queryUUID(c, "tripId")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	userID, err := queryUUID(c, "userId")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	page, err := pageParams(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	items, p, err := h.Bookings.ListAdmin(c.Request.Context(), models.BookingFilter{UserID: userID, TripID: tripID, Status: status}, page)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondPage(c, "Bookings retrieved successfully", items, p)
}

