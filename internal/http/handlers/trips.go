package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mustafa2080/tourism-API/internal/domain/models"
	"github.com/mustafa2080/tourism-API/internal/http/middleware"
	"github.com/mustafa2080/tourism-API/internal/utils"
)

type createTripRequest struct {
	Title        string   `json:"title" binding:"required,min=3,max=200"`
	Description  string   `json:"description" binding:"max=5000"`
	Itinerary    string   `json:"itinerary" binding:"max=10000"`
	Price        float64  `json:"price" binding:"required,gt=0"`
	Currency     string   `json:"currency" binding:"omitempty,currency"`
	DurationDays int      `json:"durationDays" binding:"required,min=1,max=365"`
	StartDate    *string  `json:"startDate"`
	EndDate      *string  `json:"endDate"`
	Destinations []string `json:"destinations" binding:"omitempty,max=20,dive,max=100"`
	Tags         []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	TotalSeats   int      `json:"totalSeats" binding:"required,min=1,max=1000"`
}

type updateTripRequest struct {
	Title        *string   `json:"title" binding:"omitempty,min=3,max=200"`
	Description  *string   `json:"description" binding:"omitempty,max=5000"`
	Itinerary    *string   `json:"itinerary" binding:"omitempty,max=10000"`
	Price        *float64  `json:"price" binding:"omitempty,gt=0"`
	Currency     *string   `json:"currency" binding:"omitempty,currency"`
	DurationDays *int      `json:"durationDays" binding:"omitempty,min=1,max=365"`
	StartDate    *string   `json:"startDate"`
	EndDate      *string   `json:"endDate"`
	Destinations *[]string `json:"destinations" binding:"omitempty,max=20,dive,max=100"`
	Tags         *[]string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
}

type overrideAvailabilityRequest struct {
	SeatsAvailable *int `json:"seatsAvailable" binding:"required"`
}

func tripFilterFromQuery(c *gin.Context) (models.TripFilter, error) {
	f := models.TripFilter{
		Q:           strings.TrimSpace(c.Query("q")),
		Destination: strings.TrimSpace(c.Query("destination")),
		Tags:        utils.SplitList(c.Query("tags")),
	}
	var err error
	if f.StartDate, err = queryDate(c, "startDate"); err != nil {
		return f, err
	}
	if f.EndDate, err = queryDate(c, "endDate"); err != nil {
		return f, err
	}
	if f.PriceMin, err = queryFloat(c, "priceMin"); err != nil {
		return f, err
	}
	if f.PriceMax, err = queryFloat(c, "priceMax"); err != nil {
		return f, err
	}
	if f.DurationMin, err = queryInt(c, "durationMin"); err != nil {
		return f, err
	}
	if f.DurationMax, err = queryInt(c, "durationMax"); err != nil {
		return f, err
	}
	switch s := models.TripSort(strings.ToLower(strings.TrimSpace(c.Query("sort")))); s {
	case "":
	case models.SortNewest, models.SortOldest, models.SortPriceAsc, models.SortPriceDesc, models.SortDurationAsc, models.SortDurationDesc:
		f.Sort = s
	default:
		return f, fieldError("sort", "sort must be one of: newest, oldest, price-asc, price-desc, duration-asc, duration-desc")
	}
	return f, nil
}

func (h *Handler) listTrips(c *gin.Context, f models.TripFilter) {
	page, err := pageParams(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	items, p, err := h.Trips.List(c.Request.Context(), f, page)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondPage(c, "Trips retrieved successfully", items, p)
}

// GET /api/v1/trips
func (h *Handler) ListTrips(c *gin.Context) {
	f, err := tripFilterFromQuery(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	h.listTrips(c, f)
}

// GET /api/v1/admin/trips
func (h *Handler) ListAllTrips(c *gin.Context) {
	f, err := tripFilterFromQuery(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	f.IncludeUnpublished = true
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("status"))); raw != "" {
		st := models.TripStatus(raw)
		if !st.Valid() {
			RespondDomainError(c, fieldError("status", "status must be one of: DRAFT, PUBLISHED, ARCHIVED"))
			return
		}
		f.Status = st
	}
	h.listTrips(c, f)
}

// GET /api/v1/trips/:tripId
func (h *Handler) GetTrip(c *gin.Context) {
	t, err := h.Trips.Get(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Trip retrieved successfully", gin.H{"trip": t})
}

// GET /api/v1/trips/:tripId/availability
func (h *Handler) GetTripAvailability(c *gin.Context) {
	av, err := h.Trips.Availability(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Availability retrieved successfully", av)
}

// GET /api/v1/trips/:tripId/itinerary
func (h *Handler) GetTripItinerary(c *gin.Context) {
	it, err := h.Trips.Itinerary(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Itinerary retrieved successfully", it)
}

// POST /api/v1/trips
func (h *Handler) CreateTrip(c *gin.Context) {
	var req createTripRequest
	if !bindJSON(c, &req) {
		return
	}
	start, err := optionalDate("startDate", req.StartDate)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	end, err := optionalDate("endDate", req.EndDate)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if start != nil && end != nil && end.Before(*start) {
		RespondDomainError(c, fieldError("endDate", "endDate must not be before startDate"))
		return
	}

	t, err := h.Trips.Create(c.Request.Context(), middleware.Actor(c), models.TripInput{
		Title:        req.Title,
		Description:  req.Description,
		Itinerary:    req.Itinerary,
		Price:        req.Price,
		Currency:     req.Currency,
		DurationDays: req.DurationDays,
		StartDate:    start,
		EndDate:      end,
		Destinations: req.Destinations,
		Tags:         req.Tags,
		TotalSeats:   req.TotalSeats,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Trip created successfully", gin.H{"trip": t})
}

// PUT /api/v1/trips/:tripId
func (h *Handler) UpdateTrip(c *gin.Context) {
	id, ok := uuidParam(c, "tripId")
	if !ok {
		return
	}
	var req updateTripRequest
	if !bindJSON(c, &req) {
		return
	}
	u := models.TripUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Itinerary:    req.Itinerary,
		Price:        req.Price,
		Currency:     req.Currency,
		DurationDays: req.DurationDays,
		Destinations: req.Destinations,
		Tags:         req.Tags,
	}
	var err error
	if u.StartDate, err = optionalDate("startDate", req.StartDate); err != nil {
		RespondDomainError(c, err)
		return
	}
	if u.EndDate, err = optionalDate("endDate", req.EndDate); err != nil {
		RespondDomainError(c, err)
		return
	}

	t, err := h.Trips.Update(c.Request.Context(), middleware.Actor(c), id, u)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Trip updated successfully", gin.H{"trip": t})
}

// DELETE /api/v1/trips/:tripId
func (h *Handler) DeleteTrip(c *gin.Context) {
	id, ok := uuidParam(c, "tripId")
	if !ok {
		return
	}
	if err := h.Trips.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Trip deleted successfully", nil)
}

// POST /api/v1/trips/:tripId/publish
func (h *Handler) PublishTrip(c *gin.Context) {
	id, ok := uuidParam(c, "tripId")
	if !ok {
		return
	}
	t, err := h.Trips.Publish(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Trip published successfully", gin.H{"trip": t})
}

// POST /api/v1/trips/:tripId/unpublish
func (h *Handler) UnpublishTrip(c *gin.Context) {
	id, ok := uuidParam(c, "tripId")
	if !ok {
		return
	}
	t, err := h.Trips.Unpublish(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Trip unpublished successfully", gin.H{"trip": t})
}

// PUT /api/v1/admin/trips/:tripId/override-availability
func (h *Handler) OverrideTripAvailability(c *gin.Context) {
	id, ok := uuidParam(c, "tripId")
	if !ok {
		return
	}
	var req overrideAvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Trips.OverrideAvailability(c.Request.Context(), middleware.Actor(c), id, *req.SeatsAvailable)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Availability overridden successfully", out)
}
