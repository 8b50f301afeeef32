package models

import "time"

type TripStatus string

const (
	TripDraft     TripStatus = "DRAFT"
	TripPublished TripStatus = "PUBLISHED"
	TripArchived  TripStatus = "ARCHIVED"
)

func (s TripStatus) Valid() bool {
	switch s {
	case TripDraft, TripPublished, TripArchived:
		return true
	}
	return false
}

var Currencies = []string{"USD", "EUR", "GBP", "SAR", "AED", "EGP"}

type Trip struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Description    string     `json:"description"`
	Itinerary      string     `json:"itinerary"`
	Price          float64    `json:"price"`
	Currency       string     `json:"currency"`
	DurationDays   int        `json:"durationDays"`
	StartDate      *time.Time `json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
	Destinations   []string   `json:"destinations"`
	Tags           []string   `json:"tags"`
	SeatsAvailable int        `json:"seatsAvailable"`
	TotalSeats     int        `json:"totalSeats"`
	Status         TripStatus `json:"status"`
	CreatedByID    string     `json:"createdById"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Bookable reports whether new bookings may be placed on the trip.
func (t Trip) Bookable() bool {
	return t.Status == TripPublished && t.SeatsAvailable > 0
}

func (t Trip) Summary() TripSummary {
	return TripSummary{
		ID:           t.ID,
		Title:        t.Title,
		Slug:         t.Slug,
		Price:        t.Price,
		Currency:     t.Currency,
		DurationDays: t.DurationDays,
		StartDate:    t.StartDate,
		EndDate:      t.EndDate,
	}
}

// TripSummary is the trip excerpt embedded in bookings.
type TripSummary struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Price        float64    `json:"price"`
	Currency     string     `json:"currency"`
	DurationDays int        `json:"durationDays"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
}

type TripAvailability struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	SeatsAvailable    int        `json:"seatsAvailable"`
	TotalSeats        int        `json:"totalSeats"`
	StartDate         *time.Time `json:"startDate"`
	EndDate           *time.Time `json:"endDate"`
	Status            TripStatus `json:"status"`
	ConfirmedBookings int        `json:"confirmedBookings"`
	AvailableSeats    int        `json:"availableSeats"`
	IsAvailable       bool       `json:"isAvailable"`
}

type TripItinerary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Itinerary    string `json:"itinerary"`
	DurationDays int    `json:"durationDays"`
}

type SeatOverride struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	SeatsAvailable int    `json:"seatsAvailable"`
	TotalSeats     int    `json:"totalSeats"`
}

type TripInput struct {
	Title        string
	Description  string
	Itinerary    string
	Price        float64
	Currency     string
	DurationDays int
	StartDate    *time.Time
	EndDate      *time.Time
	Destinations []string
	Tags         []string
	TotalSeats   int
}

// TripUpdate supports PATCH-style updates via key presence. Seat counters are
// not part of it; they move only through bookings and the admin override.
type TripUpdate struct {
	Title        *string
	Slug         *string
	Description  *string
	Itinerary    *string
	Price        *float64
	Currency     *string
	DurationDays *int
	StartDate    *time.Time
	EndDate      *time.Time
	Destinations *[]string
	Tags         *[]string
}

type TripSort string

const (
	SortNewest       TripSort = "newest"
	SortOldest       TripSort = "oldest"
	SortPriceAsc     TripSort = "price-asc"
	SortPriceDesc    TripSort = "price-desc"
	SortDurationAsc  TripSort = "duration-asc"
	SortDurationDesc TripSort = "duration-desc"
)

type TripFilter struct {
	Q                  string
	Destination        string
	StartDate          *time.Time
	EndDate            *time.Time
	PriceMin           *float64
	PriceMax           *float64
	DurationMin        *int
	DurationMax        *int
	Tags               []string
	Status             TripStatus
	IncludeUnpublished bool
	Sort               TripSort
}
