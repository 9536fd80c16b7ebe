package models

import "time"

// Quote statuses
const (
	QuoteStatusInProgress = "in_progress"
	QuoteStatusSent       = "sent"
	QuoteStatusAccepted   = "accepted"
	QuoteStatusRefused    = "refused"
)

// Quote is a pre-contract proposal. Quote numbers are assigned
// sequentially from a database sequence.
type Quote struct {
	ID              int        `json:"id"`
	QuoteNumber     string     `json:"quote_number"`
	CompanyName     string     `json:"company_name"`
	EventDate       time.Time  `json:"event_date"`
	GuestCount      int        `json:"guest_count"`
	Address         string     `json:"address"`
	WithService     bool       `json:"with_service"`
	WithAlcohol     bool       `json:"with_alcohol"`
	EquipmentRental bool       `json:"equipment_rental"`
	OrderedBy       string     `json:"ordered_by"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Notes           string     `json:"notes,omitempty"`
	Status          string     `json:"status"`
	CreatedByUserID *int       `json:"created_by_user_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
}

// CreateQuoteRequest is the request body for creating a quote
type CreateQuoteRequest struct {
	CompanyName     string `json:"company_name"`
	EventDate       string `json:"event_date"` // YYYY-MM-DD
	GuestCount      int    `json:"guest_count"`
	Address         string `json:"address"`
	WithService     bool   `json:"with_service"`
	WithAlcohol     bool   `json:"with_alcohol"`
	EquipmentRental bool   `json:"equipment_rental"`
	OrderedBy       string `json:"ordered_by"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Notes           string `json:"notes"`
}
