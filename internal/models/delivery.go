package models

import (
	"time"

	"github.com/google/uuid"
)

// Delivery statuses
const (
	DeliveryStatusUnassigned = "unassigned"
	DeliveryStatusAssigned   = "assigned"
	DeliveryStatusInProgress = "in_progress"
	DeliveryStatusDelivered  = "delivered"
	DeliveryStatusCancelled  = "cancelled"
)

// Day periods
const (
	PeriodMorning   = "morning"   // 5h-9h
	PeriodMidday    = "midday"    // 9h30-12h30
	PeriodAfternoon = "afternoon" // 13h-20h
)

// DeliveryMode categorizes how an order ships. Modes flagged
// SupportsPickup generate a return-trip pickup after delivery.
type DeliveryMode struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Color          string    `json:"color"`
	SupportsPickup bool      `json:"supports_pickup"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Delivery is a scheduled drop-off or pickup task tied to an order number.
type Delivery struct {
	ID                  uuid.UUID     `json:"id"`
	DeliveryNumber      string        `json:"delivery_number"`
	EventName           string        `json:"event_name,omitempty"`
	ClientName          string        `json:"client_name"`
	ClientPhone         string        `json:"client_phone,omitempty"`
	ClientEmail         string        `json:"client_email,omitempty"`
	OnSiteContact       string        `json:"on_site_contact,omitempty"`
	Address             string        `json:"address"`
	Apartment           string        `json:"apartment,omitempty"`
	AddressLine2        string        `json:"address_line2,omitempty"`
	PostalCode          string        `json:"postal_code,omitempty"`
	City                string        `json:"city"`
	Latitude            *float64      `json:"latitude,omitempty"`
	Longitude           *float64      `json:"longitude,omitempty"`
	PlaceID             string        `json:"place_id,omitempty"`
	DeliveryDate        time.Time     `json:"delivery_date"`
	Period              string        `json:"period"`
	RequestedTime       *time.Time    `json:"requested_time,omitempty"`
	DeliveredAt         *time.Time    `json:"delivered_at,omitempty"`
	ModeID              *int          `json:"mode_id,omitempty"`
	Mode                *DeliveryMode `json:"mode,omitempty"` // joined for display
	GuestCount          int           `json:"guest_count"`
	NeedsCoffee         bool          `json:"needs_coffee"`
	NeedsTea            bool          `json:"needs_tea"`
	NeedsIceBags        bool          `json:"needs_ice_bags"`
	NeedsHotServings    bool          `json:"needs_hot_servings"`
	OtherNeeds          string        `json:"other_needs,omitempty"`
	AdvisorName         string        `json:"advisor_name,omitempty"`
	ChecklistID         *uuid.UUID    `json:"checklist_id,omitempty"`
	Status              string        `json:"status"`
	SpecialInstructions string        `json:"special_instructions,omitempty"`
	InternalNotes       string        `json:"internal_notes,omitempty"`
	IsPickup            bool          `json:"is_pickup"`
	OriginDeliveryID    *uuid.UUID    `json:"origin_delivery_id,omitempty"`
	CreatedByUserID     *int          `json:"created_by_user_id,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// UpsertDeliveryRequest carries already-validated import or manual-entry
// fields. Coordinates, when present, were geocoded upstream.
type UpsertDeliveryRequest struct {
	DeliveryNumber      string   `json:"delivery_number"`
	EventName           string   `json:"event_name"`
	ClientName          string   `json:"client_name"`
	ClientPhone         string   `json:"client_phone"`
	ClientEmail         string   `json:"client_email"`
	OnSiteContact       string   `json:"on_site_contact"`
	Address             string   `json:"address"`
	Apartment           string   `json:"apartment"`
	AddressLine2        string   `json:"address_line2"`
	PostalCode          string   `json:"postal_code"`
	City                string   `json:"city"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	PlaceID             string   `json:"place_id"`
	DeliveryDate        string   `json:"delivery_date"`  // YYYY-MM-DD
	RequestedTime       string   `json:"requested_time"` // HH:MM, optional
	ModeName            string   `json:"mode_name"`
	GuestCount          int      `json:"guest_count"`
	AdvisorName         string   `json:"advisor_name"`
	SpecialInstructions string   `json:"special_instructions"`
}

// MergeDeliveriesRequest selects the deliveries to combine
type MergeDeliveriesRequest struct {
	DeliveryIDs []uuid.UUID `json:"delivery_ids"`
}

// MergeResult reports the outcome of a merge
type MergeResult struct {
	SurvivorID  uuid.UUID `json:"survivor_id"`
	EventName   string    `json:"event_name"`
	GuestCount  int       `json:"guest_count"`
	MergedCount int       `json:"merged_count"`
}
