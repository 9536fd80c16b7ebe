package models

import (
	"time"

	"github.com/google/uuid"
)

// Contract statuses
const (
	ContractStatusPlanned    = "planned"
	ContractStatusInProgress = "in_progress"
	ContractStatusCompleted  = "completed"
	ContractStatusCancelled  = "cancelled"
)

// Contract history action kinds
const (
	ContractActionCreated      = "created"
	ContractActionUpdated      = "updated"
	ContractActionStarted      = "started"
	ContractActionFinished     = "finished"
	ContractActionDrinksReport = "drinks_report"
	ContractActionCancelled    = "cancelled"
)

// Contract is an event-service engagement run by a maitre d'hotel.
// Its delivery and checklist links are populated by the linker.
type Contract struct {
	ID                  uuid.UUID  `json:"id"`
	ContractNumber      string     `json:"contract_number"`
	EventName           string     `json:"event_name"`
	MaitreHotelUserID   *int       `json:"maitre_hotel_user_id,omitempty"`
	DeliveryID          *uuid.UUID `json:"delivery_id,omitempty"`
	ChecklistID         *uuid.UUID `json:"checklist_id,omitempty"`
	ClientName          string     `json:"client_name"`
	ClientPhone         string     `json:"client_phone,omitempty"`
	ClientEmail         string     `json:"client_email,omitempty"`
	OnSiteContact       string     `json:"on_site_contact,omitempty"`
	Address             string     `json:"address"`
	City                string     `json:"city"`
	PostalCode          string     `json:"postal_code,omitempty"`
	EventDate           time.Time  `json:"event_date"`
	PlannedStartTime    time.Time  `json:"planned_start_time"`
	PlannedEndTime      time.Time  `json:"planned_end_time"`
	GuestCount          int        `json:"guest_count"`
	EventRundown        string     `json:"event_rundown,omitempty"`
	SpecialInstructions string     `json:"special_instructions,omitempty"`
	Status              string     `json:"status"`
	ActualStartTime     *time.Time `json:"actual_start_time,omitempty"`
	ActualEndTime       *time.Time `json:"actual_end_time,omitempty"`
	DrinksReport        string     `json:"drinks_report,omitempty"`
	FinalNotes          string     `json:"final_notes,omitempty"`
	CreatedByUserID     *int       `json:"created_by_user_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ContractHistory records one action taken on a contract
type ContractHistory struct {
	ID            int       `json:"id"`
	ContractID    uuid.UUID `json:"contract_id"`
	ActionKind    string    `json:"action_kind"`
	Description   string    `json:"description,omitempty"`
	ActedByUserID *int      `json:"acted_by_user_id,omitempty"`
	ActedAt       time.Time `json:"acted_at"`
}

// Discrepancy describes one consistency mismatch between a contract and
// a linked record. Reported for operator review, never auto-corrected.
type Discrepancy struct {
	Kind     string `json:"kind"`  // number_mismatch, date_mismatch, reverse_link_broken
	Field    string `json:"field"` // delivery or checklist
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// CreateContractRequest is the request body for creating a contract
type CreateContractRequest struct {
	ContractNumber      string `json:"contract_number"`
	EventName           string `json:"event_name"`
	MaitreHotelUserID   *int   `json:"maitre_hotel_user_id"`
	ClientName          string `json:"client_name"`
	ClientPhone         string `json:"client_phone"`
	ClientEmail         string `json:"client_email"`
	OnSiteContact       string `json:"on_site_contact"`
	Address             string `json:"address"`
	City                string `json:"city"`
	PostalCode          string `json:"postal_code"`
	EventDate           string `json:"event_date"`         // YYYY-MM-DD
	PlannedStartTime    string `json:"planned_start_time"` // HH:MM
	PlannedEndTime      string `json:"planned_end_time"`   // HH:MM
	GuestCount          int    `json:"guest_count"`
	EventRundown        string `json:"event_rundown"`
	SpecialInstructions string `json:"special_instructions"`
}
