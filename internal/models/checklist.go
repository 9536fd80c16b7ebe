package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Checklist statuses
const (
	ChecklistStatusDraft      = "draft"
	ChecklistStatusAwaiting   = "awaiting"
	ChecklistStatusInProgress = "in_progress"
	ChecklistStatusValidated  = "validated"
	ChecklistStatusIncomplete = "incomplete"
)

// Item verification statuses
const (
	ItemStatusPending  = "pending"
	ItemStatusApproved = "approved"
	ItemStatusRejected = "rejected"
)

// Item history change kinds
const (
	ItemChangeQuantity = "quantity_changed"
	ItemChangeAdded    = "added"
	ItemChangeDeleted  = "deleted"
)

// Checklist is the required-items manifest for one event/order.
// Its status is derived from the items' verification states except
// when a verifier finalizes it explicitly.
type Checklist struct {
	ID              uuid.UUID  `json:"id"`
	OrderNumber     string     `json:"order_number"`
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	DeliveryID      *uuid.UUID `json:"delivery_id,omitempty"`
	CreatedByUserID *int       `json:"created_by_user_id,omitempty"`
	VerifierUserID  *int       `json:"verifier_user_id,omitempty"`
	EventDate       time.Time  `json:"event_date"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	VerifierNotes   string     `json:"verifier_notes,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ChecklistItem represents one quantity of one catalog object required
// for an event. Owned exclusively by its checklist.
type ChecklistItem struct {
	ID                       int             `json:"id"`
	ChecklistID              uuid.UUID       `json:"checklist_id"`
	ObjectID                 int             `json:"object_id"`
	ObjectName               string          `json:"object_name,omitempty"`   // joined for display
	ObjectUnit               string          `json:"object_unit,omitempty"`   // joined for display
	CategoryName             string          `json:"category_name,omitempty"` // joined for display
	Quantity                 decimal.Decimal `json:"quantity"`
	SortOrder                int             `json:"sort_order"`
	Status                   string          `json:"status"`
	VerifiedAt               *time.Time      `json:"verified_at,omitempty"`
	VerifiedByUserID         *int            `json:"verified_by_user_id,omitempty"`
	ChangedSinceVerification bool            `json:"changed_since_verification"`
	Notes                    string          `json:"notes,omitempty"`
	CreatedAt                time.Time       `json:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at"`
}

// ChecklistItemHistory is an immutable audit record of one item change.
// The item reference is nulled when the item is deleted; the checklist
// reference and the denormalized object fields keep the record readable.
type ChecklistItemHistory struct {
	ID              int              `json:"id"`
	ItemID          *int             `json:"item_id,omitempty"`
	ChecklistID     uuid.UUID        `json:"checklist_id"`
	QuantityBefore  *decimal.Decimal `json:"quantity_before,omitempty"`
	QuantityAfter   decimal.Decimal  `json:"quantity_after"`
	ChangeKind      string           `json:"change_kind"`
	ChangedByUserID *int             `json:"changed_by_user_id,omitempty"`
	ObjectName      string           `json:"object_name"`
	ObjectUnit      string           `json:"object_unit"`
	CategoryName    string           `json:"category_name"`
	Notes           string           `json:"notes,omitempty"`
	ChangedAt       time.Time        `json:"changed_at"`
}

// CreateChecklistRequest is the request body for creating a checklist
type CreateChecklistRequest struct {
	OrderNumber string                       `json:"order_number"`
	Name        string                       `json:"name"`
	EventDate   string                       `json:"event_date"` // YYYY-MM-DD
	Notes       string                       `json:"notes"`
	Items       []CreateChecklistItemRequest `json:"items"`
}

// CreateChecklistItemRequest describes one item to add
type CreateChecklistItemRequest struct {
	ObjectID  int    `json:"object_id"`
	Quantity  string `json:"quantity"`
	SortOrder int    `json:"sort_order"`
}

// UpdateItemRequest is the request body for editing an item
type UpdateItemRequest struct {
	Quantity *string `json:"quantity,omitempty"`
	ObjectID *int    `json:"object_id,omitempty"`
}

// FinalizeChecklistRequest closes out the verification workflow
type FinalizeChecklistRequest struct {
	Status string `json:"status"` // validated or incomplete
	Notes  string `json:"notes"`
}
