package models

import (
	"time"

	"github.com/google/uuid"
)

// Route statuses
const (
	RouteStatusPlanned    = "planned"
	RouteStatusInProgress = "in_progress"
	RouteStatusCompleted  = "completed"
	RouteStatusCancelled  = "cancelled"
)

// Vehicle statuses
const (
	VehicleStatusAvailable   = "available"
	VehicleStatusOnRoute     = "on_route"
	VehicleStatusMaintenance = "maintenance"
)

type Vehicle struct {
	ID        int       `json:"id"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Plate     string    `json:"plate"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Route is an ordered worklist of deliveries for one driver-date-period
// combination. It auto-completes when every delivery is delivered.
type Route struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Date              time.Time  `json:"date"`
	Period            string     `json:"period"`
	DepartureTime     time.Time  `json:"departure_time"`
	PlannedReturnTime *time.Time `json:"planned_return_time,omitempty"`
	ActualReturnTime  *time.Time `json:"actual_return_time,omitempty"`
	VehicleID         *int       `json:"vehicle_id,omitempty"`
	DriverIDs         []int      `json:"driver_ids,omitempty"`
	Comment           string     `json:"comment,omitempty"`
	Status            string     `json:"status"`
	CreatedByUserID   *int       `json:"created_by_user_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// RouteAssignment is the join row carrying the traversal order of a
// delivery within a route. Order indexes may have gaps after removals;
// traversal is by ascending order, not contiguity.
type RouteAssignment struct {
	ID         int       `json:"id"`
	RouteID    uuid.UUID `json:"route_id"`
	DeliveryID uuid.UUID `json:"delivery_id"`
	OrderIndex int       `json:"order_index"`
	AddedAt    time.Time `json:"added_at"`
}

// CreateRouteRequest is the request body for creating a route
type CreateRouteRequest struct {
	Name          string `json:"name"`
	Date          string `json:"date"` // YYYY-MM-DD
	Period        string `json:"period"`
	DepartureTime string `json:"departure_time"` // HH:MM
	VehicleID     *int   `json:"vehicle_id"`
	DriverIDs     []int  `json:"driver_ids"`
	Comment       string `json:"comment"`
}

// AddToRouteRequest inserts a delivery into a route, optionally at a
// specific position (existing assignments at or after it shift by one).
type AddToRouteRequest struct {
	RouteID    uuid.UUID `json:"route_id"`
	DeliveryID uuid.UUID `json:"delivery_id"`
	Position   *int      `json:"position"`
}

// ReorderRouteRequest supplies the full desired delivery ordering.
// IDs omitted from the list keep their old order value, which may
// produce ties; callers are expected to send the complete list.
type ReorderRouteRequest struct {
	DeliveryIDs []uuid.UUID `json:"delivery_ids"`
}
