package services

import (
	"context"
	"errors"
	"time"

	"cheflow-backend/internal/metrics"
	"cheflow-backend/internal/models"
	"cheflow-backend/internal/repositories"
	"cheflow-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RouteStore is the route surface the assignment workflow needs.
type RouteStore interface {
	Create(ctx context.Context, rt *models.Route) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Route, error)
	ListByDate(ctx context.Context, date time.Time, period string) ([]models.Route, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Complete(ctx context.Context, id uuid.UUID) error
	DeliveryProgress(ctx context.Context, id uuid.UUID) (total, delivered int, err error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RouteAssignmentStore manages the ordered delivery-route join rows.
type RouteAssignmentStore interface {
	ListByRoute(ctx context.Context, routeID uuid.UUID) ([]models.RouteAssignment, error)
	GetByDelivery(ctx context.Context, deliveryID uuid.UUID) (*models.RouteAssignment, error)
	Append(ctx context.Context, routeID, deliveryID uuid.UUID) (*models.RouteAssignment, error)
	InsertAt(ctx context.Context, routeID, deliveryID uuid.UUID, position int) (*models.RouteAssignment, error)
	Remove(ctx context.Context, routeID, deliveryID uuid.UUID) error
	Reorder(ctx context.Context, routeID uuid.UUID, deliveryIDs []uuid.UUID) error
}

// RouteDeliveryStore is the slice of delivery persistence routes touch.
type RouteDeliveryStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// VehicleStore flips vehicle availability as routes start and finish.
type VehicleStore interface {
	UpdateStatus(ctx context.Context, id int, status string) error
}

type RouteService struct {
	routes      RouteStore
	assignments RouteAssignmentStore
	deliveries  RouteDeliveryStore
	vehicles    VehicleStore
	logger      zerolog.Logger
}

func NewRouteService(routes RouteStore, assignments RouteAssignmentStore, deliveries RouteDeliveryStore, vehicles VehicleStore, logger zerolog.Logger) *RouteService {
	return &RouteService{
		routes:      routes,
		assignments: assignments,
		deliveries:  deliveries,
		vehicles:    vehicles,
		logger:      logger,
	}
}

func (s *RouteService) Create(ctx context.Context, req *models.CreateRouteRequest, createdBy *int) (*models.Route, error) {
	if req.Name == "" {
		return nil, invalid("name", "is required")
	}
	if req.Period != models.PeriodMorning && req.Period != models.PeriodMidday && req.Period != models.PeriodAfternoon {
		return nil, invalid("period", "must be morning, midday or afternoon")
	}
	date, err := timeutil.ParseLocal(timeutil.DateLayout, req.Date)
	if err != nil {
		return nil, invalid("date", "must be YYYY-MM-DD")
	}
	departure, err := timeutil.ParseLocal(timeutil.DateLayout+" "+timeutil.ClockLayout, req.Date+" "+req.DepartureTime)
	if err != nil {
		return nil, invalid("departure_time", "must be HH:MM")
	}

	rt := &models.Route{
		Name:            req.Name,
		Date:            date,
		Period:          req.Period,
		DepartureTime:   departure,
		VehicleID:       req.VehicleID,
		DriverIDs:       req.DriverIDs,
		Comment:         req.Comment,
		Status:          models.RouteStatusPlanned,
		CreatedByUserID: createdBy,
	}
	if err := s.routes.Create(ctx, rt); err != nil {
		return nil, err
	}
	s.logger.Info().Str("route_id", rt.ID.String()).Str("period", rt.Period).Msg("route created")
	return rt, nil
}

func (s *RouteService) GetByID(ctx context.Context, id uuid.UUID) (*models.Route, error) {
	return s.routes.GetByID(ctx, id)
}

func (s *RouteService) ListByDate(ctx context.Context, date time.Time, period string) ([]models.Route, error) {
	return s.routes.ListByDate(ctx, date, period)
}

func (s *RouteService) Assignments(ctx context.Context, routeID uuid.UUID) ([]models.RouteAssignment, error) {
	return s.assignments.ListByRoute(ctx, routeID)
}

// AddDelivery puts a delivery on a route, at the end by default or at a
// given position with everything after shifted down. The delivery flips
// to assigned.
func (s *RouteService) AddDelivery(ctx context.Context, req *models.AddToRouteRequest) (*models.RouteAssignment, error) {
	rt, err := s.routes.GetByID(ctx, req.RouteID)
	if err != nil {
		return nil, err
	}
	if rt.Status == models.RouteStatusCompleted || rt.Status == models.RouteStatusCancelled {
		return nil, ErrConflict
	}

	d, err := s.deliveries.GetByID(ctx, req.DeliveryID)
	if err != nil {
		return nil, err
	}
	if d.Status != models.DeliveryStatusUnassigned {
		return nil, invalid("delivery_id", "only unassigned deliveries can join a route")
	}
	if _, err := s.assignments.GetByDelivery(ctx, req.DeliveryID); err == nil {
		return nil, invalid("delivery_id", "delivery is already on a route")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	var a *models.RouteAssignment
	if req.Position != nil {
		if *req.Position < 1 {
			return nil, invalid("position", "must be 1 or greater")
		}
		a, err = s.assignments.InsertAt(ctx, req.RouteID, req.DeliveryID, *req.Position)
	} else {
		a, err = s.assignments.Append(ctx, req.RouteID, req.DeliveryID)
	}
	if err != nil {
		return nil, err
	}

	status := models.DeliveryStatusAssigned
	if rt.Status == models.RouteStatusInProgress {
		status = models.DeliveryStatusInProgress
	}
	if err := s.deliveries.UpdateStatus(ctx, req.DeliveryID, status); err != nil {
		return nil, err
	}
	return a, nil
}

// RemoveDelivery takes a delivery off its route. The remaining order
// values keep their gaps. Undelivered deliveries go back to unassigned.
func (s *RouteService) RemoveDelivery(ctx context.Context, routeID, deliveryID uuid.UUID) error {
	if err := s.assignments.Remove(ctx, routeID, deliveryID); err != nil {
		return err
	}
	d, err := s.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		return err
	}
	if d.Status != models.DeliveryStatusDelivered && d.Status != models.DeliveryStatusCancelled {
		if err := s.deliveries.UpdateStatus(ctx, deliveryID, models.DeliveryStatusUnassigned); err != nil {
			return err
		}
	}
	// removing the last undelivered stop can finish the route
	return s.CheckAutoComplete(ctx, routeID)
}

// Reorder rewrites the traversal order from the caller's full list.
func (s *RouteService) Reorder(ctx context.Context, routeID uuid.UUID, req *models.ReorderRouteRequest) error {
	if len(req.DeliveryIDs) == 0 {
		return invalid("delivery_ids", "is required")
	}
	seen := make(map[uuid.UUID]bool, len(req.DeliveryIDs))
	for _, id := range req.DeliveryIDs {
		if seen[id] {
			return invalid("delivery_ids", "contains duplicates")
		}
		seen[id] = true
	}
	return s.assignments.Reorder(ctx, routeID, req.DeliveryIDs)
}

// Start launches a planned route: deliveries flip to in_progress and
// the vehicle goes on the road.
func (s *RouteService) Start(ctx context.Context, routeID uuid.UUID) error {
	rt, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		return err
	}
	if rt.Status != models.RouteStatusPlanned {
		return ErrConflict
	}
	if err := s.routes.UpdateStatus(ctx, routeID, models.RouteStatusInProgress); err != nil {
		return err
	}
	if rt.VehicleID != nil {
		if err := s.vehicles.UpdateStatus(ctx, *rt.VehicleID, models.VehicleStatusOnRoute); err != nil {
			return err
		}
	}
	assignments, err := s.assignments.ListByRoute(ctx, routeID)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if err := s.deliveries.UpdateStatus(ctx, a.DeliveryID, models.DeliveryStatusInProgress); err != nil {
			return err
		}
	}
	s.logger.Info().Str("route_id", routeID.String()).Int("stops", len(assignments)).Msg("route started")
	return nil
}

// MarkDelivered records a completed drop-off and closes the route if it
// was the last one.
func (s *RouteService) MarkDelivered(ctx context.Context, deliveryID uuid.UUID) error {
	if err := s.deliveries.UpdateStatus(ctx, deliveryID, models.DeliveryStatusDelivered); err != nil {
		return err
	}
	a, err := s.assignments.GetByDelivery(ctx, deliveryID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.CheckAutoComplete(ctx, a.RouteID)
}

// CheckAutoComplete closes an in-progress route once every stop on it
// is delivered. Empty routes never auto-complete.
func (s *RouteService) CheckAutoComplete(ctx context.Context, routeID uuid.UUID) error {
	rt, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		return err
	}
	if rt.Status != models.RouteStatusInProgress {
		return nil
	}
	total, delivered, err := s.routes.DeliveryProgress(ctx, routeID)
	if err != nil {
		return err
	}
	if total == 0 || delivered < total {
		return nil
	}
	if err := s.routes.Complete(ctx, routeID); err != nil {
		return err
	}
	if rt.VehicleID != nil {
		if err := s.vehicles.UpdateStatus(ctx, *rt.VehicleID, models.VehicleStatusAvailable); err != nil {
			return err
		}
	}
	metrics.RoutesAutoCompleted.Inc()
	s.logger.Info().Str("route_id", routeID.String()).Int("stops", total).Msg("route auto-completed")
	return nil
}

// Delete removes a route that has not started. Its deliveries go back
// to unassigned; the assignment rows go with the route.
func (s *RouteService) Delete(ctx context.Context, routeID uuid.UUID) error {
	rt, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		return err
	}
	if rt.Status == models.RouteStatusInProgress {
		return ErrConflict
	}
	assignments, err := s.assignments.ListByRoute(ctx, routeID)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		d, err := s.deliveries.GetByID(ctx, a.DeliveryID)
		if err != nil {
			return err
		}
		if d.Status != models.DeliveryStatusDelivered && d.Status != models.DeliveryStatusCancelled {
			if err := s.deliveries.UpdateStatus(ctx, a.DeliveryID, models.DeliveryStatusUnassigned); err != nil {
				return err
			}
		}
	}
	if err := s.routes.Delete(ctx, routeID); err != nil {
		return err
	}
	s.logger.Info().Str("route_id", routeID.String()).Int("stops", len(assignments)).Msg("route deleted")
	return nil
}

// Finish closes a route by hand, whatever the delivery states.
func (s *RouteService) Finish(ctx context.Context, routeID uuid.UUID) error {
	rt, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		return err
	}
	if rt.Status == models.RouteStatusCompleted || rt.Status == models.RouteStatusCancelled {
		return ErrConflict
	}
	if err := s.routes.Complete(ctx, routeID); err != nil {
		return err
	}
	if rt.VehicleID != nil {
		if err := s.vehicles.UpdateStatus(ctx, *rt.VehicleID, models.VehicleStatusAvailable); err != nil {
			return err
		}
	}
	return nil
}
