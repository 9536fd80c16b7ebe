package services

import (
	"context"
	"testing"
	"time"

	"cheflow-backend/internal/models"
	"cheflow-backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRouteStore struct {
	mock.Mock
}

func (m *MockRouteStore) Create(ctx context.Context, rt *models.Route) error {
	args := m.Called(ctx, rt)
	return args.Error(0)
}

func (m *MockRouteStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Route, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Route), args.Error(1)
}

func (m *MockRouteStore) ListByDate(ctx context.Context, date time.Time, period string) ([]models.Route, error) {
	args := m.Called(ctx, date, period)
	return args.Get(0).([]models.Route), args.Error(1)
}

func (m *MockRouteStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockRouteStore) Complete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRouteStore) DeliveryProgress(ctx context.Context, id uuid.UUID) (int, int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockRouteStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockRouteAssignmentStore struct {
	mock.Mock
}

func (m *MockRouteAssignmentStore) ListByRoute(ctx context.Context, routeID uuid.UUID) ([]models.RouteAssignment, error) {
	args := m.Called(ctx, routeID)
	return args.Get(0).([]models.RouteAssignment), args.Error(1)
}

func (m *MockRouteAssignmentStore) GetByDelivery(ctx context.Context, deliveryID uuid.UUID) (*models.RouteAssignment, error) {
	args := m.Called(ctx, deliveryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RouteAssignment), args.Error(1)
}

func (m *MockRouteAssignmentStore) Append(ctx context.Context, routeID, deliveryID uuid.UUID) (*models.RouteAssignment, error) {
	args := m.Called(ctx, routeID, deliveryID)
	return args.Get(0).(*models.RouteAssignment), args.Error(1)
}

func (m *MockRouteAssignmentStore) InsertAt(ctx context.Context, routeID, deliveryID uuid.UUID, position int) (*models.RouteAssignment, error) {
	args := m.Called(ctx, routeID, deliveryID, position)
	return args.Get(0).(*models.RouteAssignment), args.Error(1)
}

func (m *MockRouteAssignmentStore) Remove(ctx context.Context, routeID, deliveryID uuid.UUID) error {
	args := m.Called(ctx, routeID, deliveryID)
	return args.Error(0)
}

func (m *MockRouteAssignmentStore) Reorder(ctx context.Context, routeID uuid.UUID, deliveryIDs []uuid.UUID) error {
	args := m.Called(ctx, routeID, deliveryIDs)
	return args.Error(0)
}

type MockRouteDeliveryStore struct {
	mock.Mock
}

func (m *MockRouteDeliveryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Delivery), args.Error(1)
}

func (m *MockRouteDeliveryStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockVehicleStore struct {
	mock.Mock
}

func (m *MockVehicleStore) UpdateStatus(ctx context.Context, id int, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func newRouteServiceForTest(routes *MockRouteStore, assignments *MockRouteAssignmentStore, deliveries *MockRouteDeliveryStore, vehicles *MockVehicleStore) *RouteService {
	return NewRouteService(routes, assignments, deliveries, vehicles, zerolog.Nop())
}

func TestAddDeliveryAppendsByDefault(t *testing.T) {
	routes := new(MockRouteStore)
	assignments := new(MockRouteAssignmentStore)
	deliveries := new(MockRouteDeliveryStore)
	routeID := uuid.New()
	deliveryID := uuid.New()

	routes.On("GetByID", mock.Anything, routeID).Return(&models.Route{ID: routeID, Status: models.RouteStatusPlanned}, nil)
	deliveries.On("GetByID", mock.Anything, deliveryID).Return(&models.Delivery{ID: deliveryID, Status: models.DeliveryStatusUnassigned}, nil)
	assignments.On("GetByDelivery", mock.Anything, deliveryID).Return(nil, repositories.ErrNotFound)
	assignments.On("Append", mock.Anything, routeID, deliveryID).Return(&models.RouteAssignment{RouteID: routeID, DeliveryID: deliveryID, OrderIndex: 1}, nil)
	deliveries.On("UpdateStatus", mock.Anything, deliveryID, models.DeliveryStatusAssigned).Return(nil)

	service := newRouteServiceForTest(routes, assignments, deliveries, new(MockVehicleStore))

	a, err := service.AddDelivery(context.Background(), &models.AddToRouteRequest{RouteID: routeID, DeliveryID: deliveryID})
	require.NoError(t, err)
	require.Equal(t, 1, a.OrderIndex)
	assignments.AssertExpectations(t)
	deliveries.AssertExpectations(t)
}

func TestAddDeliveryToRunningRouteStartsItImmediately(t *testing.T) {
	routes := new(MockRouteStore)
	assignments := new(MockRouteAssignmentStore)
	deliveries := new(MockRouteDeliveryStore)
	routeID := uuid.New()
	deliveryID := uuid.New()

	routes.On("GetByID", mock.Anything, routeID).Return(&models.Route{ID: routeID, Status: models.RouteStatusInProgress}, nil)
	deliveries.On("GetByID", mock.Anything, deliveryID).Return(&models.Delivery{ID: deliveryID, Status: models.DeliveryStatusUnassigned}, nil)
	assignments.On("GetByDelivery", mock.Anything, deliveryID).Return(nil, repositories.ErrNotFound)
	assignments.On("Append", mock.Anything, routeID, deliveryID).Return(&models.RouteAssignment{RouteID: routeID, DeliveryID: deliveryID, OrderIndex: 4}, nil)
	deliveries.On("UpdateStatus", mock.Anything, deliveryID, models.DeliveryStatusInProgress).Return(nil)

	service := newRouteServiceForTest(routes, assignments, deliveries, new(MockVehicleStore))

	_, err := service.AddDelivery(context.Background(), &models.AddToRouteRequest{RouteID: routeID, DeliveryID: deliveryID})
	require.NoError(t, err)
	deliveries.AssertExpectations(t)
}

func TestAddDeliveryRejectsAlreadyRoutedDelivery(t *testing.T) {
	routes := new(MockRouteStore)
	assignments := new(MockRouteAssignmentStore)
	deliveries := new(MockRouteDeliveryStore)
	routeID := uuid.New()
	deliveryID := uuid.New()

	routes.On("GetByID", mock.Anything, routeID).Return(&models.Route{ID: routeID, Status: models.RouteStatusPlanned}, nil)
	deliveries.On("GetByID", mock.Anything, deliveryID).Return(&models.Delivery{ID: deliveryID, Status: models.DeliveryStatusAssigned}, nil)
	assignments.On("GetByDelivery", mock.Anything, deliveryID).Return(&models.RouteAssignment{RouteID: uuid.New(), DeliveryID: deliveryID}, nil)

	service := newRouteServiceForTest(routes, assignments, deliveries, new(MockVehicleStore))

	_, err := service.AddDelivery(context.Background(), &models.AddToRouteRequest{RouteID: routeID, DeliveryID: deliveryID})
	require.Error(t, err)
	require.True(t, IsValidation(err))
}

func TestAddDeliveryRequiresUnassignedStatus(t *testing.T) {
	for _, status := range []string{
		models.DeliveryStatusInProgress,
		models.DeliveryStatusDelivered,
		models.DeliveryStatusCancelled,
	} {
		routes := new(MockRouteStore)
		assignments := new(MockRouteAssignmentStore)
		deliveries := new(MockRouteDeliveryStore)
		routeID := uuid.New()
		deliveryID := uuid.New()

		routes.On("GetByID", mock.Anything, routeID).Return(&models.Route{ID: routeID, Status: models.RouteStatusPlanned}, nil)
		// not on any route, the status alone disqualifies it
		deliveries.On("GetByID", mock.Anything, deliveryID).Return(&models.Delivery{ID: deliveryID, Status: status}, nil)

		service := newRouteServiceForTest(routes, assignments, deliveries, new(MockVehicleStore))

		_, err := service.AddDelivery(context.Background(), &models.AddToRouteRequest{RouteID: routeID, DeliveryID: deliveryID})
		require.Error(t, err, "status %q should be rejected", status)
		require.True(t, IsValidation(err))
		assignments.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestAddDeliveryRejectsFinishedRoute(t *testing.T) {
	routes := new(MockRouteStore)
	routeID := uuid.New()
	routes.On("GetByID", mock.Anything, routeID).Return(&models.Route{ID: routeID, Status: models.RouteStatusCompleted}, nil)

	service := newRouteServiceForTest(routes, new(MockRouteAssignmentStore), new(MockRouteDeliveryStore), new(MockVehicleStore))

	_, err := service.AddDelivery(context.Background(), &models.AddToRouteRequest{RouteID: routeID, DeliveryID: uuid.New()})
	require.ErrorIs(t, err, ErrConflict)
}

func TestReorderRejectsDuplicates(t *testing.T) {
	service := newRouteServiceForTest(new(MockRouteStore), new(MockRouteAssignmentStore), new(MockRouteDeliveryStore), new(MockVehicleStore))

	id := uuid.New()
	err := service.Reorder(context.Background(), uuid.New(), &models.ReorderRouteRequest{DeliveryIDs: []uuid.UUID{id, id}})
	require.Error(t, err)
	require.True(t, IsValidation(err))
}

func TestMarkDeliveredCompletesRouteOnLastStop(t *testing.T) {
	routes := new(MockRouteStore)
	assignments := new(MockRouteAssignmentStore)
	deliveries := new(MockRouteDeliveryStore)
	vehicles := new(MockVehicleStore)
	routeID := uuid.New()
	deliveryID := uuid.New()
	vehicleID := 2

	deliveries.On("UpdateStatus", mock.Anything, deliveryID, models.DeliveryStatusDelivered).Return(nil)
	assignments.On("GetByDelivery", mock.Anything, deliveryID).Return(&models.RouteAssignment{RouteID: routeID, DeliveryID: deliveryID}, nil)
	routes.On("GetByID", mock.Anything, routeID).Return(&models.Route{ID: routeID, Status: models.RouteStatusInProgress, VehicleID: &vehicleID}, nil)
	routes.On("DeliveryProgress", mock.Anything, routeID).Return(3, 3, nil)
	routes.On("Complete", mock.Anything, routeID).Return(nil)
	vehicles.On("UpdateStatus", mock.Anything, vehicleID, models.VehicleStatusAvailable).Return(nil)

	service := newRouteServiceForTest(routes, assignments, deliveries, vehicles)

	err := service.MarkDelivered(context.Background(), deliveryID)
	require.NoError(t, err)
	routes.AssertExpectations(t)
	vehicles.AssertExpectations(t)
}

func TestMarkDeliveredLeavesRouteOpenWithRemainingStops(t *testing.T) {
	routes := new(MockRouteStore)
	assignments := new(MockRouteAssignmentStore)
	deliveries := new(MockRouteDeliveryStore)
	routeID := uuid.New()
	deliveryID := uuid.New()

	deliveries.On("UpdateStatus", mock.Anything, deliveryID, models.DeliveryStatusDelivered).Return(nil)
	assignments.On("GetByDelivery", mock.Anything, deliveryID).Return(&models.RouteAssignment{RouteID: routeID, DeliveryID: deliveryID}, nil)
	routes.On("GetByID", mock.Anything, routeID).Return(&models.Route{ID: routeID, Status: models.RouteStatusInProgress}, nil)
	routes.On("DeliveryProgress", mock.Anything, routeID).Return(3, 2, nil)

	service := newRouteServiceForTest(routes, assignments, deliveries, new(MockVehicleStore))

	err := service.MarkDelivered(context.Background(), deliveryID)
	require.NoError(t, err)
	routes.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestMarkDeliveredOffRouteIsFine(t *testing.T) {
	assignments := new(MockRouteAssignmentStore)
	deliveries := new(MockRouteDeliveryStore)
	deliveryID := uuid.New()

	deliveries.On("UpdateStatus", mock.Anything, deliveryID, models.DeliveryStatusDelivered).Return(nil)
	assignments.On("GetByDelivery", mock.Anything, deliveryID).Return(nil, repositories.ErrNotFound)

	service := newRouteServiceForTest(new(MockRouteStore), assignments, deliveries, new(MockVehicleStore))

	err := service.MarkDelivered(context.Background(), deliveryID)
	require.NoError(t, err)
}

func TestEmptyRouteNeverAutoCompletes(t *testing.T) {
	routes := new(MockRouteStore)
	routeID := uuid.New()

	routes.On("GetByID", mock.Anything, routeID).Return(&models.Route{ID: routeID, Status: models.RouteStatusInProgress}, nil)
	routes.On("DeliveryProgress", mock.Anything, routeID).Return(0, 0, nil)

	service := newRouteServiceForTest(routes, new(MockRouteAssignmentStore), new(MockRouteDeliveryStore), new(MockVehicleStore))

	err := service.CheckAutoComplete(context.Background(), routeID)
	require.NoError(t, err)
	routes.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestPlannedRouteNeverAutoCompletes(t *testing.T) {
	routes := new(MockRouteStore)
	routeID := uuid.New()

	routes.On("GetByID", mock.Anything, routeID).Return(&models.Route{ID: routeID, Status: models.RouteStatusPlanned}, nil)

	service := newRouteServiceForTest(routes, new(MockRouteAssignmentStore), new(MockRouteDeliveryStore), new(MockVehicleStore))

	err := service.CheckAutoComplete(context.Background(), routeID)
	require.NoError(t, err)
	routes.AssertNotCalled(t, "DeliveryProgress", mock.Anything, mock.Anything)
}

func TestStartFlipsVehicleAndDeliveries(t *testing.T) {
	routes := new(MockRouteStore)
	assignments := new(MockRouteAssignmentStore)
	deliveries := new(MockRouteDeliveryStore)
	vehicles := new(MockVehicleStore)
	routeID := uuid.New()
	vehicleID := 7
	d1 := uuid.New()
	d2 := uuid.New()

	routes.On("GetByID", mock.Anything, routeID).Return(&models.Route{ID: routeID, Status: models.RouteStatusPlanned, VehicleID: &vehicleID}, nil)
	routes.On("UpdateStatus", mock.Anything, routeID, models.RouteStatusInProgress).Return(nil)
	vehicles.On("UpdateStatus", mock.Anything, vehicleID, models.VehicleStatusOnRoute).Return(nil)
	assignments.On("ListByRoute", mock.Anything, routeID).Return([]models.RouteAssignment{
		{RouteID: routeID, DeliveryID: d1, OrderIndex: 1},
		{RouteID: routeID, DeliveryID: d2, OrderIndex: 2},
	}, nil)
	deliveries.On("UpdateStatus", mock.Anything, d1, models.DeliveryStatusInProgress).Return(nil)
	deliveries.On("UpdateStatus", mock.Anything, d2, models.DeliveryStatusInProgress).Return(nil)

	service := newRouteServiceForTest(routes, assignments, deliveries, vehicles)

	err := service.Start(context.Background(), routeID)
	require.NoError(t, err)
	vehicles.AssertExpectations(t)
	deliveries.AssertExpectations(t)
}

func TestDeleteUnassignsRemainingDeliveries(t *testing.T) {
	routes := new(MockRouteStore)
	assignments := new(MockRouteAssignmentStore)
	deliveries := new(MockRouteDeliveryStore)
	routeID := uuid.New()
	d1 := uuid.New()
	d2 := uuid.New()

	routes.On("GetByID", mock.Anything, routeID).Return(&models.Route{ID: routeID, Status: models.RouteStatusPlanned}, nil)
	assignments.On("ListByRoute", mock.Anything, routeID).Return([]models.RouteAssignment{
		{RouteID: routeID, DeliveryID: d1, OrderIndex: 1},
		{RouteID: routeID, DeliveryID: d2, OrderIndex: 2},
	}, nil)
	deliveries.On("GetByID", mock.Anything, d1).Return(&models.Delivery{ID: d1, Status: models.DeliveryStatusAssigned}, nil)
	deliveries.On("GetByID", mock.Anything, d2).Return(&models.Delivery{ID: d2, Status: models.DeliveryStatusDelivered}, nil)
	deliveries.On("UpdateStatus", mock.Anything, d1, models.DeliveryStatusUnassigned).Return(nil)
	routes.On("Delete", mock.Anything, routeID).Return(nil)

	service := newRouteServiceForTest(routes, assignments, deliveries, new(MockVehicleStore))

	err := service.Delete(context.Background(), routeID)
	require.NoError(t, err)
	deliveries.AssertNotCalled(t, "UpdateStatus", mock.Anything, d2, mock.Anything)
	routes.AssertExpectations(t)
}

func TestDeleteRejectsRunningRoute(t *testing.T) {
	routes := new(MockRouteStore)
	routeID := uuid.New()
	routes.On("GetByID", mock.Anything, routeID).Return(&models.Route{ID: routeID, Status: models.RouteStatusInProgress}, nil)

	service := newRouteServiceForTest(routes, new(MockRouteAssignmentStore), new(MockRouteDeliveryStore), new(MockVehicleStore))

	err := service.Delete(context.Background(), routeID)
	require.ErrorIs(t, err, ErrConflict)
	routes.AssertNotCalled(t, "Delete", mock.Anything, routeID)
}

func TestStartRejectsNonPlannedRoute(t *testing.T) {
	routes := new(MockRouteStore)
	routeID := uuid.New()
	routes.On("GetByID", mock.Anything, routeID).Return(&models.Route{ID: routeID, Status: models.RouteStatusInProgress}, nil)

	service := newRouteServiceForTest(routes, new(MockRouteAssignmentStore), new(MockRouteDeliveryStore), new(MockVehicleStore))

	err := service.Start(context.Background(), routeID)
	require.ErrorIs(t, err, ErrConflict)
}
