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

type MockDeliveryStore struct {
	mock.Mock
}

func (m *MockDeliveryStore) Create(ctx context.Context, d *models.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryStore) Update(ctx context.Context, d *models.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Delivery), args.Error(1)
}

func (m *MockDeliveryStore) GetByNumber(ctx context.Context, number string) (*models.Delivery, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Delivery), args.Error(1)
}

func (m *MockDeliveryStore) ListByDate(ctx context.Context, date time.Time, period string) ([]models.Delivery, error) {
	args := m.Called(ctx, date, period)
	return args.Get(0).([]models.Delivery), args.Error(1)
}

func (m *MockDeliveryStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockDeliveryStore) CountPickupsFor(ctx context.Context, originID uuid.UUID) (int, error) {
	args := m.Called(ctx, originID)
	return args.Int(0), args.Error(1)
}

func (m *MockDeliveryStore) ListPickupsFor(ctx context.Context, originID uuid.UUID) ([]models.Delivery, error) {
	args := m.Called(ctx, originID)
	return args.Get(0).([]models.Delivery), args.Error(1)
}

type MockModeStore struct {
	mock.Mock
}

func (m *MockModeStore) GetOrCreate(ctx context.Context, name string) (*models.DeliveryMode, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(*models.DeliveryMode), args.Error(1)
}

func newDeliveryServiceForTest(deliveries *MockDeliveryStore, modes *MockModeStore) *DeliveryService {
	return NewDeliveryService(deliveries, modes, nil, zerolog.Nop())
}

func TestUpsertCreatesNewDelivery(t *testing.T) {
	deliveries := new(MockDeliveryStore)
	modes := new(MockModeStore)

	modes.On("GetOrCreate", mock.Anything, "Full Service").Return(&models.DeliveryMode{ID: 4, Name: "Full Service"}, nil)
	deliveries.On("GetByNumber", mock.Anything, "CMD-1000").Return(nil, repositories.ErrNotFound)
	deliveries.On("Create", mock.Anything, mock.MatchedBy(func(d *models.Delivery) bool {
		return d.DeliveryNumber == "CMD-1000" &&
			d.Status == models.DeliveryStatusUnassigned &&
			d.City == "Montreal" && // default when the import has none
			d.Period == models.PeriodMorning &&
			d.ModeID != nil && *d.ModeID == 4
	})).Return(nil)

	service := newDeliveryServiceForTest(deliveries, modes)

	d, err := service.Upsert(context.Background(), &models.UpsertDeliveryRequest{
		DeliveryNumber: "CMD-1000",
		ClientName:     "Hotel Bonaventure",
		DeliveryDate:   "2026-05-01",
		ModeName:       "Full Service",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "CMD-1000", d.DeliveryNumber)
	deliveries.AssertExpectations(t)
}

func TestUpsertDerivesPeriodFromRequestedTime(t *testing.T) {
	deliveries := new(MockDeliveryStore)

	deliveries.On("GetByNumber", mock.Anything, "CMD-1001").Return(nil, repositories.ErrNotFound)
	deliveries.On("Create", mock.Anything, mock.MatchedBy(func(d *models.Delivery) bool {
		return d.Period == models.PeriodAfternoon && d.RequestedTime != nil
	})).Return(nil)

	service := newDeliveryServiceForTest(deliveries, new(MockModeStore))

	_, err := service.Upsert(context.Background(), &models.UpsertDeliveryRequest{
		DeliveryNumber: "CMD-1001",
		ClientName:     "Centre Mont-Royal",
		DeliveryDate:   "2026-05-01",
		RequestedTime:  "15:30",
	}, nil)
	require.NoError(t, err)
	deliveries.AssertExpectations(t)
}

func TestUpsertRefreshKeepsStatusAndLinks(t *testing.T) {
	deliveries := new(MockDeliveryStore)
	checklistID := uuid.New()

	existing := &models.Delivery{
		ID:             uuid.New(),
		DeliveryNumber: "CMD-1002",
		Status:         models.DeliveryStatusAssigned,
		ChecklistID:    &checklistID,
		GuestCount:     10,
	}
	deliveries.On("GetByNumber", mock.Anything, "CMD-1002").Return(existing, nil)
	deliveries.On("Update", mock.Anything, mock.MatchedBy(func(d *models.Delivery) bool {
		return d.ID == existing.ID &&
			d.Status == models.DeliveryStatusAssigned &&
			d.ChecklistID == &checklistID &&
			d.GuestCount == 45
	})).Return(nil)

	service := newDeliveryServiceForTest(deliveries, new(MockModeStore))

	d, err := service.Upsert(context.Background(), &models.UpsertDeliveryRequest{
		DeliveryNumber: "CMD-1002",
		ClientName:     "Hotel Bonaventure",
		DeliveryDate:   "2026-05-02",
		GuestCount:     45,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, existing.ID, d.ID)
	deliveries.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpsertRequiresNumberAndClient(t *testing.T) {
	service := newDeliveryServiceForTest(new(MockDeliveryStore), new(MockModeStore))

	_, err := service.Upsert(context.Background(), &models.UpsertDeliveryRequest{ClientName: "X", DeliveryDate: "2026-05-01"}, nil)
	require.True(t, IsValidation(err))

	_, err = service.Upsert(context.Background(), &models.UpsertDeliveryRequest{DeliveryNumber: "CMD-1", DeliveryDate: "2026-05-01"}, nil)
	require.True(t, IsValidation(err))
}

func TestConvertToPickupClonesDelivery(t *testing.T) {
	deliveries := new(MockDeliveryStore)
	id := uuid.New()
	checklistID := uuid.New()
	now := time.Now()

	origin := &models.Delivery{
		ID:             id,
		DeliveryNumber: "CMD-2000",
		EventName:      "Gala 12",
		Status:         models.DeliveryStatusDelivered,
		DeliveredAt:    &now,
		ChecklistID:    &checklistID,
		Period:         models.PeriodMorning,
		Mode:           &models.DeliveryMode{ID: 1, SupportsPickup: true},
	}
	deliveries.On("GetByID", mock.Anything, id).Return(origin, nil)
	deliveries.On("CountPickupsFor", mock.Anything, id).Return(0, nil)
	deliveries.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Delivery) bool {
		return p.DeliveryNumber == "CMD-2000-REC" &&
			p.IsPickup &&
			p.OriginDeliveryID != nil && *p.OriginDeliveryID == id &&
			p.Status == models.DeliveryStatusUnassigned &&
			p.Period == models.PeriodAfternoon &&
			p.ChecklistID == nil &&
			p.DeliveredAt == nil
	})).Return(nil)

	service := newDeliveryServiceForTest(deliveries, new(MockModeStore))

	pickup, err := service.ConvertToPickup(context.Background(), id, nil)
	require.NoError(t, err)
	require.Equal(t, "CMD-2000-REC", pickup.DeliveryNumber)
	deliveries.AssertExpectations(t)
}

func TestConvertToPickupRejectsUndelivered(t *testing.T) {
	deliveries := new(MockDeliveryStore)
	id := uuid.New()
	deliveries.On("GetByID", mock.Anything, id).Return(&models.Delivery{
		ID:     id,
		Status: models.DeliveryStatusInProgress,
		Mode:   &models.DeliveryMode{SupportsPickup: true},
	}, nil)

	service := newDeliveryServiceForTest(deliveries, new(MockModeStore))

	_, err := service.ConvertToPickup(context.Background(), id, nil)
	require.ErrorIs(t, err, ErrConflict)
}

func TestConvertToPickupRejectsNonPickupMode(t *testing.T) {
	deliveries := new(MockDeliveryStore)
	id := uuid.New()
	deliveries.On("GetByID", mock.Anything, id).Return(&models.Delivery{
		ID:     id,
		Status: models.DeliveryStatusDelivered,
		Mode:   &models.DeliveryMode{SupportsPickup: false},
	}, nil)

	service := newDeliveryServiceForTest(deliveries, new(MockModeStore))

	_, err := service.ConvertToPickup(context.Background(), id, nil)
	require.True(t, IsValidation(err))
}

func TestConvertToPickupIsOneShot(t *testing.T) {
	deliveries := new(MockDeliveryStore)
	id := uuid.New()
	deliveries.On("GetByID", mock.Anything, id).Return(&models.Delivery{
		ID:     id,
		Status: models.DeliveryStatusDelivered,
		Mode:   &models.DeliveryMode{SupportsPickup: true},
	}, nil)
	deliveries.On("CountPickupsFor", mock.Anything, id).Return(1, nil)

	service := newDeliveryServiceForTest(deliveries, new(MockModeStore))

	_, err := service.ConvertToPickup(context.Background(), id, nil)
	require.ErrorIs(t, err, ErrConflict)
	deliveries.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConvertToPickupRejectsPickups(t *testing.T) {
	deliveries := new(MockDeliveryStore)
	id := uuid.New()
	deliveries.On("GetByID", mock.Anything, id).Return(&models.Delivery{
		ID:       id,
		IsPickup: true,
		Status:   models.DeliveryStatusDelivered,
	}, nil)

	service := newDeliveryServiceForTest(deliveries, new(MockModeStore))

	_, err := service.ConvertToPickup(context.Background(), id, nil)
	require.True(t, IsValidation(err))
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	service := newDeliveryServiceForTest(new(MockDeliveryStore), new(MockModeStore))

	err := service.UpdateStatus(context.Background(), uuid.New(), "teleported")
	require.True(t, IsValidation(err))
}
