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

type MockLinkerContractStore struct {
	mock.Mock
}

func (m *MockLinkerContractStore) GetByNumber(ctx context.Context, number string) (*models.Contract, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *MockLinkerContractStore) ListUnlinked(ctx context.Context) ([]models.Contract, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Contract), args.Error(1)
}

func (m *MockLinkerContractStore) SetDelivery(ctx context.Context, id, deliveryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, deliveryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkerContractStore) SetChecklist(ctx context.Context, id, checklistID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, checklistID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkerContractStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

type MockLinkerDeliveryStore struct {
	mock.Mock
}

func (m *MockLinkerDeliveryStore) GetByNumber(ctx context.Context, number string) (*models.Delivery, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Delivery), args.Error(1)
}

func (m *MockLinkerDeliveryStore) CountByNumber(ctx context.Context, number string) (int, error) {
	args := m.Called(ctx, number)
	return args.Int(0), args.Error(1)
}

func (m *MockLinkerDeliveryStore) ListUnlinked(ctx context.Context) ([]models.Delivery, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Delivery), args.Error(1)
}

func (m *MockLinkerDeliveryStore) SetChecklist(ctx context.Context, id, checklistID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, checklistID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkerDeliveryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Delivery), args.Error(1)
}

type MockLinkerChecklistStore struct {
	mock.Mock
}

func (m *MockLinkerChecklistStore) GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Checklist, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Checklist), args.Error(1)
}

func (m *MockLinkerChecklistStore) CountByOrderNumber(ctx context.Context, orderNumber string) (int, error) {
	args := m.Called(ctx, orderNumber)
	return args.Int(0), args.Error(1)
}

func (m *MockLinkerChecklistStore) ListUnlinked(ctx context.Context) ([]models.Checklist, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Checklist), args.Error(1)
}

func (m *MockLinkerChecklistStore) SetDelivery(ctx context.Context, id, deliveryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, deliveryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkerChecklistStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Checklist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Checklist), args.Error(1)
}

func newLinkerForTest(contracts *MockLinkerContractStore, deliveries *MockLinkerDeliveryStore, checklists *MockLinkerChecklistStore) *LinkerService {
	return NewLinkerService(contracts, deliveries, checklists, zerolog.Nop())
}

func TestLinkContractAttachesBothSides(t *testing.T) {
	contracts := new(MockLinkerContractStore)
	deliveries := new(MockLinkerDeliveryStore)
	checklists := new(MockLinkerChecklistStore)

	contract := &models.Contract{ID: uuid.New(), ContractNumber: "CMD-1042"}
	delivery := &models.Delivery{ID: uuid.New(), DeliveryNumber: "CMD-1042"}
	checklist := &models.Checklist{ID: uuid.New(), OrderNumber: "CMD-1042"}

	deliveries.On("GetByNumber", mock.Anything, "CMD-1042").Return(delivery, nil)
	deliveries.On("CountByNumber", mock.Anything, "CMD-1042").Return(1, nil)
	checklists.On("GetByOrderNumber", mock.Anything, "CMD-1042").Return(checklist, nil)
	checklists.On("CountByOrderNumber", mock.Anything, "CMD-1042").Return(1, nil)
	contracts.On("SetDelivery", mock.Anything, contract.ID, delivery.ID).Return(true, nil)
	contracts.On("SetChecklist", mock.Anything, contract.ID, checklist.ID).Return(true, nil)

	linker := newLinkerForTest(contracts, deliveries, checklists)

	report := linker.LinkContract(context.Background(), contract)
	require.Empty(t, report.Error)
	require.ElementsMatch(t, []string{"delivery", "checklist"}, report.Attached)
	require.NotNil(t, contract.DeliveryID)
	require.NotNil(t, contract.ChecklistID)
	contracts.AssertExpectations(t)
}

func TestLinkContractSkipsEmptyNumber(t *testing.T) {
	linker := newLinkerForTest(new(MockLinkerContractStore), new(MockLinkerDeliveryStore), new(MockLinkerChecklistStore))

	report := linker.LinkContract(context.Background(), &models.Contract{ID: uuid.New()})
	require.Equal(t, "contract has no number", report.Error)
	require.Empty(t, report.Attached)
}

func TestLinkContractLostRaceIsNotAnError(t *testing.T) {
	contracts := new(MockLinkerContractStore)
	deliveries := new(MockLinkerDeliveryStore)
	checklists := new(MockLinkerChecklistStore)

	contract := &models.Contract{ID: uuid.New(), ContractNumber: "CMD-2000"}
	delivery := &models.Delivery{ID: uuid.New(), DeliveryNumber: "CMD-2000"}

	deliveries.On("GetByNumber", mock.Anything, "CMD-2000").Return(delivery, nil)
	deliveries.On("CountByNumber", mock.Anything, "CMD-2000").Return(1, nil)
	// another writer filled the slot first
	contracts.On("SetDelivery", mock.Anything, contract.ID, delivery.ID).Return(false, nil)
	checklists.On("GetByOrderNumber", mock.Anything, "CMD-2000").Return(nil, repositories.ErrNotFound)

	linker := newLinkerForTest(contracts, deliveries, checklists)

	report := linker.LinkContract(context.Background(), contract)
	require.Empty(t, report.Error)
	require.Empty(t, report.Attached)
	require.Nil(t, contract.DeliveryID)
}

func TestLinkContractNoCounterpartsFound(t *testing.T) {
	contracts := new(MockLinkerContractStore)
	deliveries := new(MockLinkerDeliveryStore)
	checklists := new(MockLinkerChecklistStore)

	deliveries.On("GetByNumber", mock.Anything, "CMD-3000").Return(nil, repositories.ErrNotFound)
	checklists.On("GetByOrderNumber", mock.Anything, "CMD-3000").Return(nil, repositories.ErrNotFound)

	linker := newLinkerForTest(contracts, deliveries, checklists)

	report := linker.LinkContract(context.Background(), &models.Contract{ID: uuid.New(), ContractNumber: "CMD-3000"})
	require.Empty(t, report.Error)
	require.Empty(t, report.Attached)
}

func TestLinkDeliverySetsBothDirectionsAndOffersContract(t *testing.T) {
	contracts := new(MockLinkerContractStore)
	deliveries := new(MockLinkerDeliveryStore)
	checklists := new(MockLinkerChecklistStore)

	delivery := &models.Delivery{ID: uuid.New(), DeliveryNumber: "CMD-4000"}
	checklist := &models.Checklist{ID: uuid.New(), OrderNumber: "CMD-4000"}
	contract := &models.Contract{ID: uuid.New(), ContractNumber: "CMD-4000", ChecklistID: &checklist.ID}

	checklists.On("GetByOrderNumber", mock.Anything, "CMD-4000").Return(checklist, nil)
	checklists.On("CountByOrderNumber", mock.Anything, "CMD-4000").Return(1, nil)
	deliveries.On("SetChecklist", mock.Anything, delivery.ID, checklist.ID).Return(true, nil)
	checklists.On("SetDelivery", mock.Anything, checklist.ID, delivery.ID).Return(true, nil)

	// the contract still misses its delivery link, so it gets re-offered
	contracts.On("GetByNumber", mock.Anything, "CMD-4000").Return(contract, nil)
	deliveries.On("GetByNumber", mock.Anything, "CMD-4000").Return(delivery, nil)
	deliveries.On("CountByNumber", mock.Anything, "CMD-4000").Return(1, nil)
	contracts.On("SetDelivery", mock.Anything, contract.ID, delivery.ID).Return(true, nil)

	linker := newLinkerForTest(contracts, deliveries, checklists)

	reports := linker.LinkDelivery(context.Background(), delivery)
	require.Len(t, reports, 2)
	require.Equal(t, []string{"checklist"}, reports[0].Attached)
	require.Equal(t, []string{"delivery"}, reports[1].Attached)
	require.NotNil(t, delivery.ChecklistID)
	contracts.AssertExpectations(t)
	checklists.AssertExpectations(t)
}

func TestLinkChecklistNewestWinsOnDuplicates(t *testing.T) {
	contracts := new(MockLinkerContractStore)
	deliveries := new(MockLinkerDeliveryStore)
	checklists := new(MockLinkerChecklistStore)

	checklist := &models.Checklist{ID: uuid.New(), OrderNumber: "CMD-5000"}
	newest := &models.Delivery{ID: uuid.New(), DeliveryNumber: "CMD-5000"}

	// three deliveries share the number; the store already returns the newest
	deliveries.On("GetByNumber", mock.Anything, "CMD-5000").Return(newest, nil)
	deliveries.On("CountByNumber", mock.Anything, "CMD-5000").Return(3, nil)
	checklists.On("SetDelivery", mock.Anything, checklist.ID, newest.ID).Return(true, nil)
	deliveries.On("SetChecklist", mock.Anything, newest.ID, checklist.ID).Return(true, nil)
	contracts.On("GetByNumber", mock.Anything, "CMD-5000").Return(nil, repositories.ErrNotFound)

	linker := newLinkerForTest(contracts, deliveries, checklists)

	reports := linker.LinkChecklist(context.Background(), checklist)
	require.Len(t, reports, 1)
	require.Equal(t, []string{"delivery"}, reports[0].Attached)
	require.Equal(t, &newest.ID, checklist.DeliveryID)
}

func TestRepairAllCountsOnlyRepairedContracts(t *testing.T) {
	contracts := new(MockLinkerContractStore)
	deliveries := new(MockLinkerDeliveryStore)
	checklists := new(MockLinkerChecklistStore)

	linkable := models.Contract{ID: uuid.New(), ContractNumber: "CMD-6001"}
	orphan := models.Contract{ID: uuid.New(), ContractNumber: "CMD-6002"}
	delivery := &models.Delivery{ID: uuid.New(), DeliveryNumber: "CMD-6001"}

	contracts.On("ListUnlinked", mock.Anything).Return([]models.Contract{linkable, orphan}, nil)
	deliveries.On("ListUnlinked", mock.Anything).Return([]models.Delivery{}, nil)
	checklists.On("ListUnlinked", mock.Anything).Return([]models.Checklist{}, nil)

	deliveries.On("GetByNumber", mock.Anything, "CMD-6001").Return(delivery, nil)
	deliveries.On("CountByNumber", mock.Anything, "CMD-6001").Return(1, nil)
	contracts.On("SetDelivery", mock.Anything, linkable.ID, delivery.ID).Return(true, nil)
	checklists.On("GetByOrderNumber", mock.Anything, "CMD-6001").Return(nil, repositories.ErrNotFound)

	deliveries.On("GetByNumber", mock.Anything, "CMD-6002").Return(nil, repositories.ErrNotFound)
	checklists.On("GetByOrderNumber", mock.Anything, "CMD-6002").Return(nil, repositories.ErrNotFound)

	linker := newLinkerForTest(contracts, deliveries, checklists)

	result, err := linker.RepairAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.Repaired)
	require.Len(t, result.Reports, 2)
}

func TestRepairAllSweepsDeliveriesAndChecklists(t *testing.T) {
	contracts := new(MockLinkerContractStore)
	deliveries := new(MockLinkerDeliveryStore)
	checklists := new(MockLinkerChecklistStore)

	// no contract exists for either number, so the contract pass alone
	// would leave both pairs unlinked
	unpaired := models.Delivery{ID: uuid.New(), DeliveryNumber: "CMD-9100"}
	itsChecklist := &models.Checklist{ID: uuid.New(), OrderNumber: "CMD-9100"}
	lonely := models.Checklist{ID: uuid.New(), OrderNumber: "CMD-9200"}
	itsDelivery := &models.Delivery{ID: uuid.New(), DeliveryNumber: "CMD-9200"}

	contracts.On("ListUnlinked", mock.Anything).Return([]models.Contract{}, nil)
	deliveries.On("ListUnlinked", mock.Anything).Return([]models.Delivery{unpaired}, nil)
	checklists.On("ListUnlinked", mock.Anything).Return([]models.Checklist{lonely}, nil)

	checklists.On("GetByOrderNumber", mock.Anything, "CMD-9100").Return(itsChecklist, nil)
	checklists.On("CountByOrderNumber", mock.Anything, "CMD-9100").Return(1, nil)
	deliveries.On("SetChecklist", mock.Anything, unpaired.ID, itsChecklist.ID).Return(true, nil)
	checklists.On("SetDelivery", mock.Anything, itsChecklist.ID, unpaired.ID).Return(true, nil)
	contracts.On("GetByNumber", mock.Anything, "CMD-9100").Return(nil, repositories.ErrNotFound)

	deliveries.On("GetByNumber", mock.Anything, "CMD-9200").Return(itsDelivery, nil)
	deliveries.On("CountByNumber", mock.Anything, "CMD-9200").Return(1, nil)
	checklists.On("SetDelivery", mock.Anything, lonely.ID, itsDelivery.ID).Return(true, nil)
	deliveries.On("SetChecklist", mock.Anything, itsDelivery.ID, lonely.ID).Return(true, nil)
	contracts.On("GetByNumber", mock.Anything, "CMD-9200").Return(nil, repositories.ErrNotFound)

	linker := newLinkerForTest(contracts, deliveries, checklists)

	result, err := linker.RepairAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.Repaired)
	deliveries.AssertExpectations(t)
	checklists.AssertExpectations(t)
}

func TestVerifyConsistencyReportsMismatches(t *testing.T) {
	contracts := new(MockLinkerContractStore)
	deliveries := new(MockLinkerDeliveryStore)
	checklists := new(MockLinkerChecklistStore)

	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	deliveryID := uuid.New()
	checklistID := uuid.New()
	contract := &models.Contract{
		ID:             uuid.New(),
		ContractNumber: "CMD-7000",
		EventDate:      day,
		DeliveryID:     &deliveryID,
		ChecklistID:    &checklistID,
	}

	contracts.On("GetByID", mock.Anything, contract.ID).Return(contract, nil)
	// wrong number and wrong day
	deliveries.On("GetByID", mock.Anything, deliveryID).Return(&models.Delivery{
		ID:             deliveryID,
		DeliveryNumber: "CMD-7777",
		DeliveryDate:   day.AddDate(0, 0, 2),
	}, nil)
	// checklist points at a different delivery
	otherDelivery := uuid.New()
	checklists.On("GetByID", mock.Anything, checklistID).Return(&models.Checklist{
		ID:          checklistID,
		OrderNumber: "CMD-7000",
		DeliveryID:  &otherDelivery,
	}, nil)

	linker := newLinkerForTest(contracts, deliveries, checklists)

	discrepancies, err := linker.VerifyConsistency(context.Background(), contract.ID)
	require.NoError(t, err)
	require.Len(t, discrepancies, 3)

	kinds := make(map[string]int)
	for _, d := range discrepancies {
		kinds[d.Kind]++
	}
	require.Equal(t, 1, kinds["number_mismatch"])
	require.Equal(t, 1, kinds["date_mismatch"])
	require.Equal(t, 1, kinds["reverse_link_broken"])
}

func TestVerifyConsistencyCleanContract(t *testing.T) {
	contracts := new(MockLinkerContractStore)
	contract := &models.Contract{ID: uuid.New(), ContractNumber: "CMD-8000"}
	contracts.On("GetByID", mock.Anything, contract.ID).Return(contract, nil)

	linker := newLinkerForTest(contracts, new(MockLinkerDeliveryStore), new(MockLinkerChecklistStore))

	discrepancies, err := linker.VerifyConsistency(context.Background(), contract.ID)
	require.NoError(t, err)
	require.Empty(t, discrepancies)
}
