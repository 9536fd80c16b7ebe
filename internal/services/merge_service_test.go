package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"cheflow-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMergeDeliveryStore struct {
	mock.Mock
}

func (m *MockMergeDeliveryStore) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Delivery, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Delivery), args.Error(1)
}

func (m *MockMergeDeliveryStore) ExecuteMerge(ctx context.Context, survivor *models.Delivery, mergedIDs []uuid.UUID) error {
	args := m.Called(ctx, survivor, mergedIDs)
	return args.Error(0)
}

func TestMergeNames(t *testing.T) {
	cases := []struct {
		name  string
		names []string
		want  string
	}{
		{
			"numbered rooms collapse",
			[]string{"Conference Hall 305.1", "Conference Hall 305.2"},
			"Conference Hall 305.1+305.2",
		},
		{
			"first zone tag kept",
			[]string{"Gala 12 @West", "Gala 13 @East"},
			"Gala 12+13 @West",
		},
		{
			"first base wins",
			[]string{"Salon A 1", "Salon B 2"},
			"Salon A 1+2",
		},
		{
			"unparseable falls back to join",
			[]string{"Wedding Reception", "Cocktail Hour"},
			"Wedding Reception + Cocktail Hour",
		},
		{
			"unparseable names are skipped",
			[]string{"Gala 12", "Afterparty"},
			"Gala 12",
		},
		{
			"unparseable name in the middle",
			[]string{"Marie 1", "Livraison speciale", "Marie 2"},
			"Marie 1+2",
		},
		{
			"leading unparseable seeds the base",
			[]string{"Afterparty", "Gala 12", "Gala 13"},
			"Afterparty 12+13",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, MergeNames(tc.names))
		})
	}
}

func TestSelectPrincipal(t *testing.T) {
	checklistID := uuid.New()
	pickupMode := &models.DeliveryMode{ID: 1, Name: "Full Service", SupportsPickup: true}
	plainMode := &models.DeliveryMode{ID: 2, Name: "Drop Off"}

	plain := models.Delivery{ID: uuid.New(), Mode: plainMode}
	withChecklist := models.Delivery{ID: uuid.New(), ChecklistID: &checklistID, Mode: plainMode}
	withPickup := models.Delivery{ID: uuid.New(), Mode: pickupMode}
	withBoth := models.Delivery{ID: uuid.New(), ChecklistID: &checklistID, Mode: pickupMode}

	require.Equal(t, withBoth.ID, SelectPrincipal([]models.Delivery{plain, withChecklist, withPickup, withBoth}).ID)
	require.Equal(t, withChecklist.ID, SelectPrincipal([]models.Delivery{plain, withPickup, withChecklist}).ID)
	require.Equal(t, withPickup.ID, SelectPrincipal([]models.Delivery{plain, withPickup}).ID)
	// ties keep input order
	first := models.Delivery{ID: uuid.New()}
	second := models.Delivery{ID: uuid.New()}
	require.Equal(t, first.ID, SelectPrincipal([]models.Delivery{first, second}).ID)
}

func TestMergeRequiresTwoDeliveries(t *testing.T) {
	service := NewMergeService(new(MockMergeDeliveryStore), zerolog.Nop())

	_, err := service.Merge(context.Background(), &models.MergeDeliveriesRequest{DeliveryIDs: []uuid.UUID{uuid.New()}})
	require.Error(t, err)
	require.True(t, IsValidation(err))
}

func TestMergeRejectsMixedDates(t *testing.T) {
	store := new(MockMergeDeliveryStore)
	day1 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	store.On("ListByIDs", mock.Anything, ids).Return([]models.Delivery{
		{ID: ids[0], DeliveryDate: day1},
		{ID: ids[1], DeliveryDate: day2},
	}, nil)

	service := NewMergeService(store, zerolog.Nop())
	_, err := service.Merge(context.Background(), &models.MergeDeliveriesRequest{DeliveryIDs: ids})
	require.Error(t, err)
	require.True(t, IsValidation(err))
}

func TestMergeRejectsFinishedDeliveries(t *testing.T) {
	store := new(MockMergeDeliveryStore)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	store.On("ListByIDs", mock.Anything, ids).Return([]models.Delivery{
		{ID: ids[0], DeliveryDate: day, Status: models.DeliveryStatusDelivered},
		{ID: ids[1], DeliveryDate: day, Status: models.DeliveryStatusUnassigned},
	}, nil)

	service := NewMergeService(store, zerolog.Nop())
	_, err := service.Merge(context.Background(), &models.MergeDeliveriesRequest{DeliveryIDs: ids})
	require.Error(t, err)
	require.True(t, IsValidation(err))
}

func TestMergeRejectsRoutedDeliveries(t *testing.T) {
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for _, status := range []string{models.DeliveryStatusAssigned, models.DeliveryStatusInProgress} {
		store := new(MockMergeDeliveryStore)
		ids := []uuid.UUID{uuid.New(), uuid.New()}

		store.On("ListByIDs", mock.Anything, ids).Return([]models.Delivery{
			{ID: ids[0], DeliveryDate: day, Status: status},
			{ID: ids[1], DeliveryDate: day, Status: models.DeliveryStatusUnassigned},
		}, nil)

		service := NewMergeService(store, zerolog.Nop())
		_, err := service.Merge(context.Background(), &models.MergeDeliveriesRequest{DeliveryIDs: ids})
		require.Error(t, err)
		require.True(t, IsValidation(err))
		store.AssertNotCalled(t, "ExecuteMerge", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestMergeNoteRecordsAbsorbedDeliveries(t *testing.T) {
	store := new(MockMergeDeliveryStore)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	checklistID := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	deliveries := []models.Delivery{
		{
			ID: ids[0], DeliveryDate: day, DeliveryNumber: "CMD-1001", EventName: "Gala 1",
			GuestCount: 40, Status: models.DeliveryStatusUnassigned, ChecklistID: &checklistID,
			InternalNotes: "call ahead", Mode: &models.DeliveryMode{ID: 1, Name: "Full Service"},
		},
		{
			ID: ids[1], DeliveryDate: day, DeliveryNumber: "CMD-1002", EventName: "Gala 2",
			GuestCount: 25, Status: models.DeliveryStatusUnassigned,
			Mode: &models.DeliveryMode{ID: 2, Name: "Drop Off"},
		},
	}
	store.On("ListByIDs", mock.Anything, ids).Return(deliveries, nil)
	var notes string
	store.On("ExecuteMerge", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			notes = args.Get(1).(*models.Delivery).InternalNotes
		}).Return(nil)

	service := NewMergeService(store, zerolog.Nop())
	_, err := service.Merge(context.Background(), &models.MergeDeliveriesRequest{DeliveryIDs: ids})
	require.NoError(t, err)

	// the survivor keeps its own notes and gains the merge record
	require.True(t, strings.HasPrefix(notes, "call ahead\n\n"))
	require.Contains(t, notes, "=== MERGE OF 2 DELIVERIES ===")
	require.Contains(t, notes, "Merged at:")
	require.Contains(t, notes, "Delivery modes: Full Service + Drop Off")
	require.Contains(t, notes, "Total guests: 65")
	require.Contains(t, notes, "CMD-1001 - Gala 1")
	require.Contains(t, notes, "CMD-1002 - Gala 2")
}

func TestMergeAggregatesIntoPrincipal(t *testing.T) {
	store := new(MockMergeDeliveryStore)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	checklistID := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	deliveries := []models.Delivery{
		{
			ID: ids[0], DeliveryDate: day, EventName: "Banquet 101",
			GuestCount: 30, NeedsCoffee: true, InternalNotes: "use loading dock",
			Status: models.DeliveryStatusUnassigned,
		},
		{
			ID: ids[1], DeliveryDate: day, EventName: "Banquet 102",
			GuestCount: 20, NeedsTea: true, ChecklistID: &checklistID,
			Status: models.DeliveryStatusUnassigned,
		},
		{
			ID: ids[2], DeliveryDate: day, EventName: "Banquet 103",
			GuestCount: 10, OtherNeeds: "extra napkins",
			Status: models.DeliveryStatusUnassigned,
		},
	}
	store.On("ListByIDs", mock.Anything, ids).Return(deliveries, nil)
	store.On("ExecuteMerge", mock.Anything, mock.MatchedBy(func(s *models.Delivery) bool {
		return s.ID == ids[1] && // the one with the checklist survives
			s.EventName == "Banquet 101+102+103" &&
			s.GuestCount == 60 &&
			s.NeedsCoffee && s.NeedsTea &&
			s.OtherNeeds == "extra napkins" &&
			strings.Contains(s.InternalNotes, "=== MERGE OF 3 DELIVERIES ===")
	}), mock.MatchedBy(func(merged []uuid.UUID) bool {
		return len(merged) == 2
	})).Return(nil)

	service := NewMergeService(store, zerolog.Nop())
	result, err := service.Merge(context.Background(), &models.MergeDeliveriesRequest{DeliveryIDs: ids})
	require.NoError(t, err)
	require.Equal(t, ids[1], result.SurvivorID)
	require.Equal(t, 60, result.GuestCount)
	require.Equal(t, 2, result.MergedCount)
	store.AssertExpectations(t)
}
