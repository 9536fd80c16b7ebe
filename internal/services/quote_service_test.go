package services

import (
	"context"
	"testing"
	"time"

	"cheflow-backend/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockQuoteStore struct {
	mock.Mock
}

func (m *MockQuoteStore) Create(ctx context.Context, q *models.Quote) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQuoteStore) GetByID(ctx context.Context, id int) (*models.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quote), args.Error(1)
}

func (m *MockQuoteStore) List(ctx context.Context, status string) ([]models.Quote, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]models.Quote), args.Error(1)
}

func (m *MockQuoteStore) MarkSent(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuoteStore) MarkDecided(ctx context.Context, id int, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func TestCreateQuoteRequiresCompanyName(t *testing.T) {
	service := NewQuoteService(new(MockQuoteStore), zerolog.Nop())

	_, err := service.Create(context.Background(), &models.CreateQuoteRequest{EventDate: "2026-06-10"}, nil)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDuplicateQuoteStartsFreshDraft(t *testing.T) {
	quotes := new(MockQuoteStore)
	sent := time.Now()
	quotes.On("GetByID", mock.Anything, 5).Return(&models.Quote{
		ID:          5,
		QuoteNumber: "SOU-00005",
		CompanyName: "Maison Dubois",
		EventDate:   time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
		GuestCount:  40,
		WithAlcohol: true,
		Status:      models.QuoteStatusSent,
		SentAt:      &sent,
	}, nil)
	quotes.On("Create", mock.Anything, mock.MatchedBy(func(q *models.Quote) bool {
		return q.CompanyName == "Maison Dubois" &&
			q.GuestCount == 40 &&
			q.WithAlcohol &&
			q.Status == models.QuoteStatusInProgress &&
			q.SentAt == nil && q.DecidedAt == nil
	})).Return(nil)

	service := NewQuoteService(quotes, zerolog.Nop())

	dup, err := service.Duplicate(context.Background(), 5, nil)
	require.NoError(t, err)
	require.Equal(t, models.QuoteStatusInProgress, dup.Status)
	quotes.AssertExpectations(t)
}

func TestDecideMapsAnswerToStatus(t *testing.T) {
	quotes := new(MockQuoteStore)
	quotes.On("MarkDecided", mock.Anything, 9, models.QuoteStatusAccepted).Return(nil)
	quotes.On("MarkDecided", mock.Anything, 10, models.QuoteStatusRefused).Return(nil)
	quotes.On("GetByID", mock.Anything, 9).Return(&models.Quote{ID: 9, Status: models.QuoteStatusAccepted}, nil)
	quotes.On("GetByID", mock.Anything, 10).Return(&models.Quote{ID: 10, Status: models.QuoteStatusRefused}, nil)

	service := NewQuoteService(quotes, zerolog.Nop())

	q, err := service.Decide(context.Background(), 9, true)
	require.NoError(t, err)
	require.Equal(t, models.QuoteStatusAccepted, q.Status)

	q, err = service.Decide(context.Background(), 10, false)
	require.NoError(t, err)
	require.Equal(t, models.QuoteStatusRefused, q.Status)
}
