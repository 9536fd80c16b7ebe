package services

import (
	"context"

	"cheflow-backend/internal/models"
	"cheflow-backend/internal/timeutil"

	"github.com/rs/zerolog"
)

// QuoteStore is the persistence surface of the quote workflow.
type QuoteStore interface {
	Create(ctx context.Context, q *models.Quote) error
	GetByID(ctx context.Context, id int) (*models.Quote, error)
	List(ctx context.Context, status string) ([]models.Quote, error)
	MarkSent(ctx context.Context, id int) error
	MarkDecided(ctx context.Context, id int, status string) error
}

type QuoteService struct {
	quotes QuoteStore
	logger zerolog.Logger
}

func NewQuoteService(quotes QuoteStore, logger zerolog.Logger) *QuoteService {
	return &QuoteService{quotes: quotes, logger: logger}
}

func (s *QuoteService) Create(ctx context.Context, req *models.CreateQuoteRequest, createdBy *int) (*models.Quote, error) {
	if req.CompanyName == "" {
		return nil, invalid("company_name", "is required")
	}
	eventDate, err := timeutil.ParseLocal(timeutil.DateLayout, req.EventDate)
	if err != nil {
		return nil, invalid("event_date", "must be YYYY-MM-DD")
	}

	q := &models.Quote{
		CompanyName:     req.CompanyName,
		EventDate:       eventDate,
		GuestCount:      req.GuestCount,
		Address:         req.Address,
		WithService:     req.WithService,
		WithAlcohol:     req.WithAlcohol,
		EquipmentRental: req.EquipmentRental,
		OrderedBy:       req.OrderedBy,
		Email:           req.Email,
		Phone:           req.Phone,
		Notes:           req.Notes,
		Status:          models.QuoteStatusInProgress,
		CreatedByUserID: createdBy,
	}
	if err := s.quotes.Create(ctx, q); err != nil {
		return nil, err
	}
	s.logger.Info().Str("quote_number", q.QuoteNumber).Msg("quote created")
	return q, nil
}

func (s *QuoteService) GetByID(ctx context.Context, id int) (*models.Quote, error) {
	return s.quotes.GetByID(ctx, id)
}

func (s *QuoteService) List(ctx context.Context, status string) ([]models.Quote, error) {
	return s.quotes.List(ctx, status)
}

// Duplicate copies an existing quote into a fresh draft. The copy gets
// its own number from the sequence; sent/decided stamps are not carried.
func (s *QuoteService) Duplicate(ctx context.Context, id int, createdBy *int) (*models.Quote, error) {
	src, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dup := &models.Quote{
		CompanyName:     src.CompanyName,
		EventDate:       src.EventDate,
		GuestCount:      src.GuestCount,
		Address:         src.Address,
		WithService:     src.WithService,
		WithAlcohol:     src.WithAlcohol,
		EquipmentRental: src.EquipmentRental,
		OrderedBy:       src.OrderedBy,
		Email:           src.Email,
		Phone:           src.Phone,
		Notes:           src.Notes,
		Status:          models.QuoteStatusInProgress,
		CreatedByUserID: createdBy,
	}
	if err := s.quotes.Create(ctx, dup); err != nil {
		return nil, err
	}
	s.logger.Info().Str("quote_number", dup.QuoteNumber).Str("source", src.QuoteNumber).Msg("quote duplicated")
	return dup, nil
}

// Send moves a draft quote to awaiting the client's decision.
func (s *QuoteService) Send(ctx context.Context, id int) (*models.Quote, error) {
	if err := s.quotes.MarkSent(ctx, id); err != nil {
		return nil, err
	}
	return s.quotes.GetByID(ctx, id)
}

// Decide records the client's answer on a sent quote.
func (s *QuoteService) Decide(ctx context.Context, id int, accepted bool) (*models.Quote, error) {
	status := models.QuoteStatusRefused
	if accepted {
		status = models.QuoteStatusAccepted
	}
	if err := s.quotes.MarkDecided(ctx, id, status); err != nil {
		return nil, err
	}
	return s.quotes.GetByID(ctx, id)
}
