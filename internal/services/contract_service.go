package services

import (
	"context"
	"time"

	"cheflow-backend/internal/models"
	"cheflow-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ContractStore is the persistence surface of the contract workflow.
type ContractStore interface {
	Create(ctx context.Context, c *models.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.Contract, error)
	Start(ctx context.Context, id uuid.UUID) error
	Finish(ctx context.Context, id uuid.UUID, drinksReport, finalNotes string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// ContractHistoryStore records the contract action trail.
type ContractHistoryStore interface {
	Insert(ctx context.Context, h *models.ContractHistory) error
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.ContractHistory, error)
}

// ContractLinker attaches a fresh contract to its counterparts.
type ContractLinker interface {
	LinkContract(ctx context.Context, c *models.Contract) models.LinkReport
	VerifyConsistency(ctx context.Context, contractID uuid.UUID) ([]models.Discrepancy, error)
}

type ContractService struct {
	contracts ContractStore
	history   ContractHistoryStore
	linker    ContractLinker
	logger    zerolog.Logger
}

func NewContractService(contracts ContractStore, history ContractHistoryStore, linker ContractLinker, logger zerolog.Logger) *ContractService {
	return &ContractService{
		contracts: contracts,
		history:   history,
		linker:    linker,
		logger:    logger,
	}
}

// Create validates and persists a contract, links it to the delivery
// and checklist sharing its number, and opens its action trail.
func (s *ContractService) Create(ctx context.Context, req *models.CreateContractRequest, createdBy *int) (*models.Contract, error) {
	if req.ContractNumber == "" {
		return nil, invalid("contract_number", "is required")
	}
	if req.ClientName == "" {
		return nil, invalid("client_name", "is required")
	}
	eventDate, err := timeutil.ParseLocal(timeutil.DateLayout, req.EventDate)
	if err != nil {
		return nil, invalid("event_date", "must be YYYY-MM-DD")
	}
	start, err := timeutil.ParseLocal(timeutil.DateLayout+" "+timeutil.ClockLayout, req.EventDate+" "+req.PlannedStartTime)
	if err != nil {
		return nil, invalid("planned_start_time", "must be HH:MM")
	}
	end, err := timeutil.ParseLocal(timeutil.DateLayout+" "+timeutil.ClockLayout, req.EventDate+" "+req.PlannedEndTime)
	if err != nil {
		return nil, invalid("planned_end_time", "must be HH:MM")
	}
	if !end.After(start) {
		return nil, invalid("planned_end_time", "must be after the start time")
	}

	c := &models.Contract{
		ContractNumber:      req.ContractNumber,
		EventName:           req.EventName,
		MaitreHotelUserID:   req.MaitreHotelUserID,
		ClientName:          req.ClientName,
		ClientPhone:         req.ClientPhone,
		ClientEmail:         req.ClientEmail,
		OnSiteContact:       req.OnSiteContact,
		Address:             req.Address,
		City:                req.City,
		PostalCode:          req.PostalCode,
		EventDate:           eventDate,
		PlannedStartTime:    start,
		PlannedEndTime:      end,
		GuestCount:          req.GuestCount,
		EventRundown:        req.EventRundown,
		SpecialInstructions: req.SpecialInstructions,
		Status:              models.ContractStatusPlanned,
		CreatedByUserID:     createdBy,
	}
	if c.City == "" {
		c.City = "Montreal"
	}
	if err := s.contracts.Create(ctx, c); err != nil {
		return nil, err
	}

	if s.linker != nil {
		s.linker.LinkContract(ctx, c)
	}
	s.record(ctx, c.ID, models.ContractActionCreated, "contract created", createdBy)
	s.logger.Info().Str("contract_number", c.ContractNumber).Msg("contract created")
	return c, nil
}

func (s *ContractService) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return s.contracts.GetByID(ctx, id)
}

func (s *ContractService) ListByDate(ctx context.Context, date time.Time) ([]models.Contract, error) {
	return s.contracts.ListByDate(ctx, date)
}

func (s *ContractService) History(ctx context.Context, id uuid.UUID) ([]models.ContractHistory, error) {
	return s.history.ListByContract(ctx, id)
}

// Start opens the event on site.
func (s *ContractService) Start(ctx context.Context, id uuid.UUID, actedBy *int) error {
	if err := s.contracts.Start(ctx, id); err != nil {
		return err
	}
	s.record(ctx, id, models.ContractActionStarted, "event started", actedBy)
	return nil
}

// Finish closes the event with the drinks report and final notes.
func (s *ContractService) Finish(ctx context.Context, id uuid.UUID, drinksReport, finalNotes string, actedBy *int) error {
	if err := s.contracts.Finish(ctx, id, drinksReport, finalNotes); err != nil {
		return err
	}
	s.record(ctx, id, models.ContractActionFinished, "event finished", actedBy)
	if drinksReport != "" {
		s.record(ctx, id, models.ContractActionDrinksReport, drinksReport, actedBy)
	}
	return nil
}

func (s *ContractService) Cancel(ctx context.Context, id uuid.UUID, reason string, actedBy *int) error {
	c, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.Status == models.ContractStatusCompleted || c.Status == models.ContractStatusCancelled {
		return ErrConflict
	}
	if err := s.contracts.UpdateStatus(ctx, id, models.ContractStatusCancelled); err != nil {
		return err
	}
	s.record(ctx, id, models.ContractActionCancelled, reason, actedBy)
	return nil
}

// VerifyConsistency reports link mismatches for operator review.
func (s *ContractService) VerifyConsistency(ctx context.Context, id uuid.UUID) ([]models.Discrepancy, error) {
	return s.linker.VerifyConsistency(ctx, id)
}

func (s *ContractService) record(ctx context.Context, id uuid.UUID, action, description string, actedBy *int) {
	h := &models.ContractHistory{
		ContractID:    id,
		ActionKind:    action,
		Description:   description,
		ActedByUserID: actedBy,
	}
	if err := s.history.Insert(ctx, h); err != nil {
		s.logger.Warn().Err(err).Str("contract_id", id.String()).Str("action", action).Msg("history entry failed")
	}
}
