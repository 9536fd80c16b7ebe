package services

import (
	"context"
	"errors"
	"time"

	"cheflow-backend/internal/metrics"
	"cheflow-backend/internal/models"
	"cheflow-backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LinkerContractStore is the contract surface the linker works against.
type LinkerContractStore interface {
	GetByNumber(ctx context.Context, number string) (*models.Contract, error)
	ListUnlinked(ctx context.Context) ([]models.Contract, error)
	SetDelivery(ctx context.Context, id, deliveryID uuid.UUID) (bool, error)
	SetChecklist(ctx context.Context, id, checklistID uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
}

// LinkerDeliveryStore is the delivery surface the linker works against.
type LinkerDeliveryStore interface {
	GetByNumber(ctx context.Context, number string) (*models.Delivery, error)
	CountByNumber(ctx context.Context, number string) (int, error)
	ListUnlinked(ctx context.Context) ([]models.Delivery, error)
	SetChecklist(ctx context.Context, id, checklistID uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
}

// LinkerChecklistStore is the checklist surface the linker works against.
type LinkerChecklistStore interface {
	GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Checklist, error)
	CountByOrderNumber(ctx context.Context, orderNumber string) (int, error)
	ListUnlinked(ctx context.Context) ([]models.Checklist, error)
	SetDelivery(ctx context.Context, id, deliveryID uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Checklist, error)
}

// LinkerService joins contracts, deliveries and checklists that share a
// business number. Links are one-shot: a slot already filled is never
// overwritten, and a lost race is not an error. Matching picks the most
// recently created record when a number appears more than once.
type LinkerService struct {
	contracts  LinkerContractStore
	deliveries LinkerDeliveryStore
	checklists LinkerChecklistStore
	logger     zerolog.Logger
}

func NewLinkerService(contracts LinkerContractStore, deliveries LinkerDeliveryStore, checklists LinkerChecklistStore, logger zerolog.Logger) *LinkerService {
	return &LinkerService{
		contracts:  contracts,
		deliveries: deliveries,
		checklists: checklists,
		logger:     logger,
	}
}

// LinkContract fills the contract's delivery and checklist slots from
// records carrying the same number. Contracts without a number are
// skipped outright.
func (s *LinkerService) LinkContract(ctx context.Context, c *models.Contract) models.LinkReport {
	report := models.LinkReport{RecordKind: "contract", BusinessKey: c.ContractNumber}
	if c.ContractNumber == "" {
		report.Error = "contract has no number"
		return report
	}

	if c.DeliveryID == nil {
		if d, ok := s.findDelivery(ctx, c.ContractNumber, &report); ok {
			linked, err := s.contracts.SetDelivery(ctx, c.ID, d.ID)
			if err != nil {
				report.Error = err.Error()
				return report
			}
			if linked {
				c.DeliveryID = &d.ID
				report.Attached = append(report.Attached, "delivery")
				metrics.LinksEstablished.WithLabelValues("contract_delivery").Inc()
			} else {
				metrics.LinkRacesLost.Inc()
			}
		}
	}

	if c.ChecklistID == nil {
		if cl, ok := s.findChecklist(ctx, c.ContractNumber, &report); ok {
			linked, err := s.contracts.SetChecklist(ctx, c.ID, cl.ID)
			if err != nil {
				report.Error = err.Error()
				return report
			}
			if linked {
				c.ChecklistID = &cl.ID
				report.Attached = append(report.Attached, "checklist")
				metrics.LinksEstablished.WithLabelValues("contract_checklist").Inc()
			} else {
				metrics.LinkRacesLost.Inc()
			}
		}
	}

	s.logReport(report)
	return report
}

// LinkChecklist pairs a checklist with the delivery sharing its order
// number, setting both directions of the link, and offers itself to a
// matching contract.
func (s *LinkerService) LinkChecklist(ctx context.Context, c *models.Checklist) []models.LinkReport {
	report := models.LinkReport{RecordKind: "checklist", BusinessKey: c.OrderNumber}
	var reports []models.LinkReport

	if c.DeliveryID == nil {
		if d, ok := s.findDelivery(ctx, c.OrderNumber, &report); ok {
			linked, err := s.checklists.SetDelivery(ctx, c.ID, d.ID)
			if err != nil {
				report.Error = err.Error()
			} else if linked {
				c.DeliveryID = &d.ID
				report.Attached = append(report.Attached, "delivery")
				metrics.LinksEstablished.WithLabelValues("checklist_delivery").Inc()
				if _, err := s.deliveries.SetChecklist(ctx, d.ID, c.ID); err != nil {
					report.Error = err.Error()
				}
			} else {
				metrics.LinkRacesLost.Inc()
			}
		}
	}
	reports = append(reports, report)

	if contract, err := s.contracts.GetByNumber(ctx, c.OrderNumber); err == nil && contract.ChecklistID == nil {
		reports = append(reports, s.LinkContract(ctx, contract))
	}

	s.logReport(report)
	return reports
}

// LinkDelivery pairs a delivery with the checklist sharing its number
// and offers itself to a matching contract.
func (s *LinkerService) LinkDelivery(ctx context.Context, d *models.Delivery) []models.LinkReport {
	report := models.LinkReport{RecordKind: "delivery", BusinessKey: d.DeliveryNumber}
	var reports []models.LinkReport

	if d.ChecklistID == nil {
		if cl, ok := s.findChecklist(ctx, d.DeliveryNumber, &report); ok {
			linked, err := s.deliveries.SetChecklist(ctx, d.ID, cl.ID)
			if err != nil {
				report.Error = err.Error()
			} else if linked {
				d.ChecklistID = &cl.ID
				report.Attached = append(report.Attached, "checklist")
				metrics.LinksEstablished.WithLabelValues("delivery_checklist").Inc()
				if _, err := s.checklists.SetDelivery(ctx, cl.ID, d.ID); err != nil {
					report.Error = err.Error()
				}
			} else {
				metrics.LinkRacesLost.Inc()
			}
		}
	}
	reports = append(reports, report)

	if contract, err := s.contracts.GetByNumber(ctx, d.DeliveryNumber); err == nil && contract.DeliveryID == nil {
		reports = append(reports, s.LinkContract(ctx, contract))
	}

	s.logReport(report)
	return reports
}

// RepairAll retries the pairing for every record still missing a link:
// contracts first, then deliveries without a checklist, then checklists
// without a delivery. Idempotent; used by the maintenance runner and
// the admin endpoint.
func (s *LinkerService) RepairAll(ctx context.Context) (*models.RepairResult, error) {
	result := &models.RepairResult{}
	swept := 0

	contracts, err := s.contracts.ListUnlinked(ctx)
	if err != nil {
		return nil, err
	}
	for i := range contracts {
		report := s.LinkContract(ctx, &contracts[i])
		if len(report.Attached) > 0 {
			result.Repaired++
		}
		result.Reports = append(result.Reports, report)
	}
	swept += len(contracts)

	deliveries, err := s.deliveries.ListUnlinked(ctx)
	if err != nil {
		return nil, err
	}
	for i := range deliveries {
		reports := s.LinkDelivery(ctx, &deliveries[i])
		if len(reports) > 0 && len(reports[0].Attached) > 0 {
			result.Repaired++
		}
		result.Reports = append(result.Reports, reports...)
	}
	swept += len(deliveries)

	checklists, err := s.checklists.ListUnlinked(ctx)
	if err != nil {
		return nil, err
	}
	for i := range checklists {
		reports := s.LinkChecklist(ctx, &checklists[i])
		if len(reports) > 0 && len(reports[0].Attached) > 0 {
			result.Repaired++
		}
		result.Reports = append(result.Reports, reports...)
	}
	swept += len(checklists)

	s.logger.Info().
		Int("swept", swept).
		Int("repaired", result.Repaired).
		Msg("link repair sweep finished")
	return result, nil
}

// VerifyConsistency compares a contract with its linked records and
// reports mismatches without correcting anything.
func (s *LinkerService) VerifyConsistency(ctx context.Context, contractID uuid.UUID) ([]models.Discrepancy, error) {
	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}

	var out []models.Discrepancy
	if c.DeliveryID != nil {
		d, err := s.deliveries.GetByID(ctx, *c.DeliveryID)
		if err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				return nil, err
			}
			out = append(out, models.Discrepancy{Kind: "reverse_link_broken", Field: "delivery"})
		} else {
			if d.DeliveryNumber != c.ContractNumber {
				out = append(out, models.Discrepancy{
					Kind: "number_mismatch", Field: "delivery",
					Expected: c.ContractNumber, Actual: d.DeliveryNumber,
				})
			}
			if !sameDay(d.DeliveryDate, c.EventDate) {
				out = append(out, models.Discrepancy{
					Kind: "date_mismatch", Field: "delivery",
					Expected: c.EventDate.Format("2006-01-02"), Actual: d.DeliveryDate.Format("2006-01-02"),
				})
			}
		}
	}

	if c.ChecklistID != nil {
		cl, err := s.checklists.GetByID(ctx, *c.ChecklistID)
		if err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				return nil, err
			}
			out = append(out, models.Discrepancy{Kind: "reverse_link_broken", Field: "checklist"})
		} else {
			if cl.OrderNumber != c.ContractNumber {
				out = append(out, models.Discrepancy{
					Kind: "number_mismatch", Field: "checklist",
					Expected: c.ContractNumber, Actual: cl.OrderNumber,
				})
			}
			if c.DeliveryID != nil && (cl.DeliveryID == nil || *cl.DeliveryID != *c.DeliveryID) {
				out = append(out, models.Discrepancy{Kind: "reverse_link_broken", Field: "checklist"})
			}
		}
	}

	return out, nil
}

func (s *LinkerService) findDelivery(ctx context.Context, number string, report *models.LinkReport) (*models.Delivery, bool) {
	d, err := s.deliveries.GetByNumber(ctx, number)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		report.Error = err.Error()
		return nil, false
	}
	if n, err := s.deliveries.CountByNumber(ctx, number); err == nil && n > 1 {
		metrics.DuplicateBusinessKeys.WithLabelValues("delivery").Inc()
		s.logger.Warn().Str("number", number).Int("count", n).Msg("duplicate delivery numbers, newest wins")
	}
	return d, true
}

func (s *LinkerService) findChecklist(ctx context.Context, number string, report *models.LinkReport) (*models.Checklist, bool) {
	cl, err := s.checklists.GetByOrderNumber(ctx, number)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		report.Error = err.Error()
		return nil, false
	}
	if n, err := s.checklists.CountByOrderNumber(ctx, number); err == nil && n > 1 {
		metrics.DuplicateBusinessKeys.WithLabelValues("checklist").Inc()
		s.logger.Warn().Str("number", number).Int("count", n).Msg("duplicate order numbers, newest wins")
	}
	return cl, true
}

func (s *LinkerService) logReport(r models.LinkReport) {
	if len(r.Attached) == 0 && r.Error == "" {
		return
	}
	evt := s.logger.Info()
	if r.Error != "" {
		evt = s.logger.Warn().Str("error", r.Error)
	}
	evt.Str("kind", r.RecordKind).Str("key", r.BusinessKey).Strs("attached", r.Attached).Msg("link pass")
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
