package services

import (
	"context"
	"errors"
	"math"
	"time"

	"cheflow-backend/internal/metrics"
	"cheflow-backend/internal/models"
	"cheflow-backend/internal/repositories"
	"cheflow-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ChecklistStore is the persistence surface the checklist workflow needs.
type ChecklistStore interface {
	Create(ctx context.Context, c *models.Checklist, items []models.ChecklistItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Checklist, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Checklist, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.Checklist, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Finalize(ctx context.Context, id uuid.UUID, status string, verifierUserID int, notes string) error
	Duplicate(ctx context.Context, id uuid.UUID, orderNumber, name string, createdBy *int) (*models.Checklist, error)
}

// ChecklistItemStore is the persistence surface for individual items.
type ChecklistItemStore interface {
	GetByID(ctx context.Context, id int) (*models.ChecklistItem, error)
	ListByChecklist(ctx context.Context, checklistID uuid.UUID) ([]models.ChecklistItem, error)
	StatusCounts(ctx context.Context, checklistID uuid.UUID) (map[string]int, error)
	Create(ctx context.Context, it *models.ChecklistItem) error
	UpdateQuantity(ctx context.Context, id int, quantity decimal.Decimal) error
	UpdateObject(ctx context.Context, id, objectID int) error
	SetVerification(ctx context.Context, id int, status string, verifierUserID int, notes string) error
	Delete(ctx context.Context, id int) error
}

// ItemHistoryStore records immutable audit entries for item changes.
type ItemHistoryStore interface {
	Insert(ctx context.Context, h *models.ChecklistItemHistory) error
	ListByChecklist(ctx context.Context, checklistID uuid.UUID) ([]models.ChecklistItemHistory, error)
}

// CatalogStore resolves catalog objects for item edits.
type CatalogStore interface {
	GetObject(ctx context.Context, id int) (*models.CatalogObject, error)
}

// ChecklistLinker attaches a freshly created checklist to its delivery
// and contract counterparts.
type ChecklistLinker interface {
	LinkChecklist(ctx context.Context, c *models.Checklist) []models.LinkReport
}

type ChecklistService struct {
	checklists ChecklistStore
	items      ChecklistItemStore
	history    ItemHistoryStore
	catalog    CatalogStore
	linker     ChecklistLinker
	logger     zerolog.Logger
}

func NewChecklistService(checklists ChecklistStore, items ChecklistItemStore, history ItemHistoryStore, catalog CatalogStore, linker ChecklistLinker, logger zerolog.Logger) *ChecklistService {
	return &ChecklistService{
		checklists: checklists,
		items:      items,
		history:    history,
		catalog:    catalog,
		linker:     linker,
		logger:     logger,
	}
}

// ComputeStatus derives a checklist status from its item status counts.
// An empty checklist is still in progress; one rejection makes the whole
// list incomplete; anything unverified keeps it in progress; only a
// fully approved list is validated.
func ComputeStatus(counts map[string]int) string {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return models.ChecklistStatusInProgress
	}
	if counts[models.ItemStatusRejected] > 0 {
		return models.ChecklistStatusIncomplete
	}
	if counts[models.ItemStatusPending] > 0 {
		return models.ChecklistStatusInProgress
	}
	return models.ChecklistStatusValidated
}

// Progression reports verification progress as a rounded percentage of
// approved items.
func Progression(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(counts[models.ItemStatusApproved]) / float64(total)))
}

func (s *ChecklistService) Create(ctx context.Context, req *models.CreateChecklistRequest, createdBy *int) (*models.Checklist, error) {
	if req.OrderNumber == "" {
		return nil, invalid("order_number", "is required")
	}
	eventDate, err := timeutil.ParseLocal(timeutil.DateLayout, req.EventDate)
	if err != nil {
		return nil, invalid("event_date", "must be YYYY-MM-DD")
	}

	items := make([]models.ChecklistItem, 0, len(req.Items))
	for _, ir := range req.Items {
		qty, err := decimal.NewFromString(ir.Quantity)
		if err != nil || qty.Sign() < 0 {
			return nil, invalid("quantity", "must be zero or a positive number")
		}
		items = append(items, models.ChecklistItem{
			ObjectID:  ir.ObjectID,
			Quantity:  qty,
			SortOrder: ir.SortOrder,
			Status:    models.ItemStatusPending,
		})
	}

	c := &models.Checklist{
		OrderNumber:     req.OrderNumber,
		Name:            req.Name,
		Status:          models.ChecklistStatusInProgress,
		CreatedByUserID: createdBy,
		EventDate:       eventDate,
		Notes:           req.Notes,
	}
	if err := s.checklists.Create(ctx, c, items); err != nil {
		return nil, err
	}

	for i := range items {
		obj, err := s.catalog.GetObject(ctx, items[i].ObjectID)
		if err != nil {
			s.logger.Warn().Err(err).Int("object_id", items[i].ObjectID).Msg("history skipped for unknown object")
			continue
		}
		h := &models.ChecklistItemHistory{
			ItemID:          &items[i].ID,
			ChecklistID:     c.ID,
			QuantityAfter:   items[i].Quantity,
			ChangeKind:      models.ItemChangeAdded,
			ChangedByUserID: createdBy,
			ObjectName:      obj.Name,
			ObjectUnit:      obj.Unit,
			CategoryName:    obj.CategoryName,
		}
		if err := s.history.Insert(ctx, h); err != nil {
			return nil, err
		}
	}

	if s.linker != nil {
		s.linker.LinkChecklist(ctx, c)
	}
	s.logger.Info().Str("checklist_id", c.ID.String()).Str("order_number", c.OrderNumber).Msg("checklist created")
	return c, nil
}

func (s *ChecklistService) GetByID(ctx context.Context, id uuid.UUID) (*models.Checklist, error) {
	return s.checklists.GetByID(ctx, id)
}

func (s *ChecklistService) ListByDate(ctx context.Context, date time.Time) ([]models.Checklist, error) {
	return s.checklists.ListByDate(ctx, date)
}

func (s *ChecklistService) Items(ctx context.Context, checklistID uuid.UUID) ([]models.ChecklistItem, error) {
	return s.items.ListByChecklist(ctx, checklistID)
}

func (s *ChecklistService) History(ctx context.Context, checklistID uuid.UUID) ([]models.ChecklistItemHistory, error) {
	return s.history.ListByChecklist(ctx, checklistID)
}

// ItemProgress returns the checklist's verification percentage.
func (s *ChecklistService) ItemProgress(ctx context.Context, checklistID uuid.UUID) (int, error) {
	counts, err := s.items.StatusCounts(ctx, checklistID)
	if err != nil {
		return 0, err
	}
	return Progression(counts), nil
}

// ValidateItem records a verifier decision on one item, then recomputes
// the parent checklist's status.
func (s *ChecklistService) ValidateItem(ctx context.Context, itemID int, status string, verifierUserID int, notes string) (*models.ChecklistItem, error) {
	if status != models.ItemStatusApproved && status != models.ItemStatusRejected {
		return nil, invalid("status", "must be approved or rejected")
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.items.SetVerification(ctx, itemID, status, verifierUserID, notes); err != nil {
		return nil, err
	}
	if err := s.recomputeStatus(ctx, item.ChecklistID); err != nil {
		return nil, err
	}
	return s.items.GetByID(ctx, itemID)
}

// UpdateItem edits an item's quantity or object. A change to an already
// verified item is recorded in the history with the pre-change value and
// sends the item back to pending for re-verification; changes to
// never-verified items leave no trace. Values equal to the current ones
// are ignored.
func (s *ChecklistService) UpdateItem(ctx context.Context, itemID int, req *models.UpdateItemRequest, changedBy *int) (*models.ChecklistItem, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var newQty *decimal.Decimal
	if req.Quantity != nil {
		qty, err := decimal.NewFromString(*req.Quantity)
		if err != nil || qty.Sign() < 0 {
			return nil, invalid("quantity", "must be zero or a positive number")
		}
		if !qty.Equal(item.Quantity) {
			newQty = &qty
		}
	}

	objectChanged := false
	if req.ObjectID != nil && *req.ObjectID != item.ObjectID {
		if _, err := s.catalog.GetObject(ctx, *req.ObjectID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, invalid("object_id", "unknown catalog object")
			}
			return nil, err
		}
		objectChanged = true
	}

	if newQty == nil && !objectChanged {
		return item, nil
	}

	if item.VerifiedAt != nil {
		before := item.Quantity
		after := item.Quantity
		if newQty != nil {
			after = *newQty
		}
		h := &models.ChecklistItemHistory{
			ItemID:          &item.ID,
			ChecklistID:     item.ChecklistID,
			QuantityBefore:  &before,
			QuantityAfter:   after,
			ChangeKind:      models.ItemChangeQuantity,
			ChangedByUserID: changedBy,
			ObjectName:      item.ObjectName,
			ObjectUnit:      item.ObjectUnit,
			CategoryName:    item.CategoryName,
		}
		if err := s.history.Insert(ctx, h); err != nil {
			return nil, err
		}
	}

	if newQty != nil {
		if err := s.items.UpdateQuantity(ctx, itemID, *newQty); err != nil {
			return nil, err
		}
	}
	if objectChanged {
		if err := s.items.UpdateObject(ctx, itemID, *req.ObjectID); err != nil {
			return nil, err
		}
	}

	// the edit may have reopened a verified item
	if err := s.recomputeStatus(ctx, item.ChecklistID); err != nil {
		return nil, err
	}
	return s.items.GetByID(ctx, itemID)
}

// AddItem appends a new item to an in-flight checklist and recomputes
// the status, since an unverified item reopens a validated list.
func (s *ChecklistService) AddItem(ctx context.Context, checklistID uuid.UUID, req *models.CreateChecklistItemRequest, addedBy *int) (*models.ChecklistItem, error) {
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil || qty.Sign() < 0 {
		return nil, invalid("quantity", "must be zero or a positive number")
	}
	obj, err := s.catalog.GetObject(ctx, req.ObjectID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalid("object_id", "unknown catalog object")
		}
		return nil, err
	}

	item := &models.ChecklistItem{
		ChecklistID: checklistID,
		ObjectID:    req.ObjectID,
		Quantity:    qty,
		SortOrder:   req.SortOrder,
		Status:      models.ItemStatusPending,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}

	h := &models.ChecklistItemHistory{
		ItemID:          &item.ID,
		ChecklistID:     checklistID,
		QuantityAfter:   qty,
		ChangeKind:      models.ItemChangeAdded,
		ChangedByUserID: addedBy,
		ObjectName:      obj.Name,
		ObjectUnit:      obj.Unit,
		CategoryName:    obj.CategoryName,
	}
	if err := s.history.Insert(ctx, h); err != nil {
		return nil, err
	}

	if err := s.recomputeStatus(ctx, checklistID); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item. Verified items leave a deletion record in
// the history with the item reference nulled; the denormalized object
// fields keep the record readable after the row is gone.
func (s *ChecklistService) DeleteItem(ctx context.Context, itemID int, deletedBy *int) error {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	if item.VerifiedAt != nil {
		before := item.Quantity
		h := &models.ChecklistItemHistory{
			ChecklistID:     item.ChecklistID,
			QuantityBefore:  &before,
			QuantityAfter:   decimal.Zero,
			ChangeKind:      models.ItemChangeDeleted,
			ChangedByUserID: deletedBy,
			ObjectName:      item.ObjectName,
			ObjectUnit:      item.ObjectUnit,
			CategoryName:    item.CategoryName,
		}
		if err := s.history.Insert(ctx, h); err != nil {
			return err
		}
	}

	if err := s.items.Delete(ctx, itemID); err != nil {
		return err
	}
	return s.recomputeStatus(ctx, item.ChecklistID)
}

// Finalize lets a verifier close out the checklist with an explicit
// status, overriding whatever the items would derive.
func (s *ChecklistService) Finalize(ctx context.Context, checklistID uuid.UUID, req *models.FinalizeChecklistRequest, verifierUserID int) (*models.Checklist, error) {
	if req.Status != models.ChecklistStatusValidated && req.Status != models.ChecklistStatusIncomplete {
		return nil, invalid("status", "must be validated or incomplete")
	}
	if err := s.checklists.Finalize(ctx, checklistID, req.Status, verifierUserID, req.Notes); err != nil {
		return nil, err
	}
	metrics.ChecklistStatusChanges.WithLabelValues(req.Status).Inc()
	s.logger.Info().Str("checklist_id", checklistID.String()).Str("status", req.Status).Msg("checklist finalized")
	return s.checklists.GetByID(ctx, checklistID)
}

// Duplicate copies a checklist under a new order number and links the
// copy like a fresh creation.
func (s *ChecklistService) Duplicate(ctx context.Context, id uuid.UUID, orderNumber, name string, createdBy *int) (*models.Checklist, error) {
	if orderNumber == "" {
		return nil, invalid("order_number", "is required")
	}
	dup, err := s.checklists.Duplicate(ctx, id, orderNumber, name, createdBy)
	if err != nil {
		return nil, err
	}
	if s.linker != nil {
		s.linker.LinkChecklist(ctx, dup)
	}
	return dup, nil
}

func (s *ChecklistService) recomputeStatus(ctx context.Context, checklistID uuid.UUID) error {
	c, err := s.checklists.GetByID(ctx, checklistID)
	if err != nil {
		return err
	}
	counts, err := s.items.StatusCounts(ctx, checklistID)
	if err != nil {
		return err
	}
	next := ComputeStatus(counts)
	if next == c.Status {
		return nil
	}
	if err := s.checklists.UpdateStatus(ctx, checklistID, next); err != nil {
		return err
	}
	metrics.ChecklistStatusChanges.WithLabelValues(next).Inc()
	s.logger.Debug().
		Str("checklist_id", checklistID.String()).
		Str("from", c.Status).Str("to", next).
		Msg("checklist status recomputed")
	return nil
}
