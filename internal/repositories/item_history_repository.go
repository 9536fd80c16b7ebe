package repositories

import (
	"context"
	"fmt"

	"cheflow-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ItemHistoryRepository struct {
	DB *pgxpool.Pool
}

func NewItemHistoryRepository(db *pgxpool.Pool) *ItemHistoryRepository {
	return &ItemHistoryRepository{DB: db}
}

func (r *ItemHistoryRepository) Insert(ctx context.Context, h *models.ChecklistItemHistory) error {
	var before interface{}
	if h.QuantityBefore != nil {
		before = h.QuantityBefore.String()
	}
	query := `
		INSERT INTO checklist_item_history(
			item_id, checklist_id, quantity_before, quantity_after, change_kind,
			changed_by_user_id, object_name, object_unit, category_name, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, changed_at
	`
	err := r.DB.QueryRow(ctx, query,
		h.ItemID, h.ChecklistID, before, h.QuantityAfter.String(), h.ChangeKind,
		h.ChangedByUserID, h.ObjectName, h.ObjectUnit, h.CategoryName, h.Notes,
	).Scan(&h.ID, &h.ChangedAt)
	if err != nil {
		return fmt.Errorf("failed to insert item history: %w", err)
	}
	return nil
}

func (r *ItemHistoryRepository) ListByChecklist(ctx context.Context, checklistID uuid.UUID) ([]models.ChecklistItemHistory, error) {
	query := `
		SELECT id, item_id, checklist_id, quantity_before::text, quantity_after::text, change_kind,
		       changed_by_user_id, object_name, object_unit, category_name, notes, changed_at
		FROM checklist_item_history
		WHERE checklist_id = $1
		ORDER BY changed_at DESC
	`
	rows, err := r.DB.Query(ctx, query, checklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list item history: %w", err)
	}
	defer rows.Close()

	var entries []models.ChecklistItemHistory
	for rows.Next() {
		var h models.ChecklistItemHistory
		var before *string
		var after string
		err := rows.Scan(&h.ID, &h.ItemID, &h.ChecklistID, &before, &after, &h.ChangeKind,
			&h.ChangedByUserID, &h.ObjectName, &h.ObjectUnit, &h.CategoryName, &h.Notes, &h.ChangedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item history: %w", err)
		}
		if before != nil {
			d, err := decimal.NewFromString(*before)
			if err != nil {
				return nil, fmt.Errorf("failed to parse quantity_before: %w", err)
			}
			h.QuantityBefore = &d
		}
		h.QuantityAfter, err = decimal.NewFromString(after)
		if err != nil {
			return nil, fmt.Errorf("failed to parse quantity_after: %w", err)
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}
