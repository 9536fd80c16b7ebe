package repositories

import (
	"context"
	"errors"
	"fmt"

	"cheflow-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ChecklistItemRepository struct {
	DB *pgxpool.Pool
}

func NewChecklistItemRepository(db *pgxpool.Pool) *ChecklistItemRepository {
	return &ChecklistItemRepository{DB: db}
}

// Quantities travel as NUMERIC text so exact values survive the round trip.
func scanItem(row pgx.Row, it *models.ChecklistItem) error {
	var qty string
	err := row.Scan(
		&it.ID, &it.ChecklistID, &it.ObjectID, &qty, &it.SortOrder, &it.Status,
		&it.VerifiedAt, &it.VerifiedByUserID, &it.ChangedSinceVerification, &it.Notes,
		&it.CreatedAt, &it.UpdatedAt, &it.ObjectName, &it.ObjectUnit, &it.CategoryName,
	)
	if err != nil {
		return err
	}
	it.Quantity, err = decimal.NewFromString(qty)
	return err
}

const itemSelect = `
	SELECT i.id, i.checklist_id, i.object_id, i.quantity::text, i.sort_order, i.status,
	       i.verified_at, i.verified_by_user_id, i.changed_since_verification, i.notes,
	       i.created_at, i.updated_at, o.name, o.unit, c.name
	FROM checklist_items i
	JOIN catalog_objects o ON o.id = i.object_id
	JOIN catalog_categories c ON c.id = o.category_id
`

func (r *ChecklistItemRepository) GetByID(ctx context.Context, id int) (*models.ChecklistItem, error) {
	it := &models.ChecklistItem{}
	err := scanItem(r.DB.QueryRow(ctx, itemSelect+` WHERE i.id = $1`, id), it)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist item: %w", err)
	}
	return it, nil
}

func (r *ChecklistItemRepository) ListByChecklist(ctx context.Context, checklistID uuid.UUID) ([]models.ChecklistItem, error) {
	rows, err := r.DB.Query(ctx, itemSelect+` WHERE i.checklist_id = $1 ORDER BY i.sort_order, i.id`, checklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	defer rows.Close()

	var items []models.ChecklistItem
	for rows.Next() {
		var it models.ChecklistItem
		if err := scanItem(rows, &it); err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// StatusCounts returns item counts grouped by verification status.
func (r *ChecklistItemRepository) StatusCounts(ctx context.Context, checklistID uuid.UUID) (map[string]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT status, COUNT(*) FROM checklist_items WHERE checklist_id = $1 GROUP BY status`, checklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to count item statuses: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *ChecklistItemRepository) Create(ctx context.Context, it *models.ChecklistItem) error {
	query := `
		INSERT INTO checklist_items(checklist_id, object_id, quantity, sort_order, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRow(ctx, query,
		it.ChecklistID, it.ObjectID, it.Quantity.String(), it.SortOrder, it.Status, it.Notes,
	).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create checklist item: %w", err)
	}
	return nil
}

// UpdateQuantity replaces the quantity. An already verified item goes
// back to pending with its verification cleared and the changed flag
// raised, so the verifier sees it again.
func (r *ChecklistItemRepository) UpdateQuantity(ctx context.Context, id int, quantity decimal.Decimal) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE checklist_items
		SET quantity = $1,
		    status = CASE WHEN verified_at IS NOT NULL THEN 'pending' ELSE status END,
		    changed_since_verification = changed_since_verification OR verified_at IS NOT NULL,
		    verified_at = NULL,
		    verified_by_user_id = NULL,
		    updated_at = NOW()
		WHERE id = $2
	`, quantity.String(), id)
	if err != nil {
		return fmt.Errorf("failed to update item quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateObject swaps the catalog object with the same re-verification
// semantics as UpdateQuantity.
func (r *ChecklistItemRepository) UpdateObject(ctx context.Context, id, objectID int) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE checklist_items
		SET object_id = $1,
		    status = CASE WHEN verified_at IS NOT NULL THEN 'pending' ELSE status END,
		    changed_since_verification = changed_since_verification OR verified_at IS NOT NULL,
		    verified_at = NULL,
		    verified_by_user_id = NULL,
		    updated_at = NOW()
		WHERE id = $2
	`, objectID, id)
	if err != nil {
		return fmt.Errorf("failed to update item object: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetVerification records one verifier decision on one item.
func (r *ChecklistItemRepository) SetVerification(ctx context.Context, id int, status string, verifierUserID int, notes string) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE checklist_items
		SET status = $1, verified_at = NOW(), verified_by_user_id = $2,
		    changed_since_verification = FALSE, notes = $3, updated_at = NOW()
		WHERE id = $4
	`, status, verifierUserID, notes, id)
	if err != nil {
		return fmt.Errorf("failed to set item verification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ChecklistItemRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM checklist_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete checklist item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
