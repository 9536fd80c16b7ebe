package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cheflow-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChecklistRepository struct {
	DB *pgxpool.Pool
}

func NewChecklistRepository(db *pgxpool.Pool) *ChecklistRepository {
	return &ChecklistRepository{DB: db}
}

const checklistColumns = `id, order_number, name, status, delivery_id, created_by_user_id,
	verifier_user_id, event_date, verified_at, verifier_notes, notes, created_at, updated_at`

func scanChecklist(row pgx.Row, c *models.Checklist) error {
	return row.Scan(
		&c.ID, &c.OrderNumber, &c.Name, &c.Status, &c.DeliveryID, &c.CreatedByUserID,
		&c.VerifierUserID, &c.EventDate, &c.VerifiedAt, &c.VerifierNotes, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	)
}

// Create inserts the checklist and its initial items in one transaction.
func (r *ChecklistRepository) Create(ctx context.Context, c *models.Checklist, items []models.ChecklistItem) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO checklists(order_number, name, status, created_by_user_id, event_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		c.OrderNumber, c.Name, c.Status, c.CreatedByUserID, c.EventDate, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create checklist: %w", err)
	}

	for i := range items {
		it := &items[i]
		it.ChecklistID = c.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO checklist_items(checklist_id, object_id, quantity, sort_order, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`, c.ID, it.ObjectID, it.Quantity.String(), it.SortOrder, models.ItemStatusPending,
		).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create checklist item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *ChecklistRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Checklist, error) {
	c := &models.Checklist{}
	err := scanChecklist(r.DB.QueryRow(ctx, `SELECT `+checklistColumns+` FROM checklists WHERE id = $1`, id), c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}
	return c, nil
}

// GetByOrderNumber returns the most recently created checklist with that
// order number. Duplicates can exist around imports; newest wins.
func (r *ChecklistRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Checklist, error) {
	c := &models.Checklist{}
	query := `SELECT ` + checklistColumns + ` FROM checklists WHERE order_number = $1 ORDER BY created_at DESC LIMIT 1`
	err := scanChecklist(r.DB.QueryRow(ctx, query, orderNumber), c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist by order number: %w", err)
	}
	return c, nil
}

// CountByOrderNumber reports how many checklists share one business key.
func (r *ChecklistRepository) CountByOrderNumber(ctx context.Context, orderNumber string) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM checklists WHERE order_number = $1`, orderNumber).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count checklists: %w", err)
	}
	return n, nil
}

// ListUnlinked returns checklists still missing their delivery link,
// for the repair sweep.
func (r *ChecklistRepository) ListUnlinked(ctx context.Context) ([]models.Checklist, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklists WHERE delivery_id IS NULL ORDER BY created_at`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlinked checklists: %w", err)
	}
	defer rows.Close()

	var lists []models.Checklist
	for rows.Next() {
		var c models.Checklist
		if err := scanChecklist(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan checklist: %w", err)
		}
		lists = append(lists, c)
	}
	return lists, rows.Err()
}

func (r *ChecklistRepository) ListByDate(ctx context.Context, date time.Time) ([]models.Checklist, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklists WHERE event_date = $1 ORDER BY created_at`
	rows, err := r.DB.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklists: %w", err)
	}
	defer rows.Close()

	var lists []models.Checklist
	for rows.Next() {
		var c models.Checklist
		if err := scanChecklist(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan checklist: %w", err)
		}
		lists = append(lists, c)
	}
	return lists, rows.Err()
}

func (r *ChecklistRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE checklists SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update checklist status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDelivery links the checklist to a delivery only when it has no link
// yet. Returns false when another writer won the race or the link was
// already in place.
func (r *ChecklistRepository) SetDelivery(ctx context.Context, id, deliveryID uuid.UUID) (bool, error) {
	tag, err := r.DB.Exec(ctx, `
		UPDATE checklists SET delivery_id = $1, updated_at = NOW()
		WHERE id = $2 AND delivery_id IS NULL
	`, deliveryID, id)
	if err != nil {
		return false, fmt.Errorf("failed to link checklist to delivery: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ClearDelivery drops the delivery link, used when deliveries are merged away.
func (r *ChecklistRepository) ClearDelivery(ctx context.Context, deliveryID uuid.UUID) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE checklists SET delivery_id = NULL, updated_at = NOW() WHERE delivery_id = $1`, deliveryID)
	if err != nil {
		return fmt.Errorf("failed to clear checklist delivery link: %w", err)
	}
	return nil
}

// Finalize records the verifier decision together with the status flip.
func (r *ChecklistRepository) Finalize(ctx context.Context, id uuid.UUID, status string, verifierUserID int, notes string) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE checklists
		SET status = $1, verifier_user_id = $2, verifier_notes = $3, verified_at = NOW(), updated_at = NOW()
		WHERE id = $4
	`, status, verifierUserID, notes, id)
	if err != nil {
		return fmt.Errorf("failed to finalize checklist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Duplicate copies a checklist and its items under a new order number.
// Copied items start unverified.
func (r *ChecklistRepository) Duplicate(ctx context.Context, id uuid.UUID, orderNumber, name string, createdBy *int) (*models.Checklist, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	c := &models.Checklist{}
	query := `
		INSERT INTO checklists(order_number, name, status, created_by_user_id, event_date, notes)
		SELECT $1, $2, 'in_progress', $3, event_date, notes
		FROM checklists WHERE id = $4
		RETURNING ` + checklistColumns
	err = scanChecklist(tx.QueryRow(ctx, query, orderNumber, name, createdBy, id), c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to duplicate checklist: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO checklist_items(checklist_id, object_id, quantity, sort_order, status, notes)
		SELECT $1, object_id, quantity, sort_order, 'pending', notes
		FROM checklist_items WHERE checklist_id = $2
	`, c.ID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to duplicate checklist items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ChecklistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM checklists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete checklist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
