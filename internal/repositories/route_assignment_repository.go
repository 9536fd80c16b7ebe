package repositories

import (
	"context"
	"errors"
	"fmt"

	"cheflow-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RouteAssignmentRepository struct {
	DB *pgxpool.Pool
}

func NewRouteAssignmentRepository(db *pgxpool.Pool) *RouteAssignmentRepository {
	return &RouteAssignmentRepository{DB: db}
}

func (r *RouteAssignmentRepository) ListByRoute(ctx context.Context, routeID uuid.UUID) ([]models.RouteAssignment, error) {
	query := `
		SELECT id, route_id, delivery_id, order_index, added_at
		FROM route_assignments WHERE route_id = $1
		ORDER BY order_index, added_at
	`
	rows, err := r.DB.Query(ctx, query, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list route assignments: %w", err)
	}
	defer rows.Close()

	var out []models.RouteAssignment
	for rows.Next() {
		var a models.RouteAssignment
		if err := rows.Scan(&a.ID, &a.RouteID, &a.DeliveryID, &a.OrderIndex, &a.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan route assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByDelivery finds the assignment carrying a delivery, if any.
func (r *RouteAssignmentRepository) GetByDelivery(ctx context.Context, deliveryID uuid.UUID) (*models.RouteAssignment, error) {
	a := &models.RouteAssignment{}
	err := r.DB.QueryRow(ctx, `
		SELECT id, route_id, delivery_id, order_index, added_at
		FROM route_assignments WHERE delivery_id = $1
	`, deliveryID).Scan(&a.ID, &a.RouteID, &a.DeliveryID, &a.OrderIndex, &a.AddedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route assignment: %w", err)
	}
	return a, nil
}

// Append places the delivery after the current last stop.
func (r *RouteAssignmentRepository) Append(ctx context.Context, routeID, deliveryID uuid.UUID) (*models.RouteAssignment, error) {
	a := &models.RouteAssignment{RouteID: routeID, DeliveryID: deliveryID}
	query := `
		INSERT INTO route_assignments(route_id, delivery_id, order_index)
		SELECT $1, $2, COALESCE(MAX(order_index), 0) + 1
		FROM route_assignments WHERE route_id = $1
		RETURNING id, order_index, added_at
	`
	err := r.DB.QueryRow(ctx, query, routeID, deliveryID).Scan(&a.ID, &a.OrderIndex, &a.AddedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append route assignment: %w", err)
	}
	return a, nil
}

// shiftForInsert returns the assignments that must move to open the
// given position, newly numbered, highest order first so the updates
// never collide with each other.
func shiftForInsert(assignments []models.RouteAssignment, position int) []models.RouteAssignment {
	var shifted []models.RouteAssignment
	for i := len(assignments) - 1; i >= 0; i-- {
		if assignments[i].OrderIndex >= position {
			a := assignments[i]
			a.OrderIndex++
			shifted = append(shifted, a)
		}
	}
	return shifted
}

// InsertAt places the delivery at the given position, shifting every
// assignment at or after it down by one. Runs in a transaction so the
// shift and the insert land together.
func (r *RouteAssignmentRepository) InsertAt(ctx context.Context, routeID, deliveryID uuid.UUID, position int) (*models.RouteAssignment, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := r.listInTx(ctx, tx, routeID)
	if err != nil {
		return nil, err
	}
	for _, a := range shiftForInsert(current, position) {
		if _, err := tx.Exec(ctx,
			`UPDATE route_assignments SET order_index = $1 WHERE id = $2`, a.OrderIndex, a.ID); err != nil {
			return nil, fmt.Errorf("failed to shift route assignment: %w", err)
		}
	}

	a := &models.RouteAssignment{RouteID: routeID, DeliveryID: deliveryID, OrderIndex: position}
	err = tx.QueryRow(ctx, `
		INSERT INTO route_assignments(route_id, delivery_id, order_index)
		VALUES ($1, $2, $3)
		RETURNING id, added_at
	`, routeID, deliveryID, position).Scan(&a.ID, &a.AddedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert route assignment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *RouteAssignmentRepository) listInTx(ctx context.Context, tx pgx.Tx, routeID uuid.UUID) ([]models.RouteAssignment, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, route_id, delivery_id, order_index, added_at
		FROM route_assignments WHERE route_id = $1
		ORDER BY order_index, added_at
		FOR UPDATE
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list route assignments: %w", err)
	}
	defer rows.Close()

	var out []models.RouteAssignment
	for rows.Next() {
		var a models.RouteAssignment
		if err := rows.Scan(&a.ID, &a.RouteID, &a.DeliveryID, &a.OrderIndex, &a.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan route assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Remove drops the assignment and leaves the remaining order values
// untouched; gaps are fine, relative order is what matters.
func (r *RouteAssignmentRepository) Remove(ctx context.Context, routeID, deliveryID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx,
		`DELETE FROM route_assignments WHERE route_id = $1 AND delivery_id = $2`, routeID, deliveryID)
	if err != nil {
		return fmt.Errorf("failed to remove route assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Reorder rewrites the order indexes from the given full ordering,
// numbering from 1, inside one transaction.
func (r *RouteAssignmentRepository) Reorder(ctx context.Context, routeID uuid.UUID, deliveryIDs []uuid.UUID) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, deliveryID := range deliveryIDs {
		tag, err := tx.Exec(ctx, `
			UPDATE route_assignments SET order_index = $1
			WHERE route_id = $2 AND delivery_id = $3
		`, i+1, routeID, deliveryID)
		if err != nil {
			return fmt.Errorf("failed to reorder route assignment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("delivery %s is not on route %s", deliveryID, routeID)
		}
	}

	return tx.Commit(ctx)
}
