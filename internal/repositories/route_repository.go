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

type RouteRepository struct {
	DB *pgxpool.Pool
}

func NewRouteRepository(db *pgxpool.Pool) *RouteRepository {
	return &RouteRepository{DB: db}
}

const routeColumns = `id, name, date, period, departure_time, planned_return_time,
	actual_return_time, vehicle_id, comment, status, created_by_user_id, created_at`

func scanRoute(row pgx.Row, rt *models.Route) error {
	return row.Scan(
		&rt.ID, &rt.Name, &rt.Date, &rt.Period, &rt.DepartureTime, &rt.PlannedReturnTime,
		&rt.ActualReturnTime, &rt.VehicleID, &rt.Comment, &rt.Status, &rt.CreatedByUserID, &rt.CreatedAt,
	)
}

// Create inserts the route and its driver links in one transaction.
func (r *RouteRepository) Create(ctx context.Context, rt *models.Route) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO routes(name, date, period, departure_time, planned_return_time, vehicle_id, comment, status, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, query,
		rt.Name, rt.Date, rt.Period, rt.DepartureTime, rt.PlannedReturnTime,
		rt.VehicleID, rt.Comment, rt.Status, rt.CreatedByUserID,
	).Scan(&rt.ID, &rt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create route: %w", err)
	}

	for _, driverID := range rt.DriverIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO route_drivers(route_id, user_id) VALUES ($1, $2)`, rt.ID, driverID); err != nil {
			return fmt.Errorf("failed to attach route driver: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *RouteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Route, error) {
	rt := &models.Route{}
	err := scanRoute(r.DB.QueryRow(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = $1`, id), rt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	if err := r.loadDrivers(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *RouteRepository) loadDrivers(ctx context.Context, rt *models.Route) error {
	rows, err := r.DB.Query(ctx,
		`SELECT user_id FROM route_drivers WHERE route_id = $1 ORDER BY user_id`, rt.ID)
	if err != nil {
		return fmt.Errorf("failed to load route drivers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan route driver: %w", err)
		}
		rt.DriverIDs = append(rt.DriverIDs, id)
	}
	return rows.Err()
}

func (r *RouteRepository) ListByDate(ctx context.Context, date time.Time, period string) ([]models.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes
		WHERE date = $1 AND ($2 = '' OR period = $2)
		ORDER BY departure_time`
	rows, err := r.DB.Query(ctx, query, date, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	defer rows.Close()

	var routes []models.Route
	for rows.Next() {
		var rt models.Route
		if err := scanRoute(rows, &rt); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes = append(routes, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range routes {
		if err := r.loadDrivers(ctx, &routes[i]); err != nil {
			return nil, err
		}
	}
	return routes, nil
}

func (r *RouteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.DB.Exec(ctx, `UPDATE routes SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update route status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Complete marks the route finished and stamps the actual return time.
func (r *RouteRepository) Complete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE routes SET status = 'completed', actual_return_time = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to complete route: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeliveryProgress reports total and delivered assignment counts for the
// auto-completion check.
func (r *RouteRepository) DeliveryProgress(ctx context.Context, id uuid.UUID) (total, delivered int, err error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE d.status = 'delivered')
		FROM route_assignments a
		JOIN deliveries d ON d.id = a.delivery_id
		WHERE a.route_id = $1
	`
	if err := r.DB.QueryRow(ctx, query, id).Scan(&total, &delivered); err != nil {
		return 0, 0, fmt.Errorf("failed to count route progress: %w", err)
	}
	return total, delivered, nil
}

func (r *RouteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete route: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
