package repositories

import (
	"context"
	"errors"
	"fmt"

	"cheflow-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VehicleRepository struct {
	DB *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{DB: db}
}

func (r *VehicleRepository) Create(ctx context.Context, v *models.Vehicle) error {
	query := `
		INSERT INTO vehicles(make, model, plate, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(ctx, query, v.Make, v.Model, v.Plate, v.Status).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, id int) (*models.Vehicle, error) {
	v := &models.Vehicle{}
	err := r.DB.QueryRow(ctx,
		`SELECT id, make, model, plate, status, created_at FROM vehicles WHERE id = $1`, id,
	).Scan(&v.ID, &v.Make, &v.Model, &v.Plate, &v.Status, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return v, nil
}

func (r *VehicleRepository) List(ctx context.Context) ([]models.Vehicle, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, make, model, plate, status, created_at FROM vehicles ORDER BY plate`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.Make, &v.Model, &v.Plate, &v.Status, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (r *VehicleRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	tag, err := r.DB.Exec(ctx, `UPDATE vehicles SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update vehicle status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
