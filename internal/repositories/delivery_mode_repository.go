package repositories

import (
	"context"
	"errors"
	"fmt"

	"cheflow-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DeliveryModeRepository struct {
	DB *pgxpool.Pool
}

func NewDeliveryModeRepository(db *pgxpool.Pool) *DeliveryModeRepository {
	return &DeliveryModeRepository{DB: db}
}

// GetOrCreate resolves a mode by name, creating it on first sight so
// imports never fail on an unknown shipping label.
func (r *DeliveryModeRepository) GetOrCreate(ctx context.Context, name string) (*models.DeliveryMode, error) {
	m := &models.DeliveryMode{}
	query := `
		INSERT INTO delivery_modes(name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, description, color, supports_pickup, is_active, created_at
	`
	err := r.DB.QueryRow(ctx, query, name).Scan(
		&m.ID, &m.Name, &m.Description, &m.Color, &m.SupportsPickup, &m.IsActive, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create delivery mode: %w", err)
	}
	return m, nil
}

func (r *DeliveryModeRepository) GetByID(ctx context.Context, id int) (*models.DeliveryMode, error) {
	m := &models.DeliveryMode{}
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, description, color, supports_pickup, is_active, created_at
		FROM delivery_modes WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.Description, &m.Color, &m.SupportsPickup, &m.IsActive, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery mode: %w", err)
	}
	return m, nil
}

func (r *DeliveryModeRepository) List(ctx context.Context) ([]models.DeliveryMode, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, description, color, supports_pickup, is_active, created_at
		FROM delivery_modes WHERE is_active ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery modes: %w", err)
	}
	defer rows.Close()

	var modes []models.DeliveryMode
	for rows.Next() {
		var m models.DeliveryMode
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Color, &m.SupportsPickup, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery mode: %w", err)
		}
		modes = append(modes, m)
	}
	return modes, rows.Err()
}

// SetSupportsPickup toggles whether the mode spawns return pickups.
func (r *DeliveryModeRepository) SetSupportsPickup(ctx context.Context, id int, supports bool) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE delivery_modes SET supports_pickup = $1 WHERE id = $2`, supports, id)
	if err != nil {
		return fmt.Errorf("failed to update delivery mode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
