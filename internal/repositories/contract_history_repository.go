package repositories

import (
	"context"
	"fmt"

	"cheflow-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContractHistoryRepository struct {
	DB *pgxpool.Pool
}

func NewContractHistoryRepository(db *pgxpool.Pool) *ContractHistoryRepository {
	return &ContractHistoryRepository{DB: db}
}

func (r *ContractHistoryRepository) Insert(ctx context.Context, h *models.ContractHistory) error {
	query := `
		INSERT INTO contract_history(contract_id, action_kind, description, acted_by_user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, acted_at
	`
	err := r.DB.QueryRow(ctx, query, h.ContractID, h.ActionKind, h.Description, h.ActedByUserID).
		Scan(&h.ID, &h.ActedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contract history: %w", err)
	}
	return nil
}

func (r *ContractHistoryRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.ContractHistory, error) {
	query := `
		SELECT id, contract_id, action_kind, description, acted_by_user_id, acted_at
		FROM contract_history WHERE contract_id = $1 ORDER BY acted_at DESC
	`
	rows, err := r.DB.Query(ctx, query, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contract history: %w", err)
	}
	defer rows.Close()

	var entries []models.ContractHistory
	for rows.Next() {
		var h models.ContractHistory
		if err := rows.Scan(&h.ID, &h.ContractID, &h.ActionKind, &h.Description, &h.ActedByUserID, &h.ActedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contract history: %w", err)
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}
