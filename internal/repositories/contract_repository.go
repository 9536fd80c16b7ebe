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

type ContractRepository struct {
	DB *pgxpool.Pool
}

func NewContractRepository(db *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{DB: db}
}

const contractColumns = `id, contract_number, event_name, maitre_hotel_user_id, delivery_id,
	checklist_id, client_name, client_phone, client_email, on_site_contact, address, city,
	postal_code, event_date, planned_start_time, planned_end_time, guest_count, event_rundown,
	special_instructions, status, actual_start_time, actual_end_time, drinks_report, final_notes,
	created_by_user_id, created_at, updated_at`

func scanContract(row pgx.Row, c *models.Contract) error {
	return row.Scan(
		&c.ID, &c.ContractNumber, &c.EventName, &c.MaitreHotelUserID, &c.DeliveryID,
		&c.ChecklistID, &c.ClientName, &c.ClientPhone, &c.ClientEmail, &c.OnSiteContact,
		&c.Address, &c.City, &c.PostalCode, &c.EventDate, &c.PlannedStartTime, &c.PlannedEndTime,
		&c.GuestCount, &c.EventRundown, &c.SpecialInstructions, &c.Status, &c.ActualStartTime,
		&c.ActualEndTime, &c.DrinksReport, &c.FinalNotes, &c.CreatedByUserID, &c.CreatedAt, &c.UpdatedAt,
	)
}

func (r *ContractRepository) Create(ctx context.Context, c *models.Contract) error {
	query := `
		INSERT INTO contracts(
			contract_number, event_name, maitre_hotel_user_id, client_name, client_phone,
			client_email, on_site_contact, address, city, postal_code, event_date,
			planned_start_time, planned_end_time, guest_count, event_rundown,
			special_instructions, status, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRow(ctx, query,
		c.ContractNumber, c.EventName, c.MaitreHotelUserID, c.ClientName, c.ClientPhone,
		c.ClientEmail, c.OnSiteContact, c.Address, c.City, c.PostalCode, c.EventDate,
		c.PlannedStartTime, c.PlannedEndTime, c.GuestCount, c.EventRundown,
		c.SpecialInstructions, c.Status, c.CreatedByUserID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contract: %w", err)
	}
	return nil
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	c := &models.Contract{}
	err := scanContract(r.DB.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id), c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return c, nil
}

func (r *ContractRepository) GetByNumber(ctx context.Context, number string) (*models.Contract, error) {
	c := &models.Contract{}
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE contract_number = $1 ORDER BY created_at DESC LIMIT 1`
	err := scanContract(r.DB.QueryRow(ctx, query, number), c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract by number: %w", err)
	}
	return c, nil
}

func (r *ContractRepository) ListByDate(ctx context.Context, date time.Time) ([]models.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE event_date = $1 ORDER BY planned_start_time`
	rows, err := r.DB.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		var c models.Contract
		if err := scanContract(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// ListUnlinked returns contracts still missing a delivery or checklist
// link, the repair sweep's worklist.
func (r *ContractRepository) ListUnlinked(ctx context.Context) ([]models.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts
		WHERE (delivery_id IS NULL OR checklist_id IS NULL) AND status <> 'cancelled'
		ORDER BY event_date`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlinked contracts: %w", err)
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		var c models.Contract
		if err := scanContract(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// SetDelivery fills the delivery link only when it is still empty.
func (r *ContractRepository) SetDelivery(ctx context.Context, id, deliveryID uuid.UUID) (bool, error) {
	tag, err := r.DB.Exec(ctx, `
		UPDATE contracts SET delivery_id = $1, updated_at = NOW()
		WHERE id = $2 AND delivery_id IS NULL
	`, deliveryID, id)
	if err != nil {
		return false, fmt.Errorf("failed to link contract to delivery: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetChecklist fills the checklist link only when it is still empty.
func (r *ContractRepository) SetChecklist(ctx context.Context, id, checklistID uuid.UUID) (bool, error) {
	tag, err := r.DB.Exec(ctx, `
		UPDATE contracts SET checklist_id = $1, updated_at = NOW()
		WHERE id = $2 AND checklist_id IS NULL
	`, checklistID, id)
	if err != nil {
		return false, fmt.Errorf("failed to link contract to checklist: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Start flips the contract to in_progress and stamps the actual start.
func (r *ContractRepository) Start(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE contracts SET status = 'in_progress', actual_start_time = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'planned'
	`, id)
	if err != nil {
		return fmt.Errorf("failed to start contract: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Finish closes the contract with its end-of-event reports.
func (r *ContractRepository) Finish(ctx context.Context, id uuid.UUID, drinksReport, finalNotes string) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE contracts SET status = 'completed', actual_end_time = NOW(),
			drinks_report = $1, final_notes = $2, updated_at = NOW()
		WHERE id = $3 AND status = 'in_progress'
	`, drinksReport, finalNotes, id)
	if err != nil {
		return fmt.Errorf("failed to finish contract: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ContractRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE contracts SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update contract status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
