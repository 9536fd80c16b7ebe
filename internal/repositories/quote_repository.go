package repositories

import (
	"context"
	"errors"
	"fmt"

	"cheflow-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuoteRepository struct {
	DB *pgxpool.Pool
}

func NewQuoteRepository(db *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{DB: db}
}

const quoteColumns = `id, quote_number, company_name, event_date, guest_count, address,
	with_service, with_alcohol, equipment_rental, ordered_by, email, phone, notes, status,
	created_by_user_id, created_at, sent_at, decided_at`

func scanQuote(row pgx.Row, q *models.Quote) error {
	return row.Scan(
		&q.ID, &q.QuoteNumber, &q.CompanyName, &q.EventDate, &q.GuestCount, &q.Address,
		&q.WithService, &q.WithAlcohol, &q.EquipmentRental, &q.OrderedBy, &q.Email, &q.Phone,
		&q.Notes, &q.Status, &q.CreatedByUserID, &q.CreatedAt, &q.SentAt, &q.DecidedAt,
	)
}

// Create assigns the next sequential quote number and inserts the row.
func (r *QuoteRepository) Create(ctx context.Context, q *models.Quote) error {
	query := `
		INSERT INTO quotes(
			quote_number, company_name, event_date, guest_count, address, with_service,
			with_alcohol, equipment_rental, ordered_by, email, phone, notes, status, created_by_user_id)
		VALUES ('SOU-' || LPAD(nextval('quote_number_sequence')::text, 5, '0'),
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, quote_number, created_at
	`
	err := r.DB.QueryRow(ctx, query,
		q.CompanyName, q.EventDate, q.GuestCount, q.Address, q.WithService,
		q.WithAlcohol, q.EquipmentRental, q.OrderedBy, q.Email, q.Phone, q.Notes,
		q.Status, q.CreatedByUserID,
	).Scan(&q.ID, &q.QuoteNumber, &q.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}
	return nil
}

func (r *QuoteRepository) GetByID(ctx context.Context, id int) (*models.Quote, error) {
	q := &models.Quote{}
	err := scanQuote(r.DB.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id), q)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return q, nil
}

func (r *QuoteRepository) List(ctx context.Context, status string) ([]models.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes
		WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC`
	rows, err := r.DB.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		var q models.Quote
		if err := scanQuote(rows, &q); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// MarkSent records the transition from drafting to awaiting a decision.
func (r *QuoteRepository) MarkSent(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE quotes SET status = 'sent', sent_at = NOW()
		WHERE id = $1 AND status = 'in_progress'
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark quote sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkDecided records the client decision on a sent quote.
func (r *QuoteRepository) MarkDecided(ctx context.Context, id int, status string) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE quotes SET status = $1, decided_at = NOW()
		WHERE id = $2 AND status = 'sent'
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to mark quote decided: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
