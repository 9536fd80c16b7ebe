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

type DeliveryRepository struct {
	DB *pgxpool.Pool
}

func NewDeliveryRepository(db *pgxpool.Pool) *DeliveryRepository {
	return &DeliveryRepository{DB: db}
}

const deliverySelect = `
	SELECT d.id, d.delivery_number, d.event_name, d.client_name, d.client_phone, d.client_email,
	       d.on_site_contact, d.address, d.apartment, d.address_line2, d.postal_code, d.city,
	       d.latitude, d.longitude, d.place_id, d.delivery_date, d.period, d.requested_time,
	       d.delivered_at, d.mode_id, d.guest_count, d.needs_coffee, d.needs_tea, d.needs_ice_bags,
	       d.needs_hot_servings, d.other_needs, d.advisor_name, d.checklist_id, d.status,
	       d.special_instructions, d.internal_notes, d.is_pickup, d.origin_delivery_id,
	       d.created_by_user_id, d.created_at, d.updated_at,
	       m.id, m.name, m.color, m.supports_pickup
	FROM deliveries d
	LEFT JOIN delivery_modes m ON m.id = d.mode_id
`

func scanDelivery(row pgx.Row, d *models.Delivery) error {
	var modeID *int
	var modeName, modeColor *string
	var modePickup *bool
	err := row.Scan(
		&d.ID, &d.DeliveryNumber, &d.EventName, &d.ClientName, &d.ClientPhone, &d.ClientEmail,
		&d.OnSiteContact, &d.Address, &d.Apartment, &d.AddressLine2, &d.PostalCode, &d.City,
		&d.Latitude, &d.Longitude, &d.PlaceID, &d.DeliveryDate, &d.Period, &d.RequestedTime,
		&d.DeliveredAt, &d.ModeID, &d.GuestCount, &d.NeedsCoffee, &d.NeedsTea, &d.NeedsIceBags,
		&d.NeedsHotServings, &d.OtherNeeds, &d.AdvisorName, &d.ChecklistID, &d.Status,
		&d.SpecialInstructions, &d.InternalNotes, &d.IsPickup, &d.OriginDeliveryID,
		&d.CreatedByUserID, &d.CreatedAt, &d.UpdatedAt,
		&modeID, &modeName, &modeColor, &modePickup,
	)
	if err != nil {
		return err
	}
	if modeID != nil {
		d.Mode = &models.DeliveryMode{ID: *modeID, Name: *modeName, Color: *modeColor, SupportsPickup: *modePickup}
	}
	return nil
}

func (r *DeliveryRepository) Create(ctx context.Context, d *models.Delivery) error {
	query := `
		INSERT INTO deliveries(
			delivery_number, event_name, client_name, client_phone, client_email, on_site_contact,
			address, apartment, address_line2, postal_code, city, latitude, longitude, place_id,
			delivery_date, period, requested_time, mode_id, guest_count, needs_coffee, needs_tea,
			needs_ice_bags, needs_hot_servings, other_needs, advisor_name, checklist_id, status,
			special_instructions, internal_notes, is_pickup, origin_delivery_id, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRow(ctx, query,
		d.DeliveryNumber, d.EventName, d.ClientName, d.ClientPhone, d.ClientEmail, d.OnSiteContact,
		d.Address, d.Apartment, d.AddressLine2, d.PostalCode, d.City, d.Latitude, d.Longitude, d.PlaceID,
		d.DeliveryDate, d.Period, d.RequestedTime, d.ModeID, d.GuestCount, d.NeedsCoffee, d.NeedsTea,
		d.NeedsIceBags, d.NeedsHotServings, d.OtherNeeds, d.AdvisorName, d.ChecklistID, d.Status,
		d.SpecialInstructions, d.InternalNotes, d.IsPickup, d.OriginDeliveryID, d.CreatedByUserID,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create delivery: %w", err)
	}
	return nil
}

// Update rewrites the mutable scheduling fields, keeping links and status.
func (r *DeliveryRepository) Update(ctx context.Context, d *models.Delivery) error {
	query := `
		UPDATE deliveries SET
			event_name = $1, client_name = $2, client_phone = $3, client_email = $4,
			on_site_contact = $5, address = $6, apartment = $7, address_line2 = $8,
			postal_code = $9, city = $10, latitude = $11, longitude = $12, place_id = $13,
			delivery_date = $14, period = $15, requested_time = $16, mode_id = $17,
			guest_count = $18, advisor_name = $19, special_instructions = $20,
			internal_notes = $21, updated_at = NOW()
		WHERE id = $22
	`
	tag, err := r.DB.Exec(ctx, query,
		d.EventName, d.ClientName, d.ClientPhone, d.ClientEmail,
		d.OnSiteContact, d.Address, d.Apartment, d.AddressLine2,
		d.PostalCode, d.City, d.Latitude, d.Longitude, d.PlaceID,
		d.DeliveryDate, d.Period, d.RequestedTime, d.ModeID,
		d.GuestCount, d.AdvisorName, d.SpecialInstructions,
		d.InternalNotes, d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update delivery: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DeliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	d := &models.Delivery{}
	err := scanDelivery(r.DB.QueryRow(ctx, deliverySelect+` WHERE d.id = $1`, id), d)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery: %w", err)
	}
	return d, nil
}

// GetByNumber returns the newest drop-off carrying the order number.
func (r *DeliveryRepository) GetByNumber(ctx context.Context, number string) (*models.Delivery, error) {
	d := &models.Delivery{}
	query := deliverySelect + ` WHERE d.delivery_number = $1 AND NOT d.is_pickup ORDER BY d.created_at DESC LIMIT 1`
	err := scanDelivery(r.DB.QueryRow(ctx, query, number), d)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery by number: %w", err)
	}
	return d, nil
}

func (r *DeliveryRepository) CountByNumber(ctx context.Context, number string) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM deliveries WHERE delivery_number = $1 AND NOT is_pickup`, number).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count deliveries: %w", err)
	}
	return n, nil
}

// CountPickupsFor reports how many pickups were already spawned from a
// delivery, used to keep the conversion one-shot.
func (r *DeliveryRepository) CountPickupsFor(ctx context.Context, originID uuid.UUID) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM deliveries WHERE origin_delivery_id = $1 AND is_pickup`, originID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pickups: %w", err)
	}
	return n, nil
}

// ListUnlinked returns drop-off deliveries still missing their
// checklist link, for the repair sweep.
func (r *DeliveryRepository) ListUnlinked(ctx context.Context) ([]models.Delivery, error) {
	query := deliverySelect + `
		WHERE d.checklist_id IS NULL AND NOT d.is_pickup AND d.status <> 'cancelled'
		ORDER BY d.created_at
	`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlinked deliveries: %w", err)
	}
	defer rows.Close()

	var out []models.Delivery
	for rows.Next() {
		var d models.Delivery
		if err := scanDelivery(rows, &d); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListPickupsFor returns the pickups spawned from a delivery.
func (r *DeliveryRepository) ListPickupsFor(ctx context.Context, originID uuid.UUID) ([]models.Delivery, error) {
	query := deliverySelect + `
		WHERE d.origin_delivery_id = $1 AND d.is_pickup
		ORDER BY d.created_at
	`
	rows, err := r.DB.Query(ctx, query, originID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pickups: %w", err)
	}
	defer rows.Close()

	var out []models.Delivery
	for rows.Next() {
		var d models.Delivery
		if err := scanDelivery(rows, &d); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DeliveryRepository) ListByDate(ctx context.Context, date time.Time, period string) ([]models.Delivery, error) {
	query := deliverySelect + `
		WHERE d.delivery_date = $1 AND ($2 = '' OR d.period = $2)
		ORDER BY d.requested_time NULLS LAST, d.created_at
	`
	rows, err := r.DB.Query(ctx, query, date, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	defer rows.Close()

	var out []models.Delivery
	for rows.Next() {
		var d models.Delivery
		if err := scanDelivery(rows, &d); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByIDs preserves no particular order; callers sort as needed.
func (r *DeliveryRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Delivery, error) {
	query := deliverySelect + ` WHERE d.id = ANY($1) ORDER BY d.created_at`
	rows, err := r.DB.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries by ids: %w", err)
	}
	defer rows.Close()

	var out []models.Delivery
	for rows.Next() {
		var d models.Delivery
		if err := scanDelivery(rows, &d); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DeliveryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE deliveries
		SET status = $1,
		    delivered_at = CASE WHEN $1 = 'delivered' THEN NOW() ELSE delivered_at END,
		    updated_at = NOW()
		WHERE id = $2
	`
	tag, err := r.DB.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update delivery status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetChecklist links a checklist onto the delivery only when the slot is
// still empty, so concurrent linkers cannot double-attach.
func (r *DeliveryRepository) SetChecklist(ctx context.Context, id, checklistID uuid.UUID) (bool, error) {
	tag, err := r.DB.Exec(ctx, `
		UPDATE deliveries SET checklist_id = $1, updated_at = NOW()
		WHERE id = $2 AND checklist_id IS NULL
	`, checklistID, id)
	if err != nil {
		return false, fmt.Errorf("failed to link delivery to checklist: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ExecuteMerge folds the merged deliveries into the survivor in one
// transaction: the survivor takes the combined name, guest count, notes
// and checklist, checklists pointing at the losers are re-pointed, and
// the losers are removed together with their route assignments.
func (r *DeliveryRepository) ExecuteMerge(ctx context.Context, survivor *models.Delivery, mergedIDs []uuid.UUID) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE deliveries SET
			event_name = $1, guest_count = $2, internal_notes = $3, checklist_id = $4,
			needs_coffee = $5, needs_tea = $6, needs_ice_bags = $7, needs_hot_servings = $8,
			other_needs = $9, updated_at = NOW()
		WHERE id = $10
	`, survivor.EventName, survivor.GuestCount, survivor.InternalNotes, survivor.ChecklistID,
		survivor.NeedsCoffee, survivor.NeedsTea, survivor.NeedsIceBags, survivor.NeedsHotServings,
		survivor.OtherNeeds, survivor.ID)
	if err != nil {
		return fmt.Errorf("failed to update merge survivor: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE checklists SET delivery_id = $1, updated_at = NOW()
		WHERE delivery_id = ANY($2)
	`, survivor.ID, mergedIDs)
	if err != nil {
		return fmt.Errorf("failed to repoint checklists: %w", err)
	}

	if survivor.ChecklistID != nil {
		_, err = tx.Exec(ctx, `
			UPDATE checklists SET delivery_id = $1, updated_at = NOW() WHERE id = $2
		`, survivor.ID, *survivor.ChecklistID)
		if err != nil {
			return fmt.Errorf("failed to attach survivor checklist: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM deliveries WHERE id = ANY($1)`, mergedIDs)
	if err != nil {
		return fmt.Errorf("failed to delete merged deliveries: %w", err)
	}
	if int(tag.RowsAffected()) != len(mergedIDs) {
		return fmt.Errorf("merge removed %d of %d deliveries", tag.RowsAffected(), len(mergedIDs))
	}

	return tx.Commit(ctx)
}

func (r *DeliveryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM deliveries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete delivery: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
