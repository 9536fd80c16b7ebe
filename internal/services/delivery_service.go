package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cheflow-backend/internal/cache"
	"cheflow-backend/internal/models"
	"cheflow-backend/internal/repositories"
	"cheflow-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DeliveryStore is the persistence surface of the delivery lifecycle.
type DeliveryStore interface {
	Create(ctx context.Context, d *models.Delivery) error
	Update(ctx context.Context, d *models.Delivery) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	GetByNumber(ctx context.Context, number string) (*models.Delivery, error)
	ListByDate(ctx context.Context, date time.Time, period string) ([]models.Delivery, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	CountPickupsFor(ctx context.Context, originID uuid.UUID) (int, error)
	ListPickupsFor(ctx context.Context, originID uuid.UUID) ([]models.Delivery, error)
}

// ModeStore resolves shipping modes by name, creating unknown ones.
type ModeStore interface {
	GetOrCreate(ctx context.Context, name string) (*models.DeliveryMode, error)
}

// DeliveryLinker attaches a fresh delivery to its counterparts.
type DeliveryLinker interface {
	LinkDelivery(ctx context.Context, d *models.Delivery) []models.LinkReport
}

type DeliveryService struct {
	deliveries DeliveryStore
	modes      ModeStore
	linker     DeliveryLinker
	logger     zerolog.Logger
}

func NewDeliveryService(deliveries DeliveryStore, modes ModeStore, linker DeliveryLinker, logger zerolog.Logger) *DeliveryService {
	return &DeliveryService{
		deliveries: deliveries,
		modes:      modes,
		linker:     linker,
		logger:     logger,
	}
}

// Upsert creates or refreshes a delivery keyed by its number. Existing
// deliveries keep their status, links and pickup lineage; only the
// scheduling fields are rewritten. New deliveries go through linking.
func (s *DeliveryService) Upsert(ctx context.Context, req *models.UpsertDeliveryRequest, createdBy *int) (*models.Delivery, error) {
	if req.DeliveryNumber == "" {
		return nil, invalid("delivery_number", "is required")
	}
	if req.ClientName == "" {
		return nil, invalid("client_name", "is required")
	}
	date, err := timeutil.ParseLocal(timeutil.DateLayout, req.DeliveryDate)
	if err != nil {
		return nil, invalid("delivery_date", "must be YYYY-MM-DD")
	}

	var requested *time.Time
	period := models.PeriodMorning
	if req.RequestedTime != "" {
		t, err := timeutil.ParseLocal(timeutil.DateLayout+" "+timeutil.ClockLayout, req.DeliveryDate+" "+req.RequestedTime)
		if err != nil {
			return nil, invalid("requested_time", "must be HH:MM")
		}
		requested = &t
		period = timeutil.PeriodForTime(t)
	}

	var modeID *int
	if req.ModeName != "" {
		mode, err := s.modes.GetOrCreate(ctx, req.ModeName)
		if err != nil {
			return nil, err
		}
		modeID = &mode.ID
	}

	existing, err := s.deliveries.GetByNumber(ctx, req.DeliveryNumber)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		applyUpsert(existing, req, date, period, requested, modeID)
		if err := s.deliveries.Update(ctx, existing); err != nil {
			return nil, err
		}
		cache.InvalidateBoards(ctx)
		s.logger.Info().Str("delivery_number", req.DeliveryNumber).Msg("delivery refreshed")
		return existing, nil
	}

	d := &models.Delivery{
		DeliveryNumber:  req.DeliveryNumber,
		Status:          models.DeliveryStatusUnassigned,
		City:            req.City,
		CreatedByUserID: createdBy,
	}
	applyUpsert(d, req, date, period, requested, modeID)
	if d.City == "" {
		d.City = "Montreal"
	}
	if err := s.deliveries.Create(ctx, d); err != nil {
		return nil, err
	}
	if s.linker != nil {
		s.linker.LinkDelivery(ctx, d)
	}
	cache.InvalidateBoards(ctx)
	s.logger.Info().Str("delivery_number", req.DeliveryNumber).Str("period", period).Msg("delivery created")
	return d, nil
}

func applyUpsert(d *models.Delivery, req *models.UpsertDeliveryRequest, date time.Time, period string, requested *time.Time, modeID *int) {
	d.EventName = req.EventName
	d.ClientName = req.ClientName
	d.ClientPhone = req.ClientPhone
	d.ClientEmail = req.ClientEmail
	d.OnSiteContact = req.OnSiteContact
	d.Address = req.Address
	d.Apartment = req.Apartment
	d.AddressLine2 = req.AddressLine2
	d.PostalCode = req.PostalCode
	if req.City != "" {
		d.City = req.City
	}
	d.Latitude = req.Latitude
	d.Longitude = req.Longitude
	d.PlaceID = req.PlaceID
	d.DeliveryDate = date
	d.Period = period
	d.RequestedTime = requested
	d.ModeID = modeID
	d.GuestCount = req.GuestCount
	d.AdvisorName = req.AdvisorName
	d.SpecialInstructions = req.SpecialInstructions
}

func (s *DeliveryService) GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	return s.deliveries.GetByID(ctx, id)
}

func (s *DeliveryService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	switch status {
	case models.DeliveryStatusUnassigned, models.DeliveryStatusAssigned,
		models.DeliveryStatusInProgress, models.DeliveryStatusDelivered,
		models.DeliveryStatusCancelled:
	default:
		return invalid("status", "unknown delivery status")
	}
	if err := s.deliveries.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	cache.InvalidateBoards(ctx)
	return nil
}

// ConvertToPickup spawns the return trip for a delivered order whose
// mode requires equipment recovery. The pickup reuses the order number
// with a -REC suffix and starts unassigned. One pickup per delivery.
func (s *DeliveryService) ConvertToPickup(ctx context.Context, id uuid.UUID, createdBy *int) (*models.Delivery, error) {
	d, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.IsPickup {
		return nil, invalid("delivery_id", "delivery is already a pickup")
	}
	if d.Status != models.DeliveryStatusDelivered {
		return nil, ErrConflict
	}
	if d.Mode == nil || !d.Mode.SupportsPickup {
		return nil, invalid("delivery_id", "delivery mode does not generate pickups")
	}
	if n, err := s.deliveries.CountPickupsFor(ctx, id); err != nil {
		return nil, err
	} else if n > 0 {
		return nil, ErrConflict
	}

	pickup := *d
	pickup.ID = uuid.Nil
	pickup.DeliveryNumber = d.DeliveryNumber + "-REC"
	pickup.EventName = d.EventName
	pickup.Period = models.PeriodAfternoon
	pickup.RequestedTime = nil
	pickup.DeliveredAt = nil
	pickup.ChecklistID = nil
	pickup.Status = models.DeliveryStatusUnassigned
	pickup.IsPickup = true
	pickup.OriginDeliveryID = &d.ID
	pickup.CreatedByUserID = createdBy

	if err := s.deliveries.Create(ctx, &pickup); err != nil {
		return nil, err
	}
	cache.InvalidateBoards(ctx)
	s.logger.Info().
		Str("origin_id", d.ID.String()).
		Str("pickup_number", pickup.DeliveryNumber).
		Msg("pickup created")
	return &pickup, nil
}

// ListPickups returns the pickups spawned from a delivery.
func (s *DeliveryService) ListPickups(ctx context.Context, id uuid.UUID) ([]models.Delivery, error) {
	return s.deliveries.ListPickupsFor(ctx, id)
}

// DayBoard returns the deliveries of one date/period, cached briefly in
// Redis since dispatchers poll it.
func (s *DeliveryService) DayBoard(ctx context.Context, date time.Time, period string) ([]models.Delivery, error) {
	key := cache.DayBoardKey(date, period)
	if data, ok := cache.GetCached(ctx, key); ok {
		var out []models.Delivery
		if err := json.Unmarshal(data, &out); err == nil {
			return out, nil
		}
	}

	out, err := s.deliveries.ListByDate(ctx, date, period)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(out); err == nil {
		cache.SetCached(ctx, key, data, 30*time.Second)
	}
	return out, nil
}
