package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"cheflow-backend/internal/metrics"
	"cheflow-backend/internal/models"
	"cheflow-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MergeDeliveryStore is the delivery surface the merge engine needs.
type MergeDeliveryStore interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Delivery, error)
	ExecuteMerge(ctx context.Context, survivor *models.Delivery, mergedIDs []uuid.UUID) error
}

// MergeService folds several deliveries for the same event into one.
// The survivor is picked by what it would cost to lose: a delivery
// carrying a checklist and a pickup-generating mode wins, then one with
// a checklist, then one with a pickup-generating mode, then the first.
type MergeService struct {
	deliveries MergeDeliveryStore
	logger     zerolog.Logger
}

func NewMergeService(deliveries MergeDeliveryStore, logger zerolog.Logger) *MergeService {
	return &MergeService{deliveries: deliveries, logger: logger}
}

// Event names look like "Conference Hall 305.1 @West" where the middle
// token is the room or order suffix and the @ part is a zone tag.
var eventNamePattern = regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)\s*(@.+)?$`)

func (s *MergeService) Merge(ctx context.Context, req *models.MergeDeliveriesRequest) (*models.MergeResult, error) {
	if len(req.DeliveryIDs) < 2 {
		return nil, invalid("delivery_ids", "at least two deliveries are required")
	}

	deliveries, err := s.deliveries.ListByIDs(ctx, req.DeliveryIDs)
	if err != nil {
		return nil, err
	}
	if len(deliveries) != len(req.DeliveryIDs) {
		return nil, invalid("delivery_ids", "one or more deliveries do not exist")
	}
	for i := 1; i < len(deliveries); i++ {
		if !sameDay(deliveries[i].DeliveryDate, deliveries[0].DeliveryDate) {
			return nil, invalid("delivery_ids", "deliveries must share the same date")
		}
	}
	for i := range deliveries {
		if deliveries[i].Status != models.DeliveryStatusUnassigned {
			return nil, invalid("delivery_ids", "only unassigned deliveries can be merged")
		}
	}

	principal := SelectPrincipal(deliveries)
	survivor := *principal

	names := make([]string, 0, len(deliveries))
	guestCount := 0
	var modes []string
	for i := range deliveries {
		d := &deliveries[i]
		names = append(names, d.EventName)
		guestCount += d.GuestCount
		if d.Mode != nil && !contains(modes, d.Mode.Name) {
			modes = append(modes, d.Mode.Name)
		}
		survivor.NeedsCoffee = survivor.NeedsCoffee || d.NeedsCoffee
		survivor.NeedsTea = survivor.NeedsTea || d.NeedsTea
		survivor.NeedsIceBags = survivor.NeedsIceBags || d.NeedsIceBags
		survivor.NeedsHotServings = survivor.NeedsHotServings || d.NeedsHotServings
		if d.OtherNeeds != "" && !strings.Contains(survivor.OtherNeeds, d.OtherNeeds) {
			if survivor.OtherNeeds != "" {
				survivor.OtherNeeds += "; "
			}
			survivor.OtherNeeds += d.OtherNeeds
		}
		if survivor.ChecklistID == nil && d.ChecklistID != nil {
			survivor.ChecklistID = d.ChecklistID
		}
	}
	survivor.EventName = MergeNames(names)
	survivor.GuestCount = guestCount
	survivor.InternalNotes = appendMergeNote(survivor.InternalNotes, deliveries, modes, guestCount)

	mergedIDs := make([]uuid.UUID, 0, len(deliveries)-1)
	for i := range deliveries {
		if deliveries[i].ID != survivor.ID {
			mergedIDs = append(mergedIDs, deliveries[i].ID)
		}
	}

	if err := s.deliveries.ExecuteMerge(ctx, &survivor, mergedIDs); err != nil {
		return nil, err
	}

	metrics.DeliveriesMerged.Add(float64(len(mergedIDs)))
	s.logger.Info().
		Str("survivor_id", survivor.ID.String()).
		Int("merged", len(mergedIDs)).
		Str("event_name", survivor.EventName).
		Msg("deliveries merged")

	return &models.MergeResult{
		SurvivorID:  survivor.ID,
		EventName:   survivor.EventName,
		GuestCount:  guestCount,
		MergedCount: len(mergedIDs),
	}, nil
}

// SelectPrincipal picks the delivery whose links are most expensive to
// rebuild. Ties keep input order.
func SelectPrincipal(deliveries []models.Delivery) *models.Delivery {
	score := func(d *models.Delivery) int {
		hasChecklist := d.ChecklistID != nil
		hasPickupMode := d.Mode != nil && d.Mode.SupportsPickup
		switch {
		case hasChecklist && hasPickupMode:
			return 3
		case hasChecklist:
			return 2
		case hasPickupMode:
			return 1
		default:
			return 0
		}
	}
	best := &deliveries[0]
	for i := 1; i < len(deliveries); i++ {
		if score(&deliveries[i]) > score(best) {
			best = &deliveries[i]
		}
	}
	return best
}

// MergeNames synthesizes one event name from several. Names sharing the
// "<base> <number>[@zone]" shape collapse into the first base with the
// numbers joined by "+" and the first zone tag kept. Unparseable names
// are skipped (the first one still seeds the base when nothing parsed
// before it); only when no name parses at all do the full names get
// joined with " + ".
func MergeNames(names []string) string {
	var base, zone string
	var numbers []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		m := eventNamePattern.FindStringSubmatch(name)
		if m == nil {
			if base == "" {
				base = name
			}
			continue
		}
		if base == "" {
			base = m[1]
		}
		numbers = append(numbers, m[2])
		if zone == "" && m[3] != "" {
			zone = m[3]
		}
	}
	if len(numbers) == 0 {
		return strings.Join(names, " + ")
	}
	out := base + " " + strings.Join(numbers, "+")
	if zone != "" {
		out += " " + zone
	}
	return out
}

// appendMergeNote records the merge in the survivor's internal notes so
// the absorbed deliveries stay traceable after their rows are gone.
func appendMergeNote(existing string, deliveries []models.Delivery, modes []string, guestCount int) string {
	var b strings.Builder
	if existing != "" {
		b.WriteString(existing)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "=== MERGE OF %d DELIVERIES ===\n", len(deliveries))
	fmt.Fprintf(&b, "Merged at: %s\n", timeutil.Now().Format(timeutil.DateLayout+" "+timeutil.ClockLayout))
	fmt.Fprintf(&b, "Delivery modes: %s\n", strings.Join(modes, " + "))
	fmt.Fprintf(&b, "Total guests: %d\n", guestCount)
	b.WriteString("\nMerged deliveries:\n")
	for i := range deliveries {
		fmt.Fprintf(&b, "  - %s - %s\n", deliveries[i].DeliveryNumber, deliveries[i].EventName)
	}
	return b.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
