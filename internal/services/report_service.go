package services

import (
	"bytes"
	"context"
	"fmt"

	"cheflow-backend/internal/models"
	"cheflow-backend/internal/repositories"
	"cheflow-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jung-kurt/gofpdf/v2"
)

// ChecklistSheetData holds everything printed on a verification sheet
type ChecklistSheetData struct {
	Checklist   *models.Checklist
	Items       []models.ChecklistItem
	Progression int
}

// RouteSheetData holds everything printed on a driver's route sheet
type RouteSheetData struct {
	Route      *models.Route
	Deliveries []models.Delivery
}

// ReportService renders printable PDF sheets for the warehouse floor
// and the drivers.
type ReportService struct {
	DB             *pgxpool.Pool
	ChecklistRepo  *repositories.ChecklistRepository
	ItemRepo       *repositories.ChecklistItemRepository
	RouteRepo      *repositories.RouteRepository
	AssignmentRepo *repositories.RouteAssignmentRepository
	DeliveryRepo   *repositories.DeliveryRepository
}

func NewReportService(
	db *pgxpool.Pool,
	checklistRepo *repositories.ChecklistRepository,
	itemRepo *repositories.ChecklistItemRepository,
	routeRepo *repositories.RouteRepository,
	assignmentRepo *repositories.RouteAssignmentRepository,
	deliveryRepo *repositories.DeliveryRepository,
) *ReportService {
	return &ReportService{
		DB:             db,
		ChecklistRepo:  checklistRepo,
		ItemRepo:       itemRepo,
		RouteRepo:      routeRepo,
		AssignmentRepo: assignmentRepo,
		DeliveryRepo:   deliveryRepo,
	}
}

// GetChecklistSheetData fetches the checklist and its items for printing
func (s *ReportService) GetChecklistSheetData(ctx context.Context, id uuid.UUID) (*ChecklistSheetData, error) {
	c, err := s.ChecklistRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.ItemRepo.ListByChecklist(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.ItemRepo.StatusCounts(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ChecklistSheetData{Checklist: c, Items: items, Progression: Progression(counts)}, nil
}

// GenerateChecklistPDF renders the verification sheet for one checklist
func (s *ReportService) GenerateChecklistPDF(data *ChecklistSheetData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Verification Sheet", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Order info box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Order Information", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Order: %s", data.Checklist.OrderNumber), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Event date: %s", data.Checklist.EventDate.Format("02-Jan-2006")), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Name: %s", data.Checklist.Name), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Status: %s (%d%%)", data.Checklist.Status, data.Progression), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Items table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(70, 7, "Object", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 7, "Category", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Unit", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Status", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, it := range data.Items {
		name := it.ObjectName
		if len(name) > 35 {
			name = name[:32] + "..."
		}
		pdf.CellFormat(70, 6, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, it.CategoryName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, it.Quantity.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, it.ObjectUnit, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, it.Status, "1", 1, "C", false, 0, "")
	}
	pdf.Ln(8)

	// Signature line
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 8, "Verified by: ______________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 8, "Date: ______________________", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GetRouteSheetData fetches a route and its deliveries in stop order
func (s *ReportService) GetRouteSheetData(ctx context.Context, id uuid.UUID) (*RouteSheetData, error) {
	rt, err := s.RouteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	assignments, err := s.AssignmentRepo.ListByRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	deliveries := make([]models.Delivery, 0, len(assignments))
	for _, a := range assignments {
		d, err := s.DeliveryRepo.GetByID(ctx, a.DeliveryID)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, *d)
	}
	return &RouteSheetData{Route: rt, Deliveries: deliveries}, nil
}

// GenerateRoutePDF renders the driver's route sheet with stops in
// traversal order.
func (s *ReportService) GenerateRoutePDF(data *RouteSheetData) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "") // Landscape for the address column
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(277, 12, fmt.Sprintf("Route Sheet - %s", data.Route.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(277, 7, fmt.Sprintf("%s / %s / departure %s",
		data.Route.Date.Format("02-Jan-2006"), data.Route.Period,
		data.Route.DepartureTime.Format("15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(12, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Order", "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 7, "Client", "1", 0, "C", true, 0, "")
	pdf.CellFormat(90, 7, "Address", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Time", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Contact", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Done", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for i, d := range data.Deliveries {
		address := d.Address
		if d.Apartment != "" {
			address = fmt.Sprintf("%s, app. %s", address, d.Apartment)
		}
		if len(address) > 55 {
			address = address[:52] + "..."
		}
		requested := ""
		if d.RequestedTime != nil {
			requested = d.RequestedTime.In(timeutil.Montreal).Format("15:04")
		}
		pdf.CellFormat(12, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, d.DeliveryNumber, "1", 0, "C", false, 0, "")
		pdf.CellFormat(55, 6, d.ClientName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(90, 6, address, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, requested, "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, d.OnSiteContact, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, "", "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
