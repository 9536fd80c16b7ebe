package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"cheflow-backend/internal/middleware"
	"cheflow-backend/internal/models"
	"cheflow-backend/internal/services"
	"cheflow-backend/internal/timeutil"
	"cheflow-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ChecklistHandler struct {
	Service *services.ChecklistService
	Reports *services.ReportService
}

func NewChecklistHandler(s *services.ChecklistService, reports *services.ReportService) *ChecklistHandler {
	return &ChecklistHandler{Service: s, Reports: reports}
}

func (h *ChecklistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChecklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.Service.Create(r.Context(), &req, currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, c)
}

func (h *ChecklistHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid checklist id")
		return
	}
	c, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, c)
}

func (h *ChecklistHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	date, err := timeutil.ParseLocal(timeutil.DateLayout, r.URL.Query().Get("date"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	lists, err := h.Service.ListByDate(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	if lists == nil {
		lists = []models.Checklist{}
	}
	utils.JSON(w, http.StatusOK, lists)
}

func (h *ChecklistHandler) Items(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid checklist id")
		return
	}
	items, err := h.Service.Items(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.ChecklistItem{}
	}
	utils.JSON(w, http.StatusOK, items)
}

func (h *ChecklistHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid checklist id")
		return
	}
	entries, err := h.Service.History(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.ChecklistItemHistory{}
	}
	utils.JSON(w, http.StatusOK, entries)
}

func (h *ChecklistHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid checklist id")
		return
	}
	pct, err := h.Service.ItemProgress(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]int{"progression": pct})
}

type validateItemRequest struct {
	Status string `json:"status"` // approved or rejected
	Notes  string `json:"notes"`
}

func (h *ChecklistHandler) ValidateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(mux.Vars(r)["item_id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid item id")
		return
	}
	var req validateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	verifierID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	item, err := h.Service.ValidateItem(r.Context(), itemID, req.Status, verifierID, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, item)
}

func (h *ChecklistHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(mux.Vars(r)["item_id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid item id")
		return
	}
	var req models.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.Service.UpdateItem(r.Context(), itemID, &req, currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, item)
}

func (h *ChecklistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid checklist id")
		return
	}
	var req models.CreateChecklistItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.Service.AddItem(r.Context(), id, &req, currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, item)
}

func (h *ChecklistHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(mux.Vars(r)["item_id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid item id")
		return
	}
	if err := h.Service.DeleteItem(r.Context(), itemID, currentUserID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChecklistHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid checklist id")
		return
	}
	var req models.FinalizeChecklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	verifierID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	c, err := h.Service.Finalize(r.Context(), id, &req, verifierID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, c)
}

type duplicateRequest struct {
	OrderNumber string `json:"order_number"`
	Name        string `json:"name"`
}

func (h *ChecklistHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid checklist id")
		return
	}
	var req duplicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.Service.Duplicate(r.Context(), id, req.OrderNumber, req.Name, currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, c)
}

// PrintSheet streams the PDF verification sheet
func (h *ChecklistHandler) PrintSheet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid checklist id")
		return
	}
	data, err := h.Reports.GetChecklistSheetData(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	pdf, err := h.Reports.GenerateChecklistPDF(data)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to render PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="checklist_%s.pdf"`, data.Checklist.OrderNumber))
	w.Write(pdf)
}
