package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"cheflow-backend/internal/models"
	"cheflow-backend/internal/services"
	"cheflow-backend/internal/timeutil"
	"cheflow-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type RouteHandler struct {
	Service *services.RouteService
	Reports *services.ReportService
}

func NewRouteHandler(s *services.RouteService, reports *services.ReportService) *RouteHandler {
	return &RouteHandler{Service: s, Reports: reports}
}

func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	route, err := h.Service.Create(r.Context(), &req, currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, route)
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid route id")
		return
	}
	route, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, route)
}

func (h *RouteHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	date, err := timeutil.ParseLocal(timeutil.DateLayout, r.URL.Query().Get("date"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	routes, err := h.Service.ListByDate(r.Context(), date, r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, err)
		return
	}
	if routes == nil {
		routes = []models.Route{}
	}
	utils.JSON(w, http.StatusOK, routes)
}

func (h *RouteHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid route id")
		return
	}
	assignments, err := h.Service.Assignments(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if assignments == nil {
		assignments = []models.RouteAssignment{}
	}
	utils.JSON(w, http.StatusOK, assignments)
}

func (h *RouteHandler) AddDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid route id")
		return
	}
	var req models.AddToRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.RouteID = id

	assignment, err := h.Service.AddDelivery(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, assignment)
}

func (h *RouteHandler) RemoveDelivery(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	routeID, err := uuid.Parse(vars["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid route id")
		return
	}
	deliveryID, err := uuid.Parse(vars["delivery_id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid delivery id")
		return
	}

	if err := h.Service.RemoveDelivery(r.Context(), routeID, deliveryID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid route id")
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RouteHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid route id")
		return
	}
	var req models.ReorderRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Service.Reorder(r.Context(), id, &req); err != nil {
		writeError(w, err)
		return
	}
	assignments, err := h.Service.Assignments(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, assignments)
}

func (h *RouteHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid route id")
		return
	}
	if err := h.Service.Start(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	route, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, route)
}

func (h *RouteHandler) Finish(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid route id")
		return
	}
	if err := h.Service.Finish(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	route, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, route)
}

// PrintSheet streams the driver's route sheet as a PDF.
func (h *RouteHandler) PrintSheet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid route id")
		return
	}
	data, err := h.Reports.GetRouteSheetData(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	pdf, err := h.Reports.GenerateRoutePDF(data)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to render PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="route_%s.pdf"`, data.Route.Name))
	w.Write(pdf)
}
