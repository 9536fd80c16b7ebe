package handlers

import (
	"encoding/json"
	"net/http"

	"cheflow-backend/internal/models"
	"cheflow-backend/internal/services"
	"cheflow-backend/internal/timeutil"
	"cheflow-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type DeliveryHandler struct {
	Service *services.DeliveryService
	Merger  *services.MergeService
	Routes  *services.RouteService
}

func NewDeliveryHandler(s *services.DeliveryService, merger *services.MergeService, routes *services.RouteService) *DeliveryHandler {
	return &DeliveryHandler{Service: s, Merger: merger, Routes: routes}
}

func (h *DeliveryHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req models.UpsertDeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	d, err := h.Service.Upsert(r.Context(), &req, currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, d)
}

func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid delivery id")
		return
	}
	d, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, d)
}

// DayBoard returns the deliveries for ?date=YYYY-MM-DD, optionally
// filtered by ?period=.
func (h *DeliveryHandler) DayBoard(w http.ResponseWriter, r *http.Request) {
	date, err := timeutil.ParseLocal(timeutil.DateLayout, r.URL.Query().Get("date"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	deliveries, err := h.Service.DayBoard(r.Context(), date, r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, err)
		return
	}
	if deliveries == nil {
		deliveries = []models.Delivery{}
	}
	utils.JSON(w, http.StatusOK, deliveries)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *DeliveryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid delivery id")
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Delivered goes through the route path so routes with no
	// remaining stops get completed.
	if req.Status == models.DeliveryStatusDelivered {
		err = h.Routes.MarkDelivered(r.Context(), id)
	} else {
		err = h.Service.UpdateStatus(r.Context(), id, req.Status)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	d, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, d)
}

func (h *DeliveryHandler) ConvertToPickup(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid delivery id")
		return
	}
	pickup, err := h.Service.ConvertToPickup(r.Context(), id, currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, pickup)
}

func (h *DeliveryHandler) ListPickups(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid delivery id")
		return
	}
	pickups, err := h.Service.ListPickups(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if pickups == nil {
		pickups = []models.Delivery{}
	}
	utils.JSON(w, http.StatusOK, pickups)
}

func (h *DeliveryHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req models.MergeDeliveriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.Merger.Merge(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}
