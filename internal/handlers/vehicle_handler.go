package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"cheflow-backend/internal/models"
	"cheflow-backend/internal/repositories"
	"cheflow-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type VehicleHandler struct {
	Repo *repositories.VehicleRepository
}

func NewVehicleHandler(repo *repositories.VehicleRepository) *VehicleHandler {
	return &VehicleHandler{Repo: repo}
}

func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Repo.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	utils.JSON(w, http.StatusOK, vehicles)
}

func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var v models.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if v.Plate == "" {
		utils.Error(w, http.StatusBadRequest, "plate is required")
		return
	}
	if v.Status == "" {
		v.Status = models.VehicleStatusAvailable
	}

	if err := h.Repo.Create(r.Context(), &v); err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, v)
}

func (h *VehicleHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid vehicle id")
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	switch req.Status {
	case models.VehicleStatusAvailable, models.VehicleStatusOnRoute, models.VehicleStatusMaintenance:
	default:
		utils.Error(w, http.StatusBadRequest, "Invalid vehicle status")
		return
	}

	if err := h.Repo.UpdateStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, err)
		return
	}
	v, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, v)
}
