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

type ContractHandler struct {
	Service *services.ContractService
	Linker  *services.LinkerService
}

func NewContractHandler(s *services.ContractService, linker *services.LinkerService) *ContractHandler {
	return &ContractHandler{Service: s, Linker: linker}
}

func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateContractRequest
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

func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid contract id")
		return
	}
	c, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, c)
}

func (h *ContractHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	date, err := timeutil.ParseLocal(timeutil.DateLayout, r.URL.Query().Get("date"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	contracts, err := h.Service.ListByDate(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	if contracts == nil {
		contracts = []models.Contract{}
	}
	utils.JSON(w, http.StatusOK, contracts)
}

func (h *ContractHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid contract id")
		return
	}
	entries, err := h.Service.History(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.ContractHistory{}
	}
	utils.JSON(w, http.StatusOK, entries)
}

func (h *ContractHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid contract id")
		return
	}
	if err := h.Service.Start(r.Context(), id, currentUserID(r)); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, c)
}

type finishContractRequest struct {
	DrinksReport string `json:"drinks_report"`
	FinalNotes   string `json:"final_notes"`
}

func (h *ContractHandler) Finish(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid contract id")
		return
	}
	var req finishContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.Service.Finish(r.Context(), id, req.DrinksReport, req.FinalNotes, currentUserID(r)); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, c)
}

type cancelContractRequest struct {
	Reason string `json:"reason"`
}

func (h *ContractHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid contract id")
		return
	}
	var req cancelContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.Service.Cancel(r.Context(), id, req.Reason, currentUserID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContractHandler) VerifyConsistency(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid contract id")
		return
	}
	discrepancies, err := h.Service.VerifyConsistency(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if discrepancies == nil {
		discrepancies = []models.Discrepancy{}
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"consistent":    len(discrepancies) == 0,
		"discrepancies": discrepancies,
	})
}

// RepairLinks sweeps every unlinked contract and re-offers it to its
// delivery and checklist. Admin only.
func (h *ContractHandler) RepairLinks(w http.ResponseWriter, r *http.Request) {
	result, err := h.Linker.RepairAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}
