package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"cheflow-backend/internal/models"
	"cheflow-backend/internal/services"
	"cheflow-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type QuoteHandler struct {
	Service *services.QuoteService
}

func NewQuoteHandler(s *services.QuoteService) *QuoteHandler {
	return &QuoteHandler{Service: s}
}

func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	q, err := h.Service.Create(r.Context(), &req, currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, q)
}

func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid quote id")
		return
	}
	q, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, q)
}

func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.Service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	if quotes == nil {
		quotes = []models.Quote{}
	}
	utils.JSON(w, http.StatusOK, quotes)
}

func (h *QuoteHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid quote id")
		return
	}
	q, err := h.Service.Duplicate(r.Context(), id, currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, q)
}

func (h *QuoteHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid quote id")
		return
	}
	q, err := h.Service.Send(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, q)
}

type decideQuoteRequest struct {
	Accepted bool `json:"accepted"`
}

func (h *QuoteHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid quote id")
		return
	}
	var req decideQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	q, err := h.Service.Decide(r.Context(), id, req.Accepted)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, q)
}
