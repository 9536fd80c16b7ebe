package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"cheflow-backend/internal/models"
	"cheflow-backend/internal/repositories"
	"cheflow-backend/pkg/utils"
)

// CatalogHandler is thin CRUD over the object catalog; no service layer
// because there is no business logic beyond validation.
type CatalogHandler struct {
	Repo *repositories.CatalogRepository
}

func NewCatalogHandler(repo *repositories.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{Repo: repo}
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Repo.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if categories == nil {
		categories = []models.CatalogCategory{}
	}
	utils.JSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var c models.CatalogCategory
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if c.Name == "" {
		utils.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.Repo.CreateCategory(r.Context(), &c); err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, c)
}

func (h *CatalogHandler) ListObjects(w http.ResponseWriter, r *http.Request) {
	categoryID := 0
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid category id")
			return
		}
		categoryID = id
	}

	objects, err := h.Repo.ListObjects(r.Context(), categoryID)
	if err != nil {
		writeError(w, err)
		return
	}
	if objects == nil {
		objects = []models.CatalogObject{}
	}
	utils.JSON(w, http.StatusOK, objects)
}

func (h *CatalogHandler) CreateObject(w http.ResponseWriter, r *http.Request) {
	var o models.CatalogObject
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if o.Name == "" || o.CategoryID == 0 {
		utils.Error(w, http.StatusBadRequest, "name and category_id are required")
		return
	}
	if o.Unit == "" {
		o.Unit = "unit"
	}

	if err := h.Repo.CreateObject(r.Context(), &o); err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, o)
}
