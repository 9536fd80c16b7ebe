package handlers

import (
	"encoding/json"
	"net/http"

	"cheflow-backend/internal/auth"
	"cheflow-backend/internal/models"
	"cheflow-backend/internal/repositories"
	"cheflow-backend/pkg/utils"
)

type AuthHandler struct {
	UserRepo   *repositories.UserRepository
	JWTManager *auth.JWTManager
}

func NewAuthHandler(userRepo *repositories.UserRepository, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{UserRepo: userRepo, JWTManager: jwtManager}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.UserRepo.GetByUsername(r.Context(), req.Username)
	if err != nil || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		utils.Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !user.IsActive {
		utils.Error(w, http.StatusForbidden, "Account suspended")
		return
	}

	token, err := h.JWTManager.GenerateToken(user)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	utils.JSON(w, http.StatusOK, models.LoginResponse{Token: token, User: user})
}

// CreateUserRequest is the admin user-creation body
type CreateUserRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" || req.Role == "" {
		utils.Error(w, http.StatusBadRequest, "username, password and role are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := &models.User{
		Username:     req.Username,
		FullName:     req.FullName,
		Role:         req.Role,
		Phone:        req.Phone,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := h.UserRepo.Create(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, user)
}
