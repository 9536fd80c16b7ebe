package models

import "time"

// User roles
const (
	RoleDeliverer         = "deliverer"
	RoleDeliveryManager   = "delivery_manager"
	RoleSales             = "sales"
	RoleSalesManager      = "sales_manager"
	RoleMaitreHotel       = "maitre_hotel"
	RoleChecklistVerifier = "checklist_verifier"
	RoleAdmin             = "admin"
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoginRequest is the request body for /auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the identity it represents
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
