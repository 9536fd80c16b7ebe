package models

import "time"

// CatalogCategory groups catalog objects for display
type CatalogCategory struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	Color     string    `json:"color"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CatalogObject is an item of equipment/material that checklists draw from
type CatalogObject struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	CategoryID   int       `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"` // joined for display
	Description  string    `json:"description,omitempty"`
	Unit         string    `json:"unit"` // e.g. unit, kg, L, pair
	StockQty     int       `json:"stock_qty"`
	SortOrder    int       `json:"sort_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
