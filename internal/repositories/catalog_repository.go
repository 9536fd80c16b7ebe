package repositories

import (
	"context"
	"errors"
	"fmt"

	"cheflow-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogRepository struct {
	DB *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c *models.CatalogCategory) error {
	query := `
		INSERT INTO catalog_categories(name, icon, color, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(ctx, query, c.Name, c.Icon, c.Color, c.SortOrder, c.IsActive).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]models.CatalogCategory, error) {
	query := `
		SELECT id, name, icon, color, sort_order, is_active, created_at
		FROM catalog_categories WHERE is_active ORDER BY sort_order, name
	`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var cats []models.CatalogCategory
	for rows.Next() {
		var c models.CatalogCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.SortOrder, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *CatalogRepository) CreateObject(ctx context.Context, o *models.CatalogObject) error {
	query := `
		INSERT INTO catalog_objects(name, category_id, description, unit, stock_qty, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(ctx, query,
		o.Name, o.CategoryID, o.Description, o.Unit, o.StockQty, o.SortOrder, o.IsActive,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create object: %w", err)
	}
	return nil
}

// GetObject returns the object with its category name joined in.
func (r *CatalogRepository) GetObject(ctx context.Context, id int) (*models.CatalogObject, error) {
	query := `
		SELECT o.id, o.name, o.category_id, o.description, o.unit, o.stock_qty, o.sort_order, o.is_active, o.created_at,
		       c.name
		FROM catalog_objects o
		JOIN catalog_categories c ON c.id = o.category_id
		WHERE o.id = $1
	`
	o := &models.CatalogObject{}
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.Name, &o.CategoryID, &o.Description, &o.Unit, &o.StockQty, &o.SortOrder, &o.IsActive, &o.CreatedAt,
		&o.CategoryName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return o, nil
}

func (r *CatalogRepository) ListObjects(ctx context.Context, categoryID int) ([]models.CatalogObject, error) {
	query := `
		SELECT o.id, o.name, o.category_id, o.description, o.unit, o.stock_qty, o.sort_order, o.is_active, o.created_at,
		       c.name
		FROM catalog_objects o
		JOIN catalog_categories c ON c.id = o.category_id
		WHERE o.is_active AND ($1 = 0 OR o.category_id = $1)
		ORDER BY o.sort_order, o.name
	`
	rows, err := r.DB.Query(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	defer rows.Close()

	var objects []models.CatalogObject
	for rows.Next() {
		var o models.CatalogObject
		if err := rows.Scan(&o.ID, &o.Name, &o.CategoryID, &o.Description, &o.Unit, &o.StockQty, &o.SortOrder, &o.IsActive, &o.CreatedAt, &o.CategoryName); err != nil {
			return nil, fmt.Errorf("failed to scan object: %w", err)
		}
		objects = append(objects, o)
	}
	return objects, rows.Err()
}
