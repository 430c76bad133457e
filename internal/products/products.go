// Package products implements the catalog the order workflow reads from.
package products

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("product not found")

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

const queryProductColumns = `
	SELECT p.id, p.farmer_id, p.category_id, p.name, p.description, p.price, p.unit,
	       p.quantity_available, p.images, p.is_organic, p.is_featured, p.is_active,
	       p.harvest_date, p.available_until, p.created_at, p.updated_at,
	       u.id, u.name, u.email, u.phone,
	       c.id, c.name, c.description
	FROM products p
	JOIN users u ON u.id = p.farmer_id
	JOIN categories c ON c.id = p.category_id
`

// InsertProduct creates a catalog entry owned by the given farmer.
func (c *Conf) InsertProduct(ctx context.Context, farmerID int64, np NewProduct) (*Product, error) {
	images, err := json.Marshal(orEmpty(np.Images))
	if err != nil {
		return nil, fmt.Errorf("failed to encode images: %w", err)
	}

	now := time.Now().UTC()
	const queryInsert = `
		INSERT INTO products (farmer_id, category_id, name, description, price, unit,
			quantity_available, images, is_organic, is_featured, is_active,
			harvest_date, available_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	var id int64
	err = c.db.QueryRowContext(ctx, queryInsert,
		farmerID, np.CategoryID, np.Name, np.Description, np.Price, np.Unit,
		np.QuantityAvailable, string(images), np.IsOrganic, np.IsFeatured, true,
		np.HarvestDate, np.AvailableUntil, now, now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return c.GetByID(ctx, id)
}

// GetByID loads a product with its farmer and category summaries.
func (c *Conf) GetByID(ctx context.Context, id int64) (*Product, error) {
	row := c.db.QueryRowContext(ctx, queryProductColumns+` WHERE p.id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query product %d: %w", id, err)
	}
	return product, nil
}

// List returns active products matching the filter plus the total match count
// for pagination.
func (c *Conf) List(ctx context.Context, f Filter) ([]Product, int, error) {
	where := []string{"p.is_active = TRUE"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		p := arg("%" + strings.ToLower(f.Search) + "%")
		where = append(where, fmt.Sprintf("(LOWER(p.name) LIKE %s OR LOWER(p.description) LIKE %s)", p, p))
	}
	if f.Category != 0 {
		where = append(where, "p.category_id = "+arg(f.Category))
	}
	if f.Farmer != 0 {
		where = append(where, "p.farmer_id = "+arg(f.Farmer))
	}
	if f.MinPrice != nil {
		where = append(where, "p.price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, "p.price <= "+arg(*f.MaxPrice))
	}

	whereClause := "WHERE " + strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM products p ` + whereClause
	if err := c.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}
	query := queryProductColumns + " " + whereClause +
		` ORDER BY p.created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg((page-1)*limit)

	items, err := c.listQuery(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByFarmer returns a farmer's own products, active or not, paginated.
func (c *Conf) ListByFarmer(ctx context.Context, farmerID int64, page, limit int) ([]Product, int, error) {
	var total int
	if err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products p WHERE p.farmer_id = $1`, farmerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	query := queryProductColumns + ` WHERE p.farmer_id = $1 ORDER BY p.created_at DESC LIMIT $2 OFFSET $3`
	items, err := c.listQuery(ctx, query, farmerID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListFeatured returns up to eight featured active products, newest first.
func (c *Conf) ListFeatured(ctx context.Context) ([]Product, error) {
	query := queryProductColumns + ` WHERE p.is_active = TRUE AND p.is_featured = TRUE ORDER BY p.created_at DESC LIMIT 8`
	return c.listQuery(ctx, query)
}

// UpdateProduct applies the non-nil fields of up to an existing product.
func (c *Conf) UpdateProduct(ctx context.Context, id int64, up UpdateProduct) (*Product, error) {
	current, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if up.Name != nil {
		current.Name = *up.Name
	}
	if up.Description != nil {
		current.Description = *up.Description
	}
	if up.CategoryID != nil {
		current.CategoryID = *up.CategoryID
	}
	if up.Price != nil {
		current.Price = *up.Price
	}
	if up.Unit != nil {
		current.Unit = *up.Unit
	}
	if up.QuantityAvailable != nil {
		current.QuantityAvailable = *up.QuantityAvailable
	}
	if up.Images != nil {
		current.Images = up.Images
	}
	if up.IsOrganic != nil {
		current.IsOrganic = *up.IsOrganic
	}
	if up.IsFeatured != nil {
		current.IsFeatured = *up.IsFeatured
	}
	if up.IsActive != nil {
		current.IsActive = *up.IsActive
	}
	if up.HarvestDate != nil {
		current.HarvestDate = up.HarvestDate
	}
	if up.AvailableUntil != nil {
		current.AvailableUntil = up.AvailableUntil
	}

	images, err := json.Marshal(orEmpty(current.Images))
	if err != nil {
		return nil, fmt.Errorf("failed to encode images: %w", err)
	}

	const queryUpdate = `
		UPDATE products
		SET category_id = $1, name = $2, description = $3, price = $4, unit = $5,
		    quantity_available = $6, images = $7, is_organic = $8, is_featured = $9,
		    is_active = $10, harvest_date = $11, available_until = $12, updated_at = $13
		WHERE id = $14
	`
	_, err = c.db.ExecContext(ctx, queryUpdate,
		current.CategoryID, current.Name, current.Description, current.Price, current.Unit,
		current.QuantityAvailable, string(images), current.IsOrganic, current.IsFeatured,
		current.IsActive, current.HarvestDate, current.AvailableUntil, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}

	return c.GetByID(ctx, id)
}

// SoftDelete deactivates a product so it disappears from public listings
// while order history keeps referencing it.
func (c *Conf) SoftDelete(ctx context.Context, id int64) error {
	res, err := c.db.ExecContext(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate product %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Conf) listQuery(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var (
		product   Product
		farmer    FarmerSummary
		category  CategorySummary
		imagesRaw []byte
	)
	err := row.Scan(
		&product.ID, &product.FarmerID, &product.CategoryID, &product.Name, &product.Description,
		&product.Price, &product.Unit, &product.QuantityAvailable, &imagesRaw,
		&product.IsOrganic, &product.IsFeatured, &product.IsActive,
		&product.HarvestDate, &product.AvailableUntil, &product.CreatedAt, &product.UpdatedAt,
		&farmer.ID, &farmer.Name, &farmer.Email, &farmer.Phone,
		&category.ID, &category.Name, &category.Description,
	)
	if err != nil {
		return nil, err
	}

	product.Images = []string{}
	if len(imagesRaw) > 0 {
		if err := json.Unmarshal(imagesRaw, &product.Images); err != nil {
			return nil, fmt.Errorf("failed to decode product images: %w", err)
		}
	}
	product.Farmer = &farmer
	product.Category = &category
	return &product, nil
}

func orEmpty(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
