// Package categories manages the product category reference data.
package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("category not found")

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type NewCategory struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

func (c *Conf) Insert(ctx context.Context, nc NewCategory) (*Category, error) {
	now := time.Now().UTC()
	const query = `
		INSERT INTO categories (name, description, icon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err := c.db.QueryRowContext(ctx, query,
		nc.Name, nullable(nc.Description), nullable(nc.Icon), now, now).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}
	return c.GetByID(ctx, id)
}

func (c *Conf) GetByID(ctx context.Context, id int64) (*Category, error) {
	const query = `
		SELECT id, name, description, icon, created_at, updated_at
		FROM categories WHERE id = $1
	`
	var cat Category
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&cat.ID, &cat.Name, &cat.Description, &cat.Icon, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query category %d: %w", id, err)
	}
	return &cat, nil
}

func (c *Conf) ListAll(ctx context.Context) ([]Category, error) {
	const query = `
		SELECT id, name, description, icon, created_at, updated_at
		FROM categories ORDER BY name
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.Icon, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return out, nil
}

func (c *Conf) Update(ctx context.Context, id int64, nc NewCategory) (*Category, error) {
	const query = `
		UPDATE categories SET name = $1, description = $2, icon = $3, updated_at = $4
		WHERE id = $5
	`
	res, err := c.db.ExecContext(ctx, query,
		nc.Name, nullable(nc.Description), nullable(nc.Icon), time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update category %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return c.GetByID(ctx, id)
}

func (c *Conf) Delete(ctx context.Context, id int64) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
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

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
