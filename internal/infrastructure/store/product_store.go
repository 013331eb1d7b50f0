package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/turismo-portal/internal/domain/product"
)

const productColumns = "id, code, name, description, price, image_url, active, created_at, updated_at"

// ProductStore reads and writes the products table.
type ProductStore struct {
	db *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

// ListActive returns the storefront catalog: active products, newest first.
func (s *ProductStore) ListActive(ctx context.Context) ([]product.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE active = true ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

// List returns every product, active or not, newest first. Admin use.
func (s *ProductStore) List(ctx context.Context) ([]product.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (s *ProductStore) Get(ctx context.Context, id string) (*product.Product, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)

	var p product.Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.Price,
		&p.ImageURL, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, product.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductStore) Create(ctx context.Context, p *product.Product) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, code, name, description, price, image_url, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Code, p.Name, p.Description, p.Price, p.ImageURL, p.Active, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *ProductStore) Update(ctx context.Context, p *product.Product) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products
		 SET code = $2, name = $3, description = $4, price = $5, image_url = $6, active = $7, updated_at = $8
		 WHERE id = $1`,
		p.ID, p.Code, p.Name, p.Description, p.Price, p.ImageURL, p.Active, p.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res, product.ErrProductNotFound)
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res, product.ErrProductNotFound)
}

func scanProducts(rows *sql.Rows) ([]product.Product, error) {
	products := make([]product.Product, 0)
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.Price,
			&p.ImageURL, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// requireRow maps an UPDATE/DELETE that touched nothing to notFound.
func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
