package repo

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/mohirdev/delivery-api/internal/product/entity"
)

// ProductRepo provides data access for the products table using sqlx.
type ProductRepo struct {
	db *sqlx.DB
}

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// EnsureTable creates the products table if not exists (idempotent).
func (r *ProductRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS products (
  id BIGSERIAL PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  price BIGINT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new product row and fills in the generated ID.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	const q = `INSERT INTO products (name, price) VALUES ($1, $2) RETURNING id, created_at`
	return r.db.QueryRowxContext(ctx, q, p.Name, p.Price).Scan(&p.ID, &p.CreatedAt)
}

// List returns all products.
func (r *ProductRepo) List(ctx context.Context) ([]entity.Product, error) {
	const q = `SELECT id, name, price, created_at FROM products ORDER BY id`
	products := []entity.Product{}
	if err := r.db.SelectContext(ctx, &products, q); err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID fetches a product or sql.ErrNoRows.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	const q = `SELECT id, name, price, created_at FROM products WHERE id=$1`
	var row entity.Product
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// Update persists name and price and reports affected rows.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) (int64, error) {
	const q = `UPDATE products SET name=$2, price=$3 WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, p.ID, p.Name, p.Price)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes a product and reports affected rows.
func (r *ProductRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
