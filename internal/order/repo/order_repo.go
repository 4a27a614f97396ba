package repo

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/mohirdev/delivery-api/internal/order/entity"
	userentity "github.com/mohirdev/delivery-api/internal/user/entity"
)

// OrderRepo provides data access for the orders table using sqlx.
type OrderRepo struct {
	db *sqlx.DB
}

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// EnsureTable creates the orders table if not exists (idempotent). Requires
// the users and products tables.
func (r *OrderRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS orders (
  id BIGSERIAL PRIMARY KEY,
  number VARCHAR(32) NOT NULL UNIQUE,
  quantity BIGINT NOT NULL,
  status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
  user_id BIGINT NOT NULL REFERENCES users(id),
  product_id BIGINT NOT NULL REFERENCES products(id),
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new order row and fills in the generated ID and status.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	const q = `INSERT INTO orders (number, quantity, user_id, product_id)
		VALUES ($1, $2, $3, $4) RETURNING id, status, created_at`
	return r.db.QueryRowxContext(ctx, q, o.Number, o.Quantity, o.UserID, o.ProductID).
		Scan(&o.ID, &o.Status, &o.CreatedAt)
}

// detailRow is the flat scan target for the joined detail queries.
type detailRow struct {
	ID           int64         `db:"id"`
	Number       string        `db:"number"`
	Quantity     int64         `db:"quantity"`
	Status       entity.Status `db:"status"`
	UserID       int64         `db:"user_id"`
	Username     string        `db:"username"`
	Email        string        `db:"email"`
	ProductName  string        `db:"product_name"`
	ProductPrice int64         `db:"product_price"`
}

func (d detailRow) detail() entity.Detail {
	return entity.Detail{
		ID:       d.ID,
		Number:   d.Number,
		Quantity: d.Quantity,
		Status:   d.Status,
		User:     userentity.Summary{ID: d.UserID, Username: d.Username, Email: d.Email},
		Product:  entity.ProductSummary{Name: d.ProductName, Price: d.ProductPrice},
	}
}

const detailSelect = `
SELECT o.id, o.number, o.quantity, o.status,
       u.id AS user_id, u.username, u.email,
       p.name AS product_name, p.price AS product_price
  FROM orders o
  JOIN users u ON u.id = o.user_id
  JOIN products p ON p.id = o.product_id`

// GetDetail fetches one order joined with its user and product, or
// sql.ErrNoRows.
func (r *OrderRepo) GetDetail(ctx context.Context, id int64) (*entity.Detail, error) {
	var row detailRow
	if err := r.db.GetContext(ctx, &row, detailSelect+` WHERE o.id=$1`, id); err != nil {
		return nil, err
	}
	d := row.detail()
	return &d, nil
}

// ListDetails returns all orders with user and product embedded.
func (r *OrderRepo) ListDetails(ctx context.Context) ([]entity.Detail, error) {
	var rows []detailRow
	if err := r.db.SelectContext(ctx, &rows, detailSelect+` ORDER BY o.id`); err != nil {
		return nil, err
	}
	details := make([]entity.Detail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.detail())
	}
	return details, nil
}

// ListDetailsByUser returns the orders owned by one user.
func (r *OrderRepo) ListDetailsByUser(ctx context.Context, userID int64) ([]entity.Detail, error) {
	var rows []detailRow
	if err := r.db.SelectContext(ctx, &rows, detailSelect+` WHERE o.user_id=$1 ORDER BY o.id`, userID); err != nil {
		return nil, err
	}
	details := make([]entity.Detail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.detail())
	}
	return details, nil
}
