package entity

import (
	"time"

	userentity "github.com/mohirdev/delivery-api/internal/user/entity"
)

// Status is the delivery progression of an order. There is no endpoint that
// advances it; orders are created PENDING.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
)

// Order represents a row in the `orders` table.
type Order struct {
	ID        int64     `db:"id" json:"id"`
	Number    string    `db:"number" json:"number"`
	Quantity  int64     `db:"quantity" json:"quantity"`
	Status    Status    `db:"status" json:"status"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// ProductSummary is the product projection embedded in order responses.
type ProductSummary struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Detail is an order joined with its owning user and referenced product.
type Detail struct {
	ID       int64              `json:"id"`
	Number   string             `json:"number"`
	Quantity int64              `json:"quantity"`
	Status   Status             `json:"status"`
	User     userentity.Summary `json:"user"`
	Product  ProductSummary     `json:"product"`
}
