package entity

import "time"

// Product represents a row in the `products` table. Price is in minor
// currency units.
type Product struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Price     int64     `db:"price" json:"price"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}
