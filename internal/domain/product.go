package domain

import "time"

type Product struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Price       float64
	Quantity    int
	CategoryID  string
	Shipping    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Product) InStock() bool {
	return p.Quantity > 0
}
