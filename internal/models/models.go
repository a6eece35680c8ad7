package models

import (
	"context"
	"time"
)

// Product is a catalog entry. LastNumber mirrors the persisted [Counter] and
// only moves forward after a committed batch.
type Product struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	LastNumber int    `json:"last_number"`
}

// Counter is the persisted state for one product code.
type Counter struct {
	LastNumber  int `json:"last_number"`
	IssuedCount int `json:"issued_count"`
}

// Request is the input for one generation batch.
//
// Company, Count, Lot and Date are embedded verbatim into codes when the
// active format includes them.
type Request struct {
	ProductCode string `json:"product_code"`
	Quantity    int    `json:"quantity"`
	Company     string `json:"company,omitempty"`
	Count       string `json:"count,omitempty"`
	Lot         string `json:"lot,omitempty"`
	Date        string `json:"date,omitempty"`
}

// Batch is the ordered output of one generation request.
type Batch struct {
	ID          string    `json:"id"`
	ProductCode string    `json:"product_code"`
	ProductName string    `json:"product_name"`
	First       int       `json:"first"`
	Last        int       `json:"last"`
	Codes       []string  `json:"codes"`
	Request     Request   `json:"request"`
	CreatedAt   time.Time `json:"created_at"`
}

// Len returns the number of codes in the batch.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Codes)
}

// CounterStore persists per-product counters.
//
// Get returns a zero [Counter] for unseen codes. Set must be durable before it
// returns and must write both values as one logical update.
type CounterStore interface {
	Get(ctx context.Context, productCode string) (Counter, error)
	Set(ctx context.Context, productCode string, counter Counter) error
}

// BatchStore records generated batches for later inspection.
type BatchStore interface {
	Record(ctx context.Context, batch *Batch) error
	List(ctx context.Context, productCode string, limit int) ([]*Batch, error)
}
