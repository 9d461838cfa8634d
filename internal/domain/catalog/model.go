package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillableService is one entry of the issuer's service catalog. Retired
// services stay on file for the invoices that reference them but can no
// longer be billed.
type BillableService struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	IssuerID  uuid.UUID       `db:"issuer_id" json:"issuer_id"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Active    bool            `db:"active" json:"active"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

func (s *BillableService) Validate() error {
	if s.IssuerID == uuid.Nil {
		return fmt.Errorf("issuer_id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}
