package invoice

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the invoice record store. CreateWithLines writes the header,
// the service lines and the synthetic lines in one transaction: a partial
// failure must roll back the number allocation with the content.
type Repository interface {
	CreateWithLines(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, issuerID, id uuid.UUID) (*Invoice, error)
	ListByIssuer(ctx context.Context, issuerID uuid.UUID, year, limit, offset int) ([]*Invoice, int, error)
	UpdateStatus(ctx context.Context, issuerID, id uuid.UUID, status Status) error
	MaxSequence(ctx context.Context, issuerID uuid.UUID, year int) (int, error)
}

// CatalogService is the slice of the service catalog the assembler needs.
type CatalogService struct {
	ID     uuid.UUID
	Name   string
	Price  decimal.Decimal
	Active bool
}

// ServiceCatalog resolves billed service references. Implementations return
// retired services with Active false; the assembler rejects them.
type ServiceCatalog interface {
	Resolve(ctx context.Context, issuerID, serviceID uuid.UUID) (*CatalogService, error)
}

// Client carries the fiscal identity the interchange document needs for the
// customer block.
type Client struct {
	ID           uuid.UUID
	TaxCode      string
	Denomination string
	Street       string
	City         string
	PostalCode   string
	Province     string
	Country      string
}

// ClientDirectory resolves the invoice's client reference.
type ClientDirectory interface {
	Resolve(ctx context.Context, issuerID, clientID uuid.UUID) (*Client, error)
}
