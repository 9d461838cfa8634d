package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound means the referenced service does not exist.
var ErrNotFound = errors.New("billable service not found")

type Repository interface {
	Create(ctx context.Context, s *BillableService) error
	GetByID(ctx context.Context, id uuid.UUID) (*BillableService, error)
	ListByIssuer(ctx context.Context, issuerID uuid.UUID, activeOnly bool, limit, offset int) ([]*BillableService, int, error)
	Retire(ctx context.Context, issuerID, id uuid.UUID) error
}
