package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound means no fiscal profile has been saved for the issuer yet.
var ErrNotFound = errors.New("fiscal profile not found")

type Repository interface {
	Get(ctx context.Context, issuerID uuid.UUID) (*FiscalProfile, error)
	Save(ctx context.Context, p *FiscalProfile) error
}
