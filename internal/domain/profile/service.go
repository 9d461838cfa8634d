package profile

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	profiles Repository
}

func NewService(profiles Repository) *Service {
	return &Service{profiles: profiles}
}

func (s *Service) Get(ctx context.Context, issuerID uuid.UUID) (*FiscalProfile, error) {
	return s.profiles.Get(ctx, issuerID)
}

// Save normalizes and validates the profile, then upserts it. Validation
// happens here, once, so invoice creation never has to re-check profile
// shape.
func (s *Service) Save(ctx context.Context, p *FiscalProfile) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	return s.profiles.Save(ctx, p)
}
