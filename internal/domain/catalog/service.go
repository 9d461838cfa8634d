package catalog

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	services Repository
}

func NewService(services Repository) *Service {
	return &Service{services: services}
}

func (s *Service) Create(ctx context.Context, svc *BillableService) error {
	svc.Active = true
	if err := svc.Validate(); err != nil {
		return err
	}
	return s.services.Create(ctx, svc)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*BillableService, error) {
	return s.services.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, issuerID uuid.UUID, activeOnly bool, limit, offset int) ([]*BillableService, int, error) {
	return s.services.ListByIssuer(ctx, issuerID, activeOnly, limit, offset)
}

func (s *Service) Retire(ctx context.Context, issuerID, id uuid.UUID) error {
	return s.services.Retire(ctx, issuerID, id)
}
