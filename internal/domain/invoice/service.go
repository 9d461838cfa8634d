package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medfatt/medfatt/internal/domain/profile"
	"github.com/medfatt/medfatt/internal/platform/sdi"
)

// maxAllocationAttempts bounds the retry loop on number conflicts. Each
// retry re-reads the latest maximum; the breakdown is never recomputed.
const maxAllocationAttempts = 5

// Transmitter is the fixed transmission identity placed in every interchange
// document's DatiTrasmissione block.
type Transmitter struct {
	Country       string
	Code          string
	RecipientCode string
}

// Service is the invoice assembler: it orchestrates catalog resolution, the
// fiscal calculator and the sequence allocator, and owns status transitions,
// duplication and document rendering.
type Service struct {
	invoices    Repository
	catalog     ServiceCatalog
	clients     ClientDirectory
	alloc       *Allocator
	transmitter Transmitter
}

func NewService(invoices Repository, catalog ServiceCatalog, clients ClientDirectory, transmitter Transmitter) *Service {
	return &Service{
		invoices:    invoices,
		catalog:     catalog,
		clients:     clients,
		alloc:       NewAllocator(invoices),
		transmitter: transmitter,
	}
}

// LineInput is one requested line: a catalogued service, a quantity and an
// optional description override.
type LineInput struct {
	ServiceID   uuid.UUID `json:"service_id"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description,omitempty"`
}

type CreateInput struct {
	ClientID      uuid.UUID     `json:"client_id"`
	Lines         []LineInput   `json:"lines"`
	IssueDate     time.Time     `json:"issue_date"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Note          string        `json:"note,omitempty"`
}

// Create assembles and persists a new invoice. Fresh invoices are issued
// immediately: there is no separate save-as-draft step. The write is atomic;
// on a number conflict the allocation is retried against the latest maximum.
func (s *Service) Create(ctx context.Context, issuerID uuid.UUID, in CreateInput, prof *profile.FiscalProfile) (*Invoice, error) {
	if !in.PaymentMethod.Valid() {
		return nil, &ValidationError{Line: -1, Field: "payment_method", Reason: fmt.Sprintf("unknown method %q", in.PaymentMethod)}
	}
	if len(in.Lines) == 0 {
		return nil, &ValidationError{Line: -1, Field: "lines", Reason: "at least one line is required"}
	}
	if _, err := s.clients.Resolve(ctx, issuerID, in.ClientID); err != nil {
		return nil, err
	}

	lines := make([]BillableLine, 0, len(in.Lines))
	for i, li := range in.Lines {
		if li.Quantity <= 0 {
			return nil, &ValidationError{Line: i, Field: "quantity", Reason: "must be positive"}
		}
		svc, err := s.catalog.Resolve(ctx, issuerID, li.ServiceID)
		if err != nil {
			return nil, err
		}
		if svc == nil || !svc.Active {
			return nil, &UnknownServiceError{ServiceID: li.ServiceID}
		}
		desc := li.Description
		if desc == "" {
			desc = svc.Name
		}
		serviceID := li.ServiceID
		lines = append(lines, BillableLine{
			ID:          uuid.New(),
			ServiceID:   &serviceID,
			Kind:        LineService,
			Description: desc,
			Quantity:    li.Quantity,
			UnitPrice:   svc.Price,
			Total:       svc.Price.Mul(decimal.NewFromInt(int64(li.Quantity))).Round(2),
		})
	}

	breakdown, err := Compute(lines, prof)
	if err != nil {
		return nil, err
	}
	lines = append(lines, syntheticLines(breakdown, prof)...)

	issueDate := in.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	inv := &Invoice{
		ID:            uuid.New(),
		IssuerID:      issuerID,
		ClientID:      in.ClientID,
		IssueDate:     issueDate,
		PaymentMethod: in.PaymentMethod,
		Note:          in.Note,
		Status:        StatusIssued,
		Lines:         lines,
		Breakdown:     breakdown,
	}
	if err := s.persistWithRetry(ctx, issuerID, inv, issueDate); err != nil {
		return nil, err
	}
	return inv, nil
}

// syntheticLines materializes the contribution and stamp duty as ledger rows
// so the stored lines sum exactly to the grand total. Each carries the legal
// citation for its charge.
func syntheticLines(b FiscalBreakdown, prof *profile.FiscalProfile) []BillableLine {
	var lines []BillableLine
	if b.Contribution.IsPositive() {
		lines = append(lines, BillableLine{
			ID:   uuid.New(),
			Kind: LineContribution,
			Description: fmt.Sprintf("Contributo integrativo ENPAP %s%% (art. 8, D.Lgs. 103/1996)",
				prof.ContributionPct.StringFixed(2)),
			Quantity:  1,
			UnitPrice: b.Contribution,
			Total:     b.Contribution,
		})
	}
	if b.StampDuty.IsPositive() {
		lines = append(lines, BillableLine{
			ID:          uuid.New(),
			Kind:        LineStampDuty,
			Description: "Imposta di bollo assolta in modo virtuale (D.M. 17/06/2014)",
			Quantity:    1,
			UnitPrice:   b.StampDuty,
			Total:       b.StampDuty,
		})
	}
	return lines
}

// persistWithRetry allocates a number and writes the aggregate, retrying the
// whole allocate+write on sequence conflicts only. Store failures propagate
// without retry.
func (s *Service) persistWithRetry(ctx context.Context, issuerID uuid.UUID, inv *Invoice, asOf time.Time) error {
	var lastErr error
	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		num, err := s.alloc.NextNumber(ctx, issuerID, asOf)
		if err != nil {
			return err
		}
		inv.Number = num

		err = s.invoices.CreateWithLines(ctx, inv)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrSequenceConflict) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("allocation retries exhausted: %w", lastErr)
}

func (s *Service) Get(ctx context.Context, issuerID, id uuid.UUID) (*Invoice, error) {
	return s.invoices.GetByID(ctx, issuerID, id)
}

func (s *Service) List(ctx context.Context, issuerID uuid.UUID, year, limit, offset int) ([]*Invoice, int, error) {
	return s.invoices.ListByIssuer(ctx, issuerID, year, limit, offset)
}

// UpdateStatus applies a forward-only lifecycle transition.
func (s *Service) UpdateStatus(ctx context.Context, issuerID, id uuid.UUID, next Status) (*Invoice, error) {
	if !next.Valid() {
		return nil, &ValidationError{Line: -1, Field: "status", Reason: fmt.Sprintf("unknown status %q", next)}
	}
	inv, err := s.invoices.GetByID(ctx, issuerID, id)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanTransitionTo(next) {
		return nil, &InvalidTransitionError{From: inv.Status, To: next}
	}
	if err := s.invoices.UpdateStatus(ctx, issuerID, id, next); err != nil {
		return nil, err
	}
	inv.Status = next
	return inv, nil
}

// Duplicate creates a brand-new draft invoice copying the original's lines
// and breakdown verbatim. The breakdown is intentionally not recomputed:
// duplication preserves historical pricing.
func (s *Service) Duplicate(ctx context.Context, issuerID, id uuid.UUID, asOf time.Time) (*Invoice, error) {
	orig, err := s.invoices.GetByID(ctx, issuerID, id)
	if err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}

	lines := make([]BillableLine, len(orig.Lines))
	copy(lines, orig.Lines)
	for i := range lines {
		lines[i].ID = uuid.New()
		lines[i].InvoiceID = uuid.Nil
	}

	dup := &Invoice{
		ID:            uuid.New(),
		IssuerID:      issuerID,
		ClientID:      orig.ClientID,
		IssueDate:     asOf,
		PaymentMethod: orig.PaymentMethod,
		Note:          orig.Note,
		Status:        StatusDraft,
		Lines:         lines,
		Breakdown:     orig.Breakdown,
	}
	if err := s.persistWithRetry(ctx, issuerID, dup, asOf); err != nil {
		return nil, err
	}
	return dup, nil
}

// RenderDocument renders the interchange XML for a stored invoice, runs the
// structural validator, and returns the bytes with the external filename.
// The transmission progressive is derived from the invoice sequence, so
// re-renders of the same invoice are byte-identical.
func (s *Service) RenderDocument(ctx context.Context, issuerID, id uuid.UUID, prof *profile.FiscalProfile) ([]byte, string, error) {
	inv, err := s.invoices.GetByID(ctx, issuerID, id)
	if err != nil {
		return nil, "", err
	}
	client, err := s.clients.Resolve(ctx, issuerID, inv.ClientID)
	if err != nil {
		return nil, "", err
	}

	doc := &sdi.Document{
		TransmitterCountry: s.transmitter.Country,
		TransmitterCode:    s.transmitter.Code,
		Progressive:        fmt.Sprintf("%05d", inv.Number.Sequence),
		RecipientCode:      s.transmitter.RecipientCode,
		Supplier: sdi.Party{
			Country:      prof.Country,
			TaxCode:      prof.TaxCode,
			VATNumber:    prof.VATNumber,
			Denomination: prof.Denomination,
			Street:       prof.Street,
			City:         prof.City,
			PostalCode:   prof.PostalCode,
			Province:     prof.Province,
		},
		Customer: sdi.Party{
			Country:      client.Country,
			TaxCode:      client.TaxCode,
			Denomination: client.Denomination,
			Street:       client.Street,
			City:         client.City,
			PostalCode:   client.PostalCode,
			Province:     client.Province,
		},
		Regime:        string(prof.Regime),
		Number:        inv.Number.String(),
		IssueDate:     inv.IssueDate,
		PaymentMethod: string(inv.PaymentMethod),
		TaxableAmount: inv.Breakdown.Total,
		StampDuty:     inv.Breakdown.StampDuty,
		Total:         inv.Breakdown.Total,
	}
	for _, l := range inv.Lines {
		doc.Lines = append(doc.Lines, sdi.Line{
			Description: l.Description,
			Quantity:    decimal.NewFromInt(int64(l.Quantity)),
			UnitPrice:   l.UnitPrice,
			Total:       l.Total,
		})
	}

	data, err := sdi.Generate(doc)
	if err != nil {
		return nil, "", err
	}
	if err := sdi.Validate(data).Err(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("%s_%03d.xml", prof.TaxCode, inv.Number.Sequence)
	return data, filename, nil
}
