package invoice

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the invoice lifecycle state, wire-level Italian strings.
// Transitions move forward only and never regress.
type Status string

const (
	StatusDraft   Status = "bozza"
	StatusIssued  Status = "inviata"
	StatusPaid    Status = "pagata"
	StatusOverdue Status = "scaduta"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusIssued, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// CanTransitionTo reports whether the change is allowed. Paid is terminal and
// blocks further expiry transitions.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusIssued
	case StatusIssued:
		return next == StatusPaid || next == StatusOverdue
	}
	return false
}

// PaymentMethod is the closed enum of accepted payment methods.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "bank_transfer"
	PaymentCard     PaymentMethod = "card"
	PaymentCheque   PaymentMethod = "cheque"
	PaymentPOS      PaymentMethod = "pos"
	PaymentWallet   PaymentMethod = "wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentTransfer, PaymentCard, PaymentCheque, PaymentPOS, PaymentWallet:
		return true
	}
	return false
}

// LineKind distinguishes billed services from the synthetic entries the
// assembler materializes so the line ledger sums exactly to the grand total.
type LineKind string

const (
	LineService      LineKind = "service"
	LineContribution LineKind = "contribution"
	LineStampDuty    LineKind = "stamp_duty"
)

// BillableLine is one row of the invoice ledger. Immutable once attached.
// ServiceID is nil for synthetic lines.
type BillableLine struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	InvoiceID   uuid.UUID       `db:"invoice_id" json:"invoice_id"`
	ServiceID   *uuid.UUID      `db:"service_id" json:"service_id,omitempty"`
	Kind        LineKind        `db:"kind" json:"kind"`
	Description string          `db:"description" json:"description"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	Total       decimal.Decimal `db:"total" json:"total"`
}

// FiscalBreakdown is the computed money decomposition embedded in the
// invoice. Total is always the rounded sum of its client-facing components;
// ContributionAbsorbed is audit-only and never part of the total.
type FiscalBreakdown struct {
	Subtotal             decimal.Decimal `db:"subtotal" json:"subtotal"`
	Contribution         decimal.Decimal `db:"contribution" json:"contribution"`
	ContributionAbsorbed decimal.Decimal `db:"contribution_absorbed" json:"contribution_absorbed"`
	StampDuty            decimal.Decimal `db:"stamp_duty" json:"stamp_duty"`
	Total                decimal.Decimal `db:"total" json:"total"`
}

// Number is the legal invoice identifier, unique per issuer and fiscal year.
// Sequences form a gapless ascending run starting at 1.
type Number struct {
	Year     int
	Sequence int
}

func (n Number) String() string {
	return fmt.Sprintf("%04d-%03d", n.Year, n.Sequence)
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", n.String())), nil
}

// Invoice is the aggregate root: header, ledger lines, and breakdown.
type Invoice struct {
	ID            uuid.UUID       `json:"id"`
	IssuerID      uuid.UUID       `json:"issuer_id"`
	ClientID      uuid.UUID       `json:"client_id"`
	Number        Number          `json:"number"`
	IssueDate     time.Time       `json:"issue_date"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Note          string          `json:"note,omitempty"`
	Status        Status          `json:"status"`
	Lines         []BillableLine  `json:"lines,omitempty"`
	Breakdown     FiscalBreakdown `json:"breakdown"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
