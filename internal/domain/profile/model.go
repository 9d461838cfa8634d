package profile

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Regime is the issuer's fiscal regime. Closed enum: the engine refuses
// anything outside it at profile-save time, never at invoice-creation time.
type Regime string

const (
	RegimeOrdinary Regime = "ordinario"
	RegimeFlatRate Regime = "forfettario"
)

func (r Regime) Valid() bool {
	return r == RegimeOrdinary || r == RegimeFlatRate
}

// DefaultContributionPct is the professional-fund contribution applied when
// the profile does not say otherwise.
var DefaultContributionPct = decimal.NewFromFloat(2.0)

// FiscalProfile is the issuer configuration the engine computes against. It
// is mutated only through explicit settings updates; the invoice engine
// reads it and never writes it.
type FiscalProfile struct {
	IssuerID             uuid.UUID       `db:"issuer_id" json:"issuer_id"`
	TaxCode              string          `db:"tax_code" json:"tax_code"`
	VATNumber            string          `db:"vat_number" json:"vat_number,omitempty"`
	Denomination         string          `db:"denomination" json:"denomination"`
	Street               string          `db:"street" json:"street"`
	City                 string          `db:"city" json:"city"`
	PostalCode           string          `db:"postal_code" json:"postal_code"`
	Province             string          `db:"province" json:"province,omitempty"`
	Country              string          `db:"country" json:"country"`
	Regime               Regime          `db:"regime" json:"regime"`
	ContributionPct      decimal.Decimal `db:"contribution_pct" json:"contribution_pct"`
	ContributionToClient bool            `db:"contribution_to_client" json:"contribution_to_client"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
}

// Normalize fills the explicit defaults for fields the caller left empty.
func (p *FiscalProfile) Normalize() {
	if p.Country == "" {
		p.Country = "IT"
	}
	if p.ContributionPct.IsZero() {
		p.ContributionPct = DefaultContributionPct
	}
}

// Validate checks the profile once, at save time. Invoice creation trusts a
// stored profile.
func (p *FiscalProfile) Validate() error {
	if p.IssuerID == uuid.Nil {
		return fmt.Errorf("issuer_id is required")
	}
	if p.TaxCode == "" {
		return fmt.Errorf("tax_code is required")
	}
	if p.Denomination == "" {
		return fmt.Errorf("denomination is required")
	}
	if !p.Regime.Valid() {
		return fmt.Errorf("invalid fiscal regime: %q", p.Regime)
	}
	if p.ContributionPct.IsNegative() {
		return fmt.Errorf("contribution_pct must not be negative")
	}
	if p.ContributionPct.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("contribution_pct must not exceed 100")
	}
	if len(p.Country) != 2 {
		return fmt.Errorf("country must be a 2-letter ISO code, got %q", p.Country)
	}
	return nil
}
