package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/medfatt/medfatt/internal/domain/profile"
)

// Stamp duty is a fixed constant of the legal regime, not issuer
// configuration: a flat 2.00 EUR owed on exempt documents above 77.47 EUR,
// and only under the flat-rate regime.
var (
	stampDutyThreshold = decimal.RequireFromString("77.47")
	stampDutyAmount    = decimal.RequireFromString("2.00")
)

// Compute derives the fiscal breakdown from the ledger's service lines and
// the issuer profile. Pure and deterministic: no I/O, same inputs always
// yield the same breakdown. Intermediate sums keep full precision; rounding
// to two decimals happens once per component at the boundary, half-up.
func Compute(lines []BillableLine, prof *profile.FiscalProfile) (FiscalBreakdown, error) {
	if len(lines) == 0 {
		return FiscalBreakdown{}, &ValidationError{Line: -1, Field: "lines", Reason: "at least one line is required"}
	}
	for i, l := range lines {
		if l.Quantity <= 0 {
			return FiscalBreakdown{}, &ValidationError{Line: i, Field: "quantity", Reason: "must be positive"}
		}
		if l.UnitPrice.IsNegative() {
			return FiscalBreakdown{}, &ValidationError{Line: i, Field: "unit_price", Reason: "must not be negative"}
		}
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = subtotal.Round(2)

	rawContribution := subtotal.Mul(prof.ContributionPct).Div(decimal.NewFromInt(100)).Round(2)

	var contribution, absorbed decimal.Decimal
	if prof.ContributionToClient {
		contribution = rawContribution
	} else {
		absorbed = rawContribution
	}

	var duty decimal.Decimal
	if prof.Regime == profile.RegimeFlatRate && subtotal.Add(contribution).GreaterThan(stampDutyThreshold) {
		duty = stampDutyAmount
	}

	total := subtotal.Add(contribution).Add(duty).Round(2)

	return FiscalBreakdown{
		Subtotal:             subtotal,
		Contribution:         contribution,
		ContributionAbsorbed: absorbed,
		StampDuty:            duty,
		Total:                total,
	}, nil
}
