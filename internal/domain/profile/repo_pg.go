package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medfatt/medfatt/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const profileCols = `issuer_id, tax_code, vat_number, denomination,
	street, city, postal_code, province, country,
	regime, contribution_pct, contribution_to_client, created_at, updated_at`

func (r *repoPG) scanProfile(row pgx.Row) (*FiscalProfile, error) {
	var p FiscalProfile
	err := row.Scan(&p.IssuerID, &p.TaxCode, &p.VATNumber, &p.Denomination,
		&p.Street, &p.City, &p.PostalCode, &p.Province, &p.Country,
		&p.Regime, &p.ContributionPct, &p.ContributionToClient, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan fiscal profile: %w", err)
	}
	return &p, nil
}

func (r *repoPG) Get(ctx context.Context, issuerID uuid.UUID) (*FiscalProfile, error) {
	return r.scanProfile(r.conn(ctx).QueryRow(ctx,
		`SELECT `+profileCols+` FROM fiscal_profiles WHERE issuer_id = $1`, issuerID))
}

func (r *repoPG) Save(ctx context.Context, p *FiscalProfile) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO fiscal_profiles (issuer_id, tax_code, vat_number, denomination,
			street, city, postal_code, province, country,
			regime, contribution_pct, contribution_to_client)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (issuer_id) DO UPDATE SET
			tax_code = EXCLUDED.tax_code,
			vat_number = EXCLUDED.vat_number,
			denomination = EXCLUDED.denomination,
			street = EXCLUDED.street,
			city = EXCLUDED.city,
			postal_code = EXCLUDED.postal_code,
			province = EXCLUDED.province,
			country = EXCLUDED.country,
			regime = EXCLUDED.regime,
			contribution_pct = EXCLUDED.contribution_pct,
			contribution_to_client = EXCLUDED.contribution_to_client,
			updated_at = NOW()`,
		p.IssuerID, p.TaxCode, p.VATNumber, p.Denomination,
		p.Street, p.City, p.PostalCode, p.Province, p.Country,
		p.Regime, p.ContributionPct, p.ContributionToClient)
	if err != nil {
		return fmt.Errorf("save fiscal profile: %w", err)
	}
	return nil
}
