package catalog

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

const serviceCols = `id, issuer_id, name, price, active, created_at, updated_at`

func (r *repoPG) scanService(row pgx.Row) (*BillableService, error) {
	var s BillableService
	err := row.Scan(&s.ID, &s.IssuerID, &s.Name, &s.Price, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan billable service: %w", err)
	}
	return &s, nil
}

func (r *repoPG) Create(ctx context.Context, s *BillableService) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO billable_services (id, issuer_id, name, price, active)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.IssuerID, s.Name, s.Price, s.Active)
	if err != nil {
		return fmt.Errorf("insert billable service: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*BillableService, error) {
	return r.scanService(r.conn(ctx).QueryRow(ctx,
		`SELECT `+serviceCols+` FROM billable_services WHERE id = $1`, id))
}

func (r *repoPG) ListByIssuer(ctx context.Context, issuerID uuid.UUID, activeOnly bool, limit, offset int) ([]*BillableService, int, error) {
	filter := ``
	if activeOnly {
		filter = ` AND active`
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM billable_services WHERE issuer_id = $1`+filter, issuerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count billable services: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+serviceCols+` FROM billable_services WHERE issuer_id = $1`+filter+
			` ORDER BY name LIMIT $2 OFFSET $3`, issuerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list billable services: %w", err)
	}
	defer rows.Close()

	var items []*BillableService
	for rows.Next() {
		s, err := r.scanService(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Retire(ctx context.Context, issuerID, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE billable_services SET active = FALSE, updated_at = NOW()
		WHERE id = $1 AND issuer_id = $2`, id, issuerID)
	if err != nil {
		return fmt.Errorf("retire billable service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
