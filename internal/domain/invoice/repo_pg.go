package invoice

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

// storeErr translates driver errors into the domain taxonomy: a unique
// violation on the number index means a lost allocation race, anything
// non-SQL means the store itself is unreachable.
func storeErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_invoice_number" {
			return fmt.Errorf("%s: %w", op, ErrSequenceConflict)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}

const invoiceCols = `id, issuer_id, client_id, fiscal_year, sequence, issue_date,
	payment_method, note, status, subtotal, contribution, contribution_absorbed,
	stamp_duty, total, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.IssuerID, &inv.ClientID, &inv.Number.Year, &inv.Number.Sequence,
		&inv.IssueDate, &inv.PaymentMethod, &inv.Note, &inv.Status,
		&inv.Breakdown.Subtotal, &inv.Breakdown.Contribution, &inv.Breakdown.ContributionAbsorbed,
		&inv.Breakdown.StampDuty, &inv.Breakdown.Total, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("scan invoice", err)
	}
	return &inv, nil
}

func (r *repoPG) CreateWithLines(ctx context.Context, inv *Invoice) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		q := r.conn(ctx)
		_, err := q.Exec(ctx, `
			INSERT INTO invoices (id, issuer_id, client_id, fiscal_year, sequence,
				issue_date, payment_method, note, status, subtotal, contribution,
				contribution_absorbed, stamp_duty, total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
			inv.ID, inv.IssuerID, inv.ClientID, inv.Number.Year, inv.Number.Sequence,
			inv.IssueDate, inv.PaymentMethod, inv.Note, inv.Status,
			inv.Breakdown.Subtotal, inv.Breakdown.Contribution,
			inv.Breakdown.ContributionAbsorbed, inv.Breakdown.StampDuty, inv.Breakdown.Total)
		if err != nil {
			return storeErr("insert invoice", err)
		}

		for i := range inv.Lines {
			l := &inv.Lines[i]
			l.InvoiceID = inv.ID
			_, err := q.Exec(ctx, `
				INSERT INTO invoice_lines (id, invoice_id, service_id, kind,
					description, quantity, unit_price, total, position)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
				l.ID, l.InvoiceID, l.ServiceID, l.Kind,
				l.Description, l.Quantity, l.UnitPrice, l.Total, i)
			if err != nil {
				return storeErr("insert invoice line", err)
			}
		}
		return nil
	})
}

func (r *repoPG) GetByID(ctx context.Context, issuerID, id uuid.UUID) (*Invoice, error) {
	inv, err := scanInvoice(r.conn(ctx).QueryRow(ctx,
		`SELECT `+invoiceCols+` FROM invoices WHERE id = $1 AND issuer_id = $2`, id, issuerID))
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, invoice_id, service_id, kind, description, quantity, unit_price, total
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, storeErr("list invoice lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l BillableLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.ServiceID, &l.Kind,
			&l.Description, &l.Quantity, &l.UnitPrice, &l.Total); err != nil {
			return nil, storeErr("scan invoice line", err)
		}
		inv.Lines = append(inv.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list invoice lines", err)
	}
	return inv, nil
}

func (r *repoPG) ListByIssuer(ctx context.Context, issuerID uuid.UUID, year, limit, offset int) ([]*Invoice, int, error) {
	filter := ` WHERE issuer_id = $1`
	args := []interface{}{issuerID}
	if year > 0 {
		filter += ` AND fiscal_year = $2`
		args = append(args, year)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+filter, args...).Scan(&total); err != nil {
		return nil, 0, storeErr("count invoices", err)
	}

	n := len(args)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+invoiceCols+` FROM invoices`+filter+
			fmt.Sprintf(` ORDER BY fiscal_year DESC, sequence DESC LIMIT $%d OFFSET $%d`, n+1, n+2),
		args...)
	if err != nil {
		return nil, 0, storeErr("list invoices", err)
	}
	defer rows.Close()

	var items []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storeErr("list invoices", err)
	}
	return items, total, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, issuerID, id uuid.UUID, status Status) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoices SET status = $1, updated_at = NOW()
		WHERE id = $2 AND issuer_id = $3`, status, id, issuerID)
	if err != nil {
		return storeErr("update invoice status", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) MaxSequence(ctx context.Context, issuerID uuid.UUID, year int) (int, error) {
	var max int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(MAX(sequence), 0) FROM invoices
		WHERE issuer_id = $1 AND fiscal_year = $2`, issuerID, year).Scan(&max)
	if err != nil {
		return 0, storeErr("read max sequence", err)
	}
	return max, nil
}

// clientDirectoryPG resolves clients from the clients table. Client master
// data is managed elsewhere; the engine only reads the fiscal identity.
type clientDirectoryPG struct{ pool *pgxpool.Pool }

func NewClientDirectoryPG(pool *pgxpool.Pool) ClientDirectory {
	return &clientDirectoryPG{pool: pool}
}

func (r *clientDirectoryPG) Resolve(ctx context.Context, issuerID, clientID uuid.UUID) (*Client, error) {
	var c Client
	err := r.pool.QueryRow(ctx, `
		SELECT id, tax_code, denomination, street, city, postal_code, province, country
		FROM clients WHERE id = $1 AND issuer_id = $2`, clientID, issuerID).Scan(
		&c.ID, &c.TaxCode, &c.Denomination, &c.Street, &c.City, &c.PostalCode, &c.Province, &c.Country)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ValidationError{Line: -1, Field: "client_id", Reason: "client not found"}
	}
	if err != nil {
		return nil, storeErr("resolve client", err)
	}
	return &c, nil
}
