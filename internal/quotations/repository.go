package quotations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quotadesk/quotadesk/internal/platform/db"
	"github.com/quotadesk/quotadesk/internal/platform/httpx"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Quotation, error)
	GetByRefID(ctx context.Context, refID string) (*Quotation, error)
	List(ctx context.Context, req ListQuotationsRequest) ([]QuotationSummary, int, error)
	Create(ctx context.Context, q Quotation) (int64, error)
	UpdateHeader(ctx context.Context, q Quotation) error
	InsertItem(ctx context.Context, item Item) (int64, error)
	DeleteItems(ctx context.Context, quotationID int64) error
	UpdateStatus(ctx context.Context, id int64, status Status, reason *string) error
	GenerateRefID(ctx context.Context, date time.Time) (string, error)
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const quotationColumns = `
	id, ref_id, title, customer_id, status, version, quote_date, valid_until, notes,
	extra_discount_value, extra_discount_type, shipping, tax_rate, tax_amount, round_off, final_amount,
	subtotal, taxable_value, grand_total,
	approved_at, rejected_at, rejection_reason, created_at, updated_at`

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	err := row.Scan(
		&q.ID, &q.RefID, &q.Title, &q.CustomerID, &q.Status, &q.Version, &q.QuoteDate, &q.ValidUntil, &q.Notes,
		&q.ExtraDiscountValue, &q.ExtraDiscountType, &q.Shipping, &q.TaxRate, &q.TaxAmount, &q.RoundOff, &q.FinalAmount,
		&q.Subtotal, &q.TaxableValue, &q.GrandTotal,
		&q.ApprovedAt, &q.RejectedAt, &q.RejectionReason, &q.CreatedAt, &q.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Quotation, error) {
	q, err := scanQuotation(r.db.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	q.Items, err = r.items(ctx, q.ID)
	return q, err
}

func (r *repository) GetByRefID(ctx context.Context, refID string) (*Quotation, error) {
	q, err := scanQuotation(r.db.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE ref_id = $1`, refID))
	if err != nil {
		return nil, err
	}
	q.Items, err = r.items(ctx, q.ID)
	return q, err
}

func (r *repository) items(ctx context.Context, quotationID int64) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quotation_id, product_code, name, image_url, unit_price, quantity,
		       discount_value, discount_type, is_optional, position
		FROM quotation_items
		WHERE quotation_id = $1
		ORDER BY position ASC, id ASC
	`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID, &it.QuotationID, &it.ProductCode, &it.Name, &it.ImageURL, &it.UnitPrice, &it.Quantity,
			&it.DiscountValue, &it.DiscountType, &it.IsOptional, &it.Position,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListQuotationsRequest) ([]QuotationSummary, int, error) {
	conditions := []string{"1=1"}
	args := []any{}
	argPos := 0

	add := func(cond string, val any) {
		argPos++
		conditions = append(conditions, fmt.Sprintf(cond, argPos))
		args = append(args, val)
	}
	if req.CustomerID != nil {
		add("q.customer_id = $%d", *req.CustomerID)
	}
	if req.Status != nil {
		add("q.status = $%d", *req.Status)
	}
	if req.DateFrom != nil {
		add("q.quote_date >= $%d", *req.DateFrom)
	}
	if req.DateTo != nil {
		add("q.quote_date <= $%d", *req.DateTo)
	}

	where := "WHERE " + conditions[0]
	for _, c := range conditions[1:] {
		where += " AND " + c
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotations q `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT q.id, q.ref_id, q.title, q.customer_id, q.status, q.version, q.quote_date, q.valid_until,
		       q.subtotal, q.taxable_value, q.grand_total, q.created_at, q.updated_at,
		       c.name AS customer_name
		FROM quotations q
		JOIN customers c ON q.customer_id = c.id
		%s
		ORDER BY q.quote_date DESC, q.id DESC
		LIMIT $%d OFFSET $%d
	`, where, argPos+1, argPos+2)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []QuotationSummary
	for rows.Next() {
		var s QuotationSummary
		if err := rows.Scan(
			&s.ID, &s.RefID, &s.Title, &s.CustomerID, &s.Status, &s.Version, &s.QuoteDate, &s.ValidUntil,
			&s.Subtotal, &s.TaxableValue, &s.GrandTotal, &s.CreatedAt, &s.UpdatedAt,
			&s.CustomerName,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotations (
			ref_id, title, customer_id, status, version, quote_date, valid_until, notes,
			extra_discount_value, extra_discount_type, shipping, tax_rate, tax_amount, round_off, final_amount,
			subtotal, taxable_value, grand_total, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW(), NOW())
		RETURNING id
	`,
		q.RefID, q.Title, q.CustomerID, q.Status, q.Version, q.QuoteDate, q.ValidUntil, q.Notes,
		q.ExtraDiscountValue, q.ExtraDiscountType, q.Shipping, q.TaxRate, q.TaxAmount, q.RoundOff, q.FinalAmount,
		q.Subtotal, q.TaxableValue, q.GrandTotal,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, httpx.ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateHeader(ctx context.Context, q Quotation) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations SET
			title = $1, quote_date = $2, valid_until = $3, notes = $4,
			extra_discount_value = $5, extra_discount_type = $6, shipping = $7, tax_rate = $8,
			tax_amount = $9, round_off = $10, final_amount = $11,
			subtotal = $12, taxable_value = $13, grand_total = $14,
			version = $15, updated_at = NOW()
		WHERE id = $16
	`,
		q.Title, q.QuoteDate, q.ValidUntil, q.Notes,
		q.ExtraDiscountValue, q.ExtraDiscountType, q.Shipping, q.TaxRate,
		q.TaxAmount, q.RoundOff, q.FinalAmount,
		q.Subtotal, q.TaxableValue, q.GrandTotal,
		q.Version, q.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) InsertItem(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotation_items (
			quotation_id, product_code, name, image_url, unit_price, quantity,
			discount_value, discount_type, is_optional, position
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		item.QuotationID, item.ProductCode, item.Name, item.ImageURL, item.UnitPrice, item.Quantity,
		item.DiscountValue, item.DiscountType, item.IsOptional, item.Position,
	).Scan(&id)
	return id, err
}

func (r *repository) DeleteItems(ctx context.Context, quotationID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM quotation_items WHERE quotation_id = $1`, quotationID)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status, reason *string) error {
	query := `UPDATE quotations SET status = $1, updated_at = NOW()`
	switch status {
	case StatusApproved:
		query += `, approved_at = NOW()`
	case StatusRejected:
		query += `, rejected_at = NOW(), rejection_reason = $3`
	}
	query += ` WHERE id = $2`

	var (
		tag pgconn.CommandTag
		err error
	)
	if status == StatusRejected {
		tag, err = r.db.Exec(ctx, query, status, id, reason)
	} else {
		tag, err = r.db.Exec(ctx, query, status, id)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// GenerateRefID allocates QD-{YYMM}-{SEQ} from a per-period counter row.
// The upsert serializes concurrent allocations on that row, so two creates
// in the same period cannot receive the same sequence.
func (r *repository) GenerateRefID(ctx context.Context, date time.Time) (string, error) {
	var seq int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, "QD", date.Format("200601")).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("QD-%s-%04d", date.Format("0601"), seq), nil
}
