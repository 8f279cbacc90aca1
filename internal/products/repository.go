package products

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quotadesk/quotadesk/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, req ListProductsRequest) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetByCode(ctx context.Context, code string) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, id int64, p Product) error
	Deactivate(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `id, code, name, mrp, price, unit, images, meta, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if req.Search != "" {
		argCount++
		where += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+req.Search+"%")
	}
	if req.IsActive != nil {
		argCount++
		where += ` AND is_active = $` + strconv.Itoa(argCount)
		args = append(args, *req.IsActive)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY name ASC`
	if req.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, req.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, req.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) GetByCode(ctx context.Context, code string) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE code = $1`, code)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	images, meta, err := encodeJSONB(p)
	if err != nil {
		return Product{}, err
	}
	now := time.Now()
	err = r.db.QueryRow(ctx, `
		INSERT INTO products (code, name, mrp, price, unit, images, meta, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8, $8)
		RETURNING id
	`, p.Code, p.Name, p.MRP, p.Price, p.Unit, images, meta, now).Scan(&p.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Product{}, httpx.ErrDuplicate
		}
		return Product{}, err
	}
	p.IsActive = true
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

func (r *repository) Update(ctx context.Context, id int64, p Product) error {
	images, meta, err := encodeJSONB(p)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $1, mrp = $2, price = $3, unit = $4, images = $5, meta = $6, updated_at = NOW()
		WHERE id = $7
	`, p.Name, p.MRP, p.Price, p.Unit, images, meta, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func encodeJSONB(p Product) ([]byte, []byte, error) {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Meta == nil {
		p.Meta = []MetaDetail{}
	}
	images, err := json.Marshal(p.Images)
	if err != nil {
		return nil, nil, err
	}
	meta, err := json.Marshal(p.Meta)
	if err != nil {
		return nil, nil, err
	}
	return images, meta, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var images, meta []byte
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.MRP, &p.Price, &p.Unit, &images, &meta, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return Product{}, err
		}
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &p.Meta); err != nil {
			return Product{}, err
		}
	}
	return p, nil
}
