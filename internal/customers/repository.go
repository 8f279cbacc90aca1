package customers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quotadesk/quotadesk/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error)
	Get(ctx context.Context, id int64) (Customer, error)
	Create(ctx context.Context, c Customer) (Customer, error)
	Update(ctx context.Context, id int64, c Customer) error
	Deactivate(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const customerColumns = `id, name, phone, email, address, city, gstin, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if req.Search != "" {
		argCount++
		where += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR phone ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+req.Search+"%")
	}
	if req.IsActive != nil {
		argCount++
		where += ` AND is_active = $` + strconv.Itoa(argCount)
		args = append(args, *req.IsActive)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + customerColumns + ` FROM customers` + where + ` ORDER BY name ASC`
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

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.City, &c.GSTIN, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Customer, error) {
	var c Customer
	err := r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.City, &c.GSTIN, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, httpx.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c Customer) (Customer, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `
		INSERT INTO customers (name, phone, email, address, city, gstin, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, true, $7, $7)
		RETURNING id
	`, c.Name, c.Phone, c.Email, c.Address, c.City, c.GSTIN, now).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Customer{}, httpx.ErrDuplicate
		}
		return Customer{}, err
	}
	c.IsActive = true
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

func (r *repository) Update(ctx context.Context, id int64, c Customer) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE customers
		SET name = $1, phone = $2, email = $3, address = $4, city = $5, gstin = $6, updated_at = NOW()
		WHERE id = $7
	`, c.Name, c.Phone, c.Email, c.Address, c.City, c.GSTIN, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE customers SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
