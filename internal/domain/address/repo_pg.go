package address

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/safetynet/alerts/internal/platform/db"
)

type addressRepoPG struct{ pool *pgxpool.Pool }

func NewAddressRepoPG(pool *pgxpool.Pool) Repository {
	return &addressRepoPG{pool: pool}
}

func (r *addressRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const addressCols = `id, address, city, zip, firestation`

func scanAddress(row pgx.Row) (*Address, error) {
	var a Address
	if err := row.Scan(&a.ID, &a.Address, &a.City, &a.Zip, &a.Firestation); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *addressRepoPG) GetByAddress(ctx context.Context, address string) (*Address, error) {
	a, err := scanAddress(r.conn(ctx).QueryRow(ctx,
		`SELECT `+addressCols+` FROM addresses WHERE address = $1`, address))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}
	return a, nil
}

func (r *addressRepoPG) ListByFirestations(ctx context.Context, stations []string) ([]*Address, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+addressCols+` FROM addresses WHERE firestation = ANY($1) ORDER BY id`, stations)
	if err != nil {
		return nil, fmt.Errorf("list addresses by firestation: %w", err)
	}
	defer rows.Close()

	var out []*Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *addressRepoPG) Create(ctx context.Context, a *Address) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO addresses (address, city, zip, firestation)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		a.Address, a.City, a.Zip, a.Firestation).Scan(&a.ID)
	if db.IsUniqueViolation(err) {
		return ErrExists
	}
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

func (r *addressRepoPG) Update(ctx context.Context, a *Address) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE addresses SET city = $2, zip = $3, firestation = $4
		WHERE id = $1`,
		a.ID, a.City, a.Zip, a.Firestation)
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *addressRepoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM addresses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count addresses: %w", err)
	}
	return n, nil
}
