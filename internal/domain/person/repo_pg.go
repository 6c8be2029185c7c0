package person

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/safetynet/alerts/internal/platform/db"
)

type personRepoPG struct{ pool *pgxpool.Pool }

func NewPersonRepoPG(pool *pgxpool.Pool) Repository {
	return &personRepoPG{pool: pool}
}

func (r *personRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const personSelect = `SELECT p.id, p.first_name, p.last_name, p.address_id,
	a.address, COALESCE(a.city, ''), COALESCE(a.zip, ''), p.phone, p.email
	FROM persons p JOIN addresses a ON a.id = p.address_id`

func scanPerson(row pgx.Row) (*Person, error) {
	var p Person
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.AddressID,
		&p.Address, &p.City, &p.Zip, &p.Phone, &p.Email)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *personRepoPG) list(ctx context.Context, what, where string, args ...interface{}) ([]*Person, error) {
	rows, err := r.conn(ctx).Query(ctx, personSelect+` WHERE `+where+` ORDER BY p.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list persons by %s: %w", what, err)
	}
	defer rows.Close()

	var out []*Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *personRepoPG) GetByID(ctx context.Context, id int64) (*Person, error) {
	p, err := scanPerson(r.conn(ctx).QueryRow(ctx, personSelect+` WHERE p.id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

func (r *personRepoPG) ListByNames(ctx context.Context, firstName, lastName string) ([]*Person, error) {
	return r.list(ctx, "names", `p.first_name = $1 AND p.last_name = $2`, firstName, lastName)
}

func (r *personRepoPG) ExistsByNames(ctx context.Context, firstName, lastName string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM persons WHERE first_name = $1 AND last_name = $2)`,
		firstName, lastName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check person names: %w", err)
	}
	return exists, nil
}

func (r *personRepoPG) ListByAddress(ctx context.Context, address string) ([]*Person, error) {
	return r.list(ctx, "address", `a.address = $1`, address)
}

func (r *personRepoPG) ListByFirestation(ctx context.Context, station string) ([]*Person, error) {
	return r.list(ctx, "firestation", `a.firestation = $1`, station)
}

func (r *personRepoPG) ListByCity(ctx context.Context, city string) ([]*Person, error) {
	return r.list(ctx, "city", `a.city = $1`, city)
}

func (r *personRepoPG) Create(ctx context.Context, p *Person) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO persons (first_name, last_name, address_id, phone, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		p.FirstName, p.LastName, p.AddressID, p.Phone, p.Email).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

func (r *personRepoPG) Update(ctx context.Context, p *Person) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE persons SET first_name = $2, last_name = $3, address_id = $4, phone = $5, email = $6
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.AddressID, p.Phone, p.Email)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *personRepoPG) DeleteByID(ctx context.Context, id int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete person: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *personRepoPG) DeleteByNames(ctx context.Context, firstName, lastName string) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM persons WHERE first_name = $1 AND last_name = $2`, firstName, lastName)
	if err != nil {
		return 0, fmt.Errorf("delete persons by names: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *personRepoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM persons`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count persons: %w", err)
	}
	return n, nil
}
