package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

const uniqueViolation = "23505"

const personColumns = `tag_id, name, employee_id, department, designation, phone, email`

type PersonStore struct {
	pool  *pgxpool.Pool
	clock store.Clock
}

func NewPersonStore(db *DB, clock store.Clock) *PersonStore {
	return &PersonStore{pool: db.Pool, clock: clock}
}

func scanPerson(row pgx.Row) (types.Person, error) {
	var p types.Person
	err := row.Scan(&p.TagID, &p.Name, &p.EmployeeID, &p.Department, &p.Designation, &p.Phone, &p.Email)
	return p, err
}

func (s *PersonStore) UpsertPerson(ctx context.Context, p types.Person) (bool, error) {
	var created bool
	// xmax = 0 only for a freshly inserted row.
	err := s.pool.QueryRow(ctx, `
INSERT INTO persons(`+personColumns+`, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
ON CONFLICT (tag_id) DO UPDATE SET
  name = EXCLUDED.name,
  employee_id = EXCLUDED.employee_id,
  department = EXCLUDED.department,
  designation = EXCLUDED.designation,
  phone = EXCLUDED.phone,
  email = EXCLUDED.email,
  updated_at = EXCLUDED.updated_at
RETURNING (xmax = 0)`,
		p.TagID, p.Name, p.EmployeeID, p.Department, p.Designation, p.Phone, p.Email, s.clock.Now(),
	).Scan(&created)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "persons_employee_id_key" {
			return false, &store.ConflictError{EmployeeID: p.EmployeeID}
		}
		return false, store.Unavailable("UpsertPerson", err)
	}
	return created, nil
}

func (s *PersonStore) GetPerson(ctx context.Context, tagID string) (*types.Person, error) {
	p, err := scanPerson(s.pool.QueryRow(ctx, `SELECT `+personColumns+` FROM persons WHERE tag_id = $1`, tagID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Unavailable("GetPerson", err)
	}
	return &p, nil
}

func (s *PersonStore) GetPeople(ctx context.Context, tagIDs []string) (map[string]types.Person, error) {
	out := make(map[string]types.Person, len(tagIDs))
	if len(tagIDs) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT `+personColumns+` FROM persons WHERE tag_id = ANY($1)`, tagIDs)
	if err != nil {
		return nil, store.Unavailable("GetPeople", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, store.Unavailable("GetPeople", err)
		}
		out[p.TagID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable("GetPeople", err)
	}
	return out, nil
}

func (s *PersonStore) CountPeople(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM persons`).Scan(&n); err != nil {
		return 0, store.Unavailable("CountPeople", err)
	}
	return n, nil
}
