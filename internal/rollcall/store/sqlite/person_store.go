package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	dbpkg "github.com/BrandonDHaskell/rollcall/internal/db"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

type PersonStore struct {
	db     *sqlx.DB
	writer *dbpkg.Worker
	clock  store.Clock
}

func NewPersonStore(db *sql.DB, writer *dbpkg.Worker, clock store.Clock) *PersonStore {
	return &PersonStore{db: sqlx.NewDb(db, "sqlite"), writer: writer, clock: clock}
}

func (s *PersonStore) UpsertPerson(ctx context.Context, p types.Person) (bool, error) {
	now := s.clock.Now().UnixMilli()
	var created bool

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var owner string
		err := tx.QueryRowContext(ctx, `
SELECT tag_id FROM persons WHERE employee_id = ? AND tag_id <> ?;
`, p.EmployeeID, p.TagID).Scan(&owner)
		switch {
		case err == nil:
			return &store.ConflictError{EmployeeID: p.EmployeeID}
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("check employee_id: %w", err)
		}

		var one int
		err = tx.QueryRowContext(ctx, `SELECT 1 FROM persons WHERE tag_id = ?;`, p.TagID).Scan(&one)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			created = true
		case err != nil:
			return fmt.Errorf("check tag_id: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO persons(
  tag_id, name, employee_id, department, designation, phone, email,
  created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(tag_id) DO UPDATE SET
  name = excluded.name,
  employee_id = excluded.employee_id,
  department = excluded.department,
  designation = excluded.designation,
  phone = excluded.phone,
  email = excluded.email,
  updated_at_ms = excluded.updated_at_ms;
`,
			p.TagID, p.Name, p.EmployeeID,
			nullable(p.Department), nullable(p.Designation), nullable(p.Phone), nullable(p.Email),
			now, now,
		); err != nil {
			if isEmployeeIDUnique(err) {
				return &store.ConflictError{EmployeeID: p.EmployeeID}
			}
			return fmt.Errorf("upsert: %w", err)
		}
		return nil
	})
	if errors.Is(err, store.ErrEmployeeIDConflict) {
		return false, err
	}
	if err != nil {
		return false, store.Unavailable("UpsertPerson", err)
	}
	return created, nil
}

func (s *PersonStore) GetPerson(ctx context.Context, tagID string) (*types.Person, error) {
	var r personRow
	err := s.db.GetContext(ctx, &r, `SELECT `+personColumns+` FROM persons WHERE tag_id = ?;`, tagID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Unavailable("GetPerson", err)
	}
	p := r.person()
	return &p, nil
}

func (s *PersonStore) GetPeople(ctx context.Context, tagIDs []string) (map[string]types.Person, error) {
	out := make(map[string]types.Person, len(tagIDs))
	if len(tagIDs) == 0 {
		return out, nil
	}

	q, args, err := sqlx.In(`SELECT `+personColumns+` FROM persons WHERE tag_id IN (?);`, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("GetPeople build query: %w", err)
	}
	var rows []personRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, store.Unavailable("GetPeople", err)
	}
	for _, r := range rows {
		out[r.TagID] = r.person()
	}
	return out, nil
}

func (s *PersonStore) CountPeople(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM persons;`); err != nil {
		return 0, store.Unavailable("CountPeople", err)
	}
	return n, nil
}

func isEmployeeIDUnique(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, "persons.employee_id")
}
