package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DevPerson is a sample registration inserted by SeedDev.
type DevPerson struct {
	TagID       string
	Name        string
	EmployeeID  string
	Department  string
	Designation string
}

type SeedDevOptions struct {
	People []DevPerson
}

// DefaultDevPeople are used when SeedDevOptions.People is empty.
var DefaultDevPeople = []DevPerson{
	{TagID: "A1B2C3D4", Name: "Dev Admin", EmployeeID: "EMP-0001", Department: "Engineering", Designation: "Lead"},
	{TagID: "0E5F6A7B", Name: "Dev Operator", EmployeeID: "EMP-0002", Department: "Operations", Designation: "Technician"},
}

// SeedDev inserts sample persons so a fresh dev database has something to
// report on. Existing badges are left untouched.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	people := opt.People
	if len(people) == 0 {
		people = DefaultDevPeople
	}
	now := time.Now().UTC().UnixMilli()

	for _, p := range people {
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO persons(
  tag_id, name, employee_id, department, designation,
  created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?);
`, p.TagID, p.Name, p.EmployeeID, nullIfEmpty(p.Department), nullIfEmpty(p.Designation), now, now); err != nil {
			return fmt.Errorf("seed person %s: %w", p.TagID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
