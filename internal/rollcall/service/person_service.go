package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

// PersonService registers badge holders in the identity directory.
type PersonService struct {
	people   store.PersonStore
	settings Settings
}

func NewPersonService(people store.PersonStore, settings Settings) *PersonService {
	return &PersonService{people: people, settings: settings.withDefaults()}
}

// Register creates or fully replaces the person for req.TagID. Optional
// fields left blank are cleared.
func (s *PersonService) Register(ctx context.Context, req types.RegisterRequest) (types.RegisterResult, error) {
	p := types.Person{
		TagID:       strings.TrimSpace(req.TagID),
		Name:        strings.TrimSpace(req.Name),
		EmployeeID:  strings.TrimSpace(req.EmployeeID),
		Department:  optional(req.Department),
		Designation: optional(req.Designation),
		Phone:       optional(req.Phone),
		Email:       optional(req.Email),
	}
	for _, f := range []struct{ name, value string }{
		{"tag_id", p.TagID}, {"name", p.Name}, {"employee_id", p.EmployeeID},
	} {
		if f.value == "" {
			return types.RegisterResult{}, fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}

	sctx, cancel := s.settings.storeCtx(ctx)
	defer cancel()

	created, err := s.people.UpsertPerson(sctx, p)
	if err != nil {
		if !errors.Is(err, store.ErrEmployeeIDConflict) {
			err = unavailable("UpsertPerson", err)
		}
		return types.RegisterResult{}, err
	}

	msg := "Employee updated successfully"
	if created {
		msg = "Employee registered successfully"
	}
	s.settings.Logger.Info("person registered",
		zap.String("tag_id", p.TagID), zap.String("employee_id", p.EmployeeID), zap.Bool("created", created))

	return types.RegisterResult{Created: created, Message: msg, Person: p}, nil
}

// Get returns nil when the badge is not registered.
func (s *PersonService) Get(ctx context.Context, tagID string) (*types.Person, error) {
	tagID = strings.TrimSpace(tagID)
	if tagID == "" {
		return nil, fmt.Errorf("%w: tag_id", ErrMissingField)
	}
	sctx, cancel := s.settings.storeCtx(ctx)
	defer cancel()

	p, err := s.people.GetPerson(sctx, tagID)
	if err != nil {
		return nil, unavailable("GetPerson", err)
	}
	return p, nil
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
