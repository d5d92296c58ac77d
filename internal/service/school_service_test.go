package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"schooldir/internal/domain"
)

type mockSchoolRepo struct {
	schools map[string]domain.School
	owners  map[string]string
}

func newMockSchoolRepo() *mockSchoolRepo {
	return &mockSchoolRepo{
		schools: make(map[string]domain.School),
		owners:  make(map[string]string),
	}
}

func (m *mockSchoolRepo) Create(_ context.Context, school domain.School) error {
	m.schools[school.ID] = school
	m.owners[school.ID] = school.OwnerID
	return nil
}

func (m *mockSchoolRepo) List(_ context.Context) ([]domain.SchoolListItem, error) {
	items := make([]domain.SchoolListItem, 0, len(m.schools))
	for _, s := range m.schools {
		items = append(items, domain.SchoolListItem{School: s, OwnerEmail: s.OwnerID + "@owner"})
	}
	return items, nil
}

func (m *mockSchoolRepo) GetByID(_ context.Context, id string) (domain.School, error) {
	school, ok := m.schools[id]
	if !ok {
		return domain.School{}, pgx.ErrNoRows
	}
	return school, nil
}

func (m *mockSchoolRepo) UpdateOwned(_ context.Context, school domain.School, ownerID string) (bool, error) {
	existing, ok := m.schools[school.ID]
	if !ok || m.owners[school.ID] != ownerID {
		return false, nil
	}
	school.OwnerID = existing.OwnerID
	school.CreatedAt = existing.CreatedAt
	m.schools[school.ID] = school
	return true, nil
}

func (m *mockSchoolRepo) DeleteOwned(_ context.Context, id, ownerID string) (bool, error) {
	if _, ok := m.schools[id]; !ok || m.owners[id] != ownerID {
		return false, nil
	}
	delete(m.schools, id)
	delete(m.owners, id)
	return true, nil
}

// uuidSyntaxSchoolRepo simula el rechazo de Postgres cuando un id que no
// es UUID llega como parámetro de la columna id (SQLSTATE 22P02).
type uuidSyntaxSchoolRepo struct{}

var errUUIDSyntax = errors.New("invalid input syntax for type uuid (SQLSTATE 22P02)")

func (uuidSyntaxSchoolRepo) Create(_ context.Context, _ domain.School) error { return nil }

func (uuidSyntaxSchoolRepo) List(_ context.Context) ([]domain.SchoolListItem, error) {
	return nil, nil
}

func (uuidSyntaxSchoolRepo) GetByID(_ context.Context, _ string) (domain.School, error) {
	return domain.School{}, errUUIDSyntax
}

func (uuidSyntaxSchoolRepo) UpdateOwned(_ context.Context, _ domain.School, _ string) (bool, error) {
	return false, errUUIDSyntax
}

func (uuidSyntaxSchoolRepo) DeleteOwned(_ context.Context, _, _ string) (bool, error) {
	return false, errUUIDSyntax
}

func validInput() SchoolInput {
	return SchoolInput{
		Name:    "X",
		Address: "1 Rd",
		City:    "C",
		State:   "S",
		Contact: "5551234",
		EmailID: "x@x.com",
	}
}

func TestSchoolServiceCreate(t *testing.T) {
	repo := newMockSchoolRepo()
	svc := NewSchoolService(zap.NewNop(), repo)

	school, err := svc.Create(context.Background(), validInput(), "owner-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if school.ID == "" || school.OwnerID != "owner-1" {
		t.Fatalf("unexpected school: %+v", school)
	}

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Name != "X" {
		t.Fatalf("expected the created school in the list, got %+v", items)
	}
}

func TestSchoolServiceCreate_Validation(t *testing.T) {
	repo := newMockSchoolRepo()
	svc := NewSchoolService(zap.NewNop(), repo)

	cases := []struct {
		name   string
		mutate func(*SchoolInput)
	}{
		{"missing name", func(in *SchoolInput) { in.Name = "  " }},
		{"missing address", func(in *SchoolInput) { in.Address = "" }},
		{"missing city", func(in *SchoolInput) { in.City = "" }},
		{"missing state", func(in *SchoolInput) { in.State = "" }},
		{"non-numeric contact", func(in *SchoolInput) { in.Contact = "call-me" }},
		{"negative contact", func(in *SchoolInput) { in.Contact = "-5" }},
		{"zero contact", func(in *SchoolInput) { in.Contact = "0" }},
		{"bad email", func(in *SchoolInput) { in.EmailID = "not-an-email" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)

			_, err := svc.Create(context.Background(), input, "owner-1")
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(repo.schools) != 0 {
				t.Fatalf("validation must reject before any write")
			}
		})
	}
}

func TestSchoolServiceGet_NotFound(t *testing.T) {
	svc := NewSchoolService(zap.NewNop(), newMockSchoolRepo())
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrSchoolNotFound) {
		t.Fatalf("expected ErrSchoolNotFound, got %v", err)
	}
}

// Un id malformado debe resolverse como inexistente sin llegar al store:
// contra Postgres real la columna UUID lo rechazaría con un error de
// sintaxis que no es ErrNoRows y terminaría en 500.
func TestSchoolService_MalformedID(t *testing.T) {
	svc := NewSchoolService(zap.NewNop(), uuidSyntaxSchoolRepo{})

	if _, err := svc.Get(context.Background(), "does-not-exist"); !errors.Is(err, ErrSchoolNotFound) {
		t.Fatalf("get: expected ErrSchoolNotFound, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "does-not-exist", validInput(), "owner-1"); !errors.Is(err, ErrSchoolNotFound) {
		t.Fatalf("update: expected ErrSchoolNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "does-not-exist", "owner-1"); !errors.Is(err, ErrSchoolNotFound) {
		t.Fatalf("delete: expected ErrSchoolNotFound, got %v", err)
	}
}

func TestSchoolServiceUpdate_Ownership(t *testing.T) {
	repo := newMockSchoolRepo()
	svc := NewSchoolService(zap.NewNop(), repo)

	school, err := svc.Create(context.Background(), validInput(), "owner-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	input := validInput()
	input.Name = "Renamed"

	if _, err := svc.Update(context.Background(), school.ID, input, "intruder"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "missing", input, "owner-1"); !errors.Is(err, ErrSchoolNotFound) {
		t.Fatalf("expected ErrSchoolNotFound, got %v", err)
	}

	updated, err := svc.Update(context.Background(), school.ID, input, "owner-1")
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Fatalf("expected the replaced row, got %+v", updated)
	}
}

func TestSchoolServiceDelete(t *testing.T) {
	repo := newMockSchoolRepo()
	svc := NewSchoolService(zap.NewNop(), repo)

	school, err := svc.Create(context.Background(), validInput(), "owner-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), school.ID, "intruder"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	if err := svc.Delete(context.Background(), school.ID, "owner-1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), school.ID); !errors.Is(err, ErrSchoolNotFound) {
		t.Fatalf("deleted school must be gone, got %v", err)
	}
	if err := svc.Delete(context.Background(), school.ID, "owner-1"); !errors.Is(err, ErrSchoolNotFound) {
		t.Fatalf("expected ErrSchoolNotFound on second delete, got %v", err)
	}
}
