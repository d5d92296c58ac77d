package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"schooldir/internal/domain"
	"schooldir/internal/repository"
)

var (
	ErrSchoolNotFound = errors.New("school not found")
	ErrNotOwner       = errors.New("not the owner")
)

// ValidationError describe un campo de escuela rechazado antes de tocar
// la base de datos.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// SchoolService coordina reglas de negocio para escuelas.
type SchoolService struct {
	logger  *zap.Logger
	schools repository.SchoolRepository
}

func NewSchoolService(logger *zap.Logger, schools repository.SchoolRepository) *SchoolService {
	return &SchoolService{
		logger:  logger,
		schools: schools,
	}
}

type SchoolInput struct {
	Name     string
	Address  string
	City     string
	State    string
	Contact  string
	EmailID  string
	ImageURL string
}

func (in *SchoolInput) validate() error {
	required := []struct {
		field string
		value string
	}{
		{"name", in.Name},
		{"address", in.Address},
		{"city", in.City},
		{"state", in.State},
		{"contact", in.Contact},
		{"email_id", in.EmailID},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.field, Reason: "required"}
		}
	}

	contact, err := strconv.ParseInt(strings.TrimSpace(in.Contact), 10, 64)
	if err != nil || contact <= 0 {
		return &ValidationError{Field: "contact", Reason: "must be a positive number"}
	}
	if !isValidEmail(in.EmailID) {
		return &ValidationError{Field: "email_id", Reason: "malformed address"}
	}
	return nil
}

func (in *SchoolInput) toSchool(id, ownerID string) domain.School {
	return domain.School{
		ID:       id,
		Name:     strings.TrimSpace(in.Name),
		Address:  strings.TrimSpace(in.Address),
		City:     strings.TrimSpace(in.City),
		State:    strings.TrimSpace(in.State),
		Contact:  strings.TrimSpace(in.Contact),
		EmailID:  normalizeEmail(in.EmailID),
		ImageURL: strings.TrimSpace(in.ImageURL),
		OwnerID:  ownerID,
	}
}

func (s *SchoolService) Create(ctx context.Context, input SchoolInput, ownerID string) (domain.School, error) {
	if err := input.validate(); err != nil {
		return domain.School{}, err
	}

	school := input.toSchool(uuid.NewString(), ownerID)
	school.CreatedAt = time.Now().UTC()
	school.UpdatedAt = school.CreatedAt
	if err := s.schools.Create(ctx, school); err != nil {
		return domain.School{}, err
	}
	return school, nil
}

func (s *SchoolService) List(ctx context.Context) ([]domain.SchoolListItem, error) {
	return s.schools.List(ctx)
}

func (s *SchoolService) Get(ctx context.Context, id string) (domain.School, error) {
	// Un id que no es UUID no puede existir; ahorra el viaje a la base,
	// que lo rechazaría con un error de sintaxis en vez de sin filas.
	if _, err := uuid.Parse(id); err != nil {
		return domain.School{}, ErrSchoolNotFound
	}
	school, err := s.schools.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.School{}, ErrSchoolNotFound
		}
		return domain.School{}, err
	}
	return school, nil
}

// Update reemplaza la fila completa. El predicado de propiedad va dentro
// del UPDATE; un resultado vacío se desambigua con una lectura posterior.
func (s *SchoolService) Update(ctx context.Context, id string, input SchoolInput, ownerID string) (domain.School, error) {
	if err := input.validate(); err != nil {
		return domain.School{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.School{}, ErrSchoolNotFound
	}

	school := input.toSchool(id, ownerID)
	updated, err := s.schools.UpdateOwned(ctx, school, ownerID)
	if err != nil {
		return domain.School{}, err
	}
	if !updated {
		return domain.School{}, s.missOrForbidden(ctx, id)
	}
	return s.Get(ctx, id)
}

func (s *SchoolService) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrSchoolNotFound
	}
	deleted, err := s.schools.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return s.missOrForbidden(ctx, id)
	}
	return nil
}

func (s *SchoolService) missOrForbidden(ctx context.Context, id string) error {
	_, err := s.schools.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSchoolNotFound
	}
	if err != nil {
		return err
	}
	return ErrNotOwner
}

func isValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}
