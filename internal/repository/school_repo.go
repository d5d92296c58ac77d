package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"schooldir/internal/domain"
)

// SchoolRepository define el contrato de persistencia para escuelas.
// Las mutaciones llevan el predicado de propiedad dentro del statement
// para que la comprobación y la escritura sean atómicas.
type SchoolRepository interface {
	Create(ctx context.Context, school domain.School) error
	List(ctx context.Context) ([]domain.SchoolListItem, error)
	GetByID(ctx context.Context, id string) (domain.School, error)
	UpdateOwned(ctx context.Context, school domain.School, ownerID string) (bool, error)
	DeleteOwned(ctx context.Context, id, ownerID string) (bool, error)
}

// PgSchoolRepository implementa SchoolRepository usando pgxpool.
type PgSchoolRepository struct {
	pool *pgxpool.Pool
}

func NewPgSchoolRepository(pool *pgxpool.Pool) *PgSchoolRepository {
	return &PgSchoolRepository{pool: pool}
}

func (r *PgSchoolRepository) Create(ctx context.Context, school domain.School) error {
	const query = `
		INSERT INTO schools (id, name, address, city, state, contact, email_id, image_url, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		school.ID,
		school.Name,
		school.Address,
		school.City,
		school.State,
		school.Contact,
		school.EmailID,
		school.ImageURL,
		school.OwnerID,
		school.CreatedAt,
	)
	return err
}

func (r *PgSchoolRepository) List(ctx context.Context) ([]domain.SchoolListItem, error) {
	const query = `
		SELECT s.id, s.name, s.address, s.city, s.state, s.contact, s.email_id,
		       COALESCE(s.image_url, ''), COALESCE(s.owner_id::text, ''),
		       s.created_at, s.updated_at, COALESCE(u.email, '')
		FROM schools s
		LEFT JOIN users u ON u.id = s.owner_id
		ORDER BY s.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.SchoolListItem, 0)
	for rows.Next() {
		var it domain.SchoolListItem
		if err := rows.Scan(
			&it.ID,
			&it.Name,
			&it.Address,
			&it.City,
			&it.State,
			&it.Contact,
			&it.EmailID,
			&it.ImageURL,
			&it.OwnerID,
			&it.CreatedAt,
			&it.UpdatedAt,
			&it.OwnerEmail,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PgSchoolRepository) GetByID(ctx context.Context, id string) (domain.School, error) {
	const query = `
		SELECT id, name, address, city, state, contact, email_id,
		       COALESCE(image_url, ''), COALESCE(owner_id::text, ''),
		       created_at, updated_at
		FROM schools
		WHERE id = $1
	`
	var s domain.School
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Name,
		&s.Address,
		&s.City,
		&s.State,
		&s.Contact,
		&s.EmailID,
		&s.ImageURL,
		&s.OwnerID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return domain.School{}, err
	}
	return s, nil
}

// UpdateOwned reemplaza la fila sólo si owner_id coincide. Devuelve false
// cuando ninguna fila fue afectada.
func (r *PgSchoolRepository) UpdateOwned(ctx context.Context, school domain.School, ownerID string) (bool, error) {
	const query = `
		UPDATE schools
		SET name = $3, address = $4, city = $5, state = $6, contact = $7,
		    email_id = $8, image_url = NULLIF($9, '')
		WHERE id = $1 AND owner_id = $2
	`
	tag, err := r.pool.Exec(ctx, query,
		school.ID,
		ownerID,
		school.Name,
		school.Address,
		school.City,
		school.State,
		school.Contact,
		school.EmailID,
		school.ImageURL,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgSchoolRepository) DeleteOwned(ctx context.Context, id, ownerID string) (bool, error) {
	const query = `DELETE FROM schools WHERE id = $1 AND owner_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
