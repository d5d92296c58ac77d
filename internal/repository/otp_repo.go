package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"schooldir/internal/domain"
)

// OTPRepository guarda intentos de verificación en un registro append-only.
type OTPRepository interface {
	Append(ctx context.Context, code domain.OTPCode) error
	Latest(ctx context.Context, userID string) (domain.OTPCode, error)
}

// PgOTPRepository implementa OTPRepository usando pgxpool.
type PgOTPRepository struct {
	pool *pgxpool.Pool
}

func NewPgOTPRepository(pool *pgxpool.Pool) *PgOTPRepository {
	return &PgOTPRepository{pool: pool}
}

func (r *PgOTPRepository) Append(ctx context.Context, code domain.OTPCode) error {
	const query = `
		INSERT INTO otp_codes (id, user_id, code_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		code.ID,
		code.UserID,
		code.CodeHash,
		code.ExpiresAt,
		code.CreatedAt,
	)
	return err
}

// Latest devuelve el intento más reciente; los anteriores quedan inertes.
func (r *PgOTPRepository) Latest(ctx context.Context, userID string) (domain.OTPCode, error) {
	const query = `
		SELECT id, user_id, code_hash, expires_at, created_at
		FROM otp_codes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var c domain.OTPCode
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&c.ID,
		&c.UserID,
		&c.CodeHash,
		&c.ExpiresAt,
		&c.CreatedAt,
	)
	if err != nil {
		return domain.OTPCode{}, err
	}
	return c, nil
}
