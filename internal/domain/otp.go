package domain

import "time"

// OTPCode es un intento de verificación. Las filas nunca se borran;
// sólo la más reciente de un usuario se consulta al verificar.
type OTPCode struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CodeHash  string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
