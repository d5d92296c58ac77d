package domain

import "time"

type School struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Contact   string    `json:"contact"`
	EmailID   string    `json:"email_id"`
	ImageURL  string    `json:"image_url,omitempty"`
	OwnerID   string    `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SchoolListItem es una fila del listado público, con el email del dueño.
type SchoolListItem struct {
	School
	OwnerEmail string `json:"owner_email,omitempty"`
}
