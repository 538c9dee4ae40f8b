package favorites

import "time"

// Favorite marca una mascota guardada por un usuario.
// El par (UserID, PetID) es único.
type Favorite struct {
	ID     string
	UserID string
	PetID  string

	CreatedAt time.Time
}
