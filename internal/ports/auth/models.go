package auth

// Role define los roles que maneja la plataforma.
type Role string

const (
	RoleAdopter Role = "adopter"
	RoleAdmin   Role = "admin"
)

// Claims representa la información extraída del token de sesión.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin es un helper para los handlers admin-only.
func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
