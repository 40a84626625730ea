package models

type UserRole string

const (
	RoleViewer UserRole = "viewer"
	RoleAdmin  UserRole = "admin"
)

var roleTier = map[UserRole]int{
	RoleViewer: 1,
	RoleAdmin:  2,
}

type User struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
	IsActive     bool     `json:"is_active"`
}

func IsValidRole(role UserRole) bool {
	_, ok := roleTier[role]
	return ok
}

// HasAtLeast reports whether role meets or exceeds the required tier.
func HasAtLeast(role, required UserRole) bool {
	return roleTier[role] >= roleTier[required]
}
