package models

// Roles understood by the engine. Authentication itself lives outside this
// service; we only attribute and gate actions.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the authenticated actor attached to a request or CLI invocation.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
