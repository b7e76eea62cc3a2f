package core

// User roles. Analysts can look up IOCs and manage tickets; admins
// additionally manage users and read the audit trail.
const (
	RoleAdmin   = "admin"
	RoleAnalyst = "analyst"
)

// AdminUserID is the reserved id of the static admin account configured at
// startup. It never appears in the user store file.
const AdminUserID = "0"

// MinUsernameLength and MinPasswordLength gate user creation and password
// changes.
const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

// User is an authenticated dashboard user.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
