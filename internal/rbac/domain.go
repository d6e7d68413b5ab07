package rbac

import "time"

// Role represents a named grouping of permissions.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission represents an atomic capability grantable to roles.
type Permission struct {
	ID          int64
	Name        string
	Description string
}

// Decision is the outcome of a guard evaluation. There is deliberately no
// error variant: anything that is not an explicit grant is a denial.
type Decision int

const (
	// Denied is the zero value so an unset Decision never grants access.
	Denied Decision = iota
	// Granted means the actor holds the evaluated permission.
	Granted
)

// String renders the decision for logging.
func (d Decision) String() string {
	if d == Granted {
		return "granted"
	}
	return "denied"
}
