package auth

import "time"

// Account represents a user able to sign in to the panel.
type Account struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	IsActive     *bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanAccessPanel mirrors the entity rule: only an explicitly deactivated
// account is locked out.
func (a *Account) CanAccessPanel() bool {
	return a.IsActive == nil || *a.IsActive
}
