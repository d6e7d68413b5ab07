package users

import "time"

// UserForm is the create/edit submission payload. Password is optional on
// edit; Roles are honored only when the actor may manage permissions.
type UserForm struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	IsActive *bool    `json:"is_active"`
	Roles    []string `json:"roles"`
}

// UserResponse is the outbound representation. The password hash is never
// part of any response.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResponse wraps a page of users.
type ListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// BulkDeleteRequest selects records for bulk deletion.
type BulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// BulkDeleteResponse reports the outcome of a bulk deletion. SkippedIDs
// lists records excluded by the ownership rule.
type BulkDeleteResponse struct {
	Deleted    int64   `json:"deleted"`
	SkippedIDs []int64 `json:"skipped_ids,omitempty"`
}

func toResponse(u User) UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsActive:  u.Active(),
		Roles:     roles,
		CreatedAt: u.CreatedAt,
	}
}
