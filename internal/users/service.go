package users

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/staffdesk/staffdesk/internal/platform/httpx"
)

// Sentinel errors surfaced by the service.
var (
	ErrNotFound       = errors.New("users: not found")
	ErrSelfDelete     = errors.New("users: cannot delete own account")
	ErrDuplicateEmail = errors.New("users: email already taken")
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter) ([]User, int, error)
	Get(ctx context.Context, id int64) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) error
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
	SetRoles(ctx context.Context, userID int64, roles []string) error
}

// Service handles user management business rules.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// List returns a filtered page of users.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]User, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 25
	}
	filter.SortBy = SortColumn(filter.SortBy)
	if filter.SortDir != "desc" {
		filter.SortDir = "asc"
	}
	return s.repo.List(ctx, filter)
}

// Get fetches a single user with roles and effective permissions.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Create validates the submission, hashes the password and stores the user.
// Roles are applied only when applyRoles is set (actor holds
// manage_permissions); otherwise submitted role values are ignored.
func (s *Service) Create(ctx context.Context, form UserForm, applyRoles bool) (User, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = normalizeEmail(form.Email)

	fieldErrs := s.validateForm(form, modeCreate)
	if len(fieldErrs) == 0 {
		if _, err := s.repo.FindByEmail(ctx, form.Email); err == nil {
			fieldErrs["email"] = "email is already in use"
		} else if !errors.Is(err, ErrNotFound) {
			return User{}, err
		}
	}
	if len(fieldErrs) > 0 {
		return User{}, httpx.NewValidationError(fieldErrs)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	active := true
	if form.IsActive != nil {
		active = *form.IsActive
	}
	created, err := s.repo.Create(ctx, User{
		Name:         form.Name,
		Email:        form.Email,
		PasswordHash: string(hash),
		IsActive:     &active,
	})
	if err != nil {
		// Unique constraint backstop for concurrent submissions.
		if errors.Is(err, ErrDuplicateEmail) {
			return User{}, httpx.NewValidationError(map[string]string{"email": "email is already in use"})
		}
		return User{}, err
	}

	if applyRoles && len(form.Roles) > 0 {
		if err := s.repo.SetRoles(ctx, created.ID, form.Roles); err != nil {
			return User{}, err
		}
		created.Roles = form.Roles
	}
	return created, nil
}

// Update applies a partial edit. A blank password leaves the stored hash
// untouched; a non-blank one is re-hashed. Email uniqueness ignores the
// record being edited.
func (s *Service) Update(ctx context.Context, id int64, form UserForm, applyRoles bool) (User, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}

	form.Name = strings.TrimSpace(form.Name)
	form.Email = normalizeEmail(form.Email)

	fieldErrs := s.validateForm(form, modeEdit)
	if len(fieldErrs) == 0 {
		if other, err := s.repo.FindByEmail(ctx, form.Email); err == nil {
			if other.ID != id {
				fieldErrs["email"] = "email is already in use"
			}
		} else if !errors.Is(err, ErrNotFound) {
			return User{}, err
		}
	}
	if len(fieldErrs) > 0 {
		return User{}, httpx.NewValidationError(fieldErrs)
	}

	current.Name = form.Name
	current.Email = form.Email
	if form.IsActive != nil {
		current.IsActive = form.IsActive
	}
	if form.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		current.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, current); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return User{}, httpx.NewValidationError(map[string]string{"email": "email is already in use"})
		}
		return User{}, err
	}

	if applyRoles {
		if err := s.repo.SetRoles(ctx, id, form.Roles); err != nil {
			return User{}, err
		}
		current.Roles = form.Roles
	}
	return current, nil
}

// Delete removes a user. Deleting your own account is rejected regardless
// of permissions.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if id == actorID {
		return ErrSelfDelete
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// BulkDelete removes the selected users, excluding the acting user's own
// record. Skipped IDs are reported back.
func (s *Service) BulkDelete(ctx context.Context, actorID int64, ids []int64) (BulkDeleteResponse, error) {
	targets := make([]int64, 0, len(ids))
	var skipped []int64
	for _, id := range ids {
		if id == actorID {
			skipped = append(skipped, id)
			continue
		}
		targets = append(targets, id)
	}
	var deleted int64
	if len(targets) > 0 {
		var err error
		deleted, err = s.repo.DeleteMany(ctx, targets)
		if err != nil {
			return BulkDeleteResponse{}, err
		}
	}
	return BulkDeleteResponse{Deleted: deleted, SkippedIDs: skipped}, nil
}

type formMode int

const (
	modeCreate formMode = iota
	modeEdit
)

// validateForm runs the schema's co-located rules against a submission and
// returns per-field messages.
func (s *Service) validateForm(form UserForm, mode formMode) map[string]string {
	fieldErrs := make(map[string]string)
	for _, field := range FormFields() {
		rules := field.CreateRules
		if mode == modeEdit {
			rules = field.EditRules
		}
		if rules == "" {
			continue
		}
		var value string
		switch field.Key {
		case "name":
			value = form.Name
		case "email":
			value = form.Email
		case "password":
			value = form.Password
		default:
			continue
		}
		if err := s.validate.Var(value, rules); err != nil {
			fieldErrs[field.Key] = fieldMessage(field, err)
		}
	}
	return fieldErrs
}

func fieldMessage(field Field, err error) string {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		switch vErrs[0].Tag() {
		case "required":
			return field.Label + " is required"
		case "email":
			return field.Label + " must be a valid email address"
		case "min":
			return field.Label + " must be at least " + vErrs[0].Param() + " characters"
		case "max":
			return field.Label + " must be at most " + vErrs[0].Param() + " characters"
		}
	}
	return field.Label + " is invalid"
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
