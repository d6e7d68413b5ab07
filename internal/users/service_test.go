package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/staffdesk/staffdesk/internal/platform/httpx"
)

type mockRepo struct {
	byID       map[int64]User
	byEmail    map[string]User
	created    []User
	updated    []User
	deleted    []int64
	bulk       [][]int64
	roleCalls  map[int64][]string
	createErr  error
	nextID     int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byID:      make(map[int64]User),
		byEmail:   make(map[string]User),
		roleCalls: make(map[int64][]string),
		nextID:    100,
	}
}

func (m *mockRepo) add(u User) {
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
}

func (m *mockRepo) List(ctx context.Context, filter ListFilter) ([]User, int, error) {
	out := make([]User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (User, error) {
	u, ok := m.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) Create(ctx context.Context, user User) (User, error) {
	if m.createErr != nil {
		return User{}, m.createErr
	}
	m.nextID++
	user.ID = m.nextID
	m.created = append(m.created, user)
	m.add(user)
	return user, nil
}

func (m *mockRepo) Update(ctx context.Context, user User) error {
	m.updated = append(m.updated, user)
	m.add(user)
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if _, ok := m.byID[id]; !ok {
		return false, nil
	}
	delete(m.byID, id)
	m.deleted = append(m.deleted, id)
	return true, nil
}

func (m *mockRepo) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	m.bulk = append(m.bulk, ids)
	return int64(len(ids)), nil
}

func (m *mockRepo) SetRoles(ctx context.Context, userID int64, roles []string) error {
	m.roleCalls[userID] = roles
	return nil
}

func TestCreateRejectsInvalidSubmissionWithoutWriting(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), UserForm{
		Name:     "",
		Email:    "not-an-email",
		Password: "short",
	}, false)

	var vErr *httpx.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.Fields, "name")
	require.Contains(t, vErr.Fields, "email")
	require.Contains(t, vErr.Fields, "password")
	require.Empty(t, repo.created)
}

func TestCreateRejectsDuplicateEmailWithoutWriting(t *testing.T) {
	repo := newMockRepo()
	repo.add(User{ID: 1, Name: "Existing", Email: "taken@example.com"})
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), UserForm{
		Name:     "New Person",
		Email:    "Taken@Example.com",
		Password: "longenough",
	}, false)

	var vErr *httpx.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.Fields, "email")
	require.Empty(t, repo.created)
}

func TestCreateHashesPasswordAndDefaultsActive(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), UserForm{
		Name:     "Jamie",
		Email:    "jamie@example.com",
		Password: "longenough",
	}, false)
	require.NoError(t, err)

	require.NotEqual(t, "longenough", created.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("longenough")))
	require.NotNil(t, created.IsActive)
	require.True(t, *created.IsActive)
}

func TestCreateIgnoresRolesWithoutManagePermission(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), UserForm{
		Name:     "Jamie",
		Email:    "jamie@example.com",
		Password: "longenough",
		Roles:    []string{"admin"},
	}, false)
	require.NoError(t, err)

	require.NotContains(t, repo.roleCalls, created.ID)
	require.Empty(t, created.Roles)
}

func TestCreateAppliesRolesWithManagePermission(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), UserForm{
		Name:     "Jamie",
		Email:    "jamie@example.com",
		Password: "longenough",
		Roles:    []string{"admin"},
	}, true)
	require.NoError(t, err)

	require.Equal(t, []string{"admin"}, repo.roleCalls[created.ID])
}

func TestCreateMapsConcurrentDuplicateToValidationError(t *testing.T) {
	repo := newMockRepo()
	repo.createErr = ErrDuplicateEmail
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), UserForm{
		Name:     "Jamie",
		Email:    "jamie@example.com",
		Password: "longenough",
	}, false)

	var vErr *httpx.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.Fields, "email")
}

func TestUpdateBlankPasswordKeepsStoredHash(t *testing.T) {
	repo := newMockRepo()
	repo.add(User{ID: 7, Name: "Jamie", Email: "jamie@example.com", PasswordHash: "$stored$hash"})
	svc := NewService(repo)

	updated, err := svc.Update(context.Background(), 7, UserForm{
		Name:  "Jamie Renamed",
		Email: "jamie@example.com",
	}, false)
	require.NoError(t, err)

	require.Equal(t, "$stored$hash", updated.PasswordHash)
	require.Equal(t, "Jamie Renamed", updated.Name)
}

func TestUpdateNewPasswordReplacesHash(t *testing.T) {
	repo := newMockRepo()
	repo.add(User{ID: 7, Name: "Jamie", Email: "jamie@example.com", PasswordHash: "$stored$hash"})
	svc := NewService(repo)

	updated, err := svc.Update(context.Background(), 7, UserForm{
		Name:     "Jamie",
		Email:    "jamie@example.com",
		Password: "brandnewpass",
	}, false)
	require.NoError(t, err)

	require.NotEqual(t, "$stored$hash", updated.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("brandnewpass")))
}

func TestUpdateRejectsShortPassword(t *testing.T) {
	repo := newMockRepo()
	repo.add(User{ID: 7, Name: "Jamie", Email: "jamie@example.com"})
	svc := NewService(repo)

	_, err := svc.Update(context.Background(), 7, UserForm{
		Name:     "Jamie",
		Email:    "jamie@example.com",
		Password: "short",
	}, false)

	var vErr *httpx.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.Fields, "password")
}

func TestUpdateUniquenessIgnoresOwnRecord(t *testing.T) {
	repo := newMockRepo()
	repo.add(User{ID: 7, Name: "Jamie", Email: "jamie@example.com"})
	svc := NewService(repo)

	_, err := svc.Update(context.Background(), 7, UserForm{
		Name:  "Jamie",
		Email: "jamie@example.com",
	}, false)

	require.NoError(t, err)
}

func TestUpdateRejectsEmailTakenByOther(t *testing.T) {
	repo := newMockRepo()
	repo.add(User{ID: 7, Name: "Jamie", Email: "jamie@example.com"})
	repo.add(User{ID: 8, Name: "Other", Email: "other@example.com"})
	svc := NewService(repo)

	_, err := svc.Update(context.Background(), 7, UserForm{
		Name:  "Jamie",
		Email: "other@example.com",
	}, false)

	var vErr *httpx.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.Fields, "email")
}

func TestUpdateMissingUserReturnsNotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Update(context.Background(), 99, UserForm{Name: "X", Email: "x@example.com"}, false)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRejectsOwnAccount(t *testing.T) {
	repo := newMockRepo()
	repo.add(User{ID: 5, Email: "self@example.com"})
	svc := NewService(repo)

	err := svc.Delete(context.Background(), 5, 5)
	require.ErrorIs(t, err, ErrSelfDelete)
	require.Empty(t, repo.deleted)
}

func TestDeleteRemovesOtherAccount(t *testing.T) {
	repo := newMockRepo()
	repo.add(User{ID: 6, Email: "target@example.com"})
	svc := NewService(repo)

	require.NoError(t, svc.Delete(context.Background(), 5, 6))
	require.Equal(t, []int64{6}, repo.deleted)
}

func TestDeleteMissingUserReturnsNotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	err := svc.Delete(context.Background(), 5, 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBulkDeleteSkipsActorRecord(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	resp, err := svc.BulkDelete(context.Background(), 5, []int64{4, 5, 6})
	require.NoError(t, err)

	require.Equal(t, int64(2), resp.Deleted)
	require.Equal(t, []int64{5}, resp.SkippedIDs)
	require.Equal(t, [][]int64{{4, 6}}, repo.bulk)
}

func TestBulkDeleteOnlyOwnRecordDeletesNothing(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	resp, err := svc.BulkDelete(context.Background(), 5, []int64{5})
	require.NoError(t, err)

	require.Zero(t, resp.Deleted)
	require.Equal(t, []int64{5}, resp.SkippedIDs)
	require.Empty(t, repo.bulk)
}

func TestListSanitizesPagination(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	_, _, err := svc.List(context.Background(), ListFilter{Page: -1, Limit: 0, SortBy: "password_hash", SortDir: "sideways"})
	require.NoError(t, err)
}

func TestGetRejectsNonPositiveID(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Get(context.Background(), 0)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), -3)
	require.ErrorIs(t, err, ErrNotFound)
}
