package memory

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/aretw0/roster/pkg/domain"
)

var errNoSuchUser = errors.New("no such user")

// Resource implements ports.UserResource over an in-memory collection.
// It backs the mock API and serves as a test double for the workflows.
// Safe for concurrent use.
type Resource struct {
	mu     sync.RWMutex
	users  []domain.User
	nextID int
}

// NewResource creates a collection holding a copy of seed.
func NewResource(seed ...domain.User) (*Resource, error) {
	users, err := domain.CloneUsers(seed)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return &Resource{users: users, nextID: domain.NextID(users)}, nil
}

// List returns a copy of the collection.
func (r *Resource) List(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.RequestError{Op: domain.OpList, Err: err}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	users, err := domain.CloneUsers(r.users)
	if err != nil {
		return nil, &domain.RequestError{Op: domain.OpList, StatusCode: http.StatusInternalServerError, Err: err}
	}
	return users, nil
}

// Create appends a record with the next free id.
func (r *Resource) Create(ctx context.Context, data domain.UserFormData) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.RequestError{Op: domain.OpCreate, Err: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	user := domain.User{ID: r.nextID, Name: data.Name, Email: data.Email}
	r.nextID++
	r.users = append(r.users, user)
	return &user, nil
}

// Update merges name and email into the record with the given id.
func (r *Resource) Update(ctx context.Context, id int, data domain.UserFormData) error {
	if err := ctx.Err(); err != nil {
		return &domain.RequestError{Op: domain.OpUpdate, UserID: id, Err: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := domain.IndexOf(r.users, id)
	if i < 0 {
		return &domain.RequestError{Op: domain.OpUpdate, UserID: id, StatusCode: http.StatusNotFound, Err: errNoSuchUser}
	}
	r.users[i].Name = data.Name
	r.users[i].Email = data.Email
	return nil
}

// Delete removes the record with the given id.
func (r *Resource) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return &domain.RequestError{Op: domain.OpDelete, UserID: id, Err: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := domain.IndexOf(r.users, id)
	if i < 0 {
		return &domain.RequestError{Op: domain.OpDelete, UserID: id, StatusCode: http.StatusNotFound, Err: errNoSuchUser}
	}
	r.users = append(r.users[:i], r.users[i+1:]...)
	return nil
}

// Get returns the record with the given id.
func (r *Resource) Get(id int) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := domain.IndexOf(r.users, id)
	if i < 0 {
		return domain.User{}, false
	}
	return r.users[i], true
}
