package runtime_test

import (
	"context"
	"sync"

	"github.com/aretw0/roster/pkg/domain"
)

// fakeResource is an in-process ports.UserResource that records calls.
type fakeResource struct {
	mu sync.Mutex

	list      []domain.User
	listErr   error
	created   *domain.User
	createErr error
	updateErr error
	deleteErr error

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int

	lastData domain.UserFormData
	lastID   int
}

func (f *fakeResource) List(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeResource) Create(ctx context.Context, data domain.UserFormData) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.lastData = data
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeResource) Update(ctx context.Context, id int, data domain.UserFormData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	f.lastID, f.lastData = id, data
	return f.updateErr
}

func (f *fakeResource) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	f.lastID = id
	return f.deleteErr
}
