package ports

import (
	"context"

	"github.com/aretw0/roster/pkg/domain"
)

// UserResource is the remote user collection.
// Implementations return *domain.RequestError for transport failures and
// non-2xx responses.
type UserResource interface {
	// List fetches the whole collection. It is the only call that retries.
	List(ctx context.Context) ([]domain.User, error)

	// Create submits a new record. The returned user is nil when the server
	// response does not carry a usable record.
	Create(ctx context.Context, data domain.UserFormData) (*domain.User, error)

	// Update changes name and email of the record with the given id.
	Update(ctx context.Context, id int, data domain.UserFormData) error

	// Delete removes the record with the given id.
	Delete(ctx context.Context, id int) error
}
