package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/roster/pkg/domain"
	"github.com/aretw0/roster/pkg/ports"
)

// RunUserResourceContract is a reusable test suite that verifies if an adapter
// complies with ports.UserResource. The resource must start with exactly the
// seed users and accept writes.
func RunUserResourceContract(t *testing.T, resource ports.UserResource, seed []domain.User) {
	t.Helper()
	ctx := context.Background()

	// 1. List returns the seed
	t.Run("List_Seed", func(t *testing.T) {
		users, err := resource.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing users: %v", err)
		}
		if len(users) != len(seed) {
			t.Fatalf("expected %d users, got %d", len(seed), len(users))
		}
		for i := range seed {
			if users[i].ID != seed[i].ID || users[i].Name != seed[i].Name {
				t.Errorf("user %d mismatch. got %+v, want %+v", i, users[i], seed[i])
			}
		}
	})

	// 2. Create then list
	var created *domain.User
	t.Run("Create", func(t *testing.T) {
		var err error
		created, err = resource.Create(ctx, domain.UserFormData{Name: "Contract", Email: "contract@example.com"})
		if err != nil {
			t.Fatalf("unexpected error creating user: %v", err)
		}
		if created == nil || created.ID == 0 {
			t.Fatalf("expected a server-assigned id, got %+v", created)
		}
		users, err := resource.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing users: %v", err)
		}
		if domain.IndexOf(users, created.ID) < 0 {
			t.Errorf("created user %d not listed", created.ID)
		}
	})

	// 3. Update
	t.Run("Update", func(t *testing.T) {
		if created == nil {
			t.Skip("create failed")
		}
		if err := resource.Update(ctx, created.ID, domain.UserFormData{Name: "Renamed", Email: "renamed@example.com"}); err != nil {
			t.Fatalf("unexpected error updating user: %v", err)
		}
		users, _ := resource.List(ctx)
		i := domain.IndexOf(users, created.ID)
		if i < 0 || users[i].Name != "Renamed" {
			t.Errorf("update not visible, got %+v", users)
		}
	})

	// 4. Update (NotFound)
	t.Run("Update_NotFound", func(t *testing.T) {
		err := resource.Update(ctx, 987654, domain.UserFormData{Name: "X", Email: "x@example.com"})
		if !errors.Is(err, domain.ErrRequestFailed) {
			t.Errorf("expected ErrRequestFailed, got %v", err)
		}
	})

	// 5. Delete
	t.Run("Delete", func(t *testing.T) {
		if created == nil {
			t.Skip("create failed")
		}
		if err := resource.Delete(ctx, created.ID); err != nil {
			t.Fatalf("unexpected error deleting user: %v", err)
		}
		users, _ := resource.List(ctx)
		if domain.IndexOf(users, created.ID) >= 0 {
			t.Errorf("deleted user %d still listed", created.ID)
		}
	})
}
