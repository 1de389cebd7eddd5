package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/roster/pkg/domain"
	"github.com/aretw0/roster/pkg/ports"
)

// Workflows builds the asynchronous actions around a remote user collection.
type Workflows struct {
	resource ports.UserResource
	now      func() time.Time
}

// NewWorkflows binds the workflows to resource. now stamps list updates and
// request failures; nil means time.Now.
func NewWorkflows(resource ports.UserResource, now func() time.Time) *Workflows {
	if now == nil {
		now = time.Now
	}
	return &Workflows{resource: resource, now: now}
}

// FetchUsers loads the collection into the list.
//
//	fetch-pending -> GET -> update + fetch-ok
//	                    \-> fetch-error
//
// Retrying is left to the resource.
func (w *Workflows) FetchUsers() Thunk {
	return func(ctx context.Context, dispatch DispatchFunc, _ func() *domain.State) error {
		dispatch(ctx, domain.FetchPending())

		list, err := w.resource.List(ctx)
		if err != nil {
			dispatch(ctx, domain.FetchFailed())
			return asRequestError(err, domain.OpList, 0)
		}

		dispatch(ctx, domain.UpdateUsers(list, w.now()))
		dispatch(ctx, domain.FetchOK())
		return nil
	}
}

// SubmitAddUser validates the add form and, when valid, creates the user
// remotely and prepends it locally. The form is reset on success.
func (w *Workflows) SubmitAddUser() Thunk {
	return func(ctx context.Context, dispatch DispatchFunc, _ func() *domain.State) error {
		state := dispatch(ctx, domain.ValidateForm(domain.FormAddUser))
		form := state.Forms.AddUser
		if !form.Validation.IsValid {
			return domain.ErrInvalidForm
		}

		created, err := w.resource.Create(ctx, form.Data)
		if err != nil {
			return w.fail(ctx, dispatch, asRequestError(err, domain.OpCreate, 0))
		}

		var serverID int
		if created != nil {
			serverID = created.ID
		}
		dispatch(ctx, domain.CreateUser(form.Data, serverID))
		dispatch(ctx, domain.ResetForm(domain.FormAddUser))
		return nil
	}
}

// SubmitEditUser validates the edit form and, when valid, updates user id
// remotely and merges the change locally. The form is reset on success.
// When id is not in the local list nothing is sent, the form stays open and
// ErrUserNotFound is returned.
func (w *Workflows) SubmitEditUser(id int) Thunk {
	return func(ctx context.Context, dispatch DispatchFunc, getState func() *domain.State) error {
		state := dispatch(ctx, domain.ValidateForm(domain.FormEditUser))
		form := state.Forms.EditUser
		if !form.Validation.IsValid {
			return domain.ErrInvalidForm
		}

		if _, ok := getState().User(id); !ok {
			return fmt.Errorf("%w: %d", domain.ErrUserNotFound, id)
		}

		if err := w.resource.Update(ctx, id, form.Data); err != nil {
			return w.fail(ctx, dispatch, asRequestError(err, domain.OpUpdate, id))
		}
		dispatch(ctx, domain.EditUser(id, form.Data))
		dispatch(ctx, domain.ResetForm(domain.FormEditUser))
		return nil
	}
}

// SubmitDeleteUser deletes user id remotely, then locally.
func (w *Workflows) SubmitDeleteUser(id int) Thunk {
	return func(ctx context.Context, dispatch DispatchFunc, _ func() *domain.State) error {
		if err := w.resource.Delete(ctx, id); err != nil {
			return w.fail(ctx, dispatch, asRequestError(err, domain.OpDelete, id))
		}
		dispatch(ctx, domain.DeleteUser(id))
		return nil
	}
}

// fail records a mutation failure in state and returns it.
func (w *Workflows) fail(ctx context.Context, dispatch DispatchFunc, err *domain.RequestError) error {
	dispatch(ctx, domain.RequestFailed(domain.RequestFailure{
		Op:      err.Op,
		UserID:  err.UserID,
		Message: err.Error(),
		At:      w.now(),
	}))
	return err
}

// asRequestError keeps a *domain.RequestError from the resource as is and
// wraps anything else.
func asRequestError(err error, op string, id int) *domain.RequestError {
	var reqErr *domain.RequestError
	if errors.As(err, &reqErr) {
		return reqErr
	}
	return &domain.RequestError{Op: op, UserID: id, Err: err}
}
