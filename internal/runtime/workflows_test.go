package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/roster/internal/runtime"
	"github.com/aretw0/roster/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

func newWorkflowStore(t *testing.T, resource *fakeResource, initial *domain.State) (*runtime.Store, *runtime.Workflows, *[]domain.ActionType) {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	store := runtime.NewStore(runtime.WithInitialState(initial), runtime.WithClock(clock))

	var trace []domain.ActionType
	store.Subscribe(func(c domain.Change) {
		trace = append(trace, c.Action.Type)
	})
	return store, runtime.NewWorkflows(resource, clock), &trace
}

func TestFetchUsers_Success(t *testing.T) {
	resource := &fakeResource{list: threeUsers()}
	store, wf, trace := newWorkflowStore(t, resource, nil)

	err := store.Run(context.Background(), domain.WorkflowFetchUsers, 0, wf.FetchUsers())

	require.NoError(t, err)
	state := store.State()
	assert.Equal(t, domain.StatusOK, state.FetchStatus)
	assert.Equal(t, threeUsers(), state.List)
	require.NotNil(t, state.UpdateTime)
	assert.Equal(t, fixedNow, *state.UpdateTime)
	assert.Equal(t, []domain.ActionType{domain.ActionFetchPending, domain.ActionUpdate, domain.ActionFetchOK}, *trace)
}

func TestFetchUsers_Failure(t *testing.T) {
	resource := &fakeResource{listErr: &domain.RequestError{Op: domain.OpList, Err: errors.New("connection refused")}}
	store, wf, trace := newWorkflowStore(t, resource, nil)

	err := store.Run(context.Background(), domain.WorkflowFetchUsers, 0, wf.FetchUsers())

	assert.ErrorIs(t, err, domain.ErrRequestFailed)
	state := store.State()
	assert.Equal(t, domain.StatusError, state.FetchStatus)
	assert.False(t, state.HasList())
	assert.Equal(t, []domain.ActionType{domain.ActionFetchPending, domain.ActionFetchError}, *trace)
}

func TestFetchUsers_Refetch(t *testing.T) {
	resource := &fakeResource{list: threeUsers()[:1]}
	initial := withList(threeUsers())
	initial.FetchStatus = domain.StatusError
	store, wf, _ := newWorkflowStore(t, resource, initial)

	require.NoError(t, store.Run(context.Background(), domain.WorkflowFetchUsers, 0, wf.FetchUsers()))

	assert.Len(t, store.State().List, 1, "a fetch replaces the list")
	assert.Equal(t, domain.StatusOK, store.State().FetchStatus)
}

func TestSubmitAddUser_Invalid(t *testing.T) {
	resource := &fakeResource{}
	store, wf, _ := newWorkflowStore(t, resource, withList(threeUsers()))
	ctx := context.Background()
	store.Dispatch(ctx, domain.InputForm(domain.FormAddUser, domain.UserFormData{Name: "", Email: "x"}))

	err := store.Run(ctx, domain.WorkflowSubmitAddUser, 0, wf.SubmitAddUser())

	assert.ErrorIs(t, err, domain.ErrInvalidForm)
	assert.Equal(t, 0, resource.createCalls, "invalid forms never reach the network")
	form := store.State().Forms.AddUser
	assert.True(t, form.Show)
	assert.Equal(t, domain.FieldInvalid, form.Validation.Name)
	assert.Equal(t, domain.FieldInvalid, form.Validation.Email)
}

func TestSubmitAddUser_Success(t *testing.T) {
	data := domain.UserFormData{Name: "Dana", Email: "dana@example.com"}

	t.Run("Provisional Id", func(t *testing.T) {
		resource := &fakeResource{}
		store, wf, _ := newWorkflowStore(t, resource, withList(threeUsers()))
		ctx := context.Background()
		store.Dispatch(ctx, domain.InputForm(domain.FormAddUser, data))

		require.NoError(t, store.Run(ctx, domain.WorkflowSubmitAddUser, 0, wf.SubmitAddUser()))

		assert.Equal(t, 1, resource.createCalls)
		assert.Equal(t, data, resource.lastData)
		state := store.State()
		require.Len(t, state.List, 4)
		assert.Equal(t, 4, state.List[0].ID)
		assert.True(t, state.List[0].Provisional)
		assert.Equal(t, domain.DefaultUserForm(), state.Forms.AddUser)
	})

	t.Run("Server Id", func(t *testing.T) {
		resource := &fakeResource{created: &domain.User{ID: 101, Name: data.Name, Email: data.Email}}
		store, wf, _ := newWorkflowStore(t, resource, withList(threeUsers()))
		ctx := context.Background()
		store.Dispatch(ctx, domain.InputForm(domain.FormAddUser, data))

		require.NoError(t, store.Run(ctx, domain.WorkflowSubmitAddUser, 0, wf.SubmitAddUser()))

		assert.Equal(t, 101, store.State().List[0].ID)
		assert.False(t, store.State().List[0].Provisional)
	})
}

func TestSubmitAddUser_RequestFailure(t *testing.T) {
	resource := &fakeResource{createErr: &domain.RequestError{Op: domain.OpCreate, StatusCode: 500, Err: errors.New("internal error")}}
	store, wf, _ := newWorkflowStore(t, resource, withList(threeUsers()))
	ctx := context.Background()
	data := domain.UserFormData{Name: "Dana", Email: "dana@example.com"}
	store.Dispatch(ctx, domain.InputForm(domain.FormAddUser, data))

	err := store.Run(ctx, domain.WorkflowSubmitAddUser, 0, wf.SubmitAddUser())

	var reqErr *domain.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 500, reqErr.StatusCode)

	state := store.State()
	assert.Len(t, state.List, 3)
	require.NotNil(t, state.RequestError)
	assert.Equal(t, domain.OpCreate, state.RequestError.Op)
	assert.Equal(t, fixedNow, state.RequestError.At)
	assert.Equal(t, data, state.Forms.AddUser.Data, "the form is kept for a retry")
}

func TestSubmitEditUser(t *testing.T) {
	data := domain.UserFormData{Name: "Ervin H", Email: "eh@example.com"}

	t.Run("Success", func(t *testing.T) {
		resource := &fakeResource{}
		store, wf, _ := newWorkflowStore(t, resource, withList(threeUsers()))
		ctx := context.Background()
		store.Dispatch(ctx, domain.InputForm(domain.FormEditUser, data))

		require.NoError(t, store.Run(ctx, domain.WorkflowSubmitEditUser, 2, wf.SubmitEditUser(2)))

		assert.Equal(t, 2, resource.lastID)
		user, ok := store.State().User(2)
		require.True(t, ok)
		assert.Equal(t, "Ervin H", user.Name)
		assert.Equal(t, domain.DefaultUserForm(), store.State().Forms.EditUser)
	})

	t.Run("Invalid", func(t *testing.T) {
		resource := &fakeResource{}
		store, wf, _ := newWorkflowStore(t, resource, withList(threeUsers()))
		ctx := context.Background()
		store.Dispatch(ctx, domain.InputForm(domain.FormEditUser, domain.UserFormData{Name: "Ervin", Email: "nope"}))

		err := store.Run(ctx, domain.WorkflowSubmitEditUser, 2, wf.SubmitEditUser(2))

		assert.ErrorIs(t, err, domain.ErrInvalidForm)
		assert.Equal(t, 0, resource.updateCalls)
	})

	t.Run("Unknown Id", func(t *testing.T) {
		resource := &fakeResource{}
		store, wf, _ := newWorkflowStore(t, resource, withList(threeUsers()))
		ctx := context.Background()
		store.Dispatch(ctx, domain.InputForm(domain.FormEditUser, data))
		before := store.State()

		err := store.Run(ctx, domain.WorkflowSubmitEditUser, 42, wf.SubmitEditUser(42))

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.Equal(t, 0, resource.updateCalls, "nothing is sent for an unknown id")
		assert.Nil(t, store.State().RequestError)
		assert.Equal(t, before.List, store.State().List)
		assert.True(t, store.State().Forms.EditUser.Show, "the form stays open")
	})

	t.Run("Request Failure", func(t *testing.T) {
		resource := &fakeResource{updateErr: errors.New("dial tcp: refused")}
		store, wf, _ := newWorkflowStore(t, resource, withList(threeUsers()))
		ctx := context.Background()
		store.Dispatch(ctx, domain.InputForm(domain.FormEditUser, data))

		err := store.Run(ctx, domain.WorkflowSubmitEditUser, 2, wf.SubmitEditUser(2))

		var reqErr *domain.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, domain.OpUpdate, reqErr.Op)
		assert.Equal(t, 2, reqErr.UserID)
		require.NotNil(t, store.State().RequestError)
		assert.Equal(t, 2, store.State().RequestError.UserID)
		assert.Equal(t, "Ervin", store.State().List[1].Name)
	})
}

func TestSubmitDeleteUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		resource := &fakeResource{}
		store, wf, _ := newWorkflowStore(t, resource, withList(threeUsers()))

		require.NoError(t, store.Run(context.Background(), domain.WorkflowSubmitDeleteUser, 2, wf.SubmitDeleteUser(2)))

		assert.Equal(t, 1, resource.deleteCalls)
		_, ok := store.State().User(2)
		assert.False(t, ok)
		assert.Len(t, store.State().List, 2)
	})

	t.Run("Request Failure", func(t *testing.T) {
		resource := &fakeResource{deleteErr: &domain.RequestError{Op: domain.OpDelete, UserID: 2, StatusCode: 404, Err: errors.New("not found")}}
		store, wf, _ := newWorkflowStore(t, resource, withList(threeUsers()))

		err := store.Run(context.Background(), domain.WorkflowSubmitDeleteUser, 2, wf.SubmitDeleteUser(2))

		assert.ErrorIs(t, err, domain.ErrRequestFailed)
		assert.Len(t, store.State().List, 3)
		require.NotNil(t, store.State().RequestError)
		assert.Contains(t, store.State().RequestError.Message, "status 404")
	})
}

func TestWorkflow_Canceled(t *testing.T) {
	resource := &fakeResource{listErr: &domain.RequestError{Op: domain.OpList, Err: context.Canceled}}
	var outcome string
	store := runtime.NewStore(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnWorkflowFinish: func(_ context.Context, e *domain.WorkflowEvent) { outcome = e.Outcome },
	}))
	wf := runtime.NewWorkflows(resource, nil)

	err := store.Run(context.Background(), domain.WorkflowFetchUsers, 0, wf.FetchUsers())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.OutcomeCanceled, outcome)
}
