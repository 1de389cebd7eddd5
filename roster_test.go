package roster_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/roster"
	"github.com/aretw0/roster/pkg/adapters/memory"
	"github.com/aretw0/roster/pkg/domain"
	"github.com/aretw0/roster/pkg/sanitize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed() []domain.User {
	return []domain.User{
		{ID: 1, Name: "Leanne Graham", Username: "Bret", Email: "Sincere@april.biz"},
		{ID: 2, Name: "Ervin Howell", Username: "Antonette", Email: "Shanna@melissa.tv"},
		{ID: 3, Name: "Clementine Bauch", Username: "Samantha", Email: "Nathan@yesenia.net"},
	}
}

func newEngine(t *testing.T, opts ...roster.Option) (*roster.Engine, *memory.Resource) {
	t.Helper()
	resource, err := memory.NewResource(seed()...)
	require.NoError(t, err)
	eng, err := roster.New(append([]roster.Option{roster.WithResource(resource)}, opts...)...)
	require.NoError(t, err)
	return eng, resource
}

func TestNew_RequiresResource(t *testing.T) {
	_, err := roster.New()
	assert.ErrorIs(t, err, roster.ErrNoResource)
}

func TestEngine_FetchAndSort(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	users, err := eng.Users(domain.SortAsc)
	require.NoError(t, err)
	assert.Nil(t, users, "no list before the first fetch")

	require.NoError(t, eng.FetchUsers(ctx))

	users, err = eng.Users(domain.SortDesc)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"Samantha", "Bret", "Antonette"}, []string{users[0].Username, users[1].Username, users[2].Username})

	users[0].Name = "Mutated"
	assert.Equal(t, "Leanne Graham", eng.State().List[0].Name, "Users returns a copy")
}

func TestEngine_Dispatch(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	t.Run("View Action", func(t *testing.T) {
		state, err := eng.Dispatch(ctx, domain.ShowForm(domain.FormEditUser))
		require.NoError(t, err)
		assert.True(t, state.Forms.EditUser.Show)
	})

	t.Run("Workflow Action Rejected", func(t *testing.T) {
		before := eng.State()
		_, err := eng.Dispatch(ctx, domain.DeleteUser(1))
		assert.ErrorIs(t, err, domain.ErrUnknownAction)
		assert.Same(t, before, eng.State())
	})

	t.Run("Input Is Sanitized", func(t *testing.T) {
		state, err := eng.Dispatch(ctx, domain.InputForm(domain.FormAddUser, domain.UserFormData{Name: "Ann\x1b", Email: "ann@example.com"}))
		require.NoError(t, err)
		assert.Equal(t, "Ann", state.Forms.AddUser.Data.Name)
	})

	t.Run("Oversized Input Rejected", func(t *testing.T) {
		huge := strings.Repeat("a", sanitize.DefaultMaxInputSize+1)
		_, err := eng.Dispatch(ctx, domain.InputForm(domain.FormAddUser, domain.UserFormData{Name: huge}))
		assert.ErrorIs(t, err, sanitize.ErrInputTooLarge)
	})
}

func TestEngine_Workflows(t *testing.T) {
	eng, resource := newEngine(t)
	ctx := context.Background()
	require.NoError(t, eng.FetchUsers(ctx))

	_, err := eng.Dispatch(ctx, domain.InputForm(domain.FormEditUser, domain.UserFormData{Name: "Ervin H", Email: "ervin@example.com"}))
	require.NoError(t, err)
	require.NoError(t, eng.SubmitEditUser(ctx, 2))

	remote, ok := resource.Get(2)
	require.True(t, ok)
	assert.Equal(t, "Ervin H", remote.Name)

	require.NoError(t, eng.SubmitDeleteUser(ctx, 3))
	assert.Len(t, eng.State().List, 2)

	err = eng.SubmitDeleteUser(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrRequestFailed)
	require.NotNil(t, eng.State().RequestError)

	_, err = eng.Dispatch(ctx, domain.DismissRequestError())
	require.NoError(t, err)
	assert.Nil(t, eng.State().RequestError)
}

// countingResource records the updates that reach the collection.
type countingResource struct {
	*memory.Resource
	updates int
}

func (r *countingResource) Update(ctx context.Context, id int, data domain.UserFormData) error {
	r.updates++
	return r.Resource.Update(ctx, id, data)
}

func TestEngine_SubmitEditUser_UnknownID(t *testing.T) {
	base, err := memory.NewResource(seed()...)
	require.NoError(t, err)
	resource := &countingResource{Resource: base}
	eng, err := roster.New(roster.WithResource(resource))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, eng.FetchUsers(ctx))
	_, err = eng.Dispatch(ctx, domain.InputForm(domain.FormEditUser, domain.UserFormData{Name: "Nobody", Email: "no@example.com"}))
	require.NoError(t, err)

	err = eng.SubmitEditUser(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NotErrorIs(t, err, domain.ErrRequestFailed)
	assert.Equal(t, 0, resource.updates, "no update is sent for an id missing from the list")
	assert.Nil(t, eng.State().RequestError)
	assert.True(t, eng.State().Forms.EditUser.Show, "the form stays open")

	require.NoError(t, eng.SubmitEditUser(ctx, 1))
	assert.Equal(t, 1, resource.updates)
}

func TestEngine_Subscribe(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	var seen []domain.ActionType
	unsubscribe := eng.Subscribe(func(c domain.Change) {
		seen = append(seen, c.Action.Type)
	})
	require.NoError(t, eng.FetchUsers(ctx))
	unsubscribe()
	_, _ = eng.Dispatch(ctx, domain.ShowForm(domain.FormAddUser))

	assert.Equal(t, []domain.ActionType{domain.ActionFetchPending, domain.ActionUpdate, domain.ActionFetchOK}, seen)
}

func TestEngine_Journal(t *testing.T) {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	t.Run("Disabled", func(t *testing.T) {
		eng, _ := newEngine(t)
		_, err := eng.Journal(context.Background(), 0)
		assert.ErrorIs(t, err, domain.ErrJournalDisabled)
	})

	t.Run("Records Dispatches", func(t *testing.T) {
		eng, _ := newEngine(t,
			roster.WithJournal(memory.NewJournal(10)),
			roster.WithClock(func() time.Time { return at }),
		)
		ctx := context.Background()
		require.NoError(t, eng.FetchUsers(ctx))
		_, _ = eng.Dispatch(ctx, domain.DismissRequestError()) // no-op

		entries, err := eng.Journal(ctx, 0)
		require.NoError(t, err)
		require.Len(t, entries, 4)

		assert.Equal(t, uint64(1), entries[0].Seq)
		assert.Equal(t, domain.ActionFetchPending, entries[0].Action)
		assert.Equal(t, at, entries[0].Time)

		update := entries[1]
		assert.Equal(t, domain.ActionUpdate, update.Action)
		require.NotNil(t, update.Diff)
		assert.Equal(t, domain.ActionUpdate, update.Diff.Action)
		require.NotNil(t, update.Diff.List)
		assert.Len(t, *update.Diff.List, 3)

		assert.Nil(t, entries[3].Diff, "no-op dispatches have no diff")

		last, err := eng.Journal(ctx, 1)
		require.NoError(t, err)
		require.Len(t, last, 1)
		assert.Equal(t, uint64(4), last[0].Seq)
	})
}
