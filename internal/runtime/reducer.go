package runtime

import (
	"github.com/aretw0/roster/pkg/domain"
	"github.com/aretw0/roster/pkg/validator"
)

// Reduce applies one transition and returns the next state.
//
// It never mutates state. Unknown actions and payloads of the wrong type
// return state itself, so callers can detect no-ops by pointer comparison.
func Reduce(state *domain.State, action domain.Action) *domain.State {
	if state == nil {
		state = domain.NewState()
	}

	switch action.Type {
	case domain.ActionUpdate:
		p, ok := action.Payload.(domain.UpdatePayload)
		if !ok {
			return state
		}
		next := *state
		next.List = p.List
		if next.List == nil {
			// An empty response still counts as a received list.
			next.List = []domain.User{}
		}
		at := p.UpdateTime
		next.UpdateTime = &at
		return &next

	case domain.ActionFetchPending:
		return withStatus(state, domain.StatusPending)
	case domain.ActionFetchOK:
		return withStatus(state, domain.StatusOK)
	case domain.ActionFetchError:
		return withStatus(state, domain.StatusError)

	case domain.ActionAddFormInput, domain.ActionEditFormInput:
		data, ok := action.Payload.(domain.UserFormData)
		if !ok {
			return state
		}
		return updateForm(state, formOf(action.Type), func(f domain.UserForm) domain.UserForm {
			// Validation is carried over as is; it is refreshed by validate only.
			return domain.UserForm{Data: data, Validation: f.Validation, Show: true}
		})

	case domain.ActionAddFormValidate, domain.ActionEditFormValidate:
		return updateForm(state, formOf(action.Type), func(f domain.UserForm) domain.UserForm {
			return domain.UserForm{Data: f.Data, Validation: validator.Validate(f.Data), Show: true}
		})

	case domain.ActionAddFormShow, domain.ActionEditFormShow:
		return updateForm(state, formOf(action.Type), func(f domain.UserForm) domain.UserForm {
			f.Show = true
			return f
		})

	case domain.ActionAddFormHide, domain.ActionEditFormHide:
		return updateForm(state, formOf(action.Type), func(f domain.UserForm) domain.UserForm {
			f.Show = false
			return f
		})

	case domain.ActionAddFormReset, domain.ActionEditFormReset:
		return updateForm(state, formOf(action.Type), func(domain.UserForm) domain.UserForm {
			return domain.DefaultUserForm()
		})

	case domain.ActionCreateUser:
		p, ok := action.Payload.(domain.CreateUserPayload)
		if !ok || !state.HasList() {
			return state
		}
		user := domain.User{ID: p.ID, Name: p.Data.Name, Email: p.Data.Email}
		if user.ID == 0 {
			user.ID = domain.NextID(state.List)
			user.Provisional = true
		}
		list := make([]domain.User, 0, len(state.List)+1)
		list = append(list, user)
		list = append(list, state.List...)
		next := *state
		next.List = list
		return &next

	case domain.ActionEditUser:
		p, ok := action.Payload.(domain.EditUserPayload)
		if !ok || !state.HasList() {
			return state
		}
		i := domain.IndexOf(state.List, p.ID)
		if i < 0 {
			return state
		}
		list := make([]domain.User, len(state.List))
		copy(list, state.List)
		list[i].Name = p.Name
		list[i].Email = p.Email
		next := *state
		next.List = list
		return &next

	case domain.ActionDeleteUser:
		p, ok := action.Payload.(domain.DeleteUserPayload)
		if !ok || !state.HasList() {
			return state
		}
		list := make([]domain.User, 0, len(state.List))
		for _, u := range state.List {
			if u.ID != p.ID {
				list = append(list, u)
			}
		}
		next := *state
		next.List = list
		return &next

	case domain.ActionRequestError:
		p, ok := action.Payload.(domain.RequestFailure)
		if !ok {
			return state
		}
		next := *state
		next.RequestError = &p
		return &next

	case domain.ActionRequestErrorDismiss:
		if state.RequestError == nil {
			return state
		}
		next := *state
		next.RequestError = nil
		return &next
	}

	return state
}

func withStatus(state *domain.State, status domain.FetchStatus) *domain.State {
	next := *state
	next.FetchStatus = status
	return &next
}

func formOf(t domain.ActionType) domain.FormName {
	switch t {
	case domain.ActionEditFormInput, domain.ActionEditFormValidate, domain.ActionEditFormShow,
		domain.ActionEditFormHide, domain.ActionEditFormReset:
		return domain.FormEditUser
	}
	return domain.FormAddUser
}

func updateForm(state *domain.State, name domain.FormName, fn func(domain.UserForm) domain.UserForm) *domain.State {
	next := *state
	if name == domain.FormEditUser {
		next.Forms.EditUser = fn(state.Forms.EditUser)
	} else {
		next.Forms.AddUser = fn(state.Forms.AddUser)
	}
	return &next
}
