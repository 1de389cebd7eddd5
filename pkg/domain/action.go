package domain

import (
	"time"
)

// ActionType names a transition of the reducer.
type ActionType string

// Transition names. The "users/" prefix scopes them to the users slice of state.
const (
	ActionFetchPending ActionType = "users/fetch-pending"
	ActionFetchOK      ActionType = "users/fetch-ok"
	ActionFetchError   ActionType = "users/fetch-error"
	ActionUpdate       ActionType = "users/update"

	ActionAddFormInput    ActionType = "users/add-form/input"
	ActionAddFormValidate ActionType = "users/add-form/validate"
	ActionAddFormShow     ActionType = "users/add-form/show"
	ActionAddFormHide     ActionType = "users/add-form/hide"
	ActionAddFormReset    ActionType = "users/add-form/reset"

	ActionEditFormInput    ActionType = "users/edit-form/input"
	ActionEditFormValidate ActionType = "users/edit-form/validate"
	ActionEditFormShow     ActionType = "users/edit-form/show"
	ActionEditFormHide     ActionType = "users/edit-form/hide"
	ActionEditFormReset    ActionType = "users/edit-form/reset"

	ActionCreateUser ActionType = "users/create-user"
	ActionEditUser   ActionType = "users/edit-user"
	ActionDeleteUser ActionType = "users/delete-user"

	ActionRequestError        ActionType = "users/request-error"
	ActionRequestErrorDismiss ActionType = "users/request-error/dismiss"
)

// Action is a request for one synchronous transition.
// Payload type depends on Type; see the constructors below.
type Action struct {
	Type    ActionType `json:"type"`
	Payload any        `json:"payload,omitempty"`
}

// UpdatePayload carries a freshly fetched list.
type UpdatePayload struct {
	List       []User    `json:"list"`
	UpdateTime time.Time `json:"updateTime"`
}

// CreateUserPayload carries the submitted form data and, when the server
// returned one, the server-assigned id.
type CreateUserPayload struct {
	Data UserFormData `json:"data"`
	ID   int          `json:"id,omitempty"`
}

// EditUserPayload carries the fields merged into an existing user.
type EditUserPayload struct {
	ID    int    `json:"id" mapstructure:"id"`
	Name  string `json:"name" mapstructure:"name"`
	Email string `json:"email" mapstructure:"email"`
}

// DeleteUserPayload identifies the user to remove.
type DeleteUserPayload struct {
	ID int `json:"id" mapstructure:"id"`
}

func FetchPending() Action { return Action{Type: ActionFetchPending} }
func FetchOK() Action      { return Action{Type: ActionFetchOK} }
func FetchFailed() Action  { return Action{Type: ActionFetchError} }

// UpdateUsers replaces the list and stamps the update time.
func UpdateUsers(list []User, at time.Time) Action {
	return Action{Type: ActionUpdate, Payload: UpdatePayload{List: list, UpdateTime: at}}
}

// InputForm stores data in the named slot and shows it.
func InputForm(form FormName, data UserFormData) Action {
	if form == FormEditUser {
		return Action{Type: ActionEditFormInput, Payload: data}
	}
	return Action{Type: ActionAddFormInput, Payload: data}
}

// ValidateForm re-derives the validation of the named slot.
func ValidateForm(form FormName) Action {
	return formAction(form, ActionAddFormValidate, ActionEditFormValidate)
}

func ShowForm(form FormName) Action {
	return formAction(form, ActionAddFormShow, ActionEditFormShow)
}

func HideForm(form FormName) Action {
	return formAction(form, ActionAddFormHide, ActionEditFormHide)
}

// ResetForm restores the default form in the named slot.
func ResetForm(form FormName) Action {
	return formAction(form, ActionAddFormReset, ActionEditFormReset)
}

func formAction(form FormName, add, edit ActionType) Action {
	if form == FormEditUser {
		return Action{Type: edit}
	}
	return Action{Type: add}
}

// CreateUser prepends a user built from data. serverID is 0 when unknown.
func CreateUser(data UserFormData, serverID int) Action {
	return Action{Type: ActionCreateUser, Payload: CreateUserPayload{Data: data, ID: serverID}}
}

func EditUser(id int, data UserFormData) Action {
	return Action{Type: ActionEditUser, Payload: EditUserPayload{ID: id, Name: data.Name, Email: data.Email}}
}

func DeleteUser(id int) Action {
	return Action{Type: ActionDeleteUser, Payload: DeleteUserPayload{ID: id}}
}

// RequestFailed records a failed mutation request.
func RequestFailed(failure RequestFailure) Action {
	return Action{Type: ActionRequestError, Payload: failure}
}

func DismissRequestError() Action { return Action{Type: ActionRequestErrorDismiss} }

// viewActions are the synchronous actions a view may dispatch directly.
// The remaining transitions are reserved to workflows.
var viewActions = map[ActionType]bool{
	ActionAddFormInput:        true,
	ActionAddFormValidate:     true,
	ActionAddFormShow:         true,
	ActionAddFormHide:         true,
	ActionAddFormReset:        true,
	ActionEditFormInput:       true,
	ActionEditFormValidate:    true,
	ActionEditFormShow:        true,
	ActionEditFormHide:        true,
	ActionEditFormReset:       true,
	ActionRequestErrorDismiss: true,
}

// IsViewAction reports whether t may be dispatched by a view.
func IsViewAction(t ActionType) bool {
	return viewActions[t]
}
