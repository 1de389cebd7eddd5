package domain

import "time"

// FetchStatus is the lifecycle of the list fetch.
type FetchStatus string

const (
	StatusIdle    FetchStatus = "idle"
	StatusPending FetchStatus = "pending"
	StatusOK      FetchStatus = "ok"
	StatusError   FetchStatus = "error"
)

// RequestFailure describes the last failed create, update or delete request.
type RequestFailure struct {
	Op      string    `json:"op" mapstructure:"op"`
	UserID  int       `json:"userId,omitempty" mapstructure:"user_id"`
	Message string    `json:"message" mapstructure:"message"`
	At      time.Time `json:"at" mapstructure:"-"`
}

// State is the single application state tree.
//
// A State value is never modified after it has been published by the store.
// Transitions build a new State and may share untouched sub-values with the old one.
type State struct {
	// List is nil until the first successful update.
	List []User `json:"list"`

	FetchStatus FetchStatus `json:"fetchStatus"`

	// UpdateTime is the moment of the last list update, nil before it.
	UpdateTime *time.Time `json:"updateTime"`

	Forms Forms `json:"forms"`

	// RequestError holds the last failed mutation until dismissed.
	RequestError *RequestFailure `json:"requestError,omitempty"`
}

// NewState creates the initial state: no list, idle fetch, both forms defaulted.
func NewState() *State {
	return &State{
		FetchStatus: StatusIdle,
		Forms: Forms{
			AddUser:  DefaultUserForm(),
			EditUser: DefaultUserForm(),
		},
	}
}

// HasList reports whether a list has been received.
func (s *State) HasList() bool {
	return s.List != nil
}

// User returns the user with the given id from the list.
func (s *State) User(id int) (User, bool) {
	i := IndexOf(s.List, id)
	if i < 0 {
		return User{}, false
	}
	return s.List[i], true
}
