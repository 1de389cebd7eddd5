package domain

import (
	"reflect"
	"time"
)

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// Action is the transition that produced the new state, when known.
	Action ActionType `json:"action,omitempty"`

	// List is the whole new list when it changed. Lists are small and
	// ordering matters, so no per-item delta is computed.
	List *[]User `json:"list,omitempty"`

	FetchStatus *FetchStatus `json:"fetchStatus,omitempty"`
	UpdateTime  *time.Time   `json:"updateTime,omitempty"`

	// Forms contains only the slots that changed.
	Forms map[FormName]UserForm `json:"forms,omitempty"`

	// RequestError is set when the error changed. Cleared errors are reported
	// through ErrorCleared since a nil pointer is omitted.
	RequestError *RequestFailure `json:"requestError,omitempty"`
	ErrorCleared bool            `json:"errorCleared,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}
	if oldState == newState {
		return nil
	}

	diff := &StateDiff{}

	if oldState == nil || !reflect.DeepEqual(oldState.List, newState.List) {
		if newState.List != nil {
			list := newState.List
			diff.List = &list
		}
	}
	if oldState == nil || oldState.FetchStatus != newState.FetchStatus {
		status := newState.FetchStatus
		diff.FetchStatus = &status
	}
	if newState.UpdateTime != nil && (oldState == nil || !equalTime(oldState.UpdateTime, newState.UpdateTime)) {
		diff.UpdateTime = newState.UpdateTime
	}

	diff.Forms = diffForms(oldState, newState)

	switch {
	case oldState == nil:
		diff.RequestError = newState.RequestError
	case oldState.RequestError != nil && newState.RequestError == nil:
		diff.ErrorCleared = true
	case !reflect.DeepEqual(oldState.RequestError, newState.RequestError):
		diff.RequestError = newState.RequestError
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffForms(old, new *State) map[FormName]UserForm {
	delta := make(map[FormName]UserForm)
	if old == nil || old.Forms.AddUser != new.Forms.AddUser {
		delta[FormAddUser] = new.Forms.AddUser
	}
	if old == nil || old.Forms.EditUser != new.Forms.EditUser {
		delta[FormEditUser] = new.Forms.EditUser
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.List == nil &&
		d.FetchStatus == nil &&
		d.UpdateTime == nil &&
		len(d.Forms) == 0 &&
		d.RequestError == nil &&
		!d.ErrorCleared
}

// Touches reports whether the diff changes the named part of the state.
// Known parts: "list", "status", "forms", "error".
func (d *StateDiff) Touches(part string) bool {
	switch part {
	case "list":
		return d.List != nil || d.UpdateTime != nil
	case "status":
		return d.FetchStatus != nil
	case "forms":
		return len(d.Forms) > 0
	case "error":
		return d.RequestError != nil || d.ErrorCleared
	}
	return false
}
