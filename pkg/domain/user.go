package domain

import (
	"github.com/tiendc/go-deepcopy"
)

// Address is the optional postal part of a User. Only the city is displayed.
type Address struct {
	City string `json:"city" yaml:"city" mapstructure:"city"`
}

// User is a record of the remote user collection. Identity is ID.
type User struct {
	ID       int      `json:"id" yaml:"id" mapstructure:"id"`
	Name     string   `json:"name" yaml:"name" mapstructure:"name"`
	Username string   `json:"username,omitempty" yaml:"username,omitempty" mapstructure:"username"`
	Email    string   `json:"email" yaml:"email" mapstructure:"email"`
	Address  *Address `json:"address,omitempty" yaml:"address,omitempty" mapstructure:"address"`

	// Provisional marks an ID synthesized locally after a create whose response
	// carried no server id. The next fetch replaces it.
	Provisional bool `json:"provisional,omitempty" yaml:"-" mapstructure:"-"`
}

// City returns the address city or "" when the user has no address.
func (u User) City() string {
	if u.Address == nil {
		return ""
	}
	return u.Address.City
}

// CloneUsers returns a deep copy of list, so callers may sort or edit it freely.
// A nil list stays nil (absent).
func CloneUsers(list []User) ([]User, error) {
	if list == nil {
		return nil, nil
	}
	out := make([]User, 0, len(list))
	if err := deepcopy.Copy(&out, list); err != nil {
		return nil, err
	}
	return out, nil
}

// IndexOf returns the position of the user with the given id, or -1.
func IndexOf(list []User, id int) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// NextID returns a provisional id that cannot collide with any id in list.
// On a gap-free list 1..n it is n+1.
func NextID(list []User) int {
	highest := 0
	for _, u := range list {
		if u.ID > highest {
			highest = u.ID
		}
	}
	return highest + 1
}
