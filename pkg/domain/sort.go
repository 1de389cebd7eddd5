package domain

import (
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOrder is the username ordering of the user table.
type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder accepts "", "none", "asc" and "desc".
func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case "", "none":
		return SortNone, nil
	case string(SortAsc):
		return SortAsc, nil
	case string(SortDesc):
		return SortDesc, nil
	}
	return SortNone, fmt.Errorf("invalid sort order %q (want asc, desc or none)", s)
}

// Next cycles the order the way the table header toggles: none, desc, asc, none.
func (o SortOrder) Next() SortOrder {
	switch o {
	case SortNone:
		return SortDesc
	case SortDesc:
		return SortAsc
	}
	return SortNone
}

// SortUsers returns a copy of list ordered by username using locale collation.
// Users without a username go last in both directions. SortNone keeps list order.
func SortUsers(list []User, order SortOrder) []User {
	if list == nil {
		return nil
	}
	out := slices.Clone(list)
	if order == SortNone {
		return out
	}

	// Collators keep scratch buffers, so one per call.
	c := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(out, func(a, b User) int {
		switch {
		case a.Username == "" && b.Username == "":
			return 0
		case a.Username == "":
			return 1
		case b.Username == "":
			return -1
		}
		cmp := c.CompareString(a.Username, b.Username)
		if order == SortDesc {
			return -cmp
		}
		return cmp
	})
	return out
}
