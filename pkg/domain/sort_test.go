package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func usernames(list []User) []string {
	out := make([]string, len(list))
	for i, u := range list {
		out[i] = u.Username
	}
	return out
}

func TestSortUsers(t *testing.T) {
	list := []User{
		{ID: 1, Username: "bret"},
		{ID: 2, Username: ""},
		{ID: 3, Username: "Antonette"},
		{ID: 4, Username: "samantha"},
	}

	t.Run("None keeps order", func(t *testing.T) {
		assert.Equal(t, []string{"bret", "", "Antonette", "samantha"}, usernames(SortUsers(list, SortNone)))
	})

	t.Run("Asc ignores case and puts missing last", func(t *testing.T) {
		assert.Equal(t, []string{"Antonette", "bret", "samantha", ""}, usernames(SortUsers(list, SortAsc)))
	})

	t.Run("Desc", func(t *testing.T) {
		assert.Equal(t, []string{"samantha", "bret", "Antonette", ""}, usernames(SortUsers(list, SortDesc)))
	})

	t.Run("Input untouched", func(t *testing.T) {
		_ = SortUsers(list, SortAsc)
		assert.Equal(t, 1, list[0].ID)
	})

	t.Run("Absent list", func(t *testing.T) {
		assert.Nil(t, SortUsers(nil, SortAsc))
	})
}

func TestSortOrderCycle(t *testing.T) {
	o := SortNone
	o = o.Next()
	assert.Equal(t, SortDesc, o)
	o = o.Next()
	assert.Equal(t, SortAsc, o)
	o = o.Next()
	assert.Equal(t, SortNone, o)
}

func TestParseSortOrder(t *testing.T) {
	for in, want := range map[string]SortOrder{"": SortNone, "none": SortNone, "asc": SortAsc, "desc": SortDesc} {
		got, err := ParseSortOrder(in)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSortOrder("sideways")
	assert.Error(t, err)
}

func TestCloneUsers(t *testing.T) {
	list := []User{{ID: 1, Name: "A", Address: &Address{City: "Gwenborough"}}}
	out, err := CloneUsers(list)
	assert.NoError(t, err)
	assert.Equal(t, list, out)

	out[0].Address.City = "Elsewhere"
	assert.Equal(t, "Gwenborough", list[0].Address.City, "clone must not share addresses")

	none, err := CloneUsers(nil)
	assert.NoError(t, err)
	assert.Nil(t, none)
}

func TestNextID(t *testing.T) {
	assert.Equal(t, 1, NextID(nil))
	assert.Equal(t, 4, NextID([]User{{ID: 1}, {ID: 2}, {ID: 3}}))
	// Deleting id 2 must not make the next id collide with 3.
	assert.Equal(t, 4, NextID([]User{{ID: 1}, {ID: 3}}))
}
