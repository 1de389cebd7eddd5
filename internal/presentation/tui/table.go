package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/roster/pkg/domain"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", " ")

// UsersMarkdown renders users as a markdown table. The username header
// carries an arrow for the active order. A nil list renders a hint instead.
func UsersMarkdown(users []domain.User, order domain.SortOrder) string {
	if users == nil {
		return "_No users fetched yet._\n"
	}
	if len(users) == 0 {
		return "_The roster is empty._\n"
	}

	username := "Username"
	switch order {
	case domain.SortAsc:
		username += " ↑"
	case domain.SortDesc:
		username += " ↓"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "| ID | Name | %s | Email | City |\n", username)
	b.WriteString("|---:|---|---|---|---|\n")
	for _, u := range users {
		id := fmt.Sprintf("%d", u.ID)
		if u.Provisional {
			id += "*"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			id, cell(u.Name), cell(u.Username), cell(u.Email), cell(u.City()))
	}
	return b.String()
}

// FormMarkdown renders one form slot with its validation markers.
func FormMarkdown(name domain.FormName, form domain.UserForm) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s form** (shown: %t, valid: %t)\n\n", name, form.Show, form.Validation.IsValid)
	fmt.Fprintf(&b, "- name: `%s` _%s_\n", form.Data.Name, form.Validation.Name)
	fmt.Fprintf(&b, "- email: `%s` _%s_\n", form.Data.Email, form.Validation.Email)
	return b.String()
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return cellEscaper.Replace(s)
}
