package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/aretw0/roster/internal/cli"
	"github.com/aretw0/roster/internal/presentation/tui"
	"github.com/aretw0/roster/pkg/domain"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "One-shot operations on the user collection",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Fetch and print the users",
	RunE: func(cmd *cobra.Command, args []string) error {
		orderFlag, _ := cmd.Flags().GetString("order")
		order, err := domain.ParseSortOrder(orderFlag)
		if err != nil {
			return err
		}
		return withFetchedUsers(cmd, func(ctx context.Context, a *app) error {
			return printUsers(cmd, a, order)
		})
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Validate and create a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		data := formFlags(cmd)
		return withFetchedUsers(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.Engine.Dispatch(ctx, domain.InputForm(domain.FormAddUser, data)); err != nil {
				return err
			}
			if err := a.Engine.SubmitAddUser(ctx); err != nil {
				return submitError(cmd, a, domain.FormAddUser, err)
			}
			return printUsers(cmd, a, domain.SortNone)
		})
	},
}

var usersEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Validate and update a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := userID(args[0])
		if err != nil {
			return err
		}
		data := formFlags(cmd)
		return withFetchedUsers(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.Engine.Dispatch(ctx, domain.InputForm(domain.FormEditUser, data)); err != nil {
				return err
			}
			if err := a.Engine.SubmitEditUser(ctx, id); err != nil {
				return submitError(cmd, a, domain.FormEditUser, err)
			}
			return printUsers(cmd, a, domain.SortNone)
		})
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := userID(args[0])
		if err != nil {
			return err
		}
		return withFetchedUsers(cmd, func(ctx context.Context, a *app) error {
			if err := a.Engine.SubmitDeleteUser(ctx, id); err != nil {
				return err
			}
			return printUsers(cmd, a, domain.SortNone)
		})
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd, usersAddCmd, usersEditCmd, usersDeleteCmd)

	usersListCmd.Flags().StringP("order", "o", "", "Username order: asc, desc or none")
	for _, c := range []*cobra.Command{usersAddCmd, usersEditCmd} {
		c.Flags().String("name", "", "Full name")
		c.Flags().String("email", "", "Email address")
	}
}

// withFetchedUsers loads the app, fetches the list and runs fn.
// Mutations need the list: edits match ids against it.
func withFetchedUsers(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cli.NewSignalContext(cmd.Context())
	defer ctx.Cancel()

	if err := a.Engine.FetchUsers(ctx); err != nil {
		return fmt.Errorf("fetch users: %w", err)
	}
	return fn(ctx, a)
}

func formFlags(cmd *cobra.Command) domain.UserFormData {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	return domain.UserFormData{Name: name, Email: email}
}

func userID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// submitError shows the form markers when validation failed.
func submitError(cmd *cobra.Command, a *app, name domain.FormName, err error) error {
	if form, ok := a.Engine.State().Forms.Form(name); ok && form.Show {
		_ = printMarkdown(cmd, tui.FormMarkdown(name, form))
	}
	return err
}

func printUsers(cmd *cobra.Command, a *app, order domain.SortOrder) error {
	users, err := a.Engine.Users(order)
	if err != nil {
		return err
	}
	return printMarkdown(cmd, tui.UsersMarkdown(users, order))
}

func printMarkdown(cmd *cobra.Command, md string) error {
	out := cmd.OutOrStdout()
	interactive := false
	if f, ok := out.(*os.File); ok {
		interactive = cli.IsTerminal(f)
	}
	render, err := tui.NewRenderer(interactive)
	if err != nil {
		return err
	}
	text, err := render(md)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, text)
	return err
}
