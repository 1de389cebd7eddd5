package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/roster"
	"github.com/aretw0/roster/internal/presentation/tui"
	"github.com/aretw0/roster/pkg/domain"
)

const consoleHelp = `Commands:
  fetch                       load users from the remote collection
  list [asc|desc|none]        show the user table
  sort                        cycle the username order (none, desc, asc)
  add <name> <email>          fill and submit the add form
  edit <id> <name> <email>    fill and submit the edit form
  delete <id>                 delete a user
  form add|edit               show a form and its validation
  status                      show fetch status and the last error
  dismiss                     clear the last request error
  help                        this text
  quit                        leave the console`

// Console is a line-oriented interface over one engine.
type Console struct {
	engine *roster.Engine
	out    io.Writer
	render func(string) (string, error)
	order  domain.SortOrder
}

// NewConsole creates a console writing to out. render turns markdown into
// terminal output; nil prints markdown as is.
func NewConsole(engine *roster.Engine, out io.Writer, render func(string) (string, error)) *Console {
	if render == nil {
		render = func(md string) (string, error) { return md, nil }
	}
	return &Console{engine: engine, out: out, render: render}
}

// Run reads commands from in until quit, EOF or ctx cancellation.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(NewInterruptibleReader(in, ctx.Done()))
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return io.EOF
		}
		quit, err := c.Execute(ctx, scanner.Text())
		if err != nil {
			printSystemMessage(c.out, "error: %v", err)
		}
		if quit {
			return nil
		}
	}
}

// Execute runs one command line. Command failures are returned for display
// and never end the session.
func (c *Console) Execute(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(c.out, consoleHelp)
		return false, nil
	case "fetch":
		err := c.engine.FetchUsers(ctx)
		c.printStatus()
		return false, err
	case "list":
		if len(args) > 0 {
			order, err := domain.ParseSortOrder(args[0])
			if err != nil {
				return false, err
			}
			c.order = order
		}
		return false, c.printUsers()
	case "sort":
		c.order = c.order.Next()
		return false, c.printUsers()
	case "add":
		data := formData(args)
		if _, err := c.engine.Dispatch(ctx, domain.InputForm(domain.FormAddUser, data)); err != nil {
			return false, err
		}
		err := c.engine.SubmitAddUser(ctx)
		c.printStatus()
		return false, err
	case "edit":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: edit <id> <name> <email>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return false, err
		}
		if _, err := c.engine.Dispatch(ctx, domain.InputForm(domain.FormEditUser, formData(args[1:]))); err != nil {
			return false, err
		}
		err = c.engine.SubmitEditUser(ctx, id)
		c.printStatus()
		return false, err
	case "delete":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: delete <id>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return false, err
		}
		err = c.engine.SubmitDeleteUser(ctx, id)
		c.printStatus()
		return false, err
	case "form":
		name := domain.FormAddUser
		if len(args) > 0 {
			name = domain.FormName(args[0])
		}
		form, ok := c.engine.State().Forms.Form(name)
		if !ok {
			return false, fmt.Errorf("unknown form %q (want add or edit)", name)
		}
		return false, c.print(tui.FormMarkdown(name, form))
	case "status":
		c.printStatus()
		return false, nil
	case "dismiss":
		_, err := c.engine.Dispatch(ctx, domain.DismissRequestError())
		c.printStatus()
		return false, err
	}
	return false, fmt.Errorf("unknown command %q, type help", cmd)
}

// formData reads "<name words...> <email>": the last word is the email.
func formData(args []string) domain.UserFormData {
	switch len(args) {
	case 0:
		return domain.UserFormData{}
	case 1:
		return domain.UserFormData{Email: args[0]}
	}
	return domain.UserFormData{
		Name:  strings.Join(args[:len(args)-1], " "),
		Email: args[len(args)-1],
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func (c *Console) printUsers() error {
	users, err := c.engine.Users(c.order)
	if err != nil {
		return err
	}
	return c.print(tui.UsersMarkdown(users, c.order))
}

func (c *Console) printStatus() {
	fmt.Fprintln(c.out, tui.StatusLine(c.engine.State()))
}

func (c *Console) print(md string) error {
	out, err := c.render(md)
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, out)
	return nil
}
