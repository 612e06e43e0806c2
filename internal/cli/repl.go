package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tripti/internal/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs. App satisfies it;
// tests provide a lightweight stub.
type execIface interface {
	role(ctx context.Context) models.Role

	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Forgot(ctx context.Context) error
	Logout(ctx context.Context) error

	Status(ctx context.Context) error
	Token(ctx context.Context) error
	History(ctx context.Context) error

	Months(ctx context.Context) error
	Configure(ctx context.Context) error
	Unlock(ctx context.Context) error
	Stats(ctx context.Context) error
	Students(ctx context.Context) error
	ResetStudent(ctx context.Context) error
	ResetAll(ctx context.Context) error
	Export(ctx context.Context) error
	Backup(ctx context.Context) error
}

type command struct {
	role models.Role
	run  func(execIface, context.Context) error
}

var commands = map[string]command{
	"signup": {models.RoleNone, execIface.Signup},
	"login":  {models.RoleNone, execIface.Login},
	"forgot": {models.RoleNone, execIface.Forgot},

	"status":  {models.RoleStudent, execIface.Status},
	"token":   {models.RoleStudent, execIface.Token},
	"history": {models.RoleStudent, execIface.History},

	"months":        {models.RoleAdmin, execIface.Months},
	"configure":     {models.RoleAdmin, execIface.Configure},
	"unlock":        {models.RoleAdmin, execIface.Unlock},
	"stats":         {models.RoleAdmin, execIface.Stats},
	"students":      {models.RoleAdmin, execIface.Students},
	"reset-student": {models.RoleAdmin, execIface.ResetStudent},
	"reset-all":     {models.RoleAdmin, execIface.ResetAll},
	"export":        {models.RoleAdmin, execIface.Export},
	"backup":        {models.RoleAdmin, execIface.Backup},
}

var helpText = map[models.Role]string{
	models.RoleNone:    "Available commands: signup, login, forgot, exit",
	models.RoleStudent: "Available commands: status, token, history, logout, exit",
	models.RoleAdmin:   "Available commands: months, configure, unlock, stats, students, reset-student, reset-all, export, backup, logout, exit",
}

// runREPL reads commands line by line from reader and dispatches them to a.
//
// The prompt shows statusFn(). Which commands are accepted depends on the
// role of the session user. A failing command prints its error and the
// loop goes on; it only ends on EOF, exit or quit.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("tripti (%s) > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])
		role := a.role(ctx)

		switch cmd {
		case "help":
			printlnFn(helpText[role])
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "logout":
			if role == models.RoleNone {
				printlnFn(describeUnavailable(cmd))
				continue
			}
			report(a.Logout(ctx))
			continue
		}

		c, ok := commands[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if c.role != role {
			printlnFn(describeUnavailable(cmd))
			continue
		}
		report(c.run(a, ctx))
	}
}

func describeUnavailable(cmd string) string {
	return fmt.Sprintf("'%s' is not available right now, type 'help'", cmd)
}

func report(err error) {
	if err != nil {
		printlnFn(describe(err))
	}
}

// Run greets the user and runs the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to TRIPTI meal tokens (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.status(ctx) }, a.reader)
}
