package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/tripti/internal/allocation"
	"github.com/dmitrijs2005/tripti/internal/audit"
	"github.com/dmitrijs2005/tripti/internal/common"
	"github.com/dmitrijs2005/tripti/internal/identity"
	"github.com/dmitrijs2005/tripti/internal/logging"
	"github.com/dmitrijs2005/tripti/internal/models"
	"github.com/dmitrijs2005/tripti/internal/months"
	"github.com/dmitrijs2005/tripti/internal/stats"
)

// getSimpleText, getPassword and confirm are indirections used to facilitate
// testing. They point to the interactive input helpers.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	confirm       = Confirm
)

// Services bundles everything the commands call into.
type Services struct {
	Identity   *identity.Service
	Months     *months.Service
	Allocation *allocation.Engine
	Stats      *stats.Aggregator
	Audit      *audit.Service
}

type App struct {
	svc    Services
	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger
}

func NewApp(svc Services, in io.Reader, out io.Writer, log logging.Logger) *App {
	return &App{svc: svc, reader: bufio.NewReader(in), out: out, log: log.With("component", "cli")}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// role is the role of the session user, models.RoleNone when logged out.
func (a *App) role(ctx context.Context) models.Role {
	u, err := a.svc.Identity.CurrentUser(ctx)
	if err != nil {
		return models.RoleNone
	}
	return u.Role
}

// status is shown in the prompt.
func (a *App) status(ctx context.Context) string {
	u, err := a.svc.Identity.CurrentUser(ctx)
	if err != nil {
		return "guest"
	}
	return fmt.Sprintf("%s %s", u.Email, u.Role)
}

// describe turns an error into the line shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrNoSession):
		return "You are not logged in."
	case errors.Is(err, common.ErrForbidden):
		return "This command is not available for your account."
	case errors.Is(err, common.ErrUnauthorized):
		return "Invalid email or password."
	case errors.Is(err, common.ErrAlreadyExists):
		return "An account with this email already exists."
	case errors.Is(err, common.ErrLocked):
		return "Months are locked. Use 'unlock' first."
	case errors.Is(err, common.ErrInvalidCode):
		return "The code is invalid or has expired."
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	default:
		return "Error: " + err.Error()
	}
}
