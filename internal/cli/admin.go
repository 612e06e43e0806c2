package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/tripti/internal/common"
	"github.com/dmitrijs2005/tripti/internal/models"
	"github.com/dmitrijs2005/tripti/internal/months"
)

// nowFn lets tests pin the list of selectable months.
var nowFn = time.Now

func (a *App) currentAdmin(ctx context.Context) (*models.PublicUser, error) {
	return a.svc.Identity.RequireRole(ctx, models.RoleAdmin)
}

// Months shows the configured months and whether they are locked.
func (a *App) Months(ctx context.Context) error {
	if _, err := a.currentAdmin(ctx); err != nil {
		return err
	}

	cfg, err := a.svc.Months.Get(ctx)
	if err != nil {
		return err
	}
	if !cfg.Configured() {
		a.println("No months configured. Use 'configure' to select them.")
		return nil
	}

	state := "unlocked"
	if cfg.Confirmed {
		state = "locked"
	}
	a.printf("Configured months (%s):\n", state)
	for _, m := range cfg.Months {
		n := 0
		if pm, err := months.ParseMonth(m); err == nil {
			n = months.FridayCount(pm)
		}
		a.printf("  %s  (%d Fridays)\n", m, n)
	}
	return nil
}

// Configure lets the admin pick exactly three months and locks them.
func (a *App) Configure(ctx context.Context) error {
	if _, err := a.currentAdmin(ctx); err != nil {
		return err
	}

	cfg, err := a.svc.Months.Get(ctx)
	if err != nil {
		return err
	}
	if cfg.Confirmed {
		return common.ErrLocked
	}

	options := months.SelectableMonths(nowFn())
	for i, m := range options {
		a.printf("  %2d) %s\n", i+1, m)
	}
	answer, err := getSimpleText(a.reader,
		fmt.Sprintf("Select %d months (numbers or names, comma separated)", months.Required), a.out)
	if err != nil {
		return err
	}

	labels, err := pickMonths(answer, options)
	if err != nil {
		return err
	}
	if len(labels) != months.Required {
		return fmt.Errorf("%w: select exactly %d months", common.ErrValidation, months.Required)
	}

	ok, err := confirm(a.reader, "Confirm "+strings.Join(labels, ", ")+"? They will be locked", a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Nothing changed.")
		return nil
	}

	saved, err := a.svc.Months.Confirm(ctx, labels)
	if err != nil {
		return err
	}
	a.printf("Months confirmed and locked: %s\n", strings.Join(saved.Months, ", "))
	return nil
}

// pickMonths maps a comma separated answer of list numbers or month labels
// to labels. Labels outside options are passed through for the service to
// validate.
func pickMonths(answer string, options []string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(answer, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			if n < 1 || n > len(options) {
				return nil, fmt.Errorf("%w: no month number %d", common.ErrValidation, n)
			}
			out = append(out, options[n-1])
			continue
		}
		out = append(out, part)
	}
	return out, nil
}

// Unlock sends a code to the admin and clears the lock once it is entered.
func (a *App) Unlock(ctx context.Context) error {
	u, err := a.currentAdmin(ctx)
	if err != nil {
		return err
	}

	if err := a.svc.Months.RequestUnlock(ctx, u.Email); err != nil {
		return err
	}
	a.printf("A verification code was sent to %s.\n", u.Email)

	code, err := getSimpleText(a.reader, "Verification code", a.out)
	if err != nil {
		return err
	}
	if err := a.svc.Months.Unlock(ctx, u.Email, code); err != nil {
		return err
	}

	a.println("Months unlocked. Use 'configure' to select them again.")
	return nil
}

// Stats prints per-month capacity and per-food totals.
func (a *App) Stats(ctx context.Context) error {
	if _, err := a.currentAdmin(ctx); err != nil {
		return err
	}

	perMonth, err := a.svc.Stats.PerMonth(ctx)
	if err != nil {
		return err
	}
	if len(perMonth) == 0 {
		a.println("No months configured.")
	} else {
		tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "MONTH\tTOTAL\tUSED\tREMAINING")
		for _, m := range perMonth {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", m.Month, m.Total, m.Used, m.Remaining)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	perFood, err := a.svc.Stats.PerFoodType(ctx)
	if err != nil {
		return err
	}
	a.println()
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FOOD\tTOKENS")
	for _, f := range append(append([]models.FoodType{}, models.FoodTypes...), models.FoodUntagged) {
		fmt.Fprintf(tw, "%s\t%d\n", f, perFood[f])
	}
	return tw.Flush()
}

// Students prints the student table.
func (a *App) Students(ctx context.Context) error {
	if _, err := a.currentAdmin(ctx); err != nil {
		return err
	}

	rows, err := a.svc.Stats.StudentRows(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		a.println("No students registered.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEMAIL\tDORM\tROOM\tUSED\tAVAILABLE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n", r.Name, r.Email, r.DormName, r.RoomNumber, r.Used, r.Available)
	}
	return tw.Flush()
}

// ResetStudent removes one student's tokens, looked up by email.
func (a *App) ResetStudent(ctx context.Context) error {
	if _, err := a.currentAdmin(ctx); err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Student email", a.out)
	if err != nil {
		return err
	}
	u, err := a.svc.Identity.FindUserByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: no account for %s", common.ErrValidation, common.NormalizeEmail(email))
	}
	if err != nil {
		return err
	}
	if u.Role != models.RoleStudent {
		return fmt.Errorf("%w: %s is not a student", common.ErrValidation, u.Email)
	}

	ok, err := confirm(a.reader, fmt.Sprintf("Delete all tokens of %s?", u.Name), a.out)
	if err != nil || !ok {
		if err == nil {
			a.println("Nothing changed.")
		}
		return err
	}

	n, err := a.svc.Allocation.ClearStudentTokens(ctx, u.ID)
	if err != nil {
		return err
	}
	a.printf("Removed %d token(s) of %s.\n", n, u.Name)
	return nil
}

// ResetAll wipes students, tokens and login logs after the admin types the
// confirmation word.
func (a *App) ResetAll(ctx context.Context) error {
	if _, err := a.currentAdmin(ctx); err != nil {
		return err
	}

	answer, err := getSimpleText(a.reader,
		"This deletes every student, token and login log. Type RESET to continue", a.out)
	if err != nil {
		return err
	}
	if answer != "RESET" {
		a.println("Nothing changed.")
		return nil
	}

	if err := a.svc.Allocation.ClearAllUserData(ctx); err != nil {
		return err
	}
	a.println("All user data cleared. Administrator accounts were kept.")
	return nil
}

// Export writes the login log to the configured audit destination.
func (a *App) Export(ctx context.Context) error {
	if _, err := a.currentAdmin(ctx); err != nil {
		return err
	}

	loc, n, err := a.svc.Audit.ExportLoginLogs(ctx)
	if err != nil {
		return err
	}
	a.printf("Exported %d login log entries to %s\n", n, loc)
	return nil
}

// Backup copies every durable key to the configured audit destination.
func (a *App) Backup(ctx context.Context) error {
	if _, err := a.currentAdmin(ctx); err != nil {
		return err
	}

	loc, n, err := a.svc.Audit.ExportBackup(ctx)
	if err != nil {
		return err
	}
	a.printf("Backed up %d storage keys to %s\n", n, loc)
	return nil
}
