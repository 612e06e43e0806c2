package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/tripti/internal/allocation"
	"github.com/dmitrijs2005/tripti/internal/models"
)

const dateLayout = "Mon 02 Jan 2006 15:04"

func (a *App) currentStudent(ctx context.Context) (*models.PublicUser, error) {
	return a.svc.Identity.RequireRole(ctx, models.RoleStudent)
}

// Status prints the student's allocation summary.
func (a *App) Status(ctx context.Context) error {
	u, err := a.currentStudent(ctx)
	if err != nil {
		return err
	}

	s, err := a.svc.Allocation.Summary(ctx, u.ID)
	if err != nil {
		return err
	}

	if s.State == allocation.StateDisabled {
		a.println("Token requests open once an administrator configures the months.")
		return nil
	}

	a.printf("Months:     %s\n", strings.Join(s.Months, ", "))
	a.printf("Allocation: %d\n", s.TotalAllocation)
	a.printf("Used:       %d\n", s.Used)
	a.printf("Available:  %d\n", s.Available)
	if s.ThisWeek != nil {
		a.printf("This week:  %s token taken %s. Next request opens on Sunday.\n",
			foodLabel(s.ThisWeek.FoodType), s.ThisWeek.Date.Local().Format(dateLayout))
	} else {
		a.println("This week:  no token yet")
	}
	return nil
}

// Token reserves this week's token after a confirmation prompt. Nothing is
// asked while requests are closed for the student.
func (a *App) Token(ctx context.Context) error {
	u, err := a.currentStudent(ctx)
	if err != nil {
		return err
	}

	s, err := a.svc.Allocation.Summary(ctx, u.ID)
	if err != nil {
		return err
	}
	switch {
	case s.State == allocation.StateDisabled:
		return explainAllocation(allocation.ErrAllocationDisabled)
	case s.State == allocation.StateWeeklyLimit:
		return explainAllocation(allocation.ErrWeeklyLimit)
	case s.Available <= 0:
		return allocation.ErrNoTokensLeft
	}

	def := a.svc.Allocation.DefaultMonth()
	month, err := getSimpleText(a.reader, fmt.Sprintf("Month [%s]", def), a.out)
	if err != nil {
		return err
	}

	food, err := a.chooseFood()
	if err != nil {
		return err
	}

	p, err := a.svc.Allocation.Begin(ctx, u.ID, month, food)
	if err != nil {
		return explainAllocation(err)
	}

	ok, err := confirm(a.reader, fmt.Sprintf("Reserve a %s token for %s?", food, p.Month), a.out)
	if err != nil {
		a.svc.Allocation.Cancel(p)
		return err
	}
	if !ok {
		a.svc.Allocation.Cancel(p)
		a.println("Request cancelled.")
		return nil
	}

	rec, err := a.svc.Allocation.Confirm(ctx, p)
	if err != nil {
		return explainAllocation(err)
	}
	a.printf("Token reserved: %s, %s (id %s)\n", rec.Month, foodLabel(rec.FoodType), rec.ID)
	return nil
}

func (a *App) chooseFood() (models.FoodType, error) {
	options := make([]string, 0, len(models.FoodTypes))
	for i, f := range models.FoodTypes {
		options = append(options, fmt.Sprintf("%d) %s", i+1, f))
	}

	answer, err := getSimpleText(a.reader, "Food type: "+strings.Join(options, "  "), a.out)
	if err != nil {
		return "", err
	}

	for i, f := range models.FoodTypes {
		if answer == fmt.Sprint(i+1) {
			return f, nil
		}
	}
	return models.ParseFoodType(answer)
}

func explainAllocation(err error) error {
	switch {
	case errors.Is(err, allocation.ErrAllocationDisabled):
		return fmt.Errorf("%w. Ask an administrator to configure the months", err)
	case errors.Is(err, allocation.ErrWeeklyLimit):
		return fmt.Errorf("%w. You can request again from Sunday", err)
	default:
		return err
	}
}

// History lists the student's tokens, newest first.
func (a *App) History(ctx context.Context) error {
	u, err := a.currentStudent(ctx)
	if err != nil {
		return err
	}

	tokens, err := a.svc.Allocation.History(ctx, u.ID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		a.println("No tokens yet.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tMONTH\tFOOD")
	for _, t := range tokens {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Date.Local().Format(dateLayout), t.Month, foodLabel(t.FoodType))
	}
	return tw.Flush()
}

func foodLabel(f models.FoodType) string {
	if f == "" {
		return string(models.FoodUntagged)
	}
	return string(f)
}
