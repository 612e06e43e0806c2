// Package allocation enforces the meal-token rules: a student may hold as
// many tokens as there are Fridays in the configured months, and at most one
// per Sunday-to-Saturday week.
//
// A request is two-step: Begin checks the rules and returns a Pending
// selection, Confirm re-checks them at write time and stores the token.
package allocation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/tripti/internal/common"
	"github.com/dmitrijs2005/tripti/internal/docstore"
	"github.com/dmitrijs2005/tripti/internal/logging"
	"github.com/dmitrijs2005/tripti/internal/models"
	"github.com/dmitrijs2005/tripti/internal/months"
)

var (
	ErrAllocationDisabled = errors.New("token requests are disabled until months are configured")
	ErrWeeklyLimit        = errors.New("a token was already taken this week")
	ErrNoTokensLeft       = errors.New("no tokens left")
	ErrPendingClosed      = errors.New("request already confirmed or cancelled")
)

type State int

const (
	StateDisabled State = iota
	StateOpen
	StateWeeklyLimit
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateOpen:
		return "open"
	case StateWeeklyLimit:
		return "weekly limit reached"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MonthSource supplies the current month configuration.
type MonthSource interface {
	Get(ctx context.Context) (months.Config, error)
}

type Engine struct {
	store  *docstore.Store
	months MonthSource
	now    func() time.Time
	loc    *time.Location
	log    logging.Logger
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithLocation sets the zone weeks are computed in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option { return func(e *Engine) { e.loc = loc } }

func NewEngine(store *docstore.Store, src MonthSource, log logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		months: src,
		now:    time.Now,
		loc:    time.Local,
		log:    log.With("component", "allocation"),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// TotalAllocation sums the Friday counts of the configured months. Labels
// that do not parse count as zero.
func TotalAllocation(cfg months.Config) int {
	total := 0
	for _, label := range cfg.Months {
		m, err := months.ParseMonth(label)
		if err != nil {
			continue
		}
		total += months.FridayCount(m)
	}
	return total
}

type Summary struct {
	State           State
	Months          []string
	TotalAllocation int
	Used            int
	// Available may go negative if tokens were added outside the engine.
	Available int
	ThisWeek  *models.TokenRecord
}

func (e *Engine) summarize(snap *models.Snapshot, cfg months.Config, studentID string, now time.Time) Summary {
	total := TotalAllocation(cfg)
	used := len(snap.TokensByStudent(studentID))
	s := Summary{
		State:           StateOpen,
		Months:          cfg.Months,
		TotalAllocation: total,
		Used:            used,
		Available:       total - used,
	}

	start, end := WeekBounds(now, e.loc)
	if week := snap.TokensBetween(studentID, start, end); len(week) > 0 {
		s.ThisWeek = &week[0]
	}

	switch {
	case !cfg.Configured():
		s.State = StateDisabled
	case s.ThisWeek != nil:
		s.State = StateWeeklyLimit
	}
	return s
}

// Summary reports the student's allocation as of now.
func (e *Engine) Summary(ctx context.Context, studentID string) (Summary, error) {
	cfg, err := e.months.Get(ctx)
	if err != nil {
		return Summary{}, err
	}
	snap, err := e.store.Load(ctx)
	if err != nil {
		return Summary{}, err
	}
	return e.summarize(snap, cfg, studentID, e.now()), nil
}

// History lists the student's tokens, newest first.
func (e *Engine) History(ctx context.Context, studentID string) ([]models.TokenRecord, error) {
	snap, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := snap.TokensByStudent(studentID)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// Pending is a checked but not yet stored request.
type Pending struct {
	StudentID   string
	Month       string
	FoodType    models.FoodType
	RequestedAt time.Time
	closed      bool
}

func (e *Engine) check(snap *models.Snapshot, cfg months.Config, studentID, month string, now time.Time) error {
	u := snap.FindUserByID(studentID)
	if u == nil {
		return fmt.Errorf("student %s: %w", studentID, common.ErrNotFound)
	}
	if u.Role != models.RoleStudent {
		return common.ErrForbidden
	}

	s := e.summarize(snap, cfg, studentID, now)
	switch {
	case s.State == StateDisabled:
		return ErrAllocationDisabled
	case !cfg.Contains(month):
		return fmt.Errorf("%w: %q is not a configured month", common.ErrValidation, month)
	case s.State == StateWeeklyLimit:
		return ErrWeeklyLimit
	case s.Available <= 0:
		return ErrNoTokensLeft
	}
	return nil
}

// DefaultMonth is the label of the month containing now in the engine's zone.
func (e *Engine) DefaultMonth() string {
	return months.Of(e.now().In(e.loc)).String()
}

// Begin validates a request for month (the current month when empty) and
// food. Nothing is written.
func (e *Engine) Begin(ctx context.Context, studentID, month string, food models.FoodType) (*Pending, error) {
	if _, err := models.ParseFoodType(string(food)); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if month == "" {
		month = e.DefaultMonth()
	} else if m, err := months.ParseMonth(month); err == nil {
		month = m.String()
	}

	cfg, err := e.months.Get(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	now := e.now()
	if err := e.check(snap, cfg, studentID, month, now); err != nil {
		return nil, err
	}
	return &Pending{StudentID: studentID, Month: month, FoodType: food, RequestedAt: now}, nil
}

// Confirm re-checks the rules and stores the token. Name, dorm and room are
// copied from the student's current record.
func (e *Engine) Confirm(ctx context.Context, p *Pending) (*models.TokenRecord, error) {
	if p == nil || p.closed {
		return nil, ErrPendingClosed
	}

	cfg, err := e.months.Get(ctx)
	if err != nil {
		return nil, err
	}

	var rec models.TokenRecord
	err = e.store.Update(ctx, func(snap *models.Snapshot) error {
		now := e.now()
		if err := e.check(snap, cfg, p.StudentID, p.Month, now); err != nil {
			return err
		}
		u := snap.FindUserByID(p.StudentID)
		rec = models.TokenRecord{
			ID:          docstore.GenerateID(),
			Month:       p.Month,
			StudentID:   u.ID,
			StudentName: u.Name,
			DormName:    u.DormName,
			RoomNumber:  u.RoomNumber,
			Date:        now.UTC(),
			FoodType:    p.FoodType,
		}
		snap.Tokens = append(snap.Tokens, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.closed = true
	e.log.Info(ctx, "token reserved", "student_id", rec.StudentID, "month", rec.Month, "food", string(rec.FoodType))
	return &rec, nil
}

// Cancel discards p without writing.
func (e *Engine) Cancel(p *Pending) {
	if p != nil {
		p.closed = true
	}
}

// Reserve is Begin followed by Confirm.
func (e *Engine) Reserve(ctx context.Context, studentID, month string, food models.FoodType) (*models.TokenRecord, error) {
	p, err := e.Begin(ctx, studentID, month, food)
	if err != nil {
		return nil, err
	}
	return e.Confirm(ctx, p)
}
