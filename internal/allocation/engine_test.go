package allocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/tripti/internal/common"
	"github.com/dmitrijs2005/tripti/internal/docstore"
	"github.com/dmitrijs2005/tripti/internal/logging"
	"github.com/dmitrijs2005/tripti/internal/models"
	"github.com/dmitrijs2005/tripti/internal/months"
	"github.com/dmitrijs2005/tripti/internal/storage/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticMonths struct {
	cfg months.Config
	err error
}

func (s *staticMonths) Get(context.Context) (months.Config, error) { return s.cfg, s.err }

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

var spring = months.Config{Months: []string{"March 2025", "April 2025", "May 2025"}, Confirmed: true}

// Wednesday
var wed = time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)

type fixture struct {
	engine *Engine
	store  *docstore.Store
	months *staticMonths
	clock  *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := docstore.New(kv.NewMemoryRepository(), logging.Nop())
	src := &staticMonths{cfg: spring}
	c := &clock{t: wed}
	e := NewEngine(store, src, logging.Nop(), WithClock(c.Now), WithLocation(time.UTC))

	require.NoError(t, store.Save(context.Background(), &models.Snapshot{
		Users: []models.User{
			{ID: "s1", Name: "Alice", Email: "alice@g.bracu.ac.bd", DormName: "North Hall", RoomNumber: "204", Role: models.RoleStudent},
			{ID: "s2", Name: "Bob", Email: "bob@g.bracu.ac.bd", DormName: "South Hall", RoomNumber: "11", Role: models.RoleStudent},
			{ID: "a1", Name: "Warden", Email: "warden@bracu.ac.bd", Role: models.RoleAdmin},
		},
	}))
	return &fixture{engine: e, store: store, months: src, clock: c}
}

func (f *fixture) snapshot(t *testing.T) *models.Snapshot {
	t.Helper()
	snap, err := f.store.Load(context.Background())
	require.NoError(t, err)
	return snap
}

func TestWeekBounds(t *testing.T) {
	start, end := WeekBounds(wed, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 8, 23, 59, 59, 999999999, time.UTC), end)
	assert.Equal(t, time.Sunday, start.Weekday())
	assert.Equal(t, time.Saturday, end.Weekday())

	// Sunday is its own week start
	start, _ = WeekBounds(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), start)
}

func TestWeekBounds_UsesLocation(t *testing.T) {
	dhaka := time.FixedZone("BST", 6*3600)
	// Saturday 20:00 UTC is already Sunday 02:00 in Dhaka
	start, _ := WeekBounds(time.Date(2025, 3, 8, 20, 0, 0, 0, time.UTC), dhaka)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, dhaka), start)
}

func TestTotalAllocation(t *testing.T) {
	assert.Equal(t, 13, TotalAllocation(spring))
	assert.Equal(t, 0, TotalAllocation(months.Config{}))
	assert.Equal(t, 4, TotalAllocation(months.Config{Months: []string{"garbage", "March 2025"}}))
}

func TestSummary_FreshStudentSeesFullAllocation(t *testing.T) {
	f := newFixture(t)

	s, err := f.engine.Summary(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, StateOpen, s.State)
	assert.Equal(t, 13, s.TotalAllocation)
	assert.Equal(t, 13, s.Available)
	assert.Zero(t, s.Used)
	assert.Nil(t, s.ThisWeek)
}

func TestSummary_DisabledWithoutMonths(t *testing.T) {
	f := newFixture(t)
	f.months.cfg = months.Config{}

	s, err := f.engine.Summary(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, StateDisabled, s.State)
	assert.Equal(t, "disabled", s.State.String())

	_, err = f.engine.Begin(context.Background(), "s1", "", models.FoodBeef)
	require.ErrorIs(t, err, ErrAllocationDisabled)
}

func TestReserve_StoresDenormalizedRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.engine.Reserve(ctx, "s1", "", models.FoodChicken)
	require.NoError(t, err)
	assert.Equal(t, "March 2025", rec.Month)
	assert.Equal(t, wed, rec.Date)

	snap := f.snapshot(t)
	require.Len(t, snap.Tokens, 1)
	u := snap.FindUserByID("s1")
	tok := snap.Tokens[0]
	assert.Equal(t, u.Name, tok.StudentName)
	assert.Equal(t, u.DormName, tok.DormName)
	assert.Equal(t, u.RoomNumber, tok.RoomNumber)
	assert.Equal(t, models.FoodChicken, tok.FoodType)

	s, err := f.engine.Summary(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StateWeeklyLimit, s.State)
	assert.Equal(t, 12, s.Available)
	require.NotNil(t, s.ThisWeek)
	assert.Equal(t, rec.ID, s.ThisWeek.ID)
}

func TestWeeklyLimit_WholeWeekThenNextWeek(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Reserve(ctx, "s1", "March 2025", models.FoodFish)
	require.NoError(t, err)

	start, end := WeekBounds(wed, time.UTC)
	for _, at := range []time.Time{start, wed.Add(time.Hour), end} {
		f.clock.t = at
		_, err := f.engine.Begin(ctx, "s1", "March 2025", models.FoodBeef)
		require.ErrorIs(t, err, ErrWeeklyLimit, at.String())
	}

	// another student is unaffected
	f.clock.t = wed
	_, err = f.engine.Reserve(ctx, "s2", "March 2025", models.FoodBeef)
	require.NoError(t, err)

	f.clock.t = end.Add(time.Second)
	_, err = f.engine.Reserve(ctx, "s1", "March 2025", models.FoodBeef)
	require.NoError(t, err)
}

func TestConfirm_RechecksAtWriteTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1, err := f.engine.Begin(ctx, "s1", "March 2025", models.FoodBeef)
	require.NoError(t, err)
	p2, err := f.engine.Begin(ctx, "s1", "March 2025", models.FoodMutton)
	require.NoError(t, err)

	_, err = f.engine.Confirm(ctx, p1)
	require.NoError(t, err)

	_, err = f.engine.Confirm(ctx, p2)
	require.ErrorIs(t, err, ErrWeeklyLimit)
	assert.Len(t, f.snapshot(t).Tokens, 1)
}

func TestPending_CancelAndDoubleConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.engine.Begin(ctx, "s1", "march 2025", models.FoodBeef)
	require.NoError(t, err)
	assert.Equal(t, "March 2025", p.Month)

	f.engine.Cancel(p)
	_, err = f.engine.Confirm(ctx, p)
	require.ErrorIs(t, err, ErrPendingClosed)
	assert.Empty(t, f.snapshot(t).Tokens)

	p, err = f.engine.Begin(ctx, "s1", "March 2025", models.FoodBeef)
	require.NoError(t, err)
	_, err = f.engine.Confirm(ctx, p)
	require.NoError(t, err)
	_, err = f.engine.Confirm(ctx, p)
	require.ErrorIs(t, err, ErrPendingClosed)

	_, err = f.engine.Confirm(ctx, nil)
	require.ErrorIs(t, err, ErrPendingClosed)
}

func TestBegin_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Begin(ctx, "s1", "March 2025", models.FoodType("tofu"))
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = f.engine.Begin(ctx, "s1", "June 2025", models.FoodBeef)
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = f.engine.Begin(ctx, "a1", "March 2025", models.FoodBeef)
	require.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.engine.Begin(ctx, "ghost", "March 2025", models.FoodBeef)
	require.ErrorIs(t, err, common.ErrNotFound)

	// current month (July) outside the configured set
	f.clock.t = time.Date(2025, 7, 2, 9, 0, 0, 0, time.UTC)
	_, err = f.engine.Begin(ctx, "s1", "", models.FoodBeef)
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestBegin_NoTokensLeft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.months.cfg = months.Config{Months: []string{"March 2025"}, Confirmed: true}

	err := f.store.Update(ctx, func(snap *models.Snapshot) error {
		for i := 0; i < 4; i++ {
			snap.Tokens = append(snap.Tokens, models.TokenRecord{
				ID: docstore.GenerateID(), StudentID: "s1", Month: "March 2025",
				Date: time.Date(2025, 2, 1+i, 0, 0, 0, 0, time.UTC),
			})
		}
		return nil
	})
	require.NoError(t, err)

	_, err = f.engine.Begin(ctx, "s1", "March 2025", models.FoodBeef)
	require.ErrorIs(t, err, ErrNoTokensLeft)
}

func TestMonthSourceErrorPropagates(t *testing.T) {
	f := newFixture(t)
	f.months.err = errors.New("storage offline")

	_, err := f.engine.Summary(context.Background(), "s1")
	require.ErrorContains(t, err, "storage offline")
	_, err = f.engine.Reserve(context.Background(), "s1", "", models.FoodBeef)
	require.ErrorContains(t, err, "storage offline")
}

func TestHistory_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Reserve(ctx, "s1", "March 2025", models.FoodBeef)
	require.NoError(t, err)
	f.clock.t = wed.AddDate(0, 0, 7)
	second, err := f.engine.Reserve(ctx, "s1", "March 2025", models.FoodFish)
	require.NoError(t, err)

	h, err := f.engine.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, second.ID, h[0].ID)

	h, err = f.engine.History(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, h)
}
