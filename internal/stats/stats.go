// Package stats computes the administrator's token statistics. Everything is
// recomputed from the stored document on every call.
package stats

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/tripti/internal/allocation"
	"github.com/dmitrijs2005/tripti/internal/docstore"
	"github.com/dmitrijs2005/tripti/internal/models"
)

// DefaultMonthlyCapacity is the kitchen's token capacity per month.
const DefaultMonthlyCapacity = 400

type MonthStat struct {
	Month     string
	Total     int
	Used      int
	Remaining int
}

// StudentRow is one line of the admin student table.
type StudentRow struct {
	ID         string
	Name       string
	Email      string
	DormName   string
	RoomNumber string
	Used       int
	Available  int
}

type Aggregator struct {
	store    *docstore.Store
	months   allocation.MonthSource
	capacity int
}

func NewAggregator(store *docstore.Store, src allocation.MonthSource, capacity int) *Aggregator {
	if capacity <= 0 {
		capacity = DefaultMonthlyCapacity
	}
	return &Aggregator{store: store, months: src, capacity: capacity}
}

// Total is the capacity of a single month.
func (a *Aggregator) Total() int { return a.capacity }

// Used counts the tokens stored for month.
func (a *Aggregator) Used(ctx context.Context, month string) (int, error) {
	snap, err := a.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(snap.TokensByMonth(month)), nil
}

func (a *Aggregator) Remaining(ctx context.Context, month string) (int, error) {
	used, err := a.Used(ctx, month)
	if err != nil {
		return 0, err
	}
	return a.capacity - used, nil
}

// PerMonth reports each configured month in configured order.
func (a *Aggregator) PerMonth(ctx context.Context) ([]MonthStat, error) {
	cfg, err := a.months.Get(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]MonthStat, 0, len(cfg.Months))
	for _, m := range cfg.Months {
		used := len(snap.TokensByMonth(m))
		out = append(out, MonthStat{
			Month:     m,
			Total:     a.capacity,
			Used:      used,
			Remaining: a.capacity - used,
		})
	}
	return out, nil
}

// PerFoodType counts tokens by food across all months. Every food type is
// present in the result, tokens without one are counted as untagged.
func (a *Aggregator) PerFoodType(ctx context.Context) (map[models.FoodType]int, error) {
	snap, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[models.FoodType]int, len(models.FoodTypes)+1)
	for _, f := range models.FoodTypes {
		out[f] = 0
	}
	out[models.FoodUntagged] = 0

	for _, t := range snap.Tokens {
		f := t.FoodType
		if _, ok := out[f]; !ok {
			f = models.FoodUntagged
		}
		out[f]++
	}
	return out, nil
}

func (a *Aggregator) PerStudent(ctx context.Context, studentID string) (int, error) {
	snap, err := a.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(snap.TokensByStudent(studentID)), nil
}

// StudentRows lists every student sorted by name, with tokens used and
// still available under the current month configuration.
func (a *Aggregator) StudentRows(ctx context.Context) ([]StudentRow, error) {
	cfg, err := a.months.Get(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	total := allocation.TotalAllocation(cfg)
	students := snap.UsersByRole(models.RoleStudent)
	rows := make([]StudentRow, 0, len(students))
	for _, u := range students {
		used := len(snap.TokensByStudent(u.ID))
		rows = append(rows, StudentRow{
			ID:         u.ID,
			Name:       u.Name,
			Email:      u.Email,
			DormName:   u.DormName,
			RoomNumber: u.RoomNumber,
			Used:       used,
			Available:  total - used,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}
