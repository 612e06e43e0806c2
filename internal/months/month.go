package months

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripti/internal/common"
	"github.com/dmitrijs2005/tripti/internal/timex"
)

// Month is a calendar month, rendered as "January 2025".
type Month struct {
	Year  int
	Month time.Month
}

func Of(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// AddMonths moves n months forward (or back for negative n).
func (m Month) AddMonths(n int) Month {
	return Of(time.Date(m.Year, m.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC))
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return timex.DaysIn(m.Year, m.Month)
}

// ParseMonth accepts "<MonthName> <Year>" with any letter case and returns
// the canonical Month.
func ParseMonth(label string) (Month, error) {
	parts := strings.Fields(label)
	if len(parts) != 2 {
		return Month{}, fmt.Errorf("%w: month %q must look like \"January 2025\"", common.ErrValidation, label)
	}

	year, err := strconv.Atoi(parts[1])
	if err != nil || year < 1 || year > 9999 {
		return Month{}, fmt.Errorf("%w: bad year in %q", common.ErrValidation, label)
	}

	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), parts[0]) {
			return Month{Year: year, Month: m}, nil
		}
	}
	return Month{}, fmt.Errorf("%w: bad month name in %q", common.ErrValidation, label)
}

// FridayCount counts the Fridays in m by walking every day of the month.
func FridayCount(m Month) int {
	n := 0
	for d := 1; d <= m.Days(); d++ {
		if time.Date(m.Year, m.Month, d, 12, 0, 0, 0, time.UTC).Weekday() == time.Friday {
			n++
		}
	}
	return n
}

// SelectableMonths lists the month containing now and the eleven after it.
func SelectableMonths(now time.Time) []string {
	cur := Of(now)
	out := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		out = append(out, cur.AddMonths(i).String())
	}
	return out
}
