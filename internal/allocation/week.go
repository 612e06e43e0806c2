package allocation

import (
	"time"

	"github.com/dmitrijs2005/tripti/internal/timex"
)

// WeekBounds returns the Sunday-to-Saturday week containing t, evaluated in
// loc: from Sunday 00:00 up to the last nanosecond of Saturday.
func WeekBounds(t time.Time, loc *time.Location) (start, end time.Time) {
	local := t.In(loc)
	start = timex.StartOfDay(local).AddDate(0, 0, -int(local.Weekday()))
	end = start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end
}
