package leaderboard

import "time"

// dayAnchorHour is when a collection day rolls over. Evening collection runs
// regularly spill past midnight, so the day boundary sits at 03:00 local.
const dayAnchorHour = 3

// DayWindow returns the collection-day window containing now, as UTC bounds
// with [start, end) semantics. A donation stamped exactly at the boundary
// belongs to the window that starts there. The window is built from civil
// time in loc, so it stays aligned across daylight-saving transitions.
func DayWindow(now time.Time, loc *time.Location) (start, end time.Time) {
	local := now.In(loc)
	year, month, day := local.Date()
	if local.Hour() < dayAnchorHour {
		year, month, day = local.AddDate(0, 0, -1).Date()
	}
	start = time.Date(year, month, day, dayAnchorHour, 0, 0, 0, loc)
	end = time.Date(year, month, day+1, dayAnchorHour, 0, 0, 0, loc)
	return start.UTC(), end.UTC()
}
