package cache

import (
	"time"
)

// DefaultLocation is the zone the daily refresh boundary is computed in.
const DefaultLocation = "Asia/Tokyo"

// TimeUntilNext8AM は now から見て次の午前8時（loc基準）までの期間を返します。
// loc が nil の場合は UTC を使います。
func TimeUntilNext8AM(now time.Time, loc *time.Location) time.Duration {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	next8am := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, loc)

	// 今日の午前8時を過ぎていれば翌日
	if !now.Before(next8am) {
		next8am = next8am.AddDate(0, 0, 1)
	}

	return next8am.Sub(now)
}

// UntilNext8AM returns a TTL function bound to the named zone.
// An unknown zone falls back to UTC.
func UntilNext8AM(zone string) func() time.Duration {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
	}
	return func() time.Duration {
		return TimeUntilNext8AM(time.Now(), loc)
	}
}
