package attendance

import "github.com/clockwise-hq/attendance-backend-go/internal/domain/schedule"

// ClassifyEntry classifies an observed entry punch against the scheduled
// entry time. Early arrival is never penalized on the write path: anything
// at or before the grace limit is ON_TIME.
func ClassifyEntry(scheduled schedule.MinuteOfDay, toleranceMinutes int, observed schedule.MinuteOfDay) Category {
	if observed > scheduled+schedule.MinuteOfDay(toleranceMinutes) {
		return CategoryLate
	}
	return CategoryOnTime
}

// ClassifyExit classifies an observed exit punch. Unlike entries the band
// is symmetric: leaving before scheduled-tolerance is an EARLY anomaly.
func ClassifyExit(scheduled schedule.MinuteOfDay, toleranceMinutes int, observed schedule.MinuteOfDay) Category {
	tol := schedule.MinuteOfDay(toleranceMinutes)
	switch {
	case observed < scheduled-tol:
		return CategoryEarly
	case observed > scheduled+tol:
		return CategoryLate
	default:
		return CategoryOnTime
	}
}

// BucketArrival is the aggregation-path arrival bucketing. The dashboard
// counts arrivals before the scheduled time into a separate EARLY bucket,
// while the write path (ClassifyEntry) folds them into ON_TIME. The two
// call sites intentionally disagree; unifying them would silently change
// dashboard counts.
func BucketArrival(scheduled schedule.MinuteOfDay, toleranceMinutes int, observed schedule.MinuteOfDay) Category {
	if observed < scheduled {
		return CategoryEarly
	}
	return ClassifyEntry(scheduled, toleranceMinutes, observed)
}
