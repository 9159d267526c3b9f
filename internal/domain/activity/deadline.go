package activity

import "time"

const (
	// nominalWeek is the length of a teaching week.
	nominalWeek = 7 * 24 * time.Hour
	// gracePeriod is the submission grace period past the end of a week.
	gracePeriod = 2 * 24 * time.Hour
)

// Deadline returns the submission deadline for the given week of an offering
// that started on startDate: start of the week plus seven nominal days plus
// two days of grace. The anchor is the offering's immutable start date, so
// the same (startDate, week) pair always maps to the same instant.
func Deadline(startDate time.Time, weekNumber int) time.Time {
	weekStart := startDate.Add(time.Duration(weekNumber-1) * nominalWeek)
	return weekStart.Add(nominalWeek + gracePeriod)
}

// IsOverdue is the single lateness predicate used everywhere: a record is
// overdue iff it has not been submitted and the reference instant is past
// the deadline for its week. Both the instance-level check and the overdue
// scanner apply this same definition.
func IsOverdue(submittedAt *time.Time, startDate time.Time, weekNumber int, now time.Time) bool {
	if submittedAt != nil {
		return false
	}
	return now.After(Deadline(startDate, weekNumber))
}

// IsDueWithin reports whether an unsubmitted record's deadline falls inside
// (now, now+window]. Overdue records are excluded; they are the daily job's
// concern, not the approaching-deadline reminder's.
func IsDueWithin(submittedAt *time.Time, startDate time.Time, weekNumber int, now time.Time, window time.Duration) bool {
	if submittedAt != nil {
		return false
	}
	d := Deadline(startDate, weekNumber)
	return d.After(now) && !d.After(now.Add(window))
}
