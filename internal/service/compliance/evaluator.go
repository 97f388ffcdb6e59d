// Package compliance holds the pure status evaluators shared by the filing
// stores. Nothing here touches the database; both functions are deterministic
// over their inputs so the deadline rules can be tested in isolation.
package compliance

import "time"

// Status is a derived compliance state for a deadline-bound item or record.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusWarning   Status = "WARNING"
	StatusOverdue   Status = "OVERDUE"
	StatusSubmitted Status = "SUBMITTED"
	StatusCompliant Status = "COMPLIANT"
	StatusApproved  Status = "APPROVED"
)

// EvaluateItem computes the status of one tracked submission.
//
// Evidence outranks timing: a receipt or certificate number alone counts as
// proof of timely filing even when the date field was never entered. This is
// the agency's deliberate leniency toward data-entry gaps, not an oversight.
// The window gives one day of slack before the deadline becomes a breach.
func EvaluateItem(evidenceDate *time.Time, receiptNo, certNo string, daysElapsed, deadlineDays int) Status {
	switch {
	case certNo != "" || receiptNo != "":
		return StatusCompliant
	case evidenceDate != nil:
		return StatusSubmitted
	case daysElapsed > deadlineDays:
		return StatusOverdue
	case daysElapsed >= deadlineDays-1:
		return StatusWarning
	default:
		return StatusPending
	}
}

// Aggregate folds per-item statuses into one overall status. Any breach
// dominates, then any near-breach; everything filed and accepted is
// compliant; an empty list certifies nothing and stays PENDING.
func Aggregate(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusPending
	}

	allDone := true
	for _, s := range statuses {
		if s == StatusOverdue {
			return StatusOverdue
		}
		if s != StatusCompliant && s != StatusApproved {
			allDone = false
		}
	}
	for _, s := range statuses {
		if s == StatusWarning {
			return StatusWarning
		}
	}
	if allDone {
		return StatusCompliant
	}
	return StatusPending
}

// DaysSince returns whole calendar days between a date and now, both
// truncated to local midnight. Entry on day N counts as 0 days elapsed.
func DaysSince(from, now time.Time) int {
	fy, fm, fd := from.Date()
	ny, nm, nd := now.Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(n.Sub(f).Hours() / 24)
}
