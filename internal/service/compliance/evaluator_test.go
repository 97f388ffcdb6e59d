package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateItemEvidenceDominatesTiming(t *testing.T) {
	past := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Receipt number alone is proof of filing, whatever the clock says.
	assert.Equal(t, StatusCompliant, EvaluateItem(nil, "R123", "", 100, 15))
	assert.Equal(t, StatusCompliant, EvaluateItem(nil, "", "C456", 100, 15))
	assert.Equal(t, StatusCompliant, EvaluateItem(&past, "R123", "", 0, 3))
	assert.Equal(t, StatusCompliant, EvaluateItem(nil, "R123", "C456", -1, 0))
}

func TestEvaluateItemFiledAwaitingReceipt(t *testing.T) {
	filed := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, StatusSubmitted, EvaluateItem(&filed, "", "", 100, 15))
}

func TestEvaluateItemDeadlineWindow(t *testing.T) {
	tests := []struct {
		name         string
		daysElapsed  int
		deadlineDays int
		want         Status
	}{
		{"well before deadline", 5, 15, StatusPending},
		{"one day before deadline", 14, 15, StatusWarning},
		{"on deadline", 15, 15, StatusWarning},
		{"past deadline", 16, 15, StatusOverdue},
		{"long past deadline", 20, 15, StatusOverdue},
		{"short deadline breached", 4, 3, StatusOverdue},
		{"short deadline warning", 2, 3, StatusWarning},
		{"day of entry", 0, 3, StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateItem(nil, "", "", tt.daysElapsed, tt.deadlineDays))
		})
	}
}

func TestAggregateOverdueDominates(t *testing.T) {
	got := Aggregate([]Status{StatusCompliant, StatusWarning, StatusOverdue, StatusPending})
	assert.Equal(t, StatusOverdue, got)

	got = Aggregate([]Status{StatusOverdue})
	assert.Equal(t, StatusOverdue, got)
}

func TestAggregateWarningBeforeCompliant(t *testing.T) {
	got := Aggregate([]Status{StatusCompliant, StatusWarning, StatusCompliant})
	assert.Equal(t, StatusWarning, got)
}

func TestAggregateAllDone(t *testing.T) {
	assert.Equal(t, StatusCompliant, Aggregate([]Status{StatusCompliant, StatusApproved}))
	assert.Equal(t, StatusCompliant, Aggregate([]Status{StatusCompliant, StatusCompliant, StatusCompliant, StatusCompliant}))
}

func TestAggregateMixedIsPending(t *testing.T) {
	assert.Equal(t, StatusPending, Aggregate([]Status{StatusCompliant, StatusSubmitted}))
	assert.Equal(t, StatusPending, Aggregate([]Status{StatusPending, StatusPending}))
}

func TestAggregateEmptyIsPending(t *testing.T) {
	assert.Equal(t, StatusPending, Aggregate(nil))
	assert.Equal(t, StatusPending, Aggregate([]Status{}))
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysSince(time.Date(2024, 3, 15, 1, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 14, DaysSince(time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 20, DaysSince(time.Date(2024, 2, 24, 0, 0, 0, 0, time.UTC), now))
}
