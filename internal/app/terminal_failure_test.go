package app

import (
	"context"
	"fmt"
	"testing"

	"facilitator_activity_tracker/internal/domain/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalFailureLogger(t *testing.T) {
	store := &memLogStore{}
	onFail := TerminalFailureLogger(store)

	job := &notification.Job{
		ID:   "j1",
		Kind: notification.KindSendEmail,
		Data: map[string]any{
			"to":             "ada@example.edu",
			"subject":        "Weekly reminder",
			"facilitator_id": int64(7),
			"allocation_id":  int64(42),
			"week_number":    int64(3),
		},
		Attempts:    3,
		MaxAttempts: 3,
	}
	onFail(job, fmt.Errorf("smtp connection refused"))

	recent, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	entry := recent[0]
	assert.Equal(t, notification.LogStatusFailed, entry.Status)
	assert.Equal(t, notification.KindSendEmail, entry.Type)
	assert.Equal(t, "ada@example.edu", entry.Recipient)
	assert.Equal(t, "Weekly reminder", entry.Subject)
	assert.EqualValues(t, 7, entry.FacilitatorID)
	assert.EqualValues(t, 42, entry.AllocationID)
	assert.Equal(t, 3, entry.WeekNumber)
	assert.Contains(t, entry.Error, "smtp connection refused")
}
