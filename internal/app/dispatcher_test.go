package app

import (
	"context"
	"testing"
	"time"

	"facilitator_activity_tracker/internal/domain/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher() (*Dispatcher, *fakeQueue, *fakeQueue, *memLogStore) {
	decision := &fakeQueue{}
	delivery := &fakeQueue{}
	logStore := &memLogStore{}
	return NewDispatcher(decision, delivery, logStore, 0, 0), decision, delivery, logStore
}

func TestQueueEmail(t *testing.T) {
	d, decision, delivery, logStore := newTestDispatcher()

	err := d.QueueEmail(context.Background(), EmailPayload{
		To:            "fac@example.edu",
		Name:          "Ada",
		Subject:       "Weekly reminder",
		Body:          "hello",
		FacilitatorID: 7,
		AllocationID:  42,
		WeekNumber:    3,
	}, EmailOptions{})
	require.NoError(t, err)

	require.Empty(t, decision.published)
	require.Len(t, delivery.published, 1)

	job := delivery.published[0]
	assert.Equal(t, notification.KindSendEmail, job.Kind)
	assert.Equal(t, DefaultEmailAttempts, job.MaxAttempts)
	assert.Equal(t, "fac@example.edu", job.GetString("to"))
	assert.Equal(t, "Weekly reminder", job.GetString("subject"))
	assert.EqualValues(t, 7, job.GetInt64("facilitator_id"))
	assert.True(t, job.ExecuteAt.IsZero(), "no delay requested")

	// Enqueue leaves a "queued" trace.
	recent, err := logStore.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, notification.LogStatusQueued, recent[0].Status)
	assert.Equal(t, "fac@example.edu", recent[0].Recipient)
}

func TestQueueEmailWithDelayAndAttempts(t *testing.T) {
	d, _, delivery, _ := newTestDispatcher()

	before := time.Now()
	err := d.QueueEmail(context.Background(), EmailPayload{To: "a@b.c"}, EmailOptions{
		Delay:    time.Hour,
		Attempts: 5,
	})
	require.NoError(t, err)

	job := delivery.published[0]
	assert.Equal(t, 5, job.MaxAttempts)
	assert.True(t, job.ExecuteAt.After(before.Add(59*time.Minute)))
}

func TestQueueFacilitatorReminder(t *testing.T) {
	d, decision, delivery, _ := newTestDispatcher()

	err := d.QueueFacilitatorReminder(context.Background(), 7, 3, 42, 0)
	require.NoError(t, err)

	require.Empty(t, delivery.published, "reminders go through the decision stage first")
	require.Len(t, decision.published, 1)

	job := decision.published[0]
	assert.Equal(t, notification.KindFacilitatorReminder, job.Kind)
	assert.Equal(t, DefaultDecisionAttempts, job.MaxAttempts)
	assert.EqualValues(t, 7, job.GetInt64("facilitator_id"))
	assert.EqualValues(t, 3, job.GetInt64("week_number"))
	assert.EqualValues(t, 42, job.GetInt64("allocation_id"))
}

func TestQueueManagerAlert(t *testing.T) {
	d, decision, _, _ := newTestDispatcher()

	err := d.QueueManagerAlert(context.Background(), notification.AlertOverdueSubmission, map[string]any{"total_overdue": 4}, 0)
	require.NoError(t, err)

	require.Len(t, decision.published, 1)
	job := decision.published[0]
	assert.Equal(t, notification.KindManagerAlert, job.Kind)
	assert.Equal(t, string(notification.AlertOverdueSubmission), job.GetString("alert_type"))

	data, ok := job.Data["alert_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 4, data["total_overdue"])
}
