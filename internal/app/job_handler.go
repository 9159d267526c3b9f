package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"facilitator_activity_tracker/internal/domain/allocation"
	"facilitator_activity_tracker/internal/domain/email"
	"facilitator_activity_tracker/internal/domain/notification"
	"facilitator_activity_tracker/internal/domain/staff"
	"facilitator_activity_tracker/internal/domain/telegram"
	"facilitator_activity_tracker/internal/infra/logger"
)

// JobHandler executes queued notification jobs. Decision jobs (reminders,
// alerts) resolve their recipients against the database at processing time
// and spawn send-email jobs; delivery jobs push a message through the email
// transport. An error return hands the job back to the queue's retry
// machinery.
type JobHandler struct {
	staff       staff.Repository
	allocations allocation.Repository
	transport   email.Transport
	dispatcher  *Dispatcher
	logStore    notification.LogStore
	telegram    telegram.Client // nil when the channel is not configured
}

func NewJobHandler(
	staffRepo staff.Repository,
	allocations allocation.Repository,
	transport email.Transport,
	dispatcher *Dispatcher,
	logStore notification.LogStore,
	tg telegram.Client,
) *JobHandler {
	return &JobHandler{
		staff:       staffRepo,
		allocations: allocations,
		transport:   transport,
		dispatcher:  dispatcher,
		logStore:    logStore,
		telegram:    tg,
	}
}

// HandleDecision processes jobs from the decision queue.
func (h *JobHandler) HandleDecision(job *notification.Job) error {
	ctx := context.Background()
	switch job.Kind {
	case notification.KindFacilitatorReminder:
		return h.handleFacilitatorReminder(ctx, job)
	case notification.KindManagerAlert:
		return h.handleManagerAlert(ctx, job)
	default:
		return fmt.Errorf("unknown decision job kind %q", job.Kind)
	}
}

// HandleDelivery processes jobs from the delivery queue.
func (h *JobHandler) HandleDelivery(job *notification.Job) error {
	if job.Kind != notification.KindSendEmail {
		return fmt.Errorf("unknown delivery job kind %q", job.Kind)
	}
	return h.handleSendEmail(context.Background(), job)
}

func (h *JobHandler) handleSendEmail(ctx context.Context, job *notification.Job) error {
	msg := &email.Message{
		To:      job.GetString("to"),
		Name:    job.GetString("name"),
		Subject: job.GetString("subject"),
		Body:    job.GetString("body"),
	}
	if msg.To == "" {
		return fmt.Errorf("send-email job %s has no recipient", job.ID)
	}

	messageID, err := h.transport.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}

	h.log(ctx, &notification.LogEntry{
		Type:          notification.KindSendEmail,
		Recipient:     msg.To,
		Subject:       msg.Subject,
		Status:        notification.LogStatusSent,
		MessageID:     messageID,
		FacilitatorID: job.GetInt64("facilitator_id"),
		AllocationID:  job.GetInt64("allocation_id"),
		WeekNumber:    int(job.GetInt64("week_number")),
	})
	return nil
}

// handleFacilitatorReminder resolves the facilitator and offering named by
// the job and spawns one send-email job. A missing facilitator or offering
// fails the job the same way a transport error would.
func (h *JobHandler) handleFacilitatorReminder(ctx context.Context, job *notification.Job) error {
	facilitatorID := job.GetInt64("facilitator_id")
	allocationID := job.GetInt64("allocation_id")
	weekNumber := int(job.GetInt64("week_number"))

	f, err := h.staff.GetFacilitatorByID(ctx, facilitatorID)
	if err != nil {
		return fmt.Errorf("failed to resolve facilitator %d: %w", facilitatorID, err)
	}
	alloc, err := h.allocations.GetByID(ctx, allocationID)
	if err != nil {
		return fmt.Errorf("failed to resolve allocation %d: %w", allocationID, err)
	}

	subject, body := buildReminderMessage(f, alloc, weekNumber)
	return h.dispatcher.QueueEmail(ctx, EmailPayload{
		To:            f.Email,
		Name:          f.FullName(),
		Subject:       subject,
		Body:          body,
		FacilitatorID: f.ID,
		AllocationID:  alloc.ID,
		WeekNumber:    weekNumber,
	}, EmailOptions{})
}

// handleManagerAlert fans the alert out to every manager active at this
// moment: one send-email job each, plus a best-effort Telegram message for
// managers with a chat id.
func (h *JobHandler) handleManagerAlert(ctx context.Context, job *notification.Job) error {
	alertType := notification.AlertType(job.GetString("alert_type"))
	data, _ := job.Data["alert_data"].(map[string]any)

	managers, err := h.staff.ListActiveManagers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active managers: %w", err)
	}

	subject, body := buildAlertMessage(alertType, data)
	for _, m := range managers {
		if err := h.dispatcher.QueueEmail(ctx, EmailPayload{
			To:      m.Email,
			Name:    m.FullName(),
			Subject: subject,
			Body:    body,
		}, EmailOptions{}); err != nil {
			return err
		}

		if h.telegram != nil && m.TelegramChatID.Valid {
			if err := h.telegram.SendMessage(m.TelegramChatID.Int64, subject+"\n\n"+body, nil); err != nil {
				logger.Log.Warnf("Failed to send telegram alert to manager %d: %v", m.ID, err)
			}
		}
	}
	return nil
}

func (h *JobHandler) log(ctx context.Context, entry *notification.LogEntry) {
	if err := h.logStore.Append(ctx, entry); err != nil {
		logger.Log.Errorf("Failed to write notification log entry: %v", err)
	}
}

func buildReminderMessage(f *staff.Facilitator, alloc *allocation.Allocation, weekNumber int) (subject, body string) {
	offering := fmt.Sprintf("%s (%s, %s)", alloc.ModuleName, alloc.CohortName, alloc.ClassName)
	subject = fmt.Sprintf("Reminder: week %d activity log for %s", weekNumber, alloc.ModuleName)
	body = fmt.Sprintf(
		"Hi %s,\n\nYour week %d activity log for %s has not been submitted yet.\nPlease complete and submit it before the deadline.\n",
		f.FullName(), weekNumber, offering,
	)
	return subject, body
}

func buildAlertMessage(alertType notification.AlertType, data map[string]any) (subject, body string) {
	switch alertType {
	case notification.AlertOverdueSubmission:
		subject = "Overdue activity submissions"
	case notification.AlertDeadlineApproaching:
		subject = "Activity submissions due soon"
	case notification.AlertLateSubmission:
		subject = "Late activity submission"
	default:
		subject = fmt.Sprintf("Activity tracker alert: %s", alertType)
	}

	var b strings.Builder
	b.WriteString(subject + ".\n\n")
	if len(data) > 0 {
		// Details render as indented JSON; the payload shape varies per alert.
		if pretty, err := json.MarshalIndent(data, "", "  "); err == nil {
			b.Write(pretty)
			b.WriteString("\n")
		}
	}
	return subject, b.String()
}
