package scheduler

import (
	"context"
	"strconv"
	"time"

	"facilitator_activity_tracker/internal/app"
	"facilitator_activity_tracker/internal/domain/notification"
	"facilitator_activity_tracker/internal/infra/logger"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DeadlineScheduler drives the recurring compliance jobs: a daily overdue
// scan and a weekly approaching-deadline scan. Job bodies only enqueue
// notification work; the queues own retries and history.
type DeadlineScheduler struct {
	cronEngine *cron.Cron
	tracker    *app.TrackerService
	dispatcher *app.Dispatcher

	cronSpecDailyOverdue   string // e.g. "0 9 * * *"
	cronSpecWeeklyReminder string // e.g. "0 10 * * 1"
	dueSoonWindow          time.Duration
}

func NewDeadlineScheduler(
	tracker *app.TrackerService,
	dispatcher *app.Dispatcher,
	cronSpecDailyOverdue string,
	cronSpecWeeklyReminder string,
	dueSoonWindow time.Duration,
) *DeadlineScheduler {
	return &DeadlineScheduler{
		cronEngine:             cron.New(cron.WithLocation(time.Local)),
		tracker:                tracker,
		dispatcher:             dispatcher,
		cronSpecDailyOverdue:   cronSpecDailyOverdue,
		cronSpecWeeklyReminder: cronSpecWeeklyReminder,
		dueSoonWindow:          dueSoonWindow,
	}
}

func (s *DeadlineScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpecDailyOverdue, func() {
		logger.Log.Info("Cron job triggered: daily overdue scan")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.RunOverdueScan(ctx); err != nil {
			logger.Log.Errorf("Daily overdue scan failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	_, err = s.cronEngine.AddFunc(s.cronSpecWeeklyReminder, func() {
		logger.Log.Info("Cron job triggered: weekly approaching-deadline scan")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.RunDueSoonScan(ctx); err != nil {
			logger.Log.Errorf("Weekly approaching-deadline scan failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	logger.Log.WithFields(logrus.Fields{
		"daily_overdue":   s.cronSpecDailyOverdue,
		"weekly_reminder": s.cronSpecWeeklyReminder,
	}).Info("Deadline scheduler started")
	return nil
}

// RunOverdueScan enqueues one reminder per overdue record and a single
// manager alert summarising the counts per facilitator.
func (s *DeadlineScheduler) RunOverdueScan(ctx context.Context) error {
	overdue, err := s.tracker.FindOverdue(ctx)
	if err != nil {
		return err
	}
	if len(overdue) == 0 {
		logger.Log.Info("Overdue scan found nothing outstanding")
		return nil
	}

	perFacilitator := make(map[int64]int)
	for _, t := range overdue {
		perFacilitator[t.Record.FacilitatorID]++
		if err := s.dispatcher.QueueFacilitatorReminder(ctx, t.Record.FacilitatorID, t.Record.WeekNumber, t.Record.AllocationID, 0); err != nil {
			logger.Log.Errorf("Failed to queue overdue reminder for record %d: %v", t.Record.ID, err)
		}
	}

	counts := make(map[string]any, len(perFacilitator))
	for id, n := range perFacilitator {
		counts[fmtID(id)] = n
	}
	data := map[string]any{
		"total_overdue":             len(overdue),
		"overdue_per_facilitator":   counts,
		"facilitators_with_overdue": len(perFacilitator),
	}
	if err := s.dispatcher.QueueManagerAlert(ctx, notification.AlertOverdueSubmission, data, 0); err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"records":      len(overdue),
		"facilitators": len(perFacilitator),
	}).Info("Overdue scan queued notifications")
	return nil
}

// RunDueSoonScan enqueues a reminder per record whose deadline falls inside
// the due-soon window, plus one manager alert when any exist.
func (s *DeadlineScheduler) RunDueSoonScan(ctx context.Context) error {
	dueSoon, err := s.tracker.FindDueWithin(ctx, s.dueSoonWindow)
	if err != nil {
		return err
	}
	if len(dueSoon) == 0 {
		logger.Log.Info("Approaching-deadline scan found nothing due soon")
		return nil
	}

	for _, t := range dueSoon {
		if err := s.dispatcher.QueueFacilitatorReminder(ctx, t.Record.FacilitatorID, t.Record.WeekNumber, t.Record.AllocationID, 0); err != nil {
			logger.Log.Errorf("Failed to queue due-soon reminder for record %d: %v", t.Record.ID, err)
		}
	}

	data := map[string]any{
		"total_due_soon": len(dueSoon),
		"window_hours":   int(s.dueSoonWindow.Hours()),
	}
	if err := s.dispatcher.QueueManagerAlert(ctx, notification.AlertDeadlineApproaching, data, 0); err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{"records": len(dueSoon)}).Info("Approaching-deadline scan queued notifications")
	return nil
}

func (s *DeadlineScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	logger.Log.Info("Deadline scheduler stopped")
}

func fmtID(id int64) string {
	return "facilitator_" + strconv.FormatInt(id, 10)
}
