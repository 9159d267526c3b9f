package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"facilitator_activity_tracker/internal/app"
	"facilitator_activity_tracker/internal/domain/activity"
	"facilitator_activity_tracker/internal/domain/allocation"
	"facilitator_activity_tracker/internal/domain/notification"
	idb "facilitator_activity_tracker/internal/infra/database"
	"facilitator_activity_tracker/internal/infra/logger"

	"github.com/gin-gonic/gin"
)

// RecordHandler serves the weekly activity record endpoints.
type RecordHandler struct {
	tracker     *app.TrackerService
	dispatcher  *app.Dispatcher
	allocations allocation.Repository
}

func NewRecordHandler(tracker *app.TrackerService, dispatcher *app.Dispatcher, allocations allocation.Repository) *RecordHandler {
	return &RecordHandler{tracker: tracker, dispatcher: dispatcher, allocations: allocations}
}

type createRecordRequest struct {
	AllocationID  int64  `json:"allocation_id" binding:"required"`
	FacilitatorID int64  `json:"facilitator_id" binding:"required"`
	WeekNumber    int    `json:"week_number" binding:"required,min=1"`
	Attendance    []bool `json:"attendance"`
	Notes         string `json:"notes"`
}

type updateRecordRequest struct {
	AttendanceMonitoring *string `json:"attendance_monitoring"`
	FormOneGrading       *string `json:"form_one_grading"`
	FormTwoGrading       *string `json:"form_two_grading"`
	SummativeGrading     *string `json:"summative_grading"`
	CourseModeration     *string `json:"course_moderation"`
	IntranetSync         *string `json:"intranet_sync"`
	Attendance           []bool  `json:"attendance"`
	Notes                *string `json:"notes"`
}

type recordResponse struct {
	ID            int64      `json:"id"`
	AllocationID  int64      `json:"allocation_id"`
	FacilitatorID int64      `json:"facilitator_id"`
	WeekNumber    int        `json:"week_number"`
	Tasks         gin.H      `json:"tasks"`
	Attendance    []bool     `json:"attendance"`
	Notes         string     `json:"notes"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toRecordResponse(rec *activity.Record) recordResponse {
	return recordResponse{
		ID:            rec.ID,
		AllocationID:  rec.AllocationID,
		FacilitatorID: rec.FacilitatorID,
		WeekNumber:    rec.WeekNumber,
		Tasks: gin.H{
			"attendance_monitoring": rec.AttendanceMonitoring,
			"form_one_grading":      rec.FormOneGrading,
			"form_two_grading":      rec.FormTwoGrading,
			"summative_grading":     rec.SummativeGrading,
			"course_moderation":     rec.CourseModeration,
			"intranet_sync":         rec.IntranetSync,
		},
		Attendance:  rec.Attendance,
		Notes:       rec.Notes,
		SubmittedAt: rec.SubmittedAt,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

func (h *RecordHandler) CreateRecord(c *gin.Context) {
	var req createRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec := activity.NewRecord(req.AllocationID, req.FacilitatorID, req.WeekNumber)
	rec.Attendance = req.Attendance
	rec.Notes = req.Notes

	if err := h.tracker.CreateRecord(c.Request.Context(), rec); err != nil {
		switch {
		case errors.Is(err, idb.ErrDuplicateActivityRecord):
			c.JSON(http.StatusConflict, gin.H{"error": "a record for this allocation and week already exists"})
		case errors.Is(err, idb.ErrAllocationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "allocation not found"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, toRecordResponse(rec))
}

func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	var req updateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.tracker.GetRecord(c.Request.Context(), id)
	if err != nil {
		respondNotFoundOrError(c, err)
		return
	}
	if rec.IsSubmitted() {
		c.JSON(http.StatusConflict, gin.H{"error": "record has already been submitted"})
		return
	}

	applyStatus := func(dst *activity.TaskStatus, src *string) {
		if src != nil {
			*dst = activity.TaskStatus(*src)
		}
	}
	applyStatus(&rec.AttendanceMonitoring, req.AttendanceMonitoring)
	applyStatus(&rec.FormOneGrading, req.FormOneGrading)
	applyStatus(&rec.FormTwoGrading, req.FormTwoGrading)
	applyStatus(&rec.SummativeGrading, req.SummativeGrading)
	applyStatus(&rec.CourseModeration, req.CourseModeration)
	applyStatus(&rec.IntranetSync, req.IntranetSync)
	if req.Attendance != nil {
		rec.Attendance = req.Attendance
	}
	if req.Notes != nil {
		rec.Notes = *req.Notes
	}

	if err := h.tracker.UpdateRecord(c.Request.Context(), rec); err != nil {
		respondNotFoundOrError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRecordResponse(rec))
}

// SubmitRecord performs the one-way submission transition. When the
// submission arrives past the deadline a late-submission manager alert is
// enqueued; the response never waits for its delivery.
func (h *RecordHandler) SubmitRecord(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	rec, err := h.tracker.Submit(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, idb.ErrAlreadySubmitted):
			c.JSON(http.StatusConflict, gin.H{"error": "record has already been submitted"})
		case errors.Is(err, idb.ErrActivityRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if alloc, aerr := h.allocations.GetByID(c.Request.Context(), rec.AllocationID); aerr == nil {
		deadline := activity.Deadline(alloc.StartDate, rec.WeekNumber)
		if rec.SubmittedAt != nil && rec.SubmittedAt.After(deadline) {
			data := gin.H{
				"record_id":      rec.ID,
				"facilitator_id": rec.FacilitatorID,
				"allocation_id":  rec.AllocationID,
				"week_number":    rec.WeekNumber,
				"deadline":       deadline,
				"submitted_at":   rec.SubmittedAt,
			}
			if qerr := h.dispatcher.QueueManagerAlert(c.Request.Context(), notification.AlertLateSubmission, data, 0); qerr != nil {
				logger.Log.Errorf("Failed to queue late-submission alert for record %d: %v", rec.ID, qerr)
			}
		}
	}

	c.JSON(http.StatusOK, toRecordResponse(rec))
}

func (h *RecordHandler) GetProgress(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	progress, err := h.tracker.Progress(c.Request.Context(), id)
	if err != nil {
		respondNotFoundOrError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

func (h *RecordHandler) GetOverdue(c *gin.Context) {
	overdue, err := h.tracker.FindOverdue(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, 0, len(overdue))
	for _, t := range overdue {
		items = append(items, gin.H{
			"record":   toRecordResponse(t.Record),
			"module":   t.Allocation.ModuleName,
			"cohort":   t.Allocation.CohortName,
			"class":    t.Allocation.ClassName,
			"deadline": t.Deadline(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

// GetPending lists every unsubmitted record regardless of deadline state,
// for the dashboard's pending-submissions view.
func (h *RecordHandler) GetPending(c *gin.Context) {
	pending, err := h.tracker.FindPendingSubmission(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, 0, len(pending))
	for _, t := range pending {
		items = append(items, gin.H{
			"record":   toRecordResponse(t.Record),
			"module":   t.Allocation.ModuleName,
			"cohort":   t.Allocation.CohortName,
			"class":    t.Allocation.ClassName,
			"deadline": t.Deadline(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

func recordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return 0, false
	}
	return id, true
}

func respondNotFoundOrError(c *gin.Context, err error) {
	if errors.Is(err, idb.ErrActivityRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
