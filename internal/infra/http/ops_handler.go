package http

import (
	"net/http"
	"strconv"
	"time"

	"facilitator_activity_tracker/internal/domain/notification"
	"facilitator_activity_tracker/internal/infra/queue"

	"github.com/gin-gonic/gin"
)

// OpsHandler exposes the operational endpoints: queue depths, dead-lettered
// jobs and the recent notification activity list.
type OpsHandler struct {
	decisionQueue notification.Queue
	deliveryQueue notification.Queue
	deadLetters   map[string]queue.DeadLetterHandler
	logStore      notification.LogStore
	recentMax     int
}

func NewOpsHandler(decisionQueue, deliveryQueue notification.Queue, logStore notification.LogStore, recentMax int) *OpsHandler {
	return &OpsHandler{
		decisionQueue: decisionQueue,
		deliveryQueue: deliveryQueue,
		deadLetters:   make(map[string]queue.DeadLetterHandler),
		logStore:      logStore,
		recentMax:     recentMax,
	}
}

// WithDeadLetter registers a dead-letter handler under a stage name for the
// failed-jobs endpoint.
func (h *OpsHandler) WithDeadLetter(stage string, dlq queue.DeadLetterHandler) *OpsHandler {
	h.deadLetters[stage] = dlq
	return h
}

func (h *OpsHandler) GetQueueStats(c *gin.Context) {
	decision, err := h.decisionQueue.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	delivery, err := h.deliveryQueue.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"decision": decision,
		"delivery": delivery,
	})
}

func (h *OpsHandler) GetFailedJobs(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	out := gin.H{}
	for stage, dlq := range h.deadLetters {
		failed, err := dlq.FailedJobs(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out[stage] = failed
	}

	c.JSON(http.StatusOK, out)
}

func (h *OpsHandler) GetRecentNotifications(c *gin.Context) {
	limit := h.recentMax
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if n < limit {
			limit = n
		}
	}

	entries, err := h.logStore.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(entries), "items": entries})
}

func (h *OpsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}
