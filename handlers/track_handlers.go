// api/handlers/track_handlers.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"portfolio/api/metrics"
	"portfolio/api/models"
	"portfolio/api/store"
)

const defaultMaxTrackBody = 16 << 10

// EventArchiver takes accepted events for asynchronous storage.
type EventArchiver interface {
	Enqueue(ev models.ArchivedEvent) error
}

type AnalyticsHandlers struct {
	AnalyticsStore *store.AnalyticsStore
	Archive        EventArchiver
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	MaxBodyBytes   int64
}

func NewAnalyticsHandlers(s *store.AnalyticsStore, archive EventArchiver, m *metrics.Metrics, logger *zap.Logger, maxBodyBytes int64) *AnalyticsHandlers {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxTrackBody
	}
	return &AnalyticsHandlers{
		AnalyticsStore: s,
		Archive:        archive,
		Metrics:        m,
		Logger:         logger,
		MaxBodyBytes:   maxBodyBytes,
	}
}

// TrackEvent accepts one page_view or session event. The body is parsed
// as JSON whatever the Content-Type, since beacons arrive as text/plain.
func (h *AnalyticsHandlers) TrackEvent(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBodyBytes)

	var req models.TrackEventRequest
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(c, http.StatusRequestEntityTooLarge, "too_large", "Request body too large", err)
			return
		}
		h.reject(c, http.StatusBadRequest, "malformed", "Invalid request body", err)
		return
	}

	now := h.AnalyticsStore.Now()

	var (
		archived models.ArchivedEvent
		err      error
	)
	switch req.Event {
	case models.EventPageView:
		var ev models.PageView
		if ev, err = req.PageView(now); err != nil {
			h.reject(c, http.StatusBadRequest, "invalid_field", err.Error(), err)
			return
		}
		err = h.AnalyticsStore.TrackPageView(ev)
		archived = store.ArchivedPageView(ev)
	case models.EventSession:
		var ev models.SessionEnd
		if ev, err = req.SessionEnd(now); err != nil {
			h.reject(c, http.StatusBadRequest, "invalid_field", err.Error(), err)
			return
		}
		err = h.AnalyticsStore.TrackSession(ev)
		archived = store.ArchivedSession(ev)
	default:
		h.reject(c, http.StatusBadRequest, "unknown_event", "Unknown event type", models.ErrUnknownEventType)
		return
	}

	if err != nil {
		if errors.Is(err, store.ErrStoreClosed) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analytics unavailable"})
			return
		}
		h.Logger.Error("failed to track analytics event", zap.String("event", req.Event), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record analytics event"})
		return
	}

	if h.Metrics != nil {
		h.Metrics.EventsIngested.WithLabelValues(req.Event).Inc()
	}
	if h.Archive != nil {
		if err := h.Archive.Enqueue(archived); err != nil {
			h.Logger.Debug("analytics event not archived", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetAnalytics returns the aggregate snapshot. Mounted behind AdminRequired.
func (h *AnalyticsHandlers) GetAnalytics(c *gin.Context) {
	if h.Metrics != nil {
		h.Metrics.SnapshotReads.Inc()
	}
	c.JSON(http.StatusOK, h.AnalyticsStore.Snapshot())
}

func (h *AnalyticsHandlers) reject(c *gin.Context, status int, reason, message string, err error) {
	if h.Metrics != nil {
		h.Metrics.EventsRejected.WithLabelValues(reason).Inc()
	}
	h.Logger.Warn("analytics event rejected",
		zap.String("reason", reason),
		zap.String("client_ip", c.ClientIP()),
		zap.Error(err),
	)
	c.JSON(status, gin.H{"error": message})
}
