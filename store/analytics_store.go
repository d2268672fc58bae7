// api/store/analytics_store.go
package store

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"portfolio/api/models"
)

const (
	// sessionSmoothing is the weight of the newest session in the
	// exponential moving average of session duration.
	sessionSmoothing = 0.1
)

// AnalyticsStore owns every visitor counter. All mutations and reads go
// through one RWMutex so that a snapshot never observes half an event.
type AnalyticsStore struct {
	mu     sync.RWMutex
	clock  Clock
	loc    *time.Location
	logger *zap.Logger

	closed  bool
	version uint64

	visitors       *visitorSet
	uniqueVisitors int
	totalVisits    int
	pageViews      map[string]int
	days           dailyBuckets
	hours          [24]int
	devices        models.DeviceStats

	sessions   int
	avgSession float64
	bounceRate float64
	themes     models.ThemeStats
	languages  models.LanguageStats
}

type Option func(*AnalyticsStore)

func WithClock(c Clock) Option {
	return func(s *AnalyticsStore) { s.clock = c }
}

// WithLocation sets the time zone used for calendar days and hours.
func WithLocation(loc *time.Location) Option {
	return func(s *AnalyticsStore) { s.loc = loc }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *AnalyticsStore) { s.logger = l }
}

func NewAnalyticsStore(opts ...Option) *AnalyticsStore {
	s := &AnalyticsStore{
		clock:     SystemClock,
		loc:       time.Local,
		logger:    zap.NewNop(),
		visitors:  newVisitorSet(),
		pageViews: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's clock reading in its time zone.
func (s *AnalyticsStore) Now() time.Time {
	return s.clock.Now().In(s.loc)
}

// TrackPageView applies one page view to every page-view metric.
func (s *AnalyticsStore) TrackPageView(ev models.PageView) error {
	at := ev.Timestamp
	if at.IsZero() {
		at = s.clock.Now()
	}
	at = at.In(s.loc)

	device := models.ParseDevice(string(ev.Device))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if s.visitors.add(ev.VisitorID, at) {
		s.uniqueVisitors++
	}
	s.totalVisits++
	s.pageViews[ev.Page]++
	s.days.increment(dayKey(at))
	s.hours[at.Hour()]++

	switch device {
	case models.DeviceMobile:
		s.devices.Mobile++
	case models.DeviceTablet:
		s.devices.Tablet++
	default:
		s.devices.Desktop++
	}

	s.version++
	return nil
}

// TrackSession folds one finished session into the rolling session stats.
// Out-of-range values are clamped rather than rejected.
func (s *AnalyticsStore) TrackSession(ev models.SessionEnd) error {
	duration := ev.DurationSeconds
	if duration < 0 || duration != duration {
		s.logger.Debug("clamping session duration", zap.Float64("duration", duration))
		duration = 0
	}
	bounce := 0.0
	if ev.Pages <= 1 {
		bounce = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	s.sessions++
	n := float64(s.sessions)
	if s.sessions == 1 {
		s.avgSession = duration
	} else {
		s.avgSession = s.avgSession*(1-sessionSmoothing) + duration*sessionSmoothing
	}
	s.bounceRate = clampPercent((s.bounceRate*(n-1) + bounce) / n)

	if ev.Theme == models.ThemeDark {
		s.themes.Dark++
	} else {
		s.themes.Light++
	}
	if ev.Language == models.LanguageEn {
		s.languages.En++
	} else {
		s.languages.Ru++
	}

	s.version++
	return nil
}

// Close stops the store from accepting events. Reads keep working so the
// final state can still be saved.
func (s *AnalyticsStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Version increases on every applied event.
func (s *AnalyticsStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Totals returns the headline counters without building a full snapshot.
func (s *AnalyticsStore) Totals() (totalVisits, uniqueVisitors int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalVisits, s.uniqueVisitors
}

func clampPercent(v float64) float64 {
	switch {
	case v != v || v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
