package store

import (
	"time"

	"portfolio/api/models"
)

const stateSchemaVersion = 1

// State is the persisted form of AnalyticsStore.
type State struct {
	SchemaVersion  int                  `json:"schema_version"`
	SavedAt        time.Time            `json:"saved_at"`
	Visitors       map[string]time.Time `json:"visitors"`
	UniqueVisitors int                  `json:"unique_visitors"`
	TotalVisits    int                  `json:"total_visits"`
	PageViews      map[string]int       `json:"page_views"`
	VisitsByDay    []DailyBucket        `json:"visits_by_day"`
	VisitsByHour   [24]int              `json:"visits_by_hour"`
	Devices        models.DeviceStats   `json:"devices"`
	Sessions       int                  `json:"sessions"`
	AvgSession     float64              `json:"avg_session_duration"`
	BounceRate     float64              `json:"bounce_rate"`
	Themes         models.ThemeStats    `json:"themes"`
	Languages      models.LanguageStats `json:"languages"`
}

// ExportState copies the full store under the read lock.
func (s *AnalyticsStore) ExportState() *State {
	savedAt := s.clock.Now().UTC()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &State{
		SchemaVersion:  stateSchemaVersion,
		SavedAt:        savedAt,
		Visitors:       s.visitors.export(),
		UniqueVisitors: s.uniqueVisitors,
		TotalVisits:    s.totalVisits,
		PageViews:      make(map[string]int, len(s.pageViews)),
		VisitsByDay:    s.days.clone(),
		VisitsByHour:   s.hours,
		Devices:        s.devices,
		Sessions:       s.sessions,
		AvgSession:     s.avgSession,
		BounceRate:     s.bounceRate,
		Themes:         s.themes,
		Languages:      s.languages,
	}
	for page, views := range s.pageViews {
		st.PageViews[page] = views
	}
	return st
}

// RestoreState replaces the store's counters with st. Counters are
// re-derived where the saved form could disagree with the invariants:
// the visitor total follows the visitor set and total visits follow the
// page counts.
func (s *AnalyticsStore) RestoreState(st *State) {
	if st == nil {
		return
	}

	visitors := newVisitorSet()
	for id, at := range st.Visitors {
		if id != "" {
			visitors.firstSeen[id] = at
		}
	}

	pageViews := make(map[string]int, len(st.PageViews))
	total := 0
	for page, views := range st.PageViews {
		if views > 0 {
			pageViews[page] = views
			total += views
		}
	}

	var hours [24]int
	for i, v := range st.VisitsByHour {
		if v > 0 {
			hours[i] = v
		}
	}

	sessions := st.Sessions
	if sessions < 0 {
		sessions = 0
	}
	avg := st.AvgSession
	if avg < 0 || avg != avg {
		avg = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.visitors = visitors
	s.uniqueVisitors = visitors.len()
	s.totalVisits = total
	s.pageViews = pageViews
	s.days.restore(st.VisitsByDay)
	s.hours = hours
	s.devices = st.Devices
	s.sessions = sessions
	s.avgSession = avg
	s.bounceRate = clampPercent(st.BounceRate)
	s.themes = st.Themes
	s.languages = st.Languages
	s.version++
}
