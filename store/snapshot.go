package store

import (
	"sort"

	"portfolio/api/models"
)

const (
	topPagesLimit = 5
	weekDays      = 7
)

// Snapshot builds the dashboard view under the read lock. The result
// shares no memory with the store.
func (s *AnalyticsStore) Snapshot() models.AnalyticsSnapshot {
	now := s.Now()
	today := dayKey(now)
	weekStart := dayKey(now.AddDate(0, 0, -(weekDays - 1)))

	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := models.AnalyticsSnapshot{
		TotalVisits:        s.totalVisits,
		UniqueVisitors:     s.uniqueVisitors,
		TodayVisits:        s.days.visitsOn(today),
		WeekVisits:         s.days.visitsBetween(weekStart, today),
		AvgSessionDuration: s.avgSession,
		BounceRate:         s.bounceRate,
		PageViews:          make(map[string]int, len(s.pageViews)),
		TopPages:           topPages(s.pageViews, topPagesLimit),
		VisitsByDay:        make([]models.DayVisits, 0, len(s.days.buckets)),
		VisitsByHour:       append([]int(nil), s.hours[:]...),
		Devices:            s.devices,
		Themes:             s.themes,
		Languages:          s.languages,
	}
	for page, views := range s.pageViews {
		snap.PageViews[page] = views
	}
	for _, b := range s.days.buckets {
		snap.VisitsByDay = append(snap.VisitsByDay, models.DayVisits{Date: b.Date, Visits: b.Visits})
	}
	return snap
}

// topPages ranks pages by views descending, then path ascending.
func topPages(pageViews map[string]int, limit int) []models.TopPage {
	pages := make([]models.TopPage, 0, len(pageViews))
	for page, views := range pageViews {
		pages = append(pages, models.TopPage{Page: page, Views: views})
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Views != pages[j].Views {
			return pages[i].Views > pages[j].Views
		}
		return pages[i].Page < pages[j].Page
	})
	if len(pages) > limit {
		pages = pages[:limit]
	}
	return pages
}
