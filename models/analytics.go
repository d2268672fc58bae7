// api/models/analytics.go
package models

import "time"

// AnalyticsSnapshot is the read-only view served to the admin dashboard.
type AnalyticsSnapshot struct {
	TotalVisits        int            `json:"total_visits"`
	UniqueVisitors     int            `json:"unique_visitors"`
	TodayVisits        int            `json:"today_visits"`
	WeekVisits         int            `json:"week_visits"`
	AvgSessionDuration float64        `json:"avg_session_duration"`
	BounceRate         float64        `json:"bounce_rate"`
	PageViews          map[string]int `json:"page_views"`
	TopPages           []TopPage      `json:"top_pages"`
	VisitsByDay        []DayVisits    `json:"visits_by_day"`
	VisitsByHour       []int          `json:"visits_by_hour"`
	Devices            DeviceStats    `json:"devices"`
	Themes             ThemeStats     `json:"themes"`
	Languages          LanguageStats  `json:"languages"`
}

type TopPage struct {
	Page  string `json:"page"`
	Views int    `json:"views"`
}

type DayVisits struct {
	Date   string `json:"date"`
	Visits int    `json:"visits"`
}

type DeviceStats struct {
	Desktop int `json:"desktop"`
	Mobile  int `json:"mobile"`
	Tablet  int `json:"tablet"`
}

type ThemeStats struct {
	Light int `json:"light"`
	Dark  int `json:"dark"`
}

type LanguageStats struct {
	Ru int `json:"ru"`
	En int `json:"en"`
}

// ArchivedEvent is one accepted event as written to the event archive.
type ArchivedEvent struct {
	EventID         string
	EventType       string
	VisitorID       string
	Page            string
	Device          string
	DurationSeconds float64
	Pages           uint32
	Theme           string
	Language        string
	Timestamp       time.Time
}
