package store

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"portfolio/api/models"
)

var base = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func newTestStore(clock *fakeClock) *AnalyticsStore {
	return NewAnalyticsStore(WithClock(clock), WithLocation(time.UTC))
}

func pageView(visitor, page string, at time.Time) models.PageView {
	return models.PageView{VisitorID: visitor, Page: page, Device: models.DeviceDesktop, Timestamp: at}
}

func session(duration float64, pages int) models.SessionEnd {
	return models.SessionEnd{
		VisitorID:       "v1",
		DurationSeconds: duration,
		Pages:           pages,
		Theme:           models.ThemeDark,
		Language:        models.LanguageEn,
	}
}

func mustTrack(t *testing.T, s *AnalyticsStore, ev models.PageView) {
	t.Helper()
	if err := s.TrackPageView(ev); err != nil {
		t.Fatalf("track page view: %v", err)
	}
}

func sumPages(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

func sumInts(v []int) int {
	total := 0
	for _, n := range v {
		total += n
	}
	return total
}

func TestRepeatedVisitorCountsOnce(t *testing.T) {
	s := newTestStore(newFakeClock(base))
	for i := 0; i < 25; i++ {
		mustTrack(t, s, pageView("same", "/", base.Add(time.Duration(i)*time.Minute)))
	}

	snap := s.Snapshot()
	if snap.UniqueVisitors != 1 {
		t.Fatalf("expected 1 unique visitor, got %d", snap.UniqueVisitors)
	}
	if snap.TotalVisits != 25 {
		t.Fatalf("expected 25 visits, got %d", snap.TotalVisits)
	}
}

func TestEndToEndScenario(t *testing.T) {
	s := newTestStore(newFakeClock(base))
	mustTrack(t, s, pageView("v1", "/", base))
	mustTrack(t, s, pageView("v1", "/projects", base))
	mustTrack(t, s, pageView("v1", "/", base))
	mustTrack(t, s, pageView("v2", "/", base))

	snap := s.Snapshot()
	if snap.TotalVisits != 4 || snap.UniqueVisitors != 2 {
		t.Fatalf("unexpected totals: total=%d unique=%d", snap.TotalVisits, snap.UniqueVisitors)
	}
	if snap.PageViews["/"] != 3 || snap.PageViews["/projects"] != 1 {
		t.Fatalf("unexpected page views: %v", snap.PageViews)
	}
	want := []models.TopPage{{Page: "/", Views: 3}, {Page: "/projects", Views: 1}}
	if len(snap.TopPages) != len(want) {
		t.Fatalf("unexpected top pages: %v", snap.TopPages)
	}
	for i := range want {
		if snap.TopPages[i] != want[i] {
			t.Fatalf("top page %d: expected %v, got %v", i, want[i], snap.TopPages[i])
		}
	}
	if snap.TodayVisits != 4 || snap.WeekVisits != 4 {
		t.Fatalf("unexpected today/week: %d/%d", snap.TodayVisits, snap.WeekVisits)
	}
	if snap.VisitsByHour[14] != 4 {
		t.Fatalf("expected 4 visits at hour 14, got %d", snap.VisitsByHour[14])
	}
	if snap.Devices.Desktop != 4 {
		t.Fatalf("expected 4 desktop visits, got %+v", snap.Devices)
	}
}

func TestTotalsMatchPageStatsAndHours(t *testing.T) {
	clock := newFakeClock(base)
	s := newTestStore(clock)

	pages := []string{"/", "/about", "/projects", "/skills", "/contact", "/admin", "/login"}
	events := 0
	for day := 0; day < 40; day++ {
		for i := 0; i <= day%5; i++ {
			at := base.AddDate(0, 0, day).Add(time.Duration(i*5) * time.Hour)
			mustTrack(t, s, pageView(fmt.Sprintf("v%d", (day*7+i)%13), pages[(day+i)%len(pages)], at))
			events++
		}
	}
	clock.Set(base.AddDate(0, 0, 39))

	snap := s.Snapshot()
	if snap.TotalVisits != events {
		t.Fatalf("expected %d visits, got %d", events, snap.TotalVisits)
	}
	if got := sumPages(snap.PageViews); got != snap.TotalVisits {
		t.Fatalf("sum(page_views)=%d, total_visits=%d", got, snap.TotalVisits)
	}
	if got := sumInts(snap.VisitsByHour); got != events {
		t.Fatalf("sum(visits_by_hour)=%d, expected %d", got, events)
	}
	if snap.UniqueVisitors > snap.TotalVisits || snap.UniqueVisitors != 13 {
		t.Fatalf("unexpected unique visitors: %d", snap.UniqueVisitors)
	}
	if len(snap.VisitsByDay) != MaxDailyBuckets {
		t.Fatalf("expected %d day buckets, got %d", MaxDailyBuckets, len(snap.VisitsByDay))
	}
	for i := 1; i < len(snap.VisitsByDay); i++ {
		if snap.VisitsByDay[i-1].Date >= snap.VisitsByDay[i].Date {
			t.Fatalf("days not strictly ascending at %d: %v", i, snap.VisitsByDay)
		}
	}
	if len(snap.TopPages) != 5 {
		t.Fatalf("expected 5 top pages, got %d", len(snap.TopPages))
	}
}

func TestOldestDayDroppedAfter31Days(t *testing.T) {
	clock := newFakeClock(base)
	s := newTestStore(clock)
	for day := 0; day < 31; day++ {
		at := base.AddDate(0, 0, day)
		clock.Set(at)
		mustTrack(t, s, pageView("v", "/", at))
	}

	snap := s.Snapshot()
	if len(snap.VisitsByDay) != 30 {
		t.Fatalf("expected 30 days, got %d", len(snap.VisitsByDay))
	}
	first := dayKey(base)
	for _, d := range snap.VisitsByDay {
		if d.Date == first {
			t.Fatalf("oldest day %s still present", first)
		}
	}
	if snap.VisitsByDay[0].Date != dayKey(base.AddDate(0, 0, 1)) {
		t.Fatalf("unexpected first day %s", snap.VisitsByDay[0].Date)
	}
	if snap.TotalVisits != 31 || sumInts(snap.VisitsByHour) != 31 {
		t.Fatalf("pruning days must not touch totals: total=%d hours=%d", snap.TotalVisits, sumInts(snap.VisitsByHour))
	}
}

func TestTodayAndWeekFollowClock(t *testing.T) {
	clock := newFakeClock(base)
	s := newTestStore(clock)
	for day := 0; day < 10; day++ {
		mustTrack(t, s, pageView("v", "/", base.AddDate(0, 0, day)))
	}

	clock.Set(base.AddDate(0, 0, 9))
	snap := s.Snapshot()
	if snap.TodayVisits != 1 {
		t.Fatalf("expected 1 visit today, got %d", snap.TodayVisits)
	}
	if snap.WeekVisits != 7 {
		t.Fatalf("expected 7 visits in trailing week, got %d", snap.WeekVisits)
	}

	clock.Set(base.AddDate(0, 0, 12))
	snap = s.Snapshot()
	if snap.TodayVisits != 0 {
		t.Fatalf("expected 0 visits on a silent day, got %d", snap.TodayVisits)
	}
	if snap.WeekVisits != 4 {
		t.Fatalf("expected 4 visits in trailing week, got %d", snap.WeekVisits)
	}
}

func TestTopPagesOrderingAndTies(t *testing.T) {
	s := newTestStore(newFakeClock(base))
	counts := map[string]int{"/b": 2, "/a": 2, "/c": 5, "/d": 1, "/e": 2, "/f": 3, "/g": 1}
	for page, n := range counts {
		for i := 0; i < n; i++ {
			mustTrack(t, s, pageView("v", page, base))
		}
	}

	got := s.Snapshot().TopPages
	want := []models.TopPage{
		{Page: "/c", Views: 5},
		{Page: "/f", Views: 3},
		{Page: "/a", Views: 2},
		{Page: "/b", Views: 2},
		{Page: "/e", Views: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d top pages, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestConcurrentDistinctVisitors(t *testing.T) {
	s := newTestStore(newFakeClock(base))

	var wg sync.WaitGroup
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.TrackPageView(pageView(fmt.Sprintf("visitor-%d", i), "/", base)); err != nil {
				t.Errorf("track: %v", err)
			}
		}(i)
	}
	// Readers run alongside writers; each snapshot must be internally consistent.
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap := s.Snapshot()
			if snap.TotalVisits != snap.PageViews["/"] || snap.TotalVisits != sumInts(snap.VisitsByHour) {
				t.Errorf("torn snapshot: total=%d page=%d", snap.TotalVisits, snap.PageViews["/"])
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	if snap.UniqueVisitors != 1000 || snap.TotalVisits != 1000 || snap.PageViews["/"] != 1000 {
		t.Fatalf("unexpected totals: unique=%d total=%d page=%d", snap.UniqueVisitors, snap.TotalVisits, snap.PageViews["/"])
	}
}

func TestBounceRate(t *testing.T) {
	s := newTestStore(newFakeClock(base))
	if err := s.TrackSession(session(10, 1)); err != nil {
		t.Fatalf("track session: %v", err)
	}
	if err := s.TrackSession(session(10, 3)); err != nil {
		t.Fatalf("track session: %v", err)
	}
	if got := s.Snapshot().BounceRate; got != 50.0 {
		t.Fatalf("expected bounce rate 50, got %v", got)
	}
}

func TestSessionDurationSmoothing(t *testing.T) {
	s := newTestStore(newFakeClock(base))
	if err := s.TrackSession(session(100, 2)); err != nil {
		t.Fatalf("track session: %v", err)
	}
	if got := s.Snapshot().AvgSessionDuration; got != 100 {
		t.Fatalf("expected 100 after first session, got %v", got)
	}
	if err := s.TrackSession(session(0, 2)); err != nil {
		t.Fatalf("track session: %v", err)
	}
	if got := s.Snapshot().AvgSessionDuration; math.Abs(got-90) > 1e-9 {
		t.Fatalf("expected 90 after second session, got %v", got)
	}
}

func TestFirstSessionOfZeroSecondsStillSeedsAverage(t *testing.T) {
	s := newTestStore(newFakeClock(base))
	_ = s.TrackSession(session(0, 1))
	_ = s.TrackSession(session(100, 1))
	if got := s.Snapshot().AvgSessionDuration; math.Abs(got-10) > 1e-9 {
		t.Fatalf("expected 10, got %v", got)
	}
}

func TestSessionClampsAndBreakdowns(t *testing.T) {
	s := newTestStore(newFakeClock(base))
	_ = s.TrackSession(models.SessionEnd{VisitorID: "ghost", DurationSeconds: -50, Pages: 0, Theme: "neon", Language: "de"})
	_ = s.TrackSession(models.SessionEnd{VisitorID: "ghost", DurationSeconds: 20, Pages: 4, Theme: models.ThemeDark, Language: models.LanguageEn})

	snap := s.Snapshot()
	if math.Abs(snap.AvgSessionDuration-2) > 1e-9 {
		t.Fatalf("expected clamped average 2, got %v", snap.AvgSessionDuration)
	}
	if snap.BounceRate != 50 {
		t.Fatalf("expected bounce rate 50, got %v", snap.BounceRate)
	}
	if snap.Themes != (models.ThemeStats{Light: 1, Dark: 1}) {
		t.Fatalf("unexpected themes: %+v", snap.Themes)
	}
	if snap.Languages != (models.LanguageStats{Ru: 1, En: 1}) {
		t.Fatalf("unexpected languages: %+v", snap.Languages)
	}
	if snap.TotalVisits != 0 || snap.UniqueVisitors != 0 {
		t.Fatalf("sessions must not create page views: %+v", snap)
	}
}

func TestDeviceBreakdownCoercesUnknown(t *testing.T) {
	s := newTestStore(newFakeClock(base))
	for _, d := range []models.Device{models.DeviceMobile, models.DeviceTablet, "fridge", ""} {
		mustTrack(t, s, models.PageView{VisitorID: "v", Page: "/", Device: d, Timestamp: base})
	}
	want := models.DeviceStats{Desktop: 2, Mobile: 1, Tablet: 1}
	if got := s.Snapshot().Devices; got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestHourUsesStoreLocation(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	s := NewAnalyticsStore(WithClock(newFakeClock(base)), WithLocation(moscow))
	mustTrack(t, s, pageView("v", "/", time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)))

	snap := s.Snapshot()
	if snap.VisitsByHour[1] != 1 {
		t.Fatalf("expected the visit at local hour 1, got %v", snap.VisitsByHour)
	}
	if snap.VisitsByDay[0].Date != "2026-03-11" {
		t.Fatalf("expected local date 2026-03-11, got %s", snap.VisitsByDay[0].Date)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	s := newTestStore(newFakeClock(base))
	mustTrack(t, s, pageView("v", "/", base))

	snap := s.Snapshot()
	snap.PageViews["/"] = 999
	snap.VisitsByHour[14] = 999
	snap.VisitsByDay[0].Visits = 999

	again := s.Snapshot()
	if again.PageViews["/"] != 1 || again.VisitsByHour[14] != 1 || again.VisitsByDay[0].Visits != 1 {
		t.Fatalf("snapshot shares memory with the store: %+v", again)
	}
}

func TestClosedStoreRejectsEvents(t *testing.T) {
	s := newTestStore(newFakeClock(base))
	mustTrack(t, s, pageView("v", "/", base))
	s.Close()

	if err := s.TrackPageView(pageView("v", "/", base)); err != ErrStoreClosed {
		t.Fatalf("expected ErrStoreClosed, got %v", err)
	}
	if err := s.TrackSession(session(1, 1)); err != ErrStoreClosed {
		t.Fatalf("expected ErrStoreClosed, got %v", err)
	}
	if s.Snapshot().TotalVisits != 1 {
		t.Fatalf("closed store must still serve reads")
	}
}

func TestIndependentInstances(t *testing.T) {
	a := newTestStore(newFakeClock(base))
	b := newTestStore(newFakeClock(base))
	mustTrack(t, a, pageView("v", "/", base))

	if b.Snapshot().TotalVisits != 0 {
		t.Fatalf("stores must not share state")
	}
}
