package store

import (
	"sort"
	"time"
)

const (
	// MaxDailyBuckets bounds visits_by_day.
	MaxDailyBuckets = 30

	dateLayout = "2006-01-02"
)

// DailyBucket counts page views on one calendar day.
type DailyBucket struct {
	Date   string `json:"date"`
	Visits int    `json:"visits"`
}

// dailyBuckets keeps per-day visit counts ordered by date ascending and
// capped at MaxDailyBuckets. ISO dates compare correctly as strings.
type dailyBuckets struct {
	buckets []DailyBucket
}

func dayKey(t time.Time) string {
	return t.Format(dateLayout)
}

// increment counts one visit on date and sweeps buckets past the cap.
func (d *dailyBuckets) increment(date string) {
	n := len(d.buckets)
	switch {
	case n == 0 || d.buckets[n-1].Date < date:
		d.buckets = append(d.buckets, DailyBucket{Date: date, Visits: 1})
	case d.buckets[n-1].Date == date:
		d.buckets[n-1].Visits++
	default:
		// The clock stepped backwards; find or insert the day in order.
		i := sort.Search(n, func(i int) bool { return d.buckets[i].Date >= date })
		if d.buckets[i].Date == date {
			d.buckets[i].Visits++
		} else {
			d.buckets = append(d.buckets, DailyBucket{})
			copy(d.buckets[i+1:], d.buckets[i:])
			d.buckets[i] = DailyBucket{Date: date, Visits: 1}
		}
	}
	d.sweep()
}

func (d *dailyBuckets) sweep() {
	if excess := len(d.buckets) - MaxDailyBuckets; excess > 0 {
		d.buckets = append(d.buckets[:0:0], d.buckets[excess:]...)
	}
}

func (d *dailyBuckets) visitsOn(date string) int {
	i := sort.Search(len(d.buckets), func(i int) bool { return d.buckets[i].Date >= date })
	if i < len(d.buckets) && d.buckets[i].Date == date {
		return d.buckets[i].Visits
	}
	return 0
}

// visitsBetween sums buckets with from <= date <= to.
func (d *dailyBuckets) visitsBetween(from, to string) int {
	total := 0
	for _, b := range d.buckets {
		if b.Date >= from && b.Date <= to {
			total += b.Visits
		}
	}
	return total
}

func (d *dailyBuckets) clone() []DailyBucket {
	return append([]DailyBucket(nil), d.buckets...)
}

// restore loads buckets from an untrusted source, dropping malformed
// dates and merging duplicates before re-applying the cap.
func (d *dailyBuckets) restore(in []DailyBucket) {
	merged := make(map[string]int, len(in))
	for _, b := range in {
		if _, err := time.Parse(dateLayout, b.Date); err != nil || b.Visits < 0 {
			continue
		}
		merged[b.Date] += b.Visits
	}
	d.buckets = make([]DailyBucket, 0, len(merged))
	for date, visits := range merged {
		d.buckets = append(d.buckets, DailyBucket{Date: date, Visits: visits})
	}
	sort.Slice(d.buckets, func(i, j int) bool { return d.buckets[i].Date < d.buckets[j].Date })
	d.sweep()
}
