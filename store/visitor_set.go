package store

import "time"

// visitorSet remembers every visitor id ever seen. It is not safe for
// concurrent use; AnalyticsStore guards it.
type visitorSet struct {
	firstSeen map[string]time.Time
}

func newVisitorSet() *visitorSet {
	return &visitorSet{firstSeen: make(map[string]time.Time)}
}

// add reports whether id was unseen before this call.
func (s *visitorSet) add(id string, at time.Time) bool {
	if _, ok := s.firstSeen[id]; ok {
		return false
	}
	s.firstSeen[id] = at
	return true
}

func (s *visitorSet) len() int {
	return len(s.firstSeen)
}

func (s *visitorSet) export() map[string]time.Time {
	out := make(map[string]time.Time, len(s.firstSeen))
	for id, at := range s.firstSeen {
		out[id] = at
	}
	return out
}
