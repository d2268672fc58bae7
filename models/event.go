// api/models/event.go
package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	EventPageView = "page_view"
	EventSession  = "session"
)

const (
	MaxVisitorIDLength = 128
	MaxPageLength      = 512
	MaxSessionPages    = 1 << 16
)

var (
	ErrInvalidEvent     = errors.New("invalid event")
	ErrUnknownEventType = fmt.Errorf("%w: unknown event type", ErrInvalidEvent)
	ErrMissingVisitorID = fmt.Errorf("%w: visitor_id is required", ErrInvalidEvent)
	ErrVisitorIDTooLong = fmt.Errorf("%w: visitor_id is too long", ErrInvalidEvent)
	ErrMissingPage      = fmt.Errorf("%w: page is required", ErrInvalidEvent)
	ErrPageTooLong      = fmt.Errorf("%w: page is too long", ErrInvalidEvent)
	ErrInvalidDuration  = fmt.Errorf("%w: duration must be a non-negative number", ErrInvalidEvent)
	ErrInvalidPages     = fmt.Errorf("%w: pages must be a positive integer", ErrInvalidEvent)
	ErrInvalidTheme     = fmt.Errorf("%w: theme must be light or dark", ErrInvalidEvent)
	ErrInvalidLanguage  = fmt.Errorf("%w: language must be ru or en", ErrInvalidEvent)
)

// TrackEventRequest is the wire shape of POST /analytics/track. Numeric
// fields are pointers so that a missing value can be told apart from zero.
type TrackEventRequest struct {
	Event     string   `json:"event"`
	VisitorID string   `json:"visitor_id"`
	Page      string   `json:"page,omitempty"`
	Device    string   `json:"device,omitempty"`
	Duration  *float64 `json:"duration,omitempty"`
	Pages     *float64 `json:"pages,omitempty"`
	Theme     string   `json:"theme,omitempty"`
	Language  string   `json:"language,omitempty"`
}

type PageView struct {
	VisitorID string
	Page      string
	Device    Device
	Timestamp time.Time
}

type SessionEnd struct {
	VisitorID       string
	DurationSeconds float64
	Pages           int
	Theme           Theme
	Language        Language
	Timestamp       time.Time
}

// PageView validates the request as a page_view event stamped with at.
func (r *TrackEventRequest) PageView(at time.Time) (PageView, error) {
	visitorID, err := r.visitorID()
	if err != nil {
		return PageView{}, err
	}
	page := strings.TrimSpace(r.Page)
	if page == "" {
		return PageView{}, ErrMissingPage
	}
	if len(page) > MaxPageLength {
		return PageView{}, ErrPageTooLong
	}
	return PageView{
		VisitorID: visitorID,
		Page:      page,
		Device:    ParseDevice(r.Device),
		Timestamp: at,
	}, nil
}

// SessionEnd validates the request as a session event stamped with at.
func (r *TrackEventRequest) SessionEnd(at time.Time) (SessionEnd, error) {
	visitorID, err := r.visitorID()
	if err != nil {
		return SessionEnd{}, err
	}
	if r.Duration == nil || *r.Duration < 0 || math.IsInf(*r.Duration, 0) || math.IsNaN(*r.Duration) {
		return SessionEnd{}, ErrInvalidDuration
	}
	if r.Pages == nil || *r.Pages < 1 || *r.Pages > MaxSessionPages || *r.Pages != math.Trunc(*r.Pages) {
		return SessionEnd{}, ErrInvalidPages
	}
	theme, ok := ParseTheme(r.Theme)
	if !ok {
		return SessionEnd{}, ErrInvalidTheme
	}
	language, ok := ParseLanguage(r.Language)
	if !ok {
		return SessionEnd{}, ErrInvalidLanguage
	}
	return SessionEnd{
		VisitorID:       visitorID,
		DurationSeconds: *r.Duration,
		Pages:           int(*r.Pages),
		Theme:           theme,
		Language:        language,
		Timestamp:       at,
	}, nil
}

func (r *TrackEventRequest) visitorID() (string, error) {
	id := strings.TrimSpace(r.VisitorID)
	if id == "" {
		return "", ErrMissingVisitorID
	}
	if len(id) > MaxVisitorIDLength {
		return "", ErrVisitorIDTooLong
	}
	return id, nil
}
