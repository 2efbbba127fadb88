package session

import (
	"fmt"
	"time"
)

// SignalType identifies the kind of client interaction
type SignalType string

const (
	SignalPageView SignalType = "page_view"
	SignalClick    SignalType = "click"
	SignalScroll   SignalType = "scroll"
	SignalTyping   SignalType = "typing"
	SignalMessage  SignalType = "message"
	SignalFocus    SignalType = "focus"
	SignalBlur     SignalType = "blur"
)

// Signal is a single timestamped client interaction event
type Signal struct {
	Type      SignalType `json:"type"`
	Intensity float64    `json:"intensity"`
	Timestamp time.Time  `json:"timestamp"`
	Page      string     `json:"page,omitempty"`
}

// ParseSignalType validates a raw signal type label. Unknown types are an
// error so ingestion can drop and log them without touching session state.
func ParseSignalType(s string) (SignalType, error) {
	switch SignalType(s) {
	case SignalPageView, SignalClick, SignalScroll, SignalTyping,
		SignalMessage, SignalFocus, SignalBlur:
		return SignalType(s), nil
	}
	return "", fmt.Errorf("unknown signal type %q", s)
}
