package formxml

import (
	"fmt"
	"strings"
)

// EventType is a form lifecycle event a handler can be bound to.
type EventType int

const (
	OnLoad EventType = iota + 1
	OnSave
)

// AllEvents lists every supported event type in declaration order.
var AllEvents = []EventType{OnLoad, OnSave}

// String returns the event bucket name used in form XML.
func (e EventType) String() string {
	switch e {
	case OnLoad:
		return "onload"
	case OnSave:
		return "onsave"
	default:
		return fmt.Sprintf("EventType(%d)", int(e))
	}
}

// Valid reports whether e is a supported event type.
func (e EventType) Valid() bool {
	return e == OnLoad || e == OnSave
}

// ParseEventType parses "onload" or "onsave", case-insensitively.
func ParseEventType(s string) (EventType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "onload":
		return OnLoad, nil
	case "onsave":
		return OnSave, nil
	default:
		return 0, fmt.Errorf("unknown event type %q: must be onload or onsave", s)
	}
}
