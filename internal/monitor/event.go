package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/privacygrade/internal/fingerprint"
	"github.com/nao1215/privacygrade/internal/model"
)

// EventType names the kind of an Event.
type EventType string

// Event types.
const (
	EventLoad        EventType = "load"
	EventClose       EventType = "close"
	EventRequest     EventType = "request"
	EventResponse    EventType = "response"
	EventFingerprint EventType = "fingerprint"
	EventForms       EventType = "forms"
	EventPermission  EventType = "permission"
)

// Event is one observation delivered to a Monitor. Which fields are set
// depends on Type:
//
//	load         URL
//	close        -
//	request      URL
//	response     Headers
//	fingerprint  Technique, optionally Canvas
//	forms        Forms
//	permission   Permission
type Event struct {
	Type  EventType `json:"type"`
	TabID int       `json:"tab_id"`

	URL        string                    `json:"url,omitempty"`
	Headers    []model.Header            `json:"headers,omitempty"`
	Technique  model.Technique           `json:"technique,omitempty"`
	Canvas     *fingerprint.CanvasSample `json:"canvas,omitempty"`
	Forms      *model.FormSignal         `json:"forms,omitempty"`
	Permission string                    `json:"permission,omitempty"`
}

// Apply dispatches an event to the matching handler.
func (m *Monitor) Apply(ev Event) error {
	switch ev.Type {
	case EventLoad:
		m.OnTabLoadStarted(ev.TabID, ev.URL)
	case EventClose:
		m.OnTabClosed(ev.TabID)
	case EventRequest:
		m.OnRequestObserved(ev.TabID, ev.URL)
	case EventResponse:
		m.OnResponseHeadersObserved(ev.TabID, ev.Headers)
	case EventFingerprint:
		m.OnFingerprintSignal(ev.TabID, fingerprint.Signal{Technique: ev.Technique, Canvas: ev.Canvas})
	case EventForms:
		if ev.Forms != nil {
			m.OnFormsObserved(ev.TabID, *ev.Forms)
		}
	case EventPermission:
		m.OnPermissionRequested(ev.TabID, ev.Permission)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return nil
}

// ApplyAll applies events in order and stops at the first unknown type.
func (m *Monitor) ApplyAll(events []Event) error {
	for i, ev := range events {
		if err := m.Apply(ev); err != nil {
			return fmt.Errorf("event %d: %w", i+1, err)
		}
	}
	return nil
}

// ParseEvents decodes a JSON Lines capture, one event per line.
func ParseEvents(r io.Reader) ([]Event, error) {
	dec := json.NewDecoder(r)
	events := make([]Event, 0)
	for {
		var ev Event
		err := dec.Decode(&ev)
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode event %d: %w", len(events)+1, err)
		}
		events = append(events, ev)
	}
}
