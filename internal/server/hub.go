package server

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/nao1215/privacygrade/internal/model"
)

// subscriberBuffer is how many paint messages a slow subscriber may lag
// behind before further messages to it are dropped.
const subscriberBuffer = 32

// PaintMessage is one repainted grade as streamed to subscribers.
type PaintMessage struct {
	TabID int         `json:"tab_id"`
	Grade model.Grade `json:"grade"`
	Score int         `json:"score"`
	Color string      `json:"color"`
}

// Hub fans paint messages out to subscribers. It implements
// monitor.Painter.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]chan PaintMessage
	logger *slog.Logger
}

// NewHub creates a Hub with no subscribers.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[string]chan PaintMessage),
		logger: logger,
	}
}

// Subscribe registers a subscriber and returns its ID and message channel.
func (h *Hub) Subscribe() (string, <-chan PaintMessage) {
	id := uuid.NewString()
	ch := make(chan PaintMessage, subscriberBuffer)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	h.logger.Debug("subscriber joined", "subscriber", id)
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()

	if ok {
		close(ch)
		h.logger.Debug("subscriber left", "subscriber", id)
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Paint sends the grade to every subscriber without blocking.
func (h *Hub) Paint(tabID int, grade model.Grade, score int) {
	msg := PaintMessage{TabID: tabID, Grade: grade, Score: score, Color: grade.Color()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- msg:
		default:
			h.logger.Warn("dropping paint for slow subscriber", "subscriber", id, "tab", tabID)
		}
	}
}
