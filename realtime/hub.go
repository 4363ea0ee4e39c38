// Package realtime fans report events out to live subscribers.
package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/pothole-patrol/api-go/models"
	"go.uber.org/zap"
)

var ErrHubClosed = errors.New("realtime hub is closed")

const (
	subscriberBuffer = 64
	broadcastBuffer  = 256
)

// Event is a change to one report.
type Event struct {
	Type     string         `json:"type"`
	ReportID string         `json:"report_id"`
	Report   *models.Report `json:"report,omitempty"`
}

// Subscription receives the events of the reports it follows, or of every
// report when it follows none in particular.
type Subscription struct {
	ids map[string]struct{}
	ch  chan Event
}

func (s *Subscription) Events() <-chan Event {
	return s.ch
}

func (s *Subscription) follows(reportID string) bool {
	if len(s.ids) == 0 {
		return true
	}
	_, ok := s.ids[reportID]
	return ok
}

// Hub owns the subscriber set. All mutations run on the Run goroutine.
type Hub struct {
	register   chan *Subscription
	unregister chan *Subscription
	broadcast  chan Event
	done       chan struct{}
	closeOnce  sync.Once
	log        *zap.Logger

	subs map[*Subscription]struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *Subscription),
		unregister: make(chan *Subscription),
		broadcast:  make(chan Event, broadcastBuffer),
		done:       make(chan struct{}),
		log:        log,
		subs:       make(map[*Subscription]struct{}),
	}
}

// Run serves the hub until ctx is done, then closes every subscription.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("realtime hub started")
	defer h.closeOnce.Do(func() { close(h.done) })

	for {
		select {
		case <-ctx.Done():
			for sub := range h.subs {
				delete(h.subs, sub)
				close(sub.ch)
			}
			h.log.Info("realtime hub stopped")
			return

		case sub := <-h.register:
			h.subs[sub] = struct{}{}
			h.log.Debug("subscriber joined", zap.Int("subscribers", len(h.subs)))

		case sub := <-h.unregister:
			if _, ok := h.subs[sub]; ok {
				delete(h.subs, sub)
				close(sub.ch)
				h.log.Debug("subscriber left", zap.Int("subscribers", len(h.subs)))
			}

		case ev := <-h.broadcast:
			for sub := range h.subs {
				if !sub.follows(ev.ReportID) {
					continue
				}
				select {
				case sub.ch <- ev:
				default:
					h.log.Warn("dropping event for slow subscriber", zap.String("report_id", ev.ReportID))
				}
			}
		}
	}
}

// Subscribe follows the given report IDs, or every report when none are given.
func (h *Hub) Subscribe(ids ...string) (*Subscription, error) {
	sub := &Subscription{ids: make(map[string]struct{}, len(ids)), ch: make(chan Event, subscriberBuffer)}
	for _, id := range ids {
		if id != "" {
			sub.ids[id] = struct{}{}
		}
	}
	select {
	case h.register <- sub:
		return sub, nil
	case <-h.done:
		return nil, ErrHubClosed
	}
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

// Broadcast queues ev for delivery and never blocks. Events are dropped when
// the queue is full or the hub has stopped.
func (h *Hub) Broadcast(ev Event) {
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.broadcast <- ev:
	default:
		h.log.Warn("realtime queue full, dropping event", zap.String("type", ev.Type), zap.String("report_id", ev.ReportID))
	}
}

// Publish delivers a report event to local subscribers.
func (h *Hub) Publish(_ context.Context, eventType string, report *models.Report) {
	h.Broadcast(Event{Type: eventType, ReportID: report.ID, Report: report})
}
