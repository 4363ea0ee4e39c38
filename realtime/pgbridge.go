package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pothole-patrol/api-go/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// NotifyChannel is the Postgres channel report events travel on.
	NotifyChannel = "report_events"
	// maxNotifyPayload stays under the 8000 byte NOTIFY limit.
	maxNotifyPayload = 7900
)

// PGBridge carries report events between API instances through Postgres
// LISTEN/NOTIFY. Publishing only notifies; every instance, this one included,
// delivers to its hub when the notification comes back.
type PGBridge struct {
	db  *gorm.DB
	dsn string
	hub *Hub
	log *zap.Logger
}

func NewPGBridge(db *gorm.DB, dsn string, hub *Hub, log *zap.Logger) *PGBridge {
	return &PGBridge{db: db, dsn: dsn, hub: hub, log: log}
}

// Publish sends the event through pg_notify. When Postgres refuses it the
// event is still delivered locally.
func (b *PGBridge) Publish(ctx context.Context, eventType string, report *models.Report) {
	ev := Event{Type: eventType, ReportID: report.ID, Report: report}
	payload, err := encodeNotify(ev)
	if err == nil {
		err = b.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", NotifyChannel, payload).Error
	}
	if err != nil {
		b.log.Warn("pg_notify failed, delivering locally", zap.String("report_id", report.ID), zap.Error(err))
		b.hub.Broadcast(ev)
	}
}

// encodeNotify drops the report body when the event would not fit in a
// notification; subscribers still learn which report changed.
func encodeNotify(ev Event) (string, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("encode event: %w", err)
	}
	if len(data) > maxNotifyPayload {
		ev.Report = nil
		if data, err = json.Marshal(ev); err != nil {
			return "", fmt.Errorf("encode event: %w", err)
		}
	}
	return string(data), nil
}

// Run listens for notifications until ctx is done.
func (b *PGBridge) Run(ctx context.Context) error {
	listener := pq.NewListener(b.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			b.log.Warn("report listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	defer listener.Close()

	if err := listener.Listen(NotifyChannel); err != nil {
		return fmt.Errorf("listen %s: %w", NotifyChannel, err)
	}
	b.log.Info("listening for report events", zap.String("channel", NotifyChannel))

	for {
		select {
		case <-ctx.Done():
			return nil

		case n := <-listener.Notify:
			// nil after a reconnect
			if n == nil {
				continue
			}
			var ev Event
			if err := json.Unmarshal([]byte(n.Extra), &ev); err != nil {
				b.log.Warn("malformed report event", zap.Error(err))
				continue
			}
			b.hub.Broadcast(ev)

		case <-time.After(90 * time.Second):
			go func() {
				if err := listener.Ping(); err != nil {
					b.log.Warn("report listener ping failed", zap.Error(err))
				}
			}()
		}
	}
}
