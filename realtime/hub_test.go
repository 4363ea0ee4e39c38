package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pothole-patrol/api-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return hub
}

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func assertNothing(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubDeliversByReportID(t *testing.T) {
	hub := startHub(t)

	all, err := hub.Subscribe()
	require.NoError(t, err)
	onlyA, err := hub.Subscribe("a")
	require.NoError(t, err)
	onlyB, err := hub.Subscribe("b")
	require.NoError(t, err)

	hub.Publish(context.Background(), "report.created", &models.Report{ID: "a"})

	assert.Equal(t, "a", receive(t, all).ReportID)
	ev := receive(t, onlyA)
	assert.Equal(t, "report.created", ev.Type)
	require.NotNil(t, ev.Report)
	assertNothing(t, onlyB)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := startHub(t)

	sub, err := hub.Subscribe()
	require.NoError(t, err)
	hub.Unsubscribe(sub)

	_, ok := <-sub.Events()
	assert.False(t, ok)
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := startHub(t)

	slow, err := hub.Subscribe()
	require.NoError(t, err)

	for i := 0; i < subscriberBuffer*3; i++ {
		hub.Broadcast(Event{Type: "report.created", ReportID: "x"})
	}

	fast, err := hub.Subscribe("y")
	require.NoError(t, err)
	hub.Broadcast(Event{Type: "report.created", ReportID: "y"})
	assert.Equal(t, "y", receive(t, fast).ReportID)
	assert.LessOrEqual(t, len(slow.Events()), subscriberBuffer)
}

func TestHubClosed(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	sub, err := hub.Subscribe()
	require.NoError(t, err)
	cancel()
	<-done

	_, ok := <-sub.Events()
	assert.False(t, ok)

	_, err = hub.Subscribe()
	assert.ErrorIs(t, err, ErrHubClosed)
	hub.Unsubscribe(sub)
	hub.Broadcast(Event{ReportID: "ignored"})
}

func TestServeWSStreamsEvents(t *testing.T) {
	hub := startHub(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ids []string
		if q := r.URL.Query().Get("ids"); q != "" {
			ids = strings.Split(q, ",")
		}
		assert.NoError(t, hub.ServeWS(w, r, ids))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?ids=r1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The subscription is registered before the upgrade completes.
	hub.Publish(context.Background(), "report.status_changed", &models.Report{ID: "r2"})
	hub.Publish(context.Background(), "report.status_changed", &models.Report{ID: "r1", Status: models.StatusResolved})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, "r1", ev.ReportID)
	assert.Equal(t, "report.status_changed", ev.Type)
	assert.Equal(t, models.StatusResolved, ev.Report.Status)
}

func TestEncodeNotifyDropsLargeReport(t *testing.T) {
	small := Event{Type: "report.created", ReportID: "a", Report: &models.Report{ID: "a", Description: "short"}}
	payload, err := encodeNotify(small)
	require.NoError(t, err)
	assert.Contains(t, payload, `"description":"short"`)

	big := Event{Type: "report.created", ReportID: "b", Report: &models.Report{ID: "b", Description: strings.Repeat("x", 9000)}}
	payload, err = encodeNotify(big)
	require.NoError(t, err)
	assert.NotContains(t, payload, "report\":{")
	assert.Contains(t, payload, `"report_id":"b"`)
}
