package web

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/driver-sentry/internal/domain/behavior"
)

// TestStatusEndpoint verifies the latest snapshot is served after Publish.
func TestStatusEndpoint(t *testing.T) {
	t.Parallel()

	s := NewServer(":0")

	// No snapshot yet.
	resp, err := s.app.Test(httptest.NewRequest("GET", "/api/status", nil))
	require.NoError(t, err)
	require.Equal(t, 204, resp.StatusCode)

	s.Publish(Snapshot{
		Frame:      30,
		Active:     []string{"Eyes Closed"},
		Primary:    "Eyes Closed",
		AlarmPhase: "ACTIVE",
		Tags: []TagStatus{
			{Tag: "Eyes Closed", Status: "CROSSED", Accumulated: 3, Threshold: 3, Progress: 1},
		},
	})

	resp, err = s.app.Test(httptest.NewRequest("GET", "/api/status", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got Snapshot
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, 30, got.Frame)
	require.Equal(t, "Eyes Closed", got.Primary)
	require.Equal(t, "ACTIVE", got.AlarmPhase)
}

// TestSummaryEndpoint verifies the report appears only after finalization.
func TestSummaryEndpoint(t *testing.T) {
	t.Parallel()

	s := NewServer(":0")

	resp, err := s.app.Test(httptest.NewRequest("GET", "/api/summary", nil))
	require.NoError(t, err)
	require.Equal(t, 404, resp.StatusCode)

	s.PublishSummary([]behavior.SummaryRow{
		{Tag: "Texting", TotalSeconds: 9.5, EverTriggered: true},
	})

	resp, err = s.app.Test(httptest.NewRequest("GET", "/api/summary", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var rows []SummaryRow
	require.NoError(t, json.Unmarshal(body, &rows))
	require.Len(t, rows, 1)
	require.Equal(t, "Texting", rows[0].Tag)
	require.True(t, rows[0].AlarmTriggered)
}

// TestSlowSubscriberDropped verifies a stalled websocket client is removed
// instead of blocking the frame loop.
func TestSlowSubscriberDropped(t *testing.T) {
	t.Parallel()

	s := NewServer(":0")
	ch := s.subscribe()

	// Fill the buffer and overflow it by one.
	for i := 0; i <= subscriberBuffer; i++ {
		s.Publish(Snapshot{Frame: i})
	}

	s.subsMu.Lock()
	_, stillThere := s.subs[ch]
	s.subsMu.Unlock()

	require.False(t, stillThere)

	// The channel was closed on drop; drain to prove it.
	count := 0
	for range ch {
		count++
	}

	require.Equal(t, subscriberBuffer, count)
}
