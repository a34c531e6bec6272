package web

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/oshokin/driver-sentry/internal/domain/behavior"
	"github.com/oshokin/driver-sentry/internal/logger"
)

// TagStatus is one tag's evaluation for the dashboard.
type TagStatus struct {
	Tag         string  `json:"tag"`
	Status      string  `json:"status"`
	Accumulated float64 `json:"accumulated"`
	Threshold   float64 `json:"threshold"`
	Progress    float64 `json:"progress"`
}

// Snapshot is the per-frame status payload.
type Snapshot struct {
	Frame          int         `json:"frame"`
	Active         []string    `json:"active"`
	Primary        string      `json:"primary"`
	AlarmPhase     string      `json:"alarm_phase"`
	AlarmIntensity float64     `json:"alarm_intensity"`
	Tags           []TagStatus `json:"tags"`
}

// SummaryRow is one line of the finalized session report.
type SummaryRow struct {
	Tag            string  `json:"tag"`
	TotalSeconds   float64 `json:"total_seconds"`
	AlarmTriggered bool    `json:"alarm_triggered"`
}

// subscriberBuffer bounds each websocket client's queue; slow clients are
// dropped rather than stalling the frame loop.
const subscriberBuffer = 16

// Server exposes the monitor's live status: a REST snapshot, the finalized
// summary and a websocket stream of per-frame snapshots.
type Server struct {
	// app is the fiber application.
	app *fiber.App
	// addr is the listen address.
	addr string

	// mu guards the latest snapshot and the summary.
	mu      sync.RWMutex
	latest  *Snapshot
	summary []SummaryRow

	// subsMu guards the websocket subscriber set.
	subsMu sync.Mutex
	subs   map[chan []byte]struct{}
}

// NewServer wires the routes. Nothing listens until Run is called.
func NewServer(addr string) *Server {
	s := &Server{
		addr: addr,
		subs: make(map[chan []byte]struct{}),
	}

	app := fiber.New(fiber.Config{
		AppName:               "driver-sentry",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/summary", s.handleSummary)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}

		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app

	return s
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- s.app.Listen(s.addr)
	}()

	logger.InfoKV(ctx, "Dashboard listening", "listen_address", s.addr)

	select {
	case <-ctx.Done():
		return s.app.Shutdown()
	case err := <-errCh:
		return err
	}
}

// Publish stores the latest snapshot and fans it out to websocket clients.
// Never blocks: clients that cannot keep up are dropped.
func (s *Server) Publish(snapshot Snapshot) {
	s.mu.Lock()
	s.latest = &snapshot
	s.mu.Unlock()

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return
	}

	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for ch := range s.subs {
		select {
		case ch <- payload:
		default:
			delete(s.subs, ch)
			close(ch)
		}
	}
}

// PublishSummary stores the finalized session report.
func (s *Server) PublishSummary(rows []behavior.SummaryRow) {
	converted := make([]SummaryRow, 0, len(rows))
	for _, row := range rows {
		converted = append(converted, SummaryRow{
			Tag:            string(row.Tag),
			TotalSeconds:   row.TotalSeconds,
			AlarmTriggered: row.EverTriggered,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.summary = converted
}

// handleStatus returns the latest per-frame snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return c.Status(fiber.StatusNoContent).SendString("")
	}

	return c.JSON(s.latest)
}

// handleSummary returns the finalized report, 404 until the stream ends.
func (s *Server) handleSummary(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.summary == nil {
		return fiber.ErrNotFound
	}

	return c.JSON(s.summary)
}

// handleStatusWS streams snapshots to one client until it disconnects or
// falls behind.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	ch := s.subscribe()
	defer s.unsubscribe(ch)

	for payload := range ch {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (s *Server) subscribe() chan []byte {
	ch := make(chan []byte, subscriberBuffer)

	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	s.subs[ch] = struct{}{}

	return ch
}

func (s *Server) unsubscribe(ch chan []byte) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
}
