package monitor

import (
	"context"
	"time"

	"github.com/oshokin/driver-sentry/internal/alarm"
	"github.com/oshokin/driver-sentry/internal/config"
	"github.com/oshokin/driver-sentry/internal/domain/behavior"
	"github.com/oshokin/driver-sentry/internal/logger"
	"github.com/oshokin/driver-sentry/internal/repository/report"
	"github.com/oshokin/driver-sentry/internal/summary"
	"github.com/oshokin/driver-sentry/internal/threshold"
	"github.com/oshokin/driver-sentry/internal/tracker"
	"github.com/oshokin/driver-sentry/internal/web"
)

// service wires the per-frame pipeline: duration tracking, threshold
// evaluation, alarm control, summary recording and status publishing.
// It is unexported to keep the capture transport decoupled from the
// decision logic.
type service struct {
	// cfg is the loaded monitor configuration.
	cfg *config.Config
	// tracker accumulates per-tag presence across frames.
	tracker *tracker.Tracker
	// evaluator compares accumulated values against thresholds.
	evaluator *threshold.Evaluator
	// recorder keeps session-wide totals for the final report.
	recorder *summary.Recorder
	// controller owns the alarm state machine.
	controller *alarm.Controller
	// dashboard publishes live status when non-nil.
	dashboard *web.Server
	// reports persists the finalized summary when non-nil.
	reports report.Repository
}

// newService assembles the pipeline from the configuration and collaborators.
// dashboard and reports are optional.
func newService(cfg *config.Config, controller *alarm.Controller, dashboard *web.Server, reports report.Repository) *service {
	return &service{
		cfg:        cfg,
		tracker:    tracker.New(cfg),
		evaluator:  threshold.New(cfg),
		recorder:   summary.New(cfg),
		controller: controller,
		dashboard:  dashboard,
		reports:    reports,
	}
}

// step processes one frame's observation: updates the tracker and the
// recorder, evaluates thresholds and drives the alarm. All alarm phase
// transitions happen here, never in the escalation goroutine.
func (s *service) step(ctx context.Context, o *behavior.Observation) *threshold.Result {
	s.tracker.Update(o)
	s.recorder.Observe(o)

	result := s.evaluator.Evaluate(s.tracker.Snapshot())

	if result.Crossed() {
		// A trigger while already active is a controller no-op; the armed
		// check only gates fresh activations on live streams.
		if s.controller.Phase() != behavior.PhaseActive && s.tracker.Armed(time.Now()) {
			logger.InfoKV(ctx, "Threshold crossed",
				"frame", o.Index,
				"primary", string(result.Primary),
				"crossed", result.CrossedCount)

			s.controller.Trigger(ctx)
			s.tracker.NoteFired(time.Now())
		}
	} else {
		s.controller.Silence(ctx)
	}

	s.publish(o, result)

	return result
}

// publish pushes the frame's evaluation to the dashboard, if one is running.
func (s *service) publish(o *behavior.Observation, result *threshold.Result) {
	if s.dashboard == nil {
		return
	}

	tags := s.cfg.Tags()
	statuses := make([]web.TagStatus, 0, len(tags))
	active := make([]string, 0, len(o.Regions))

	for _, tag := range tags {
		limit, _ := s.evaluator.Limit(tag)
		statuses = append(statuses, web.TagStatus{
			Tag:         string(tag),
			Status:      result.Statuses[tag].String(),
			Accumulated: s.tracker.Accumulated(tag),
			Threshold:   limit,
			Progress:    result.Progress[tag],
		})

		if o.Active(tag) {
			active = append(active, string(tag))
		}
	}

	s.dashboard.Publish(web.Snapshot{
		Frame:          o.Index,
		Active:         active,
		Primary:        string(result.Primary),
		AlarmPhase:     s.controller.Phase().String(),
		AlarmIntensity: s.controller.Intensity(),
		Tags:           statuses,
	})
}

// finalize shuts the alarm down, builds the session summary, publishes and
// persists it, and returns the rows in configuration order.
func (s *service) finalize(ctx context.Context) []behavior.SummaryRow {
	s.controller.Shutdown(ctx)

	rows := s.recorder.Finalize(s.tracker.Snapshot(), s.evaluator)

	for _, row := range rows {
		logger.InfoKV(ctx, "Session summary",
			"tag", string(row.Tag),
			"total_seconds", row.TotalSeconds,
			"alarm_triggered", row.EverTriggered)
	}

	if s.dashboard != nil {
		s.dashboard.PublishSummary(rows)
	}

	if s.reports != nil {
		if err := s.reports.Save(ctx, rows); err != nil {
			logger.Errorf(ctx, "Failed to persist session report: %v", err)
		}
	}

	return rows
}
