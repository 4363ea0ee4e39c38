package reports

import (
	"context"
	"errors"
	"fmt"

	"github.com/pothole-patrol/api-go/backend"
	"github.com/pothole-patrol/api-go/models"
	"go.uber.org/zap"
)

var ErrInvalidTransition = errors.New("status transition not allowed")

// next maps each status to the only status it may move to.
var next = map[models.ReportStatus]models.ReportStatus{
	models.StatusReported:   models.StatusInProgress,
	models.StatusInProgress: models.StatusResolved,
}

func CanTransition(from, to models.ReportStatus) bool {
	n, ok := next[from]
	return ok && n == to
}

// Actions are the admin controls enabled for a report in a given status.
type Actions struct {
	MarkInProgress bool `json:"mark_in_progress"`
	MarkResolved   bool `json:"mark_resolved"`
	Notify         bool `json:"notify"`
}

func ActionsFor(status models.ReportStatus) Actions {
	return Actions{
		MarkInProgress: CanTransition(status, models.StatusInProgress),
		MarkResolved:   CanTransition(status, models.StatusResolved),
		Notify:         status == models.StatusInProgress,
	}
}

// Lifecycle moves reports along reported -> in-progress -> resolved.
type Lifecycle struct {
	reports   backend.ReportStore
	publisher Publisher
	log       *zap.Logger
}

func NewLifecycle(reports backend.ReportStore, publisher Publisher, log *zap.Logger) *Lifecycle {
	return &Lifecycle{reports: reports, publisher: publisher, log: log}
}

func (l *Lifecycle) Actions(ctx context.Context, id string) (*models.Report, Actions, error) {
	report, err := l.reports.Report(ctx, id)
	if err != nil {
		return nil, Actions{}, err
	}
	return report, ActionsFor(report.Status), nil
}

// Advance moves the report to status to. Illegal edges are refused before any
// write; a report moved by someone else in the meantime yields
// backend.ErrStaleStatus.
func (l *Lifecycle) Advance(ctx context.Context, id string, to models.ReportStatus) (*models.Report, error) {
	report, err := l.reports.Report(ctx, id)
	if err != nil {
		return nil, err
	}
	from := report.Status
	if !CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}

	updated, err := l.reports.TransitionStatus(ctx, id, from, to)
	if err != nil {
		return nil, err
	}

	l.log.Info("report status changed",
		zap.String("report_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	if l.publisher != nil {
		l.publisher.Publish(ctx, EventReportStatusChanged, updated)
	}
	return updated, nil
}

// NotifyAuthority only logs; no authority integration exists.
func (l *Lifecycle) NotifyAuthority(ctx context.Context, id string) (*models.Report, error) {
	report, err := l.reports.Report(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ActionsFor(report.Status).Notify {
		return nil, fmt.Errorf("%w: notify requires %s", ErrInvalidTransition, models.StatusInProgress)
	}
	l.log.Info("sending location details to authority",
		zap.String("report_id", report.ID),
		zap.Float64("latitude", report.Latitude),
		zap.Float64("longitude", report.Longitude),
	)
	return report, nil
}
