package reports

import (
	"context"
	"errors"

	"github.com/pothole-patrol/api-go/backend"
	"github.com/pothole-patrol/api-go/models"
	"github.com/pothole-patrol/api-go/types"
)

var ErrInvalidFilter = errors.New("status filter must be one of all, reported, in-progress, resolved")

// FilterAll selects every report regardless of status.
const FilterAll = "all"

// ParseFilter accepts "all", an empty string or a report status.
func ParseFilter(filter string) (models.ReportStatus, error) {
	if filter == "" || filter == FilterAll {
		return "", nil
	}
	status := models.ReportStatus(filter)
	if !status.Valid() {
		return "", ErrInvalidFilter
	}
	return status, nil
}

// Lister serves the three report views. Every call reads the backend; there
// is no cache shared across views.
type Lister struct {
	reports backend.ReportStore
}

func NewLister(reports backend.ReportStore) *Lister {
	return &Lister{reports: reports}
}

// All lists every report, newest first.
func (l *Lister) All(ctx context.Context) ([]models.Report, error) {
	return l.reports.ListReports(ctx, backend.ListOptions{})
}

// Recent lists the newest reports for the history grid.
func (l *Lister) Recent(ctx context.Context) ([]models.Report, error) {
	return l.reports.ListReports(ctx, backend.ListOptions{Limit: types.HISTORY_LIMIT})
}

func (l *Lister) Filter(ctx context.Context, filter string) ([]models.Report, error) {
	status, err := ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	return l.reports.ListReports(ctx, backend.ListOptions{Status: status})
}

func (l *Lister) Get(ctx context.Context, id string) (*models.Report, error) {
	return l.reports.Report(ctx, id)
}
