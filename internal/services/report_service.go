package services

import (
	"context"
	"fmt"
	"log/slog"

	"ctrlreport/internal/onetrust"
	"ctrlreport/internal/report"
)

// ControlsFetcher retrieves the full control record set of an organization
type ControlsFetcher interface {
	FetchAll(ctx context.Context, orgID string) ([]onetrust.ControlRecord, error)
}

// ReportService generates controls summary reports. One collection pass
// followed by one rendering pass, no intermediate storage; concurrent
// requests for different organizations share no mutable state.
type ReportService struct {
	fetcher  ControlsFetcher
	renderer *report.Renderer
	logger   *slog.Logger
}

// NewReportService creates a report service with injected dependencies
func NewReportService(fetcher ControlsFetcher, renderer *report.Renderer, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		fetcher:  fetcher,
		renderer: renderer,
		logger:   logger.With(slog.String("service", "report")),
	}
}

// GenerateControlsReport fetches every control implementation of the
// organization and renders the summary PDF. A collection failure aborts
// the request; no partial report is produced.
func (s *ReportService) GenerateControlsReport(ctx context.Context, orgID string) ([]byte, error) {
	s.logger.InfoContext(ctx, "generating controls report",
		slog.String("organization_id", orgID))

	records, err := s.fetcher.FetchAll(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to collect controls for organization %s: %w", orgID, err)
	}

	pdf, err := s.renderer.Render(records)
	if err != nil {
		return nil, fmt.Errorf("failed to render controls report for organization %s: %w", orgID, err)
	}

	s.logger.InfoContext(ctx, "controls report generated",
		slog.String("organization_id", orgID),
		slog.Int("records", len(records)),
		slog.Int("bytes", len(pdf)))

	return pdf, nil
}
