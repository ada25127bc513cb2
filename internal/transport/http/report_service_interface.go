package http

import "context"

// ReportServiceInterface defines the contract the report handler depends
// on, allowing the service to be mocked in handler tests.
type ReportServiceInterface interface {
	GenerateControlsReport(ctx context.Context, orgID string) ([]byte, error)
}
