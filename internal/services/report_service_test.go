package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrlreport/internal/onetrust"
	"ctrlreport/internal/report"
)

type stubFetcher struct {
	records []onetrust.ControlRecord
	err     error
	calls   int
	lastOrg string
}

func (f *stubFetcher) FetchAll(ctx context.Context, orgID string) ([]onetrust.ControlRecord, error) {
	f.calls++
	f.lastOrg = orgID
	return f.records, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerateControlsReport(t *testing.T) {
	fetcher := &stubFetcher{
		records: []onetrust.ControlRecord{
			{Control: onetrust.Control{Identifier: "1.1", Name: "Access review"}},
			{Control: onetrust.Control{Identifier: "1.2", Name: "Change control"}},
		},
	}

	service := NewReportService(fetcher, report.NewRenderer(discardLogger()), discardLogger())

	pdf, err := service.GenerateControlsReport(context.Background(), "org-7")

	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, "org-7", fetcher.lastOrg)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestGenerateControlsReportEmptyOrganization(t *testing.T) {
	service := NewReportService(&stubFetcher{}, report.NewRenderer(discardLogger()), discardLogger())

	pdf, err := service.GenerateControlsReport(context.Background(), "org-empty")

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestGenerateControlsReportFetchFailure(t *testing.T) {
	upstream := &onetrust.UpstreamError{Page: 2, StatusCode: 502}
	fetcher := &stubFetcher{err: upstream}

	service := NewReportService(fetcher, report.NewRenderer(discardLogger()), discardLogger())

	pdf, err := service.GenerateControlsReport(context.Background(), "org-7")

	assert.Nil(t, pdf)

	var ue *onetrust.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, 2, ue.Page)
}

func TestGenerateControlsReportWrapsFetchError(t *testing.T) {
	sentinel := errors.New("boom")
	service := NewReportService(&stubFetcher{err: sentinel}, report.NewRenderer(discardLogger()), discardLogger())

	_, err := service.GenerateControlsReport(context.Background(), "org-7")

	require.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "org-7")
}
