package onetrust

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrlreport/internal/config"
	"ctrlreport/internal/shared/testutil"
)

func testConfig(baseURL string) config.OneTrustConfig {
	return config.OneTrustConfig{
		BaseURL:        baseURL,
		Token:          "test-token",
		PageSize:       50,
		MaxPages:       1000,
		RequestTimeout: 5 * time.Second,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type capturedRequest struct {
	page    string
	size    string
	auth    string
	accept  string
	content string
	body    searchRequest
}

func pageBody(t *testing.T, identifiers []string, totalPages int) []byte {
	t.Helper()

	resp := pageResponse{TotalPages: totalPages}
	for _, id := range identifiers {
		resp.Content = append(resp.Content, ControlRecord{
			Control: Control{Identifier: id},
		})
	}

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	return body
}

func TestFetchAllWalksEveryPage(t *testing.T) {
	var requests []capturedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var body searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		requests = append(requests, capturedRequest{
			page:    r.URL.Query().Get("page"),
			size:    r.URL.Query().Get("size"),
			auth:    r.Header.Get("Authorization"),
			accept:  r.Header.Get("Accept"),
			content: r.Header.Get("Content-Type"),
			body:    body,
		})

		page := r.URL.Query().Get("page")
		w.Write(pageBody(t, []string{"id-" + page}, 3))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), discardLogger())

	records, err := client.FetchAll(context.Background(), "org-42")
	require.NoError(t, err)

	require.Len(t, requests, 3)
	for i, req := range requests {
		assert.Equal(t, fmt.Sprintf("%d", i), req.page)
		assert.Equal(t, "50", req.size)
		assert.Equal(t, "Bearer test-token", req.auth)
		assert.Equal(t, "application/json", req.accept)
		assert.Equal(t, "application/json", req.content)

		require.Len(t, req.body.Filters, 1)
		assert.Equal(t, "organizationId", req.body.Filters[0].Field)
		assert.Equal(t, "EQUAL_TO", req.body.Filters[0].Operator)
		assert.Equal(t, "org-42", req.body.Filters[0].Value)
	}

	require.Len(t, records, 3)
	assert.Equal(t, "id-0", records[0].Control.Identifier)
	assert.Equal(t, "id-2", records[2].Control.Identifier)
}

func TestFetchAllSinglePage(t *testing.T) {
	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write(pageBody(t, []string{"1.1", "1.2"}, 1))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), discardLogger())

	records, err := client.FetchAll(context.Background(), "org-1")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Len(t, records, 2)
}

func TestFetchAllEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pageBody(t, nil, 0))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), discardLogger())

	records, err := client.FetchAll(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchAllAbortsOnUpstreamStatus(t *testing.T) {
	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write(pageBody(t, []string{"1.1"}, 3))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), discardLogger())

	records, err := client.FetchAll(context.Background(), "org-1")

	// A failing page aborts the whole fetch; no partial result comes back.
	assert.Nil(t, records)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 1, upstream.Page)
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
}

func TestFetchAllTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(testConfig(server.URL), discardLogger())

	_, err := client.FetchAll(context.Background(), "org-1")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 0, upstream.Page)
	assert.NotNil(t, upstream.Unwrap())
}

func TestFetchAllMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "{not json")
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), discardLogger())

	_, err := client.FetchAll(context.Background(), "org-1")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
}

func TestFetchAllStopsAtPageLimit(t *testing.T) {
	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// The upstream keeps promising more pages than the client allows.
		w.Write(pageBody(t, []string{"x"}, 1_000_000))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxPages = 3

	client := NewClient(cfg, discardLogger())

	_, err := client.FetchAll(context.Background(), "org-1")

	require.ErrorIs(t, err, ErrPageLimit)
	assert.Equal(t, 3, calls)
}

func TestNewClientWarnsWhenTLSVerificationDisabled(t *testing.T) {
	logger, handler := testutil.NewBufferedLogger(t)

	cfg := testConfig("https://example.invalid")
	cfg.InsecureSkipVerify = true

	NewClient(cfg, logger)

	assert.True(t, handler.HasMessageContaining("TLS certificate verification is disabled"))
}

func TestFetchAllRespectsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the aborted connection
		// and cancels the request context.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.FetchAll(ctx, "org-1")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
