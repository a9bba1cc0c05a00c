package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/hitlog/pkg/analyzer"
	"github.com/ccollicutt/hitlog/pkg/output"
	"github.com/ccollicutt/hitlog/pkg/summary"
)

func newTestPayload() *Payload {
	agg := analyzer.NewAggregator(nil)
	agg.Update(`10.0.0.1 - - [10/Oct/2000:13:55:36 -0700] "GET / HTTP/1.1" 200 100`)
	agg.Update(`garbage`)

	now := time.Now()
	result := &analyzer.AnalysisResult{
		State: agg.State(),
		Metadata: analyzer.AnalysisMetadata{
			Source:    "/var/log/access.log",
			Workers:   1,
			StartTime: now.Add(-time.Second),
			EndTime:   now,
		},
	}
	return NewPayload(result.Metadata.Source, output.NewReport(result, summary.DefaultTopN()), nil)
}

func TestNewPayload(t *testing.T) {
	ok := NewPayload("a.log", nil, nil)
	assert.Equal(t, EventCompleted, ok.Event)
	assert.Empty(t, ok.Error)

	failed := NewPayload("a.log", nil, errors.New("input file not found"))
	assert.Equal(t, EventFailed, failed.Event)
	assert.Equal(t, "input file not found", failed.Error)
}

func TestClient_Send_Success(t *testing.T) {
	var receivedBody []byte
	var receivedContentType, receivedAuth, receivedEvent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		receivedAuth = r.Header.Get("Authorization")
		receivedEvent = r.Header.Get("X-Hitlog-Event")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestPayload(), SendOptions{URL: server.URL})

	require.True(t, resp.Success(), "error: %v", resp.Error)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"status":"ok"}`, resp.Body)
	assert.Equal(t, "application/json", receivedContentType)
	assert.Empty(t, receivedAuth)
	assert.Equal(t, EventCompleted, receivedEvent)

	var payload struct {
		Event  string `json:"event"`
		Source string `json:"source"`
		Report struct {
			SourceFile string `json:"source_file"`
			Summary    struct {
				Total    int64 `json:"total_lines"`
				Unparsed int64 `json:"unparsed"`
			} `json:"summary"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(receivedBody, &payload))
	assert.Equal(t, EventCompleted, payload.Event)
	assert.Equal(t, "/var/log/access.log", payload.Source)
	assert.Equal(t, "access.log", payload.Report.SourceFile)
	assert.Equal(t, int64(2), payload.Report.Summary.Total)
	assert.Equal(t, int64(1), payload.Report.Summary.Unparsed)
}

func TestClient_Send_WithBearerToken(t *testing.T) {
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestPayload(), SendOptions{
		URL:   server.URL,
		Token: "secret-token-123",
	})

	assert.True(t, resp.Success(), "error: %v", resp.Error)
	assert.Equal(t, "Bearer secret-token-123", receivedAuth)
}

func TestClient_Send_FailedRunPayload(t *testing.T) {
	var payload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), NewPayload("x.log", nil, errors.New("boom")), SendOptions{URL: server.URL})

	require.True(t, resp.Success(), "error: %v", resp.Error)
	assert.Equal(t, EventFailed, payload["event"])
	assert.Equal(t, "boom", payload["error"])
	assert.NotContains(t, payload, "report")
}

func TestClient_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestPayload(), SendOptions{URL: server.URL})

	assert.False(t, resp.Success())
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Error(t, resp.Error)
}

func TestClient_Send_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestPayload(), SendOptions{
		URL:     server.URL,
		Timeout: 50 * time.Millisecond,
	})

	assert.False(t, resp.Success())
	assert.Error(t, resp.Error)
}

func TestClient_Send_InvalidURL(t *testing.T) {
	resp := NewClient().Send(context.Background(), newTestPayload(), SendOptions{URL: "://invalid-url"})

	assert.False(t, resp.Success())
	assert.Error(t, resp.Error)
}

func TestClient_Send_ConnectionRefused(t *testing.T) {
	resp := NewClient().Send(context.Background(), newTestPayload(), SendOptions{
		URL:     "http://127.0.0.1:59999", // Unlikely to be listening
		Timeout: 100 * time.Millisecond,
	})

	assert.False(t, resp.Success())
	assert.Error(t, resp.Error)
}

func TestResponse_Success(t *testing.T) {
	tests := []struct {
		name        string
		resp        Response
		wantSuccess bool
	}{
		{"200 OK", Response{StatusCode: 200}, true},
		{"201 Created", Response{StatusCode: 201}, true},
		{"204 No Content", Response{StatusCode: 204}, true},
		{"400 Bad Request", Response{StatusCode: 400}, false},
		{"500 Server Error", Response{StatusCode: 500}, false},
		{"With Error", Response{StatusCode: 200, Error: io.EOF}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantSuccess, tt.resp.Success())
		})
	}
}
