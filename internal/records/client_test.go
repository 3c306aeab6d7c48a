// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package records

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/report-card/internal/httputil"
	"github.com/pdiddy/report-card/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

const sampleRecordsJSON = `[
  {"Sl No": 1, "Reg_No": "21BCE001", "Name": "Asha Rao", "Subject_Code": "CS101",
   "Subject_Name": "Programming in C", "Type": "Theory", "Credits": 4, "Grade": "O"},
  {"Sl No": 2, "Reg_No": "21BCE001", "Name": "Asha Rao", "Subject_Code": "MA101",
   "Subject_Name": "Calculus", "Type": "Theory", "Credits": "3", "Grade": "A"}
]`

func recordServer(t *testing.T, status int, body string) (*httptest.Server, func() *http.Request) {
	t.Helper()
	var captured *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts, func() *http.Request { return captured }
}

func testClient(ts *httptest.Server) *Client {
	c := NewClient(types.RecordServiceConfig{BaseURL: ts.URL + "/"})
	c.HTTP = ts.Client()
	return c
}

func TestFetchSuccess(t *testing.T) {
	ts, lastReq := recordServer(t, http.StatusOK, sampleRecordsJSON)
	c := testClient(ts)
	c.Token = "tok_123"

	records, err := c.Fetch(context.Background(), "21BCE001")
	require.NoError(t, err)
	require.Len(t, records, 2)

	req := lastReq()
	require.NotNil(t, req)
	assert.Equal(t, "/api/students/21BCE001", req.URL.Path)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "report-card/0.1", req.Header.Get("User-Agent"))
	assert.Equal(t, "Bearer tok_123", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))

	assert.Equal(t, "Asha Rao", records[0].StudentName)
	assert.Equal(t, "CS101", records[0].SubjectCode)
	assert.Equal(t, 4.0, records[0].Credits.Float())
	assert.Equal(t, 3.0, records[1].Credits.Float())
	assert.Equal(t, "A", records[1].Grade)
}

func TestFetchEmptyArrayIsSuccess(t *testing.T) {
	ts, _ := recordServer(t, http.StatusOK, `[]`)

	records, err := testClient(ts).Fetch(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{"not found", http.StatusNotFound, `{"error":"no such student"}`, "HTTP 404"},
		{"server error", http.StatusInternalServerError, `oops`, "HTTP 500"},
		{"malformed json", http.StatusOK, `[{"Sl No": 1,`, "parsing record service response"},
		{"object instead of array", http.StatusOK, `{"Name": "x"}`, "expected a JSON array"},
		{"null body", http.StatusOK, `null`, "expected a JSON array"},
		{"wrong field type", http.StatusOK, `[{"Sl No": "first"}]`, "parsing record service response"},
		{"empty body", http.StatusOK, ``, "parsing record service response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := recordServer(t, tt.status, tt.body)

			records, err := testClient(ts).Fetch(context.Background(), "21BCE001")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrLookupFailed)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Nil(t, records)
		})
	}
}

func TestFetchTransportError(t *testing.T) {
	ts, _ := recordServer(t, http.StatusOK, `[]`)
	c := testClient(ts)
	ts.Close()

	_, err := c.Fetch(context.Background(), "21BCE001")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLookupFailed)
}

func TestFetchBlankRegistrationNumber(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	_, err := testClient(ts).Fetch(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrLookupFailed)
	assert.ErrorIs(t, err, ErrEmptyRegistrationNumber)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestFetchRetriesWhenEnabled(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, sampleRecordsJSON)
	}))
	defer ts.Close()

	c := testClient(ts)
	c.MaxRetries = 2

	records, err := c.Fetch(context.Background(), "21BCE001")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestStudentURLEscapesPath(t *testing.T) {
	c := NewClient(types.RecordServiceConfig{BaseURL: "http://records.test/"})
	assert.Equal(t, "http://records.test/api/students/21%2FBCE%20001", c.StudentURL("21/BCE 001"))
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(types.RecordServiceConfig{})
	assert.Equal(t, "http://localhost:5000", c.BaseURL)
	assert.Equal(t, "report-card/0.1", c.UserAgent)
	assert.Equal(t, 30*time.Second, c.HTTP.Timeout)
	assert.Zero(t, c.MaxRetries)
}
