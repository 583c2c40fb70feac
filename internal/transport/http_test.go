package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kcalabs/kca-projects/internal/domain/project"
	"github.com/stretchr/testify/require"
)

type testHandler struct {
	method string
	actor  string
	err    error
}

func (h *testHandler) Handle(_ context.Context, actor, method string, params json.RawMessage) (any, error) {
	h.method = method
	h.actor = actor
	if h.err != nil {
		return nil, h.err
	}
	return map[string]string{"actor": actor}, nil
}

type codedError struct {
	code    string
	details any
}

func (e *codedError) Error() string             { return e.code }
func (e *codedError) CodeValue() string         { return e.code }
func (e *codedError) MessageValue() string      { return "failed: " + e.code }
func (e *codedError) DetailsValue() any         { return e.details }
func (e *codedError) RecoveryHintValue() string { return "" }

type testCollection struct {
	projects []project.Project
	mode     project.ImportMode
	imported []project.Project
}

func (c *testCollection) List() []project.Project { return c.projects }

func (c *testCollection) Import(_ context.Context, projects []project.Project, mode project.ImportMode) (project.ImportResult, error) {
	c.mode = mode
	c.imported = projects
	return project.ImportResult{Mode: mode, Imported: len(projects), Total: len(projects)}, nil
}

type staticResolver struct {
	actor string
}

func (r *staticResolver) ResolveActor(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	return r.actor, nil
}

func fixedNow() time.Time { return time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC) }

func postRPC(t *testing.T, url, body string) Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/rpc", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHTTPServer_RPC(t *testing.T) {
	handler := &testHandler{}
	server := httptest.NewServer(NewServer(Options{
		Handler: handler,
		Auth:    AuthMiddleware(&staticResolver{actor: "mentor"}),
	}))
	t.Cleanup(server.Close)

	out := postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"list_projects","id":1}`)
	require.Nil(t, out.Error)
	require.Equal(t, "list_projects", handler.method)
	require.Equal(t, "mentor", handler.actor)
}

func TestHTTPServer_RPCErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		app  string
	}{
		{"method not found", &codedError{code: "METHOD_NOT_FOUND"}, ErrMethodNotFound, "METHOD_NOT_FOUND"},
		{"not found", &codedError{code: "PROJECT_NOT_FOUND"}, ErrInvalidParams, "PROJECT_NOT_FOUND"},
		{"save failed", &codedError{code: "SAVE_FAILED"}, ErrInternal, "SAVE_FAILED"},
		{"plain", errors.New("boom"), ErrInternal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(NewServer(Options{Handler: &testHandler{err: tt.err}}))
			t.Cleanup(server.Close)

			out := postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"get_project","id":7}`)
			require.NotNil(t, out.Error)
			require.Equal(t, tt.code, out.Error.Code)
			if tt.app != "" {
				data, ok := out.Error.Data.(map[string]any)
				require.True(t, ok)
				require.Equal(t, tt.app, data["code"])
			}
		})
	}
}

func TestHTTPServer_RPCInvalidRequest(t *testing.T) {
	server := httptest.NewServer(NewServer(Options{Handler: &testHandler{}}))
	t.Cleanup(server.Close)

	out := postRPC(t, server.URL, `{"jsonrpc":"1.0"}`)
	require.NotNil(t, out.Error)
	require.Equal(t, ErrInvalidReq, out.Error.Code)
}

func TestHTTPServer_Unauthorized(t *testing.T) {
	server := httptest.NewServer(NewServer(Options{
		Handler:    &testHandler{},
		Collection: &testCollection{},
		Auth:       AuthMiddleware(&staticResolver{actor: "mentor"}),
	}))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/backup")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTPServer_Health(t *testing.T) {
	server := httptest.NewServer(NewServer(Options{Handler: &testHandler{}}))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(body), "http_request_duration_seconds")
}

func TestHTTPServer_BackupRoundTrip(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	collection := &testCollection{projects: []project.Project{{
		ID:          "p1",
		Title:       "Library Kiosk",
		Status:      project.DefaultStatus(),
		Priority:    project.PriorityHigh,
		StartDate:   start,
		CreatedAt:   start,
		LastUpdated: start,
	}}}
	server := httptest.NewServer(NewServer(Options{
		Handler:    &testHandler{},
		Collection: collection,
		Now:        fixedNow,
	}))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/backup")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Equal(t, `attachment; filename="kca-projects-backup-2024-05-06.json"`, resp.Header.Get("Content-Disposition"))
	require.Contains(t, string(body), `"startDate": "2024-01-02T00:00:00.000Z"`)

	resp, err = http.Post(server.URL+"/backup?mode=merge", "application/json; charset=utf-8", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, project.ImportMerge, collection.mode)
	require.Len(t, collection.imported, 1)
	require.Equal(t, "Library Kiosk", collection.imported[0].Title)
}

func TestHTTPServer_BackupImportErrors(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		contentType string
		body        string
		status      int
	}{
		{"not json", "", "text/plain", `[]`, http.StatusUnsupportedMediaType},
		{"not array", "", "application/json", `{"a":1}`, http.StatusBadRequest},
		{"malformed", "", "application/json", `[{`, http.StatusBadRequest},
		{"invalid record", "", "application/json", `[{"id":""}]`, http.StatusBadRequest},
		{"bad mode", "?mode=upsert", "application/json", `[]`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collection := &testCollection{}
			server := httptest.NewServer(NewServer(Options{Handler: &testHandler{}, Collection: collection}))
			t.Cleanup(server.Close)

			resp, err := http.Post(server.URL+"/backup"+tt.query, tt.contentType, strings.NewReader(tt.body))
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, tt.status, resp.StatusCode)
			require.Nil(t, collection.imported)
		})
	}
}
