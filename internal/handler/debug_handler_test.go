package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type connectionBody struct {
	Success       bool   `json:"success"`
	Error         string `json:"error"`
	HasToken      bool   `json:"hasToken"`
	HasDatabaseID bool   `json:"hasDatabaseId"`
	Database      *struct {
		Title        string `json:"title"`
		DataSourceID string `json:"dataSourceId"`
	} `json:"database"`
	Results *struct {
		Count         int      `json:"count"`
		PropertyNames []string `json:"propertyNames"`
	} `json:"results"`
}

func TestDebugHandler_Health(t *testing.T) {
	h := NewDebugHandler(nil, SourceStatus{})

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"status":"ok"}` {
		t.Errorf("body = %s", got)
	}
}

func TestDebugHandler_Connection_MissingEnvironment(t *testing.T) {
	tests := []struct {
		name   string
		status SourceStatus
	}{
		{"トークンなし", SourceStatus{HasToken: false, HasDatabaseID: true}},
		{"データベースIDなし", SourceStatus{HasToken: true, HasDatabaseID: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &mockPostService{
				checkConnectionFn: func(ctx context.Context) (*connectionResult, error) {
					called = true
					return nil, nil
				},
			}
			h := NewDebugHandler(svc, tt.status)

			w := httptest.NewRecorder()
			h.Connection(w, httptest.NewRequest(http.MethodGet, "/api/debug/connection", nil))

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}
			body := decodeJSON[connectionBody](t, w)
			if body.Success || body.Error != "Missing environment variables" {
				t.Errorf("body = %+v", body)
			}
			if body.HasToken != tt.status.HasToken || body.HasDatabaseID != tt.status.HasDatabaseID {
				t.Errorf("hasToken/hasDatabaseId = %v/%v", body.HasToken, body.HasDatabaseID)
			}
			if called {
				t.Error("connection check should not run without credentials")
			}
		})
	}
}

func TestDebugHandler_Connection_Success(t *testing.T) {
	svc := &mockPostService{
		checkConnectionFn: func(ctx context.Context) (*connectionResult, error) {
			return &connectionResult{
				Configured:    true,
				DataSourceID:  "ds-1",
				DatabaseTitle: "Blog",
				PropertyNames: []string{"Published", "Tags", "Title"},
				Count:         4,
			}, nil
		},
	}
	h := NewDebugHandler(svc, SourceStatus{HasToken: true, HasDatabaseID: true})

	w := httptest.NewRecorder()
	h.Connection(w, httptest.NewRequest(http.MethodGet, "/api/debug/connection", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeJSON[connectionBody](t, w)
	if !body.Success || body.Error != "" {
		t.Errorf("body = %+v", body)
	}
	if body.Database == nil || body.Database.DataSourceID != "ds-1" || body.Database.Title != "Blog" {
		t.Errorf("database = %+v", body.Database)
	}
	if body.Results == nil || body.Results.Count != 4 || len(body.Results.PropertyNames) != 3 {
		t.Errorf("results = %+v", body.Results)
	}
}

func TestDebugHandler_Connection_QueryFailure(t *testing.T) {
	svc := &mockPostService{
		checkConnectionFn: func(ctx context.Context) (*connectionResult, error) {
			return &connectionResult{Configured: true, DataSourceID: "ds-1", DatabaseTitle: "Blog"},
				errors.New("failed to query data source: notion: 400 validation_error")
		},
	}
	h := NewDebugHandler(svc, SourceStatus{HasToken: true, HasDatabaseID: true})

	w := httptest.NewRecorder()
	h.Connection(w, httptest.NewRequest(http.MethodGet, "/api/debug/connection", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	body := decodeJSON[connectionBody](t, w)
	if body.Success {
		t.Error("success should be false")
	}
	if body.Database == nil || body.Database.DataSourceID != "ds-1" {
		t.Errorf("partial database info should be reported: %+v", body.Database)
	}
	if body.Results != nil {
		t.Errorf("results should be omitted on failure: %+v", body.Results)
	}
	if strings.Contains(w.Body.String(), "validation_error") {
		t.Error("upstream error detail must not be exposed")
	}
}
