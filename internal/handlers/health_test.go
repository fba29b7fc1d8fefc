package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeChecker reports a configurable collection state.
type fakeChecker struct {
	exists bool
	err    error
}

func (f *fakeChecker) CollectionExists(ctx context.Context, collection string) (bool, error) {
	return f.exists, f.err
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		checker    *fakeChecker
		wantStatus int
		wantHealth string
	}{
		{
			name:       "healthy",
			checker:    &fakeChecker{exists: true},
			wantStatus: http.StatusOK,
			wantHealth: "healthy",
		},
		{
			name:       "vector store unreachable",
			checker:    &fakeChecker{err: errors.New("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: "unhealthy",
		},
		{
			name:       "collection missing",
			checker:    &fakeChecker{exists: false},
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.checker, "documents")
			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantHealth {
				t.Errorf("health status = %q, want %q", resp.Status, tt.wantHealth)
			}
			if resp.Checks["vector_store"] == "" {
				t.Error("response missing vector_store check")
			}
		})
	}
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	handler := NewHealthHandler(&fakeChecker{exists: true}, "documents")
	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}
