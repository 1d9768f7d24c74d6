package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lllllllleong/recordexport/internal/models"
)

type stubExporter struct {
	outcome models.ExportOutcome
	got     []models.ExportTrigger
}

func (s *stubExporter) Process(_ context.Context, trigger models.ExportTrigger) models.ExportOutcome {
	s.got = append(s.got, trigger)
	return s.outcome
}

func TestServeExport(t *testing.T) {
	tests := []struct {
		name       string
		outcome    models.ExportOutcome
		wantStatus int
	}{
		{"success", models.SuccessOutcome("export-x.csv", "https://example/x"), http.StatusOK},
		{"empty", models.EmptyOutcome(), http.StatusOK},
		{"failure", models.ExportOutcome{Success: false, ErrorMessage: "boom"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := &stubExporter{outcome: tt.outcome}
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set(executionIDHeader, "exec-42")
			rec := httptest.NewRecorder()

			serveExport(exp, rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var got models.ExportOutcome
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if got != tt.outcome {
				t.Errorf("response = %+v, want %+v", got, tt.outcome)
			}
			if len(exp.got) != 1 || exp.got[0].ExecutionID != "exec-42" {
				t.Errorf("triggers = %+v", exp.got)
			}
		})
	}
}

func TestServeExport_GeneratesExecutionID(t *testing.T) {
	exp := &stubExporter{outcome: models.EmptyOutcome()}
	rec := httptest.NewRecorder()

	serveExport(exp, rec, httptest.NewRequest(http.MethodPost, "/", nil))

	id := rec.Header().Get(executionIDHeader)
	if id == "" || len(exp.got) != 1 || exp.got[0].ExecutionID != id {
		t.Errorf("execution id header %q, trigger %+v", id, exp.got)
	}
}

func TestServeExport_RejectsGet(t *testing.T) {
	exp := &stubExporter{}
	rec := httptest.NewRecorder()

	serveExport(exp, rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusMethodNotAllowed || len(exp.got) != 0 {
		t.Errorf("status = %d, runs = %d", rec.Code, len(exp.got))
	}
}
