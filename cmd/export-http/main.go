package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Lllllllleong/recordexport/internal/metrics"
	"github.com/Lllllllleong/recordexport/internal/models"
	"github.com/Lllllllleong/recordexport/internal/services"
)

// executionIDHeader lets a caller such as a scheduler correlate its request
// with the run's logs.
const executionIDHeader = "X-Execution-Id"

type exporter interface {
	Process(ctx context.Context, trigger models.ExportTrigger) models.ExportOutcome
}

var (
	exporterInstance exporter
	once             sync.Once
	initErr          error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleExport", handleExport)
	functions.HTTP("HandleMetrics", metrics.Handler(prometheus.DefaultGatherer).ServeHTTP)
}

func main() {}

// handleExport runs one export per request and replies with its outcome.
func handleExport(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		exporterInstance, initErr = services.NewExporter(context.Background(), prometheus.DefaultRegisterer)
	})
	if initErr != nil {
		slog.Error("Critical: Exporter initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	serveExport(exporterInstance, w, r)
}

func serveExport(exp exporter, w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	executionID := r.Header.Get(executionIDHeader)
	if executionID == "" {
		executionID = uuid.NewString()
	}

	outcome := exp.Process(r.Context(), models.ExportTrigger{
		ExecutionID: executionID,
		Source:      "http",
	})

	status := http.StatusOK
	if !outcome.Success {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(executionIDHeader, executionID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(outcome); err != nil {
		slog.Error("Failed to write response", "error", err, "executionId", executionID)
	}
}
