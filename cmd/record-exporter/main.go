package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Lllllllleong/recordexport/internal/models"
	"github.com/Lllllllleong/recordexport/internal/services"
)

var (
	exporterInstance *services.ExportFunction
	once             sync.Once
	initErr          error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Any event delivered here starts one export run; its payload is ignored.
	functions.CloudEvent("RunExport", runExport)
}

// main is required by the Go Functions Framework.
func main() {}

// runExport is the Cloud Function entry point.
func runExport(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		exporterInstance, initErr = services.NewExporter(context.Background(), prometheus.DefaultRegisterer)
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	outcome := exporterInstance.Process(ctx, models.ExportTrigger{
		ExecutionID: e.ID(),
		Source:      e.Source(),
	})
	if !outcome.Success {
		// Already logged inside Process. Returning it marks the invocation failed.
		return errors.New(outcome.ErrorMessage)
	}
	return nil
}
