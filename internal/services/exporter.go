package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Lllllllleong/recordexport/internal/metrics"
	"github.com/Lllllllleong/recordexport/internal/models"
	"github.com/Lllllllleong/recordexport/internal/tabular"
)

// isoMillis matches the ISO-8601 form with millisecond precision in UTC.
const isoMillis = "2006-01-02T15:04:05.000Z"

const notificationSubject = "Record export complete"

// Stages of a run, used to label failures.
const (
	stageFetch     = "fetch"
	stageStore     = "store"
	stageReference = "reference"
	stageNotify    = "notify"
)

// Publisher delivers completion notifications.
type Publisher interface {
	Publish(ctx context.Context, n models.Notification) error
}

// Dependencies are the collaborators of an ExportFunction.
type Dependencies struct {
	Scanner   PageScanner
	Blob      BlobStore
	Policy    ReferencePolicy
	Publisher Publisher
	Metrics   *metrics.ExportMetrics
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// ExportFunction runs one export per activation: fetch every record, derive
// the column set, encode, store the artifact, then announce it.
type ExportFunction struct {
	fetcher   *RecordFetcher
	blob      BlobStore
	policy    ReferencePolicy
	publisher Publisher
	metrics   *metrics.ExportMetrics
	prefix    string
	now       func() time.Time
}

// NewExportFunction creates an ExportFunction whose artifacts are named
// with prefix.
func NewExportFunction(deps Dependencies, prefix string) *ExportFunction {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &ExportFunction{
		fetcher:   NewRecordFetcher(deps.Scanner),
		blob:      deps.Blob,
		policy:    deps.Policy,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		prefix:    prefix,
		now:       now,
	}
}

// Process executes one export run. It never returns an error: every
// failure is reported in the outcome, and the first failure ends the run.
// An artifact stored before a later failure is left in place.
func (f *ExportFunction) Process(ctx context.Context, trigger models.ExportTrigger) models.ExportOutcome {
	logCtx := slog.With("executionId", trigger.ExecutionID)
	started := f.now()
	logCtx.Info("Starting export.", "source", trigger.Source)

	// --- 1. Fetch every record ---
	records, err := f.fetcher.FetchAll(ctx, logCtx)
	if err != nil {
		return f.fail(logCtx, started, stageFetch, classify(err, models.ErrStore))
	}
	if len(records) == 0 {
		logCtx.Info("No records found. Skipping artifact and notification.")
		f.metrics.ObserveRun(metrics.ResultEmpty, f.now().Sub(started))
		return models.EmptyOutcome()
	}
	logCtx = logCtx.With("recordCount", len(records))

	// --- 2. Derive the schema and encode ---
	schema := tabular.DeriveSchema(records)
	if len(schema) == 0 {
		logCtx.Warn("Records carry no fields. Artifact will have empty rows.")
	}
	document := tabular.Encode(records, schema)
	logCtx.Info("Encoded records.", "columnCount", len(schema), "bytes", len(document))

	// --- 3. Store the artifact ---
	key := ArtifactKey(f.prefix, started)
	logCtx = logCtx.With("artifactKey", key)
	if err := f.blob.Put(ctx, key, []byte(document), tabular.ContentType); err != nil {
		return f.fail(logCtx, started, stageStore, classify(fmt.Errorf("failed to store %s: %w", key, err), models.ErrStorageWrite))
	}
	logCtx.Info("Stored artifact.")

	// --- 4. Obtain the retrieval link ---
	ref, err := f.policy.Reference(ctx, key, f.now())
	if err != nil {
		return f.fail(logCtx, started, stageReference, classify(err, models.ErrArtifactReference))
	}

	// --- 5. Announce it ---
	if err := f.publisher.Publish(ctx, buildNotification(key, ref, started)); err != nil {
		return f.fail(logCtx, started, stageNotify, classify(err, models.ErrNotification))
	}

	f.metrics.AddRecords(len(records))
	f.metrics.ObserveRun(metrics.ResultSuccess, f.now().Sub(started))
	logCtx.Info("Export complete.", "expiring", ref.Expires())
	return models.SuccessOutcome(key, ref.URL)
}

func (f *ExportFunction) fail(logCtx *slog.Logger, started time.Time, stage string, err error) models.ExportOutcome {
	logCtx.Error("Export failed", "stage", stage, "error", err)
	f.metrics.ObserveFailure(stage)
	f.metrics.ObserveRun(metrics.ResultFailure, f.now().Sub(started))
	return models.FailureOutcome(err)
}

// classify makes sure err carries class so callers can tell failures apart.
func classify(err, class error) error {
	for _, known := range []error{
		models.ErrStoreUnavailable,
		models.ErrStore,
		models.ErrStorageWrite,
		models.ErrArtifactReference,
		models.ErrNotification,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", class, err)
}

var keyTimestampReplacer = strings.NewReplacer(":", "-", ".", "-")

// ArtifactKey names the artifact of a run started at t, e.g.
// "export-2024-01-02T03-04-05-678Z.csv".
func ArtifactKey(prefix string, t time.Time) string {
	return prefix + "-" + keyTimestampReplacer.Replace(t.UTC().Format(isoMillis)) + ".csv"
}

func buildNotification(key string, ref Reference, started time.Time) models.Notification {
	details := models.ExportDetails{
		FileName:    key,
		DownloadURL: ref.URL,
		Timestamp:   started.UTC().Format(isoMillis),
	}

	var body strings.Builder
	body.WriteString("Your record export is ready.\n\n")
	fmt.Fprintf(&body, "File: %s\n", key)
	fmt.Fprintf(&body, "Download: %s\n", ref.URL)
	if ref.Expires() {
		details.ExpiresAt = ref.ExpiresAt.UTC().Format(isoMillis)
		fmt.Fprintf(&body, "\nThis link expires at %s.\n", details.ExpiresAt)
	} else {
		body.WriteString("\nThis link does not expire.\n")
	}

	return models.Notification{
		Subject: notificationSubject,
		Message: body.String(),
		Details: details,
	}
}
