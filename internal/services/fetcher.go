package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/recordexport/internal/models"
)

// PageScanner reads one bounded page of records. An empty next token means
// the scan is exhausted. Implementations wrap failures with
// models.ErrStoreUnavailable or models.ErrStore.
type PageScanner interface {
	ScanPage(ctx context.Context, token string) (records []models.Record, next string, err error)
}

// RecordFetcher collects every record of the structured store by following
// continuation tokens until none remains.
//
// Pages are read independently, so records written while the scan is in
// progress may or may not be included. The store gives no cross-page
// snapshot and none is attempted here.
type RecordFetcher struct {
	scanner PageScanner
}

// NewRecordFetcher creates a RecordFetcher over scanner.
func NewRecordFetcher(scanner PageScanner) *RecordFetcher {
	return &RecordFetcher{scanner: scanner}
}

// FetchAll returns all records. A failure on any page discards what was
// read so far.
func (f *RecordFetcher) FetchAll(ctx context.Context, logCtx *slog.Logger) ([]models.Record, error) {
	var (
		all   []models.Record
		token string
		pages int
	)
	for {
		records, next, err := f.scanner.ScanPage(ctx, token)
		if err != nil {
			logCtx.Error("Failed to scan page", "error", err, "page", pages+1, "fetchedSoFar", len(all))
			return nil, fmt.Errorf("failed to fetch records: %w", err)
		}
		all = append(all, records...)
		pages++
		logCtx.Debug("Scanned page.", "page", pages, "pageRecords", len(records))

		if next == "" {
			break
		}
		token = next
	}
	logCtx.Info("Fetched all records.", "recordCount", len(all), "pageCount", pages)
	return all, nil
}
