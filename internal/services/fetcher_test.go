package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Lllllllleong/recordexport/internal/models"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestFetchAll_FollowsTokens(t *testing.T) {
	scanner := &fakeScanner{pages: [][]map[string]any{
		{{"id": "1"}, {"id": "2"}},
		{{"id": "3"}},
		{{"id": "4"}},
	}}

	records, err := NewRecordFetcher(scanner).FetchAll(context.Background(), discardLogger)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("FetchAll() returned %d records, want 4", len(records))
	}
	for i, want := range []string{"1", "2", "3", "4"} {
		if got := records[i].Get("id").String(); got != want {
			t.Errorf("records[%d].id = %q, want %q", i, got, want)
		}
	}
	if len(scanner.calls) != 3 {
		t.Errorf("pages scanned = %d, want 3", len(scanner.calls))
	}
}

func TestFetchAll_FailureDiscardsPartialResults(t *testing.T) {
	scanner := &fakeScanner{
		pages:  [][]map[string]any{{{"id": "1"}}, {{"id": "2"}}, {{"id": "3"}}},
		failAt: 3,
		err:    models.ErrStoreUnavailable,
	}

	records, err := NewRecordFetcher(scanner).FetchAll(context.Background(), discardLogger)
	if !errors.Is(err, models.ErrStoreUnavailable) {
		t.Errorf("FetchAll() error = %v, want ErrStoreUnavailable", err)
	}
	if records != nil {
		t.Errorf("FetchAll() returned %d records on failure", len(records))
	}
}

func TestFetchAll_Empty(t *testing.T) {
	records, err := NewRecordFetcher(&fakeScanner{}).FetchAll(context.Background(), discardLogger)
	if err != nil || len(records) != 0 {
		t.Errorf("FetchAll() = %v, %v; want no records", records, err)
	}
}
