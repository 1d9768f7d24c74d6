package gcp

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/genproto/googleapis/type/latlng"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Lllllllleong/recordexport/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
// It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// FirestoreScanner pages through a collection ordered by document ID. The
// continuation token is the ID of the last document of the previous page.
type FirestoreScanner struct {
	client     *firestore.Client
	collection string
	pageSize   int
	// idField receives the document ID when the document data lacks it.
	idField string
}

// NewFirestoreScanner creates a scanner over collection. An empty idField
// leaves records exactly as stored.
func NewFirestoreScanner(client *firestore.Client, collection string, pageSize int, idField string) *FirestoreScanner {
	return &FirestoreScanner{
		client:     client,
		collection: collection,
		pageSize:   pageSize,
		idField:    idField,
	}
}

// ScanPage reads the page that follows token.
func (s *FirestoreScanner) ScanPage(ctx context.Context, token string) ([]models.Record, string, error) {
	query := s.client.Collection(s.collection).OrderBy(firestore.DocumentID, firestore.Asc).Limit(s.pageSize)
	if token != "" {
		query = query.StartAfter(token)
	}

	it := query.Documents(ctx)
	defer it.Stop()

	var (
		records []models.Record
		lastID  string
	)
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, "", classifyFirestoreError(err)
		}
		rec, err := documentRecord(doc.Data(), doc.Ref.ID, s.idField)
		if err != nil {
			return nil, "", fmt.Errorf("%w: document %s: %w", models.ErrStore, doc.Ref.ID, err)
		}
		records = append(records, rec)
		lastID = doc.Ref.ID
	}

	// A short page is the last one.
	if len(records) < s.pageSize {
		return records, "", nil
	}
	return records, lastID, nil
}

func documentRecord(data map[string]any, id, idField string) (models.Record, error) {
	normalized := make(map[string]any, len(data))
	for k, v := range data {
		normalized[k] = normalizeFirestoreValue(v)
	}
	rec, err := models.RecordFromMap(normalized)
	if err != nil {
		return nil, err
	}
	if idField != "" && !rec.Has(idField) {
		rec[idField] = models.Text(id)
	}
	return rec, nil
}

// normalizeFirestoreValue maps Firestore-specific types onto plain values.
// Document references become their path and geo points become a
// latitude/longitude object.
func normalizeFirestoreValue(v any) any {
	switch x := v.(type) {
	case *firestore.DocumentRef:
		if x == nil {
			return nil
		}
		return x.Path
	case *latlng.LatLng:
		if x == nil {
			return nil
		}
		return map[string]any{"latitude": x.GetLatitude(), "longitude": x.GetLongitude()}
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalizeFirestoreValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalizeFirestoreValue(e)
		}
		return out
	}
	return v
}

func classifyFirestoreError(err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Canceled:
		return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%w: %w", models.ErrStore, err)
}
