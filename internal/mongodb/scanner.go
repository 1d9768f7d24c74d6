// Package mongodb reads export records from a MongoDB collection.
package mongodb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Lllllllleong/recordexport/internal/models"
)

// Connect creates a client for uri. The driver connects lazily, so no
// server is contacted here.
func Connect(uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongodb uri must be provided")
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return client, nil
}

// Scanner pages through a collection in _id order. The continuation token
// is the canonical Extended JSON of the last _id seen.
type Scanner struct {
	coll     *mongo.Collection
	pageSize int
}

// NewScanner creates a Scanner over database.collection.
func NewScanner(client *mongo.Client, database, collection string, pageSize int) *Scanner {
	return &Scanner{
		coll:     client.Database(database).Collection(collection),
		pageSize: pageSize,
	}
}

// ScanPage reads the page that follows token.
func (s *Scanner) ScanPage(ctx context.Context, token string) ([]models.Record, string, error) {
	filter := bson.D{}
	if token != "" {
		after, err := decodeToken(token)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", models.ErrStore, err)
		}
		filter = bson.D{{Key: "_id", Value: bson.D{{Key: "$gt", Value: after}}}}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(s.pageSize))

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, "", classifyError(err)
	}
	defer cursor.Close(ctx)

	var (
		records []models.Record
		lastID  any
	)
	for cursor.Next(ctx) {
		rec, err := rawRecord(cursor.Current)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", models.ErrStore, err)
		}
		idVal, err := cursor.Current.LookupErr("_id")
		if err != nil {
			return nil, "", fmt.Errorf("%w: document without _id: %w", models.ErrStore, err)
		}
		if err := idVal.Unmarshal(&lastID); err != nil {
			return nil, "", fmt.Errorf("%w: decode _id: %w", models.ErrStore, err)
		}
		records = append(records, rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, "", classifyError(err)
	}

	if len(records) < s.pageSize {
		return records, "", nil
	}
	next, err := encodeToken(lastID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", models.ErrStore, err)
	}
	return records, next, nil
}

func encodeToken(id any) (string, error) {
	b, err := bson.MarshalExtJSON(bson.D{{Key: "_id", Value: id}}, true, false)
	if err != nil {
		return "", fmt.Errorf("encode continuation token: %w", err)
	}
	return string(b), nil
}

func decodeToken(token string) (any, error) {
	var doc bson.D
	if err := bson.UnmarshalExtJSON([]byte(token), true, &doc); err != nil {
		return nil, fmt.Errorf("decode continuation token: %w", err)
	}
	if len(doc) != 1 || doc[0].Key != "_id" {
		return nil, fmt.Errorf("malformed continuation token %q", token)
	}
	return doc[0].Value, nil
}

// rawRecord converts a BSON document through relaxed Extended JSON.
func rawRecord(raw bson.Raw) (models.Record, error) {
	ext, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(ext))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	for k, v := range data {
		data[k] = flattenExtJSON(v)
	}
	return models.RecordFromMap(data)
}

// flattenExtJSON unwraps the Extended JSON wrappers that stand for a
// scalar: ObjectIDs and dates become text, and long, decimal and
// non-finite double numbers become numbers with their text kept as is.
func flattenExtJSON(v any) any {
	switch x := v.(type) {
	case map[string]any:
		if len(x) == 1 {
			for key, inner := range x {
				s, ok := inner.(string)
				if !ok {
					break
				}
				switch key {
				case "$oid", "$date":
					return s
				case "$numberLong", "$numberDecimal", "$numberDouble":
					return json.Number(s)
				}
			}
		}
		for k, e := range x {
			x[k] = flattenExtJSON(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = flattenExtJSON(e)
		}
		return x
	}
	return v
}

func classifyError(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%w: %w", models.ErrStore, err)
}
