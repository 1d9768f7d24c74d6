// Package tabular turns a set of schemaless records into a quoted,
// comma separated document whose columns are derived from the records
// themselves.
package tabular

import (
	"slices"

	"github.com/Lllllllleong/recordexport/internal/models"
)

// DeriveSchema returns the union of field names present in records, sorted
// by code point. A field counts as present even when its value is null.
// The result depends only on the set of records, never on their order.
func DeriveSchema(records []models.Record) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		for field := range rec {
			seen[field] = struct{}{}
		}
	}

	schema := make([]string, 0, len(seen))
	for field := range seen {
		schema = append(schema, field)
	}
	slices.Sort(schema)
	return schema
}
