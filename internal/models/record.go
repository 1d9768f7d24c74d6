package models

import "fmt"

// Record is one item read from the structured store. Field sets vary from
// record to record; a key that is present with a null value is still
// present.
type Record map[string]Value

// RecordFromMap converts a decoded document into a Record.
func RecordFromMap(data map[string]any) (Record, error) {
	rec := make(Record, len(data))
	for key, raw := range data {
		v, err := ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		rec[key] = v
	}
	return rec, nil
}

// Get returns the value stored under field, or Null when the field is
// absent.
func (r Record) Get(field string) Value {
	return r[field]
}

// Has reports whether field is present in r, regardless of its value.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}
