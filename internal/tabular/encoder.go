package tabular

import (
	"strings"

	"github.com/Lllllllleong/recordexport/internal/models"
)

// ContentType is the media type of an encoded document.
const ContentType = "text/csv; charset=utf-8"

const (
	quote     = `"`
	separator = ","
	newline   = "\n"
)

// Encode renders records as a document with a header row built from schema
// followed by one row per record. Every cell is quoted, embedded quotes are
// doubled, and absent or null fields become empty cells. The document ends
// with a single newline.
//
// Records without any field still produce one line each, so an empty
// schema yields an empty header line followed by one empty line per record.
func Encode(records []models.Record, schema []string) string {
	var b strings.Builder

	writeRow(&b, schema)
	cells := make([]string, len(schema))
	for _, rec := range records {
		for i, field := range schema {
			cells[i] = cellText(rec.Get(field))
		}
		writeRow(&b, cells)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(separator)
		}
		b.WriteString(quote)
		b.WriteString(strings.ReplaceAll(cell, quote, quote+quote))
		b.WriteString(quote)
	}
	b.WriteString(newline)
}

func cellText(v models.Value) string {
	switch v.Kind() {
	case models.KindNull:
		return ""
	case models.KindBool, models.KindNumber, models.KindText, models.KindComposite:
		return v.String()
	}
	return ""
}
