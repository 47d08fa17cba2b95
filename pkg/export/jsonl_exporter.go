package export

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONLExporter renders records as line-delimited JSON, one object per line.
type JSONLExporter struct{}

// NewJSONLExporter builds a JSONL exporter.
func NewJSONLExporter() *JSONLExporter {
	return &JSONLExporter{}
}

// Render marshals every record onto its own line.
func (e *JSONLExporter) Render(records []any) ([]byte, error) {
	buf := &bytes.Buffer{}
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshal jsonl record: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
