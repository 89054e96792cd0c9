package export

import (
	"encoding/json"
	"io"

	"github.com/cisec/logsift/internal/record"
)

// WriteJSON writes the record set as a JSON array of flat objects, or as
// NDJSON when opts.NDJSON is set. Attributes that do not apply to a record
// are omitted rather than written as nulls.
func WriteJSON(w io.Writer, records []record.Record, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if opts.NDJSON {
		for _, r := range records {
			if err := enc.Encode(Object(r, opts)); err != nil {
				return err
			}
		}
		return nil
	}

	objs := make([]map[string]any, 0, len(records))
	for _, r := range records {
		objs = append(objs, Object(r, opts))
	}
	return enc.Encode(objs)
}
