package record

import (
	jsoncodec "github.com/goccy/go-json"

	"github.com/aleics/deltasearch/value"
)

// wireRecord is the envelope a Record (de)serializes through for the
// records table (§4.5). goccy/go-json is used instead of stdlib
// encoding/json for throughput on bulk ingest (§4.5 "chunks of 100") —
// it honors the same json.Marshaler/Unmarshaler interfaces Value
// implements, so no custom codec glue is needed beyond this envelope.
type wireRecord struct {
	ID     ID                      `json:"id"`
	Fields map[string]value.Value `json:"fields"`
}

// Encode serializes a record for storage.
func Encode(r Record) ([]byte, error) {
	return jsoncodec.Marshal(wireRecord{ID: r.ID, Fields: r.Fields})
}

// Decode deserializes a record previously produced by Encode.
func Decode(data []byte) (Record, error) {
	var w wireRecord
	if err := jsoncodec.Unmarshal(data, &w); err != nil {
		return Record{}, err
	}
	return New(w.ID, w.Fields), nil
}
