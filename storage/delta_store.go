package storage

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"

	roaring "github.com/RoaringBitmap/roaring/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/aleics/deltasearch/index"
)

// storedDelta is one field's persisted change within a scope at a given
// timestamp: it mirrors index.Delta but keeps the field name alongside it
// for the wire format (§4.5 "deltas: scope id → timestamp → field →
// StoredDelta").
type storedDelta struct {
	fieldName string
	before    index.Index
	after     index.Index
	affected  *roaring.Bitmap
}

// scopeLog is one branch's whole delta history: timestamp (a date's
// midnight Unix time) to the set of field changes declared for that date.
type scopeLog map[int64]map[string]storedDelta

type wireStoredDelta struct {
	FieldName string `json:"field_name"`
	Before    []byte `json:"before"`
	After     []byte `json:"after"`
	Affected  []byte `json:"affected"`
}

type wireScopeLog map[int64]map[string]wireStoredDelta

func encodeScopeLog(log scopeLog) ([]byte, error) {
	wire := make(wireScopeLog, len(log))
	for ts, fields := range log {
		wireFields := make(map[string]wireStoredDelta, len(fields))
		for name, d := range fields {
			before, err := index.Encode(d.before)
			if err != nil {
				return nil, err
			}
			after, err := index.Encode(d.after)
			if err != nil {
				return nil, err
			}
			affected, err := d.affected.MarshalBinary()
			if err != nil {
				return nil, err
			}
			wireFields[name] = wireStoredDelta{FieldName: d.fieldName, Before: before, After: after, Affected: affected}
		}
		wire[ts] = wireFields
	}

	raw, err := json.Marshal(wire)
	if err != nil {
		return nil, err
	}
	return compressZstd(raw)
}

func decodeScopeLog(data []byte) (scopeLog, error) {
	raw, err := decompressZstd(data)
	if err != nil {
		return nil, err
	}

	var wire wireScopeLog
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}

	log := make(scopeLog, len(wire))
	for ts, fields := range wire {
		decoded := make(map[string]storedDelta, len(fields))
		for name, wd := range fields {
			before, err := index.Decode(wd.Before)
			if err != nil {
				return nil, err
			}
			after, err := index.Decode(wd.After)
			if err != nil {
				return nil, err
			}
			affected := roaring.New()
			if err := affected.UnmarshalBinary(wd.Affected); err != nil {
				return nil, err
			}
			decoded[name] = storedDelta{fieldName: wd.FieldName, before: before, after: after, affected: affected}
		}
		log[ts] = decoded
	}
	return log, nil
}

// aggregateDeltas folds every field's changes at or before cutoff, in
// timestamp-ascending order, into one index.Delta per field (§ "Aggregation
// across timestamps").
func aggregateDeltas(log scopeLog, cutoff int64) (map[string]index.Delta, error) {
	var timestamps []int64
	for ts := range log {
		if ts <= cutoff {
			timestamps = append(timestamps, ts)
		}
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	byField := map[string][]index.Delta{}
	for _, ts := range timestamps {
		for name, sd := range log[ts] {
			byField[name] = append(byField[name], index.Delta{Before: sd.before, After: sd.after, Affected: sd.affected})
		}
	}

	result := make(map[string]index.Delta, len(byField))
	for name, deltas := range byField {
		folded, err := index.Fold(deltas[0].Before.Descriptor(), deltas)
		if err != nil {
			return nil, err
		}
		result[name] = folded
	}
	return result, nil
}

func compressZstd(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return io.ReadAll(dec)
}
