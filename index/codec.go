package index

import (
	"encoding/json"

	roaring "github.com/RoaringBitmap/roaring/v2"
)

// wireIndex is the on-disk shape of one field's index: enough to rebuild
// the right concrete variant (Kind, and Labels for Enum) plus its ordered
// key→bitmap entries. This is what the storage layer puts in its indices
// table and inside a StoredDelta's before/after slots.
type wireIndex struct {
	Kind    Kind         `json:"kind"`
	Labels  []string     `json:"labels,omitempty"`
	Entries []wireEntry  `json:"entries"`
}

type wireEntry struct {
	Key    json.RawMessage `json:"key"`
	Bitmap []byte          `json:"bitmap"`
}

// Encode serializes idx for storage.
func Encode(idx Index) ([]byte, error) {
	w := wireIndex{Kind: idx.Descriptor().Kind, Labels: idx.Descriptor().Labels}

	var entries []wireEntry
	var err error
	switch v := idx.(type) {
	case *stringIndex:
		entries, err = collectEntries(v.ordered)
	case *numericIndex:
		entries, err = collectEntries(v.ordered)
	case *dateIndex:
		entries, err = collectEntries(v.ordered)
	case *enumIndex:
		entries, err = collectEntries(v.ordered)
	case *boolIndex:
		entries, err = collectEntries(v.ordered)
	default:
		return nil, errUnknownVariant
	}
	if err != nil {
		return nil, err
	}
	w.Entries = entries

	return json.Marshal(w)
}

// Decode deserializes an index previously produced by Encode.
func Decode(data []byte) (Index, error) {
	var w wireIndex
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}

	idx := New(Descriptor{Kind: w.Kind, Labels: w.Labels})
	switch v := idx.(type) {
	case *stringIndex:
		return v, populateEntries(v.ordered, w.Entries)
	case *numericIndex:
		return v, populateEntries(v.ordered, w.Entries)
	case *dateIndex:
		return v, populateEntries(v.ordered, w.Entries)
	case *enumIndex:
		return v, populateEntries(v.ordered, w.Entries)
	case *boolIndex:
		return v, populateEntries(v.ordered, w.Entries)
	default:
		return nil, errUnknownVariant
	}
}

func collectEntries[T any](o *orderedIndex[T]) ([]wireEntry, error) {
	var entries []wireEntry
	var err error
	o.ascend(func(key T, bitmap *roaring.Bitmap) bool {
		keyJSON, marshalErr := json.Marshal(key)
		if marshalErr != nil {
			err = marshalErr
			return false
		}
		bitmapBytes, marshalErr := bitmap.MarshalBinary()
		if marshalErr != nil {
			err = marshalErr
			return false
		}
		entries = append(entries, wireEntry{Key: keyJSON, Bitmap: bitmapBytes})
		return true
	})
	return entries, err
}

func populateEntries[T any](o *orderedIndex[T], entries []wireEntry) error {
	for _, entry := range entries {
		var key T
		if err := json.Unmarshal(entry.Key, &key); err != nil {
			return err
		}
		bitmap := roaring.New()
		if err := bitmap.UnmarshalBinary(entry.Bitmap); err != nil {
			return err
		}
		o.tree.ReplaceOrInsert(orderedEntry[T]{key: key, bitmap: bitmap})
	}
	return nil
}
