package storage

// Table names for the four MDBX tables one entity's environment holds
// (§4.5 "1. records  2. indices  3. documents  4. deltas").
const (
	tableRecords   = "records"
	tableIndices   = "indices"
	tableDocuments = "documents"
	tableDeltas    = "deltas"
)

// allItemsKey is the single reserved key in the documents table holding
// the bitmap of every live position.
const allItemsKey = "__all"

// mdbExtension names the on-disk directory each entity's environment
// lives under ("<root>/<name>.mdb").
const mdbExtension = ".mdb"
