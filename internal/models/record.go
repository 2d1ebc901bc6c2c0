package models

import "time"

// SourceTag is the constant source label stamped on every staged record.
const SourceTag = "Google Drive"

// Record is one line of the staged NDJSON output, representing one
// successfully extracted Drive file. Records are created in memory during a
// single run, serialized once, and never mutated afterwards.
type Record struct {
	DocumentID       string `json:"document_id"`
	FileName         string `json:"file_name"`
	TextContent      string `json:"text_content"`
	LastModifiedDate string `json:"last_modified_date"`
	Source           string `json:"source"`
}

// LedgerEntry records the last ingested revision of a Drive file in
// Firestore. A file whose current modifiedTime matches its ledger entry is
// skipped on subsequent runs.
type LedgerEntry struct {
	FileID       string    `firestore:"fileId,omitempty"`
	FileName     string    `firestore:"fileName,omitempty"`
	ModifiedTime string    `firestore:"modifiedTime,omitempty"`
	IngestedAt   time.Time `firestore:"ingestedAt,omitempty"`
}
