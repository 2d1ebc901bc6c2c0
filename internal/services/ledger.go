package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/driveingestflow/internal/models"
)

// Ledger is the revision-tracking port the ingester depends on. It is
// implemented by IngestLedger and by fakes in tests.
type Ledger interface {
	// AlreadyIngested reports whether the file was staged at this exact
	// modifiedTime by a previous run.
	AlreadyIngested(ctx context.Context, fileID, modifiedTime string) (bool, error)
	// MarkIngested upserts the ledger entry for a staged file.
	MarkIngested(ctx context.Context, entry models.LedgerEntry) error
}

// IngestLedger tracks which Drive file revisions have already been staged,
// keyed by file ID in a Firestore collection. It answers the rerun question:
// a file whose modifiedTime matches its ledger entry was ingested by an
// earlier run and is skipped.
type IngestLedger struct {
	client     *firestore.Client
	collection string
}

// NewIngestLedger creates a ledger backed by the given Firestore collection.
func NewIngestLedger(client *firestore.Client, collection string) *IngestLedger {
	return &IngestLedger{client: client, collection: collection}
}

// AlreadyIngested reports whether the file was staged at this exact
// modifiedTime by a previous run. A missing entry means not ingested; an
// entry with an older modifiedTime means the file changed and must be
// re-staged.
func (l *IngestLedger) AlreadyIngested(ctx context.Context, fileID, modifiedTime string) (bool, error) {
	docs, err := l.client.Collection(l.collection).Where("fileId", "==", fileID).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return false, fmt.Errorf("failed to query ingest ledger for %s: %w", fileID, err)
	}
	if len(docs) == 0 {
		return false, nil
	}

	var entry models.LedgerEntry
	if err := docs[0].DataTo(&entry); err != nil {
		return false, fmt.Errorf("failed to decode ledger entry for %s: %w", fileID, err)
	}
	return entry.ModifiedTime == modifiedTime, nil
}

// MarkIngested upserts the ledger entry for a file that made it into the
// staged output.
func (l *IngestLedger) MarkIngested(ctx context.Context, entry models.LedgerEntry) error {
	if _, err := l.client.Collection(l.collection).Doc(entry.FileID).Set(ctx, entry); err != nil {
		return fmt.Errorf("failed to write ledger entry for %s: %w", entry.FileID, err)
	}
	return nil
}
