package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"
	"github.com/Lllllllleong/driveingestflow/internal/extract"
	"github.com/Lllllllleong/driveingestflow/internal/gcp"
	"github.com/Lllllllleong/driveingestflow/internal/models"
	"golang.org/x/sync/errgroup"
	drive "google.golang.org/api/drive/v3"
)

const (
	ndjsonContentType = "application/x-ndjson"
	listPageSize      = 100
)

// IngesterConfig holds configuration for the drive-ingester service.
type IngesterConfig struct {
	ProjectID        string
	DriveFolderID    string
	StagingBucket    string
	LookbackDays     int
	LedgerCollection string
	WorkflowID       string
	WorkflowLocation string
}

// IngesterFunction holds dependencies for the ingestion logic.
type IngesterFunction struct {
	driveService     *drive.Service
	storageClient    *storage.Client
	executionsClient *executions.Client
	router           *extract.Router
	ledger           Ledger
	config           IngesterConfig
}

// NewIngester creates a new IngesterFunction instance.
func NewIngester(ctx context.Context) (*IngesterFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	lookbackDays, err := strconv.Atoi(gcp.GetEnv("LOOKBACK_DAYS", "7"))
	if err != nil || lookbackDays <= 0 {
		return nil, fmt.Errorf("LOOKBACK_DAYS must be a positive integer")
	}

	config := IngesterConfig{
		ProjectID:        projectID,
		DriveFolderID:    gcp.GetEnv("DRIVE_FOLDER_ID", ""),
		StagingBucket:    gcp.GetEnv("STAGING_BUCKET", ""),
		LookbackDays:     lookbackDays,
		LedgerCollection: gcp.GetEnv("LEDGER_COLLECTION", "driveIngestLedger"),
		WorkflowID:       gcp.GetEnv("WORKFLOW_ID", ""),
		WorkflowLocation: gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
	}
	if config.DriveFolderID == "" || config.StagingBucket == "" {
		return nil, fmt.Errorf("DRIVE_FOLDER_ID and STAGING_BUCKET must be set")
	}

	driveService, err := gcp.NewDriveService(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	f := &IngesterFunction{
		driveService:  driveService,
		storageClient: storageClient,
		router:        extract.NewRouter(gcp.NewDriveFiles(driveService)),
		config:        config,
	}

	// An empty LEDGER_COLLECTION disables rerun deduplication entirely.
	if config.LedgerCollection != "" {
		firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to create firestore client: %w", err)
		}
		f.ledger = NewIngestLedger(firestoreClient, config.LedgerCollection)
	}

	if config.WorkflowID != "" {
		executionsClient, err := executions.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
		}
		f.executionsClient = executionsClient
	}

	slog.Info("Drive ingester initialized.", "driveFolderId", config.DriveFolderID, "stagingBucket", config.StagingBucket, "lookbackDays", config.LookbackDays)
	return f, nil
}

// Process runs one ingestion pass: list recently modified files, extract
// text from each in turn, and stage the results as a single NDJSON object.
func (f *IngesterFunction) Process(ctx context.Context, req *models.IngestRequest) (*models.IngestResponse, error) {
	logCtx := slog.With("executionId", req.ExecutionID, "driveFolderId", f.config.DriveFolderID)
	logCtx.Info("Starting Drive ingestion run.")

	cutoff := time.Now().UTC().AddDate(0, 0, -f.config.LookbackDays).Format(time.RFC3339)
	files, err := f.listRecentFiles(ctx, cutoff)
	if err != nil {
		logCtx.Error("Drive listing query failed", "error", err)
		return nil, err
	}
	logCtx.Info("Found files to process.", "fileCount", len(files), "modifiedAfter", cutoff)

	records, skipped, failed := f.processFiles(ctx, logCtx, files)

	res := &models.IngestResponse{
		FileCount:    len(files),
		RecordCount:  len(records),
		SkippedCount: skipped,
		FailedCount:  failed,
	}

	if len(records) == 0 {
		logCtx.Info("No records produced this run. Skipping upload.", "fileCount", len(files))
		res.Status = "empty"
		return res, nil
	}

	payload, err := encodeNDJSON(records)
	if err != nil {
		logCtx.Error("Failed to serialize records", "error", err)
		return nil, err
	}

	objectName := fmt.Sprintf("drive_data_%s.jsonl", time.Now().UTC().Format("20060102150405"))
	bucketHandle := f.storageClient.Bucket(f.config.StagingBucket)
	if err := gcp.SaveToGCSAtomically(ctx, bucketHandle, objectName, ndjsonContentType, payload); err != nil {
		logCtx.Error("Failed to upload staged records", "error", err, "bucket", f.config.StagingBucket, "object", objectName)
		return nil, err
	}

	outputGCSUri := fmt.Sprintf("gs://%s/%s", f.config.StagingBucket, objectName)
	logCtx.Info("Staged records.", "recordCount", len(records), "outputGcsUri", outputGCSUri)

	f.recordLedgerEntries(ctx, logCtx, records)

	if err := f.triggerWorkflow(ctx, logCtx, req.ExecutionID, outputGCSUri, len(records)); err != nil {
		return nil, err
	}

	res.Status = "success"
	res.OutputGCSUri = outputGCSUri
	return res, nil
}

// listRecentFiles queries Drive for non-trashed files in the configured
// folder modified after the cutoff, following page tokens until exhausted.
func (f *IngesterFunction) listRecentFiles(ctx context.Context, cutoff string) ([]*drive.File, error) {
	query := fmt.Sprintf("'%s' in parents and modifiedTime > '%s' and trashed = false", f.config.DriveFolderID, cutoff)

	var files []*drive.File
	pageToken := ""
	for {
		call := f.driveService.Files.List().
			Q(query).
			Fields("nextPageToken", "files(id, name, mimeType, modifiedTime)").
			PageSize(listPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("drive files.list query failed: %w", err)
		}
		files = append(files, list.Files...)

		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}
	return files, nil
}

// processFiles walks the listed files sequentially, one full extraction at a
// time, and returns the records to stage plus skip/failure counts. Per-file
// failures never abort the run.
func (f *IngesterFunction) processFiles(ctx context.Context, logCtx *slog.Logger, files []*drive.File) (records []models.Record, skipped, failed int) {
	for _, file := range files {
		fileLog := logCtx.With("fileId", file.Id, "fileName", file.Name, "mimeType", file.MimeType)

		if f.ledger != nil {
			seen, err := f.ledger.AlreadyIngested(ctx, file.Id, file.ModifiedTime)
			if err != nil {
				// Re-staging a file is safe; losing one is not.
				fileLog.Warn("Ledger lookup failed. Processing file anyway.", "error", err)
			} else if seen {
				fileLog.Info("File already staged at this revision. Skipping.")
				skipped++
				continue
			}
		}

		result := f.router.Extract(ctx, file.Id, file.MimeType, file.Name)
		switch {
		case result.OK():
			records = append(records, models.Record{
				DocumentID:       file.Id,
				FileName:         file.Name,
				TextContent:      result.Text,
				LastModifiedDate: file.ModifiedTime,
				Source:           models.SourceTag,
			})
			fileLog.Info("Processed file.")
		case result.Status == extract.StatusOK:
			fileLog.Info("File produced no text. Skipping.")
			skipped++
		case result.Status == extract.StatusSkipped:
			fileLog.Info("Unsupported file type. Skipping.")
			skipped++
		default:
			fileLog.Warn("Extraction failed. Excluding file from output.", "reason", result.Reason, "error", result.Cause)
			failed++
		}
	}
	return records, skipped, failed
}

// encodeNDJSON serializes records as newline-delimited JSON, one object per
// line.
func encodeNDJSON(records []models.Record) (string, error) {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			return "", fmt.Errorf("failed to encode record %s: %w", record.DocumentID, err)
		}
	}
	return sb.String(), nil
}

// recordLedgerEntries marks every staged record in the ingest ledger. The
// staged object is already durable at this point, so a failed write only
// means the file gets re-staged on the next run; the run itself succeeds.
func (f *IngesterFunction) recordLedgerEntries(ctx context.Context, logCtx *slog.Logger, records []models.Record) {
	if f.ledger == nil {
		return
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(8)
	ingestedAt := time.Now().UTC()

	for _, record := range records {
		entry := models.LedgerEntry{
			FileID:       record.DocumentID,
			FileName:     record.FileName,
			ModifiedTime: record.LastModifiedDate,
			IngestedAt:   ingestedAt,
		}
		eg.Go(func() error {
			return f.ledger.MarkIngested(gctx, entry)
		})
	}
	if err := eg.Wait(); err != nil {
		logCtx.Warn("One or more ledger writes failed.", "error", err)
	}
}

// triggerWorkflow hands the staged object off to the downstream ingestion
// workflow, when one is configured.
func (f *IngesterFunction) triggerWorkflow(ctx context.Context, logCtx *slog.Logger, executionID, outputGCSUri string, recordCount int) error {
	if f.executionsClient == nil {
		return nil
	}
	logCtx.Info("Triggering downstream workflow.", "workflowId", f.config.WorkflowID)

	workflowPayload := map[string]interface{}{
		"objectUri":   outputGCSUri,
		"recordCount": recordCount,
		"executionId": executionID,
	}
	payloadBytes, err := json.Marshal(workflowPayload)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow payload: %w", err)
	}

	req := &executionspb.CreateExecutionRequest{
		Parent: fmt.Sprintf("projects/%s/locations/%s/workflows/%s", f.config.ProjectID, f.config.WorkflowLocation, f.config.WorkflowID),
		Execution: &executionspb.Execution{
			Argument: string(payloadBytes),
		},
	}
	if _, err := f.executionsClient.CreateExecution(ctx, req); err != nil {
		logCtx.Error("Failed to trigger workflow execution", "error", err)
		return fmt.Errorf("failed to trigger workflow execution: %w", err)
	}
	return nil
}
