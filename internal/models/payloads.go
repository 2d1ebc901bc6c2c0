package models

// These structs define the JSON payloads for the scheduled invocations of
// the drive-ingester function and its responses.

// IngestRequest is the input for the drive-ingester function. All fields are
// optional; a scheduler may invoke the function with an empty body.
type IngestRequest struct {
	ExecutionID string `json:"executionId"`
}

// IngestResponse summarizes one ingestion run.
type IngestResponse struct {
	Status       string `json:"status"`
	FileCount    int    `json:"fileCount"`
	RecordCount  int    `json:"recordCount"`
	SkippedCount int    `json:"skippedCount"`
	FailedCount  int    `json:"failedCount"`
	OutputGCSUri string `json:"outputGcsUri,omitempty"`
}
