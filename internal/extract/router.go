// Package extract maps a Drive file's declared MIME type to extracted UTF-8
// text, hiding the differences between Google-native exports, spreadsheet
// flattening, and raw media downloads.
package extract

import "context"

// Google-native MIME types require an export step; the rest are fetched as
// raw media.
const (
	MimeGoogleDocument     = "application/vnd.google-apps.document"
	MimeGooglePresentation = "application/vnd.google-apps.presentation"
	MimeGoogleSpreadsheet  = "application/vnd.google-apps.spreadsheet"
	MimePlainText          = "text/plain"
	MimePDF                = "application/pdf"

	mimeCSV = "text/csv"
)

// Fetcher is the subset of the Drive files API the router needs. It is
// implemented by gcp.DriveFiles and by fakes in tests.
type Fetcher interface {
	// Export converts a Google-native file to the given MIME type.
	Export(ctx context.Context, fileID, mimeType string) ([]byte, error)
	// Download returns the raw bytes of a non-native file.
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// Status classifies the outcome of one extraction attempt.
type Status string

const (
	StatusOK      Status = "OK"
	StatusSkipped Status = "SKIPPED"
	StatusFailed  Status = "FAILED"
)

// FailureReason distinguishes why an extraction did not produce text.
type FailureReason string

const (
	ReasonTransport   FailureReason = "TRANSPORT"
	ReasonDecode      FailureReason = "DECODE"
	ReasonUnsupported FailureReason = "UNSUPPORTED"
)

// Result is the outcome of routing one file through an extraction strategy.
// Callers emit a record only for an OK result with non-empty text.
type Result struct {
	Text   string
	Status Status
	Reason FailureReason
	Cause  error
}

// OK reports whether the result carries usable text.
func (r Result) OK() bool {
	return r.Status == StatusOK && r.Text != ""
}

func failure(reason FailureReason, cause error) Result {
	return Result{Status: StatusFailed, Reason: reason, Cause: cause}
}

func skipped() Result {
	return Result{Status: StatusSkipped, Reason: ReasonUnsupported}
}

// Router dispatches a file to the extraction strategy matching its declared
// MIME type. It holds no state between invocations.
type Router struct {
	fetcher Fetcher
}

// NewRouter creates a Router backed by the given fetcher.
func NewRouter(fetcher Fetcher) *Router {
	return &Router{fetcher: fetcher}
}

// Extract returns the text content of the file, a skipped result for a MIME
// type outside the supported set, or a failed result carrying the cause.
// The display name is only used for diagnostics.
func (r *Router) Extract(ctx context.Context, fileID, mimeType, name string) Result {
	switch mimeType {
	case MimeGoogleDocument, MimeGooglePresentation:
		return r.exportDocument(ctx, fileID, name)
	case MimeGoogleSpreadsheet:
		return r.flattenSpreadsheet(ctx, fileID, name)
	case MimePlainText, MimePDF:
		return r.downloadBinary(ctx, fileID, mimeType, name)
	default:
		return skipped()
	}
}
