package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFPlaceholder is returned for every PDF regardless of its content. Text
// extraction for PDFs requires an OCR step that runs downstream; this branch
// stays a placeholder until that integration lands.
const PDFPlaceholder = "PDF content not extracted at ingest time; OCR/text extraction is performed by a downstream processor."

// downloadBinary fetches the raw bytes of a non-native file. PDFs always
// yield the fixed placeholder; other supported types are decoded as UTF-8.
func (r *Router) downloadBinary(ctx context.Context, fileID, mimeType, name string) Result {
	data, err := r.fetcher.Download(ctx, fileID)
	if err != nil {
		slog.Warn("Media download failed.", "fileId", fileID, "fileName", name, "error", err)
		return failure(ReasonTransport, err)
	}

	if mimeType == MimePDF {
		logPDFPageCount(data, fileID, name)
		return Result{Text: PDFPlaceholder, Status: StatusOK}
	}

	if !utf8.Valid(data) {
		err := fmt.Errorf("media payload for %q is not valid UTF-8", name)
		slog.Warn("Media payload is not decodable.", "fileId", fileID, "fileName", name)
		return failure(ReasonDecode, err)
	}

	return Result{Text: string(data), Status: StatusOK}
}

// logPDFPageCount probes the PDF for its page count, for observability only.
// A corrupt or empty PDF must not change the extraction outcome, so probe
// errors are logged and swallowed.
func logPDFPageCount(data []byte, fileID, name string) {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed

	pageCount, err := api.PageCount(bytes.NewReader(data), cfg)
	if err != nil {
		slog.Warn("Could not read PDF page count.", "fileId", fileID, "fileName", name, "error", err)
		return
	}
	slog.Info("Deferred PDF for downstream OCR.", "fileId", fileID, "fileName", name, "pageCount", pageCount)
}
