package extract

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// exportDocument exports a Google-native document or presentation as plain
// text. The decoded payload is returned exactly as exported, with no
// trimming or transformation.
func (r *Router) exportDocument(ctx context.Context, fileID, name string) Result {
	data, err := r.fetcher.Export(ctx, fileID, MimePlainText)
	if err != nil {
		slog.Warn("Document export failed.", "fileId", fileID, "fileName", name, "error", err)
		return failure(ReasonTransport, err)
	}

	if !utf8.Valid(data) {
		err := fmt.Errorf("export payload for %q is not valid UTF-8", name)
		slog.Warn("Document export payload is not decodable.", "fileId", fileID, "fileName", name)
		return failure(ReasonDecode, err)
	}

	return Result{Text: string(data), Status: StatusOK}
}
