package extract

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned payloads keyed by file ID.
type fakeFetcher struct {
	exports     map[string][]byte
	downloads   map[string][]byte
	err         error
	exportMimes []string
}

func (f *fakeFetcher) Export(ctx context.Context, fileID, mimeType string) ([]byte, error) {
	f.exportMimes = append(f.exportMimes, mimeType)
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.exports[fileID]
	if !ok {
		return nil, fmt.Errorf("no export fixture for %s", fileID)
	}
	return data, nil
}

func (f *fakeFetcher) Download(ctx context.Context, fileID string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.downloads[fileID]
	if !ok {
		return nil, fmt.Errorf("no download fixture for %s", fileID)
	}
	return data, nil
}

func TestRouterSkipsUnsupportedTypes(t *testing.T) {
	router := NewRouter(&fakeFetcher{})

	for _, mimeType := range []string{
		"image/png",
		"image/jpeg",
		"video/mp4",
		"application/vnd.google-apps.folder",
		"application/zip",
		"",
	} {
		t.Run(mimeType, func(t *testing.T) {
			result := router.Extract(context.Background(), "file-1", mimeType, "holiday.png")
			assert.Equal(t, StatusSkipped, result.Status)
			assert.Equal(t, ReasonUnsupported, result.Reason)
			assert.Empty(t, result.Text)
			assert.False(t, result.OK())
		})
	}
}

func TestRouterExportsDocumentVerbatim(t *testing.T) {
	fetcher := &fakeFetcher{exports: map[string][]byte{
		"doc-1": []byte("  Hello, world.\n\nSecond paragraph.  "),
	}}
	router := NewRouter(fetcher)

	result := router.Extract(context.Background(), "doc-1", MimeGoogleDocument, "notes")
	require.True(t, result.OK())
	// No trimming or transformation of the exported payload.
	assert.Equal(t, "  Hello, world.\n\nSecond paragraph.  ", result.Text)
	assert.Equal(t, []string{MimePlainText}, fetcher.exportMimes)
}

func TestRouterExportsPresentationAsPlainText(t *testing.T) {
	fetcher := &fakeFetcher{exports: map[string][]byte{
		"slides-1": []byte("Slide one\nSlide two"),
	}}
	router := NewRouter(fetcher)

	result := router.Extract(context.Background(), "slides-1", MimeGooglePresentation, "deck")
	require.True(t, result.OK())
	assert.Equal(t, "Slide one\nSlide two", result.Text)
	assert.Equal(t, []string{MimePlainText}, fetcher.exportMimes)
}

func TestRouterFlattensSpreadsheet(t *testing.T) {
	fetcher := &fakeFetcher{exports: map[string][]byte{
		"sheet-1": []byte("a,,b\n,c,\n"),
	}}
	router := NewRouter(fetcher)

	result := router.Extract(context.Background(), "sheet-1", MimeGoogleSpreadsheet, "budget")
	require.True(t, result.OK())
	assert.Equal(t, "a b | c", result.Text)
	assert.Equal(t, []string{"text/csv"}, fetcher.exportMimes)
}

func TestRouterDownloadsPlainText(t *testing.T) {
	fetcher := &fakeFetcher{downloads: map[string][]byte{
		"txt-1": []byte("raw file contents"),
	}}
	router := NewRouter(fetcher)

	result := router.Extract(context.Background(), "txt-1", MimePlainText, "readme.txt")
	require.True(t, result.OK())
	assert.Equal(t, "raw file contents", result.Text)
}

func TestRouterReturnsPlaceholderForEveryPDF(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{name: "empty payload", content: nil},
		{name: "corrupt payload", content: []byte("not a pdf at all")},
		{name: "binary garbage", content: []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff, 0xfe}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{downloads: map[string][]byte{"pdf-1": tt.content}}
			router := NewRouter(fetcher)

			result := router.Extract(context.Background(), "pdf-1", MimePDF, "scan.pdf")
			require.True(t, result.OK())
			assert.Equal(t, PDFPlaceholder, result.Text)
		})
	}
}

func TestRouterReportsTransportFailures(t *testing.T) {
	transportErr := errors.New("the server closed the connection")

	tests := []struct {
		name     string
		mimeType string
	}{
		{name: "document export", mimeType: MimeGoogleDocument},
		{name: "spreadsheet export", mimeType: MimeGoogleSpreadsheet},
		{name: "media download", mimeType: MimePlainText},
		{name: "pdf download", mimeType: MimePDF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(&fakeFetcher{err: transportErr})

			result := router.Extract(context.Background(), "file-1", tt.mimeType, "broken")
			assert.Equal(t, StatusFailed, result.Status)
			assert.Equal(t, ReasonTransport, result.Reason)
			assert.ErrorIs(t, result.Cause, transportErr)
			assert.False(t, result.OK())
		})
	}
}

func TestRouterReportsDecodeFailures(t *testing.T) {
	invalidUTF8 := []byte{0xff, 0xfe, 0xfd}

	t.Run("document export", func(t *testing.T) {
		router := NewRouter(&fakeFetcher{exports: map[string][]byte{"doc-1": invalidUTF8}})
		result := router.Extract(context.Background(), "doc-1", MimeGoogleDocument, "mangled")
		assert.Equal(t, StatusFailed, result.Status)
		assert.Equal(t, ReasonDecode, result.Reason)
	})

	t.Run("media download", func(t *testing.T) {
		router := NewRouter(&fakeFetcher{downloads: map[string][]byte{"txt-1": invalidUTF8}})
		result := router.Extract(context.Background(), "txt-1", MimePlainText, "mangled.txt")
		assert.Equal(t, StatusFailed, result.Status)
		assert.Equal(t, ReasonDecode, result.Reason)
	})
}

func TestResultOKRequiresText(t *testing.T) {
	assert.False(t, Result{Status: StatusOK}.OK())
	assert.False(t, Result{Status: StatusFailed, Text: "partial text before the error"}.OK())
	assert.True(t, Result{Status: StatusOK, Text: "Hello"}.OK())
}
