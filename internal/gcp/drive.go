package gcp

import (
	"context"
	"fmt"
	"io"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// NewDriveService creates a read-only Drive API client. Credentials are
// resolved from the runtime service account, the same way the Storage and
// Firestore clients resolve theirs.
func NewDriveService(ctx context.Context) (*drive.Service, error) {
	service, err := drive.NewService(ctx, option.WithScopes(drive.DriveReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return service, nil
}

// DriveFiles wraps the Drive files API behind the two fetch operations the
// extraction router needs: exporting a Google-native file and downloading
// raw file media.
type DriveFiles struct {
	service *drive.Service
}

// NewDriveFiles wraps an existing Drive service.
func NewDriveFiles(service *drive.Service) *DriveFiles {
	return &DriveFiles{service: service}
}

// Export converts a Google-native file to the given MIME type and returns
// the full exported payload.
func (d *DriveFiles) Export(ctx context.Context, fileID, mimeType string) ([]byte, error) {
	resp, err := d.service.Files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("drive export of %s as %s failed: %w", fileID, mimeType, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read export payload for %s: %w", fileID, err)
	}
	return data, nil
}

// Download streams the raw bytes of a non-native file until complete.
func (d *DriveFiles) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := d.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("drive download of %s failed: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read media payload for %s: %w", fileID, err)
	}
	return data, nil
}
