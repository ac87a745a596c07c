package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Lllllllleong/dealerproofflow/internal/models"
	"github.com/Lllllllleong/dealerproofflow/internal/retry"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// listFields is the projection requested from the Drive API; it covers
// exactly what the crawler and the result rows need.
const listFields = "nextPageToken, files(id, name, mimeType, parents, createdTime, modifiedTime, size, webViewLink)"

const listPageSize = 1000

// DriveStore is the Drive-backed listing and content collaborator. Every
// API call is wrapped by the shared retry policy.
type DriveStore struct {
	svc   *drive.Service
	retry retry.Policy
}

// NewDriveStore creates a read-only Drive client from a service account
// credentials file.
func NewDriveStore(ctx context.Context, credentialsFile string, policy retry.Policy) (*DriveStore, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &DriveStore{svc: svc, retry: policy}, nil
}

// ListChildren returns one page of the non-trashed children of a
// folder. An empty pageToken requests the first page.
func (s *DriveStore) ListChildren(ctx context.Context, folderID, pageToken string) (*models.FileList, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", folderID)

	var res *drive.FileList
	err := s.retry.Do(ctx, "drive.files.list", func() error {
		call := s.svc.Files.List().
			Q(query).
			PageSize(listPageSize).
			Fields(listFields).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		var callErr error
		res, callErr = call.Do()
		return callErr
	})
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, fmt.Errorf("listing folder %s (HTTP %d): %w", folderID, gerr.Code, err)
		}
		return nil, fmt.Errorf("listing folder %s: %w", folderID, err)
	}

	out := &models.FileList{NextPageToken: res.NextPageToken}
	for _, f := range res.Files {
		out.Files = append(out.Files, models.File{
			ID:           f.Id,
			Name:         f.Name,
			MimeType:     f.MimeType,
			Parents:      f.Parents,
			CreatedTime:  f.CreatedTime,
			ModifiedTime: f.ModifiedTime,
			Size:         f.Size,
			WebViewLink:  f.WebViewLink,
		})
	}
	return out, nil
}

// DownloadFile fetches the raw bytes of a document.
func (s *DriveStore) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	var data []byte
	err := s.retry.Do(ctx, "drive.files.get", func() error {
		resp, err := s.svc.Files.Get(fileID).Context(ctx).Download()
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("downloading file %s: %w", fileID, err)
	}
	return data, nil
}
