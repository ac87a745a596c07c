package crawler

import (
	"context"
	"log/slog"

	"github.com/Lllllllleong/dealerproofflow/internal/models"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	pdfMimeType    = "application/pdf"
)

// Lister provides one page of a folder's children. Implementations own
// their retry behavior; an error returned here means the call is
// already exhausted.
type Lister interface {
	ListChildren(ctx context.Context, folderID, pageToken string) (*models.FileList, error)
}

// Predicate selects which non-folder entries count as leaf documents.
type Predicate func(f *models.File) bool

// IsPDF is the default leaf predicate.
func IsPDF(f *models.File) bool {
	return f.MimeType == pdfMimeType
}

// Crawler walks a Drive folder tree breadth-first and collects the leaf
// documents that pass its predicate.
type Crawler struct {
	lister Lister
	accept Predicate
}

func New(lister Lister, accept Predicate) *Crawler {
	if accept == nil {
		accept = IsPDF
	}
	return &Crawler{lister: lister, accept: accept}
}

// Crawl traverses the tree rooted at rootID and returns every matching
// leaf document. Folders are identified by ID and visited at most once,
// no matter how many parents reference them. A folder whose listing
// fails is abandoned (its documents found so far are kept) and the
// crawl moves on; availability wins over completeness here.
func (c *Crawler) Crawl(ctx context.Context, rootID string) []models.File {
	slog.Info("Starting folder crawl.", "root", rootID)

	queue := []string{rootID}
	visited := make(map[string]struct{})
	var files []models.File

	for len(queue) > 0 {
		folderID := queue[0]
		queue = queue[1:]

		if _, seen := visited[folderID]; seen {
			continue
		}
		visited[folderID] = struct{}{}

		logCtx := slog.With("folder", folderID)
		logCtx.Info("Processing folder.", "foldersProcessed", len(visited))

		pageToken := ""
		for {
			listing, err := c.lister.ListChildren(ctx, folderID, pageToken)
			if err != nil {
				logCtx.Error("Failed to list folder contents, abandoning folder.", "error", err)
				break
			}

			for i := range listing.Files {
				entry := listing.Files[i]
				if entry.MimeType == folderMimeType {
					queue = append(queue, entry.ID)
					continue
				}
				if c.accept(&entry) {
					files = append(files, entry)
				}
			}

			pageToken = listing.NextPageToken
			if pageToken == "" {
				break
			}
		}
	}

	slog.Info("Crawl complete.", "files", len(files), "foldersProcessed", len(visited))
	return files
}
