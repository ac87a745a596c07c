package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lllllllleong/dealerproofflow/internal/metadata"
	"github.com/Lllllllleong/dealerproofflow/internal/models"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// FolderCrawler produces the flat list of documents to process.
type FolderCrawler interface {
	Crawl(ctx context.Context, rootID string) []models.File
}

// ContentFetcher downloads a document's raw bytes.
type ContentFetcher interface {
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

// OfferExtractor derives offer text for one document.
type OfferExtractor interface {
	ExtractOfferInfo(ctx context.Context, filename string, meta *models.Metadata, pdfContent []byte) (string, error)
}

// ResultWriter persists the tabular output.
type ResultWriter interface {
	WriteHeader(ctx context.Context, headers []string) error
	AppendRows(ctx context.Context, rows [][]interface{}) error
}

// AnalyzerConfig holds the run-scoped settings for one analysis pass.
type AnalyzerConfig struct {
	RootFolderID string
	BatchSize    int
	// DownloadPDFs enables full-content mode: document bytes are fetched
	// and attached to the enrichment request.
	DownloadPDFs bool
}

// Analyzer drives the end-to-end pipeline: crawl, per-document
// enrichment, batched persistence. Execution is sequential throughout;
// one document's failure never aborts the run, a batch-write failure
// does.
type Analyzer struct {
	crawler  FolderCrawler
	fetcher  ContentFetcher
	enricher OfferExtractor
	writer   ResultWriter
	config   AnalyzerConfig
}

func NewAnalyzer(crawler FolderCrawler, fetcher ContentFetcher, enricher OfferExtractor, writer ResultWriter, config AnalyzerConfig) *Analyzer {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	return &Analyzer{
		crawler:  crawler,
		fetcher:  fetcher,
		enricher: enricher,
		writer:   writer,
		config:   config,
	}
}

// Run executes the complete pipeline. It returns nil when the run
// completed, including runs where some documents were skipped; it
// returns an error only for fatal conditions (a batch write failing
// after retries).
func (a *Analyzer) Run(ctx context.Context) error {
	files := a.crawler.Crawl(ctx, a.config.RootFolderID)
	if len(files) == 0 {
		slog.Warn("No PDF files found in the configured Drive folder.")
		return nil
	}

	results := a.processFiles(ctx, files)
	if err := a.writeResults(ctx, results); err != nil {
		return err
	}

	slog.Info("Analysis complete.", "filesProcessed", len(results), "filesFound", len(files))
	return nil
}

// processFiles enriches each file independently and sequentially. A
// failure while processing one file is logged with the file's name and
// that file is dropped; the batch continues.
func (a *Analyzer) processFiles(ctx context.Context, files []models.File) []*models.Result {
	slog.Info("Processing files.", "count", len(files))

	results := make([]*models.Result, 0, len(files))
	for idx := range files {
		file := &files[idx]
		logCtx := slog.With("file", file.Name)
		logCtx.Info("Processing file.", "index", idx+1, "total", len(files))

		result, err := a.processFile(ctx, logCtx, file)
		if err != nil {
			logCtx.Error("Failed to process file, skipping.", "error", err)
			continue
		}
		results = append(results, result)

		if (idx+1)%10 == 0 {
			slog.Info("Progress.", "processed", idx+1, "total", len(files))
		}
	}

	slog.Info("Finished processing.", "succeeded", len(results), "skipped", len(files)-len(results))
	return results
}

func (a *Analyzer) processFile(ctx context.Context, logCtx *slog.Logger, file *models.File) (*models.Result, error) {
	meta := metadata.ExtractFromFilename(file.Name)

	// Full-content mode is strictly best-effort: a failed download or a
	// corrupt PDF degrades to metadata-only enrichment, never a skip.
	var content []byte
	if a.config.DownloadPDFs {
		data, err := a.fetcher.DownloadFile(ctx, file.ID)
		if err != nil {
			logCtx.Warn("Could not download PDF, continuing without content.", "error", err)
		} else if pages, err := pdfPageCount(data); err != nil {
			logCtx.Warn("Downloaded bytes are not a readable PDF, continuing without content.", "error", err)
		} else {
			logCtx.Debug("Downloaded PDF content.", "bytes", len(data), "pages", pages)
			content = data
		}
	}

	offerInfo, err := a.enricher.ExtractOfferInfo(ctx, file.Name, meta, content)
	if err != nil {
		return nil, fmt.Errorf("extracting offer info: %w", err)
	}

	return &models.Result{
		File:        *file,
		Metadata:    meta,
		OfferInfo:   offerInfo,
		ProcessedAt: time.Now(),
	}, nil
}

// writeResults writes the header and flushes results in fixed-size
// batches. A batch failure aborts the remaining flush: with no resume
// marker, continuing past a failed batch would silently lose data.
func (a *Analyzer) writeResults(ctx context.Context, results []*models.Result) error {
	if len(results) == 0 {
		slog.Warn("No results to write.")
		return nil
	}

	slog.Info("Writing results.", "rows", len(results), "batchSize", a.config.BatchSize)

	if err := a.writer.WriteHeader(ctx, sheetColumns); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}

	rows := make([][]interface{}, 0, len(results))
	for _, r := range results {
		rows = append(rows, resultRow(r))
	}

	for start := 0; start < len(rows); start += a.config.BatchSize {
		end := start + a.config.BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]
		if err := a.writer.AppendRows(ctx, batch); err != nil {
			slog.Error("Failed to write batch, aborting remaining flush.",
				"batch", start/a.config.BatchSize+1,
				"rowsUnwritten", len(rows)-start,
				"error", err)
			return fmt.Errorf("writing batch starting at row %d: %w", start, err)
		}
		slog.Info("Written batch.", "batch", start/a.config.BatchSize+1, "rows", len(batch))
	}

	slog.Info("All results written.")
	return nil
}

func pdfPageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
}
