package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Lllllllleong/dealerproofflow/internal/models"
)

type fakeCrawler struct {
	files []models.File
}

func (c *fakeCrawler) Crawl(ctx context.Context, rootID string) []models.File {
	return c.files
}

type fakeFetcher struct {
	data  map[string][]byte
	err   error
	calls int
}

func (f *fakeFetcher) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data[fileID], nil
}

type fakeEnricher struct {
	failOn     map[string]bool
	gotContent map[string][]byte
	calls      int
}

func (e *fakeEnricher) ExtractOfferInfo(ctx context.Context, filename string, meta *models.Metadata, pdfContent []byte) (string, error) {
	e.calls++
	if e.gotContent == nil {
		e.gotContent = make(map[string][]byte)
	}
	e.gotContent[filename] = pdfContent
	if e.failOn[filename] {
		return "", errors.New("model unavailable after 3 attempts")
	}
	return `{"offers":["$500 off"]}`, nil
}

type fakeWriter struct {
	header    []string
	headerErr error
	batches   [][][]interface{}
	failAt    int // 1-based append call to fail on; 0 means never
}

func (w *fakeWriter) WriteHeader(ctx context.Context, headers []string) error {
	if w.headerErr != nil {
		return w.headerErr
	}
	w.header = headers
	return nil
}

func (w *fakeWriter) AppendRows(ctx context.Context, rows [][]interface{}) error {
	w.batches = append(w.batches, rows)
	if w.failAt != 0 && len(w.batches) == w.failAt {
		return errors.New("append failed after 3 attempts")
	}
	return nil
}

func pdfFiles(n int) []models.File {
	files := make([]models.File, 0, n)
	for i := 1; i <= n; i++ {
		files = append(files, models.File{
			ID:       fmt.Sprintf("id-%d", i),
			Name:     fmt.Sprintf("dealer_ABC_proof_v%d.pdf", i),
			MimeType: "application/pdf",
		})
	}
	return files
}

func newTestAnalyzer(files []models.File, fetcher *fakeFetcher, enricher *fakeEnricher, writer *fakeWriter, cfg AnalyzerConfig) *Analyzer {
	if cfg.RootFolderID == "" {
		cfg.RootFolderID = "root"
	}
	return NewAnalyzer(&fakeCrawler{files: files}, fetcher, enricher, writer, cfg)
}

// One failing document is dropped and logged by name; the rest of the
// batch still goes through.
func TestRunSkipsFailingDocument(t *testing.T) {
	var logBuf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logBuf, nil)))
	defer slog.SetDefault(prev)

	files := pdfFiles(3)
	enricher := &fakeEnricher{failOn: map[string]bool{files[1].Name: true}}
	writer := &fakeWriter{}

	a := newTestAnalyzer(files, &fakeFetcher{}, enricher, writer, AnalyzerConfig{BatchSize: 100})
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run returned %v, want nil (per-document failures are not fatal)", err)
	}

	if enricher.calls != 3 {
		t.Errorf("enricher called %d times, want 3", enricher.calls)
	}
	if len(writer.batches) != 1 || len(writer.batches[0]) != 2 {
		t.Fatalf("wrote %d rows, want 2", totalRows(writer))
	}
	if !strings.Contains(logBuf.String(), files[1].Name) {
		t.Errorf("log output does not mention the skipped file %q", files[1].Name)
	}
}

func TestRunFlushesFixedSizeBatches(t *testing.T) {
	writer := &fakeWriter{}
	a := newTestAnalyzer(pdfFiles(5), &fakeFetcher{}, &fakeEnricher{}, writer, AnalyzerConfig{BatchSize: 2})

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run returned %v", err)
	}

	if len(writer.header) != len(sheetColumns) {
		t.Errorf("header has %d columns, want %d", len(writer.header), len(sheetColumns))
	}
	wantSizes := []int{2, 2, 1}
	if len(writer.batches) != len(wantSizes) {
		t.Fatalf("wrote %d batches, want %d", len(writer.batches), len(wantSizes))
	}
	for i, want := range wantSizes {
		if len(writer.batches[i]) != want {
			t.Errorf("batch %d has %d rows, want %d", i+1, len(writer.batches[i]), want)
		}
	}
}

func TestRunHeaderWriteFailureIsFatal(t *testing.T) {
	writer := &fakeWriter{headerErr: errors.New("update failed after 3 attempts")}
	a := newTestAnalyzer(pdfFiles(2), &fakeFetcher{}, &fakeEnricher{}, writer, AnalyzerConfig{})

	if err := a.Run(context.Background()); err == nil {
		t.Fatal("Run returned nil, want error")
	}
	if len(writer.batches) != 0 {
		t.Errorf("wrote %d batches after header failure, want 0", len(writer.batches))
	}
}

func TestRunBatchWriteFailureAbortsRemainingFlush(t *testing.T) {
	writer := &fakeWriter{failAt: 2}
	a := newTestAnalyzer(pdfFiles(5), &fakeFetcher{}, &fakeEnricher{}, writer, AnalyzerConfig{BatchSize: 2})

	err := a.Run(context.Background())
	if err == nil {
		t.Fatal("Run returned nil, want error")
	}
	if len(writer.batches) != 2 {
		t.Errorf("append called %d times, want 2 (remaining batches abandoned)", len(writer.batches))
	}
}

func TestRunEmptyCrawlIsClean(t *testing.T) {
	writer := &fakeWriter{}
	a := newTestAnalyzer(nil, &fakeFetcher{}, &fakeEnricher{}, writer, AnalyzerConfig{})

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run returned %v, want nil", err)
	}
	if writer.header != nil || len(writer.batches) != 0 {
		t.Error("nothing should be written for an empty crawl")
	}
}

// Full-content mode degrades to metadata-only enrichment when the
// download fails; the document is still processed.
func TestRunDownloadFailureDegradesToMetadataOnly(t *testing.T) {
	files := pdfFiles(1)
	fetcher := &fakeFetcher{err: errors.New("download failed after 3 attempts")}
	enricher := &fakeEnricher{}
	writer := &fakeWriter{}

	a := newTestAnalyzer(files, fetcher, enricher, writer, AnalyzerConfig{DownloadPDFs: true})
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run returned %v", err)
	}

	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.calls)
	}
	if got := enricher.gotContent[files[0].Name]; got != nil {
		t.Errorf("enricher received %d content bytes, want none", len(got))
	}
	if totalRows(writer) != 1 {
		t.Errorf("wrote %d rows, want 1", totalRows(writer))
	}
}

// Bytes that do not parse as a PDF are dropped the same way a failed
// download is.
func TestRunUnreadableContentDegradesToMetadataOnly(t *testing.T) {
	files := pdfFiles(1)
	fetcher := &fakeFetcher{data: map[string][]byte{files[0].ID: []byte("not a pdf")}}
	enricher := &fakeEnricher{}
	writer := &fakeWriter{}

	a := newTestAnalyzer(files, fetcher, enricher, writer, AnalyzerConfig{DownloadPDFs: true})
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run returned %v", err)
	}

	if got := enricher.gotContent[files[0].Name]; got != nil {
		t.Errorf("enricher received %d content bytes, want none", len(got))
	}
	if totalRows(writer) != 1 {
		t.Errorf("wrote %d rows, want 1", totalRows(writer))
	}
}

func TestRunMetadataOnlyModeNeverFetches(t *testing.T) {
	fetcher := &fakeFetcher{}
	a := newTestAnalyzer(pdfFiles(3), fetcher, &fakeEnricher{}, &fakeWriter{}, AnalyzerConfig{DownloadPDFs: false})

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if fetcher.calls != 0 {
		t.Errorf("fetcher called %d times in metadata-only mode, want 0", fetcher.calls)
	}
}

func TestResultRowShape(t *testing.T) {
	processed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r := &models.Result{
		File: models.File{
			ID:           "id-1",
			Name:         "dealer_ABC_2024-01-15_proof_v1.pdf",
			CreatedTime:  "2024-01-15T10:00:00.000Z",
			ModifiedTime: "2024-01-15T11:00:00.000Z",
			WebViewLink:  "https://drive.google.com/file/d/id-1/view",
		},
		Metadata: &models.Metadata{
			Filename:   "dealer_ABC_2024-01-15_proof_v1.pdf",
			Date:       "2024-01-15",
			ParsedDate: "2024-01-15",
			Dealership: "ABC",
			Version:    "1",
		},
		OfferInfo:   `{"offers":["$500 off"]}`,
		ProcessedAt: processed,
	}

	row := resultRow(r)
	if len(row) != len(sheetColumns) {
		t.Fatalf("row has %d cells, want %d", len(row), len(sheetColumns))
	}
	if row[0] != "id-1" || row[1] != r.File.Name {
		t.Errorf("row starts with %v, %v", row[0], row[1])
	}
	if row[5] != "2024-01-15" || row[6] != "ABC" || row[7] != "1" {
		t.Errorf("metadata cells = %v, %v, %v", row[5], row[6], row[7])
	}
	offer, _ := row[11].(string)
	if !strings.Contains(offer, "\n") || !strings.Contains(offer, `"$500 off"`) {
		t.Errorf("offer cell should be pretty-printed JSON, got %q", offer)
	}
	if row[12] != "2024-06-01T12:00:00Z" {
		t.Errorf("processed time cell = %v", row[12])
	}
}

func TestFormatOfferInfoPassesThroughNonJSON(t *testing.T) {
	raw := "The model could not find any offers."
	if got := formatOfferInfo(raw); got != raw {
		t.Errorf("formatOfferInfo(%q) = %q, want unchanged", raw, got)
	}
}

func totalRows(w *fakeWriter) int {
	n := 0
	for _, b := range w.batches {
		n += len(b)
	}
	return n
}
