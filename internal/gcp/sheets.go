package gcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/dealerproofflow/internal/retry"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsWriter is the persistence collaborator: it writes the header
// row and appends result batches to one spreadsheet range.
type SheetsWriter struct {
	svc           *sheets.Service
	spreadsheetID string
	writeRange    string
	retry         retry.Policy
}

func NewSheetsWriter(ctx context.Context, credentialsFile, spreadsheetID, writeRange string, policy retry.Policy) (*SheetsWriter, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return &SheetsWriter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		writeRange:    writeRange,
		retry:         policy,
	}, nil
}

// WriteHeader overwrites the header row at the top of the write range.
func (w *SheetsWriter) WriteHeader(ctx context.Context, headers []string) error {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	body := &sheets.ValueRange{Values: [][]interface{}{row}}

	return w.retry.Do(ctx, "sheets.values.update", func() error {
		res, err := w.svc.Spreadsheets.Values.
			Update(w.spreadsheetID, w.writeRange, body).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		slog.Info("Header written.", "updatedCells", res.UpdatedCells)
		return nil
	})
}

// AppendRows appends one batch of result rows below existing content.
func (w *SheetsWriter) AppendRows(ctx context.Context, rows [][]interface{}) error {
	body := &sheets.ValueRange{Values: rows}

	return w.retry.Do(ctx, "sheets.values.append", func() error {
		res, err := w.svc.Spreadsheets.Values.
			Append(w.spreadsheetID, w.writeRange, body).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		var cells int64
		if res.Updates != nil {
			cells = res.Updates.UpdatedCells
		}
		slog.Info("Appended rows.", "rows", len(rows), "updatedCells", cells)
		return nil
	})
}
