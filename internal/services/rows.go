package services

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/Lllllllleong/dealerproofflow/internal/models"
)

// sheetColumns is the fixed output column order. resultRow must stay in
// lockstep with it.
var sheetColumns = []string{
	"File ID",
	"Filename",
	"Created Time",
	"Modified Time",
	"Web View Link",
	"Date",
	"Dealership",
	"Version",
	"Campaign",
	"Region",
	"Model",
	"Offer Info",
	"Processed Time",
}

func resultRow(r *models.Result) []interface{} {
	m := r.Metadata
	return []interface{}{
		r.File.ID,
		r.File.Name,
		r.File.CreatedTime,
		r.File.ModifiedTime,
		r.File.WebViewLink,
		m.Date,
		m.Dealership,
		m.Version,
		m.Campaign,
		m.Region,
		m.Model,
		formatOfferInfo(r.OfferInfo),
		r.ProcessedAt.Format(time.RFC3339),
	}
}

// formatOfferInfo pretty-prints the offer text when it happens to be
// valid JSON; anything else is written through untouched.
func formatOfferInfo(raw string) string {
	if !json.Valid([]byte(raw)) {
		return raw
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", "  "); err != nil {
		return raw
	}
	return buf.String()
}
