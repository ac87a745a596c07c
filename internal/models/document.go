package models

import "time"

// File describes a single Drive entry discovered during a crawl. It is
// immutable once produced; identity is the Drive-assigned ID.
type File struct {
	ID           string
	Name         string
	MimeType     string
	Parents      []string
	CreatedTime  string
	ModifiedTime string
	Size         int64
	WebViewLink  string
}

// FileList is one page of a folder listing.
type FileList struct {
	Files         []File
	NextPageToken string
}

// Metadata holds the fields recovered from a filename or path. Every
// field except Filename is best-effort; an empty string means the
// pattern tables found nothing, which is a normal outcome.
type Metadata struct {
	Filename   string
	Date       string // raw token as it appeared in the name
	ParsedDate string // canonical YYYY-MM-DD, empty if the token didn't parse
	Dealership string
	Version    string
	Campaign   string
	Region     string
	Model      string

	// Populated only by path-based extraction.
	FullPath    string
	PathDepth   int
	YearFolder  string
	MonthFolder string
}

// Result is the outcome of fully processing one file: its descriptor,
// the extracted metadata, and the offer text returned by Gemini.
type Result struct {
	File        File
	Metadata    *Metadata
	OfferInfo   string
	ProcessedAt time.Time
}
