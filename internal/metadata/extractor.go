package metadata

import (
	"regexp"
	"strings"

	"github.com/Lllllllleong/dealerproofflow/internal/models"
)

// Field names match the columns they eventually land in.
const (
	fieldDate       = "date"
	fieldDealership = "dealership"
	fieldVersion    = "version"
	fieldCampaign   = "campaign"
	fieldRegion     = "region"
	fieldModel      = "model"
)

// fieldPatterns pairs a metadata field with its ordered candidate
// patterns. Order matters: the first pattern that matches wins and the
// rest are never tried, so specific patterns (an explicit "dealer_X"
// prefix) come before generic fallbacks (a bare alphanumeric token).
type fieldPatterns struct {
	field    string
	patterns []*regexp.Regexp
}

// patternTable is the full extraction table for Direct Mail proof
// filenames. All matching is case-insensitive. Fields are independent;
// a match for one never suppresses attempts for another.
var patternTable = []fieldPatterns{
	{fieldDate, compileAll(
		`(\d{4}[-_]\d{2}[-_]\d{2})`, // YYYY-MM-DD or YYYY_MM_DD
		`(\d{2}[-_]\d{2}[-_]\d{4})`, // MM-DD-YYYY or MM_DD_YYYY
		`(\d{8})`,                   // YYYYMMDD
	)},
	{fieldDealership, compileAll(
		`(?:dealer|client|customer)[-_]?([A-Za-z0-9]+)`,
		`^([A-Za-z]+)[-_](?:proof|mailer|direct)`,
	)},
	{fieldVersion, compileAll(
		`(?:proof|version|v)[-_]?(\d+)`,
		`_v(\d+)`,
		`[-_]r(\d+)`, // revision
	)},
	{fieldCampaign, compileAll(
		`(?:campaign|offer|promo)[-_]?([A-Za-z0-9]+)`,
		`([A-Za-z]+\d+)`, // e.g. SPRING2024, FALL23
	)},
	{fieldRegion, compileAll(
		`(?:state|region)[-_]?([A-Z]{2})`,
		`[-_]([A-Z]{2})[-_]`,
	)},
	{fieldModel, compileAll(
		`(?:model|vehicle)[-_]?([A-Za-z0-9]+)`,
		`(civic|accord|crv|pilot|forester|outback|camry|corolla|f150|silverado)`,
	)},
}

var (
	yearFolderPattern  = regexp.MustCompile(`^\d{4}$`)
	monthFolderPattern = regexp.MustCompile(`^(\d{1,2})[-_]?([A-Za-z]+)?$`)
)

func compileAll(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+expr))
	}
	return compiled
}

// ExtractFromFilename recovers structured metadata from a bare
// filename. Absent fields stay empty; that is expected, not an error.
func ExtractFromFilename(filename string) *models.Metadata {
	meta := &models.Metadata{Filename: filename}
	name := stripExtension(filename)

	for _, fp := range patternTable {
		for _, pattern := range fp.patterns {
			m := pattern.FindStringSubmatch(name)
			if m == nil {
				continue
			}
			setField(meta, fp.field, m[1])
			break // first matching pattern wins for this field
		}
	}

	if meta.Date != "" {
		meta.ParsedDate = NormalizeDate(meta.Date)
	}
	return meta
}

// ExtractFromPath extracts from the trailing path segment as a
// filename, then scans the parent segments root-to-leaf for a year
// folder, a month folder, and, only if the filename yielded none, a
// dealership. A dealership found in the filename is never overwritten
// by one found in a folder name.
func ExtractFromPath(path string) *models.Metadata {
	parts := strings.Split(path, "/")
	meta := ExtractFromFilename(parts[len(parts)-1])
	meta.FullPath = path
	meta.PathDepth = len(parts)

	for _, part := range parts[:len(parts)-1] {
		if yearFolderPattern.MatchString(part) {
			meta.YearFolder = part
		}
		if m := monthFolderPattern.FindStringSubmatch(part); m != nil {
			meta.MonthFolder = m[1] // keep only the digit portion
		}
		if meta.Dealership == "" {
			for _, pattern := range dealershipPatterns() {
				if m := pattern.FindStringSubmatch(part); m != nil {
					meta.Dealership = m[1]
					break
				}
			}
		}
	}
	return meta
}

func dealershipPatterns() []*regexp.Regexp {
	for _, fp := range patternTable {
		if fp.field == fieldDealership {
			return fp.patterns
		}
	}
	return nil
}

func stripExtension(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[:i]
	}
	return filename
}

func setField(meta *models.Metadata, field, value string) {
	switch field {
	case fieldDate:
		meta.Date = value
	case fieldDealership:
		meta.Dealership = value
	case fieldVersion:
		meta.Version = value
	case fieldCampaign:
		meta.Campaign = value
	case fieldRegion:
		meta.Region = value
	case fieldModel:
		meta.Model = value
	}
}
