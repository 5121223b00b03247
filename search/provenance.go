package search

import (
	"os"
	"path/filepath"

	"github.com/tanoret/validation-databse/core"
)

// UnknownTitle marks a citation whose report id did not resolve.
const UnknownTitle = "unknown"

// Resolver maps a case's source-report references to report metadata.
type Resolver struct {
	db *core.Database
}

// NewResolver creates a provenance resolver over the database.
func NewResolver(db *core.Database) (*Resolver, error) {
	if db == nil {
		return nil, ErrDatabaseRequired
	}
	return &Resolver{db: db}, nil
}

// Resolve returns one citation per source-report entry of the case, in
// declaration order. A report id absent from the reports table yields a
// citation marked Dangling with Title "unknown"; traceability accounts for
// every declared reference, broken ones included. FileName is passed through
// without checking the artifact exists on disk; that I/O boundary belongs to
// the caller.
func (r *Resolver) Resolve(c *core.Case) []core.Citation {
	citations := make([]core.Citation, 0, len(c.SourceReports))
	for _, sr := range c.SourceReports {
		rep, err := r.db.GetReport(sr.ReportID)
		if err != nil {
			// GetReport only fails with ErrNotFound today; keep the entry
			// anyway if that ever changes.
			citations = append(citations, core.Citation{
				ReportID: sr.ReportID,
				Title:    UnknownTitle,
				Link:     sr.ReportLink,
				Locator:  sr.Section,
				Dangling: true,
			})
			continue
		}
		link := rep.FileLink
		if link == "" {
			link = sr.ReportLink
		}
		citations = append(citations, core.Citation{
			ReportID: sr.ReportID,
			Title:    rep.Title,
			FileName: rep.FileName,
			Link:     link,
			Locator:  sr.Section,
		})
	}
	return citations
}

// ResolveReportFile locates a report's artifact on disk, probing the given
// directories plus the conventional pdf/ and data/reports/ locations.
// Returns the first existing path and true, or "" and false. This helper
// serves hosts that render download affordances; Search never calls it.
func ResolveReportFile(report *core.Report, dirs ...string) (string, bool) {
	if report == nil || report.FileName == "" {
		return "", false
	}

	probe := append([]string{}, dirs...)
	for _, extra := range []string{"pdf", filepath.Join("data", "reports")} {
		probe = append(probe, extra)
	}

	for _, dir := range probe {
		path := filepath.Join(dir, report.FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}
