package core

import (
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ContentHash is a 64-bit digest of the text a cache entry was computed from.
// An embedding cache entry is valid only while its stored hash matches the
// current hash of the case document.
type ContentHash uint64

// HashContent computes a deterministic ContentHash from text using BLAKE2b.
// Identical content always produces an identical hash.
func HashContent(text string) ContentHash {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ContentHash(binary.LittleEndian.Uint64(sum))
}

// SourceReport is a case's reference to an evidentiary report.
// Section is the locator within the report (page or section reference).
// ReportLink is a per-reference URL used when the report itself carries no
// file link.
type SourceReport struct {
	ReportID   string
	Section    string
	Note       string
	ReportLink string
}

// Case is a single validation-database record. The retrieval core treats
// cases as read-only snapshots; editing happens outside the core.
type Case struct {
	Id            string
	Title         string
	VVType        string
	Scope         string
	System        string
	Summary       string
	Tools         []string
	Phenomena     []string
	Tags          []string
	Fluids        []string
	SourceReports []SourceReport
}

// Report holds the metadata for an evidentiary report. Many cases may
// reference one report. FileName points to a locally stored artifact and
// may be empty.
type Report struct {
	Id           string
	ReportNumber string
	Title        string
	Author       string
	Date         string
	FileName     string
	FileLink     string
}

// Document builds the searchable text for a case, concatenating its free-text
// fields and the context of every referenced report. The lookup func returns
// nil for report ids it cannot resolve; those entries still contribute their
// id, section, and note so a dangling reference remains searchable.
func (c *Case) Document(lookup func(reportID string) *Report) string {
	parts := make([]string, 0, 16)
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}

	add("ID", c.Id)
	add("Title", c.Title)
	add("V&V type", c.VVType)
	add("Scope", c.Scope)
	add("System", c.System)
	add("Tools", strings.Join(c.Tools, ", "))
	add("Phenomena", strings.Join(c.Phenomena, ", "))
	add("Tags", strings.Join(c.Tags, ", "))
	add("Fluids", strings.Join(c.Fluids, ", "))
	add("Summary", c.Summary)

	for _, sr := range c.SourceReports {
		add("Source report id", sr.ReportID)
		if lookup != nil {
			if rep := lookup(sr.ReportID); rep != nil {
				add("Report number", rep.ReportNumber)
				add("Report title", rep.Title)
			}
		}
		add("Section", sr.Section)
		add("Note", sr.Note)
	}

	return strings.Join(parts, "\n")
}

// EmbeddingEntry is a cached embedding for one case document. Hash records
// the ContentHash of the text the vector was computed from; a mismatch with
// the current document means the entry is stale and must be recomputed.
type EmbeddingEntry struct {
	CaseId string
	Hash   ContentHash
	Vector []float32
}

// Valid reports whether the entry still matches the given document text.
func (e *EmbeddingEntry) Valid(document string) bool {
	return e != nil && len(e.Vector) > 0 && e.Hash == HashContent(document)
}

// Citation is a resolved source-report reference attached to a search hit.
// A dangling reference (report id absent from the reports table) is kept,
// marked Dangling with Title "unknown", rather than dropped.
type Citation struct {
	ReportID string
	Title    string
	FileName string

	// Link is the report's file link, or the reference's own report link
	// when the report carries none.
	Link string

	Locator  string
	Dangling bool
}

// SearchResult is one ranked hit with its provenance. Scores are comparable
// only within a single result set, never across scorer modes or queries.
type SearchResult struct {
	Case      *Case
	Score     float32
	Rank      int
	Citations []Citation
}
