package core

import (
	"fmt"
	"sort"
)

// Database is the in-memory validation database: cases, reports, and their
// cross-references. It is built once at load time and read-only afterwards;
// an external reload replaces the whole object rather than mutating it.
type Database struct {
	cases   map[string]*Case
	reports map[string]*Report
	caseIds []string // ascending, fixed at construction
}

// NewDatabase builds a Database from cases and reports, enforcing id
// uniqueness. A duplicate case or report id fails with an error naming the
// offending id, wrapped in ErrMalformedDatabase.
func NewDatabase(cases []*Case, reports []*Report) (*Database, error) {
	db := &Database{
		cases:   make(map[string]*Case, len(cases)),
		reports: make(map[string]*Report, len(reports)),
		caseIds: make([]string, 0, len(cases)),
	}

	for _, c := range cases {
		if err := ValidateCase(c); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDatabase, err)
		}
		if _, ok := db.cases[c.Id]; ok {
			return nil, fmt.Errorf("%w: %w: %q", ErrMalformedDatabase, ErrDuplicateCase, c.Id)
		}
		db.cases[c.Id] = c
		db.caseIds = append(db.caseIds, c.Id)
	}

	for _, r := range reports {
		if err := ValidateReport(r); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDatabase, err)
		}
		if _, ok := db.reports[r.Id]; ok {
			return nil, fmt.Errorf("%w: %w: %q", ErrMalformedDatabase, ErrDuplicateReport, r.Id)
		}
		db.reports[r.Id] = r
	}

	sort.Strings(db.caseIds)
	return db, nil
}

// GetCase returns the case with the given id, or ErrNotFound.
func (db *Database) GetCase(id string) (*Case, error) {
	c, ok := db.cases[id]
	if !ok {
		return nil, fmt.Errorf("%w: case %q", ErrNotFound, id)
	}
	return c, nil
}

// GetReport returns the report with the given id, or ErrNotFound.
func (db *Database) GetReport(id string) (*Report, error) {
	r, ok := db.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: report %q", ErrNotFound, id)
	}
	return r, nil
}

// CaseIds returns all case ids in ascending order. The returned slice is
// shared; callers must not modify it.
func (db *Database) CaseIds() []string {
	return db.caseIds
}

// Len returns the number of cases.
func (db *Database) Len() int {
	return len(db.cases)
}

// Document builds the searchable text for the case with the given id.
func (db *Database) Document(caseID string) (string, error) {
	c, err := db.GetCase(caseID)
	if err != nil {
		return "", err
	}
	return c.Document(db.lookupReport), nil
}

func (db *Database) lookupReport(id string) *Report {
	return db.reports[id]
}
