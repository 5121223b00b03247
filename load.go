package validationdb

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/tanoret/validation-databse/core"
)

// stringList accepts both a JSON array of strings and a bare string, which
// hand-edited databases use interchangeably for list fields.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*l = nil
		} else {
			*l = []string{one}
		}
		return nil
	}
	return fmt.Errorf("expected string or array of strings, got %s", string(data))
}

type sourceReportJSON struct {
	ReportID   string `json:"report_id"`
	Section    string `json:"section"`
	Note       string `json:"note"`
	ReportLink string `json:"report_link"`
}

type caseJSON struct {
	Id            string             `json:"id"`
	Title         string             `json:"title"`
	VVType        string             `json:"vv_type"`
	Scope         string             `json:"scope"`
	System        string             `json:"system"`
	Summary       string             `json:"summary"`
	Tools         stringList         `json:"tools"`
	Phenomena     stringList         `json:"phenomena"`
	Tags          stringList         `json:"tags"`
	Fluids        stringList         `json:"fluids"`
	SourceReports []sourceReportJSON `json:"source_reports"`
}

type reportJSON struct {
	Id           string `json:"id"`
	ReportNumber string `json:"report_number"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Date         string `json:"date"`
	FileName     string `json:"file_name"`
	FileLink     string `json:"file_link"`
}

type databaseJSON struct {
	Cases   json.RawMessage       `json:"cases"`
	Reports map[string]reportJSON `json:"reports"`
}

func (cj *caseJSON) toCase() *core.Case {
	srs := make([]core.SourceReport, len(cj.SourceReports))
	for i, sr := range cj.SourceReports {
		srs[i] = core.SourceReport{
			ReportID:   sr.ReportID,
			Section:    sr.Section,
			Note:       sr.Note,
			ReportLink: sr.ReportLink,
		}
	}
	return &core.Case{
		Id:            cj.Id,
		Title:         cj.Title,
		VVType:        cj.VVType,
		Scope:         cj.Scope,
		System:        cj.System,
		Summary:       cj.Summary,
		Tools:         cj.Tools,
		Phenomena:     cj.Phenomena,
		Tags:          cj.Tags,
		Fluids:        cj.Fluids,
		SourceReports: srs,
	}
}

// LoadFile loads and validates a validation database from a JSON file.
// Returns core.ErrMalformedDatabase-wrapped errors for schema violations;
// these are fatal at startup.
func LoadFile(filePath string) (*core.Database, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", core.ErrMalformedDatabase, filePath, err)
	}
	return Load(data)
}

// LoadFromEnv loads the database from DB_PATH or the default path.
func LoadFromEnv() (*core.Database, error) {
	return LoadFile(DBPathFromEnv())
}

// Load parses a validation database from JSON bytes. Cases may be encoded
// as an object keyed by case id or as an array of case objects; reports are
// an object keyed by report id. Ids embedded in entries take precedence
// over their map keys when both are present.
func Load(data []byte) (*core.Database, error) {
	var raw databaseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrMalformedDatabase, err)
	}
	if raw.Cases == nil {
		return nil, fmt.Errorf("%w: missing top-level key %q", core.ErrMalformedDatabase, "cases")
	}
	if raw.Reports == nil {
		return nil, fmt.Errorf("%w: missing top-level key %q", core.ErrMalformedDatabase, "reports")
	}

	cases, err := parseCases(raw.Cases)
	if err != nil {
		return nil, err
	}

	reports := make([]*core.Report, 0, len(raw.Reports))
	reportIds := make([]string, 0, len(raw.Reports))
	for id := range raw.Reports {
		reportIds = append(reportIds, id)
	}
	sort.Strings(reportIds)
	for _, id := range reportIds {
		rj := raw.Reports[id]
		if rj.Id == "" {
			rj.Id = id
		}
		reports = append(reports, &core.Report{
			Id:           rj.Id,
			ReportNumber: rj.ReportNumber,
			Title:        rj.Title,
			Author:       rj.Author,
			Date:         rj.Date,
			FileName:     rj.FileName,
			FileLink:     rj.FileLink,
		})
	}

	return core.NewDatabase(cases, reports)
}

func parseCases(raw json.RawMessage) ([]*core.Case, error) {
	var byId map[string]caseJSON
	if err := json.Unmarshal(raw, &byId); err == nil {
		ids := make([]string, 0, len(byId))
		for id := range byId {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		cases := make([]*core.Case, 0, len(byId))
		for _, id := range ids {
			cj := byId[id]
			if cj.Id == "" {
				cj.Id = id
			}
			cases = append(cases, cj.toCase())
		}
		return cases, nil
	}

	var list []caseJSON
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: %q must be an object keyed by case id or an array: %w",
			core.ErrMalformedDatabase, "cases", err)
	}
	cases := make([]*core.Case, len(list))
	for i := range list {
		cases[i] = list[i].toCase()
	}
	return cases, nil
}
