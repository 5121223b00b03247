package validationdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanoret/validation-databse/core"
)

const sampleDB = `{
  "cases": {
    "VVC-0001": {
      "title": "Pronghorn natural circulation benchmark",
      "vv_type": "validation",
      "scope": "system",
      "system": "primary loop",
      "summary": "Natural circulation flow rates compared against facility data.",
      "tools": ["Pronghorn", "SAM"],
      "phenomena": ["natural circulation", "buoyancy"],
      "tags": ["thermal-hydraulics"],
      "fluids": "FLiBe",
      "source_reports": [
        {"report_id": "RPT-01", "section": "4.2", "note": "steady state runs", "report_link": "https://example.org/mirror/anl-23-101.pdf"}
      ]
    },
    "VVC-0002": {
      "title": "Fuel performance code verification",
      "vv_type": "verification",
      "scope": "component",
      "summary": "Method of manufactured solutions study.",
      "tools": ["BISON"],
      "source_reports": [
        {"report_id": "RPT-MISSING"}
      ]
    }
  },
  "reports": {
    "RPT-01": {
      "report_number": "ANL-23-101",
      "title": "Natural Circulation Validation Report",
      "author": "J. Doe",
      "date": "2023-06-01",
      "file_name": "anl-23-101.pdf",
      "file_link": "https://example.org/anl-23-101.pdf"
    }
  }
}`

func TestLoad(t *testing.T) {
	t.Run("parses cases keyed by id", func(t *testing.T) {
		db, err := Load([]byte(sampleDB))
		require.NoError(t, err)
		assert.Equal(t, 2, db.Len())

		c, err := db.GetCase("VVC-0001")
		require.NoError(t, err)
		assert.Equal(t, "Pronghorn natural circulation benchmark", c.Title)
		assert.Equal(t, []string{"Pronghorn", "SAM"}, []string(c.Tools))
		assert.Equal(t, []string{"FLiBe"}, []string(c.Fluids))
		require.Len(t, c.SourceReports, 1)
		assert.Equal(t, "RPT-01", c.SourceReports[0].ReportID)
		assert.Equal(t, "4.2", c.SourceReports[0].Section)
		assert.Equal(t, "https://example.org/mirror/anl-23-101.pdf", c.SourceReports[0].ReportLink)

		r, err := db.GetReport("RPT-01")
		require.NoError(t, err)
		assert.Equal(t, "ANL-23-101", r.ReportNumber)
	})

	t.Run("parses cases as array", func(t *testing.T) {
		db, err := Load([]byte(`{
			"cases": [
				{"id": "VVC-A", "title": "A"},
				{"id": "VVC-B", "title": "B"}
			],
			"reports": {}
		}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"VVC-A", "VVC-B"}, db.CaseIds())
	})

	t.Run("map key supplies missing case id", func(t *testing.T) {
		db, err := Load([]byte(`{
			"cases": {"VVC-K": {"title": "keyed"}},
			"reports": {}
		}`))
		require.NoError(t, err)
		c, err := db.GetCase("VVC-K")
		require.NoError(t, err)
		assert.Equal(t, "VVC-K", c.Id)
	})

	t.Run("dangling source report is not a load error", func(t *testing.T) {
		db, err := Load([]byte(sampleDB))
		require.NoError(t, err)
		c, err := db.GetCase("VVC-0002")
		require.NoError(t, err)
		assert.Equal(t, "RPT-MISSING", c.SourceReports[0].ReportID)
		_, err = db.GetReport("RPT-MISSING")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		_, err := Load([]byte(`{"cases": {`))
		assert.ErrorIs(t, err, core.ErrMalformedDatabase)
	})

	t.Run("rejects missing top-level keys", func(t *testing.T) {
		_, err := Load([]byte(`{"reports": {}}`))
		assert.ErrorIs(t, err, core.ErrMalformedDatabase)

		_, err = Load([]byte(`{"cases": {}}`))
		assert.ErrorIs(t, err, core.ErrMalformedDatabase)
	})

	t.Run("rejects duplicate case ids", func(t *testing.T) {
		_, err := Load([]byte(`{
			"cases": [
				{"id": "VVC-A"},
				{"id": "VVC-A"}
			],
			"reports": {}
		}`))
		assert.ErrorIs(t, err, core.ErrMalformedDatabase)
		assert.ErrorIs(t, err, core.ErrDuplicateCase)
	})

	t.Run("rejects empty case id", func(t *testing.T) {
		_, err := Load([]byte(`{
			"cases": [{"title": "anonymous"}],
			"reports": {}
		}`))
		assert.ErrorIs(t, err, core.ErrMalformedDatabase)
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("loads from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "db.json")
		require.NoError(t, os.WriteFile(path, []byte(sampleDB), 0o644))

		db, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 2, db.Len())
	})

	t.Run("missing file is malformed database", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
		assert.ErrorIs(t, err, core.ErrMalformedDatabase)
	})
}

func TestStringList(t *testing.T) {
	t.Run("accepts bare string", func(t *testing.T) {
		var l stringList
		require.NoError(t, l.UnmarshalJSON([]byte(`"sodium"`)))
		assert.Equal(t, stringList{"sodium"}, l)
	})

	t.Run("empty string yields nil", func(t *testing.T) {
		var l stringList
		require.NoError(t, l.UnmarshalJSON([]byte(`""`)))
		assert.Nil(t, l)
	})

	t.Run("rejects numbers", func(t *testing.T) {
		var l stringList
		assert.Error(t, l.UnmarshalJSON([]byte(`42`)))
	})
}
