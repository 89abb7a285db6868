// Package units turns operator input into the ordered list of unit
// identifiers to provision. Output is never deduplicated or reordered:
// outcome i always belongs to unit i.
package units

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/newtron-network/psktron/pkg/util"
)

// DefaultColumn is the unit column expected in tabular input.
const DefaultColumn = "unit"

// Table is tabular input with named columns. Cells may be any scalar; nil
// marks a null cell.
type Table struct {
	Columns []string
	Rows    [][]interface{}
}

// Normalizer extracts unit identifiers from manual text or tabular input.
type Normalizer struct {
	// Columns are the accepted unit column labels, matched case-sensitively
	// in order; the first one present in the input is used.
	Columns []string
}

// New creates a Normalizer accepting the given column labels.
func New(columns ...string) *Normalizer {
	if len(columns) == 0 {
		columns = []string{DefaultColumn}
	}
	return &Normalizer{Columns: columns}
}

// FromText splits comma- or newline-separated manual input.
func (n *Normalizer) FromText(s string) []string {
	return util.SplitList(s)
}

// FromTable reads the unit column of t. Null and blank cells are dropped.
func (n *Normalizer) FromTable(t Table) ([]string, error) {
	idx := n.columnIndex(t.Columns)
	if idx < 0 {
		return nil, &util.MissingColumnError{Column: strings.Join(n.Columns, "' or '"), Have: t.Columns}
	}

	var result []string
	for _, row := range t.Rows {
		if idx >= len(row) {
			continue
		}
		v, ok := cellString(row[idx])
		if !ok {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result, nil
}

// FromCSV reads CSV with a header row.
func (n *Normalizer) FromCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, &util.MissingColumnError{Column: strings.Join(n.Columns, "' or '")}
	}

	t := Table{Columns: cleanHeader(records[0])}
	for _, rec := range records[1:] {
		row := make([]interface{}, len(rec))
		for i, cell := range rec {
			row[i] = cell
		}
		t.Rows = append(t.Rows, row)
	}
	return n.FromTable(t)
}

// FromJSON reads a JSON array of objects, e.g. an export from a property
// management system. Column order follows first appearance.
func (n *Normalizer) FromJSON(r io.Reader) ([]string, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []map[string]interface{}
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}

	var t Table
	seen := make(map[string]int)
	for _, rec := range records {
		for k := range rec {
			if _, ok := seen[k]; !ok {
				seen[k] = len(t.Columns)
				t.Columns = append(t.Columns, k)
			}
		}
	}
	for _, rec := range records {
		row := make([]interface{}, len(t.Columns))
		for k, v := range rec {
			row[seen[k]] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return n.FromTable(t)
}

// FromFile dispatches on the file extension: .json is read as JSON, anything
// else as CSV.
func (n *Normalizer) FromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading unit file %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return n.FromJSON(bytes.NewReader(data))
	}
	return n.FromCSV(bytes.NewReader(data))
}

func (n *Normalizer) columnIndex(columns []string) int {
	for _, want := range n.Columns {
		for i, have := range columns {
			if have == want {
				return i
			}
		}
	}
	return -1
}

// cleanHeader strips a UTF-8 byte order mark and surrounding whitespace.
func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// cellString renders a cell as text. ok is false for null cells.
func cellString(v interface{}) (string, bool) {
	switch c := v.(type) {
	case nil:
		return "", false
	case string:
		return c, true
	case json.Number:
		return c.String(), true
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(c), 'f', -1, 32), true
	case int:
		return strconv.Itoa(c), true
	case int64:
		return strconv.FormatInt(c, 10), true
	case bool:
		return strconv.FormatBool(c), true
	case fmt.Stringer:
		return c.String(), true
	default:
		return fmt.Sprint(c), true
	}
}
