package units

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/newtron-network/psktron/pkg/util"
)

func TestFromText(t *testing.T) {
	n := New()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"comma separated", "101, 102A ,103", []string{"101", "102A", "103"}},
		{"one per line", "101\n102A\n\n103\n", []string{"101", "102A", "103"}},
		{"duplicates kept in order", "103,101,103", []string{"103", "101", "103"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.FromText(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FromText(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFromTable(t *testing.T) {
	n := New("unit")
	table := Table{
		Columns: []string{"floor", "unit"},
		Rows: [][]interface{}{
			{1, "101"},
			{1, " 102A "},
			{1, nil},
			{1, ""},
			{2, 201.0},
			{2},
			{2, "101"},
		},
	}

	got, err := n.FromTable(table)
	if err != nil {
		t.Fatalf("FromTable() error = %v", err)
	}
	want := []string{"101", "102A", "201", "101"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromTable() = %v, want %v", got, want)
	}
}

func TestFromTable_MissingColumn(t *testing.T) {
	n := New("unit")
	got, err := n.FromTable(Table{Columns: []string{"Unit", "floor"}})

	if !errors.Is(err, util.ErrMissingColumn) {
		t.Fatalf("FromTable() error = %v, want ErrMissingColumn", err)
	}
	if got != nil {
		t.Errorf("FromTable() units = %v, want nil", got)
	}
	var mc *util.MissingColumnError
	if !errors.As(err, &mc) || mc.Column != "unit" {
		t.Errorf("MissingColumnError.Column = %v, want unit", mc)
	}
}

func TestFromTable_ColumnPreference(t *testing.T) {
	n := New("unit", "room")
	got, err := n.FromTable(Table{
		Columns: []string{"room"},
		Rows:    [][]interface{}{{"12"}, {"14"}},
	})
	if err != nil {
		t.Fatalf("FromTable() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"12", "14"}) {
		t.Errorf("FromTable() = %v", got)
	}
}

func TestFromCSV(t *testing.T) {
	n := New()
	input := "\ufeffunit,resident\n101,Ada\n102A,Grace\n,Empty\n 103 ,Linus\n"

	got, err := n.FromCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("FromCSV() error = %v", err)
	}
	want := []string{"101", "102A", "103"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromCSV() = %v, want %v", got, want)
	}
}

func TestFromCSV_MissingColumn(t *testing.T) {
	n := New()
	_, err := n.FromCSV(strings.NewReader("apartment\n101\n"))
	if !errors.Is(err, util.ErrMissingColumn) {
		t.Errorf("FromCSV() error = %v, want ErrMissingColumn", err)
	}

	_, err = n.FromCSV(strings.NewReader(""))
	if !errors.Is(err, util.ErrMissingColumn) {
		t.Errorf("FromCSV(empty) error = %v, want ErrMissingColumn", err)
	}
}

func TestFromJSON(t *testing.T) {
	n := New()
	input := `[{"unit": 101}, {"unit": "102A"}, {"unit": null}, {"note": "no unit"}, {"unit": 103}]`

	got, err := n.FromJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	want := []string{"101", "102A", "103"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromJSON() = %v, want %v", got, want)
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "units.csv")
	jsonPath := filepath.Join(dir, "units.JSON")

	if err := os.WriteFile(csvPath, []byte("unit\n101\n102\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jsonPath, []byte(`[{"unit":"201"}]`), 0644); err != nil {
		t.Fatal(err)
	}

	n := New()
	got, err := n.FromFile(csvPath)
	if err != nil || !reflect.DeepEqual(got, []string{"101", "102"}) {
		t.Errorf("FromFile(csv) = %v, %v", got, err)
	}
	got, err = n.FromFile(jsonPath)
	if err != nil || !reflect.DeepEqual(got, []string{"201"}) {
		t.Errorf("FromFile(json) = %v, %v", got, err)
	}
	if _, err := n.FromFile(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("FromFile(missing) should fail")
	}
}
