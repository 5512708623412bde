package dataset_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/csg33k/modreport/internal/adapters/dataset"
	"github.com/csg33k/modreport/internal/domain"
)

var expected = []string{"Mod_No", "Plant", "Project No"}

func newLoader() *dataset.Loader { return dataset.New(expected, ',') }

func writeFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mods.csv")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRows(t *testing.T) {
	path := writeFile(t, []byte("Mod_No,Plant,Project No\n2019-0042,ACH8,5228285\n\n5228285,ACH8,\n"))
	ds, err := newLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &domain.Dataset{
		Path:   path,
		Header: []string{"Mod_No", "Plant", "Project No"},
		Rows: []domain.RawRow{
			{Index: 1, Line: 2, Fields: map[string]string{"Mod_No": "2019-0042", "Plant": "ACH8", "Project No": "5228285"}},
			{Index: 2, Line: 4, Fields: map[string]string{"Mod_No": "5228285", "Plant": "ACH8", "Project No": ""}},
		},
	}
	if diff := cmp.Diff(want, ds); diff != "" {
		t.Errorf("dataset mismatch (-want +got):\n%s", diff)
	}
}

func TestHeaderAnyOrderAndPadded(t *testing.T) {
	ds, err := newLoader().Read(strings.NewReader(" Plant ,Project No,Mod_No\nACH8,,2019-0042\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := ds.Rows[0].Get("Mod_No"); got != "2019-0042" {
		t.Errorf("Mod_No = %q", got)
	}
}

func TestHeaderMismatch(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []string
	}{
		{"missing", "Mod_No,Plant", []string{`missing "Project No"`}},
		{"unexpected", "Mod_No,Plant,Project No,Owner", []string{`unexpected "Owner"`}},
		{"duplicate", "Mod_No,Plant,Project No,Plant", []string{`duplicate "Plant"`}},
		{"all", "Mod_No,Mod_No,Owner", []string{`missing "Plant", "Project No"`, `unexpected "Owner"`, `duplicate "Mod_No"`}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newLoader().Read(strings.NewReader(tc.header + "\n"))
			var dre *dataset.DatasetReadError
			if !errors.As(err, &dre) {
				t.Fatalf("err = %v, want *DatasetReadError", err)
			}
			if !errors.Is(err, dataset.ErrHeaderMismatch) {
				t.Errorf("err = %v, want ErrHeaderMismatch", err)
			}
			for _, w := range tc.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not mention %s", err, w)
				}
			}
		})
	}
}

func TestMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.csv")
	_, err := newLoader().Load(context.Background(), path)
	var dre *dataset.DatasetReadError
	if !errors.As(err, &dre) {
		t.Fatalf("err = %v, want *DatasetReadError", err)
	}
	if dre.Path != path || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v", err)
	}
}

func TestEmptyFile(t *testing.T) {
	_, err := newLoader().Read(strings.NewReader(""))
	var dre *dataset.DatasetReadError
	if !errors.As(err, &dre) || dre.Reason != "file is empty" {
		t.Fatalf("err = %v", err)
	}
}

func TestRaggedRowIsFatal(t *testing.T) {
	_, err := newLoader().Read(strings.NewReader("Mod_No,Plant,Project No\n2019-0042,ACH8\n"))
	var dre *dataset.DatasetReadError
	if !errors.As(err, &dre) {
		t.Fatalf("err = %v, want *DatasetReadError", err)
	}
	if !strings.Contains(dre.Reason, "row 1") {
		t.Errorf("reason = %q", dre.Reason)
	}
}

func TestBOMAndWindows1252(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"bom", append([]byte("\xef\xbb\xbf"), "Mod_No,Plant,Project No\n2019-0042,Caf\xc3\xa9,\n"...)},
		{"cp1252", []byte("Mod_No,Plant,Project No\n2019-0042,Caf\xe9,\n")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ds, err := newLoader().Read(bytes.NewReader(tc.data))
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if got := ds.Rows[0].Get("Plant"); got != "Café" {
				t.Errorf("Plant = %q, want Café", got)
			}
		})
	}
}

func TestSemicolonDelimiter(t *testing.T) {
	ds, err := dataset.New(expected, ';').Read(strings.NewReader("Mod_No;Plant;Project No\n2019-0042;ACH8;TBC\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := ds.Rows[0].Get("Project No"); got != "TBC" {
		t.Errorf("Project No = %q", got)
	}
}

func TestWriteRejections(t *testing.T) {
	var buf bytes.Buffer
	err := dataset.WriteRejections(&buf, []domain.Rejection{
		{Row: 3, Line: 4, Reason: domain.UnknownPlant, Field: "Plant", Value: "UNKNOWN9", Detail: "plant not in the area table"},
		{Row: 5, Line: 6, Reason: domain.UnrecognizedIdentifierFormat, Field: "Mod_No", Value: "a,b", Detail: "x"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "row,line,reason,field,value,detail\n" +
		"3,4,UnknownPlant,Plant,UNKNOWN9,plant not in the area table\n" +
		"5,6,UnrecognizedIdentifierFormat,Mod_No,\"a,b\",x\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestRejectionWriter(t *testing.T) {
	dir := t.TempDir()
	a, err := dataset.RejectionWriter{}.Write(context.Background(), &domain.Report{}, dir)
	if err != nil {
		t.Fatal(err)
	}
	if a.Kind != "csv" || a.Path != filepath.Join(dir, dataset.RejectionsFile) {
		t.Errorf("artifact = %+v", a)
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "row,line,reason,field,value,detail\n" {
		t.Errorf("empty log = %q", data)
	}
}
