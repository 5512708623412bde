// Package dataset reads the delimited modification export into raw rows and
// writes the rejection log back out as CSV. It checks structure only: the
// header must match the configured column set exactly and every row must
// have as many fields as the header. Cell contents are left to the classifier.
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/csg33k/modreport/internal/domain"
)

// ErrHeaderMismatch marks a DatasetReadError caused by the header.
var ErrHeaderMismatch = errors.New("header does not match the expected columns")

// DatasetReadError is fatal: the file could not be read as a dataset at all.
type DatasetReadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DatasetReadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("read dataset %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("read dataset %s: %s", e.Path, e.Reason)
}

func (e *DatasetReadError) Unwrap() error { return e.Err }

type Loader struct {
	expected  []string
	delimiter rune
}

// New returns a loader expecting exactly the given header columns (any order).
func New(expected []string, delimiter rune) *Loader {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Loader{expected: expected, delimiter: delimiter}
}

// Load reads the file at path. Satisfies ports.DatasetLoader.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DatasetReadError{Path: path, Reason: "cannot open file", Err: err}
	}
	ds, err := l.Read(bytes.NewReader(data))
	if err != nil {
		var dre *DatasetReadError
		if errors.As(err, &dre) {
			dre.Path = path
		}
		return nil, err
	}
	ds.Path = path
	slog.InfoContext(ctx, "dataset loaded", "input", path, "rows", len(ds.Rows))
	return ds, nil
}

// Read parses a dataset from r. Errors are *DatasetReadError with an empty Path.
func (l *Loader) Read(r io.Reader) (*domain.Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &DatasetReadError{Reason: "cannot read file", Err: err}
	}
	text, err := decode(raw)
	if err != nil {
		return nil, &DatasetReadError{Reason: "cannot decode text", Err: err}
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = l.delimiter
	cr.FieldsPerRecord = 0 // first record fixes the width
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &DatasetReadError{Reason: "file is empty"}
	}
	if err != nil {
		return nil, &DatasetReadError{Reason: "malformed header", Err: err}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if err := l.checkHeader(header); err != nil {
		return nil, err
	}

	ds := &domain.Dataset{Header: header}
	for index := 1; ; index++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DatasetReadError{Reason: fmt.Sprintf("malformed data row %d", index), Err: err}
		}
		if blank(rec) {
			index--
			continue
		}
		fields := make(map[string]string, len(header))
		for i, name := range header {
			fields[name] = rec[i]
		}
		line, _ := cr.FieldPos(0)
		ds.Rows = append(ds.Rows, domain.RawRow{Index: index, Line: line, Fields: fields})
	}
	return ds, nil
}

func (l *Loader) checkHeader(header []string) error {
	want := make(map[string]bool, len(l.expected))
	for _, c := range l.expected {
		want[c] = true
	}
	seen := make(map[string]bool, len(header))
	var unexpected, duplicate, missing []string
	for _, c := range header {
		if seen[c] {
			duplicate = append(duplicate, c)
			continue
		}
		seen[c] = true
		if !want[c] {
			unexpected = append(unexpected, c)
		}
	}
	for _, c := range l.expected {
		if !seen[c] {
			missing = append(missing, c)
		}
	}
	if len(unexpected)+len(duplicate)+len(missing) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing "+quoteList(missing))
	}
	if len(unexpected) > 0 {
		parts = append(parts, "unexpected "+quoteList(unexpected))
	}
	if len(duplicate) > 0 {
		parts = append(parts, "duplicate "+quoteList(duplicate))
	}
	return &DatasetReadError{Reason: strings.Join(parts, "; "), Err: ErrHeaderMismatch}
}

// decode strips a UTF-8 BOM and falls back to Windows-1252 for files that are
// not valid UTF-8, which is what spreadsheet exports usually are.
func decode(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func quoteList(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	q := make([]string, len(sorted))
	for i, n := range sorted {
		q[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(q, ", ")
}
