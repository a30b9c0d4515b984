// Package report renders evaluated candidates to a delimited report file.
//
// The format is a CSV with a header row and one row per candidate. Text
// fields (name, id, last_reload) are always quoted; size_mb is written bare
// so spreadsheet tools pick it up as a number. encoding/csv reads the format
// back without special handling, which the round-trip tests rely on.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sensetools/sweeper/pkg/retention"
)

// TimeLayout is the calendar/time format of the last_reload column.
const TimeLayout = "2006-01-02 15:04:05"

// fileTimeLayout stamps report filenames.
const fileTimeLayout = "2006-01-02_150405"

var header = []string{"name", "id", "size_mb", "last_reload"}

// Writer renders candidate lists as CSV.
type Writer struct {
	// IncludeHeader adds the column header row.
	IncludeHeader bool
}

// NewWriter creates a report writer with the header row enabled.
func NewWriter() *Writer {
	return &Writer{IncludeHeader: true}
}

// Export writes one row per candidate to w.
func (wr *Writer) Export(w io.Writer, candidates []retention.Candidate) error {
	if wr.IncludeHeader {
		if err := writeRow(w, header, true); err != nil {
			return fmt.Errorf("writing report header: %w", err)
		}
	}
	for _, c := range candidates {
		row := []string{
			c.Name,
			c.ID,
			strconv.FormatFloat(c.SizeMB, 'f', -1, 64),
			c.LastReload.Format(TimeLayout),
		}
		if err := writeRow(w, row, false); err != nil {
			return fmt.Errorf("writing report row for %s: %w", c.ID, err)
		}
	}
	return nil
}

// writeRow emits one CSV record. Every field is quoted except the numeric
// size_mb column (index 2) in data rows.
func writeRow(w io.Writer, fields []string, quoteAll bool) error {
	parts := make([]string, len(fields))
	for i, f := range fields {
		if !quoteAll && i == 2 {
			parts[i] = f
			continue
		}
		parts[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	_, err := io.WriteString(w, strings.Join(parts, ",")+"\r\n")
	return err
}

// WriteFile writes the report to a timestamped file in dir and returns the
// file's path.
func (wr *Writer) WriteFile(dir string, candidates []retention.Candidate, now time.Time) (string, error) {
	name := fmt.Sprintf("stale_apps_%s.csv", now.Format(fileTimeLayout))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	if err := wr.Export(f, candidates); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing report file: %w", err)
	}
	return path, nil
}

// Row is one parsed report row.
type Row struct {
	Name       string
	ID         string
	SizeMB     float64
	LastReload string
}

// Read parses a report produced by Export, skipping the header row when
// present.
func Read(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(header)

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading report: %w", err)
		}
		if record[0] == "name" && record[1] == "id" {
			continue
		}
		size, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing size_mb %q: %w", record[2], err)
		}
		rows = append(rows, Row{
			Name:       record[0],
			ID:         record[1],
			SizeMB:     size,
			LastReload: record[3],
		})
	}
}
