// Package export writes snapshots and process tables as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rileyhilliard/statdash/internal/errors"
	"github.com/rileyhilliard/statdash/internal/proctable"
	"github.com/rileyhilliard/statdash/internal/stats"
)

// SystemHeader is the column layout of the metrics log.
var SystemHeader = []string{
	"timestamp",
	"cpu_usage_total",
	"mem_used_percent",
	"mem_used_bytes",
	"mem_total_bytes",
	"disk_read_bytes",
	"disk_write_bytes",
	"net_bytes_sent",
	"net_bytes_recv",
}

// SystemWriter appends one row of system metrics per snapshot.
type SystemWriter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewSystemWriter writes the header to w and returns a writer for rows.
func NewSystemWriter(w io.Writer) (*SystemWriter, error) {
	sw := &SystemWriter{w: csv.NewWriter(w)}
	if err := sw.writeRow(SystemHeader); err != nil {
		return nil, err
	}
	return sw, nil
}

// CreateSystemLog creates (or truncates) path and returns a writer on it.
func CreateSystemLog(path string) (*SystemWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrExport,
				fmt.Sprintf("Couldn't create directory for %s", path), "")
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Couldn't create %s", path),
			"Check that the directory exists and is writable")
	}

	sw, err := NewSystemWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	sw.closer = f
	return sw, nil
}

// Write appends snap. The timestamp comes from the snapshot, falling back to now.
func (sw *SystemWriter) Write(snap *stats.Snapshot) error {
	ts := snap.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	sent, recv := snap.NetTotals()

	return sw.writeRow([]string{
		ts.Format(time.RFC3339),
		strconv.FormatFloat(snap.CPUUsage, 'f', 2, 64),
		strconv.FormatFloat(snap.MemUsedPercent, 'f', 2, 64),
		strconv.FormatUint(snap.MemUsed, 10),
		strconv.FormatUint(snap.MemTotal, 10),
		strconv.FormatUint(snap.DiskReadBytes, 10),
		strconv.FormatUint(snap.DiskWriteBytes, 10),
		strconv.FormatUint(sent, 10),
		strconv.FormatUint(recv, 10),
	})
}

// Close closes the underlying file when the writer owns one.
func (sw *SystemWriter) Close() error {
	if sw.closer == nil {
		return nil
	}
	return sw.closer.Close()
}

// writeRow flushes after every row so a killed process leaves a usable file.
func (sw *SystemWriter) writeRow(row []string) error {
	if err := sw.w.Write(row); err != nil {
		return errors.WrapWithCode(err, errors.ErrExport, "Couldn't write CSV row", "")
	}
	sw.w.Flush()
	if err := sw.w.Error(); err != nil {
		return errors.WrapWithCode(err, errors.ErrExport, "Couldn't write CSV row", "")
	}
	return nil
}

// TableHeader returns the process table CSV header.
func TableHeader() []string {
	header := []string{"pinned"}
	for _, c := range proctable.Columns {
		header = append(header, string(c.Key))
	}
	return header
}

// WriteTable writes a rendered process table, pinned rows first, in the
// same order and formatting the dashboard shows.
func WriteTable(w io.Writer, view proctable.TableView) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TableHeader()); err != nil {
		return errors.WrapWithCode(err, errors.ErrExport, "Couldn't write CSV header", "")
	}

	for _, row := range view.Rows() {
		record := append([]string{strconv.FormatBool(row.Pinned)}, row.Cells...)
		if err := cw.Write(record); err != nil {
			return errors.WrapWithCode(err, errors.ErrExport,
				fmt.Sprintf("Couldn't write row for pid %d", row.PID), "")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.WrapWithCode(err, errors.ErrExport, "Couldn't flush CSV", "")
	}
	return nil
}

// TableFileName names a dashboard export taken at t.
func TableFileName(t time.Time) string {
	return fmt.Sprintf("statdash-processes-%s.csv", t.Format("20060102-150405"))
}

// SaveTable writes view to a new file in dir and returns its path.
func SaveTable(dir string, view proctable.TableView, at time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Couldn't create export directory %s", dir), "")
	}

	path := filepath.Join(dir, TableFileName(at))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Couldn't create %s", path), "")
	}
	defer f.Close()

	if err := WriteTable(f, view); err != nil {
		return "", err
	}
	return path, nil
}
