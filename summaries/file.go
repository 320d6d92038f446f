package summaries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/tomhorwitzsynthesis/akropolis-weekly-social-media-test/logger"
)

const dateColumnLayout = "2006-01-02"

// Row is one appended week of summaries: the window bounds plus one
// commentary cell per brand.
type Row struct {
	StartDate time.Time
	EndDate   time.Time
	ByBrand   map[string]string
}

// File is the append-only summaries history. The first two columns are fixed
// (start_date, end_date); brand columns are dynamic and grow as new brands
// appear, with earlier rows left blank for brands they never had.
type File struct {
	path string
	log  logger.Logger
}

func NewFile(path string) *File {
	return &File{path: path, log: logger.Log}
}

func (f *File) Path() string {
	return f.path
}

// Append adds one week's row, rewriting the file when the brand columns need
// to grow. Existing rows are never modified.
func (f *File) Append(row Row) error {
	header, records, err := f.read()
	if err != nil {
		return err
	}

	header = mergeHeader(header, sortedBrands(row.ByBrand))

	cells := make([]string, len(header))
	cells[0] = row.StartDate.Format(dateColumnLayout)
	cells[1] = row.EndDate.Format(dateColumnLayout)
	for i, col := range header[2:] {
		cells[i+2] = row.ByBrand[col]
	}
	records = append(records, cells)

	if err := f.write(header, records); err != nil {
		return err
	}
	f.log.Infof("appended summaries for %s to %s (%d brands)",
		cells[0], f.path, len(row.ByBrand))
	return nil
}

// Rows reads the full history back, newest last.
func (f *File) Rows() ([]Row, error) {
	header, records, err := f.read()
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := Row{ByBrand: map[string]string{}}
		row.StartDate, _ = time.Parse(dateColumnLayout, rec[0])
		row.EndDate, _ = time.Parse(dateColumnLayout, rec[1])
		for i, col := range header[2:] {
			if i+2 < len(rec) && rec[i+2] != "" {
				row.ByBrand[col] = rec[i+2]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// read returns the current header and data records. A missing file yields the
// base header and no records.
func (f *File) read() ([]string, [][]string, error) {
	in, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{"start_date", "end_date"}, nil, nil
		}
		return nil, nil, fmt.Errorf("open summaries %s: %w", f.path, err)
	}
	defer in.Close()

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []string{"start_date", "end_date"}, nil, nil
		}
		return nil, nil, fmt.Errorf("read summaries header: %w", err)
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read summaries %s: %w", f.path, err)
		}
		if len(rec) < 2 {
			continue
		}
		records = append(records, rec)
	}
	return header, records, nil
}

func (f *File) write(header []string, records [][]string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create summaries dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "summaries_*.tmp")
	if err != nil {
		return fmt.Errorf("create temp summaries file: %w", err)
	}
	tmpPath := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write summaries header: %w", err)
	}
	for _, rec := range records {
		// pad short rows so every record matches the (possibly grown) header
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("write summaries row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flush summaries: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace summaries %s: %w", f.path, err)
	}
	return nil
}

// mergeHeader extends the header with brand columns it does not carry yet,
// preserving the order of existing columns.
func mergeHeader(header, brands []string) []string {
	have := make(map[string]bool, len(header))
	for _, col := range header {
		have[col] = true
	}
	for _, b := range brands {
		if !have[b] {
			header = append(header, b)
			have[b] = true
		}
	}
	return header
}
