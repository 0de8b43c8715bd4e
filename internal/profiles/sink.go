package profiles

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/aeroleads/internal/types"
)

// Sink receives profile records as they are collected.
type Sink interface {
	Write(record types.ProfileRecord) error
}

// CSVSink appends profile records to a CSV file and flushes after every row.
type CSVSink struct {
	path string
	file *os.File
	w    *csv.Writer
	rows int
}

// OpenCSVSink opens path for appending, creating it and its directory if needed.
// The header row is written only when the file is empty.
func OpenCSVSink(path string) (*CSVSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat output file %s: %w", path, err)
	}

	sink := &CSVSink{path: path, file: file, w: csv.NewWriter(file)}
	if info.Size() == 0 {
		if err := sink.writeRow(types.CSVHeader()); err != nil {
			_ = file.Close()
			return nil, err
		}
	}
	return sink, nil
}

// Write appends one record and flushes it to disk.
func (s *CSVSink) Write(record types.ProfileRecord) error {
	if err := s.writeRow(record.Row()); err != nil {
		return err
	}
	s.rows++
	return nil
}

func (s *CSVSink) writeRow(row []string) error {
	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("failed to write row to %s: %w", s.path, err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", s.path, err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (s *CSVSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
