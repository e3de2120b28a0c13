package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/aluiziolira/cinesent/models"
)

// ReportWriter defines the interface for report export.
type ReportWriter interface {
	Write(report *models.Report) error
	Close() error
	Validate() error
}

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{"review", "rating", "sentiment", "compound", "positive", "negative", "neutral"}

// NewWriter returns the writer for format ("csv", "json" or "dual").
// For dual output path names the CSV file and the JSON file sits next to it.
func NewWriter(format, path string) (ReportWriter, error) {
	switch strings.ToLower(format) {
	case "", "csv":
		return NewCSVWriter(path)
	case "json":
		return NewJSONWriter(path)
	case "dual":
		return NewDualWriter(path, JSONPathFor(path))
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// JSONPathFor swaps path's extension for .json.
func JSONPathFor(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
}

// CSVWriter writes one row per scored review.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(CSVHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		file:   f,
		writer: writer,
	}, nil
}

// Write appends the report's reviews. An unknown rating is an empty cell.
func (cw *CSVWriter) Write(report *models.Report) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, r := range report.Reviews {
		rating := ""
		if r.Rating != nil {
			rating = formatFloat(*r.Rating)
		}
		record := []string{
			r.Text,
			rating,
			string(r.Label),
			formatFloat(r.Compound),
			formatFloat(r.Positive),
			formatFloat(r.Negative),
			formatFloat(r.Neutral),
		}
		if err := cw.writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures the file has content.
func (cw *CSVWriter) Validate() error {
	info, err := cw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

// JSONWriter writes the whole report as one indented JSON document.
type JSONWriter struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	written bool
	mu      sync.Mutex
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	encoder := json.NewEncoder(buffer)
	encoder.SetIndent("", "  ")
	return &JSONWriter{
		file:    f,
		writer:  buffer,
		encoder: encoder,
	}, nil
}

// Write encodes report. A JSON export holds exactly one report.
func (jw *JSONWriter) Write(report *models.Report) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.written {
		return fmt.Errorf("json export already holds a report")
	}
	if err := jw.encoder.Encode(report); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	jw.written = true
	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	info, err := jw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat json file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("json file is empty")
	}
	return nil
}

// Export writes report with a fresh writer for format and closes it.
func Export(report *models.Report, format, path string) error {
	w, err := NewWriter(format, path)
	if err != nil {
		return err
	}
	if err := w.Write(report); err != nil {
		w.Close()
		return err
	}
	if err := w.Validate(); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
