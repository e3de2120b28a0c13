package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/aluiziolira/cinesent/failure"
	"github.com/aluiziolira/cinesent/models"
)

// ReadCSV loads the scored reviews of a CSV export.
func ReadCSV(path string) ([]models.SentimentResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(CSVHeader)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if !slices.Equal(header, CSVHeader) {
		return nil, fmt.Errorf("unexpected csv header %v", header)
	}

	var out []models.SentimentResult
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row, err)
		}
		result, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", row, err)
		}
		out = append(out, result)
	}
	return out, nil
}

func parseRecord(record []string) (models.SentimentResult, error) {
	r := models.SentimentResult{
		Review: models.Review{Text: record[0]},
		Label:  models.Label(record[2]),
	}
	switch r.Label {
	case models.Positive, models.Negative, models.Neutral:
	default:
		return r, failure.ErrParse{Field: "sentiment", Value: record[2], Err: errors.New("unknown label")}
	}

	if record[1] != "" {
		v, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return r, failure.ErrParse{Field: "rating", Value: record[1], Err: err}
		}
		r.Rating = &v
	}

	fields := []struct {
		name string
		dst  *float64
		raw  string
	}{
		{"compound", &r.Compound, record[3]},
		{"positive", &r.Positive, record[4]},
		{"negative", &r.Negative, record[5]},
		{"neutral", &r.Neutral, record[6]},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return r, failure.ErrParse{Field: f.name, Value: f.raw, Err: err}
		}
		*f.dst = v
	}
	return r, nil
}

// ReadJSON loads a JSON export.
func ReadJSON(path string) (*models.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json file: %w", err)
	}
	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, failure.ErrParse{Field: "report", Value: path, Err: err}
	}
	return &report, nil
}
