package seed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chirp-app/chirp/internal/db"
	"github.com/chirp-app/chirp/pkg/logging"
)

// Record is one cheep parsed from a CSV dump. The dump format is a header
// row followed by author,message,unix-timestamp rows.
type Record struct {
	Author    string
	Message   string
	Timestamp time.Time
}

// Parse reads a CSV cheep dump. The header row is skipped; comment lines
// starting with # are ignored.
func Parse(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = 3

	// Skip the row with the column names
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var records []Record
	line := 1
	for {
		fields, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		secs, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid timestamp %q", line, fields[2])
		}

		records = append(records, Record{
			Author:    strings.TrimSpace(fields[0]),
			Message:   fields[1],
			Timestamp: time.Unix(secs, 0).UTC(),
		})
	}
	return records, nil
}

// Importer stores parsed records through the repository, creating authors
// on their first cheep just like the write path does.
type Importer struct {
	cheeps *db.CheepRepository
	logger *zap.Logger
}

// NewImporter creates a new importer
func NewImporter(cheeps *db.CheepRepository) *Importer {
	return &Importer{
		cheeps: cheeps,
		logger: logging.WithComponent("seed"),
	}
}

// Import stores all records and returns the number stored. It stops at the
// first store failure.
func (i *Importer) Import(ctx context.Context, records []Record) (int, error) {
	stored := 0
	for n, rec := range records {
		if rec.Author == "" {
			i.logger.Warn("Skipping record with empty author", zap.Int("index", n))
			continue
		}
		if _, err := i.cheeps.Store(ctx, rec.Message, rec.Author, rec.Timestamp, ""); err != nil {
			return stored, fmt.Errorf("failed to import record %d: %w", n, err)
		}
		stored++
	}
	i.logger.Info("Seed import complete", zap.Int("records", stored))
	return stored, nil
}
