package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/mindsync/server/internal/domain"
)

// csvColumns is the fixed column order of a mood export.
var csvColumns = []string{"recordType", "entryDate", "rating", "tags", "note", "createdAt", "updatedAt"}

// RenderCSV writes one row per mood entry in the fixed column order.
func RenderCSV(entries []*domain.MoodEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvColumns); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		row := []string{
			"mood",
			entry.EntryDate.Format("2006-01-02"),
			strconv.Itoa(entry.Rating),
			strings.Join(entry.Tags, ", "),
			entry.Note,
			entry.CreatedAt.UTC().Format(time.RFC3339),
			entry.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
