// Package diarycsv encodes diaries as CSV and decodes uploaded CSV files.
package diarycsv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ErlanBelekov/diary-service/internal/domain"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

const (
	ColID          = "ID"
	ColTitle       = "Title"
	ColContent     = "Content"
	ColJournalDate = "Journal Date"
	ColMood        = "Mood"
	ColCreatedAt   = "Created At"
	ColUpdatedAt   = "Updated At"
)

// Header is the first row of every export.
var Header = []string{ColID, ColTitle, ColContent, ColJournalDate, ColMood, ColCreatedAt, ColUpdatedAt}

var ErrMalformed = errors.New("malformed csv")

var bom = []byte{0xEF, 0xBB, 0xBF}

// Record is one data row of an uploaded file. Columns missing from the
// header or from a short row read as empty strings.
type Record struct {
	Title       string
	Content     string
	JournalDate string
	Mood        string
}

func Write(w io.Writer, diaries []*domain.Diary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, d := range diaries {
		mood := ""
		if d.Mood != nil {
			mood = *d.Mood
		}
		row := []string{
			strconv.FormatInt(d.ID, 10),
			d.Title,
			d.Content,
			domain.FormatJournalDate(d.JournalDate),
			mood,
			formatTimestamp(d.CreatedAt),
			formatTimestamp(d.UpdatedAt),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write diary %d: %w", d.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read parses the whole file before returning. Rows are returned in file
// order; the first data row is line 2 of the file.
func Read(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, bom)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, label := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(label))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	cell := func(row []string, label string) string {
		i, ok := index[strings.ToLower(label)]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, Record{
			Title:       cell(row, ColTitle),
			Content:     cell(row, ColContent),
			JournalDate: cell(row, ColJournalDate),
			Mood:        cell(row, ColMood),
		})
	}
	return records, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
