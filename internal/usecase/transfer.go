package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/ErlanBelekov/diary-service/internal/diarycsv"
	"github.com/ErlanBelekov/diary-service/internal/metrics"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ImportResult reports how many rows were stored and why the rest were not.
type ImportResult struct {
	Imported int
	Errors   []string
}

type TransferUsecase struct {
	diaries *DiaryUsecase
	logger  *slog.Logger
}

func NewTransferUsecase(diaries *DiaryUsecase, logger *slog.Logger) *TransferUsecase {
	return &TransferUsecase{diaries: diaries, logger: logger.With("component", "transfer")}
}

// Export renders every diary of the user as CSV.
func (u *TransferUsecase) Export(ctx context.Context, userID int64) ([]byte, error) {
	ds, err := u.diaries.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := diarycsv.Write(&buf, ds); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}

	metrics.ExportsTotal.Inc()
	metrics.ExportedRowsTotal.Add(float64(len(ds)))
	return buf.Bytes(), nil
}

// Import stores each row independently. A bad row is recorded in Errors and
// the loop moves on; rows already stored are never rolled back. Only an
// unreadable or malformed file is returned as an error.
func (u *TransferUsecase) Import(ctx context.Context, userID int64, r io.Reader) (ImportResult, error) {
	start := time.Now()
	defer func() { metrics.ImportDuration.Observe(time.Since(start).Seconds()) }()

	records, err := diarycsv.Read(r)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Errors: []string{}}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			u.logger.WarnContext(ctx, "import interrupted", "user_id", userID, "imported", result.Imported, "remaining", len(records)-i)
			return result, err
		}

		line := i + 2
		if msg := checkRecord(rec); msg != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %s", line, msg))
			metrics.ImportRowsTotal.WithLabelValues("failed").Inc()
			continue
		}

		var mood *string
		if rec.Mood != "" {
			mood = &rec.Mood
		}
		_, err := u.diaries.Create(ctx, CreateDiaryInput{
			UserID:      userID,
			Title:       rec.Title,
			Content:     rec.Content,
			JournalDate: rec.JournalDate,
			Mood:        mood,
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			metrics.ImportRowsTotal.WithLabelValues("failed").Inc()
			continue
		}

		result.Imported++
		metrics.ImportRowsTotal.WithLabelValues("imported").Inc()
	}

	u.logger.InfoContext(ctx, "import finished", "user_id", userID, "imported", result.Imported, "failed", len(result.Errors))
	return result, nil
}

func checkRecord(rec diarycsv.Record) string {
	if strings.TrimSpace(rec.Title) == "" || strings.TrimSpace(rec.Content) == "" || strings.TrimSpace(rec.JournalDate) == "" {
		return "missing required field(s): title, content, journal date"
	}
	if !datePattern.MatchString(rec.JournalDate) {
		return "invalid date format, expected YYYY-MM-DD"
	}
	return ""
}
