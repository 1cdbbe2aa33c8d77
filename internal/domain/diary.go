package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrDiaryNotFound = errors.New("diary not found")
	ErrValidation    = errors.New("validation failed")
)

// DateLayout is the wire format of a journal date.
const DateLayout = "2006-01-02"

const (
	MaxTitleLength = 200
	MaxMoodLength  = 50
)

type Diary struct {
	ID          int64
	UserID      int64
	Title       string
	Content     string
	JournalDate time.Time // UTC midnight, no time component
	Mood        *string   // nil means no mood
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DiaryPatch lists the fields an update replaces. Nil pointers are left untouched.
type DiaryPatch struct {
	Title       *string
	Content     *string
	JournalDate *time.Time
	SetMood     bool
	Mood        *string // applied only when SetMood; nil clears
}

// Field is an optional value decoded from JSON. Set reports whether the key
// was present at all; Value is nil when it was present as null.
type Field[T any] struct {
	Set   bool
	Value *T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// ParseJournalDate parses a YYYY-MM-DD string and rejects dates that do not
// exist on the calendar.
func ParseJournalDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrValidation, s)
	}
	return t, nil
}

func FormatJournalDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Validationf builds an error that matches ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
