package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ErlanBelekov/diary-service/internal/domain"
	"github.com/ErlanBelekov/diary-service/internal/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type DiaryUsecase struct {
	repo repository.DiaryRepository
}

func NewDiaryUsecase(repo repository.DiaryRepository) *DiaryUsecase {
	return &DiaryUsecase{repo: repo}
}

type CreateDiaryInput struct {
	UserID      int64
	Title       string
	Content     string
	JournalDate string // YYYY-MM-DD
	Mood        *string
}

func (u *DiaryUsecase) Create(ctx context.Context, input CreateDiaryInput) (*domain.Diary, error) {
	title := normalizeNewlines(input.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	content := normalizeNewlines(input.Content)
	if err := validateContent(content); err != nil {
		return nil, err
	}
	journalDate, err := domain.ParseJournalDate(input.JournalDate)
	if err != nil {
		return nil, err
	}
	mood, err := normalizeMood(input.Mood)
	if err != nil {
		return nil, err
	}

	created, err := u.repo.Create(ctx, &domain.Diary{
		UserID:      input.UserID,
		Title:       title,
		Content:     content,
		JournalDate: journalDate,
		Mood:        mood,
	})
	if err != nil {
		return nil, fmt.Errorf("create diary: %w", err)
	}
	return created, nil
}

type ListDiariesInput struct {
	UserID   int64
	Page     *int // nil = first page
	Limit    *int // nil = default page size
	Keyword  string
	FromDate string // YYYY-MM-DD, empty = unbounded
	ToDate   string
}

type ListDiariesResult struct {
	Items []*domain.Diary
	Total int
	Page  int
	Limit int
}

// NormalizePage floors the page number at 1.
func NormalizePage(page *int) int {
	if page == nil {
		return defaultPage
	}
	return max(*page, 1)
}

// NormalizeLimit applies the default page size and clamps into [1, 100].
func NormalizeLimit(limit *int) int {
	if limit == nil {
		return defaultLimit
	}
	return min(max(*limit, 1), maxLimit)
}

func (u *DiaryUsecase) List(ctx context.Context, input ListDiariesInput) (ListDiariesResult, error) {
	page := NormalizePage(input.Page)
	limit := NormalizeLimit(input.Limit)

	repoInput := repository.ListDiariesInput{
		UserID:  input.UserID,
		Keyword: input.Keyword,
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}

	if input.FromDate != "" {
		from, err := domain.ParseJournalDate(input.FromDate)
		if err != nil {
			return ListDiariesResult{}, err
		}
		repoInput.FromDate = &from
	}
	if input.ToDate != "" {
		to, err := domain.ParseJournalDate(input.ToDate)
		if err != nil {
			return ListDiariesResult{}, err
		}
		repoInput.ToDate = &to
	}

	items, total, err := u.repo.List(ctx, repoInput)
	if err != nil {
		return ListDiariesResult{}, fmt.Errorf("list diaries: %w", err)
	}
	return ListDiariesResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (u *DiaryUsecase) Get(ctx context.Context, id, userID int64) (*domain.Diary, error) {
	d, err := u.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get diary: %w", err)
	}
	return d, nil
}

// UpdateDiaryInput carries a partial update. Only fields with Set applied.
type UpdateDiaryInput struct {
	UserID      int64
	ID          int64
	Title       domain.Field[string]
	Content     domain.Field[string]
	JournalDate domain.Field[string]
	Mood        domain.Field[string] // present null or "" clears the mood
}

func (u *DiaryUsecase) Update(ctx context.Context, input UpdateDiaryInput) (*domain.Diary, error) {
	var patch domain.DiaryPatch

	if input.Title.Set {
		title := normalizeNewlines(deref(input.Title.Value))
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if input.Content.Set {
		content := normalizeNewlines(deref(input.Content.Value))
		if err := validateContent(content); err != nil {
			return nil, err
		}
		patch.Content = &content
	}
	if input.JournalDate.Set {
		d, err := domain.ParseJournalDate(deref(input.JournalDate.Value))
		if err != nil {
			return nil, err
		}
		patch.JournalDate = &d
	}
	if input.Mood.Set {
		mood, err := normalizeMood(input.Mood.Value)
		if err != nil {
			return nil, err
		}
		patch.SetMood = true
		patch.Mood = mood
	}

	d, err := u.repo.Update(ctx, input.ID, input.UserID, patch)
	if err != nil {
		return nil, fmt.Errorf("update diary: %w", err)
	}
	return d, nil
}

func (u *DiaryUsecase) Delete(ctx context.Context, id, userID int64) error {
	if err := u.repo.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("delete diary: %w", err)
	}
	return nil
}

// ListAll returns every diary of the owner, newest journal date first.
func (u *DiaryUsecase) ListAll(ctx context.Context, userID int64) ([]*domain.Diary, error) {
	ds, err := u.repo.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list all diaries: %w", err)
	}
	return ds, nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return domain.Validationf("title must not be empty")
	}
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return domain.Validationf("title must be at most %d characters", domain.MaxTitleLength)
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return domain.Validationf("content must not be empty")
	}
	return nil
}

// normalizeNewlines stores CRLF line breaks as LF. CSV readers drop the CR
// of a CRLF pair even inside quoted fields, so a CRLF would not survive export.
func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func normalizeMood(mood *string) (*string, error) {
	if mood == nil || *mood == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(*mood) > domain.MaxMoodLength {
		return nil, domain.Validationf("mood must be at most %d characters", domain.MaxMoodLength)
	}
	m := *mood
	return &m, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
