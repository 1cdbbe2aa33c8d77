package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/diary-service/internal/domain"
)

type ListDiariesInput struct {
	UserID   int64
	Keyword  string     // empty = no keyword filter
	FromDate *time.Time // inclusive
	ToDate   *time.Time // inclusive
	Limit    int
	Offset   int
}

// DiaryRepository stores diaries. Every method is scoped to the owner: a
// diary that exists but belongs to someone else is reported exactly like a
// missing one, with domain.ErrDiaryNotFound.
type DiaryRepository interface {
	Create(ctx context.Context, d *domain.Diary) (*domain.Diary, error)
	GetByID(ctx context.Context, id, userID int64) (*domain.Diary, error)

	// List returns one page ordered by journal_date DESC, created_at DESC
	// together with the number of rows matching the filters.
	List(ctx context.Context, input ListDiariesInput) ([]*domain.Diary, int, error)

	// ListAll returns every diary of the owner in List order. Used by export.
	ListAll(ctx context.Context, userID int64) ([]*domain.Diary, error)

	Update(ctx context.Context, id, userID int64, patch domain.DiaryPatch) (*domain.Diary, error)
	Delete(ctx context.Context, id, userID int64) error
}
