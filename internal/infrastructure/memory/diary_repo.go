package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ErlanBelekov/diary-service/internal/domain"
	"github.com/ErlanBelekov/diary-service/internal/repository"
)

type diaryRow struct {
	userID      int64
	title       string
	content     string
	journalDate time.Time
	mood        *string
	createdAt   time.Time
	updatedAt   time.Time
}

type DiaryRepository struct {
	store *Store
}

func NewDiaryRepository(store *Store) *DiaryRepository {
	return &DiaryRepository{store: store}
}

func (r *DiaryRepository) Create(_ context.Context, d *domain.Diary) (*domain.Diary, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[d.UserID]; !ok {
		// mirrors the foreign key on diaries.user_id
		return nil, domain.ErrUserNotFound
	}

	now := s.now()
	id := s.id()
	s.diaries[id] = &diaryRow{
		userID:      d.UserID,
		title:       d.Title,
		content:     d.Content,
		journalDate: d.JournalDate,
		mood:        copyString(d.Mood),
		createdAt:   now,
		updatedAt:   now,
	}
	return toDiary(id, s.diaries[id]), nil
}

func (r *DiaryRepository) GetByID(_ context.Context, id, userID int64) (*domain.Diary, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.diaries[id]
	if !ok || row.userID != userID {
		return nil, domain.ErrDiaryNotFound
	}
	return toDiary(id, row), nil
}

func (r *DiaryRepository) List(_ context.Context, input repository.ListDiariesInput) ([]*domain.Diary, int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	keyword := strings.ToLower(input.Keyword)
	matched := make([]*domain.Diary, 0)
	for id, row := range s.diaries {
		if row.userID != input.UserID {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(row.title), keyword) &&
			!strings.Contains(strings.ToLower(row.content), keyword) {
			continue
		}
		if input.FromDate != nil && row.journalDate.Before(*input.FromDate) {
			continue
		}
		if input.ToDate != nil && row.journalDate.After(*input.ToDate) {
			continue
		}
		matched = append(matched, toDiary(id, row))
	}
	sortDiaries(matched)

	total := len(matched)
	start := min(input.Offset, total)
	end := min(start+input.Limit, total)
	return matched[start:end], total, nil
}

func (r *DiaryRepository) ListAll(_ context.Context, userID int64) ([]*domain.Diary, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Diary, 0)
	for id, row := range s.diaries {
		if row.userID == userID {
			all = append(all, toDiary(id, row))
		}
	}
	sortDiaries(all)
	return all, nil
}

func (r *DiaryRepository) Update(_ context.Context, id, userID int64, patch domain.DiaryPatch) (*domain.Diary, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.diaries[id]
	if !ok || row.userID != userID {
		return nil, domain.ErrDiaryNotFound
	}
	if patch.Title != nil {
		row.title = *patch.Title
	}
	if patch.Content != nil {
		row.content = *patch.Content
	}
	if patch.JournalDate != nil {
		row.journalDate = *patch.JournalDate
	}
	if patch.SetMood {
		row.mood = copyString(patch.Mood)
	}
	row.updatedAt = s.now()
	return toDiary(id, row), nil
}

func (r *DiaryRepository) Delete(_ context.Context, id, userID int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.diaries[id]
	if !ok || row.userID != userID {
		return domain.ErrDiaryNotFound
	}
	delete(s.diaries, id)
	return nil
}

// sortDiaries orders by journal date, then creation time, then id, all descending.
func sortDiaries(ds []*domain.Diary) {
	sort.Slice(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if !a.JournalDate.Equal(b.JournalDate) {
			return a.JournalDate.After(b.JournalDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

func toDiary(id int64, row *diaryRow) *domain.Diary {
	return &domain.Diary{
		ID:          id,
		UserID:      row.userID,
		Title:       row.title,
		Content:     row.content,
		JournalDate: row.journalDate,
		Mood:        copyString(row.mood),
		CreatedAt:   row.createdAt,
		UpdatedAt:   row.updatedAt,
	}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
