package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/diary-service/internal/domain"
	"github.com/ErlanBelekov/diary-service/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const diaryColumns = `id, user_id, title, content, journal_date, mood, created_at, updated_at`

// id DESC keeps the order total when two rows share both timestamps.
const diaryOrder = `ORDER BY journal_date DESC, created_at DESC, id DESC`

type DiaryRepository struct {
	pool *pgxpool.Pool
}

func NewDiaryRepository(pool *pgxpool.Pool) *DiaryRepository {
	return &DiaryRepository{pool: pool}
}

func (r *DiaryRepository) Create(ctx context.Context, d *domain.Diary) (*domain.Diary, error) {
	query := `
		INSERT INTO diaries (user_id, title, content, journal_date, mood)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + diaryColumns

	row := r.pool.QueryRow(ctx, query, d.UserID, d.Title, d.Content, d.JournalDate, d.Mood)
	created, err := scanDiary(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("insert diary: %w", err)
	}
	return created, nil
}

func (r *DiaryRepository) GetByID(ctx context.Context, id, userID int64) (*domain.Diary, error) {
	query := `SELECT ` + diaryColumns + ` FROM diaries WHERE id = $1 AND user_id = $2`
	return scanDiary(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *DiaryRepository) List(ctx context.Context, input repository.ListDiariesInput) ([]*domain.Diary, int, error) {
	where, args := listFilter(input)

	var total int
	countQuery := `SELECT COUNT(*) FROM diaries WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count diaries: %w", err)
	}

	args = append(args, input.Limit, input.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM diaries
		WHERE %s
		%s
		LIMIT $%d OFFSET $%d`,
		diaryColumns, where, diaryOrder, len(args)-1, len(args))

	diaries, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list diaries: %w", err)
	}
	return diaries, total, nil
}

func (r *DiaryRepository) ListAll(ctx context.Context, userID int64) ([]*domain.Diary, error) {
	query := `SELECT ` + diaryColumns + ` FROM diaries WHERE user_id = $1 ` + diaryOrder
	diaries, err := r.query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list all diaries: %w", err)
	}
	return diaries, nil
}

func (r *DiaryRepository) Update(ctx context.Context, id, userID int64, patch domain.DiaryPatch) (*domain.Diary, error) {
	set, args := updateSet(patch, id, userID)
	query := fmt.Sprintf(`
		UPDATE diaries
		SET    %s
		WHERE  id = $1 AND user_id = $2
		RETURNING %s`, set, diaryColumns)

	return scanDiary(r.pool.QueryRow(ctx, query, args...))
}

func (r *DiaryRepository) Delete(ctx context.Context, id, userID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM diaries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete diary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDiaryNotFound
	}
	return nil
}

func (r *DiaryRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Diary, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	diaries := make([]*domain.Diary, 0)
	for rows.Next() {
		d, err := scanDiary(rows)
		if err != nil {
			return nil, err
		}
		diaries = append(diaries, d)
	}
	return diaries, rows.Err()
}

// listFilter builds the WHERE clause shared by the page and count queries.
func listFilter(input repository.ListDiariesInput) (string, []any) {
	args := []any{input.UserID}
	where := []string{"user_id = $1"}

	if input.Keyword != "" {
		args = append(args, "%"+escapeLike(input.Keyword)+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR content ILIKE $%d)", len(args), len(args)))
	}
	if input.FromDate != nil {
		args = append(args, *input.FromDate)
		where = append(where, fmt.Sprintf("journal_date >= $%d", len(args)))
	}
	if input.ToDate != nil {
		args = append(args, *input.ToDate)
		where = append(where, fmt.Sprintf("journal_date <= $%d", len(args)))
	}
	return strings.Join(where, " AND "), args
}

// updateSet builds the SET list for a patch. $1 and $2 are reserved for id and user_id.
func updateSet(patch domain.DiaryPatch, id, userID int64) (string, []any) {
	args := []any{id, userID}
	var set []string

	if patch.Title != nil {
		args = append(args, *patch.Title)
		set = append(set, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Content != nil {
		args = append(args, *patch.Content)
		set = append(set, fmt.Sprintf("content = $%d", len(args)))
	}
	if patch.JournalDate != nil {
		args = append(args, *patch.JournalDate)
		set = append(set, fmt.Sprintf("journal_date = $%d", len(args)))
	}
	if patch.SetMood {
		args = append(args, patch.Mood)
		set = append(set, fmt.Sprintf("mood = $%d", len(args)))
	}
	set = append(set, "updated_at = clock_timestamp()")
	return strings.Join(set, ", "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDiary(row rowScanner) (*domain.Diary, error) {
	var d domain.Diary
	err := row.Scan(
		&d.ID, &d.UserID, &d.Title, &d.Content, &d.JournalDate, &d.Mood,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDiaryNotFound
		}
		return nil, fmt.Errorf("scan diary: %w", err)
	}
	return &d, nil
}
