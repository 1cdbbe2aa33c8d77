package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ErlanBelekov/diary-service/internal/domain"
	"github.com/ErlanBelekov/diary-service/internal/transport/http/middleware"
	"github.com/ErlanBelekov/diary-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

type diaryUsecaser interface {
	Create(ctx context.Context, input usecase.CreateDiaryInput) (*domain.Diary, error)
	List(ctx context.Context, input usecase.ListDiariesInput) (usecase.ListDiariesResult, error)
	Get(ctx context.Context, id, userID int64) (*domain.Diary, error)
	Update(ctx context.Context, input usecase.UpdateDiaryInput) (*domain.Diary, error)
	Delete(ctx context.Context, id, userID int64) error
}

type DiaryHandler struct {
	diaryUsecase diaryUsecaser
	logger       *slog.Logger
}

func NewDiaryHandler(diaryUsecase diaryUsecaser, logger *slog.Logger) *DiaryHandler {
	return &DiaryHandler{diaryUsecase: diaryUsecase, logger: logger.With("component", "diary_handler")}
}

type createDiaryRequest struct {
	Title       string  `json:"title"       binding:"required,max=200"`
	Content     string  `json:"content"     binding:"required"`
	JournalDate string  `json:"journalDate" binding:"required,datetime=2006-01-02"`
	Mood        *string `json:"mood"        binding:"omitempty,max=50"`
}

// patchDiaryRequest distinguishes a missing key from an explicit null.
type patchDiaryRequest struct {
	Title       domain.Field[string] `json:"title"`
	Content     domain.Field[string] `json:"content"`
	JournalDate domain.Field[string] `json:"journalDate"`
	Mood        domain.Field[string] `json:"mood"`
}

type listDiariesQuery struct {
	Page     *int   `form:"page"`
	Limit    *int   `form:"limit"`
	Keyword  string `form:"keyword"`
	FromDate string `form:"fromDate"`
	ToDate   string `form:"toDate"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

type diaryResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	JournalDate string    `json:"journalDate"`
	Mood        *string   `json:"mood"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type listDiariesResponse struct {
	Items []diaryResponse `json:"items"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func toDiaryResponse(d *domain.Diary) diaryResponse {
	return diaryResponse{
		ID:          d.ID,
		Title:       d.Title,
		Content:     d.Content,
		JournalDate: domain.FormatJournalDate(d.JournalDate),
		Mood:        d.Mood,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// POST /diaries
func (h *DiaryHandler) Create(ctx *gin.Context) {
	var req createDiaryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.diaryUsecase.Create(ctx.Request.Context(), usecase.CreateDiaryInput{
		UserID:      ctx.GetInt64(middleware.UserIDKey),
		Title:       req.Title,
		Content:     req.Content,
		JournalDate: req.JournalDate,
		Mood:        req.Mood,
	})
	if err != nil {
		respondError(ctx, h.logger, "create diary", err)
		return
	}

	ctx.JSON(http.StatusCreated, idResponse{ID: d.ID})
}

// GET /diaries?page=&limit=&keyword=&fromDate=&toDate=
func (h *DiaryHandler) List(ctx *gin.Context) {
	var q listDiariesQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.diaryUsecase.List(ctx.Request.Context(), usecase.ListDiariesInput{
		UserID:   ctx.GetInt64(middleware.UserIDKey),
		Page:     q.Page,
		Limit:    q.Limit,
		Keyword:  q.Keyword,
		FromDate: q.FromDate,
		ToDate:   q.ToDate,
	})
	if err != nil {
		respondError(ctx, h.logger, "list diaries", err)
		return
	}

	items := make([]diaryResponse, 0, len(res.Items))
	for _, d := range res.Items {
		items = append(items, toDiaryResponse(d))
	}
	ctx.JSON(http.StatusOK, listDiariesResponse{Items: items, Total: res.Total, Page: res.Page, Limit: res.Limit})
}

// GET /diaries/:id
func (h *DiaryHandler) GetByID(ctx *gin.Context) {
	id, ok := diaryID(ctx)
	if !ok {
		return
	}

	d, err := h.diaryUsecase.Get(ctx.Request.Context(), id, ctx.GetInt64(middleware.UserIDKey))
	if err != nil {
		respondError(ctx, h.logger, "get diary", err)
		return
	}

	ctx.JSON(http.StatusOK, toDiaryResponse(d))
}

// PUT /diaries/:id
// Replaces every field. An omitted mood clears it.
func (h *DiaryHandler) Replace(ctx *gin.Context) {
	id, ok := diaryID(ctx)
	if !ok {
		return
	}

	var req createDiaryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.update(ctx, usecase.UpdateDiaryInput{
		UserID:      ctx.GetInt64(middleware.UserIDKey),
		ID:          id,
		Title:       domain.Field[string]{Set: true, Value: &req.Title},
		Content:     domain.Field[string]{Set: true, Value: &req.Content},
		JournalDate: domain.Field[string]{Set: true, Value: &req.JournalDate},
		Mood:        domain.Field[string]{Set: true, Value: req.Mood},
	})
}

// PATCH /diaries/:id
// Only keys present in the body change. "mood": null clears the mood.
func (h *DiaryHandler) Patch(ctx *gin.Context) {
	id, ok := diaryID(ctx)
	if !ok {
		return
	}

	var req patchDiaryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.update(ctx, usecase.UpdateDiaryInput{
		UserID:      ctx.GetInt64(middleware.UserIDKey),
		ID:          id,
		Title:       req.Title,
		Content:     req.Content,
		JournalDate: req.JournalDate,
		Mood:        req.Mood,
	})
}

func (h *DiaryHandler) update(ctx *gin.Context, input usecase.UpdateDiaryInput) {
	d, err := h.diaryUsecase.Update(ctx.Request.Context(), input)
	if err != nil {
		respondError(ctx, h.logger, "update diary", err)
		return
	}
	ctx.JSON(http.StatusOK, idResponse{ID: d.ID})
}

// DELETE /diaries/:id
func (h *DiaryHandler) Delete(ctx *gin.Context) {
	id, ok := diaryID(ctx)
	if !ok {
		return
	}

	if err := h.diaryUsecase.Delete(ctx.Request.Context(), id, ctx.GetInt64(middleware.UserIDKey)); err != nil {
		respondError(ctx, h.logger, "delete diary", err)
		return
	}

	ctx.JSON(http.StatusOK, idResponse{ID: id})
}

// diaryID parses :id. A malformed id is reported like a missing diary.
func diaryID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": errDiaryNotFound})
		return 0, false
	}
	return id, true
}
