package handler_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/diary-service/internal/diarycsv"
	"github.com/ErlanBelekov/diary-service/internal/domain"
	"github.com/ErlanBelekov/diary-service/internal/transport/http/handler"
	"github.com/ErlanBelekov/diary-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

type fakeDiaryUsecase struct {
	create func(ctx context.Context, input usecase.CreateDiaryInput) (*domain.Diary, error)
	list   func(ctx context.Context, input usecase.ListDiariesInput) (usecase.ListDiariesResult, error)
	get    func(ctx context.Context, id, userID int64) (*domain.Diary, error)
	update func(ctx context.Context, input usecase.UpdateDiaryInput) (*domain.Diary, error)
	delete func(ctx context.Context, id, userID int64) error
}

func (f *fakeDiaryUsecase) Create(ctx context.Context, input usecase.CreateDiaryInput) (*domain.Diary, error) {
	return f.create(ctx, input)
}

func (f *fakeDiaryUsecase) List(ctx context.Context, input usecase.ListDiariesInput) (usecase.ListDiariesResult, error) {
	return f.list(ctx, input)
}

func (f *fakeDiaryUsecase) Get(ctx context.Context, id, userID int64) (*domain.Diary, error) {
	return f.get(ctx, id, userID)
}

func (f *fakeDiaryUsecase) Update(ctx context.Context, input usecase.UpdateDiaryInput) (*domain.Diary, error) {
	return f.update(ctx, input)
}

func (f *fakeDiaryUsecase) Delete(ctx context.Context, id, userID int64) error {
	return f.delete(ctx, id, userID)
}

func newDiaryEngine(uc *fakeDiaryUsecase) *gin.Engine {
	h := handler.NewDiaryHandler(uc, discardLogger)

	r := gin.New()
	g := r.Group("/diaries", withIdentity(7))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Replace)
	g.PATCH("/:id", h.Patch)
	g.DELETE("/:id", h.Delete)
	return r
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

var sampleDiary = &domain.Diary{
	ID: 11, UserID: 7, Title: "t", Content: "c",
	JournalDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	CreatedAt:   time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
	UpdatedAt:   time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
}

// ---- Create ----

func TestCreateDiary_PassesCallerAndReturns201(t *testing.T) {
	var got usecase.CreateDiaryInput
	uc := &fakeDiaryUsecase{
		create: func(_ context.Context, input usecase.CreateDiaryInput) (*domain.Diary, error) {
			got = input
			return sampleDiary, nil
		},
	}
	w := httptest.NewRecorder()
	newDiaryEngine(uc).ServeHTTP(w, jsonRequest(http.MethodPost, "/diaries",
		`{"title":"t","content":"c","journalDate":"2025-04-01","mood":"ok"}`))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if w.Body.String() != `{"id":11}` {
		t.Errorf("body = %s", w.Body.String())
	}
	if got.UserID != 7 || got.JournalDate != "2025-04-01" || got.Mood == nil || *got.Mood != "ok" {
		t.Errorf("input = %+v", got)
	}
}

func TestCreateDiary_BadDate_Returns400(t *testing.T) {
	w := httptest.NewRecorder()
	newDiaryEngine(&fakeDiaryUsecase{}).ServeHTTP(w, jsonRequest(http.MethodPost, "/diaries",
		`{"title":"t","content":"c","journalDate":"April 1"}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateDiary_MissingContent_Returns400(t *testing.T) {
	w := httptest.NewRecorder()
	newDiaryEngine(&fakeDiaryUsecase{}).ServeHTTP(w, jsonRequest(http.MethodPost, "/diaries",
		`{"title":"t","journalDate":"2025-04-01"}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ---- List ----

func TestListDiaries_ForwardsQuery(t *testing.T) {
	var got usecase.ListDiariesInput
	uc := &fakeDiaryUsecase{
		list: func(_ context.Context, input usecase.ListDiariesInput) (usecase.ListDiariesResult, error) {
			got = input
			return usecase.ListDiariesResult{Items: []*domain.Diary{sampleDiary}, Total: 1, Page: 2, Limit: 5}, nil
		},
	}
	w := httptest.NewRecorder()
	newDiaryEngine(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/diaries?page=2&limit=5&keyword=sun&fromDate=2025-01-01&toDate=2025-12-31", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got.Page == nil || *got.Page != 2 || got.Limit == nil || *got.Limit != 5 {
		t.Errorf("page/limit = %v/%v", got.Page, got.Limit)
	}
	if got.Keyword != "sun" || got.FromDate != "2025-01-01" || got.ToDate != "2025-12-31" || got.UserID != 7 {
		t.Errorf("input = %+v", got)
	}
	want := `{"items":[{"id":11,"title":"t","content":"c","journalDate":"2025-04-01","mood":null,` +
		`"createdAt":"2025-04-01T09:00:00Z","updatedAt":"2025-04-01T09:00:00Z"}],"total":1,"page":2,"limit":5}`
	if w.Body.String() != want {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestListDiaries_OmittedLimitIsNil(t *testing.T) {
	var got usecase.ListDiariesInput
	uc := &fakeDiaryUsecase{
		list: func(_ context.Context, input usecase.ListDiariesInput) (usecase.ListDiariesResult, error) {
			got = input
			return usecase.ListDiariesResult{Page: 1, Limit: 10}, nil
		},
	}
	w := httptest.NewRecorder()
	newDiaryEngine(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diaries", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got.Page != nil || got.Limit != nil {
		t.Errorf("page/limit = %v/%v, want nil/nil", got.Page, got.Limit)
	}
	if !strings.Contains(w.Body.String(), `"items":[]`) {
		t.Errorf("empty list must encode as []: %s", w.Body.String())
	}
}

func TestListDiaries_ValidationError_Returns400(t *testing.T) {
	uc := &fakeDiaryUsecase{
		list: func(_ context.Context, _ usecase.ListDiariesInput) (usecase.ListDiariesResult, error) {
			return usecase.ListDiariesResult{}, domain.Validationf("bad date")
		},
	}
	w := httptest.NewRecorder()
	newDiaryEngine(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diaries?fromDate=x", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ---- Get / Update / Delete ----

func TestGetDiary_NonNumericID_Returns404(t *testing.T) {
	w := httptest.NewRecorder()
	newDiaryEngine(&fakeDiaryUsecase{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diaries/abc", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Diary not found") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGetDiary_NotFound_Returns404(t *testing.T) {
	uc := &fakeDiaryUsecase{
		get: func(_ context.Context, _, _ int64) (*domain.Diary, error) {
			return nil, domain.ErrDiaryNotFound
		},
	}
	w := httptest.NewRecorder()
	newDiaryEngine(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diaries/99", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetDiary_InternalError_Returns500(t *testing.T) {
	uc := &fakeDiaryUsecase{
		get: func(_ context.Context, _, _ int64) (*domain.Diary, error) {
			return nil, errors.New("db down")
		},
	}
	w := httptest.NewRecorder()
	newDiaryEngine(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diaries/1", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "db down") {
		t.Error("internal error leaked to the client")
	}
}

func TestPatchDiary_OnlyPresentKeys(t *testing.T) {
	var got usecase.UpdateDiaryInput
	uc := &fakeDiaryUsecase{
		update: func(_ context.Context, input usecase.UpdateDiaryInput) (*domain.Diary, error) {
			got = input
			return sampleDiary, nil
		},
	}
	w := httptest.NewRecorder()
	newDiaryEngine(uc).ServeHTTP(w, jsonRequest(http.MethodPatch, "/diaries/11", `{"content":"new","mood":null}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got.ID != 11 || got.UserID != 7 {
		t.Errorf("id/user = %d/%d", got.ID, got.UserID)
	}
	if got.Title.Set || got.JournalDate.Set {
		t.Error("absent keys must not be set")
	}
	if !got.Content.Set || *got.Content.Value != "new" {
		t.Errorf("content = %+v", got.Content)
	}
	if !got.Mood.Set || got.Mood.Value != nil {
		t.Errorf("mood = %+v, want present null", got.Mood)
	}
}

func TestReplaceDiary_SetsEveryField(t *testing.T) {
	var got usecase.UpdateDiaryInput
	uc := &fakeDiaryUsecase{
		update: func(_ context.Context, input usecase.UpdateDiaryInput) (*domain.Diary, error) {
			got = input
			return sampleDiary, nil
		},
	}
	w := httptest.NewRecorder()
	newDiaryEngine(uc).ServeHTTP(w, jsonRequest(http.MethodPut, "/diaries/11",
		`{"title":"t2","content":"c2","journalDate":"2025-05-05"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !got.Title.Set || !got.Content.Set || !got.JournalDate.Set || !got.Mood.Set {
		t.Errorf("PUT must set every field: %+v", got)
	}
	if got.Mood.Value != nil {
		t.Error("omitted mood must clear it on PUT")
	}
}

func TestDeleteDiary_ReturnsID(t *testing.T) {
	uc := &fakeDiaryUsecase{
		delete: func(_ context.Context, id, userID int64) error {
			if userID != 7 {
				return domain.ErrDiaryNotFound
			}
			return nil
		},
	}
	w := httptest.NewRecorder()
	newDiaryEngine(uc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/diaries/11", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != `{"id":11}` {
		t.Errorf("body = %s", w.Body.String())
	}
}

// ---- Transfer ----

type fakeTransferUsecase struct {
	export func(ctx context.Context, userID int64) ([]byte, error)
	imp    func(ctx context.Context, userID int64, r io.Reader) (usecase.ImportResult, error)
}

func (f *fakeTransferUsecase) Export(ctx context.Context, userID int64) ([]byte, error) {
	return f.export(ctx, userID)
}

func (f *fakeTransferUsecase) Import(ctx context.Context, userID int64, r io.Reader) (usecase.ImportResult, error) {
	return f.imp(ctx, userID, r)
}

func newTransferEngine(uc *fakeTransferUsecase, maxBytes int64) *gin.Engine {
	h := handler.NewTransferHandler(uc, maxBytes, discardLogger)

	r := gin.New()
	r.GET("/diaries/export/csv", withIdentity(7), h.Export)
	r.POST("/diaries/import/csv", withIdentity(7), h.Import)
	return r
}

func multipartUpload(t *testing.T, field, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, "diaries.csv")
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/diaries/import/csv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestExport_SetsDownloadHeaders(t *testing.T) {
	uc := &fakeTransferUsecase{
		export: func(_ context.Context, _ int64) ([]byte, error) { return []byte("ID,Title\n"), nil },
	}
	w := httptest.NewRecorder()
	newTransferEngine(uc, 1<<20).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diaries/export/csv", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "text/csv; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="diaries.csv"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if w.Body.String() != "ID,Title\n" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestImport_MissingFile_Returns400(t *testing.T) {
	w := httptest.NewRecorder()
	newTransferEngine(&fakeTransferUsecase{}, 1<<20).ServeHTTP(w, multipartUpload(t, "other", "x"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestImport_TooLarge_Returns413(t *testing.T) {
	w := httptest.NewRecorder()
	newTransferEngine(&fakeTransferUsecase{}, 16).ServeHTTP(w,
		multipartUpload(t, "file", strings.Repeat("a", 1024)))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
}

func TestImport_Malformed_Returns400(t *testing.T) {
	uc := &fakeTransferUsecase{
		imp: func(_ context.Context, _ int64, _ io.Reader) (usecase.ImportResult, error) {
			return usecase.ImportResult{}, diarycsv.ErrMalformed
		},
	}
	w := httptest.NewRecorder()
	newTransferEngine(uc, 1<<20).ServeHTTP(w, multipartUpload(t, "file", `"`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestImport_PartialFailureIsStill200(t *testing.T) {
	var uploaded string
	uc := &fakeTransferUsecase{
		imp: func(_ context.Context, userID int64, r io.Reader) (usecase.ImportResult, error) {
			b, _ := io.ReadAll(r)
			uploaded = string(b)
			return usecase.ImportResult{Imported: 4, Errors: []string{"line 4: missing required field(s): title, content, journal date"}}, nil
		},
	}
	w := httptest.NewRecorder()
	newTransferEngine(uc, 1<<20).ServeHTTP(w, multipartUpload(t, "file", "Title,Content\n"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if uploaded != "Title,Content\n" {
		t.Errorf("uploaded = %q", uploaded)
	}
	want := `{"imported":4,"errors":["line 4: missing required field(s): title, content, journal date"]}`
	if w.Body.String() != want {
		t.Errorf("body = %s", w.Body.String())
	}
}
