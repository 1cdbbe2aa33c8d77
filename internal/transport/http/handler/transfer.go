package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/diary-service/internal/diarycsv"
	"github.com/ErlanBelekov/diary-service/internal/transport/http/middleware"
	"github.com/ErlanBelekov/diary-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

const (
	importFormField = "file"
	exportFilename  = "diaries.csv"

	// room for multipart boundaries and part headers around the file itself
	multipartOverhead = 64 << 10
)

type transferUsecaser interface {
	Export(ctx context.Context, userID int64) ([]byte, error)
	Import(ctx context.Context, userID int64, r io.Reader) (usecase.ImportResult, error)
}

type TransferHandler struct {
	transferUsecase transferUsecaser
	maxBytes        int64
	logger          *slog.Logger
}

func NewTransferHandler(transferUsecase transferUsecaser, maxBytes int64, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{
		transferUsecase: transferUsecase,
		maxBytes:        maxBytes,
		logger:          logger.With("component", "transfer_handler"),
	}
}

type importResponse struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// GET /diaries/export/csv
func (h *TransferHandler) Export(ctx *gin.Context) {
	body, err := h.transferUsecase.Export(ctx.Request.Context(), ctx.GetInt64(middleware.UserIDKey))
	if err != nil {
		respondError(ctx, h.logger, "export diaries", err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

// POST /diaries/import/csv (multipart, field "file")
// Rows are stored one by one; the response lists the rows that failed.
func (h *TransferHandler) Import(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, h.maxBytes+multipartOverhead)

	fh, err := ctx.FormFile(importFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": errFileTooLarge})
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errFileRequired})
		return
	}
	if fh.Size > h.maxBytes {
		ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": errFileTooLarge})
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(ctx, h.logger, "open upload", err)
		return
	}
	defer f.Close()

	res, err := h.transferUsecase.Import(ctx.Request.Context(), ctx.GetInt64(middleware.UserIDKey), f)
	if err != nil {
		if errors.Is(err, diarycsv.ErrMalformed) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errMalformedCSV, "detail": err.Error()})
			return
		}
		respondError(ctx, h.logger, "import diaries", err)
		return
	}

	ctx.JSON(http.StatusOK, importResponse{Imported: res.Imported, Errors: res.Errors})
}
