package handler

import (
	"context"
	"net/http"

	"github.com/ErlanBelekov/diary-service/internal/health"
	"github.com/gin-gonic/gin"
)

type healthChecker interface {
	Liveness(ctx context.Context) health.HealthResult
	Readiness(ctx context.Context) health.HealthResult
}

type HealthHandler struct {
	checker healthChecker
}

func NewHealthHandler(checker healthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// GET /healthz
func (h *HealthHandler) Liveness(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.checker.Liveness(ctx.Request.Context()))
}

// GET /readyz
func (h *HealthHandler) Readiness(ctx *gin.Context) {
	res := h.checker.Readiness(ctx.Request.Context())
	status := http.StatusOK
	if res.Status != "up" {
		status = http.StatusServiceUnavailable
	}
	ctx.JSON(status, res)
}
