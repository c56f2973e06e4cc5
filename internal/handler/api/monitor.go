package api

import (
	"errors"
	"net/http"

	"RsiWatch/internal/domain/models"
	domrepo "RsiWatch/internal/domain/repository"
	"RsiWatch/internal/repository"
	"RsiWatch/internal/service/ratelimit"
	"RsiWatch/internal/usecase"
	xhttp "RsiWatch/pkg/http"
	applogger "RsiWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MonitorHandler exposes the alert surface, foreground refresh and cycle history.
type MonitorHandler struct {
	logger  *applogger.Logger
	engine  *usecase.MonitorEngine
	history domrepo.CycleHistory
	rl      *ratelimit.Limiter
}

func NewMonitorHandler(logger *applogger.Logger, engine *usecase.MonitorEngine, history domrepo.CycleHistory, rl *ratelimit.Limiter) *MonitorHandler {
	return &MonitorHandler{logger: logger, engine: engine, history: history, rl: rl}
}

func (h *MonitorHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/alerts", h.Alerts)
	g.POST("/cycles", h.RunCycle)
	g.GET("/cycles", h.Cycles)
}

type alertsResponse struct {
	models.AlertSurface
	AlertCount int    `json:"alert_count"`
	Message    string `json:"message"`
}

func (h *MonitorHandler) Alerts(c echo.Context) error {
	s := h.engine.Surface()
	msg := ""
	if !s.UpdatedAt.IsZero() {
		msg = repository.FormatAlertMessage(models.AlertEvent{AlertCount: len(s.AlertedNames), AlertedNames: s.AlertedNames})
	}
	return xhttp.SuccessResponse(c, alertsResponse{AlertSurface: s, AlertCount: len(s.AlertedNames), Message: msg})
}

// RunCycle is the foreground refresh. It supersedes any cycle in flight.
func (h *MonitorHandler) RunCycle(c echo.Context) error {
	if h.rl != nil && !h.rl.Allow(c.RealIP()) {
		h.logger.Warn("foreground refresh rate limited", applogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("refresh requested too often"))
	}

	report, err := h.engine.RunCycle(c.Request().Context())
	if err != nil {
		appErr := appError(err)
		var ae *xhttp.AppError
		if errors.As(appErr, &ae) && report != nil && len(report.Failed) > 0 {
			ae.WithParam("failed", report.Failed)
		}
		return xhttp.AppErrorResponse(c, appErr)
	}
	return xhttp.DataResponse(c, http.StatusOK, report)
}

func (h *MonitorHandler) Cycles(c echo.Context) error {
	req := &models.CyclesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	records, err := h.history.Recent(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("cycle history error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("cycle history unavailable").WithError(err))
	}
	return xhttp.ListResponse(c, records, int64(len(records)))
}
