package api

import (
	"net/url"

	"RsiWatch/internal/domain/models"
	"RsiWatch/internal/usecase"
	xhttp "RsiWatch/pkg/http"
	applogger "RsiWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

// WatchlistHandler serves the watchlist commands and symbol lookups.
type WatchlistHandler struct {
	logger *applogger.Logger
	uc     *usecase.WatchlistUseCase
	engine *usecase.MonitorEngine
}

func NewWatchlistHandler(logger *applogger.Logger, uc *usecase.WatchlistUseCase, engine *usecase.MonitorEngine) *WatchlistHandler {
	return &WatchlistHandler{logger: logger, uc: uc, engine: engine}
}

func (h *WatchlistHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/watchlist", h.List)
	g.POST("/watchlist", h.Add)
	g.PUT("/watchlist/order", h.Reorder)
	g.GET("/watchlist/stream", h.Stream)
	g.DELETE("/watchlist/:symbol", h.Delete)
	g.GET("/symbols/search", h.Search)
	g.GET("/symbols/validate", h.Validate)
}

func (h *WatchlistHandler) List(c echo.Context) error {
	rows, err := h.uc.Rows(c.Request().Context())
	if err != nil {
		h.logger.Error("watchlist rows error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *WatchlistHandler) Add(c echo.Context) error {
	req := &models.AddSymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	symbol, err := h.uc.AddSymbol(c.Request().Context(), req.Query)
	if err != nil {
		if models.KindOf(err) != models.KindResolution {
			h.logger.Error("add symbol error", applogger.String("query", req.Query), applogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.CreatedResponse(c, map[string]string{"symbol": symbol})
}

func (h *WatchlistHandler) Delete(c echo.Context) error {
	raw := c.Param("symbol")
	symbol, err := url.PathUnescape(raw)
	if err != nil {
		symbol = raw
	}
	if err := h.uc.DeleteSymbol(c.Request().Context(), symbol); err != nil {
		h.logger.Error("delete symbol error", applogger.String("symbol", symbol), applogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.NoContentResponse(c)
}

func (h *WatchlistHandler) Reorder(c echo.Context) error {
	req := &models.ReorderRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()
	if err := h.uc.Reorder(ctx, req.Names); err != nil {
		return xhttp.AppErrorResponse(c, appError(err))
	}
	rows, err := h.uc.Rows(ctx)
	if err != nil {
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *WatchlistHandler) Search(c echo.Context) error {
	req := &models.SearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res := h.uc.Search(req.Query, req.Limit)
	return xhttp.ListResponse(c, res, int64(len(res)))
}

func (h *WatchlistHandler) Validate(c echo.Context) error {
	req := &models.ValidateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"query": req.Query,
		"valid": h.uc.IsValidSymbol(req.Query),
	})
}
