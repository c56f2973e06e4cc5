package api

import (
	"context"
	"net/http"
	"time"

	xhttp "RsiWatch/pkg/http"

	"github.com/labstack/echo/v4"
)

// Pinger is a dependency checked by /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type directoryStatus interface {
	Loaded() bool
	Len() int
}

type HealthHandler struct {
	store Pinger
	dir   directoryStatus
}

func NewHealthHandler(store Pinger, dir directoryStatus) *HealthHandler {
	return &HealthHandler{store: store, dir: dir}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
}

func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	body := map[string]interface{}{
		"storage":   "ok",
		"directory": h.dir.Len(),
	}
	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		body["storage"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if !h.dir.Loaded() {
		status = http.StatusServiceUnavailable
	}
	return xhttp.DataResponse(c, status, body)
}
