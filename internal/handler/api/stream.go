package api

import (
	"context"
	"net/http"
	"time"

	"RsiWatch/internal/domain/models"
	applogger "RsiWatch/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 90 * time.Second
	wsPingPeriod = 45 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type streamMessage struct {
	Type   string                `json:"type"`
	Rows   []models.WatchlistRow `json:"rows"`
	Alerts models.AlertSurface   `json:"alerts"`
}

// Stream pushes the watchlist rows, with the current alert surface, after every
// watchlist change and every committed cycle.
func (h *WatchlistHandler) Stream(c echo.Context) error {
	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already replied
		h.logger.Warn("websocket upgrade failed", applogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rows, err := h.uc.ObserveRows(ctx)
	if err != nil {
		h.logger.Error("observe rows error", applogger.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "watchlist unavailable"),
			time.Now().Add(wsWriteWait))
		return nil
	}

	// reader: only needed for pongs and to notice the client going away
	go func() {
		defer cancel()
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case r, ok := <-rows:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			msg := streamMessage{Type: "rows", Rows: r, Alerts: h.engine.Surface()}
			if err := conn.WriteJSON(msg); err != nil {
				return nil
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}
