package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/switchboard/pkg/device"
)

const (
	socketWriteWait = 10 * time.Second
	heartbeat       = 30 * time.Second
)

// SocketHandler serves the push channel
type SocketHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewSocketHandler creates a new push channel handler
func NewSocketHandler(hub *Hub) *SocketHandler {
	return &SocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			// Panels on the LAN connect from arbitrary origins
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws
// @Summary      Push channel
// @Description  WebSocket carrying device_changed notifications; clients may send set_device frames
// @Tags         push
// @Success      101  {string}  string  "Switching Protocols"
// @Router       /ws [get]
func (h *SocketHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Socket upgrade failed")
		return
	}

	logger := log.With().Str("socket", uuid.NewString()).Str("client_ip", c.ClientIP()).Logger()

	events := h.hub.Subscribe()
	logger.Info().Int("sockets", h.hub.Len()).Msg("Socket connected")

	done := make(chan struct{})
	go h.readLoop(conn, events, done, logger)
	h.writeLoop(conn, events, done)

	h.hub.Unsubscribe(events)
	logger.Info().Msg("Socket disconnected")
}

// readLoop rebroadcasts set_device notifications to the other sockets.
func (h *SocketHandler) readLoop(conn *websocket.Conn, events chan device.Event, done chan struct{}, logger zerolog.Logger) {
	defer close(done)

	for {
		var evt device.Event
		if err := conn.ReadJSON(&evt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug().Err(err).Msg("Socket read ended")
			}
			return
		}

		if evt.Event != device.EventSetDevice {
			continue
		}
		status := evt.Status != nil && *evt.Status
		logger.Info().Str("device", evt.Name).Bool("status", status).Msg("Peer toggle notification")
		h.hub.BroadcastExcept(device.Event{Event: device.EventDeviceChanged}, events)
	}
}

func (h *SocketHandler) writeLoop(conn *websocket.Conn, events chan device.Event, done chan struct{}) {
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()
	defer func() { _ = conn.Close() }()

	for {
		select {
		case <-done:
			return

		case evt := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(socketWriteWait)); err != nil {
				return
			}
		}
	}
}
