package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"fronteira/internal/model"
	"fronteira/internal/service"
	"fronteira/internal/tracking"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// TrackingHandler handles driver position reports and live tracking
// subscriptions.
type TrackingHandler struct {
	service  service.TrackingService
	hub      *tracking.Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewTrackingHandler creates a new tracking handler.
func NewTrackingHandler(service service.TrackingService, hub *tracking.Hub, logger zerolog.Logger) *TrackingHandler {
	return &TrackingHandler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Tracking pages are served from a separate storefront origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With().Str("handler", "tracking").Logger(),
	}
}

// ReportPosition handles POST /api/drivers/{id}/location requests. It returns
// the per-delivery updates that were fanned out, so the driver app can show
// distance and ETA without a second round trip.
func (h *TrackingHandler) ReportPosition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	driverID, ok := parseIDSegment(w, r, "/api/drivers/", h.logger)
	if !ok {
		return
	}

	var report model.LocationReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	updates, err := h.service.ReportPosition(r.Context(), driverID, report)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if updates == nil {
		updates = []model.PositionUpdate{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"updates": updates,
	})
}

// Track handles GET /api/deliveries/{id}/track requests. It upgrades the
// connection to a websocket and relays position updates for the delivery
// until the client disconnects.
func (h *TrackingHandler) Track(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	deliveryID, ok := parseIDSegment(w, r, "/api/deliveries/", h.logger)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		h.logger.Warn().Err(err).Str("delivery_id", deliveryID.String()).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Clear the server read deadline inherited from the upgrade; the socket
	// stays open for the whole delivery.
	conn.SetReadDeadline(time.Time{})

	updates, cancel := h.hub.Subscribe(deliveryID)
	defer cancel()

	h.logger.Debug().Str("delivery_id", deliveryID.String()).Msg("tracking subscriber connected")

	// Drain incoming frames so close messages are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
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
		case update, open := <-updates:
			if !open {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(update); err != nil {
				h.logger.Debug().Err(err).Str("delivery_id", deliveryID.String()).Msg("tracking subscriber dropped")
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
