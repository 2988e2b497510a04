package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"messaging-service/internal/identity"
	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/presence"
	"messaging-service/internal/repositories"
)

const wsEventsRoutingKey = "ws_events.messaging"

// SocketHandler owns the lifecycle of each live connection: handshake,
// session binding, presence, the per-connection read loop, and cleanup.
type SocketHandler struct {
	hub        *Hub
	dispatcher *Dispatcher
	verifier   identity.Verifier
	users      repositories.UserRepository
	presence   *presence.Tracker
	log        zerolog.Logger
}

// NewSocketHandler constructs a SocketHandler.
func NewSocketHandler(hub *Hub, dispatcher *Dispatcher, verifier identity.Verifier, users repositories.UserRepository, tracker *presence.Tracker, logger zerolog.Logger) *SocketHandler {
	return &SocketHandler{
		hub:        hub,
		dispatcher: dispatcher,
		verifier:   verifier,
		users:      users,
		presence:   tracker,
		log:        logger.With().Str("component", "socket").Logger(),
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates the handshake, upgrades the connection, and runs the
// read loop. An absent or invalid credential terminates the connection before
// the upgrade, with no events emitted.
func (h *SocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("messaging-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c)
	subject, err := h.verifier.Verify(ctx, token)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetBySubject(ctx, subject)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      user.ID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.Bind(conn, info)

	if err := h.presence.SetOnline(ctx, user.ID, true); err != nil {
		// Presence is best effort; the connection stays up.
		h.log.Warn().Err(err).Int("user_id", user.ID).Msg("mark online failed")
	}

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishLifecycleEvent(ctx, "ws_connect", info, "")

	if err := h.hub.SendTo(conn, models.AckEvent{Event: "connected", Data: "User connected"}); err != nil {
		h.log.Warn().Err(err).Str("conn_id", info.ConnID).Msg("connected ack write failed")
	}

	// The read loop outlives the HTTP handler; connCtx scopes this
	// connection's pending work and is cancelled on disconnect. In-flight
	// persistence calls already submitted run to completion.
	connCtx, cancel := context.WithCancel(context.Background())

	go func() {
		var closeReason string
		defer func() {
			cancel()
			h.cleanup(conn, info, closeReason)
		}()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("ws_error")
					h.publishLifecycleEvent(connCtx, "ws_error", info, closeReason)
				}
				return
			}
			h.dispatcher.Dispatch(connCtx, conn, raw)
		}
	}()
}

// cleanup tears down the connection's ephemeral state. Safe to run after a
// half-finished handshake and idempotent if the binding is already gone.
func (h *SocketHandler) cleanup(conn Conn, info ConnInfo, closeReason string) {
	h.hub.LeaveAll(conn)
	_, wasBound := h.hub.Unbind(conn)
	_ = conn.Close()

	if wasBound {
		if err := h.presence.SetOnline(context.Background(), info.UserID, false); err != nil {
			h.log.Warn().Err(err).Int("user_id", info.UserID).Msg("mark offline failed")
		}
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishLifecycleEvent(context.Background(), "ws_disconnect", info, closeReason)
	}
}

func (h *SocketHandler) publishLifecycleEvent(ctx context.Context, event string, info ConnInfo, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(ctx, wsEventsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, headers)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
