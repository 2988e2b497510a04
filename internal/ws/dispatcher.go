package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/repositories"
)

// Dispatcher validates inbound room events, persists them, and fans the
// results out to the connections subscribed to the room at broadcast time.
// It holds no state of its own beyond the injected registry and repositories;
// per-connection ordering comes from each connection's read loop calling
// Dispatch sequentially.
type Dispatcher struct {
	hub       *Hub
	users     repositories.UserRepository
	chats     repositories.ChatRepository
	messages  repositories.MessageRepository
	reactions repositories.ReactionRepository
	log       zerolog.Logger
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(hub *Hub, users repositories.UserRepository, chats repositories.ChatRepository, messages repositories.MessageRepository, reactions repositories.ReactionRepository, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		hub:       hub,
		users:     users,
		chats:     chats,
		messages:  messages,
		reactions: reactions,
		log:       logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch decodes one inbound frame and routes it. Malformed or unknown
// frames are dropped; they never take the connection down.
func (d *Dispatcher) Dispatch(ctx context.Context, conn Conn, raw []byte) {
	var event models.ClientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		d.log.Warn().Err(err).Msg("undecodable frame")
		observability.IncWSDropped("unknown", "decode")
		return
	}

	observability.IncWSEvent(event.Event)

	switch event.Event {
	case models.EventNewMessage:
		d.handleNewMessage(ctx, conn, event)
	case models.EventBeginChat:
		d.handleBeginChat(conn, event)
	case models.EventLeaveChat:
		d.handleLeaveChat(conn, event)
	case models.EventSetReaction:
		d.handleReaction(ctx, conn, event)
	default:
		d.log.Warn().Str("event", event.Event).Msg("unknown event")
		observability.IncWSDropped(event.Event, "unknown")
	}
}

func (d *Dispatcher) handleNewMessage(ctx context.Context, conn Conn, event models.ClientEvent) {
	session, ok := d.hub.Session(conn)
	if !ok {
		observability.IncWSDropped(event.Event, "no_session")
		return
	}
	if event.ChatID == 0 || event.Message == "" {
		d.log.Warn().Int("chat_id", event.ChatID).Msg("new_message missing fields, dropped")
		observability.IncWSDropped(event.Event, "validation")
		return
	}

	content := event.Message
	msg, err := d.messages.CreateMessage(ctx, event.ChatID, session.UserID, models.MessageTypeText, &content, nil)
	if err != nil {
		d.log.Error().Err(err).Int("chat_id", event.ChatID).Msg("persist message")
		d.reportError(conn, "failed to store message")
		return
	}

	if err := d.BroadcastMessage(ctx, msg, "", ""); err != nil {
		d.reportError(conn, "failed to deliver message")
	}
}

// BroadcastMessage resolves the sender and chat projections for an already
// persisted message and fans out a new_message event. The upload path shares
// it, passing the original filename and the served URL.
func (d *Dispatcher) BroadcastMessage(ctx context.Context, msg models.Message, filename, url string) error {
	sender, err := d.users.GetUserSummary(ctx, msg.SenderID)
	if err != nil {
		d.log.Error().Err(err).Int("user_id", msg.SenderID).Msg("load sender summary")
		return err
	}
	chat, err := d.chats.GetChatSummary(ctx, msg.ChatID)
	if err != nil {
		d.log.Error().Err(err).Int("chat_id", msg.ChatID).Msg("load chat summary")
		return err
	}

	out := models.MessageEvent{
		Event:     models.EventNewMessage,
		User:      sender,
		Chat:      chat,
		Filename:  filename,
		URL:       url,
		MessageID: msg.ID,
		Type:      msg.Type,
		Timestamp: msg.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if msg.Content != nil {
		out.Message = *msg.Content
	}

	d.hub.Broadcast(msg.ChatID, out)
	return nil
}

func (d *Dispatcher) handleReaction(ctx context.Context, conn Conn, event models.ClientEvent) {
	session, ok := d.hub.Session(conn)
	if !ok {
		observability.IncWSDropped(event.Event, "no_session")
		return
	}
	// Missing fields drop the event without telling the sender; the log line
	// and counter are the only trace.
	if event.ChatID == 0 || event.MessageID == 0 || event.ReactionID == 0 {
		d.log.Warn().
			Int("chat_id", event.ChatID).
			Int("message_id", event.MessageID).
			Int("reaction_id", event.ReactionID).
			Msg("set_reaction missing fields, dropped")
		observability.IncWSDropped(event.Event, "validation")
		return
	}

	reaction, err := d.reactions.CreateReaction(ctx, event.MessageID, session.UserID, event.ReactionID)
	if err != nil {
		d.log.Error().Err(err).Int("message_id", event.MessageID).Msg("persist reaction")
		d.reportError(conn, "failed to store reaction")
		return
	}

	sender, err := d.users.GetUserSummary(ctx, session.UserID)
	if err != nil {
		d.log.Error().Err(err).Int("user_id", session.UserID).Msg("load sender summary")
		d.reportError(conn, "failed to deliver reaction")
		return
	}
	chat, err := d.chats.GetChatSummary(ctx, event.ChatID)
	if err != nil {
		d.log.Error().Err(err).Int("chat_id", event.ChatID).Msg("load chat summary")
		d.reportError(conn, "failed to deliver reaction")
		return
	}

	d.hub.Broadcast(event.ChatID, models.ReactionEvent{
		Event:     models.EventSetReaction,
		User:      sender,
		Chat:      chat,
		MessageID: event.MessageID,
		Reaction:  reaction.Content,
	})
}

// handleBeginChat subscribes the connection to the room. Persisted chat
// membership is not checked here; clients may subscribe to rooms they do not
// belong to in storage.
func (d *Dispatcher) handleBeginChat(conn Conn, event models.ClientEvent) {
	if event.ChatID == 0 {
		observability.IncWSDropped(event.Event, "validation")
		return
	}
	d.hub.Join(event.ChatID, conn)
}

func (d *Dispatcher) handleLeaveChat(conn Conn, event models.ClientEvent) {
	if event.ChatID == 0 {
		observability.IncWSDropped(event.Event, "validation")
		return
	}
	d.hub.Leave(event.ChatID, conn)
}

// reportError notifies only the originating connection; the rest of the room
// never learns a request failed.
func (d *Dispatcher) reportError(conn Conn, message string) {
	if err := d.hub.SendTo(conn, models.ErrorEvent{Event: "error", Error: message}); err != nil {
		d.log.Warn().Err(err).Msg("error report write failed")
	}
}
