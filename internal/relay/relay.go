// Package relay moves realtime events between connected users: direct
// message delivery, typing indicators, read receipts, and presence
// broadcasts. It owns no business state beyond read-receipt bookkeeping;
// reports and notifications are pushed into it from the outside.
package relay

import (
	"log"
	"time"

	"campusfix/backend/internal/models"
	"campusfix/backend/internal/presence"
	"campusfix/backend/internal/storage"
)

// InboundEvent pairs a decoded wire event with the connection it came from,
// so scoped error events can find their way back.
type InboundEvent struct {
	Origin Client
	Event  models.WireEvent
}

type push struct {
	userID string
	event  models.WireEvent
}

// RelayService is the hub goroutine owning the client table. All mutation of
// Clients happens on the Run loop; other goroutines talk to it via channels.
type RelayService struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	EventCh      chan InboundEvent

	Storage  storage.Storage
	Presence *presence.Registry

	pushCh chan push
}

// NewRelayService creates the hub around a storage backend and a presence
// registry.
func NewRelayService(s storage.Storage, reg *presence.Registry) *RelayService {
	return &RelayService{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		EventCh:      make(chan InboundEvent),
		Storage:      s,
		Presence:     reg,
		pushCh:       make(chan push, 64),
	}
}

// Run is the hub dispatcher. Start it exactly once, as a goroutine.
func (m *RelayService) Run() {
	for {
		select {
		case client := <-m.RegisterCh:
			m.registerClient(client)
		case client := <-m.UnregisterCh:
			m.dropClient(client)
		case in := <-m.EventCh:
			m.handleEvent(in.Origin, in.Event)
		case p := <-m.pushCh:
			m.sendToUser(p.userID, p.event)
		}
	}
}

// PushNotification hands a persisted notification to the owner's connection,
// if any. Safe to call from any goroutine; drops the push when the hub is
// backed up, since the notification is already persisted for the next fetch.
func (m *RelayService) PushNotification(userID string, n *models.Notification) {
	ev := models.WireEvent{Event: models.EventNewNotification, Notification: n}
	select {
	case m.pushCh <- push{userID: userID, event: ev}:
	default:
		log.Printf("WARNING: Push channel full, dropping notification push for %s", userID)
	}
}

func (m *RelayService) registerClient(client Client) {
	userID := client.GetUserID()

	// A reconnect replaces the previous connection.
	if old, ok := m.Clients[userID]; ok {
		delete(m.Clients, userID)
		old.Close()
	}

	m.Clients[userID] = client
	m.Presence.Register(userID, client.GetName(), client.GetRole())

	now := time.Now()
	m.broadcast(models.WireEvent{
		Event:    models.EventUserStatusUpdate,
		UserID:   userID,
		Status:   models.StatusOnline,
		LastSeen: &now,
	})
}

func (m *RelayService) dropClient(client Client) {
	userID := client.GetUserID()
	current, ok := m.Clients[userID]
	if !ok || current != client {
		// Already replaced by a reconnect; nothing to broadcast.
		return
	}

	delete(m.Clients, userID)
	client.Close()
	m.Presence.Unregister(userID)

	now := time.Now()
	if err := m.Storage.SetLastSeen(userID, now); err != nil {
		log.Printf("WARNING: Failed to store last-seen for %s: %v", userID, err)
	}

	m.broadcast(models.WireEvent{
		Event:    models.EventUserStatusUpdate,
		UserID:   userID,
		Status:   models.StatusOffline,
		LastSeen: &now,
	})
}

func (m *RelayService) handleEvent(origin Client, ev models.WireEvent) {
	switch ev.Event {
	case models.EventSendDirectMessage:
		m.handleDirectMessage(origin, ev)
	case models.EventTyping:
		m.sendToUser(ev.ReceiverID, models.WireEvent{
			Event:    models.EventUserTyping,
			SenderID: origin.GetUserID(),
		})
	case models.EventStopTyping:
		m.sendToUser(ev.ReceiverID, models.WireEvent{
			Event:    models.EventUserStoppedTyping,
			SenderID: origin.GetUserID(),
		})
	case models.EventMarkAsRead:
		m.handleMarkAsRead(origin, ev)
	default:
		m.errorTo(origin, "Unknown event: "+ev.Event)
	}
}

// handleDirectMessage covers both delivery paths. With a message id the
// request is relay-only: the message was persisted through the REST path and
// is only forwarded here. The legacy path carries a raw payload and persists
// from the socket layer.
func (m *RelayService) handleDirectMessage(origin Client, ev models.WireEvent) {
	if ev.MessageID != "" {
		msg, err := m.Storage.GetMessageByID(ev.MessageID)
		if err != nil {
			m.errorTo(origin, "Message not found")
			return
		}
		if msg.SenderID != origin.GetUserID() {
			m.errorTo(origin, "Only the sender can relay a message")
			return
		}
		m.sendToUser(msg.ReceiverID, models.WireEvent{Event: models.EventNewMessage, Message: msg})
		return
	}

	// Legacy path: raw payload straight off the socket.
	if ev.ReceiverID == "" {
		m.errorTo(origin, "Receiver is required")
		return
	}
	if ev.Text == "" && ev.ImageURL == "" {
		m.errorTo(origin, "Message requires text or an image")
		return
	}

	msg := &models.Message{
		SenderID:   origin.GetUserID(),
		ReceiverID: ev.ReceiverID,
		Text:       ev.Text,
		ImageURL:   ev.ImageURL,
		Type:       "text",
		ReadBy:     []string{origin.GetUserID()},
	}
	if ev.ImageURL != "" {
		msg.Type = "image"
	}

	if err := m.Storage.SaveMessage(msg); err != nil {
		m.errorTo(origin, "Failed to send message")
		return
	}

	m.sendToUser(msg.ReceiverID, models.WireEvent{Event: models.EventNewMessage, Message: msg})
}

// handleMarkAsRead appends the reader to the message's read-by set and fans
// the receipt out to the original sender and back to the reader. Repeated
// receipts are ignored.
func (m *RelayService) handleMarkAsRead(origin Client, ev models.WireEvent) {
	readerID := origin.GetUserID()

	msg, err := m.Storage.GetMessageByID(ev.MessageID)
	if err != nil {
		m.errorTo(origin, "Message not found")
		return
	}
	if msg.SenderID != readerID && msg.ReceiverID != readerID {
		m.errorTo(origin, "Only participants can mark a message as read")
		return
	}
	if msg.ReadByUser(readerID) {
		return
	}

	msg.ReadBy = append(msg.ReadBy, readerID)
	if err := m.Storage.SaveMessage(msg); err != nil {
		m.errorTo(origin, "Failed to mark message as read")
		return
	}

	receipt := models.WireEvent{
		Event:   models.EventMessageRead,
		Message: msg,
		ReadBy:  msg.ReadBy,
	}
	if readerID != msg.SenderID {
		m.sendToUser(msg.SenderID, receipt)
	}
	m.sendToUser(readerID, receipt)
}

// sendToUser delivers to one connected user; offline users are simply
// skipped (the message is already persisted for their next fetch). A client
// whose send buffer is full is treated as dead and dropped.
func (m *RelayService) sendToUser(userID string, ev models.WireEvent) {
	client, ok := m.Clients[userID]
	if !ok {
		return
	}
	select {
	case client.GetSendChannel() <- ev:
	default:
		log.Printf("WARNING: Client %s is not draining its send buffer, dropping connection", userID)
		m.dropClient(client)
	}
}

// broadcast delivers to every connected client.
func (m *RelayService) broadcast(ev models.WireEvent) {
	for userID := range m.Clients {
		m.sendToUser(userID, ev)
	}
}

// errorTo emits a scoped error event to the offending socket only. Relay
// failures never crash the connection or touch other sockets. The origin may
// have been dropped or replaced while its event sat queued, and its send
// channel is closed then, so stale origins are discarded.
func (m *RelayService) errorTo(origin Client, message string) {
	if current, ok := m.Clients[origin.GetUserID()]; !ok || current != origin {
		return
	}
	select {
	case origin.GetSendChannel() <- models.WireEvent{Event: models.EventError, ErrorMessage: message}:
	default:
	}
}
