package relay_test

import (
	"testing"
	"time"

	"campusfix/backend/internal/models"
	"campusfix/backend/internal/presence"
	"campusfix/backend/internal/relay"
	"campusfix/backend/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newHub(storageMock *storagetest.MockStorage) *relay.RelayService {
	return relay.NewRelayService(storageMock, presence.NewRegistry())
}

func TestRelay_RegisterAndUnregister(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	storageMock.On("SetLastSeen", "user_A", mock.AnythingOfType("time.Time")).Return(nil)

	hub := newHub(storageMock)
	go hub.Run()

	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")

	hub.RegisterCh <- clientB
	time.Sleep(100 * time.Millisecond)
	clientB.drain()

	hub.RegisterCh <- clientA
	time.Sleep(100 * time.Millisecond)

	assert.Contains(t, hub.Clients, "user_A")
	assert.True(t, hub.Presence.IsOnline("user_A"))

	select {
	case ev := <-clientB.RecvChannel:
		assert.Equal(t, models.EventUserStatusUpdate, ev.Event)
		assert.Equal(t, "user_A", ev.UserID)
		assert.Equal(t, models.StatusOnline, ev.Status)
	default:
		t.Error("clientB did not receive the online broadcast")
	}

	hub.UnregisterCh <- clientA
	time.Sleep(100 * time.Millisecond)

	assert.NotContains(t, hub.Clients, "user_A")
	assert.False(t, hub.Presence.IsOnline("user_A"))
	storageMock.AssertCalled(t, "SetLastSeen", "user_A", mock.AnythingOfType("time.Time"))

	select {
	case ev := <-clientB.RecvChannel:
		assert.Equal(t, models.EventUserStatusUpdate, ev.Event)
		assert.Equal(t, "user_A", ev.UserID)
		assert.Equal(t, models.StatusOffline, ev.Status)
		assert.NotNil(t, ev.LastSeen)
	default:
		t.Error("clientB did not receive the offline broadcast")
	}
}

func TestRelay_ReconnectReplacesOldConnection(t *testing.T) {
	storageMock := new(storagetest.MockStorage)

	hub := newHub(storageMock)
	go hub.Run()

	first := newMockClient("user_A")
	second := newMockClient("user_A")

	hub.RegisterCh <- first
	time.Sleep(100 * time.Millisecond)
	hub.RegisterCh <- second
	time.Sleep(100 * time.Millisecond)

	assert.True(t, first.closed)
	assert.Equal(t, relay.Client(second), hub.Clients["user_A"])

	// Dropping the stale connection must not evict the replacement.
	hub.UnregisterCh <- first
	time.Sleep(100 * time.Millisecond)
	assert.Contains(t, hub.Clients, "user_A")
	storageMock.AssertNotCalled(t, "SetLastSeen", "user_A", mock.AnythingOfType("time.Time"))
}

func TestRelay_DirectMessage_RelayOnly(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	persisted := &models.Message{
		ID:         "msg1",
		SenderID:   "user_A",
		ReceiverID: "user_B",
		Text:       "pipe burst in B-204",
		ReadBy:     []string{"user_A"},
	}
	storageMock.On("GetMessageByID", "msg1").Return(persisted, nil)

	hub := newHub(storageMock)
	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Clients["user_A"] = clientA
	hub.Clients["user_B"] = clientB

	go hub.Run()

	hub.EventCh <- relay.InboundEvent{Origin: clientA, Event: models.WireEvent{
		Event:     models.EventSendDirectMessage,
		MessageID: "msg1",
	}}
	time.Sleep(100 * time.Millisecond)

	select {
	case ev := <-clientB.RecvChannel:
		assert.Equal(t, models.EventNewMessage, ev.Event)
		assert.Equal(t, "pipe burst in B-204", ev.Message.Text)
	default:
		t.Error("clientB did not receive the relayed message")
	}

	// Relay-only path never writes.
	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
}

func TestRelay_DirectMessage_RelayOnly_NotTheSender(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	persisted := &models.Message{ID: "msg1", SenderID: "user_A", ReceiverID: "user_B"}
	storageMock.On("GetMessageByID", "msg1").Return(persisted, nil)

	hub := newHub(storageMock)
	clientB := newMockClient("user_B")
	hub.Clients["user_B"] = clientB

	go hub.Run()

	hub.EventCh <- relay.InboundEvent{Origin: clientB, Event: models.WireEvent{
		Event:     models.EventSendDirectMessage,
		MessageID: "msg1",
	}}
	time.Sleep(100 * time.Millisecond)

	select {
	case ev := <-clientB.RecvChannel:
		assert.Equal(t, models.EventError, ev.Event)
		assert.Equal(t, "Only the sender can relay a message", ev.ErrorMessage)
	default:
		t.Error("clientB did not receive the error event")
	}
}

func TestRelay_DirectMessage_LegacyPersistPath(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	storageMock.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(nil)

	hub := newHub(storageMock)
	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Clients["user_A"] = clientA
	hub.Clients["user_B"] = clientB

	go hub.Run()

	hub.EventCh <- relay.InboundEvent{Origin: clientA, Event: models.WireEvent{
		Event:      models.EventSendDirectMessage,
		ReceiverID: "user_B",
		Text:       "hello",
	}}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertCalled(t, "SaveMessage", mock.AnythingOfType("*models.Message"))

	select {
	case ev := <-clientB.RecvChannel:
		assert.Equal(t, models.EventNewMessage, ev.Event)
		assert.Equal(t, "hello", ev.Message.Text)
		assert.Equal(t, "user_A", ev.Message.SenderID)
		// The sender has implicitly read their own message.
		assert.Contains(t, ev.Message.ReadBy, "user_A")
	default:
		t.Error("clientB did not receive the message")
	}
}

func TestRelay_DirectMessage_LegacyPathValidation(t *testing.T) {
	storageMock := new(storagetest.MockStorage)

	hub := newHub(storageMock)
	clientA := newMockClient("user_A")
	hub.Clients["user_A"] = clientA

	go hub.Run()

	// No receiver.
	hub.EventCh <- relay.InboundEvent{Origin: clientA, Event: models.WireEvent{
		Event: models.EventSendDirectMessage,
		Text:  "hello",
	}}
	time.Sleep(100 * time.Millisecond)

	select {
	case ev := <-clientA.RecvChannel:
		assert.Equal(t, models.EventError, ev.Event)
		assert.Equal(t, "Receiver is required", ev.ErrorMessage)
	default:
		t.Error("clientA did not receive the error event")
	}

	// No content at all.
	hub.EventCh <- relay.InboundEvent{Origin: clientA, Event: models.WireEvent{
		Event:      models.EventSendDirectMessage,
		ReceiverID: "user_B",
	}}
	time.Sleep(100 * time.Millisecond)

	select {
	case ev := <-clientA.RecvChannel:
		assert.Equal(t, models.EventError, ev.Event)
		assert.Equal(t, "Message requires text or an image", ev.ErrorMessage)
	default:
		t.Error("clientA did not receive the error event")
	}

	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
}

func TestRelay_TypingForwarded(t *testing.T) {
	storageMock := new(storagetest.MockStorage)

	hub := newHub(storageMock)
	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Clients["user_A"] = clientA
	hub.Clients["user_B"] = clientB

	go hub.Run()

	hub.EventCh <- relay.InboundEvent{Origin: clientA, Event: models.WireEvent{
		Event:      models.EventTyping,
		ReceiverID: "user_B",
	}}
	hub.EventCh <- relay.InboundEvent{Origin: clientA, Event: models.WireEvent{
		Event:      models.EventStopTyping,
		ReceiverID: "user_B",
	}}
	time.Sleep(100 * time.Millisecond)

	select {
	case ev := <-clientB.RecvChannel:
		assert.Equal(t, models.EventUserTyping, ev.Event)
		assert.Equal(t, "user_A", ev.SenderID)
	default:
		t.Error("clientB did not receive the typing event")
	}

	select {
	case ev := <-clientB.RecvChannel:
		assert.Equal(t, models.EventUserStoppedTyping, ev.Event)
		assert.Equal(t, "user_A", ev.SenderID)
	default:
		t.Error("clientB did not receive the stop-typing event")
	}
}

func TestRelay_TypingToOfflineUserIsDropped(t *testing.T) {
	storageMock := new(storagetest.MockStorage)

	hub := newHub(storageMock)
	clientA := newMockClient("user_A")
	hub.Clients["user_A"] = clientA

	go hub.Run()

	hub.EventCh <- relay.InboundEvent{Origin: clientA, Event: models.WireEvent{
		Event:      models.EventTyping,
		ReceiverID: "user_offline",
	}}
	time.Sleep(100 * time.Millisecond)

	// No error back; offline receivers are silently skipped.
	select {
	case ev := <-clientA.RecvChannel:
		t.Errorf("unexpected event for sender: %s", ev.Event)
	default:
	}
}

func TestRelay_MarkAsRead(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	persisted := &models.Message{
		ID:         "msg1",
		SenderID:   "user_A",
		ReceiverID: "user_B",
		Text:       "hello",
		ReadBy:     []string{"user_A"},
	}
	storageMock.On("GetMessageByID", "msg1").Return(persisted, nil)
	storageMock.On("SaveMessage", mock.AnythingOfType("*models.Message")).Return(nil)

	hub := newHub(storageMock)
	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Clients["user_A"] = clientA
	hub.Clients["user_B"] = clientB

	go hub.Run()

	hub.EventCh <- relay.InboundEvent{Origin: clientB, Event: models.WireEvent{
		Event:     models.EventMarkAsRead,
		MessageID: "msg1",
	}}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertCalled(t, "SaveMessage", mock.AnythingOfType("*models.Message"))

	// Receipt fans out to the original sender and back to the reader.
	for _, c := range []*MockClient{clientA, clientB} {
		select {
		case ev := <-c.RecvChannel:
			assert.Equal(t, models.EventMessageRead, ev.Event)
			assert.Contains(t, ev.ReadBy, "user_B")
		default:
			t.Errorf("client %s did not receive the read receipt", c.GetUserID())
		}
	}
}

func TestRelay_MarkAsRead_Idempotent(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	persisted := &models.Message{
		ID:         "msg1",
		SenderID:   "user_A",
		ReceiverID: "user_B",
		ReadBy:     []string{"user_A", "user_B"},
	}
	storageMock.On("GetMessageByID", "msg1").Return(persisted, nil)

	hub := newHub(storageMock)
	clientB := newMockClient("user_B")
	hub.Clients["user_B"] = clientB

	go hub.Run()

	hub.EventCh <- relay.InboundEvent{Origin: clientB, Event: models.WireEvent{
		Event:     models.EventMarkAsRead,
		MessageID: "msg1",
	}}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
	select {
	case ev := <-clientB.RecvChannel:
		t.Errorf("unexpected event for repeated receipt: %s", ev.Event)
	default:
	}
}

func TestRelay_MarkAsRead_NonParticipant(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	persisted := &models.Message{ID: "msg1", SenderID: "user_A", ReceiverID: "user_B"}
	storageMock.On("GetMessageByID", "msg1").Return(persisted, nil)

	hub := newHub(storageMock)
	clientC := newMockClient("user_C")
	hub.Clients["user_C"] = clientC

	go hub.Run()

	hub.EventCh <- relay.InboundEvent{Origin: clientC, Event: models.WireEvent{
		Event:     models.EventMarkAsRead,
		MessageID: "msg1",
	}}
	time.Sleep(100 * time.Millisecond)

	select {
	case ev := <-clientC.RecvChannel:
		assert.Equal(t, models.EventError, ev.Event)
		assert.Equal(t, "Only participants can mark a message as read", ev.ErrorMessage)
	default:
		t.Error("clientC did not receive the error event")
	}
	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
}

func TestRelay_UnknownEvent(t *testing.T) {
	storageMock := new(storagetest.MockStorage)

	hub := newHub(storageMock)
	clientA := newMockClient("user_A")
	hub.Clients["user_A"] = clientA

	go hub.Run()

	hub.EventCh <- relay.InboundEvent{Origin: clientA, Event: models.WireEvent{Event: "selfDestruct"}}
	time.Sleep(100 * time.Millisecond)

	select {
	case ev := <-clientA.RecvChannel:
		assert.Equal(t, models.EventError, ev.Event)
		assert.Equal(t, "Unknown event: selfDestruct", ev.ErrorMessage)
	default:
		t.Error("clientA did not receive the error event")
	}
}

func TestRelay_QueuedEventFromDroppedClientIsDiscarded(t *testing.T) {
	storageMock := new(storagetest.MockStorage)
	storageMock.On("SetLastSeen", "user_A", mock.AnythingOfType("time.Time")).Return(nil)

	hub := newHub(storageMock)

	// user_A's connection is stuck: nothing drains its send channel.
	stuck := newMockClient("user_A")
	stuck.RecvChannel = make(chan models.WireEvent)
	clientB := newMockClient("user_B")
	clientC := newMockClient("user_C")
	hub.Clients["user_A"] = stuck
	hub.Clients["user_B"] = clientB
	hub.Clients["user_C"] = clientC

	go hub.Run()

	// The undrained buffer gets user_A dropped and its send channel closed.
	hub.EventCh <- relay.InboundEvent{Origin: clientB, Event: models.WireEvent{
		Event:      models.EventTyping,
		ReceiverID: "user_A",
	}}
	time.Sleep(100 * time.Millisecond)
	assert.NotContains(t, hub.Clients, "user_A")
	clientB.drain()
	clientC.drain()

	// An event user_A had queued before the drop now arrives and hits an
	// error branch. It must be discarded, not sent on the closed channel.
	hub.EventCh <- relay.InboundEvent{Origin: stuck, Event: models.WireEvent{Event: "bogus"}}
	time.Sleep(100 * time.Millisecond)

	// The hub is still dispatching for everyone else.
	hub.EventCh <- relay.InboundEvent{Origin: clientB, Event: models.WireEvent{
		Event:      models.EventTyping,
		ReceiverID: "user_C",
	}}
	time.Sleep(100 * time.Millisecond)

	select {
	case ev := <-clientC.RecvChannel:
		assert.Equal(t, models.EventUserTyping, ev.Event)
	default:
		t.Error("hub stopped dispatching after the stale event")
	}
}

func TestRelay_PushNotification(t *testing.T) {
	storageMock := new(storagetest.MockStorage)

	hub := newHub(storageMock)
	clientA := newMockClient("user_A")
	hub.Clients["user_A"] = clientA

	go hub.Run()

	n := &models.Notification{ID: "n1", UserID: "user_A", Type: models.NotificationStatusChange, Message: "Report #0042 has been resolved"}
	hub.PushNotification("user_A", n)
	time.Sleep(100 * time.Millisecond)

	select {
	case ev := <-clientA.RecvChannel:
		assert.Equal(t, models.EventNewNotification, ev.Event)
		assert.Equal(t, "n1", ev.Notification.ID)
	default:
		t.Error("clientA did not receive the notification push")
	}

	// Pushing to an offline user is a silent no-op.
	hub.PushNotification("user_offline", n)
	time.Sleep(100 * time.Millisecond)
}
