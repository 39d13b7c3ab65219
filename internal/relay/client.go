package relay

import "campusfix/backend/internal/models"

// Client is the interface for one authenticated realtime connection. It
// abstracts the underlying transport so the relay can manage connection
// types uniformly (WebSocket in production, mocks in tests).
type Client interface {
	// GetUserID returns the verified user id bound to the connection.
	GetUserID() string
	// GetName returns the display name recorded in the presence registry.
	GetName() string
	// GetRole returns the user's role (student or admin).
	GetRole() string

	// GetSendChannel returns the channel through which the relay delivers
	// events to this connection. It is a send-only channel; writes to the
	// same client arrive in send order.
	GetSendChannel() chan<- models.WireEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's send channel and, with it, the write pump.
	Close()
}
