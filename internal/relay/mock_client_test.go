package relay_test

import (
	"campusfix/backend/internal/models"
)

type MockClient struct {
	userID      string
	name        string
	role        string
	closed      bool
	RecvChannel chan models.WireEvent
}

func newMockClient(userID string) *MockClient {
	return &MockClient{
		userID:      userID,
		name:        "User " + userID,
		role:        models.RoleStudent,
		RecvChannel: make(chan models.WireEvent, 10),
	}
}

func (c *MockClient) GetUserID() string {
	return c.userID
}

func (c *MockClient) GetName() string {
	return c.name
}

func (c *MockClient) GetRole() string {
	return c.role
}

func (c *MockClient) GetSendChannel() chan<- models.WireEvent {
	return c.RecvChannel
}

func (c *MockClient) Run() {
	// Not needed for testing
}

// Close mirrors WSClient: the send channel is closed, so any later send on
// it would panic.
func (c *MockClient) Close() {
	c.closed = true
	close(c.RecvChannel)
}

// drain empties the receive channel, discarding whatever is queued.
func (c *MockClient) drain() {
	for {
		select {
		case <-c.RecvChannel:
		default:
			return
		}
	}
}
