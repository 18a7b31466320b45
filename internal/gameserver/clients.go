package gameserver

import (
	"sync"
)

// ClientManager tracks all live connections.
// Thread-safe for concurrent access.
type ClientManager struct {
	mu      sync.RWMutex
	clients map[string]*Client // key: session id
}

// NewClientManager creates an empty manager.
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[string]*Client, 64),
	}
}

// Register adds a client.
func (cm *ClientManager) Register(client *Client) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.clients[client.SessionID()] = client
}

// Unregister removes a client.
func (cm *ClientManager) Unregister(sessionID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.clients, sessionID)
}

// GetClient returns the client for the session id, or nil.
func (cm *ClientManager) GetClient(sessionID string) *Client {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.clients[sessionID]
}

// Count returns the number of connected clients.
func (cm *ClientManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}

// ForEachClient iterates over all connected clients.
// If fn returns false, iteration stops.
func (cm *ClientManager) ForEachClient(fn func(*Client) bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	for _, client := range cm.clients {
		if !fn(client) {
			return
		}
	}
}

// CloseAll closes every connection. Handlers notice on their next read
// and run their disconnection cleanup.
func (cm *ClientManager) CloseAll() {
	cm.ForEachClient(func(c *Client) bool {
		_ = c.Close()
		return true
	})
}
