package ws

import (
	"encoding/json"
	"sync"
)

// Client is one open reward-stream connection.
type Client struct {
	UserID uint
	Send   chan []byte
	hub    *RewardHub
}

func (c *Client) Close() {
	if c.hub != nil {
		c.hub.drop(c)
	}
}

// RewardHub fans reward events out to a user's open connections. Delivery is
// best-effort: a slow or absent client just misses the event; the credit
// itself has already committed.
//
// Send channels are closed only by drop while holding the write lock, and
// NotifyReward sends only under the read lock, so a send can never race a
// close.
type RewardHub struct {
	mu     sync.RWMutex
	byUser map[uint]map[*Client]struct{}
}

func NewRewardHub() *RewardHub {
	return &RewardHub{byUser: make(map[uint]map[*Client]struct{})}
}

func (h *RewardHub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	if h.byUser[c.UserID] == nil {
		h.byUser[c.UserID] = make(map[*Client]struct{})
	}
	h.byUser[c.UserID][c] = struct{}{}
}

// drop removes the client and closes its channel, once.
func (h *RewardHub) drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := h.byUser[c.UserID]
	if m == nil {
		return
	}
	if _, ok := m[c]; !ok {
		return
	}
	delete(m, c)
	if len(m) == 0 {
		delete(h.byUser, c.UserID)
	}
	close(c.Send)
}

// NotifyReward implements service.RewardNotifier.
func (h *RewardHub) NotifyReward(userID uint, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byUser[userID] {
		select {
		case c.Send <- data:
		default:
			// drop rather than block the reward flow
		}
	}
}
