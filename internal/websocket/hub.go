package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"gen8n-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "gen8n_ws_events"

// Message is the frame pushed to browsers.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type clusterEnvelope struct {
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

// Hub tracks live connections per user. With Redis configured every instance
// delivers from the shared channel, so a frame reaches each socket once no
// matter which instance produced it.
type Hub struct {
	clients    map[uuid.UUID][]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	rdb    *redis.Client
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client, 64),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeCluster(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Debug("WS", "Client registered", map[string]interface{}{"user_id": client.UserID.String()})
		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.UserID]
	for i, c := range clients {
		if c == client {
			h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
	}
}

// Connections reports how many sockets a user has open on this instance.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Send pushes a typed frame to every socket the user has open.
func (h *Hub) Send(userID uuid.UUID, msgType string, data interface{}) {
	frame, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		h.logger.Error("WS", "Failed to encode frame", map[string]interface{}{"error": err, "type": msgType})
		return
	}

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterEnvelope{TargetUserID: userID.String(), Message: frame})
		err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err()
		if err == nil {
			return
		}
		h.logger.Warn("WS", "Cluster publish failed, delivering locally", map[string]interface{}{"error": err})
	}
	h.deliver(userID, frame)
}

// deliver sends while holding the read lock; remove closes Send only under
// the write lock, so a socket can't be closed mid-send.
func (h *Hub) deliver(userID uuid.UUID, frame []byte) {
	var stale []*Client

	h.mu.RLock()
	for _, client := range h.clients[userID] {
		select {
		case client.Send <- frame:
		default:
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		h.logger.Warn("WS", "Send buffer full, dropping client", map[string]interface{}{"user_id": userID.String()})
		h.unregister <- client
	}
}

func (h *Hub) subscribeCluster(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	frames := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-frames:
			if !ok {
				return
			}
			var env clusterEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn("WS", "Malformed cluster frame", map[string]interface{}{"error": err})
				continue
			}
			uid, err := uuid.Parse(env.TargetUserID)
			if err != nil {
				continue
			}
			h.deliver(uid, env.Message)
		}
	}
}
