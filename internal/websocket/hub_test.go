package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"gen8n-be/internal/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func attach(hub *Hub, userID uuid.UUID) *Client {
	c := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, sendBuffer)}
	hub.register <- c
	return c
}

func TestHubSendReachesEveryDeviceOnce(t *testing.T) {
	hub := startHub(t)
	user := uuid.New()
	a, b := attach(hub, user), attach(hub, user)
	other := attach(hub, uuid.New())

	require.Eventually(t, func() bool { return hub.Connections(user) == 2 }, time.Second, 5*time.Millisecond)

	hub.Send(user, "workflow_updated", map[string]string{"id": "wf-1"})

	for _, c := range []*Client{a, b} {
		select {
		case frame := <-c.Send:
			var msg struct {
				Type string            `json:"type"`
				Data map[string]string `json:"data"`
			}
			require.NoError(t, json.Unmarshal(frame, &msg))
			assert.Equal(t, "workflow_updated", msg.Type)
			assert.Equal(t, "wf-1", msg.Data["id"])
		case <-time.After(time.Second):
			t.Fatal("frame not delivered")
		}
		assert.Len(t, c.Send, 0)
	}
	assert.Len(t, other.Send, 0)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	user := uuid.New()
	c := attach(hub, user)
	require.Eventually(t, func() bool { return hub.Connections(user) == 1 }, time.Second, 5*time.Millisecond)

	hub.unregister <- c

	require.Eventually(t, func() bool { return hub.Connections(user) == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}

func TestHubDeliverRacesWithDisconnect(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	user := uuid.New()

	for i := 0; i < 2000; i++ {
		c := &Client{Hub: hub, UserID: user, Send: make(chan []byte, sendBuffer)}
		hub.mu.Lock()
		hub.clients[user] = append(hub.clients[user], c)
		hub.mu.Unlock()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.deliver(user, []byte(`{"type":"workflow_updated"}`))
		}()
		go func() {
			defer wg.Done()
			hub.remove(c)
		}()
		wg.Wait()
	}
	assert.Zero(t, hub.Connections(user))
}

func startClusterHub(t *testing.T) (*miniredis.Miniredis, *Hub, context.CancelFunc) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	hub := NewHub(rdb, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(clusterChannel)[clusterChannel] == 1
	}, time.Second, 5*time.Millisecond)
	return mr, hub, cancel
}

func TestHubDeliversThroughRedis(t *testing.T) {
	_, hub, _ := startClusterHub(t)
	user := uuid.New()
	c := attach(hub, user)
	require.Eventually(t, func() bool { return hub.Connections(user) == 1 }, time.Second, 5*time.Millisecond)

	hub.Send(user, "workflow_updated", map[string]string{"id": "wf-9"})

	select {
	case frame := <-c.Send:
		assert.JSONEq(t, `{"type":"workflow_updated","data":{"id":"wf-9"}}`, string(frame))
	case <-time.After(time.Second):
		t.Fatal("frame not delivered")
	}
}

func TestHubStopsClusterSubscriberOnCancel(t *testing.T) {
	mr, _, cancel := startClusterHub(t)

	cancel()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(clusterChannel)[clusterChannel] == 0
	}, time.Second, 5*time.Millisecond)
}
