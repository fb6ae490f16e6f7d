package handler

import (
	"context"
	"sync"
	"time"

	"resto_manager/helper"
	"resto_manager/notify"

	"github.com/gofiber/contrib/websocket"
)

const snapshotWindow = 12 * time.Hour

var (
	kdsClients = make(map[uint]map[*websocket.Conn]bool)
	kdsMu      sync.Mutex
)

// KDSWebsocket streams order events to a kitchen display. The token decides
// the tenant room; on connect the display receives a snapshot of the recent
// service window so it is never empty after a reload.
func KDSWebsocket(c *websocket.Conn) {
	claim, err := helper.ParseKDSToken(c.Query("token"))
	if err != nil {
		c.WriteJSON(notify.Event{Event: "error", Data: "invalid token"})
		c.Close()
		return
	}
	restId := claim.RestaurantId

	defer func() {
		kdsMu.Lock()
		if kdsClients[restId] != nil {
			delete(kdsClients[restId], c)
		}
		kdsMu.Unlock()
		c.Close()
	}()

	kdsMu.Lock()
	if kdsClients[restId] == nil {
		kdsClients[restId] = make(map[*websocket.Conn]bool)
	}
	kdsClients[restId][c] = true
	kdsMu.Unlock()

	if views, apiErr := Orders.Snapshot(restId, snapshotWindow); apiErr == nil {
		c.WriteJSON(notify.Event{Event: notify.EventOrdersSnapshot, Data: views})
	}

	if RedisClient == nil {
		// no fanout backend; hold the connection open until the client leaves
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}

	pubsub := RedisClient.Subscribe(context.Background(), notify.Channel(restId))
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		if err := c.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
			return
		}
	}
}
