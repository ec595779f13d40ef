package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"trace-journal-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Frame is one server-to-device push: a conflict signal, a content
// replacement directive, or an exit-focus directive.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Hub fans frames out to connected devices. A device may hold several
// sockets (the app plus a share extension, say); every socket gets every
// frame. Redis pub/sub relays frames to devices connected to other instances.
type Hub struct {
	// device id -> open sockets
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	// instanceID marks frames this hub published, so the Redis relay does
	// not deliver them twice on the publishing instance.
	instanceID string

	logger logger.ILogger
}

const clusterChannel = "cluster_frames"

func NewHub(rdb *redis.Client, instanceID string, log logger.ILogger) *Hub {
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: instanceID,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.DeviceID] = append(h.clients[client.DeviceID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Device connected", map[string]interface{}{"device_id": client.DeviceID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.DeviceID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.DeviceID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.DeviceID]) == 0 {
					delete(h.clients, client.DeviceID)
					h.logger.Info("Hub", "Device fully disconnected", map[string]interface{}{"device_id": client.DeviceID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send pushes a frame to one device, on this instance and, via Redis, on any
// other instance that has it connected.
func (h *Hub) Send(deviceID uuid.UUID, frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("Hub", "Frame marshal failed", map[string]interface{}{"error": err.Error()})
		return
	}

	h.sendLocal(deviceID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"origin_instance":  h.instanceID,
			"target_device_id": deviceID.String(),
			"message":          json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), clusterChannel, payload)
	}
}

func (h *Hub) sendLocal(deviceID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients, found := h.clients[deviceID]
	h.mu.RUnlock()

	if !found {
		return
	}
	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// Unregistering closes Send; closing it here too would double
			// close once Run picks the client up.
			h.logger.Warn("Hub", "Send buffer full, dropping socket", map[string]interface{}{"device_id": deviceID})
			h.unregister <- client
		}
	}
}

// Connected reports whether a device has at least one open socket on this
// instance.
func (h *Hub) Connected(deviceID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[deviceID]) > 0
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			OriginInstance string          `json:"origin_instance"`
			TargetDeviceID string          `json:"target_device_id"`
			Message        json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis frame parse error: %v", err)
			continue
		}
		if payload.OriginInstance == h.instanceID {
			continue
		}

		deviceID, err := uuid.Parse(payload.TargetDeviceID)
		if err != nil {
			continue
		}
		h.sendLocal(deviceID, payload.Message)
	}
}
