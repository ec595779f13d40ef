package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs binds an upgraded connection to the hub for one device.
func ServeWs(hub *Hub, c *websocket.Conn, deviceID uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, DeviceID: deviceID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // blocks for the lifetime of the socket
}
