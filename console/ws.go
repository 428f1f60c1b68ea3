package console

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/panyam/goutils/conc"
	gohttp "github.com/panyam/goutils/http"

	"github.com/panyam/connectus/services"
)

// DiagramWSMessage represents a WebSocket message on the live feed
type DiagramWSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// DiagramWSConn implements the goutils WebSocket connection interface
type DiagramWSConn struct {
	gohttp.JSONConn
	handler *DiagramWSHandler
	id      string
}

// DiagramWSHandler manages WebSocket connections for the live feed
type DiagramWSHandler struct {
	webServer *WebServer
	clients   map[string]*DiagramWSConn
	mu        sync.RWMutex
}

// WebSocket connection lifecycle methods
func (c *DiagramWSConn) OnStart(conn *websocket.Conn) error {
	// First, initialize the embedded JSONConn
	if err := c.JSONConn.OnStart(conn); err != nil {
		return err
	}

	c.id = fmt.Sprintf("conn_%s", conn.RemoteAddr().String())

	c.handler.mu.Lock()
	c.handler.clients[c.id] = c
	c.handler.mu.Unlock()

	services.Info("WebSocket client connected: %s", c.id)

	// Send initial connection message
	message := DiagramWSMessage{
		Type: "connected",
		Data: map[string]interface{}{
			"status": "connected",
			"server": "Connectus Console",
			"id":     c.id,
		},
	}
	c.Writer.Send(conc.Message[any]{Value: message})
	return nil
}

func (c *DiagramWSConn) OnClose() {
	c.handler.mu.Lock()
	delete(c.handler.clients, c.id)
	c.handler.mu.Unlock()

	services.Info("WebSocket client disconnected: %s", c.id)

	c.JSONConn.OnClose()
}

func (c *DiagramWSConn) OnTimeout() bool {
	services.Warn("WebSocket connection timeout: %s", c.id)
	return true // Close the connection on timeout
}

func (c *DiagramWSConn) HandleMessage(msgData any) error {
	message, ok := msgData.(DiagramWSMessage)
	if !ok {
		return fmt.Errorf("invalid message type")
	}

	services.Debug("Received WebSocket message: %s from %s", message.Type, c.id)

	switch message.Type {
	case "ping":
		c.Writer.Send(conc.Message[any]{Value: DiagramWSMessage{Type: "pong", Data: message.Data}})
	default:
		services.Warn("Unknown WebSocket message type: %s", message.Type)
	}

	return nil
}

// WebSocket handler interface implementation
func (h *DiagramWSHandler) Validate(w http.ResponseWriter, r *http.Request) (out *DiagramWSConn, isValid bool) {
	// Local console, no authentication on the live feed
	conn := &DiagramWSConn{
		handler: h,
	}
	return conn, true
}

// Broadcast fans one event out to every connected client.
func (h *DiagramWSHandler) Broadcast(msg DiagramWSMessage) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		client.Writer.Send(conc.Message[any]{Value: msg})
	}
}
