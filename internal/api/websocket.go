package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"pixelmagic/internal/bot"
	"pixelmagic/internal/protocol"
	"pixelmagic/internal/rotation"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     localOrigin,
}

// localOrigin accepts non-browser clients and pages served from this machine
func localOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// WSManager handles WebSocket connections and broadcasting
type WSManager struct {
	server     *Server
	clients    map[*WebSocketClient]bool
	clientsMu  sync.Mutex
	broadcast  chan protocol.Message
	register   chan *WebSocketClient
	unregister chan *WebSocketClient
	shutdown   chan struct{}
	stopOnce   sync.Once
}

// WebSocketClient represents a connected status client
type WebSocketClient struct {
	manager *WSManager
	conn    *websocket.Conn
	send    chan []byte
	ip      string
}

func newWSManager(s *Server) *WSManager {
	return &WSManager{
		server:     s,
		clients:    make(map[*WebSocketClient]bool),
		broadcast:  make(chan protocol.Message, 16),
		register:   make(chan *WebSocketClient),
		unregister: make(chan *WebSocketClient),
		shutdown:   make(chan struct{}),
	}
}

func (m *WSManager) start() {
	for {
		select {
		case client := <-m.register:
			m.clientsMu.Lock()
			m.clients[client] = true
			total := len(m.clients)
			m.clientsMu.Unlock()
			log.Info().Str("remote", client.ip).Int("clients", total).Msg("WS: Client registered")

			// New clients get the current status right away
			client.sendMessage(protocol.TypeStatus, m.server.ctl.Status())

		case client := <-m.unregister:
			m.clientsMu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client.send)
				log.Info().Str("remote", client.ip).Int("clients", len(m.clients)).Msg("WS: Client unregistered")
			}
			m.clientsMu.Unlock()

		case message := <-m.broadcast:
			m.broadcastMessage(message)

		case <-m.shutdown:
			m.clientsMu.Lock()
			for client := range m.clients {
				delete(m.clients, client)
				close(client.send)
			}
			m.clientsMu.Unlock()
			return
		}
	}
}

func (m *WSManager) stop() {
	m.stopOnce.Do(func() { close(m.shutdown) })
}

func (m *WSManager) broadcastMessage(message protocol.Message) {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Msg("WS: Failed to marshal broadcast message")
		return
	}

	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()

	for client := range m.clients {
		select {
		case client.send <- jsonMsg:
		default:
			close(client.send)
			delete(m.clients, client)
		}
	}
}

func (m *WSManager) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WS: Failed to upgrade connection")
		return
	}

	client := &WebSocketClient{
		manager: m,
		conn:    conn,
		send:    make(chan []byte, 256),
		ip:      r.RemoteAddr,
	}

	// Register client
	select {
	case m.register <- client:
	case <-m.shutdown:
		conn.Close()
		return
	}

	// Start pump goroutines
	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the websocket connection to the hub.
func (c *WebSocketClient) readPump() {
	defer func() {
		select {
		case c.manager.unregister <- c:
		case <-c.manager.shutdown:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("WS: Read error")
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(50 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendMessage queues a message for this client without blocking. Callers run on
// the hub goroutine or hold clientsMu, so the channel cannot be closed underneath.
func (c *WebSocketClient) sendMessage(t protocol.MessageType, payload any) {
	msg, err := protocol.New(t, payload)
	if err != nil {
		log.Error().Err(err).Msg("WS: Failed to encode message")
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Warn().Str("remote", c.ip).Msg("WS: Client send buffer full, dropping message")
	}
}

func (c *WebSocketClient) handleMessage(data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn().Err(err).Msg("WS: Invalid message format")
		return
	}

	ctl := c.manager.server.ctl
	switch msg.Type {
	case protocol.TypeCommand:
		var cmd protocol.CommandPayload
		if err := msg.Decode(&cmd); err != nil {
			log.Warn().Err(err).Msg("WS: Invalid command payload")
			return
		}
		log.Info().Str("action", cmd.Action).Str("remote", c.ip).Msg("WS: Received command")

		// Use a goroutine to avoid blocking the read pump; status changes are broadcast by the bot callback
		go func() {
			if err := c.manager.server.runCommand(cmd); err != nil {
				log.Warn().Err(err).Str("action", cmd.Action).Msg("WS: Command failed")
				c.manager.reply(c, protocol.TypeError, protocol.ErrorPayload{Message: err.Error()})
			}
		}()

	case protocol.TypeSnapshotRequest:
		snap, err := ctl.Snapshot()
		if err != nil {
			c.manager.reply(c, protocol.TypeError, protocol.ErrorPayload{Message: err.Error()})
			return
		}
		c.manager.reply(c, protocol.TypeSnapshot, snap)

	case protocol.TypePing:
		c.manager.reply(c, protocol.TypePing, nil)
	}
}

// reply sends to one client if it is still registered
func (m *WSManager) reply(c *WebSocketClient, t protocol.MessageType, payload any) {
	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()
	if m.clients[c] {
		c.sendMessage(t, payload)
	}
}

// runCommand applies a WebSocket command to the controller
func (s *Server) runCommand(cmd protocol.CommandPayload) error {
	switch cmd.Action {
	case protocol.ActionMode:
		t, err := rotation.ParseType(cmd.Mode)
		if err != nil {
			return err
		}
		s.ctl.SetMode(t)
		return nil
	case protocol.ActionToggleMode:
		s.ctl.ToggleMode()
		return nil
	}
	return s.runAction(cmd.Action, cmd.Rotation)
}

// BroadcastStatus pushes a status message to every client
func (m *WSManager) BroadcastStatus(st bot.Status) {
	msg, err := protocol.New(protocol.TypeStatus, st)
	if err != nil {
		log.Error().Err(err).Msg("WS: Failed to encode status")
		return
	}
	select {
	case m.broadcast <- msg:
	case <-m.shutdown:
	}
}
