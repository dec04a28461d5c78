package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"unblocker/src/logger"
	"unblocker/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub
// -----------------------------------------------------------------------------

// Hub fans attempt events out to WebSocket clients. The client map and the
// per-client filters are only touched by the run loop.
type Hub struct {
	Logger *logger.Logger

	clients    map[*Client]struct{}
	broadcast  chan models.MAttemptEvent
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	count      chan chan int
	quit       chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

type subscription struct {
	client     *Client
	requestIDs []string
}

// -----------------------------------------------------------------------------

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		Logger:  log,
		clients: make(map[*Client]struct{}),
		// Buffered so sequencer observers never wait on slow sockets
		broadcast:  make(chan models.MAttemptEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		count:      make(chan chan int),
		quit:       make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

func (h *Hub) Start() error {
	h.startOnce.Do(func() {
		go h.run()
	})
	return nil
}

// -----------------------------------------------------------------------------

func (h *Hub) Stop() error {
	h.stopOnce.Do(func() {
		close(h.quit)
	})
	return nil
}

// -----------------------------------------------------------------------------

// Broadcast queues an event. It is dropped when the queue is full or the hub
// is stopped.
func (h *Hub) Broadcast(event models.MAttemptEvent) {
	select {
	case h.broadcast <- event:
	case <-h.quit:
	default:
		h.Logger.Warning("Broadcast queue full, dropping %s event for %s", event.Type, event.RequestID)
	}
}

// -----------------------------------------------------------------------------

// Connections returns the number of registered clients
func (h *Hub) Connections() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.quit:
		return 0
	}
}

// -----------------------------------------------------------------------------
// Hub loop
// -----------------------------------------------------------------------------

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}

		case client := <-h.unregister:
			h.drop(client)

		case sub := <-h.subscribe:
			if _, ok := h.clients[sub.client]; !ok {
				continue
			}
			sub.client.filter = nil
			if len(sub.requestIDs) > 0 {
				sub.client.filter = make(map[string]struct{}, len(sub.requestIDs))
				for _, id := range sub.requestIDs {
					sub.client.filter[id] = struct{}{}
				}
			}

		case reply := <-h.count:
			reply <- len(h.clients)

		case event := <-h.broadcast:
			for client := range h.clients {
				if !client.wants(event.RequestID) {
					continue
				}
				select {
				case client.send <- event:
				default:
					// Client too slow, disconnect to keep the hub moving
					h.Logger.Warning("Dropping slow WebSocket client")
					h.drop(client)
				}
			}

		case <-h.quit:
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (h *Hub) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan models.MAttemptEvent, 256),
	}

	select {
	case h.register <- client:
	case <-h.quit:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (h *Hub) handleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		h.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	select {
	case h.subscribe <- subscription{client: client, requestIDs: cmd.RequestIDs}:
	case <-h.quit:
	}
}
