package ws

import (
	"sync"

	"getjobs/internal/pkg/logging"
)

// Hub fans job change events out to every connected client. Clients join
// directly under mu; Run serves removals and broadcasts.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool

	broadcast  chan []byte
	unregister chan *Client

	quit     chan struct{}
	quitOnce sync.Once

	logger *logging.Logger
}

func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, 1024),
		unregister: make(chan *Client, 128),
		quit:       make(chan struct{}),
		logger:     logger.With("component", "ws"),
	}
}

// Run serves removals and broadcasts until Close is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.disconnectAll()
			return
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			h.fanout(msg)
		}
	}
}

// add closes the client straight away once the hub has shut down.
func (h *Hub) add(c *Client) {
	if c == nil {
		return
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(c.send)
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("ws client connected", "clients", n)
}

func (h *Hub) remove(c *Client) {
	if c == nil {
		return
	}
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.logger.Debug("ws client disconnected", "clients", n)
	}
}

// fanout drops clients whose send buffer is full instead of blocking the
// other subscribers.
func (h *Hub) fanout(msg []byte) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("ws client too slow, dropping")
			h.remove(c)
		}
	}
}

func (h *Hub) disconnectAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) Register(c *Client) {
	if h == nil {
		return
	}
	h.add(c)
}

func (h *Hub) Unregister(c *Client) {
	if h == nil {
		return
	}
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// Broadcast queues msg for every client. It never blocks; when the queue is
// full the message is dropped.
func (h *Hub) Broadcast(msg []byte) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("ws broadcast dropped", "reason", "queue_full")
	}
}

func (h *Hub) Close() {
	if h == nil {
		return
	}
	h.quitOnce.Do(func() { close(h.quit) })
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
