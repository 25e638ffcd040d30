// Package stream broadcasts recorded frames to WebSocket clients.
package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/mdsim/internal/md"
)

// FramePath is the endpoint clients connect to.
const FramePath = "/frames"

// FrameMessage is the JSON document sent for every recorded frame.
type FrameMessage struct {
	Step      int          `json:"step"`
	Labels    []string     `json:"labels"`
	Positions [][3]float64 `json:"positions"`
}

// Hub fans recorded frames out to connected clients. It implements
// md.Observer; OnFrame never blocks the simulation and drops frames when the
// queue is full.
type Hub struct {
	labels     []string
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan FrameMessage
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
	dropped    atomic.Int64
}

func NewHub(labels []string) *Hub {
	h := &Hub{
		labels:     append([]string(nil), labels...),
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan FrameMessage, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	h.wg.Add(1)
	go h.run()

	return h
}

// OnFrame queues a copy of pos for broadcast.
func (h *Hub) OnFrame(step int, pos md.Coords) {
	msg := FrameMessage{
		Step:      step,
		Labels:    h.labels,
		Positions: make([][3]float64, len(pos)),
	}
	for i, v := range pos {
		msg.Positions[i] = v
	}

	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.dropped.Add(1)
	}
}

// Dropped reports how many frames were discarded because the queue was full.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler returns a mux serving the hub at FramePath.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET "+FramePath, h)
	return mux
}

// ServeHTTP upgrades the connection and keeps it registered until the client
// goes away. Incoming messages are discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

func (h *Hub) run() {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			h.send(data)
		}
	}
}

// send writes data to every client and drops the ones that fail. Only the
// run goroutine writes to connections.
func (h *Hub) send(data []byte) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	var failed []*websocket.Conn
	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			failed = append(failed, conn)
			conn.Close()
		}
	}

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	}
}

// Close stops the broadcaster and disconnects every client. Frames still
// queued are discarded.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	})
	return nil
}
