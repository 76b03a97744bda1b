// ABOUTME: WebSocket telemetry for the DMA sound output
// ABOUTME: Broadcasts clock and ring buffer statistics to connected clients
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Resonate-Protocol/snddma/pkg/dma"
)

// DefaultInterval is how often stats are pushed to clients
const DefaultInterval = 250 * time.Millisecond

// Config holds monitor configuration
type Config struct {
	Addr       string
	Name       string
	EnableMDNS bool
	Interval   time.Duration
}

// Snapshot is the JSON form of one stats sample
type Snapshot struct {
	Driver          string `json:"driver"`
	Format          string `json:"format"`
	Initialized     bool   `json:"initialized"`
	Samples         int    `json:"samples"`
	Cursor          int    `json:"cursor"`
	SoundTime       int64  `json:"sound_time"`
	PaintedTime     int64  `json:"painted_time"`
	Wraps           int64  `json:"wraps"`
	Resets          int64  `json:"resets"`
	Callbacks       int64  `json:"callbacks"`
	SilentCallbacks int64  `json:"silent_callbacks"`
	Voices          int    `json:"voices"`
	Underruns       int64  `json:"underruns"`
}

// Message is the envelope sent to clients
type Message struct {
	Type    string   `json:"type"`
	Payload Snapshot `json:"payload"`
}

// FromStats converts an output snapshot
func FromStats(s dma.Stats) Snapshot {
	return Snapshot{
		Driver:          s.Driver,
		Format:          s.Format.String(),
		Initialized:     s.Initialized,
		Samples:         s.Samples,
		Cursor:          s.Cursor,
		SoundTime:       s.SoundTime,
		PaintedTime:     s.PaintedTime,
		Wraps:           s.Wraps,
		Resets:          s.Resets,
		Callbacks:       s.Callbacks,
		SilentCallbacks: s.SilentCallbacks,
	}
}

type client struct {
	id       string
	conn     *websocket.Conn
	sendChan chan Message
}

// Server serves stats over HTTP and WebSocket
type Server struct {
	config   Config
	stats    func() Snapshot
	upgrader websocket.Upgrader
	mux      *http.ServeMux

	httpServer *http.Server
	listener   net.Listener

	clients   map[string]*client
	clientsMu sync.RWMutex

	wg sync.WaitGroup
}

// New creates a monitor that samples stats on every tick
func New(config Config, stats func() Snapshot) *Server {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.Name == "" {
		config.Name = "snddma"
	}

	s := &Server{
		config: config,
		stats:  stats,
		mux:    http.NewServeMux(),
		upgrader: websocket.Upgrader{
			// Local diagnostics only; any origin may watch
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/stats", s.handleStats)
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Addr returns the bound address once Start has listened
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.Addr
	}
	return s.listener.Addr().String()
}

// Start listens, optionally advertises via mDNS and broadcasts until ctx ends.
// It returns after the listener is bound.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{Handler: s.mux}
	log.Printf("Monitor listening on %s", ln.Addr())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(ln); err != http.ErrServerClosed {
			log.Printf("Monitor HTTP server error: %v", err)
		}
	}()

	if s.config.EnableMDNS {
		port := ln.Addr().(*net.TCPAddr).Port
		mdnsServer, err := advertise(s.config.Name, port)
		if err != nil {
			log.Printf("mDNS advertisement failed: %v", err)
		} else {
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				<-ctx.Done()
				mdnsServer.Shutdown()
			}()
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.broadcastLoop(ctx)
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Monitor shutdown error: %v", err)
		}
		s.closeClients()
	}()

	return nil
}

// Wait blocks until every goroutine started by Start has exited
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) broadcastLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Broadcast()
		}
	}
}

// Broadcast sends one stats sample to every client, dropping it for
// clients whose queue is full
func (s *Server) Broadcast() {
	msg := Message{Type: "dma/stats", Payload: s.stats()}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		select {
		case c.sendChan <- msg:
		default:
		}
	}
}

// Clients returns the number of connected clients
func (s *Server) Clients() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.stats()); err != nil {
		log.Printf("Error encoding stats: %v", err)
	}
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	c := &client{
		id:       uuid.New().String(),
		conn:     conn,
		sendChan: make(chan Message, 8),
	}
	log.Printf("Monitor client %s connected from %s", c.id, r.RemoteAddr)

	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()

	done := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(c, done)
	}()

	// Read until the client goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}

	close(done)
	s.removeClient(c.id)
	conn.Close()
	log.Printf("Monitor client %s disconnected", c.id)
}

// clientWriter sends messages to the client
func (s *Server) clientWriter(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	const writeDeadline = 10 * time.Second

	for {
		select {
		case <-done:
			return
		case msg := <-c.sendChan:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("Error writing stats: %v", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}
}

func (s *Server) removeClient(id string) {
	s.clientsMu.Lock()
	delete(s.clients, id)
	s.clientsMu.Unlock()
}

func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for _, c := range s.clients {
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		c.conn.Close()
	}
}
