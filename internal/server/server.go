// Package server streams live simulation frames over WebSocket so external
// front ends can render the system.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/vec"
)

const sendQueueSize = 16

// Frame is one broadcast snapshot of the running system.
type Frame struct {
	Time   float64     `json:"time"`
	Warp   float64     `json:"warp"`
	Bodies []BodyState `json:"bodies"`
}

type BodyState struct {
	Name     string   `json:"name"`
	Position vec.Vec3 `json:"position"`
	Velocity vec.Vec3 `json:"velocity"`
	Spin     float64  `json:"spin"`
	Radius   float64  `json:"radius"`
}

// command is what clients may send back: currently only warp adjustments.
type command struct {
	Type   string  `json:"type"`
	Factor float64 `json:"factor"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Server steps an engine on a fixed cadence and fans frames out to every
// connected WebSocket client.
type Server struct {
	engine    *sim.Engine
	frameRate int
	upgrader  websocket.Upgrader

	// commands funnels client input to the loop goroutine. The engine is
	// single-threaded: only loop may touch it, so reader goroutines enqueue
	// here instead of applying commands themselves.
	commands chan command

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func New(engine *sim.Engine, frameRate int) *Server {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &Server{
		engine:    engine,
		frameRate: frameRate,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		commands: make(chan command, 16),
		clients:  make(map[*client]struct{}),
	}
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Run serves /ws on addr and drives the simulation until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux()}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	go s.loop(ctx)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) loop(ctx context.Context) {
	interval := time.Second / time.Duration(s.frameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.commands:
			s.apply(cmd)
		case <-ticker.C:
			s.engine.Step(interval.Seconds())
			s.broadcast()
		}
	}
}

func (s *Server) broadcast() {
	data, err := json.Marshal(s.snapshot())
	if err != nil {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// slow consumer, drop the frame
		}
	}
}

func (s *Server) snapshot() Frame {
	system := s.engine.System()
	frame := Frame{
		Time:   system.Clock(),
		Warp:   s.engine.Warp(),
		Bodies: make([]BodyState, 0, system.NumBodies()),
	}
	for _, b := range system.Bodies() {
		frame.Bodies = append(frame.Bodies, BodyState{
			Name:     b.Name,
			Position: b.Position,
			Velocity: b.Velocity,
			Spin:     b.Spin,
			Radius:   b.Radius,
		})
	}
	return frame
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendQueueSize)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.sender(c)
	s.reader(c)
}

func (s *Server) sender(c *client) {
	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) reader(c *client) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		close(c.send)
		c.conn.Close()
	}()

	for {
		var cmd command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			return
		}
		select {
		case s.commands <- cmd:
		default:
			// command backlog full, drop like a stale frame
		}
	}
}

// apply runs on the loop goroutine between steps, never concurrently
// with Step.
func (s *Server) apply(cmd command) {
	switch cmd.Type {
	case "warp":
		s.engine.SetWarp(cmd.Factor)
	}
}

// NumClients reports connected client count, mainly for logs and tests.
func (s *Server) NumClients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) String() string {
	return fmt.Sprintf("orbit stream (%d fps, %d clients)", s.frameRate, s.NumClients())
}
