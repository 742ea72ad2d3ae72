package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/orbitsim/internal/body"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/orbit"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/vec"
)

func testServer() *Server {
	s := orbit.New()
	s.SetG(1.0)
	s.AddBody(body.New("central", 100, 1, "", "", vec.Vec3{}, vec.Vec3{}, 0, 0))
	s.AddBody(body.New("probe", 0, 1, "", "", vec.Vec3{X: 10}, vec.Vec3{Z: 1}, 0, 0))
	engine := sim.New(s, config.WarpConf{Factor: 1, Min: 0.01, Max: 100})
	return New(engine, 30)
}

func dial(t *testing.T, srv *Server) (*websocket.Conn, func()) {
	t.Helper()
	ts := httptest.NewServer(srv.mux())
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		ts.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close()
		ts.Close()
	}
}

func TestSnapshotListsBodies(t *testing.T) {
	srv := testServer()
	frame := srv.snapshot()

	if len(frame.Bodies) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(frame.Bodies))
	}
	if frame.Bodies[1].Name != "probe" || frame.Bodies[1].Position.X != 10 {
		t.Errorf("unexpected body state: %+v", frame.Bodies[1])
	}
	if frame.Warp != 1 {
		t.Errorf("warp = %f, expected 1", frame.Warp)
	}
}

func TestBroadcastReachesClient(t *testing.T) {
	srv := testServer()
	conn, cleanup := dial(t, srv)
	defer cleanup()

	waitForClients(t, srv, 1)
	srv.broadcast()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}

	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("frame does not parse: %v", err)
	}
	if len(frame.Bodies) != 2 {
		t.Errorf("expected 2 bodies in frame, got %d", len(frame.Bodies))
	}
}

func TestWarpCommand(t *testing.T) {
	srv := testServer()
	conn, cleanup := dial(t, srv)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.loop(ctx)

	waitForClients(t, srv, 1)
	if err := conn.WriteJSON(command{Type: "warp", Factor: 8}); err != nil {
		t.Fatalf("send command: %v", err)
	}

	// the loop applies commands between steps; watch the broadcast
	// frames rather than reaching into the engine
	waitForWarp(t, conn, 8)
}

func TestWarpCommandsWhileStreaming(t *testing.T) {
	srv := testServer()
	conn, cleanup := dial(t, srv)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.loop(ctx)

	waitForClients(t, srv, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			factor := float64(1 + i%50)
			if err := conn.WriteJSON(command{Type: "warp", Factor: factor}); err != nil {
				return
			}
		}
	}()

	// keep draining frames while the commands pour in
	deadline := time.Now().Add(5 * time.Second)
	for {
		select {
		case <-done:
			if err := conn.WriteJSON(command{Type: "warp", Factor: 64}); err != nil {
				t.Fatalf("send final command: %v", err)
			}
			waitForWarp(t, conn, 64)
			return
		default:
		}
		if time.Now().After(deadline) {
			t.Fatal("command sender did not finish")
		}
		conn.SetReadDeadline(time.Now().Add(time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Fatalf("read frame: %v", err)
		}
	}
}

// waitForWarp reads frames until one reports the wanted warp factor,
// re-sending the command in case the backlog dropped it.
func waitForWarp(t *testing.T, conn *websocket.Conn, want float64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatalf("no frame reported warp %f", want)
		}
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		if frame.Warp == want {
			return
		}
		if err := conn.WriteJSON(command{Type: "warp", Factor: want}); err != nil {
			t.Fatalf("re-send command: %v", err)
		}
	}
}

func TestClientRemovedOnClose(t *testing.T) {
	srv := testServer()
	conn, cleanup := dial(t, srv)
	defer cleanup()

	waitForClients(t, srv, 1)
	conn.Close()
	waitForClients(t, srv, 0)
}

func waitForClients(t *testing.T, srv *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for srv.NumClients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, expected %d", srv.NumClients(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
