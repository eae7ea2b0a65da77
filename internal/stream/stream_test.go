package stream

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tomz197/balanceball/internal/loop"
	"github.com/tomz197/balanceball/internal/middleware"
	"github.com/tomz197/balanceball/internal/sim"
)

func newTestServer(t *testing.T, limiter *middleware.IPRateLimiter, hub *loop.Hub) string {
	t.Helper()
	srv := httptest.NewServer(NewServer(Options{}, limiter, hub, nil))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if kind != websocket.TextMessage {
		t.Fatalf("message type = %d, want text", kind)
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestJSONFramesAndPause(t *testing.T) {
	conn := dial(t, newTestServer(t, nil, nil))

	first := readJSON(t, conn)
	if first.Status != "running" || first.Width != 800 || first.Height != 600 {
		t.Fatalf("first frame = %+v", first)
	}
	second := readJSON(t, conn)
	if second.Frame <= first.Frame {
		t.Fatalf("frames not advancing: %d then %d", first.Frame, second.Frame)
	}

	if err := conn.WriteJSON(sim.Intent{Pause: true}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 120; i++ {
		if readJSON(t, conn).Paused {
			return
		}
	}
	t.Fatal("pause intent never applied")
}

func TestMsgpackFrames(t *testing.T) {
	conn := dial(t, newTestServer(t, nil, nil)+"?format=msgpack")

	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if kind != websocket.BinaryMessage {
		t.Fatalf("message type = %d, want binary", kind)
	}
	var f Frame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		t.Fatal(err)
	}
	if f.Status != "running" || f.Platform.Width == 0 || f.Fault {
		t.Fatalf("frame = %+v", f)
	}

	in, err := msgpack.Marshal(&sim.Intent{Quit: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, in); err != nil {
		t.Fatal(err)
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.Fatalf("close = %v, want normal closure", err)
			}
			return
		}
	}
}

func TestFaultFramesAndRestart(t *testing.T) {
	g := sim.New(sim.Options{})
	g.Ball.Radius = -1
	var overs int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		p := &player{
			conn:   conn,
			driver: loop.NewDriver(g, nil),
			logger: log.New(io.Discard),
			onOver: func(int) { overs++ },
		}
		now := time.Now()
		if err := p.frame(now); err != nil {
			return
		}
		p.pushIntent(sim.Intent{Restart: true})
		p.frame(now.Add(16 * time.Millisecond))
	}))
	t.Cleanup(srv.Close)
	conn := dial(t, "ws"+strings.TrimPrefix(srv.URL, "http"))

	faulted := readJSON(t, conn)
	if !faulted.Fault {
		t.Fatalf("first frame = %+v, want fault", faulted)
	}
	restarted := readJSON(t, conn)
	if restarted.Fault || restarted.Ball.Radius <= 0 || restarted.Status != "running" {
		t.Fatalf("frame after restart = %+v", restarted)
	}
	if overs != 0 {
		t.Fatalf("game over reported %d times for a faulted frame", overs)
	}
}

func TestConnectionLimit(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(1, 100, time.Second)
	defer limiter.Stop()
	url := newTestServer(t, limiter, nil)

	dial(t, url)
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("second connection from the same IP accepted")
	}
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("resp = %v, want 429", resp)
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	hub := loop.NewHub()
	conn := dial(t, newTestServer(t, nil, hub))
	readJSON(t, conn)

	go hub.Shutdown(5 * time.Second)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
				t.Fatalf("close = %v, want going away", err)
			}
			return
		}
	}
}

func TestIntentLatch(t *testing.T) {
	p := &player{}
	p.pushIntent(sim.Intent{Pause: true, TiltLeft: true})
	p.pushIntent(sim.Intent{TiltRight: true})

	in := p.takeIntent()
	if !in.Pause || in.TiltLeft || !in.TiltRight {
		t.Fatalf("first take = %+v", in)
	}
	in = p.takeIntent()
	if in.Pause || !in.TiltRight {
		t.Fatalf("second take = %+v", in)
	}
}
