package devserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func dialReload(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + ReloadPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) ReloadMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error: %v", err)
	}
	var msg ReloadMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("invalid message %q: %v", data, err)
	}
	return msg
}

func TestReloadServer_ClientCount(t *testing.T) {
	rs := NewReloadServer(nil)
	if rs.ClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", rs.ClientCount())
	}
}

func TestReloadServer_Broadcast(t *testing.T) {
	rs := NewReloadServer(nil)
	metrics := NewMetrics(prometheus.NewRegistry())
	rs.OnClientCount(metrics.setReloadClients)

	mux := http.NewServeMux()
	mux.HandleFunc(ReloadPath, rs.HandleWebSocket)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	first := dialReload(t, srv)
	second := dialReload(t, srv)
	waitFor(t, "two clients", func() bool { return rs.ClientCount() == 2 })

	if got := testutil.ToFloat64(metrics.reloadClients); got != 2 {
		t.Errorf("reload_clients = %v, want 2", got)
	}

	rs.NotifyCSS("/styles/app.css")
	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		if msg.Type != ReloadTypeCSS || msg.File != "/styles/app.css" {
			t.Errorf("message = %+v, want css /styles/app.css", msg)
		}
	}

	rs.NotifyError(".env: unexpected character")
	if msg := readMessage(t, first); msg.Type != ReloadTypeError || msg.Error == "" {
		t.Errorf("message = %+v, want error", msg)
	}

	first.Close()
	waitFor(t, "one client", func() bool { return rs.ClientCount() == 1 })

	rs.Close()
	if rs.ClientCount() != 0 {
		t.Errorf("ClientCount() after Close = %d", rs.ClientCount())
	}
	if got := testutil.ToFloat64(metrics.reloadClients); got != 0 {
		t.Errorf("reload_clients after Close = %v, want 0", got)
	}
}

func TestReloadMessage_JSON(t *testing.T) {
	data, err := json.Marshal(ReloadMessage{Type: ReloadTypeFull})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"reload"}` {
		t.Errorf("JSON = %s", data)
	}
}

func TestReloadClientScript(t *testing.T) {
	if !strings.HasPrefix(reloadClientScript, "<script>") {
		t.Error("client script should be a script element")
	}
	if !strings.Contains(reloadClientScript, ReloadPath) {
		t.Error("client script should connect to the reload path")
	}
}
