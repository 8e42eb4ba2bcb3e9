package devserver

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ledgerdash/ledgerdash/internal/app"
	"github.com/ledgerdash/ledgerdash/internal/config"
)

type testServer struct {
	*Server
	root     string
	recorder *tracetest.SpanRecorder
}

func newTestServer(t *testing.T, configure func(*config.Config)) *testServer {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, config.DefaultStaticDir), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := config.New()
	cfg.Dev.Host = "127.0.0.1"
	if configure != nil {
		configure(cfg)
	}
	if err := cfg.SaveTo(filepath.Join(root, config.ConfigFileName)); err != nil {
		t.Fatal(err)
	}

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	s, err := New(Options{
		Config:         cfg,
		Table:          app.Table(),
		Registry:       prometheus.NewRegistry(),
		TracerProvider: tp,
		Environ:        []string{"VITE_API_URL=http://api.test", "SECRET_TOKEN=hunter2"},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return &testServer{Server: s, root: root, recorder: recorder}
}

func (ts *testServer) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServer_Shell(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.get(t, "/account/42")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /account/42 status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`"name":"AccountDetail"`, `"id":"42"`, "VITE_API_URL", ReloadPath} {
		if !strings.Contains(body, want) {
			t.Errorf("shell missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "hunter2") {
		t.Error("shell leaked a variable without an allowed prefix")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	rec = ts.get(t, "/budgets/2024")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /budgets/2024 status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "window."+RouteGlobalName+"=null;") {
		t.Error("unmatched shell should carry a null route")
	}
}

func TestServer_ShellUsesIndexHTML(t *testing.T) {
	ts := newTestServer(t, nil)
	index := "<html><head><title>Ledger</title></head><body><main id=root></main></body></html>"
	if err := os.WriteFile(filepath.Join(ts.root, "dist", "index.html"), []byte(index), 0644); err != nil {
		t.Fatal(err)
	}

	body := ts.get(t, "/categories").Body.String()
	if !strings.Contains(body, "<title>Ledger</title>") || !strings.Contains(body, `"name":"CategoryManagement"`) {
		t.Errorf("unexpected shell:\n%s", body)
	}
}

func TestServer_StaticFiles(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.Dev.HotReload = false })
	if err := os.MkdirAll(filepath.Join(ts.root, "dist", "assets"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(ts.root, "dist", "assets", "main.js"), []byte("boot()"), 0644); err != nil {
		t.Fatal(err)
	}

	rec := ts.get(t, "/assets/main.js")
	if rec.Code != http.StatusOK || rec.Body.String() != "boot()" {
		t.Errorf("GET /assets/main.js = %d %q", rec.Code, rec.Body.String())
	}

	if _, ok := ts.staticFile("/../" + config.ConfigFileName); ok {
		t.Error("static lookup escaped the static directory")
	}
	if _, ok := ts.staticFile("/assets"); ok {
		t.Error("paths without an extension are never static files")
	}

	rec = ts.get(t, "/account/statement.pdf")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":"statement.pdf"`) {
		t.Errorf("missing asset should fall through to the route table, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), ReloadPath) {
		t.Error("reload script injected with hot reload disabled")
	}
}

func TestServer_EnvEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.get(t, EnvPath)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var values map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &values); err != nil {
		t.Fatal(err)
	}
	if values["VITE_API_URL"] != "http://api.test" || values["MODE"] != "development" || values["DEV"] != true {
		t.Errorf("env = %v", values)
	}
	if _, ok := values["SECRET_TOKEN"]; ok {
		t.Error("env endpoint leaked SECRET_TOKEN")
	}
}

func TestServer_RoutesEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	var routes []routeInfo
	if err := json.Unmarshal(ts.get(t, RoutesPath).Body.Bytes(), &routes); err != nil {
		t.Fatal(err)
	}
	if len(routes) != 4 {
		t.Fatalf("got %d routes, want 4", len(routes))
	}
	detail := routes[1]
	if detail.Name != app.RouteAccountDetail || !detail.Props || len(detail.Captures) != 1 || detail.Captures[0] != "id" {
		t.Errorf("routes[1] = %+v", detail)
	}
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t, nil)

	ts.get(t, "/account/1")
	ts.get(t, "/account/2")
	ts.get(t, "/nowhere")

	if got := testutil.ToFloat64(ts.metrics.resolutions.WithLabelValues(app.RouteAccountDetail, outcomeMatched)); got != 2 {
		t.Errorf("matched resolutions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(ts.metrics.resolutions.WithLabelValues(notFoundRoute, outcomeNotFound)); got != 1 {
		t.Errorf("not found resolutions = %v, want 1", got)
	}

	rec := ts.get(t, config.DefaultMetricsPath)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"ledgerdash_route_resolutions_total", "ledgerdash_http_requests_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.Metrics.Enabled = false })

	if ts.metrics != nil {
		t.Error("metrics registered while disabled")
	}
	if rec := ts.get(t, config.DefaultMetricsPath); rec.Code != http.StatusNotFound {
		t.Errorf("GET /metrics status = %d, want 404 shell", rec.Code)
	}
}

func TestServer_Tracing(t *testing.T) {
	ts := newTestServer(t, nil)

	ts.get(t, "/account/7")
	ts.get(t, EnvPath)

	var resolve sdktrace.ReadOnlySpan
	for _, span := range ts.recorder.Ended() {
		if span.Name() == "route.resolve" {
			resolve = span
		}
		for _, kv := range span.Attributes() {
			if kv.Key == "http.target" && kv.Value.AsString() == EnvPath {
				t.Error("internal endpoints should not be traced")
			}
		}
	}
	if resolve == nil {
		t.Fatal("no route.resolve span recorded")
	}
	if !resolve.Parent().IsValid() {
		t.Error("route.resolve should be a child of the request span")
	}

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range resolve.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs["route.name"].AsString() != app.RouteAccountDetail || !attrs["route.matched"].AsBool() {
		t.Errorf("route.resolve attributes = %v", resolve.Attributes())
	}
}

func TestServer_HandleEnvChanges(t *testing.T) {
	var reloads int
	ts := newTestServer(t, nil)
	ts.options.OnReload = func(int) { reloads++ }

	envFile := filepath.Join(ts.root, ".env")
	if err := os.WriteFile(envFile, []byte("VITE_FEATURE_BUDGETS=on\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ts.handleChanges([]Change{{Path: envFile, Type: ChangeEnv}})

	if v, ok := ts.Env().Get("VITE_FEATURE_BUDGETS"); !ok || v != "on" {
		t.Errorf("VITE_FEATURE_BUDGETS = %q, %v after reload", v, ok)
	}
	if reloads != 1 {
		t.Errorf("reloads = %d, want 1", reloads)
	}

	if err := os.WriteFile(envFile, []byte("VITE-BAD=1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ts.handleChanges([]Change{{Path: envFile, Type: ChangeEnv}})

	if _, ok := ts.Env().Get("VITE_FEATURE_BUDGETS"); !ok {
		t.Error("a broken .env should keep the previous environment")
	}
	if reloads != 1 {
		t.Errorf("reloads = %d, broken .env should not reload pages", reloads)
	}

	ts.handleChanges([]Change{{Path: "dist/app.css", Type: ChangeCSS}})
	if reloads != 1 {
		t.Error("CSS-only changes should not trigger a full reload")
	}
}

func TestServer_ServeLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ts.Serve(ctx, ln) }()

	select {
	case <-ts.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("server not ready")
	}

	resp, err := http.Get("http://" + ts.Addr().String() + "/accounts")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"name":"AccountManagement"`) {
		t.Errorf("GET /accounts = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error: %v", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServer_ServeListenerFailure(t *testing.T) {
	ts := newTestServer(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ln.Close()

	done := make(chan error, 1)
	go func() { done <- ts.Serve(context.Background(), ln) }()

	select {
	case err := <-done:
		if code := errorCode(err); code != "E300" {
			t.Errorf("Serve() error = %v, want E300", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after the listener failed")
	}

	if ts.watcher.IsRunning() {
		t.Error("watcher still running after Serve returned")
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(Options{Config: config.New()}); err == nil {
		t.Error("New() without a table should fail")
	}

	cfg := config.New()
	cfg.Dev.Port = 0
	_, err := New(Options{Config: cfg, Table: app.Table()})
	if code := errorCode(err); code != "E102" {
		t.Errorf("New() with port 0 error = %v, want E102", err)
	}
}
