package devserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ledgerdash/ledgerdash/internal/clientenv"
	"github.com/ledgerdash/ledgerdash/internal/config"
	"github.com/ledgerdash/ledgerdash/internal/errors"
	"github.com/ledgerdash/ledgerdash/pkg/middleware"
	"github.com/ledgerdash/ledgerdash/pkg/router"
)

// Internal endpoint paths.
const (
	EnvPath    = "/_ledgerdash/env.json"
	RoutesPath = "/_ledgerdash/routes"
)

const shutdownTimeout = 5 * time.Second

// Options configures the development server.
type Options struct {
	// Config is the project configuration.
	Config *config.Config

	// Table is the route table shell requests are resolved against.
	Table *router.Table

	// Registry receives the server's metrics. A new registry is created
	// when nil.
	Registry *prometheus.Registry

	// TracerProvider supplies tracers. Default: otel.GetTracerProvider().
	TracerProvider trace.TracerProvider

	// Environ is the process environment the client variables are read
	// from. Nil means os.Environ().
	Environ []string

	// Logger is the server logger. Default: slog.Default().
	Logger *slog.Logger

	// OnReload is called after connected pages were told to reload.
	OnReload func(clients int)
}

// Server is the development server.
type Server struct {
	config   *config.Config
	options  Options
	table    *router.Table
	handler  http.Handler
	registry *prometheus.Registry
	metrics  *Metrics
	tracer   trace.Tracer
	logger   *slog.Logger

	reloadServer *ReloadServer
	watcher      *Watcher

	envOptions clientenv.Options
	envMu      sync.RWMutex
	env        clientenv.Env

	mu         sync.Mutex
	running    bool
	httpServer *http.Server
	addr       net.Addr
	ready      chan struct{}
}

// New creates a development server. It collects the client environment
// once; .env changes are picked up by the watcher.
func New(options Options) (*Server, error) {
	cfg := options.Config
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if options.Table == nil {
		return nil, errors.Newf(errors.CategoryServer, "no route table")
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "devserver")

	registry := options.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	tp := options.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	s := &Server{
		config:   cfg,
		options:  options,
		table:    options.Table,
		registry: registry,
		tracer:   tp.Tracer("ledgerdash/devserver"),
		logger:   logger,
		envOptions: clientenv.Options{
			Dir:      cfg.Dir(),
			Mode:     cfg.Mode,
			Prefixes: cfg.EnvPrefix,
			Environ:  options.Environ,
		},
		ready: make(chan struct{}),
	}

	env, err := clientenv.Collect(s.envOptions)
	if err != nil {
		return nil, err
	}
	s.env = env

	if cfg.Metrics.Enabled {
		s.metrics = NewMetrics(registry)
	}

	if cfg.Dev.HotReload {
		s.reloadServer = NewReloadServer(logger)
		s.reloadServer.OnClientCount(s.metrics.setReloadClients)

		paths := []string{cfg.StaticPath()}
		for _, name := range clientenv.Files(cfg.Mode) {
			paths = append(paths, filepath.Join(cfg.Dir(), name))
		}
		s.watcher = NewWatcher(WatcherConfig{
			Paths:  paths,
			Ignore: append(append([]string(nil), DefaultIgnore...), cfg.Dev.Ignore...),
		})
	}

	s.handler = s.routes(tp)
	return s, nil
}

// routes builds the HTTP handler.
func (s *Server) routes(tp trace.TracerProvider) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	if s.config.Metrics.Enabled {
		r.Use(middleware.NewHTTPMetrics(middleware.WithRegistry(s.registry)).Handler)
	}
	r.Use(middleware.OpenTelemetry(
		middleware.WithTracerProvider(tp),
		middleware.WithFilter(func(r *http.Request) bool {
			return !strings.HasPrefix(r.URL.Path, "/_ledgerdash/") && r.URL.Path != s.config.Metrics.Path
		}),
	))
	r.Use(chimw.GetHead)

	if s.reloadServer != nil {
		r.Get(ReloadPath, s.reloadServer.HandleWebSocket)
	}
	r.Get(EnvPath, s.handleEnv)
	r.Get(RoutesPath, s.handleRoutes)
	if s.config.Metrics.Enabled {
		r.Handle(s.config.Metrics.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	r.Get("/*", s.handleApp)

	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Registry returns the registry the server's metrics are registered on.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// SetLogger sets the server logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Env returns the current client environment.
func (s *Server) Env() clientenv.Env {
	s.envMu.RLock()
	defer s.envMu.RUnlock()
	return s.env
}

// Start binds the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config
	ln, err := Listen(cfg.Dev.Host, cfg.Dev.Port, cfg.Dev.StrictPort, cfg.Dev.PortAttempts, s.logger)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or the listener fails. The
// watcher goroutines it starts have exited when it returns.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	var workers sync.WaitGroup
	defer func() {
		cancel()
		workers.Wait()
	}()

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		ln.Close()
		return errors.Newf(errors.CategoryServer, "server already running")
	}
	s.running = true
	s.addr = ln.Addr()
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpServer := s.httpServer
	select {
	case <-s.ready:
	default:
		close(s.ready)
	}
	s.mu.Unlock()

	if s.watcher != nil {
		changes := make(chan Change, 64)
		s.watcher.OnChange(func(change Change) {
			select {
			case changes <- change:
			default:
			}
		})
		workers.Add(2)
		go func() {
			defer workers.Done()
			s.watcher.Start(ctx)
		}()
		go func() {
			defer workers.Done()
			s.processChanges(ctx, changes)
		}()
	}

	s.logger.Info("dev server started",
		"url", "http://"+net.JoinHostPort(s.config.Dev.Host, strconv.Itoa(listenerPort(ln))),
		"mode", s.config.Mode,
		"hot_reload", s.reloadServer != nil,
		"routes", s.table.Len(),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		<-errCh
		return nil
	case err := <-errCh:
		s.Stop()
		if err != nil && err != http.ErrServerClosed {
			return errors.New("E300").WithDetail(err.Error()).Wrap(err)
		}
		return nil
	}
}

// Ready is closed once the server is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.reloadServer != nil {
		s.reloadServer.Close()
	}
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
		}
	}
	s.logger.Info("dev server stopped")
}

// handleApp serves a static file when one exists for the path, otherwise
// the shell.
func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	if file, ok := s.staticFile(r.URL.Path); ok {
		http.ServeFile(w, r, file)
		return
	}

	match, ok := s.resolve(r.Context(), r.URL.Path)

	status := http.StatusOK
	page := shellPage{ReloadScript: s.reloadScript()}
	if ok {
		page.Match = &match
	} else {
		status = http.StatusNotFound
		s.logger.Info("no route matches", "path", r.URL.Path)
	}

	script, err := s.Env().Script()
	if err != nil {
		s.serverError(w, err)
		return
	}
	page.EnvScript = script

	tmpl, err := loadShellTemplate(s.config.StaticPath())
	if err != nil {
		s.serverError(w, err)
		return
	}
	body, err := renderShell(tmpl, page)
	if err != nil {
		s.serverError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write(body)
}

// resolve resolves path against the route table under a span.
func (s *Server) resolve(ctx context.Context, urlPath string) (router.Match, bool) {
	_, span := s.tracer.Start(ctx, "route.resolve",
		trace.WithAttributes(attribute.String("route.path", urlPath)))
	defer span.End()

	start := time.Now()
	match, ok := s.table.Resolve(urlPath)
	elapsed := time.Since(start)

	span.SetAttributes(attribute.Bool("route.matched", ok))
	if ok {
		span.SetAttributes(attribute.String("route.name", match.Name))
		s.logger.Debug("route resolved", "path", urlPath, "route", match.Name, "params", match.Params)
	}
	s.metrics.observeResolve(match.Name, ok, elapsed.Seconds())

	return match, ok
}

// staticFile maps a URL path with an extension to an existing regular file
// under the static directory.
func (s *Server) staticFile(urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	if path.Ext(clean) == "" {
		return "", false
	}
	file := filepath.Join(s.config.StaticPath(), filepath.FromSlash(clean))
	info, err := os.Stat(file)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return file, true
}

func (s *Server) reloadScript() string {
	if s.reloadServer == nil {
		return ""
	}
	return reloadClientScript
}

type routeInfo struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	View     router.View `json:"view"`
	Props    bool        `json:"props"`
	Captures []string    `json:"captures"`
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	routes := s.table.Routes()
	out := make([]routeInfo, 0, len(routes))
	for _, route := range routes {
		info := routeInfo{
			Name:     route.Name,
			Path:     route.Path,
			View:     route.View,
			Props:    route.PropsFromParams,
			Captures: []string{},
		}
		segments, _ := s.table.Segments(route.Name)
		for _, seg := range segments {
			if seg.Kind == router.SegmentCapture {
				info.Captures = append(info.Captures, seg.Value)
			}
		}
		out = append(out, info)
	}
	s.writeJSON(w, out)
}

func (s *Server) handleEnv(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.Env().Values())
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "error", err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.logger.Error("render shell", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// processChanges serializes change handling and coalesces bursts.
func (s *Server) processChanges(ctx context.Context, changeCh <-chan Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-changeCh:
			changes := []Change{change}
			for draining := true; draining; {
				select {
				case next := <-changeCh:
					changes = append(changes, next)
				default:
					draining = false
				}
			}
			s.handleChanges(changes)
		}
	}
}

// handleChanges reloads the client environment on .env changes, reloads
// stylesheets when only CSS changed and reloads pages otherwise.
func (s *Server) handleChanges(changes []Change) {
	if len(changes) == 0 || s.reloadServer == nil {
		return
	}

	var cssFile string
	onlyCSS := true
	for _, change := range changes {
		s.logger.Info("file changed", "path", change.Path, "type", change.Type.String())
		switch change.Type {
		case ChangeEnv:
			onlyCSS = false
			if err := s.reloadEnv(); err != nil {
				s.logger.Error("reload client env", "error", err)
				s.reloadServer.NotifyError(err.Error())
				return
			}
			s.reloadServer.ClearError()
		case ChangeCSS:
			if cssFile == "" {
				cssFile = change.Path
			}
		default:
			onlyCSS = false
		}
	}

	if onlyCSS {
		s.reloadServer.NotifyCSS(cssFile)
		return
	}

	s.reloadServer.NotifyReload()
	clients := s.reloadServer.ClientCount()
	s.logger.Debug("pages reloaded", "clients", clients)
	if s.options.OnReload != nil {
		s.options.OnReload(clients)
	}
}

func (s *Server) reloadEnv() error {
	env, err := clientenv.Collect(s.envOptions)
	if err != nil {
		return err
	}
	s.envMu.Lock()
	s.env = env
	s.envMu.Unlock()
	return nil
}
