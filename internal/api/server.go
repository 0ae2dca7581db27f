package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/alphasign-core/internal/history"
	"github.com/nerrad567/alphasign-core/internal/infrastructure/config"
	"github.com/nerrad567/alphasign-core/internal/infrastructure/logging"
	"github.com/nerrad567/alphasign-core/internal/infrastructure/metrics"
	"github.com/nerrad567/alphasign-core/internal/protocol/alpha"
	"github.com/nerrad567/alphasign-core/internal/sign"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// signCommandTimeout bounds one round trip to the sign from an HTTP handler.
const signCommandTimeout = 30 * time.Second

// ServiceName is reported by the status endpoint.
const ServiceName = "Alpha Sign HTTP Service"

// SignController is the part of *sign.Client the handlers use.
type SignController interface {
	ID() string
	Target() string
	Run(ctx context.Context, a sign.Action, source string) (*alpha.Packet, error)
	IsConnected() bool
	Stats() sign.Stats
}

// ConnectionStatus reports whether an optional dependency is connected.
type ConnectionStatus interface {
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Metrics  config.MetricsConfig
	SignCfg  config.SignConfig // framing for /api/v1/encode
	Logger   *logging.Logger
	Sign     SignController
	History  history.Repository // optional
	MQTT     ConnectionStatus   // optional
	DB       *sql.DB            // optional, pool stats only
	// Collector serves /metrics. Optional.
	Collector   *metrics.Collector
	ExternalHub *Hub // If set, the server uses this hub instead of creating its own
	Version     string
	Now         func() time.Time
}

// Server is the HTTP API server.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	secCfg      config.SecurityConfig
	metricsCfg  config.MetricsConfig
	signCfg     config.SignConfig
	logger      *logging.Logger
	sign        SignController
	history     history.Repository
	mqtt        ConnectionStatus
	db          *sql.DB
	collector   *metrics.Collector
	version     string
	now         func() time.Time
	startTime   time.Time
	server      *http.Server
	hub         *Hub
	externalHub bool               // true if hub was injected externally
	cancel      context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Sign == nil {
		return nil, fmt.Errorf("sign controller is required")
	}
	if deps.Security.JWT.Enabled && deps.Security.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt auth is enabled but no secret is configured")
	}

	s := &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		secCfg:     deps.Security,
		metricsCfg: deps.Metrics,
		signCfg:    deps.SignCfg,
		logger:     deps.Logger,
		sign:       deps.Sign,
		history:    deps.History,
		mqtt:       deps.MQTT,
		db:         deps.DB,
		collector:  deps.Collector,
		version:    deps.Version,
		now:        deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.startTime = s.now()

	if deps.ExternalHub != nil {
		s.hub = deps.ExternalHub
		s.externalHub = true
	} else {
		s.hub = NewHub(s.wsCfg, s.logger)
	}

	return s, nil
}

// Hub returns the WebSocket hub. The hub is a sign.Observer, so callers
// can attach it to the sign client before the listener starts.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub and launches the HTTP
// listener in a background goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	// An injected hub is run by its owner.
	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
