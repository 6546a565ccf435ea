package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/architeacher/storefront-gateway/pkg/circuitbreaker"
)

type ServiceCtx struct {
	deps            *dependencies
	shutdownChannel chan os.Signal
	serverCtx       context.Context
	serverStopFunc  context.CancelFunc
	serverReady     chan struct{}
	serveErrors     chan error
}

// listening pairs a server with the listener bound for it.
type listening struct {
	name     string
	server   *http.Server
	listener net.Listener
}

func New(opts ...ServiceOption) *ServiceCtx {
	ctx := &ServiceCtx{
		shutdownChannel: make(chan os.Signal, 1),
	}

	for _, opt := range opts {
		opt(ctx)
	}

	return ctx
}

// Run builds the gateway, serves until a termination signal or a server
// failure, then drains both servers and releases every dependency.
func (c *ServiceCtx) Run() error {
	if err := c.build(); err != nil {
		return fmt.Errorf("building service: %w", err)
	}

	bound, err := c.listen()
	if err != nil {
		c.serverStopFunc()

		return errors.Join(err, c.deps.releaseResources(context.Background()))
	}

	c.serve(bound)
	c.shutdownHook()
	c.monitorConfigChanges()

	var serveErr error

	select {
	case <-c.serverCtx.Done():
	case <-c.shutdownChannel:
	case serveErr = <-c.serveErrors:
		c.deps.infra.logger.Error().Err(serveErr).Msg("http server stopped unexpectedly")
	}

	signal.Stop(c.shutdownChannel)

	return errors.Join(serveErr, c.shutdown())
}

func (c *ServiceCtx) build() error {
	c.serverCtx, c.serverStopFunc = context.WithCancel(context.Background())

	var err error

	c.deps, err = initializeDependencies(c.serverCtx)
	if err != nil {
		c.serverStopFunc()

		return fmt.Errorf("initializing dependencies: %w", err)
	}

	return nil
}

// listen binds the gateway and admin listeners before anything is served.
func (c *ServiceCtx) listen() ([]listening, error) {
	servers := []listening{{name: "gateway", server: c.deps.infra.publicHttpServer}}
	if c.deps.infra.adminHttpServer != nil {
		servers = append(servers, listening{name: "admin", server: c.deps.infra.adminHttpServer})
	}

	for i := range servers {
		listener, err := net.Listen("tcp", servers[i].server.Addr)
		if err != nil {
			for _, bound := range servers[:i] {
				_ = bound.listener.Close()
			}

			return nil, fmt.Errorf("listening for the %s server on %s: %w", servers[i].name, servers[i].server.Addr, err)
		}

		servers[i].listener = listener
	}

	return servers, nil
}

func (c *ServiceCtx) serve(bound []listening) {
	c.serveErrors = make(chan error, len(bound))

	for _, l := range bound {
		c.deps.infra.logger.Info().
			Str("server", l.name).
			Str("address", l.listener.Addr().String()).
			Msg("starting http server")

		go func(l listening) {
			if err := l.server.Serve(l.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				c.serveErrors <- fmt.Errorf("%s server: %w", l.name, err)
			}
		}(l)
	}

	cfg := c.deps.config
	c.deps.infra.logger.Info().
		Int("routes", len(c.deps.routing.table.Routes())).
		Int("breakers", len(c.deps.routing.breakers.Snapshots())).
		Bool("auth", cfg.Auth.Enabled).
		Bool("rate_limiting", cfg.ThrottledRateLimiting.Enabled).
		Str("rate_limit_store", cfg.ThrottledRateLimiting.Store).
		Msg("gateway is accepting traffic")

	if c.serverReady != nil {
		close(c.serverReady)
	}
}

func (c *ServiceCtx) monitorConfigChanges() {
	if c.deps.configLoader == nil {
		return
	}

	reloadErrors := c.deps.configLoader.WatchConfigSignals(c.serverCtx)
	go func() {
		for err := range reloadErrors {
			if err != nil {
				c.deps.infra.logger.Error().Err(err).Msg("config reload failed")
			} else {
				c.deps.infra.logger.Info().Msg("secrets reloaded from Vault")
			}
		}
	}()
}

func (c *ServiceCtx) shutdownHook() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
}

// shutdown drains the gateway before the admin server, then releases the
// remaining dependencies.
func (c *ServiceCtx) shutdown() error {
	log := c.deps.infra.logger
	log.Info().Msg("shutting down service...")

	c.serverStopFunc()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.deps.config.PublicHTTPServer.ShutdownTimeout)
	defer cancel()

	var errs []error

	if err := c.deps.infra.publicHttpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("draining the gateway server: %w", err))
	}

	if admin := c.deps.infra.adminHttpServer; admin != nil {
		if err := admin.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("draining the admin server: %w", err))
		}
	}

	c.reportBreakers()

	if err := c.deps.releaseResources(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		log.Error().Err(err).Msg("service shutdown finished with errors")

		return err
	}

	log.Info().Msg("service shutdown complete")

	return nil
}

// reportBreakers logs every breaker that is not closed at shutdown.
func (c *ServiceCtx) reportBreakers() {
	for _, snapshot := range c.deps.routing.breakers.Snapshots() {
		if snapshot.State == circuitbreaker.StateClosed || snapshot.State == circuitbreaker.StateDisabled {
			continue
		}

		c.deps.infra.logger.Warn().
			Str("breaker", snapshot.Name).
			Str("state", snapshot.State.String()).
			Uint32("consecutive_failures", snapshot.ConsecutiveFailures).
			Msg("circuit breaker not closed at shutdown")
	}
}

// WaitForServer blocks until both listeners are bound and serving.
// The service has to be created with WithWaitingForServer.
//
// Example:
//
//	srv := runtime.New(runtime.WithWaitingForServer())
//	go func() {
//		_ = srv.Run()
//	}()
//
//	srv.WaitForServer()
func (c *ServiceCtx) WaitForServer() {
	if c.serverReady != nil {
		<-c.serverReady
	}
}
