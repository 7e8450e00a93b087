package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors bundles the collectors created by Enable
type Collectors struct {
	Commands   *CommandMetricsCollector
	Simulation *SimulationMetricsCollector
}

// Enable initializes the registry, registers every collector plus the Go
// runtime collectors, and installs the global simulation recorder.
func Enable() (*Collectors, error) {
	InitRegistry()

	if err := Registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}
	if err := Registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}

	c := &Collectors{
		Commands:   NewCommandMetricsCollector(),
		Simulation: NewSimulationMetricsCollector(),
	}
	if err := c.Commands.Register(); err != nil {
		return nil, fmt.Errorf("register command metrics: %w", err)
	}
	if err := c.Simulation.Register(); err != nil {
		return nil, fmt.Errorf("register simulation metrics: %w", err)
	}
	SetGlobalSimulationCollector(c.Simulation)
	return c, nil
}

// Server exposes the registry over HTTP for Prometheus to scrape
type Server struct {
	httpServer *http.Server
}

func NewServer(host string, port int, path string) *Server {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry}))
	return &Server{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(host, strconv.Itoa(port)),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (s *Server) Addr() string { return s.httpServer.Addr }

// Start serves in the background. Listen errors are reported on the returned channel.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
