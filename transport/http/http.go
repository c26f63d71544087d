package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"roombooking/config"
	"roombooking/infras/kafka"
	"roombooking/infras/otel"
	"roombooking/infras/postgres"
	"roombooking/shared/constant"
	"roombooking/transport/http/response"
	"roombooking/transport/http/router"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	_ "roombooking/docs" //nolint:revive

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

type ServerState int32

const (
	ServerStateReady ServerState = iota + 1
	ServerStateInGracePeriod
	ServerStateInCleanupPeriod
)

const (
	readHeaderTimeout = 10 * time.Second
	healthTimeout     = 2 * time.Second
)

type HTTP struct {
	Config *config.Config
	Router router.Router

	db    *postgres.Connection
	kafka kafka.Client
	otel  otel.Otel

	state   atomic.Int32
	once    sync.Once
	handler http.Handler
	server  *http.Server
}

func New(cfg *config.Config, r router.Router, db *postgres.Connection, kafkaClient kafka.Client, ot otel.Otel) *HTTP {
	return &HTTP{
		Config: cfg,
		Router: r,
		db:     db,
		kafka:  kafkaClient,
		otel:   ot,
	}
}

func (h *HTTP) State() ServerState {
	return ServerState(h.state.Load())
}

// Serve blocks until the server has stopped. SIGINT and SIGTERM start the graceful shutdown.
func (h *HTTP) Serve() {
	h.server = &http.Server{
		Addr:              net.JoinHostPort(h.Config.Server.Host, h.Config.Server.Port),
		Handler:           h.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info().Str("port", h.Config.Server.Port).Msg("Starting up HTTP server.")

		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		return h.shutdown()
	})

	if err := group.Wait(); err != nil {
		log.Fatal().Err(err).Msg("HTTP server stopped with error")
	}
}

// Handler builds the routing tree once; the serverless entrypoint reuses it between invocations.
func (h *HTTP) Handler() http.Handler {
	h.once.Do(func() {
		mux := chi.NewRouter()

		h.Router.Middlewares(mux)

		mux.Get("/health", h.health)
		mux.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

		h.Router.SetupRoutes(mux)

		h.handler = otelhttp.NewHandler(mux, h.Config.App.Name)
		h.state.Store(int32(ServerStateReady))
	})

	return h.handler
}

func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Handler().ServeHTTP(w, r)
}

// health reports 503 while draining so the load balancer stops sending traffic before the listener closes.
func (h *HTTP) health(w http.ResponseWriter, r *http.Request) {
	if h.State() != ServerStateReady {
		response.WithPreparingShutdown(w)

		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Health check failed")
		response.WithUnhealthy(w)

		return
	}

	response.WithMessage(w, http.StatusOK, constant.ResponseHealthy)
}

func (h *HTTP) shutdown() error {
	shutdownConfig := h.Config.Server.Shutdown

	log.Info().Msg("Received SIGTERM.")

	if h.Config.Server.Env != constant.ServerEnvDevelopment {
		log.Info().Int64("seconds", shutdownConfig.GracePeriodSeconds).Msg("Entering grace period.")

		h.state.Store(int32(ServerStateInGracePeriod))

		time.Sleep(time.Duration(shutdownConfig.GracePeriodSeconds) * time.Second)
	}

	log.Info().Int64("seconds", shutdownConfig.CleanupPeriodSeconds).Msg("Entering cleanup period.")

	h.state.Store(int32(ServerStateInCleanupPeriod))

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(max(shutdownConfig.CleanupPeriodSeconds, 1))*time.Second)
	defer cancel()

	err := h.server.Shutdown(ctx)

	h.cleanup(ctx)

	log.Info().Msg("Cleaning up completed. Shutting down now.")

	if err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	return nil
}

func (h *HTTP) cleanup(ctx context.Context) {
	if h.kafka != nil {
		if err := h.kafka.Close(); err != nil {
			log.Error().Err(err).Msg("Failed closing kafka writer")
		}
	}

	if h.db != nil {
		h.db.Close()
	}

	otel.Shutdown(ctx, h.otel)
}
