package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"event-service/core/background"
	"event-service/core/config"
	"event-service/core/controller"
	"event-service/core/database"
	"event-service/core/logger"
	"event-service/core/middleware"
	"event-service/modules/event"
	"event-service/modules/notification"
	notificationService "event-service/modules/notification/service"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg       *config.Config
	echo      *echo.Echo
	lane      *background.Lane
	newSender notificationService.SenderFactory
}

type Option func(*Server)

// WithSenderFactory replaces the SMTP transport used by notification jobs.
func WithSenderFactory(f notificationService.SenderFactory) Option {
	return func(s *Server) { s.newSender = f }
}

// New wires every module onto a fresh echo instance.
func New(cfg *config.Config, db *database.Database, opts ...Option) *Server {
	s := &Server{
		cfg:  cfg,
		echo: echo.New(),
		lane: background.NewLane(cfg.NotifyWorkers),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = controller.HTTPErrorHandler

	mw := middleware.NewMiddleware(db, s.lane)
	s.echo.Use(mw.RequestID(), mw.RequestLogger(), mw.Background(), mw.Recover())

	s.echo.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, controller.HealthResponse{Status: "ok"})
	})

	notifier := notification.Init(s.newSender)
	event.Init(s.echo, db, mw, notifier, cfg.SMTP)

	return s
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) Lane() *background.Lane {
	return s.lane
}

// Start serves until ctx is cancelled, then drains in-flight requests and
// waits for notification jobs that were already handed to the lane.
func (s *Server) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server starting", "address", s.cfg.Address())
		if err := s.echo.Start(s.cfg.Address()); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := s.echo.Shutdown(shutdownCtx)

		s.lane.Wait()
		logger.Info("Background jobs finished")
		return err
	})

	return g.Wait()
}

// Run loads configuration, opens the store and serves until ctx is done.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty}); err != nil {
		return err
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Server: close database", "error", err)
		}
	}()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	return New(cfg, db).Start(ctx)
}
