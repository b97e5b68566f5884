// Package rest exposes the gateway over HTTP using fiber.
package rest

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/linguabridge/internal/logging"
	"github.com/dmitrijs2005/linguabridge/internal/server/config"
	"github.com/dmitrijs2005/linguabridge/internal/server/models"
	"github.com/dmitrijs2005/linguabridge/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// multipartOverhead is the room left in the body limit for form fields and
// boundaries around the largest accepted audio file.
const multipartOverhead = 1 << 20

type UserService interface {
	Signup(ctx context.Context, email, password, name string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

type TranslationService interface {
	Translate(ctx context.Context, in services.TranslateInput) (*models.TranslationSession, error)
	History(ctx context.Context, userID string, limit int) ([]*models.TranslationSession, error)
}

type HTTPServer struct {
	app             *fiber.App
	address         string
	appName         string
	shutdownTimeout time.Duration
	users           UserService
	identity        IdentityResolver
	translations    TranslationService
	logger          logging.Logger
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, us UserService, ir IdentityResolver, ts TranslationService) *HTTPServer {
	s := &HTTPServer{
		address:         cfg.EndpointAddrHTTP,
		appName:         cfg.AppName,
		shutdownTimeout: cfg.ShutdownTimeout,
		users:           us,
		identity:        ir,
		translations:    ts,
		logger:          l.With("module", "http_server"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		BodyLimit:             int(cfg.MaxAudioBytes) + multipartOverhead,
		ErrorHandler:          s.handleError,
		DisableStartupMessage: true,
	})

	s.app.Use(requestid.New())
	s.app.Use(s.logRequest)
	s.app.Use(recover.New())
	s.app.Use(cors.New(corsConfig(cfg.AllowedOrigin)))
	s.app.Use(withTimeout(cfg.RequestTimeout))

	s.routes(cfg.APIPrefix)

	return s
}

func (s *HTTPServer) routes(apiPrefix string) {
	s.app.Get("/", s.root)

	auth := s.app.Group("/auth")
	auth.Post("/signup", s.signup)
	auth.Post("/login", s.login)
	auth.Get("/users/me", s.authenticate, s.me)

	api := s.app.Group(apiPrefix, s.authenticate)
	api.Post("/translate", s.translate)
	api.Get("/translations", s.history)
}

func corsConfig(origin string) cors.Config {
	c := cors.Config{
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}
	if origin == "" || origin == "*" {
		c.AllowOrigins = "*"
		return c
	}
	c.AllowOrigins = origin
	c.AllowCredentials = true
	return c
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(s.shutdownTimeout); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
		// unblocks Listener when shutdown raced ahead of serving
		_ = listen.Close()
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	return s.app.Listener(listen)
}
