package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"termtidy-web/internal/auth"
	"termtidy-web/internal/config"
	"termtidy-web/internal/logging"
	"termtidy-web/internal/routes"
)

// Server wraps the Fiber application setup.
type Server struct {
	app *fiber.App
}

// NewServer configures routes and middleware.
func NewServer(appCfg *config.Config, logger *slog.Logger, verifier auth.TokenVerifier, ctrl routes.Controllers) *Server {
	bodyLimit := appCfg.MaxBodyBytes
	if bodyLimit <= 0 {
		bodyLimit = config.DefaultMaxBodyBytes
	}
	fiberCfg := fiber.Config{
		DisableStartupMessage: true,
		Prefork:               appCfg.FiberPrefork,
		AppName:               "termtidy-web",
		BodyLimit:             bodyLimit,
	}
	app := fiber.New(fiberCfg)
	app.Use(recover.New())
	app.Use(logging.RequestLogger(logger))
	app.Use(auth.Middleware(verifier, appCfg.AuthCookieName, logger))

	routes.Register(app, ctrl)

	return &Server{app: app}
}

// App exposes the underlying Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen runs the server on provided addr.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
