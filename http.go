package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const (
	AppName    = "Auth Lab API"
	AppVersion = "1.0.0"
)

// RouteConfig controls how the API routes are mounted
type RouteConfig struct {
	// Prefix the users and auth groups are mounted under, "/api" by default
	Prefix string
	// AuthRateLimit is the number of register/login requests per IP and
	// window, zero disables the limiter
	AuthRateLimit   int
	RateLimitWindow time.Duration
}

// AppConfig holds the fiber app settings
type AppConfig struct {
	RouteConfig
	CORSOrigins  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewApp builds the fiber app with the shared middleware stack and routes
func NewApp(cfg AppConfig, ctrl *Controller, ts TokenService, logger Logger) *fiber.App {
	logger = normalizeLogger(logger)

	app := fiber.New(fiber.Config{
		AppName:      AppName,
		ErrorHandler: NewErrorHandler(logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	origins := cfg.CORSOrigins
	if origins == "" {
		origins = "*"
	}

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(RequestLogger(logger))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": AppName,
			"version": AppVersion,
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	RegisterRoutes(app, ctrl, ts, cfg.RouteConfig)

	return app
}

// RegisterRoutes mounts the users and auth routes on r
func RegisterRoutes(r fiber.Router, ctrl *Controller, ts TokenService, cfg RouteConfig) {
	prefix := normalizePrefix(cfg.Prefix)
	api := r
	if prefix != "" {
		api = r.Group(prefix)
	}

	users := api.Group("/users")
	users.Post("/register", withRateLimit(cfg,
		ValidateBody[RegisterRequest](),
		ctrl.RegisterUser,
	)...)
	users.Post("/login", withRateLimit(cfg,
		ValidateBody[LoginRequest](),
		ctrl.LoginUser,
	)...)
	users.Get("/", ctrl.ListUsers)
	users.Put("/:id",
		ValidateIDParam("id"),
		ValidateBody[UpdateUserRequest](),
		ctrl.UpdateUser,
	)
	users.Delete("/:id",
		ValidateIDParam("id"),
		ctrl.DeleteUser,
	)

	authGroup := api.Group("/auth")
	authGroup.Get("/profile", ProtectedRoute(ts), ctrl.Profile)
	authGroup.Post("/logout", ProtectedRoute(ts), ctrl.Logout)
	authGroup.Post("/token/refresh", ctrl.RefreshToken)
}

func withRateLimit(cfg RouteConfig, handlers ...fiber.Handler) []fiber.Handler {
	if cfg.AuthRateLimit <= 0 {
		return handlers
	}

	window := cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}

	limit := limiter.New(limiter.Config{
		Max:        cfg.AuthRateLimit,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(http.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	})

	return append([]fiber.Handler{limit}, handlers...)
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || prefix == "/" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return strings.TrimSuffix(prefix, "/")
}

// RequestLogger logs one line per request. Errors are resolved here
// through the app error handler so the logged status is the sent one.
func RequestLogger(logger Logger) fiber.Handler {
	logger = normalizeLogger(logger)
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(http.StatusInternalServerError)
			}
		}

		rid, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		logger.Info("http request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"latency", time.Since(start).String(),
			"request_id", rid,
		)
		return nil
	}
}
