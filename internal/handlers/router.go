package handlers

import (
	"crypto/subtle"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/latoulicious/vtmsu/pkg/logging"
)

// RouterConfig holds the settings the routes depend on
type RouterConfig struct {
	// AdminToken enables the write routes when set
	AdminToken string
	Logger     logging.Logger
}

// NewEcho creates an echo instance with the API routes registered
func NewEcho(h *Handler, cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	Register(e, h, cfg)
	return e
}

// Register wires routes and middleware
func Register(e *echo.Echo, h *Handler, cfg RouterConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = h.logger
	}

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/health", h.Health)
	e.GET("/status", h.Status)

	api := e.Group("/api")
	api.GET("/factions", h.ListFactions)
	api.GET("/factions/:id/clans", h.ListFactionClans)
	api.GET("/clans", h.ListClans)
	api.GET("/clans/:id/abilities", h.ClanAbilities)
	api.GET("/clans/:id/features", h.ClanFeatures)
	api.GET("/rules", h.ListRules)
	api.GET("/posts", h.ListPosts)
	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)
	api.GET("/hunting/instances", h.ListInstances)

	if cfg.AdminToken == "" {
		logger.Warn("Admin token not set, write routes are disabled", nil)
		return
	}

	token := []byte(cfg.AdminToken)
	admin := api.Group("", middleware.KeyAuth(func(key string, c echo.Context) (bool, error) {
		return subtle.ConstantTimeCompare([]byte(key), token) == 1, nil
	}))
	admin.POST("/hunts", h.RecordHunt)
	admin.POST("/characters/:id/verify", h.VerifyCharacter)
	admin.POST("/jobs/:name/run", h.RunJob)
}

func requestLogger(logger logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := map[string]interface{}{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"request_id": v.RequestID,
			}
			switch {
			case v.Error != nil && v.Status >= 500:
				logger.Error("Request failed", v.Error, fields)
				return nil
			case v.Error != nil:
				fields["error"] = v.Error.Error()
				logger.Warn("Request rejected", fields)
				return nil
			}
			logger.Debug("Request served", fields)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
