package api

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Cadence/internal/api/conversions"
	"github.com/hbomb79/Cadence/internal/api/health"
	"github.com/hbomb79/Cadence/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var log = logger.Get("API")

type (
	RestConfig struct {
		HostAddr  string `yaml:"host_address" toml:"host_address" env:"API_HOST_ADDR" env-default:"0.0.0.0:3000" validate:"required"`
		BodyLimit string `yaml:"body_limit" toml:"body_limit" env:"API_BODY_LIMIT" env-default:"64K"`
	}

	controller interface {
		SetRoutes(*echo.Group)
	}

	// ConversionService is the union of everything the controllers
	// require from the conversion service.
	ConversionService interface {
		conversions.Service
		health.Tracker
	}

	// The RestGateway is a thin-wrapper around the Echo HTTP router. It's sole
	// responsibility is to expose the conversion service over HTTP and to
	// render its failures consistently.
	RestGateway struct {
		config               *RestConfig
		ec                   *echo.Echo
		conversionController controller
		healthController     controller
	}
)

// NewRestGateway constructs the Echo router and populates it with all the
// routes defined by the controllers.
func NewRestGateway(config *RestConfig, service ConversionService, tool health.Tool) *RestGateway {
	ec := echo.New()
	ec.OnAddRouteHandler = func(host string, route echo.Route, handler echo.HandlerFunc, middleware []echo.MiddlewareFunc) {
		log.Emit(logger.DEBUG, "Registered new route %s %s\n", route.Method, route.Path)
	}
	ec.HidePort = true
	ec.HideBanner = true
	ec.HTTPErrorHandler = GetHTTPErrorHandler()

	gateway := &RestGateway{
		config:               config,
		ec:                   ec,
		conversionController: conversions.New(validator.New(), service),
		healthController:     health.New(tool, service),
	}

	ec.Use(middleware.Logger())
	ec.Use(middleware.Recover())
	ec.Pre(middleware.AddTrailingSlash())
	if config.BodyLimit != "" {
		ec.Use(middleware.BodyLimit(config.BodyLimit))
	}

	api := ec.Group("/api")
	gateway.conversionController.SetRoutes(api)

	healthGroup := ec.Group("/api/health")
	gateway.healthController.SetRoutes(healthGroup)

	return gateway
}

// ServeHTTP allows the gateway to be used directly as an http.Handler.
func (gateway *RestGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gateway.ec.ServeHTTP(w, r)
}

func (gateway *RestGateway) Run(parentCtx context.Context) error {
	ctx, ctxCancel := context.WithCancelCause(parentCtx)
	defer ctxCancel(nil)
	wg := &sync.WaitGroup{}

	// Start echo router
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Emit(logger.NEW, "Listening on %s\n", gateway.config.HostAddr)
		if err := gateway.ec.Start(gateway.config.HostAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ctxCancel(err)
		}
	}()

	// Start thread to listen for context cancellation
	go func(ec *echo.Echo) {
		<-ctx.Done()
		ec.Close()
	}(gateway.ec)

	wg.Wait()

	// Return cancellation cause if any, otherwise nil as parent context
	// cancellation is not an error case we should report.
	if cause := context.Cause(ctx); cause != ctx.Err() {
		return cause
	}

	return nil
}
