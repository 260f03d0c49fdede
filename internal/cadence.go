package internal

import (
	"context"
	"fmt"
	"sync"

	"github.com/hbomb79/Cadence/internal/api"
	"github.com/hbomb79/Cadence/internal/convert"
	"github.com/hbomb79/Cadence/internal/ytdlp"
	"github.com/hbomb79/Cadence/pkg/logger"
)

var log = logger.Get("Core")

type (
	RunnableService interface {
		Run(context.Context) error
	}

	// Cadence represents the top-level object for the server, and is
	// responsible for constructing the conversion service and the
	// REST gateway which exposes it.
	Cadence struct {
		config  CadenceConfig
		runner  *ytdlp.ExecRunner
		service *convert.Service
		gateway RunnableService
	}
)

func New(config CadenceConfig) *Cadence {
	log.Emit(logger.DEBUG, "Bootstrapping Cadence services using config: %#v\n", config)

	runner := ytdlp.NewExecRunner(config.ToolConfig)
	service := convert.New(&config.ConvertConfig, config.ToolConfig, runner)

	return &Cadence{
		config:  config,
		runner:  runner,
		service: service,
		gateway: api.NewRestGateway(&config.RestConfig, service, runner),
	}
}

// Service returns the conversion service, for callers which wish to use it
// without serving HTTP.
func (cadence *Cadence) Service() *convert.Service { return cadence.service }

// Run will start the conversion service and the REST gateway. This function
// will not return until Cadence is stopped. To stop Cadence, the provided
// context must be cancelled. A service crash will also stop Cadence, and the
// cause is returned.
func (cadence *Cadence) Run(parent context.Context) error {
	if !cadence.runner.Available() {
		log.Warnf("yt-dlp binary %q could not be found; conversions will fail until it is installed\n", cadence.runner.Binary())
	}

	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	crashHandler := func(label string, err error) {
		log.Emit(logger.FATAL, "Service crash (%s)! %s\n", label, err.Error())
		cancel(fmt.Errorf("%s crashed: %w", label, err))
	}

	wg := &sync.WaitGroup{}
	spawnAsyncService(ctx, wg, cadence.service, "conversion-service", crashHandler)
	spawnAsyncService(ctx, wg, cadence.gateway, "rest-gateway", crashHandler)
	log.Emit(logger.SUCCESS, "Cadence services spawned!\n")

	wg.Wait()

	if cause := context.Cause(ctx); cause != ctx.Err() {
		return cause
	}

	return nil
}

// spawnAsyncService will run the provided service as it's own
// go-routine, ensuring that the service waitgroup is updated correctly
func spawnAsyncService(ctx context.Context, wg *sync.WaitGroup, service RunnableService, serviceLabel string, crashHandler func(string, error)) {
	log.Emit(logger.NEW, "Spawning %s\n", serviceLabel)
	wg.Add(1)

	go func(label string, crash func(string, error)) {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				crash(label, fmt.Errorf("panic %v", r))
			}
		}()

		if err := service.Run(ctx); err != nil {
			crash(label, err)
		}
	}(serviceLabel, crashHandler)
}
