package denoise

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aural-labs/denoise-go/internal/assets"
	"github.com/aural-labs/denoise-go/internal/conf"
	"github.com/aural-labs/denoise-go/internal/engine"
	"github.com/aural-labs/denoise-go/internal/httpclient"
	"github.com/aural-labs/denoise-go/internal/logging"
	"github.com/aural-labs/denoise-go/internal/observability"
)

// The process-wide acquisition state: created on first use, lives for the
// process duration, no reset primitive. New and Preload share it so their
// flights coalesce; tests substitute isolated registries with WithRegistry.
var (
	processInitOnce sync.Once
	procRegistry    *assets.Registry
	procEngine      engine.Engine
	procMetrics     *observability.Metrics

	serviceLogger *slog.Logger
	loggerOnce    sync.Once
)

func initProcessState() {
	processInitOnce.Do(func() {
		assetConf := conf.Setting().Assets

		clientCfg := httpclient.DefaultConfig()
		if assetConf.TimeoutSeconds > 0 {
			clientCfg.DefaultTimeout = time.Duration(assetConf.TimeoutSeconds) * time.Second
		}
		if assetConf.UserAgent != "" {
			clientCfg.UserAgent = assetConf.UserAgent
		}

		var registryOpts []assets.RegistryOption
		m, err := observability.NewMetrics()
		if err != nil {
			getLogger().Warn("metrics collectors unavailable", "error", err)
		} else {
			procMetrics = m
			registryOpts = append(registryOpts, assets.WithMetrics(m.Assets))
		}

		procEngine = engine.NewTFLiteEngine()
		procRegistry = assets.NewRegistry(
			assets.NewSource(httpclient.New(&clientCfg)),
			procEngine,
			registryOpts...,
		)
	})
}

func processRegistry() *assets.Registry {
	initProcessState()
	return procRegistry
}

func processEngine() engine.Engine {
	initProcessState()
	return procEngine
}

func getLogger() *slog.Logger {
	loggerOnce.Do(func() {
		serviceLogger = logging.ForService("denoise")
	})
	return serviceLogger
}
