// Package observability starts tracing and profiling for one CLI process.
package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/grafana/pyroscope-go"
	"github.com/uptrace/uptrace-go/uptrace"

	"github.com/riskibarqy/betstats/internal/config"
	"github.com/riskibarqy/betstats/internal/platform/logging"
)

// Stop flushes whatever Start enabled.
type Stop func(context.Context) error

// Start enables the exporters the config asks for. When profiling fails to
// start, tracing is shut down again before the error is returned.
func Start(cfg config.Config, logger *logging.Logger) (Stop, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var stops []Stop
	if cfg.UptraceEnabled && cfg.UptraceDSN != "" {
		uptrace.ConfigureOpentelemetry(
			uptrace.WithDSN(cfg.UptraceDSN),
			uptrace.WithServiceName(cfg.ServiceName),
			uptrace.WithServiceVersion(cfg.ServiceVersion),
			uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		)
		stops = append(stops, uptrace.Shutdown)
		logger.Info("tracing enabled", "exporter", "uptrace", "version", cfg.ServiceVersion)
	}

	if cfg.PyroscopeEnabled {
		profiler, err := pyroscope.Start(profilerConfig(cfg))
		if err != nil {
			_ = join(stops)(context.Background())
			return nil, fmt.Errorf("start pyroscope: %w", err)
		}
		stops = append(stops, func(context.Context) error { return profiler.Stop() })
		logger.Info("profiling enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	}

	return join(stops), nil
}

// profilerConfig collects CPU, heap and goroutine profiles.
func profilerConfig(cfg config.Config) pyroscope.Config {
	return pyroscope.Config{
		ApplicationName: cfg.PyroscopeAppName,
		ServerAddress:   cfg.PyroscopeServerAddress,
		AuthToken:       cfg.PyroscopeAuthToken,
		UploadRate:      cfg.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":     cfg.AppEnv,
			"service": cfg.ServiceName,
			"version": cfg.ServiceVersion,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	}
}

// join stops in reverse start order.
func join(stops []Stop) Stop {
	return func(ctx context.Context) error {
		var errs []error
		for i := len(stops) - 1; i >= 0; i-- {
			errs = append(errs, stops[i](ctx))
		}
		return errors.Join(errs...)
	}
}
