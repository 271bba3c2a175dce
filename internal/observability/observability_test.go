package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/betstats/internal/config"
	"github.com/riskibarqy/betstats/internal/platform/logging"
)

func TestStart_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	cases := map[string]config.Config{
		"all off":          {ServiceName: "betstats", AppEnv: config.EnvDev},
		"tracing no dsn":   {UptraceEnabled: true, ServiceName: "betstats", AppEnv: config.EnvProd},
		"profiling absent": {PyroscopeEnabled: false},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			stop, err := Start(cfg, logging.NewNop())
			require.NoError(t, err)
			require.NoError(t, stop(context.Background()))
		})
	}
}

func TestJoin_StopsInReverse(t *testing.T) {
	t.Parallel()

	var order []string
	boom := errors.New("flush failed")
	stop := join([]Stop{
		func(context.Context) error { order = append(order, "tracing"); return boom },
		func(context.Context) error { order = append(order, "profiling"); return nil },
	})

	err := stop(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"profiling", "tracing"}, order)
}

func TestProfilerConfig_Tags(t *testing.T) {
	t.Parallel()

	got := profilerConfig(config.Config{AppEnv: config.EnvProd, ServiceName: "betstats", ServiceVersion: "1.2.0", PyroscopeAppName: "betstats-cli"})
	require.Equal(t, "betstats-cli", got.ApplicationName)
	require.Equal(t, "1.2.0", got.Tags["version"])
	require.Len(t, got.ProfileTypes, 4)
}
