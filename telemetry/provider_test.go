package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "missing service name",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "minimal valid",
			cfg:  Config{ServiceName: "svc"},
		},
		{
			name: "unknown tracing exporter",
			cfg: Config{
				ServiceName: "svc",
				Tracing:     TracingConfig{Enabled: true, Exporter: "bogus"},
			},
			wantErr: true,
		},
		{
			name: "sample pct out of range",
			cfg: Config{
				ServiceName: "svc",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.5},
			},
			wantErr: true,
		},
		{
			name: "unknown metrics exporter",
			cfg: Config{
				ServiceName: "svc",
				Metrics:     MetricsConfig{Enabled: true, Exporter: "bogus"},
			},
			wantErr: true,
		},
		{
			name: "unknown log level",
			cfg: Config{
				ServiceName: "svc",
				Logging:     LoggingConfig{Enabled: true, Level: "loud"},
			},
			wantErr: true,
		},
		{
			name: "all enabled valid",
			cfg: Config{
				ServiceName: "svc",
				Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 0.5},
				Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
				Logging:     LoggingConfig{Enabled: true, Level: "debug"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewProvider_DisabledSubsystemsAreNoop(t *testing.T) {
	ctx := context.Background()
	p, err := NewProvider(ctx, Config{ServiceName: "svc"})
	require.NoError(t, err)

	assert.NotNil(t, p.Tracer())
	assert.NotNil(t, p.Meter())
	assert.NotNil(t, p.Logger())
	assert.NoError(t, p.Shutdown(ctx))
	// Shutdown is idempotent.
	assert.NoError(t, p.Shutdown(ctx))
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{})
	assert.Error(t, err)
}

func TestNewConsumerFromProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{ServiceName: "svc"})
	require.NoError(t, err)

	consumer, err := NewConsumerFromProvider(p)
	require.NoError(t, err)
	assert.NotNil(t, consumer)
}
