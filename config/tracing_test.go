package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOTLPEndpoint(t *testing.T) {
	cases := []struct {
		raw      string
		hostport string
		path     string
		insecure bool
	}{
		{"http://collector:4318", "collector:4318", "/v1/traces", true},
		{"https://otel.example.com/custom", "otel.example.com", "/custom", false},
		{"collector:4318", "collector:4318", "/v1/traces", true},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			hostport, path, insecure, err := parseOTLPEndpoint(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.hostport, hostport)
			assert.Equal(t, tc.path, path)
			assert.Equal(t, tc.insecure, insecure)
		})
	}
}

func TestParseOTLPEndpoint_Rejects(t *testing.T) {
	for _, raw := range []string{"", "grpc://collector:4317", "collector:4318/v1/traces"} {
		t.Run(raw, func(t *testing.T) {
			_, _, _, err := parseOTLPEndpoint(raw)
			assert.Error(t, err)
		})
	}
}

func TestSetupTracing_DisabledReturnsNilShutdown(t *testing.T) {
	t.Setenv("OTEL_TRACES_ENABLED", "false")

	shutdown, err := SetupTracing(quietLogger())
	require.NoError(t, err)
	assert.Nil(t, shutdown)
}

func TestNewTracingConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_TRACES_ENABLED", "true")
	t.Setenv("OTEL_SERVICE_NAME", "waitlist-api")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_TRACES_SAMPLER_RATIO", "0.1")
	t.Setenv("APP_ENV", "staging")

	cfg := NewTracingConfigFromEnv()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "waitlist-api", cfg.ServiceName)
	assert.Equal(t, "http://localhost:4318", cfg.Endpoint)
	assert.Equal(t, 0.1, cfg.SampleRatio)
	assert.Len(t, cfg.resourceAttributes(), 2)
}

func TestSetupTracing_RejectsBadEndpoint(t *testing.T) {
	_, err := setupTracing(context.Background(), quietLogger(), &TracingConfig{
		Enabled:     true,
		ServiceName: "waitlist-api",
		Endpoint:    "grpc://collector:4317",
		SampleRatio: 1,
	})
	assert.Error(t, err)
}
