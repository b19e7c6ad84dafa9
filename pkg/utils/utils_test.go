package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOTelSampleRatio(t *testing.T) {
	cases := map[string]float64{
		"":     1,
		"0.25": 0.25,
		"-1":   0,
		"7":    1,
		"abc":  1,
	}

	for raw, want := range cases {
		t.Run(raw, func(t *testing.T) {
			t.Setenv("OTEL_TRACES_SAMPLER_RATIO", raw)
			assert.Equal(t, want, OTelSampleRatio())
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("FLAG", "")
	assert.True(t, GetEnvBool("FLAG", true))

	t.Setenv("FLAG", "false")
	assert.False(t, GetEnvBool("FLAG", true))

	t.Setenv("FLAG", "maybe")
	assert.False(t, GetEnvBool("FLAG", false))
}

func TestOTelServiceName_Default(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "  ")
	assert.Equal(t, "trustlink-waitlist", OTelServiceName())
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("RATIO", " 0.5 ")
	assert.Equal(t, 0.5, GetEnvFloat("RATIO", 1))

	t.Setenv("RATIO", "half")
	assert.Equal(t, 1.0, GetEnvFloat("RATIO", 1))
}

func TestIsTracingEnabled(t *testing.T) {
	t.Setenv("OTEL_TRACES_ENABLED", "")
	assert.False(t, IsTracingEnabled())

	t.Setenv("OTEL_TRACES_ENABLED", "true")
	assert.True(t, IsTracingEnabled())
}

func TestGetEnvPositiveInt64(t *testing.T) {
	t.Setenv("LIMIT", "2048")
	assert.Equal(t, int64(2048), GetEnvPositiveInt64("LIMIT", 10))

	for _, raw := range []string{"", "0", "-5", "lots"} {
		t.Setenv("LIMIT", raw)
		assert.Equal(t, int64(10), GetEnvPositiveInt64("LIMIT", 10), raw)
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("ORIGINS", " https://a.example , ,https://b.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, GetEnvList("ORIGINS"))

	t.Setenv("ORIGINS", "")
	assert.Empty(t, GetEnvList("ORIGINS"))
}
