package otel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docstore/internal/logger"
)

func TestSampler(t *testing.T) {
	cases := map[string]string{
		"always_on":                "AlwaysOnSampler",
		"always_off":               "AlwaysOffSampler",
		"traceidratio":             "TraceIDRatioBased{0.25}",
		"parentbased_traceidratio": "ParentBased{root:TraceIDRatioBased{0.25}",
		"bogus":                    "ParentBased{root:AlwaysOnSampler",
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, sampler(name, "0.25").Description(), want)
		})
	}
}

func TestSamplerBadRatio(t *testing.T) {
	// A ratio of one or more collapses to AlwaysSample.
	assert.Equal(t, "AlwaysOnSampler", sampler("traceidratio", "half").Description())
}

func TestInitDisabled(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")
	var buf bytes.Buffer

	shutdown, err := Init(context.Background(), logger.NewWithWriter(&buf, "info", time.UTC))
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), `"msg":"tracing_configured"`)
	assert.Contains(t, buf.String(), `"tracing_enabled":false`)
	assert.Contains(t, buf.String(), `"component":"tracing"`)
}

func TestInitUnsupportedProtocol(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "false")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "carrier-pigeon")
	var buf bytes.Buffer

	shutdown, err := Init(context.Background(), logger.NewWithWriter(&buf, "info", time.UTC))
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "tracing_init_failed")
	assert.Contains(t, buf.String(), "unsupported OTLP protocol: carrier-pigeon")
}
