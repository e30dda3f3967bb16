package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/config"
)

func TestInitTracing_DisabledReturnsProvider(t *testing.T) {
	tp, shutdown, err := InitTracing(context.Background(), config.TracingConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, tp)
	require.NotNil(t, shutdown)

	// The disabled provider still hands out usable tracers.
	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_EnabledRequiresEndpoint(t *testing.T) {
	_, _, err := InitTracing(context.Background(), config.TracingConfig{Enabled: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint")
}
