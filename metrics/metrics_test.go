package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverUpdatesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	live := 42
	obs := c.Observer(func() int { return live })

	obs(0, 3*time.Millisecond, 10)
	obs(1, 2*time.Millisecond, 8)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.TicksTotal))
	assert.Equal(t, 18.0, testutil.ToFloat64(c.AgentsStepped))
	assert.Equal(t, 42.0, testutil.ToFloat64(c.AgentsLive))

	count := testutil.CollectAndCount(c.TickDuration, "swarm_tick_duration_seconds")
	assert.Equal(t, 1, count)
}

func TestObserverNilLive(t *testing.T) {
	c := New(prometheus.NewRegistry())
	obs := c.Observer(nil)

	obs(0, time.Millisecond, 5)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.AgentsLive))
}

func TestNewRegistersAll(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	families, err := reg.Gather()
	require.NoError(t, err)

	// Counters and gauges at zero still gather; the histogram does too.
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"swarm_tick_duration_seconds",
		"swarm_ticks_total",
		"swarm_agents_stepped_total",
		"swarm_agents_live",
	} {
		assert.True(t, names[want], "missing family %s", want)
	}
}

func TestHandlerServes(t *testing.T) {
	c := New(prometheus.NewRegistry())
	require.NotNil(t, c.Handler())
}
