package resilience_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoute/saferoute/internal/provider/resilience"
)

func newRegisteredClient(t *testing.T, registry *resilience.Registry, name string) *resilience.Client {
	t.Helper()
	cfg := resilience.DefaultClientConfig(name)
	cfg.Registry = registry
	return resilience.NewClient(cfg)
}

func TestRegistry_RegisterAndHealth(t *testing.T) {
	registry := resilience.NewRegistry()
	newRegisteredClient(t, registry, "osrm")
	newRegisteredClient(t, registry, "overpass")

	assert.Equal(t, 2, registry.ProviderCount())
	assert.ElementsMatch(t, []string{"osrm", "overpass"}, registry.GetProviderNames())

	health := registry.GetHealth("osrm")
	require.NotNil(t, health)
	assert.Equal(t, "osrm", health.Name)
	assert.True(t, health.IsHealthy())
}

func TestRegistry_GetHealth_Unknown(t *testing.T) {
	registry := resilience.NewRegistry()
	assert.Nil(t, registry.GetHealth("nonexistent"))
}

func TestRegistry_RecordOutcomes(t *testing.T) {
	registry := resilience.NewRegistry()
	newRegisteredClient(t, registry, "gibs")

	registry.RecordSuccess("gibs")
	health := registry.GetHealth("gibs")
	require.NotNil(t, health)
	assert.NotNil(t, health.LastSuccessAt)
	assert.Empty(t, health.LastError)

	registry.RecordFailure("gibs", errors.New("tile fetch failed"))
	health = registry.GetHealth("gibs")
	require.NotNil(t, health)
	assert.NotNil(t, health.LastFailureAt)
	assert.Equal(t, "tile fetch failed", health.LastError)
}

func TestRegistry_GetAllHealth(t *testing.T) {
	registry := resilience.NewRegistry()
	newRegisteredClient(t, registry, "osrm")
	newRegisteredClient(t, registry, "open-meteo")

	all := registry.GetAllHealth()
	assert.Len(t, all, 2)
}

func TestRegistry_Unregister(t *testing.T) {
	registry := resilience.NewRegistry()
	newRegisteredClient(t, registry, "osrm")

	registry.Unregister("osrm")
	assert.Equal(t, 0, registry.ProviderCount())
	assert.Nil(t, registry.GetHealth("osrm"))
}
