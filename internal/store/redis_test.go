package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/daryltucker/sabre-bench/internal/calibration"
	"github.com/daryltucker/sabre-bench/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	m := New(nil, "", time.Hour)
	assert.Equal(t, "sabre-bench:calibration:latest", m.LatestKey())
	assert.Equal(t, "sabre-bench:calibration:device:ibm_kyiv", m.DeviceKey("ibm_kyiv"))

	m = New(nil, "lab", 0)
	assert.Equal(t, "lab:latest", m.LatestKey())
}

func TestDialUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Dial(ctx, config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.ErrorContains(t, err, "127.0.0.1:1")
}

// Needs a live server: SABRE_BENCH_REDIS_ADDR=localhost:6379 go test ./internal/store
func TestPublishRoundTrip(t *testing.T) {
	addr := os.Getenv(config.EnvRedisAddr)
	if addr == "" {
		t.Skip(config.EnvRedisAddr + " not set")
	}
	ctx := context.Background()
	prefix := "sabre-bench-test:" + t.Name()
	m, err := Dial(ctx, config.RedisConfig{Addr: addr, Prefix: prefix, TTL: time.Minute})
	require.NoError(t, err)
	defer m.Close()
	defer m.rdb.Del(ctx, m.LatestKey(), m.DeviceKey("ibm_a"))

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	snap := calibration.Snapshot{
		CollectedAt: at,
		Devices: map[string]calibration.DeviceSnapshot{
			"ibm_a": {
				Operational: true,
				PendingJobs: 4,
				Source:      calibration.SourceLive,
				Qubits:      []calibration.QubitMetrics{{Qubit: 0, T1: calibration.Measured(1e-4)}},
				CollectedAt: at,
			},
		},
	}
	require.NoError(t, m.Publish(ctx, snap))

	back, err := m.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, at.Equal(back.CollectedAt))
	assert.Equal(t, 4, back.Devices["ibm_a"].PendingJobs)

	d, err := m.Device(ctx, "ibm_a")
	require.NoError(t, err)
	assert.Equal(t, "1.00e-04", d.Qubits[0].T1.String())

	ttl, err := m.rdb.TTL(ctx, m.LatestKey()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	_, err = m.Device(ctx, "ibm_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
