/*
PURPOSE:
  Mirrors calibration snapshots into Redis so dashboards and other runs can
  read the latest device state without calling the provider.

REQUIREMENTS:
  User-specified:
  - Optional: only active when a Redis address is configured.

  Implementation-discovered:
  - Keys: <prefix>:latest holds the whole snapshot, <prefix>:device:<name>
    holds one device. Both expire after the configured TTL.
  - A publish replaces what was there; snapshots are never merged.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (calibration collect)
  - Uses: internal/calibration (Snapshot)

ERROR HANDLING:
  - Connection failures surface from Dial (PING).
  - A missing key is ErrNotFound.

USAGE:
  m, err := store.Dial(ctx, cfg.Redis)
  defer m.Close()
  err = m.Publish(ctx, snap)

RELATED FILES:
  - internal/calibration/snapshot.go
*/

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/daryltucker/sabre-bench/internal/calibration"
	"github.com/daryltucker/sabre-bench/internal/config"
	"github.com/go-redis/redis/v8"
)

// ErrNotFound is returned when no snapshot has been published (or it expired).
var ErrNotFound = errors.New("store: snapshot not found")

// DefaultPrefix is used when the config leaves the prefix empty.
const DefaultPrefix = "sabre-bench:calibration"

// RedisMirror publishes snapshots to a Redis instance.
type RedisMirror struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// New wraps an existing client.
func New(rdb *redis.Client, prefix string, ttl time.Duration) *RedisMirror {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisMirror{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Dial connects with cfg and checks the connection.
func Dial(ctx context.Context, cfg config.RedisConfig) (*RedisMirror, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("store: connecting to redis at %s: %w", cfg.Addr, err)
	}
	return New(rdb, cfg.Prefix, cfg.TTL), nil
}

func (m *RedisMirror) Close() error { return m.rdb.Close() }

// LatestKey holds the most recent full snapshot.
func (m *RedisMirror) LatestKey() string { return m.prefix + ":latest" }

// DeviceKey holds the most recent snapshot of one device.
func (m *RedisMirror) DeviceKey(name string) string { return m.prefix + ":device:" + name }

// Publish writes snap and each of its devices in one transaction.
func (m *RedisMirror) Publish(ctx context.Context, snap calibration.Snapshot) error {
	all, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	devices := make(map[string][]byte, len(snap.Devices))
	for name, d := range snap.Devices {
		b, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("store: encoding %s: %w", name, err)
		}
		devices[name] = b
	}

	_, err = m.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, m.LatestKey(), all, m.ttl)
		for name, b := range devices {
			p.Set(ctx, m.DeviceKey(name), b, m.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: publishing snapshot: %w", err)
	}
	return nil
}

// Latest reads back the last published snapshot.
func (m *RedisMirror) Latest(ctx context.Context) (calibration.Snapshot, error) {
	var snap calibration.Snapshot
	err := m.get(ctx, m.LatestKey(), &snap)
	return snap, err
}

// Device reads back one device from the last publish that included it.
func (m *RedisMirror) Device(ctx context.Context, name string) (calibration.DeviceSnapshot, error) {
	var d calibration.DeviceSnapshot
	err := m.get(ctx, m.DeviceKey(name), &d)
	return d, err
}

func (m *RedisMirror) get(ctx context.Context, key string, out any) error {
	b, err := m.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return fmt.Errorf("store: reading %s: %w", key, err)
	}
	return json.Unmarshal(b, out)
}
