package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
)

const sensorKeyPrefix = "sensor:"

// SensorCache mirrors resolved sensor records per device id, populated
// lazily on registry lookups and invalidated on registry mutations.
type SensorCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSensorCache(client *redis.Client, ttl time.Duration) *SensorCache {
	return &SensorCache{client: client, ttl: ttl}
}

// Get returns the cached sensor, or (nil, nil) on a miss. A corrupt
// entry counts as a miss.
func (c *SensorCache) Get(ctx context.Context, deviceID string) (*domain.Sensor, error) {
	data, err := c.client.Get(ctx, sensorKeyPrefix+deviceID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sensor from cache: %w", err)
	}

	var sensor domain.Sensor
	if err := json.Unmarshal(data, &sensor); err != nil {
		return nil, nil
	}

	return &sensor, nil
}

func (c *SensorCache) Set(ctx context.Context, sensor *domain.Sensor) error {
	data, err := json.Marshal(sensor)
	if err != nil {
		return fmt.Errorf("marshal sensor: %w", err)
	}

	if err := c.client.Set(ctx, sensorKeyPrefix+sensor.DeviceID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set sensor in cache: %w", err)
	}

	return nil
}

func (c *SensorCache) Invalidate(ctx context.Context, deviceID string) error {
	if err := c.client.Del(ctx, sensorKeyPrefix+deviceID).Err(); err != nil {
		return fmt.Errorf("invalidate sensor in cache: %w", err)
	}
	return nil
}
