// Package cache keeps computed estimates keyed by their full input, so a
// customer re-submitting the same form is answered without recomputation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/landclear/quote-planner/internal/estimation"
	"github.com/landclear/quote-planner/internal/geo"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "quote-planner:estimate:"

var ErrMiss = errors.New("cache miss")

type EstimateCache interface {
	// Get returns ErrMiss when nothing is stored under key.
	Get(ctx context.Context, key string) (*estimation.Estimate, error)
	Set(ctx context.Context, key string, est *estimation.Estimate) error
}

// Key hashes every input that can change the estimate. Tag order and case do
// not change the key, and coordinates are compared at six decimals. Distance
// is kept exact because zone boundaries are classified on the raw value.
func Key(loc estimation.PropertyLocation, params estimation.ProjectParameters) string {
	canonical := struct {
		Lat            float64                  `json:"lat"`
		Lng            float64                  `json:"lng"`
		Verified       bool                     `json:"verified"`
		PropertyType   *estimation.PropertyType `json:"propertyType"`
		Accessibility  *int                     `json:"accessibility"`
		DistanceMeters float64                  `json:"distance"`
		DriveTime      int                      `json:"driveTime"`
		Acreage        float64                  `json:"acreage"`
		Package        estimation.PackageType   `json:"package"`
		Urgency        estimation.UrgencyTier   `json:"urgency"`
		Obstacles      []string                 `json:"obstacles"`
		AccessConcerns []string                 `json:"accessConcerns"`
		Boundary       *geo.BoundingBox         `json:"boundary"`
	}{
		Lat:            round6(loc.Coordinates.Lat),
		Lng:            round6(loc.Coordinates.Lng),
		Verified:       loc.Verified,
		PropertyType:   loc.PropertyType,
		Accessibility:  loc.AccessibilityScore,
		DistanceMeters: loc.DistanceMeters,
		DriveTime:      loc.DriveTimeSeconds,
		Acreage:        params.Acreage,
		Package:        params.Package,
		Urgency:        params.Urgency,
		Obstacles:      nonNil(estimation.NormalizeTags(params.Obstacles)),
		AccessConcerns: nonNil(estimation.NormalizeTags(params.AccessConcerns)),
		Boundary:       params.Boundary,
	}

	// NaN inputs fail to marshal and all share one key; the estimator
	// rejects them before anything is stored.
	data, _ := json.Marshal(canonical)
	sum := sha256.Sum256(data)
	return keyPrefix + hex.EncodeToString(sum[:])
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// RedisCache stores estimates as JSON with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// NewRedisCacheFromAddr dials addr and checks the connection.
func NewRedisCacheFromAddr(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewRedisCache(client, ttl), nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*estimation.Estimate, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to read estimate %s: %w", key, err)
	}

	var est estimation.Estimate
	if err := json.Unmarshal(data, &est); err != nil {
		return nil, fmt.Errorf("failed to decode estimate %s: %w", key, err)
	}
	return &est, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, est *estimation.Estimate) error {
	data, err := json.Marshal(est)
	if err != nil {
		return fmt.Errorf("failed to encode estimate: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store estimate %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*estimation.Estimate, error) {
	return nil, ErrMiss
}

func (NoopCache) Set(context.Context, string, *estimation.Estimate) error {
	return nil
}
