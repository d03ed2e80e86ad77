package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saviobatista/ais-logger/internal/types"
)

// Key lifetimes
const (
	VoyageTTL            = 24 * time.Hour
	VesselStateTTL       = 1 * time.Hour
	VesselTTL            = 7 * 24 * time.Hour
	DefaultStaticPartTTL = 10 * time.Minute
)

// RedisClientInterface defines the Redis operations used by our client
type RedisClientInterface interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Client manages Redis connections and operations
type Client struct {
	client        RedisClientInterface
	staticPartTTL time.Duration
}

// New creates a new Redis client
func New(addr string) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client), nil
}

// NewWithClient creates a new Redis client with a custom RedisClientInterface (useful for testing)
func NewWithClient(client RedisClientInterface) *Client {
	return &Client{client: client, staticPartTTL: DefaultStaticPartTTL}
}

// SetStaticPartTTL sets how long a type 24 part waits for its sibling
func (c *Client) SetStaticPartTTL(ttl time.Duration) {
	c.staticPartTTL = ttl
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

func voyageKey(mmsi uint32) string {
	return fmt.Sprintf("voyage:%d", mmsi)
}

func stateKey(mmsi uint32) string {
	return fmt.Sprintf("state:%d", mmsi)
}

func vesselKey(mmsi uint32) string {
	return fmt.Sprintf("vessel:%d", mmsi)
}

func staticPartKey(mmsi uint32, partNumber uint8) string {
	return fmt.Sprintf("static:%d:%d", mmsi, partNumber)
}

func ignoreKey(mmsi uint32) string {
	return fmt.Sprintf("ignore:%d", mmsi)
}

// setData marshals value and stores it under key
func (c *Client) setData(ctx context.Context, key string, value interface{}, ttl time.Duration, dataType string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", dataType, err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store %s: %w", dataType, err)
	}
	return nil
}

// getData retrieves data from Redis and unmarshals it into the target.
// It reports false when the key does not exist.
func (c *Client) getData(ctx context.Context, key string, target interface{}, dataType string) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s data: %w", dataType, err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s data: %w", dataType, err)
	}

	return true, nil
}

// StoreVoyage stores an active voyage
func (c *Client) StoreVoyage(ctx context.Context, voyage *types.Voyage) error {
	return c.setData(ctx, voyageKey(voyage.MMSI), voyage, VoyageTTL, "voyage")
}

// GetVoyage retrieves the active voyage of a vessel, or nil
func (c *Client) GetVoyage(ctx context.Context, mmsi uint32) (*types.Voyage, error) {
	var voyage types.Voyage
	found, err := c.getData(ctx, voyageKey(mmsi), &voyage, "voyage")
	if err != nil || !found {
		return nil, err
	}
	return &voyage, nil
}

// DeleteVoyage removes the active voyage of a vessel
func (c *Client) DeleteVoyage(ctx context.Context, mmsi uint32) error {
	return c.client.Del(ctx, voyageKey(mmsi)).Err()
}

// StoreVesselState stores the latest state of a vessel
func (c *Client) StoreVesselState(ctx context.Context, state *types.VesselState) error {
	return c.setData(ctx, stateKey(state.MMSI), state, VesselStateTTL, "vessel state")
}

// GetVesselState retrieves the latest state of a vessel, or nil
func (c *Client) GetVesselState(ctx context.Context, mmsi uint32) (*types.VesselState, error) {
	var state types.VesselState
	found, err := c.getData(ctx, stateKey(mmsi), &state, "vessel state")
	if err != nil || !found {
		return nil, err
	}
	return &state, nil
}

// DeleteVesselState removes the state of a vessel
func (c *Client) DeleteVesselState(ctx context.Context, mmsi uint32) error {
	return c.client.Del(ctx, stateKey(mmsi)).Err()
}

// StoreVessel caches a vessel profile
func (c *Client) StoreVessel(ctx context.Context, vessel *types.Vessel) error {
	return c.setData(ctx, vesselKey(vessel.MMSI), vessel, VesselTTL, "vessel")
}

// GetVessel retrieves a cached vessel profile, or nil
func (c *Client) GetVessel(ctx context.Context, mmsi uint32) (*types.Vessel, error) {
	var vessel types.Vessel
	found, err := c.getData(ctx, vesselKey(mmsi), &vessel, "vessel")
	if err != nil || !found {
		return nil, err
	}
	return &vessel, nil
}

// StoreStaticPart keeps a type 24 part until its sibling arrives
func (c *Client) StoreStaticPart(ctx context.Context, part *types.StaticPart) error {
	return c.setData(ctx, staticPartKey(part.MMSI, part.PartNumber), part, c.staticPartTTL, "static part")
}

// GetStaticPart retrieves a pending type 24 part, or nil
func (c *Client) GetStaticPart(ctx context.Context, mmsi uint32, partNumber uint8) (*types.StaticPart, error) {
	var part types.StaticPart
	found, err := c.getData(ctx, staticPartKey(mmsi, partNumber), &part, "static part")
	if err != nil || !found {
		return nil, err
	}
	return &part, nil
}

// SetIgnored adds or removes a vessel from the ignore list
func (c *Client) SetIgnored(ctx context.Context, mmsi uint32, ignored bool) error {
	if !ignored {
		return c.client.Del(ctx, ignoreKey(mmsi)).Err()
	}
	return c.client.Set(ctx, ignoreKey(mmsi), "1", 0).Err()
}

// IsIgnored reports whether a vessel is on the ignore list
func (c *Client) IsIgnored(ctx context.Context, mmsi uint32) (bool, error) {
	n, err := c.client.Exists(ctx, ignoreKey(mmsi)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check ignore list: %w", err)
	}
	return n > 0, nil
}
