package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/beka-birhanu/gridnav/config"
	logger "github.com/beka-birhanu/gridnav/infrastruture/log"
	"github.com/beka-birhanu/gridnav/navigator"
	"github.com/redis/go-redis/v9"
)

const (
	defaultCachePrefix = "gridnav:prediction"
	defaultCacheTTL    = time.Hour
)

// CachedConfig holds the settings of a Cached oracle.
type CachedConfig struct {
	Next   navigator.Oracle
	Client *redis.Client
	Prefix string        // Key prefix; defaults to gridnav:prediction
	TTL    time.Duration // Entry lifetime; defaults to one hour
	Logger *log.Logger
}

// Cached stores rankings in redis keyed by a digest of the belief matrix.
// For a deterministic model the same belief always yields the same ranking, and
// runs on a shared grid revisit the same beliefs often.
// Redis failures are logged and the wrapped oracle is used directly.
type Cached struct {
	next   navigator.Oracle
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *log.Logger
}

// NewCached wraps c.Next with a redis cache.
func NewCached(c CachedConfig) (*Cached, error) {
	if c.Next == nil {
		return nil, navigator.ErrOracleUnavailable
	}
	if c.Client == nil {
		return nil, errors.New("redis client is required")
	}

	cached := &Cached{
		next:   c.Next,
		client: c.Client,
		prefix: c.Prefix,
		ttl:    c.TTL,
		logger: c.Logger,
	}
	if cached.prefix == "" {
		cached.prefix = defaultCachePrefix
	}
	if cached.ttl <= 0 {
		cached.ttl = defaultCacheTTL
	}
	if cached.logger == nil {
		cached.logger, _ = logger.New("ORACLE-CACHE", config.ColorMagenta, os.Stdout)
	}
	return cached, nil
}

// Predict implements navigator.Oracle.
func (c *Cached) Predict(ctx context.Context, belief [][]int8) ([]navigator.Action, error) {
	key := c.key(belief)

	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		ranked, decodeErr := decodeRanking(raw)
		if decodeErr == nil {
			return ranked, nil
		}
		logger.Error(c.logger, "dropping corrupt cache entry %s: %s", key, decodeErr)
	case !errors.Is(err, redis.Nil):
		logger.Error(c.logger, "reading prediction cache: %s", err)
	}

	ranked, err := c.next.Predict(ctx, belief)
	if err != nil {
		return nil, err
	}

	if err := c.client.Set(ctx, key, encodeRanking(ranked), c.ttl).Err(); err != nil {
		logger.Error(c.logger, "writing prediction cache: %s", err)
	}
	return ranked, nil
}

func (c *Cached) key(belief [][]int8) string {
	return c.prefix + ":" + BeliefDigest(belief)
}

// BeliefDigest returns a hex SHA-256 of the matrix shape and contents.
func BeliefDigest(belief [][]int8) string {
	h := sha256.New()
	var dims [8]byte
	binary.BigEndian.PutUint32(dims[:4], uint32(len(belief)))
	if len(belief) > 0 {
		binary.BigEndian.PutUint32(dims[4:], uint32(len(belief[0])))
	}
	h.Write(dims[:])

	for _, col := range belief {
		row := make([]byte, len(col))
		for i, v := range col {
			row[i] = byte(v)
		}
		h.Write(row)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func encodeRanking(ranked []navigator.Action) string {
	parts := make([]string, len(ranked))
	for i, a := range ranked {
		parts[i] = strconv.Itoa(int(a))
	}
	return strings.Join(parts, ",")
}

func decodeRanking(raw string) ([]navigator.Action, error) {
	parts := strings.Split(raw, ",")
	ranked := make([]navigator.Action, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("decoding ranking %q: %w", raw, err)
		}
		ranked = append(ranked, navigator.Action(v))
	}
	return ranked, navigator.ValidateRanking(ranked)
}
