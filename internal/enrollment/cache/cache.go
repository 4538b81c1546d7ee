// Package cache provides the redis-backed cohort display-name cache used by
// notification rendering. Strictly best-effort: any redis failure is a miss
// and the caller falls through to the cohort store.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	id "academy/pkg/domain"
)

const (
	keyPrefix  = "academy:cohort-name:"
	defaultTTL = 15 * time.Minute
)

// CohortNames caches cohort display names in redis.
type CohortNames struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

func NewCohortNames(client *redis.Client, logger *slog.Logger) *CohortNames {
	return &CohortNames{client: client, logger: logger, ttl: defaultTTL}
}

func (c *CohortNames) Get(ctx context.Context, cohortID id.CohortID) (string, bool) {
	name, err := c.client.Get(ctx, keyPrefix+cohortID.String()).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.DebugContext(ctx, "cohort name cache read failed", "error", err)
		}
		return "", false
	}
	return name, true
}

func (c *CohortNames) Set(ctx context.Context, cohortID id.CohortID, name string) {
	if err := c.client.Set(ctx, keyPrefix+cohortID.String(), name, c.ttl).Err(); err != nil {
		c.logger.DebugContext(ctx, "cohort name cache write failed", "error", err)
	}
}
