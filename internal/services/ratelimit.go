package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/skillpath/skillpath-backend/internal/clients/redis"
	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/streak"
)

const (
	RateLimitKindPost  = "post"
	RateLimitKindReply = "reply"
)

// Daily action limits by subscription tier.
var rateLimits = map[string]struct{ Free, Premium int64 }{
	RateLimitKindPost:  {Free: 3, Premium: 15},
	RateLimitKindReply: {Free: 20, Premium: 100},
}

type RateLimitService interface {
	// Allow consumes one unit of the daily budget for (user, kind) and
	// returns ErrRateLimited when the budget is spent.
	Allow(ctx context.Context, userID uuid.UUID, kind string, premium bool) error
}

type rateLimitService struct {
	log   *logger.Logger
	redis redisclient.Client
	now   func() time.Time
}

func NewRateLimitService(log *logger.Logger, redis redisclient.Client) RateLimitService {
	return &rateLimitService{
		log:   log.With("service", "RateLimitService"),
		redis: redis,
		now:   time.Now,
	}
}

func (rl *rateLimitService) Allow(ctx context.Context, userID uuid.UUID, kind string, premium bool) error {
	limits, ok := rateLimits[kind]
	if !ok {
		return fmt.Errorf("unknown rate limit kind %q", kind)
	}
	limit := limits.Free
	if premium {
		limit = limits.Premium
	}

	// Redis outage fails open: the action is allowed rather than blocked.
	if rl.redis == nil {
		return nil
	}

	key := fmt.Sprintf("ratelimit:%s:%s:%s", kind, userID.String(), streak.DayKey(rl.now().UTC()))
	count, err := rl.redis.IncrWindow(ctx, key, 24*time.Hour)
	if err != nil {
		rl.log.Warn("rate limit check failed, allowing", "kind", kind, "error", err)
		return nil
	}
	if count > limit {
		return ErrRateLimited
	}
	return nil
}
