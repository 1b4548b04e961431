package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"isp-image-guard-service/domain"
)

type RedisRateLimitLedger struct {
	cli redis.UniversalClient
}

func NewRedisRateLimitLedger(cli redis.UniversalClient) RedisRateLimitLedger {
	return RedisRateLimitLedger{
		cli: cli,
	}
}

func (r RedisRateLimitLedger) Allow(
	ctx context.Context,
	viewerId string,
	window time.Duration,
	quota int,
) (*domain.RateLimitResult, error) {
	key := r.key(viewerId)
	now := time.Now()
	windowStart := now.Add(-window)

	err := r.cli.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowStart.UnixMilli(), 10)).Err()
	if err != nil {
		return nil, errors.WithMessage(err, "zremrangebyscore")
	}

	count, err := r.cli.ZCard(ctx, key).Result()
	if err != nil {
		return nil, errors.WithMessage(err, "zcard")
	}

	if count >= int64(quota) {
		oldest, err := r.cli.ZRangeWithScores(ctx, key, 0, 0).Result()
		if err != nil {
			return nil, errors.WithMessage(err, "zrange with scores")
		}
		retryAfter := window
		if len(oldest) > 0 {
			oldestAt := time.UnixMilli(int64(oldest[0].Score))
			retryAfter = oldestAt.Add(window).Sub(now)
		}
		return &domain.RateLimitResult{
			Allow:      false,
			Remaining:  0,
			RetryAfter: retryAfter,
		}, nil
	}

	member := fmt.Sprintf("%d:%s", now.UnixMilli(), uuid.NewString())
	err = r.cli.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: member}).Err()
	if err != nil {
		return nil, errors.WithMessage(err, "zadd")
	}

	err = r.cli.Expire(ctx, key, window).Err()
	if err != nil {
		return nil, errors.WithMessage(err, "expire")
	}

	return &domain.RateLimitResult{
		Allow:      true,
		Remaining:  quota - int(count) - 1,
		RetryAfter: -1,
	}, nil
}

func (r RedisRateLimitLedger) key(viewerId string) string {
	return fmt.Sprintf("image_guard_ledger:%s", viewerId)
}
