package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"isp-image-guard-service/conf"
	"isp-image-guard-service/domain"
)

type RateLimitLedger interface {
	Allow(ctx context.Context, viewerId string, window time.Duration, quota int) (*domain.RateLimitResult, error)
}

type RateLimit struct {
	ledger RateLimitLedger
	window time.Duration
	quota  int
}

func NewRateLimit(ledger RateLimitLedger, config conf.RateLimit) RateLimit {
	return RateLimit{
		ledger: ledger,
		window: time.Duration(config.WindowInSec) * time.Second,
		quota:  config.RequestsPerWindow,
	}
}

func (s RateLimit) AllowRequest(ctx context.Context, viewerId string) (*domain.RateLimitResult, error) {
	result, err := s.ledger.Allow(ctx, viewerId, s.window, s.quota)
	if err != nil {
		return nil, errors.WithMessage(err, "allow in ledger")
	}
	return result, nil
}
