package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/json"
	"isp-image-guard-service/cache"
	"isp-image-guard-service/domain"
)

type IdentityCache struct {
	cache    *cache.Cache
	duration time.Duration
}

func NewIdentityCache(duration time.Duration) IdentityCache {
	return IdentityCache{
		duration: duration,
		cache:    cache.New(),
	}
}

func (r IdentityCache) Get(ctx context.Context, token string) (*domain.ViewerInfo, error) {
	data, ok := r.cache.Get(token)
	if !ok {
		return nil, domain.ErrIdentityCacheMiss
	}

	result := domain.ViewerInfo{}
	err := json.Unmarshal(data, &result)
	if err != nil {
		return nil, errors.WithMessage(err, "json unmarshal viewer info")
	}

	return &result, nil
}

func (r IdentityCache) Set(ctx context.Context, token string, viewer domain.ViewerInfo) error {
	value, err := json.Marshal(viewer)
	if err != nil {
		return errors.WithMessage(err, "json marshal viewer info")
	}

	r.cache.Set(token, value, r.duration)

	return nil
}
