package service

import (
	"context"

	"github.com/pkg/errors"
	"isp-image-guard-service/domain"
)

type IdentityCache interface {
	Get(ctx context.Context, token string) (*domain.ViewerInfo, error)
	Set(ctx context.Context, token string, viewer domain.ViewerInfo) error
}

type IdentityRepo interface {
	VerifyViewer(ctx context.Context, token string) (*domain.VerifyViewerResponse, error)
}

type Identity struct {
	cache IdentityCache
	repo  IdentityRepo
}

func NewIdentity(cache IdentityCache, repo IdentityRepo) Identity {
	return Identity{
		cache: cache,
		repo:  repo,
	}
}

func (s Identity) VerifyViewer(ctx context.Context, token string) (*domain.VerifyViewerResponse, error) {
	viewer, err := s.cache.Get(ctx, token)
	if errors.Is(err, domain.ErrIdentityCacheMiss) {
		resp, err := s.repo.VerifyViewer(ctx, token)
		if err != nil {
			return nil, errors.WithMessage(err, "verify viewer in platform")
		}
		if !resp.Verified {
			return resp, nil
		}
		if resp.Viewer == nil {
			return nil, errors.New("platform returned verified response without viewer info")
		}

		err = s.cache.Set(ctx, token, *resp.Viewer)
		if err != nil {
			return nil, errors.WithMessage(err, "set viewer in cache")
		}
		return resp, nil
	}
	if err != nil {
		return nil, errors.WithMessage(err, "get viewer from cache")
	}

	return &domain.VerifyViewerResponse{
		Verified: true,
		Viewer:   viewer,
	}, nil
}
