package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/grpc/client"
	"isp-image-guard-service/domain"
)

const (
	verifyViewer = "session/verify_viewer"
)

type Platform struct {
	cli *client.Client
}

func NewPlatform(cli *client.Client) Platform {
	return Platform{
		cli: cli,
	}
}

func (r Platform) VerifyViewer(ctx context.Context, token string) (*domain.VerifyViewerResponse, error) {
	resp := domain.VerifyViewerResponse{}
	err := r.cli.Invoke(verifyViewer).
		JsonRequestBody(domain.VerifyViewerRequest{Token: token}).
		JsonResponseBody(&resp).
		Do(ctx)
	if err != nil {
		return nil, errors.WithMessagef(err, "grpc client invoke: %s", verifyViewer)
	}

	return &resp, nil
}
