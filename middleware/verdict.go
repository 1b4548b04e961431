package middleware

import (
	"context"

	"github.com/pkg/errors"
	"isp-image-guard-service/domain"
	"isp-image-guard-service/request"
)

type VerdictObserver interface {
	ObserveRejection(ctx context.Context, rejection domain.Rejection, viewerId string, payload *domain.Payload)
	ObserveAdmission(ctx context.Context)
}

func Verdict(observer VerdictObserver) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			err := next.Handle(ctx)

			rejection := domain.Rejection{}
			if errors.As(err, &rejection) {
				viewer, _ := ctx.Viewer()
				payload, _ := ctx.Payload()
				observer.ObserveRejection(ctx.Context(), rejection, viewer.ViewerId, payload)
				return err
			}
			if err == nil {
				observer.ObserveAdmission(ctx.Context())
			}

			return err
		})
	}
}
